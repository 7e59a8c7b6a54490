// Package answers подбирает значение для поля формы по тексту вопроса.
//
// Resolver is an ordered chain of rules sharing one signature; the first rule
// that produces a value wins. The chain always ends in a keyword-sniffed
// default, so Resolve never returns an empty value for a non-empty label.
package answers

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"easyApply/internal/config"
)

type Provenance string

const (
	FromAuthorization Provenance = "authorization-policy"
	FromProfile       Provenance = "profile"
	FromKnowledge     Provenance = "knowledge-table"
	FromGenerative    Provenance = "generative"
	FromDefault       Provenance = "default-fallback"
)

type Answer struct {
	Value      string
	Provenance Provenance
}

func (a Answer) Empty() bool {
	return strings.TrimSpace(a.Value) == ""
}

type Query struct {
	Label string
	// AllowGenerative разрешает обращение к LLM для этого вопроса.
	AllowGenerative bool
}

// Rule returns an answer and true when it recognises the question.
type Rule func(ctx context.Context, q Query) (Answer, bool)

// FirstOf evaluates rules in order and returns the first non-empty answer.
func FirstOf(rules ...Rule) Rule {
	return func(ctx context.Context, q Query) (Answer, bool) {
		for _, rule := range rules {
			if a, ok := rule(ctx, q); ok && !a.Empty() {
				return a, true
			}
		}
		return Answer{}, false
	}
}

// Generator is the completion-backed part of the chain. Every method reports
// false when no provider produced a usable value.
type Generator interface {
	Salary(ctx context.Context, role, region string) (string, bool)
	YearsFromCV(ctx context.Context, question, cv string) (string, bool)
	AnswerFromCV(ctx context.Context, question, cv string, maxLen int) (string, bool)
	Answer(ctx context.Context, question string, maxLen int) (string, bool)
}

// CVSource отдаёт текст резюме (см. cv.Cache).
type CVSource interface {
	Text(ctx context.Context) string
}

type Resolver struct {
	profile config.Profile
	policy  config.Policy
	gen     Generator
	cv      CVSource
	log     *zap.Logger

	chain Rule
}

type Option func(*Resolver)

func WithGenerator(g Generator) Option {
	return func(r *Resolver) { r.gen = g }
}

func WithCV(src CVSource) Option {
	return func(r *Resolver) { r.cv = src }
}

func WithLogger(log *zap.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

func New(profile config.Profile, policy config.Policy, opts ...Option) *Resolver {
	r := &Resolver{
		profile: profile,
		policy:  policy,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.chain = FirstOf(
		r.authorizationRule,
		r.legalStatusRule,
		r.cityRule,
		r.nameRule,
		r.hybridRule,
		r.salaryRule,
		r.noticeRule,
		r.currentJobRule,
		r.genderRule,
		r.certificationRule,
		r.yearsRule,
		r.yesNoRule,
		r.tableYearsRule,
		r.ratingRule,
		r.generativeRule,
	)
	return r
}

// Resolve подбирает ответ. Пустой label даёт пустой ответ, любой другой - непустой.
func (r *Resolver) Resolve(ctx context.Context, q Query) Answer {
	q.Label = strings.TrimSpace(q.Label)
	if q.Label == "" {
		return Answer{}
	}

	a, ok := r.chain(ctx, q)
	if !ok {
		a = r.defaultAnswer(q.Label)
	}

	r.log.Debug("ответ подобран",
		zap.String("label", truncate(q.Label, 80)),
		zap.String("value", truncate(a.Value, 40)),
		zap.String("provenance", string(a.Provenance)))
	return a
}

// Authorization is the policy override shared with the form filler: it answers
// sponsorship and right-to-work questions regardless of any other rule.
func (r *Resolver) Authorization(label string) (string, bool) {
	return AuthorizationAnswer(label, r.policy)
}

func (r *Resolver) Policy() config.Policy {
	return r.policy
}

func (r *Resolver) Profile() config.Profile {
	return r.profile
}

func (r *Resolver) cvText(ctx context.Context) string {
	if r.cv == nil {
		return ""
	}
	return r.cv.Text(ctx)
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n])
}
