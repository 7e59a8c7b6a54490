package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"easyApply/internal/sanitizer"
)

const (
	yearsCVLimit  = 10000
	answerCVLimit = 12000
	yearsCVMin    = 30
	answerCVMin   = 50
)

// Completer - последовательная цепочка провайдеров (см. Fallback).
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, bool)
}

// Assistant builds the form-filling prompts and post-processes completions.
// CV text is stripped of e-mails, phones, cards and keys before it leaves the process.
type Assistant struct {
	llm       Completer
	sanitizer *sanitizer.DataSanitizer
	useCV     bool
}

func NewAssistant(llm Completer, useCV bool) *Assistant {
	return &Assistant{
		llm:       llm,
		sanitizer: sanitizer.New(),
		useCV:     useCV,
	}
}

var (
	nonDigits   = regexp.MustCompile(`[^0-9]`)
	nonDecimals = regexp.MustCompile(`[^0-9.]`)
)

// Salary returns one annual salary figure for role in region.
func (a *Assistant) Salary(ctx context.Context, role, region string) (string, bool) {
	prompt := fmt.Sprintf(`What is the typical mid-range annual salary in local currency for a %s in %s? Consider current market data.
Reply with ONLY one number, no currency symbol, no commas, no explanation. E.g. 95000 or 85000.`, role, region)

	text, ok := a.llm.Complete(ctx, prompt, 50)
	if !ok {
		return "", false
	}
	return firstInteger(text)
}

// PickOption returns one of options. ok=false only when no provider answered
// at all; an answer that matches nothing falls back to options[0].
func (a *Assistant) PickOption(ctx context.Context, question string, options []string) (string, bool) {
	var opts []string
	for _, o := range options {
		if o = strings.TrimSpace(o); o != "" {
			opts = append(opts, o)
		}
	}
	if len(opts) == 0 {
		return "", false
	}

	var list strings.Builder
	for _, o := range opts {
		list.WriteString("- " + o + "\n")
	}
	prompt := fmt.Sprintf(`You are a form-filling assistant. For this job application dropdown, choose exactly ONE option from the list. Reply with ONLY that option text, nothing else.

Question: %s

Options (reply with one of these exactly):
%s
Context: Candidate is a software engineer, not currently authorized to work in the target country (needs sponsorship), open to hybrid/relocate for the right role. For work authorization choose the option that means "requires sponsorship" or "not authorized".

Answer (exact option text only):`, a.sanitizer.SanitizeLabel(question), list.String())

	text, ok := a.llm.Complete(ctx, prompt, 200)
	if !ok {
		return "", false
	}
	return MatchOption(text, opts), true
}

// MatchOption maps a free-text choice back onto the option list by
// case-insensitive equality or containment; no match gives options[0].
func MatchOption(choice string, options []string) string {
	if len(options) == 0 {
		return ""
	}
	c := strings.ToLower(unquote(choice))
	if c == "" {
		return options[0]
	}
	for _, o := range options {
		ol := strings.ToLower(o)
		if ol == c || strings.Contains(ol, c) || strings.Contains(c, ol) {
			return o
		}
	}
	return options[0]
}

// Answer отвечает на любой вопрос без CV, не длиннее maxLen символов.
func (a *Assistant) Answer(ctx context.Context, question string, maxLen int) (string, bool) {
	question = a.sanitizer.SanitizeLabel(question)
	if question == "" {
		return "", false
	}
	prompt := fmt.Sprintf(`You are a form-filling assistant. Answer this job application question with ONLY the value to put in the form. No explanation.
- For Yes/No questions reply exactly "Yes" or "No".
- For numbers reply with just the number.
- For dropdowns (notice period, pronouns, etc.) reply with one short option e.g. "3 months", "2 weeks", "Prefer not to say".
- Be professional and concise (max %d characters).

Question: %s

Answer (only the value, nothing else):`, maxLen, question)

	text, ok := a.llm.Complete(ctx, prompt, maxLen+20)
	if !ok {
		return "", false
	}
	return clip(text, maxLen)
}

// YearsFromCV infers a whole number of years (0-99) from the CV.
func (a *Assistant) YearsFromCV(ctx context.Context, question, cv string) (string, bool) {
	question = a.sanitizer.SanitizeLabel(question)
	if question == "" || len(strings.TrimSpace(cv)) < yearsCVMin {
		return "", false
	}
	prompt := fmt.Sprintf(`You are a form-filling assistant. The job application asks a "years of experience" question. Based ONLY on the candidate's CV below, infer how many years of experience they have for what is asked. Consider:
- Job titles and tenure (dates) in the CV.
- Skills and technologies mentioned relative to the question (e.g. Design, Java, management).
- Overall experience level (junior = 1-3, mid = 3-6, senior = 6+).

Reply with ONLY one whole number between 0 and 99. No decimals, no words, no explanation. If the CV does not show relevant experience, reply 0.

CV:
---
%s
---

Question: %s

Answer (single integer 0-99 only):`, a.cv(cv, yearsCVLimit), question)

	text, ok := a.llm.Complete(ctx, prompt, 20)
	if !ok {
		return "", false
	}
	return ParseYears(text)
}

// AnswerFromCV отвечает на вопрос по тексту резюме.
func (a *Assistant) AnswerFromCV(ctx context.Context, question, cv string, maxLen int) (string, bool) {
	question = a.sanitizer.SanitizeLabel(question)
	if !a.useCV || question == "" || len(strings.TrimSpace(cv)) < answerCVMin {
		return "", false
	}
	prompt := fmt.Sprintf(`You are a form-filling assistant. Given the candidate's CV and a job application question, return ONLY the exact value to put in the form field. No explanation.

Rules:
- For "How many years of experience with X?" return a single number between 0 and 99 based on the CV. If unclear, use 2 or 3.
- For Yes/No questions, return exactly "Yes" or "No".
- For citizenship / work authorization in a specific country: if the candidate is NOT a citizen and needs sponsorship, return "No".
- For other questions, return one short phrase or number (max %d characters).

CV:
---
%s
---

Question: %s

Answer (only the value for the form, nothing else):`, maxLen, a.cv(cv, answerCVLimit), question)

	text, ok := a.llm.Complete(ctx, prompt, maxLen+50)
	if !ok {
		return "", false
	}
	return clip(text, maxLen)
}

func (a *Assistant) cv(text string, limit int) string {
	r := []rune(text)
	if len(r) > limit {
		text = string(r[:limit])
	}
	return a.sanitizer.Sanitize(text)
}

// ParseYears: только цифры, не больше двух первых, максимум 99.
func ParseYears(text string) (string, bool) {
	num := nonDigits.ReplaceAllString(text, "")
	if num == "" {
		return "", false
	}
	if len(num) > 2 {
		num = num[:2]
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return "", false
	}
	if n > 99 {
		n = 99
	}
	return strconv.Itoa(n), true
}

func firstInteger(text string) (string, bool) {
	num := nonDecimals.ReplaceAllString(strings.TrimSpace(text), "")
	if num == "" {
		return "", false
	}
	head, _, _ := strings.Cut(num, ".")
	if head == "" {
		return "", false
	}
	return head, true
}

func clip(text string, maxLen int) (string, bool) {
	out := unquote(text)
	if r := []rune(out); maxLen > 0 && len(r) > maxLen {
		out = string(r[:maxLen])
	}
	return out, out != ""
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}
