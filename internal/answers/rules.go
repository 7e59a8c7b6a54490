package answers

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

const (
	generativeMaxLen = 100
	// минимальная длина CV, при которой есть смысл спрашивать LLM
	cvMinChars = 50
)

var hybridKeywords = []string{
	"hybride", "hybrid", "remote", "télétravail", "telework", "work from home", "présence obligatoire",
	"on-site", "on site", "in-office", "work arrangement", "mode de travail", "work mode",
}

var genderKeywords = []string{"gender", "sexe", "sex ", "male", "female", "how do you describe your gender"}

// Короткие поля-оценки (шкала 1-10), а не годы опыта.
var ratingKeywords = []string{
	"frontend", "backend", "microservice", "microservices", "api", "database", "devops",
	"fullstack", "full-stack", "mobile", "cloud", "security", "testing", "data",
}

var ratingStrongKeywords = []string{"frontend", "backend"}

// Вопросы "years of backend experience" уходят в оценочные правила.
var yearsRatingKeywords = []string{
	"frontend", "backend", "microservice", "api", "database", "devops",
	"fullstack", "mobile", "cloud", "security", "testing",
}

var trailingStars = regexp.MustCompile(`\*+\s*$`)

func lowerLabel(q Query) string {
	return strings.ToLower(q.Label)
}

func (r *Resolver) authorizationRule(_ context.Context, q Query) (Answer, bool) {
	v, ok := AuthorizationAnswer(q.Label, r.policy)
	return Answer{Value: v, Provenance: FromAuthorization}, ok
}

func (r *Resolver) legalStatusRule(_ context.Context, q Query) (Answer, bool) {
	l := lowerLabel(q)
	if strings.Contains(l, "legal status") && strings.Contains(l, strings.ToLower(r.policy.AuthorizationCountry)) {
		return Answer{Value: r.policy.LegalStatus, Provenance: FromAuthorization}, true
	}
	return Answer{}, false
}

func (r *Resolver) cityRule(_ context.Context, q Query) (Answer, bool) {
	l := lowerLabel(q)
	if strings.Contains(l, "location") && strings.Contains(l, "city") {
		return Answer{Value: strings.TrimSpace(r.profile.City), Provenance: FromProfile}, true
	}
	return Answer{}, false
}

func (r *Resolver) nameRule(_ context.Context, q Query) (Answer, bool) {
	l := lowerLabel(q)
	if containsAny(l, "first name", "prénom", "prenom", "given name") &&
		!strings.Contains(l, "last") && !strings.Contains(l, "nom de famille") {
		return profileOrNA(r.profile.FirstName), true
	}
	if containsAny(l, "last name", "nom de famille", "family name", "surname") || strings.TrimSpace(l) == "nom" {
		return profileOrNA(r.profile.LastName), true
	}
	return Answer{}, false
}

func (r *Resolver) hybridRule(_ context.Context, q Query) (Answer, bool) {
	if !containsAny(lowerLabel(q), hybridKeywords...) {
		return Answer{}, false
	}
	return Answer{Value: YesNo(r.profile.Hybrid, true), Provenance: FromProfile}, true
}

func (r *Resolver) salaryRule(ctx context.Context, q Query) (Answer, bool) {
	l := lowerLabel(q)
	if !strings.Contains(l, "salary") || !containsAny(l, "expectation", "expected", "compensation") {
		return Answer{}, false
	}
	if q.AllowGenerative && r.gen != nil {
		if v, ok := r.gen.Salary(ctx, r.policy.SalaryRole, r.policy.AuthorizationCountry); ok {
			return Answer{Value: v, Provenance: FromGenerative}, true
		}
	}
	return Answer{Value: r.policy.SalaryDefault, Provenance: FromDefault}, true
}

func (r *Resolver) noticeRule(_ context.Context, q Query) (Answer, bool) {
	l := lowerLabel(q)
	if strings.Contains(l, "notice") && containsAny(l, "start", "before", "joining") {
		return Answer{Value: strings.TrimSpace(r.profile.NoticePeriod), Provenance: FromProfile}, true
	}
	return Answer{}, false
}

func (r *Resolver) currentJobRule(_ context.Context, q Query) (Answer, bool) {
	l := lowerLabel(q)
	if strings.Contains(l, "current company") || (strings.Contains(l, "company") && strings.Contains(l, "current")) {
		return profileOrNA(r.profile.CurrentCompany), true
	}
	if strings.Contains(l, "current title") || (strings.Contains(l, "title") && strings.Contains(l, "current")) {
		return profileOrNA(r.profile.CurrentTitle), true
	}
	return Answer{}, false
}

func (r *Resolver) genderRule(_ context.Context, q Query) (Answer, bool) {
	l := lowerLabel(q)
	if strings.Contains(l, "pronouns") {
		return Answer{Value: r.policy.Pronouns, Provenance: FromProfile}, true
	}
	if !containsAny(l, genderKeywords...) {
		return Answer{}, false
	}
	if g := strings.TrimSpace(r.profile.Gender); g != "" {
		return Answer{Value: g, Provenance: FromProfile}, true
	}
	return Answer{Value: r.policy.GenderDefault, Provenance: FromDefault}, true
}

func (r *Resolver) certificationRule(ctx context.Context, q Query) (Answer, bool) {
	name, ok := CertificationName(q.Label)
	if !ok {
		return Answer{}, false
	}
	if HasCertification(name, r.cvText(ctx), r.profile.Certifications) {
		return Answer{Value: "Yes", Provenance: FromKnowledge}, true
	}
	return Answer{Value: "No", Provenance: FromKnowledge}, true
}

// yearsRule отвечает на "сколько лет опыта": 0, если навыка нет ни в CV, ни в
// списке сертификатов; иначе таблица, затем LLM по CV, затем значение по умолчанию.
func (r *Resolver) yearsRule(ctx context.Context, q Query) (Answer, bool) {
	l := lowerLabel(q)
	if !strings.Contains(l, "years") || !strings.Contains(l, "experience") {
		return Answer{}, false
	}
	if containsAny(l, yearsRatingKeywords...) {
		return Answer{}, false
	}

	cvText := r.cvText(ctx)
	if strings.Contains(l, "how many") && !SkillMentioned(q.Label, cvText, r.profile.Certifications) {
		return Answer{Value: "0", Provenance: FromKnowledge}, true
	}
	if years, ok := YearsFor(q.Label); ok {
		return Answer{Value: strconv.Itoa(years), Provenance: FromKnowledge}, true
	}
	if q.AllowGenerative && r.gen != nil && len(strings.TrimSpace(cvText)) >= cvMinChars {
		if v, ok := r.gen.YearsFromCV(ctx, q.Label, cvText); ok {
			return Answer{Value: v, Provenance: FromGenerative}, true
		}
	}
	return Answer{Value: r.yearsDefault(), Provenance: FromDefault}, true
}

func (r *Resolver) yesNoRule(ctx context.Context, q Query) (Answer, bool) {
	if !IsYesNoExperience(q.Label) {
		return Answer{}, false
	}
	if !SkillMentioned(q.Label, r.cvText(ctx), r.profile.Certifications) {
		return Answer{Value: "No", Provenance: FromKnowledge}, true
	}
	v, ok := YesNoForExperience(q.Label)
	return Answer{Value: v, Provenance: FromKnowledge}, ok
}

func (r *Resolver) tableYearsRule(_ context.Context, q Query) (Answer, bool) {
	years, ok := YearsFor(q.Label)
	if !ok {
		return Answer{}, false
	}
	return Answer{Value: strconv.Itoa(years), Provenance: FromKnowledge}, true
}

func (r *Resolver) ratingRule(_ context.Context, q Query) (Answer, bool) {
	l := strings.TrimSpace(strings.ToLower(trailingStars.ReplaceAllString(strings.TrimSpace(q.Label), "")))
	if l == "" || len([]rune(l)) >= 50 || !containsAny(l, ratingKeywords...) {
		return Answer{}, false
	}
	if containsAny(l, ratingStrongKeywords...) {
		return Answer{Value: r.policy.RatingStrong, Provenance: FromKnowledge}, true
	}
	return Answer{Value: r.policy.RatingDefault, Provenance: FromKnowledge}, true
}

func (r *Resolver) generativeRule(ctx context.Context, q Query) (Answer, bool) {
	if !q.AllowGenerative || r.gen == nil {
		return Answer{}, false
	}
	if cvText := r.cvText(ctx); len(strings.TrimSpace(cvText)) >= cvMinChars {
		if v, ok := r.gen.AnswerFromCV(ctx, q.Label, cvText, generativeMaxLen); ok {
			return Answer{Value: v, Provenance: FromGenerative}, true
		}
	}
	if v, ok := r.gen.Answer(ctx, q.Label, generativeMaxLen); ok {
		return Answer{Value: v, Provenance: FromGenerative}, true
	}
	return Answer{}, false
}

// defaultAnswer - последний рубеж, выбирается по ключевым словам вопроса.
func (r *Resolver) defaultAnswer(label string) Answer {
	l := strings.ToLower(label)
	switch {
	case containsAny(l, "year", "experience", "how many"):
		return Answer{Value: r.yearsDefault(), Provenance: FromDefault}
	case containsAny(l, "yes", "no", "experience with", "have you", "do you have"):
		return Answer{Value: orDefault(r.policy.Affirmative, "Yes"), Provenance: FromDefault}
	case containsAny(l, "number", "salary", "amount"):
		return Answer{Value: "1", Provenance: FromDefault}
	case len([]rune(strings.TrimSpace(label))) < 40 && !containsAny(l, "describe", "explain", "why", "what", "comment"):
		return Answer{Value: orDefault(r.policy.RatingDefault, "5.0"), Provenance: FromDefault}
	}
	return Answer{Value: "N/A", Provenance: FromDefault}
}

func (r *Resolver) yearsDefault() string {
	n, err := strconv.Atoi(strings.TrimSpace(r.profile.YearsDefault))
	if err != nil {
		return strconv.Itoa(YearsTotal)
	}
	return strconv.Itoa(n)
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

func profileOrNA(v string) Answer {
	if v = strings.TrimSpace(v); v != "" {
		return Answer{Value: v, Provenance: FromProfile}
	}
	return Answer{Value: "N/A", Provenance: FromDefault}
}

// YesNo нормализует настройку вида yes/oui/1/true в "Yes" или "No".
func YesNo(v string, def bool) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "no", "non", "0", "false":
		return "No"
	case "":
		if !def {
			return "No"
		}
	}
	return "Yes"
}
