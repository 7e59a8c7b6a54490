package answers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"easyApply/internal/config"
)

const javaCV = `Software engineer, 4 years of Java and Spring Boot, PostgreSQL, Docker,
React front-ends, REST APIs. Casablanca, Morocco.`

type staticCV string

func (s staticCV) Text(context.Context) string { return string(s) }

type fakeGen struct {
	salary, years, fromCV, any string
	calls                      []string
}

func (f *fakeGen) Salary(context.Context, string, string) (string, bool) {
	f.calls = append(f.calls, "salary")
	return f.salary, f.salary != ""
}

func (f *fakeGen) YearsFromCV(context.Context, string, string) (string, bool) {
	f.calls = append(f.calls, "years")
	return f.years, f.years != ""
}

func (f *fakeGen) AnswerFromCV(context.Context, string, string, int) (string, bool) {
	f.calls = append(f.calls, "cv")
	return f.fromCV, f.fromCV != ""
}

func (f *fakeGen) Answer(context.Context, string, int) (string, bool) {
	f.calls = append(f.calls, "any")
	return f.any, f.any != ""
}

func testPolicy() config.Policy {
	return config.Policy{
		WorkAuthorization:    "No",
		NeedSponsorship:      "Yes",
		AuthorizationCountry: "Canada",
		LegalStatus:          "No status",
		Pronouns:             "Prefer not to say",
		GenderDefault:        "Male",
		BackgroundCheck:      "Yes",
		Affirmative:          "Yes",
		ReferralSource:       "linkedin",
		TextFallback:         "none",
		SalaryRole:           "mid-level software engineer",
		SalaryDefault:        "95000",
		RatingStrong:         "8.0",
		RatingDefault:        "5.0",
	}
}

func testProfile() config.Profile {
	return config.Profile{
		FirstName:    "Amina",
		LastName:     "Benali",
		City:         "Casablanca",
		NoticePeriod: "3 months",
		YearsDefault: "3",
		Hybrid:       "Yes",
	}
}

func newResolver(cv string, gen Generator) *Resolver {
	opts := []Option{WithCV(staticCV(cv))}
	if gen != nil {
		opts = append(opts, WithGenerator(gen))
	}
	return New(testProfile(), testPolicy(), opts...)
}

func TestResolve_YearsForCoreSkill(t *testing.T) {
	r := newResolver(javaCV, nil)

	a := r.Resolve(context.Background(), Query{Label: "How many years of experience with Java?"})
	assert.Equal(t, "4", a.Value)
	assert.NotContains(t, a.Value, ".")
	assert.Equal(t, FromKnowledge, a.Provenance)
}

func TestResolve_SkillAbsentFromCV(t *testing.T) {
	r := newResolver(javaCV, nil)

	a := r.Resolve(context.Background(), Query{Label: "Do you have experience with Kubernetes?"})
	assert.Equal(t, "No", a.Value)

	a = r.Resolve(context.Background(), Query{Label: "How many years of experience with Kubernetes?"})
	assert.Equal(t, "0", a.Value)
}

func TestResolve_SkillFromCredentialList(t *testing.T) {
	p := testProfile()
	p.Certifications = []string{"Kubernetes CKA"}
	r := New(p, testPolicy(), WithCV(staticCV(javaCV)))

	a := r.Resolve(context.Background(), Query{Label: "Do you have experience with Kubernetes?"})
	assert.Equal(t, "Yes", a.Value)
}

func TestResolve_AuthorizationIgnoresCV(t *testing.T) {
	for _, cv := range []string{"", javaCV, "Canadian citizen, authorized to work in Canada"} {
		gen := &fakeGen{any: "Yes", fromCV: "Yes"}
		r := newResolver(cv, gen)

		a := r.Resolve(context.Background(), Query{Label: "Are you legally authorized to work in Canada?", AllowGenerative: true})
		assert.Equal(t, "No", a.Value)
		assert.Equal(t, FromAuthorization, a.Provenance)
		assert.Empty(t, gen.calls)
	}
}

func TestResolve_AuthorizationBeatsYesNo(t *testing.T) {
	r := newResolver(javaCV, nil)

	a := r.Resolve(context.Background(), Query{Label: "Do you have experience working in Canada with a valid work permit?"})
	assert.Equal(t, "No", a.Value)
	assert.Equal(t, FromAuthorization, a.Provenance)
}

func TestResolve_Sponsorship(t *testing.T) {
	r := newResolver("", nil)

	for _, label := range []string{
		"Will you now or in the future require sponsorship for employment visa status?",
		"Aurez-vous besoin d'un parrainage d'immigration ?",
	} {
		a := r.Resolve(context.Background(), Query{Label: label})
		assert.Equal(t, "Yes", a.Value, label)
	}
}

func TestResolve_FixedFields(t *testing.T) {
	r := newResolver(javaCV, nil)
	ctx := context.Background()

	cases := map[string]string{
		"What is your legal status in Canada?":    "No status",
		"Location (city)":                         "Casablanca",
		"First name":                              "Amina",
		"Nom de famille":                          "Benali",
		"Are you comfortable with hybrid work?":   "Yes",
		"Notice period before joining":            "3 months",
		"Current company":                         "N/A",
		"Pronouns":                                "Prefer not to say",
		"Gender":                                  "Male",
		"Avez-vous le certificat requis : Docker": "Yes",
		"Do you hold this certification: AWS":     "No",
	}
	for label, want := range cases {
		assert.Equal(t, want, r.Resolve(ctx, Query{Label: label}).Value, label)
	}
}

func TestResolve_SalaryUsesGeneratorThenDefault(t *testing.T) {
	label := "What are your salary expectations?"

	gen := &fakeGen{salary: "88000"}
	a := newResolver("", gen).Resolve(context.Background(), Query{Label: label, AllowGenerative: true})
	assert.Equal(t, "88000", a.Value)
	assert.Equal(t, FromGenerative, a.Provenance)

	a = newResolver("", &fakeGen{}).Resolve(context.Background(), Query{Label: label, AllowGenerative: true})
	assert.Equal(t, "95000", a.Value)
}

func TestResolve_RatingDecimals(t *testing.T) {
	r := newResolver("", nil)

	assert.Equal(t, "8.0", r.Resolve(context.Background(), Query{Label: "Backend *"}).Value)
	assert.Equal(t, "5.0", r.Resolve(context.Background(), Query{Label: "Cloud"}).Value)
}

func TestResolve_GenerativeOrder(t *testing.T) {
	label := "Why do you want to join our team and what would you bring?"

	gen := &fakeGen{fromCV: "Strong Java background"}
	a := newResolver(javaCV, gen).Resolve(context.Background(), Query{Label: label, AllowGenerative: true})
	assert.Equal(t, "Strong Java background", a.Value)
	assert.Equal(t, []string{"cv"}, gen.calls)

	gen = &fakeGen{any: "Growth"}
	a = newResolver(javaCV, gen).Resolve(context.Background(), Query{Label: label, AllowGenerative: true})
	assert.Equal(t, "Growth", a.Value)
	assert.Equal(t, []string{"cv", "any"}, gen.calls)

	// короткий CV: сразу вопрос без контекста
	gen = &fakeGen{any: "Growth"}
	newResolver("short", gen).Resolve(context.Background(), Query{Label: label, AllowGenerative: true})
	assert.Equal(t, []string{"any"}, gen.calls)
}

func TestResolve_GenerativeDisabled(t *testing.T) {
	gen := &fakeGen{any: "should not be used"}
	a := newResolver(javaCV, gen).Resolve(context.Background(), Query{Label: "Why do you want to join our team and what would you bring?"})
	assert.Equal(t, "N/A", a.Value)
	assert.Equal(t, FromDefault, a.Provenance)
	assert.Empty(t, gen.calls)
}

func TestResolve_NeverEmpty(t *testing.T) {
	labels := []string{
		"?", "x", "Portfolio URL", "Tell us about a project you are proud of and explain why",
		"Number of direct reports", "Please describe why you want to join",
		"Quel est votre niveau d'anglais ?", "How many years of experience with COBOL?",
		"Do you have experience with Rust?", "Salary", "Are you willing to relocate?",
	}
	policies := []config.Policy{testPolicy(), {}}
	profiles := []config.Profile{testProfile(), {}}

	for _, pol := range policies {
		for _, prof := range profiles {
			r := New(prof, pol, WithGenerator(&fakeGen{}))
			for _, l := range labels {
				a := r.Resolve(context.Background(), Query{Label: l, AllowGenerative: true})
				assert.NotEmpty(t, a.Value, l)
			}
		}
	}
}

func TestResolve_EmptyLabel(t *testing.T) {
	a := newResolver("", nil).Resolve(context.Background(), Query{Label: "   "})
	assert.True(t, a.Empty())
}

func TestFirstOf_SkipsEmpty(t *testing.T) {
	empty := func(context.Context, Query) (Answer, bool) { return Answer{Value: " "}, true }
	miss := func(context.Context, Query) (Answer, bool) { return Answer{}, false }
	hit := func(context.Context, Query) (Answer, bool) { return Answer{Value: "ok"}, true }

	a, ok := FirstOf(miss, empty, hit)(context.Background(), Query{Label: "q"})
	require.True(t, ok)
	assert.Equal(t, "ok", a.Value)

	_, ok = FirstOf(miss, empty)(context.Background(), Query{Label: "q"})
	assert.False(t, ok)
}
