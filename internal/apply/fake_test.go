package apply

import (
	"context"
	"errors"
	"time"

	"easyApply/internal/answers"
	"easyApply/internal/browser"
	"easyApply/internal/config"
)

// fakeDriver - страница в памяти: шаги мастера переключаются кликом по Suivant.
type fakeDriver struct {
	visible map[string]bool
	counts  map[string]int
	texts   map[string]string
	steps   [][]browser.Control
	step    int

	onClick   map[string]func(d *fakeDriver)
	failClick map[string]bool

	clicks   []string
	filled   map[string]string
	selected map[string]string
	checked  []string
	files    []string
}

func newFakeDriver(steps ...[]browser.Control) *fakeDriver {
	d := &fakeDriver{
		visible:   map[string]bool{},
		counts:    map[string]int{},
		texts:     map[string]string{},
		steps:     steps,
		onClick:   map[string]func(d *fakeDriver){},
		failClick: map[string]bool{},
		filled:    map[string]string{},
		selected:  map[string]string{},
	}
	d.visible[DefaultRuleset().Modal] = true
	return d
}

func (d *fakeDriver) Visible(_ context.Context, selector string) bool {
	return d.visible[selector]
}

func (d *fakeDriver) Count(_ context.Context, selector string) int {
	return d.counts[selector]
}

func (d *fakeDriver) Click(_ context.Context, selector string) error {
	if d.failClick[selector] {
		return errors.New("timeout 10000ms exceeded")
	}
	d.clicks = append(d.clicks, selector)
	if hook, ok := d.onClick[selector]; ok {
		hook(d)
	}
	return nil
}

func (d *fakeDriver) InnerText(_ context.Context, selector string) string {
	return d.texts[selector]
}

func (d *fakeDriver) WaitVisible(_ context.Context, selector string, _ time.Duration) error {
	if d.visible[selector] {
		return nil
	}
	return errors.New("timeout waiting for " + selector)
}

func (d *fakeDriver) WaitHidden(context.Context, string, time.Duration) error {
	return nil
}

func (d *fakeDriver) Controls(context.Context, string) ([]browser.Control, error) {
	if len(d.steps) == 0 {
		return nil, nil
	}
	return d.steps[min(d.step, len(d.steps)-1)], nil
}

func (d *fakeDriver) Fill(_ context.Context, selector, value string) error {
	d.filled[selector] = value
	return nil
}

func (d *fakeDriver) SelectOption(_ context.Context, selector, option string) error {
	d.selected[selector] = option
	return nil
}

func (d *fakeDriver) Check(_ context.Context, selector string) error {
	d.checked = append(d.checked, selector)
	return nil
}

func (d *fakeDriver) SetFiles(_ context.Context, _ string, path string) error {
	d.files = append(d.files, path)
	return nil
}

func (d *fakeDriver) clicked(selector string) int {
	n := 0
	for _, c := range d.clicks {
		if c == selector {
			n++
		}
	}
	return n
}

type stubPicker struct {
	choice string
	calls  int
}

func (p *stubPicker) PickOption(context.Context, string, []string) (string, bool) {
	p.calls++
	return p.choice, p.choice != ""
}

func noPause(ctx context.Context, _, _ time.Duration) error {
	return ctx.Err()
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
	}
}

func testResolver() *answers.Resolver {
	return answers.New(testProfile(), testPolicy())
}
