package apply

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"easyApply/internal/browser"
)

func newTestNavigator(d *fakeDriver) *Navigator {
	return NewNavigator(d, testResolver(), WithPause(noPause), WithRandom(func(int) int { return 0 }))
}

func motivationStep() []browser.Control {
	return []browser.Control{{
		Selector:  "#motivation",
		Kind:      browser.KindTextarea,
		Label:     "Describe your motivation for this role",
		Required:  true,
		MaxLength: 50,
	}}
}

func TestApply_SubmitsAfterQuestions(t *testing.T) {
	rules := DefaultRuleset()
	d := newFakeDriver(nil, motivationStep())
	next := rules.Within(rules.Next)
	submit := rules.Within(rules.Submit[0])
	d.visible[next] = true
	d.onClick[next] = func(d *fakeDriver) {
		d.step++
		d.visible[next] = false
		d.visible[submit] = true
	}

	res, err := newTestNavigator(d).Apply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Submitted, res.Outcome)
	assert.Equal(t, StateClosed, res.State)
	assert.Equal(t, 1, res.Steps)
	assert.Equal(t, 1, d.clicked(submit))
	assert.Len(t, d.filled["#motivation"], 50)
}

func TestApply_SubmitOnContactStep(t *testing.T) {
	rules := DefaultRuleset()
	d := newFakeDriver()
	submit := rules.Within(rules.Submit[1])
	d.visible[submit] = true
	d.visible[rules.Confirm] = true
	d.onClick[rules.Confirm] = func(d *fakeDriver) { d.visible[rules.Confirm] = false }

	res, err := newTestNavigator(d).Apply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Submitted, res.Outcome)
	assert.Zero(t, res.Steps)
	assert.Equal(t, 1, d.clicked(rules.Confirm))
}

func TestApply_VerifyThenSubmit(t *testing.T) {
	rules := DefaultRuleset()
	d := newFakeDriver(nil, nil)
	next := rules.Within(rules.Next)
	verify := rules.Within(rules.Verify)
	submit := rules.Submit[0]
	d.visible[next] = true
	d.onClick[next] = func(d *fakeDriver) {
		d.visible[next] = false
		d.visible[verify] = true
	}
	d.onClick[verify] = func(d *fakeDriver) {
		d.visible[verify] = false
		d.visible[submit] = true
	}

	res, err := newTestNavigator(d).Apply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Submitted, res.Outcome)
	assert.Equal(t, 2, res.Steps)
	assert.Equal(t, 1, d.clicked(submit), "кнопка отправки вне окна тоже нажимается")
}

func TestApply_ValidationErrorAbandons(t *testing.T) {
	rules := DefaultRuleset()
	d := newFakeDriver(nil, motivationStep())
	next := rules.Within(rules.Next)
	d.visible[next] = true
	d.onClick[next] = func(d *fakeDriver) {
		d.step++
		d.texts[rules.Modal] = "Please enter a valid answer"
	}
	d.visible[rules.Discard[0]] = true
	d.visible[rules.Dismiss[0]] = true

	res, err := newTestNavigator(d).Apply(context.Background())
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, Abandoned, res.Outcome)
	assert.Equal(t, StateAborted, res.State)
	assert.GreaterOrEqual(t, d.clicked(rules.Discard[0]), 1)
	assert.Equal(t, 1, d.clicked(rules.Dismiss[0]))
	for _, s := range rules.Submit {
		assert.Zero(t, d.clicked(rules.Within(s)))
	}
}

func TestApply_InvalidFieldAbandons(t *testing.T) {
	rules := DefaultRuleset()
	d := newFakeDriver(nil, nil)
	next := rules.Within(rules.Next)
	d.visible[next] = true
	d.counts[rules.Within(rules.Invalid)] = 1
	d.visible[rules.Dismiss[1]] = true

	res, err := newTestNavigator(d).Apply(context.Background())
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, Abandoned, res.Outcome)
	assert.Equal(t, 1, d.clicked(rules.Dismiss[1]))
}

func TestApply_NoModal(t *testing.T) {
	d := newFakeDriver()
	d.visible = map[string]bool{}

	res, err := newTestNavigator(d).Apply(context.Background())
	require.ErrorIs(t, err, ErrNoModal)
	assert.Equal(t, Abandoned, res.Outcome)
	assert.Equal(t, KindTransient, Classify("apply", err).Kind)
}

func TestApply_ContactNextFails(t *testing.T) {
	rules := DefaultRuleset()
	d := newFakeDriver()
	d.failClick[rules.Within(rules.Next)] = true
	d.visible[rules.Dismiss[0]] = true

	res, err := newTestNavigator(d).Apply(context.Background())
	require.ErrorIs(t, err, ErrNoNextStep)
	assert.Equal(t, Abandoned, res.Outcome)
	assert.Equal(t, 1, d.clicked(rules.Dismiss[0]))
}

func TestApply_DeadEndStep(t *testing.T) {
	rules := DefaultRuleset()
	d := newFakeDriver(nil, nil)
	next := rules.Within(rules.Next)
	d.visible[next] = true
	d.onClick[next] = func(d *fakeDriver) { d.visible[next] = false }

	d.visible[rules.Dismiss[0]] = true

	res, err := newTestNavigator(d).Apply(context.Background())
	require.ErrorIs(t, err, ErrNoNextStep)
	assert.Equal(t, Abandoned, res.Outcome)
	assert.Equal(t, StateAborted, res.State)
	assert.Equal(t, 1, res.Steps)
	assert.Equal(t, 1, d.clicked(rules.Dismiss[0]))
}

func TestApply_StepLimit(t *testing.T) {
	rules := DefaultRuleset()
	d := newFakeDriver(nil, nil)
	d.visible[rules.Within(rules.Next)] = true

	res, err := newTestNavigator(d).Apply(context.Background())
	require.ErrorIs(t, err, ErrNoNextStep)
	assert.Equal(t, Abandoned, res.Outcome)
	assert.Equal(t, defaultWizardSteps, res.Steps)
}

func TestApply_CancelledContext(t *testing.T) {
	rules := DefaultRuleset()
	d := newFakeDriver()
	d.visible[rules.Dismiss[0]] = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newTestNavigator(d).Apply(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Abandoned, res.Outcome)
	assert.Zero(t, d.clicked(rules.Dismiss[0]))
	assert.Equal(t, KindCritical, Classify("apply", err).Kind)
}

func TestClose_DiscardsAroundDismiss(t *testing.T) {
	rules := DefaultRuleset()
	d := newFakeDriver()
	d.visible[rules.Dismiss[2]] = true
	d.onClick[rules.Dismiss[2]] = func(d *fakeDriver) { d.visible[rules.Discard[1]] = true }

	newTestNavigator(d).Close(context.Background())
	assert.Equal(t, []string{rules.Dismiss[2], rules.Discard[1]}, d.clicks)
}

func TestWaitClosed_AcknowledgesConfirmations(t *testing.T) {
	rules := DefaultRuleset()
	d := newFakeDriver()
	d.visible[rules.Confirm] = true

	newTestNavigator(d).WaitClosed(context.Background(), 0)
	assert.Equal(t, 6, d.clicked(rules.Confirm))
}

func TestFillInitialForm(t *testing.T) {
	rules := DefaultRuleset()
	d := newFakeDriver([]browser.Control{
		{Selector: "#years", Kind: browser.KindNumber, Label: "Years of experience with Go"},
		{Selector: "#phone", Kind: browser.KindText, Label: "Mobile phone number"},
		{Selector: "#remote", Kind: browser.KindCheckbox, Label: "Remote work"},
		{Kind: browser.KindRadioGroup, Label: "Need visa sponsorship?", Options: []browser.Option{
			{Label: "Yes", Selector: "#visa-yes"},
			{Label: "No", Selector: "#visa-no"},
		}},
		{Selector: "#other", Kind: browser.KindText, Label: "Favourite colour"},
	})
	next := rules.Within(rules.Next)
	submit := rules.Within(rules.Submit[0])
	d.visible[next] = true
	d.onClick[next] = func(d *fakeDriver) {
		d.visible[next] = false
		d.visible[submit] = true
	}

	res, err := newTestNavigator(d).FillInitialForm(context.Background(), map[string]string{
		"years_of_experience": "5",
		"visa":                "No",
		"Phone":               "0600000000",
		"Remote work":         "yes",
	})
	require.NoError(t, err)
	assert.Equal(t, Submitted, res.Outcome)
	assert.Equal(t, "5", d.filled["#years"])
	assert.Equal(t, "0600000000", d.filled["#phone"])
	assert.NotContains(t, d.filled, "#other")
	assert.Contains(t, d.checked, "#remote")
	assert.Contains(t, d.checked, "#visa-no")
}

func TestFillInitialForm_KeepsPrefilled(t *testing.T) {
	rules := DefaultRuleset()
	d := newFakeDriver([]browser.Control{
		{Selector: "#years", Kind: browser.KindNumber, Label: "Years of experience", Value: "7"},
		{Selector: "#salary", Kind: browser.KindSelect, Label: "Salary band", Value: "Select an option"},
		{Selector: "#remote", Kind: browser.KindCheckbox, Label: "Remote work", Checked: true},
		{Kind: browser.KindRadioGroup, Label: "Need visa sponsorship?", Options: []browser.Option{
			{Label: "Yes", Selector: "#visa-yes", Checked: true},
			{Label: "No", Selector: "#visa-no"},
		}},
	})
	d.visible[rules.Within(rules.Submit[0])] = true

	res, err := newTestNavigator(d).FillInitialForm(context.Background(), map[string]string{
		"years_of_experience": "5",
		"salary":              "90000",
		"visa":                "No",
		"Remote work":         "yes",
	})
	require.NoError(t, err)
	assert.Equal(t, Submitted, res.Outcome)
	assert.NotContains(t, d.filled, "#years")
	assert.Equal(t, "90000", d.selected["#salary"])
	assert.Empty(t, d.checked)
}

func TestFillInitialForm_ValidationAbandons(t *testing.T) {
	rules := DefaultRuleset()
	d := newFakeDriver([]browser.Control{
		{Selector: "#years", Kind: browser.KindNumber, Label: "Years of experience"},
	})
	d.texts[rules.Modal] = "Enter a whole number between 0 and 99"
	d.visible[rules.Within(rules.Submit[0])] = true
	d.visible[rules.Dismiss[0]] = true

	res, err := newTestNavigator(d).FillInitialForm(context.Background(), map[string]string{
		"years_of_experience": "five",
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, Abandoned, res.Outcome)
	assert.Equal(t, 1, d.clicked(rules.Dismiss[0]))
	for _, sub := range rules.Submit {
		assert.Zero(t, d.clicked(rules.Within(sub)))
	}
}

func TestApply_WithFormAnswersUsesMap(t *testing.T) {
	rules := DefaultRuleset()
	d := newFakeDriver([]browser.Control{
		{Selector: "#other", Kind: browser.KindText, Label: "Favourite colour", Required: true},
		{Selector: "#city", Kind: browser.KindText, Label: "City"},
	})
	d.visible[rules.Within(rules.Submit[0])] = true

	nav := NewNavigator(d, testResolver(), WithPause(noPause), WithFormAnswers(map[string]string{"city": "Montréal"}))
	res, err := nav.Apply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Submitted, res.Outcome)
	assert.Equal(t, map[string]string{"#city": "Montréal"}, d.filled)
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"Years of experience with Go":      "years_of_experience",
		"Nombre d'années d'expérience":     "years_of_experience",
		"Salary expectations":              "salary",
		"Prétentions de salaire":           "salary",
		"Do you need visa sponsorship?":    "visa",
		"LinkedIn profile":                 "linkedin_url",
		"  Favourite   colour  ":           "favourite colour",
		"":                                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeKey(in), in)
	}
}

func TestFindAnswer(t *testing.T) {
	m := map[string]string{
		"salary": "90000",
		"city":   "Montréal",
		"phone":  "0600",
	}
	assert.Equal(t, "90000", FindAnswer("Desired salary", m))
	assert.Equal(t, "Montréal", FindAnswer("Current city", m))
	assert.Equal(t, "0600", FindAnswer("Phone", m))
	assert.Empty(t, FindAnswer("Favourite colour", m))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		kind ErrorKind
	}{
		{fmt.Errorf("шаг 3: %w", ErrValidation), KindValidation},
		{ErrDailyLimit, KindDailyLimit},
		{fmt.Errorf("поиск: %w", ErrNavigation), KindNavigation},
		{ErrNoNextStep, KindTransient},
		{errors.New("Timeout 5000ms exceeded"), KindTransient},
		{errors.New("target page, context or browser has been closed"), KindCritical},
		{context.DeadlineExceeded, KindCritical},
		{errors.New("что-то совсем другое"), KindCritical},
	}
	for _, tt := range tests {
		ae := Classify("apply", tt.err)
		require.NotNil(t, ae)
		assert.Equal(t, tt.kind, ae.Kind, tt.err.Error())
		assert.ErrorIs(t, ae, tt.err)
	}

	assert.Nil(t, Classify("apply", nil))

	wrapped := &ActionError{Kind: KindGenerative, Action: "llm", Message: "quota"}
	assert.Same(t, wrapped, Classify("other", fmt.Errorf("x: %w", wrapped)))
}
