package apply

import (
	"context"
	"time"

	"easyApply/internal/answers"
	"easyApply/internal/browser"
	"easyApply/internal/config"
)

// Driver is the part of the browser the application flow needs.
// *browser.PlaywrightBrowser implements it.
type Driver interface {
	Visible(ctx context.Context, selector string) bool
	Count(ctx context.Context, selector string) int
	Click(ctx context.Context, selector string) error
	InnerText(ctx context.Context, selector string) string
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	WaitHidden(ctx context.Context, selector string, timeout time.Duration) error

	Controls(ctx context.Context, scope string) ([]browser.Control, error)
	Fill(ctx context.Context, selector, value string) error
	SelectOption(ctx context.Context, selector, option string) error
	Check(ctx context.Context, selector string) error
	SetFiles(ctx context.Context, selector, path string) error
}

// Resolver подбирает ответы на вопросы формы (см. answers.Resolver).
type Resolver interface {
	Resolve(ctx context.Context, q answers.Query) answers.Answer
	Authorization(label string) (string, bool)
	Policy() config.Policy
	Profile() config.Profile
}

// Picker выбирает один вариант из списка с помощью LLM.
type Picker interface {
	PickOption(ctx context.Context, question string, options []string) (string, bool)
}

// PauseFunc sleeps for a random duration in [lo, hi] unless ctx is done.
type PauseFunc func(ctx context.Context, lo, hi time.Duration) error

func defaultPause() PauseFunc {
	return browser.NewPacer(0, 0).Between
}
