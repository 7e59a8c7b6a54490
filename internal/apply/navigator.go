// Package apply проходит мастер простой подачи: заполняет шаги, жмёт
// "Suivant"/"Vérifier"/"Envoyer", а при ошибках валидации закрывает окно без сохранения.
package apply

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type Outcome int

const (
	Incomplete Outcome = iota
	Submitted
	Abandoned
)

func (o Outcome) String() string {
	switch o {
	case Submitted:
		return "submitted"
	case Abandoned:
		return "abandoned"
	default:
		return "incomplete"
	}
}

// State - шаг мастера, вычисляемый по видимым кнопкам после каждого действия.
type State string

const (
	StateContact   State = "contact"
	StateQuestions State = "questions"
	StateVerify    State = "verify"
	StateSubmit    State = "submit"
	StateConfirm   State = "confirm"
	StateClosed    State = "closed"
	StateAborted   State = "aborted"
)

type Result struct {
	Outcome Outcome
	State   State
	Steps   int
}

const (
	modalTimeout       = 15 * time.Second
	closeTimeout       = 10 * time.Second
	confirmTimeout     = 5 * time.Second
	defaultWizardSteps = 12
)

// Navigator drives the application dialog from the contact step to submission.
// Transitions are decided from the buttons visible after every action.
type Navigator struct {
	drv      Driver
	filler   *Filler
	maxSteps int
	settings
}

func NewNavigator(drv Driver, res Resolver, opts ...Option) *Navigator {
	s := newSettings(opts)
	return &Navigator{
		drv:      drv,
		filler:   &Filler{drv: drv, res: res, settings: s},
		maxSteps: defaultWizardSteps,
		settings: s,
	}
}

// Apply is called after the apply button was clicked. A non-nil error explains
// why the result is not Submitted; the dialog is already dismissed on Abandoned.
func (n *Navigator) Apply(ctx context.Context) (Result, error) {
	if len(n.formAnswers) > 0 {
		return n.FillInitialForm(ctx, n.formAnswers)
	}
	n.filler.Reset()
	res := Result{State: StateContact}

	if err := n.drv.WaitVisible(ctx, n.rules.Modal, modalTimeout); err != nil {
		res.Outcome, res.State = Abandoned, StateAborted
		return res, fmt.Errorf("%w: %v", ErrNoModal, err)
	}

	// Контактный шаг оставляем как есть: почта уже подставлена сайтом.
	if err := n.pause(ctx, 500*time.Millisecond, 500*time.Millisecond); err != nil {
		return n.abort(ctx, res, err)
	}
	if n.submitIfVisible(ctx) {
		res.Outcome, res.State = Submitted, StateClosed
		return res, nil
	}

	if err := n.drv.Click(ctx, n.rules.Within(n.rules.Next)); err != nil {
		n.log.Warn("не удалось нажать Suivant на контактном шаге", zap.Error(err))
		return n.abort(ctx, res, fmt.Errorf("%w: %v", ErrNoNextStep, err))
	}
	n.log.Info("Suivant (контактный шаг)")
	res.State = StateQuestions

	for res.Steps < n.maxSteps {
		res.Steps++
		if err := n.pause(ctx, 800*time.Millisecond, 800*time.Millisecond); err != nil {
			return n.abort(ctx, res, err)
		}

		filled, err := n.filler.FillStep(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return n.abort(ctx, res, ctx.Err())
			}
			n.log.Debug("шаг заполнен не полностью", zap.Int("step", res.Steps), zap.Error(err))
		}
		n.log.Debug("шаг заполнен", zap.Int("step", res.Steps), zap.Int("filled", filled))

		if err := n.pause(ctx, 300*time.Millisecond, 300*time.Millisecond); err != nil {
			return n.abort(ctx, res, err)
		}

		if n.HasValidationErrors(ctx) {
			n.log.Warn("ошибки валидации в форме, закрываю без сохранения", zap.Int("step", res.Steps))
			return n.abort(ctx, res, ErrValidation)
		}

		if n.submitIfVisible(ctx) {
			res.Outcome, res.State = Submitted, StateClosed
			return res, nil
		}

		if sel := n.rules.Within(n.rules.Verify); n.drv.Visible(ctx, sel) {
			if err := n.drv.Click(ctx, sel); err != nil {
				return res, err
			}
			n.log.Info("Vérifier")
			res.State = StateVerify
			continue
		}

		sel := n.rules.Within(n.rules.Next)
		if !n.drv.Visible(ctx, sel) {
			return n.abort(ctx, res, fmt.Errorf("шаг %d: %w", res.Steps, ErrNoNextStep))
		}
		if err := n.drv.Click(ctx, sel); err != nil {
			return res, err
		}
		n.log.Info("Suivant", zap.Int("step", res.Steps))
		res.State = StateQuestions
	}

	return n.abort(ctx, res, fmt.Errorf("превышено число шагов (%d): %w", n.maxSteps, ErrNoNextStep))
}

func (n *Navigator) abort(ctx context.Context, res Result, err error) (Result, error) {
	if ctx.Err() == nil {
		n.Close(ctx)
	}
	res.Outcome, res.State = Abandoned, StateAborted
	return res, err
}

// submitIfVisible ищет кнопку отправки сначала внутри окна, потом на всей странице.
func (n *Navigator) submitIfVisible(ctx context.Context) bool {
	scopes := []func(string) string{
		n.rules.Within,
		func(s string) string { return s },
	}
	for _, scope := range scopes {
		for _, s := range n.rules.Submit {
			sel := scope(s)
			if !n.drv.Visible(ctx, sel) {
				continue
			}
			if err := n.drv.Click(ctx, sel); err != nil {
				continue
			}
			n.log.Info("заявка отправлена")
			n.confirmSubmitted(ctx)
			n.WaitClosed(ctx, closeTimeout)
			return true
		}
	}
	return false
}

func (n *Navigator) confirmSubmitted(ctx context.Context) {
	if err := n.pause(ctx, 600*time.Millisecond, 600*time.Millisecond); err != nil {
		return
	}
	if err := n.drv.WaitVisible(ctx, n.rules.Confirm, confirmTimeout); err != nil {
		n.log.Debug("нет кнопки подтверждения после отправки", zap.Error(err))
		return
	}
	if err := n.drv.Click(ctx, n.rules.Confirm); err == nil {
		n.log.Debug("подтверждение закрыто")
	}
}

// HasValidationErrors reports EN/FR validation messages or invalid fields in the dialog.
func (n *Navigator) HasValidationErrors(ctx context.Context) bool {
	if n.rules.HasValidationPhrase(n.drv.InnerText(ctx, n.rules.Modal)) {
		return true
	}
	return n.drv.Count(ctx, n.rules.Within(n.rules.Invalid)) > 0
}

func (n *Navigator) discardIfVisible(ctx context.Context) bool {
	for _, sel := range n.rules.Discard {
		if !n.drv.Visible(ctx, sel) {
			continue
		}
		if err := n.drv.Click(ctx, sel); err != nil {
			continue
		}
		n.log.Info("черновик заявки не сохранён (Supprimer/Discard)")
		_ = n.pause(ctx, 500*time.Millisecond, 500*time.Millisecond)
		return true
	}
	return false
}

// Close dismisses the dialog without saving. The "save this application?"
// prompt may show up before or after the dismiss button; both orders are handled.
func (n *Navigator) Close(ctx context.Context) {
	n.discardIfVisible(ctx)
	_ = n.pause(ctx, 300*time.Millisecond, 300*time.Millisecond)

	for _, sel := range n.rules.Dismiss {
		if !n.drv.Visible(ctx, sel) {
			continue
		}
		if err := n.drv.Click(ctx, sel); err != nil {
			continue
		}
		n.log.Info("окно подачи закрыто без сохранения")
		_ = n.pause(ctx, 500*time.Millisecond, 500*time.Millisecond)
		n.discardIfVisible(ctx)
		return
	}
}

// WaitClosed acknowledges confirmation dialogs and waits for overlays to hide,
// so the next card in the list can be clicked.
func (n *Navigator) WaitClosed(ctx context.Context, timeout time.Duration) {
	timeout = min(15*time.Second, max(5*time.Second, timeout))

	n.discardIfVisible(ctx)
	_ = n.pause(ctx, 200*time.Millisecond, 200*time.Millisecond)

	for i := 0; i < 6; i++ {
		if !n.drv.Visible(ctx, n.rules.Confirm) {
			break
		}
		if err := n.drv.Click(ctx, n.rules.Confirm); err != nil {
			break
		}
		_ = n.pause(ctx, 600*time.Millisecond, 600*time.Millisecond)
	}

	for _, sel := range n.rules.Overlays {
		if err := n.drv.WaitHidden(ctx, sel, timeout); err != nil {
			n.log.Debug("оверлей не скрылся", zap.String("selector", sel), zap.Error(err))
		}
	}
	_ = n.pause(ctx, 600*time.Millisecond, 600*time.Millisecond)
}
