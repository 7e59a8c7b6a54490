package apply

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoModal    = errors.New("окно подачи не появилось")
	ErrValidation = errors.New("форма не прошла валидацию")
	ErrDailyLimit = errors.New("достигнут дневной лимит откликов")
	ErrNavigation = errors.New("не удалось открыть страницу поиска")
	ErrNoNextStep = errors.New("кнопка перехода к следующему шагу не найдена")
)

type ErrorKind int

const (
	KindTransient ErrorKind = iota
	KindValidation
	KindNavigation
	KindGenerative
	KindDailyLimit
	KindCritical
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindValidation:
		return "validation"
	case KindNavigation:
		return "navigation"
	case KindGenerative:
		return "generative"
	case KindDailyLimit:
		return "daily-limit"
	case KindCritical:
		return "critical"
	default:
		return "unknown"
	}
}

type ActionError struct {
	Kind    ErrorKind
	Action  string
	Message string
	Err     error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Action, e.Message)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// Classify sorts an error into the run's taxonomy. Sentinels win over text
// heuristics; a closed browser or cancelled context is critical.
func Classify(action string, err error) *ActionError {
	if err == nil {
		return nil
	}
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae
	}

	kind := KindCritical
	errStr := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, ErrDailyLimit):
		kind = KindDailyLimit
	case errors.Is(err, ErrValidation):
		kind = KindValidation
	case errors.Is(err, ErrNavigation):
		kind = KindNavigation
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		kind = KindCritical
	case IsBrowserClosed(err):
		kind = KindCritical
	case errors.Is(err, ErrNoModal), errors.Is(err, ErrNoNextStep),
		strings.Contains(errStr, "timeout"),
		strings.Contains(errStr, "not found"),
		strings.Contains(errStr, "selector"),
		strings.Contains(errStr, "element"),
		strings.Contains(errStr, "intercepts pointer events"):
		kind = KindTransient
	}

	return &ActionError{
		Kind:    kind,
		Action:  action,
		Message: err.Error(),
		Err:     err,
	}
}

// IsBrowserClosed reports whether the page or the whole browser went away under us.
func IsBrowserClosed(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "has been closed") || strings.Contains(msg, "браузер не запущен")
}
