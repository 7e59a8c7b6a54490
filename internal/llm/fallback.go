package llm

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Fallback tries the primary provider, then the secondary one, strictly in
// sequence. The secondary is used only when the primary is unavailable or
// reports exhausted quota; any other primary failure yields no answer.
type Fallback struct {
	primary   Provider
	secondary Provider
	breaker   *CircuitBreaker
	log       *zap.Logger
}

func NewFallback(primary, secondary Provider, log *zap.Logger) *Fallback {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		breaker:   NewCircuitBreaker(3, 5*time.Minute),
		log:       log,
	}
}

// WithBreaker заменяет circuit breaker основного провайдера.
func (f *Fallback) WithBreaker(cb *CircuitBreaker) *Fallback {
	f.breaker = cb
	return f
}

// Complete никогда не возвращает ошибку наверх: ok=false означает "нет ответа".
func (f *Fallback) Complete(ctx context.Context, prompt string, maxTokens int) (string, bool) {
	text, err := f.callPrimary(ctx, prompt, maxTokens)
	if err == nil {
		return text, true
	}

	handover := errors.Is(err, ErrUnavailable) || errors.Is(err, ErrCircuitOpen) || IsQuota(err)
	if !handover {
		f.log.Warn("LLM: основной провайдер не ответил", zap.String("provider", providerName(f.primary)), zap.Error(err))
		return "", false
	}
	if IsQuota(err) {
		f.log.Warn("LLM: квота исчерпана, переключаюсь на запасной провайдер", zap.String("provider", providerName(f.primary)))
	}

	if f.secondary == nil {
		return "", false
	}
	text, err = f.secondary.Complete(ctx, prompt, maxTokens)
	if err != nil {
		if !errors.Is(err, ErrUnavailable) {
			f.log.Warn("LLM: запасной провайдер не ответил", zap.String("provider", f.secondary.Name()), zap.Error(err))
		}
		return "", false
	}
	return text, true
}

func (f *Fallback) callPrimary(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if f.primary == nil {
		return "", ErrUnavailable
	}

	var text string
	err := f.breaker.Call(ctx, func() error {
		var err error
		text, err = f.primary.Complete(ctx, prompt, maxTokens)
		return err
	}, IsQuota)
	return text, err
}

func providerName(p Provider) string {
	if p == nil {
		return "none"
	}
	return p.Name()
}
