// Package llm даёт короткие текстовые ответы от языковых моделей:
// Gemini как основной провайдер, Groq (OpenAI-совместимый API) как запасной.
// Включает rate limiting, circuit breaker и журналирование запросов.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Logger определяет интерфейс для журналирования запросов к LLM.
type Logger interface {
	// LogLLMRequest сохраняет информацию о запросе к LLM в базу данных.
	LogLLMRequest(ctx context.Context, provider, model, promptText, responseText string, tokensUsed int) error
}

// Provider returns a short completion for a prompt.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

var (
	// ErrUnavailable: провайдер не настроен (нет ключа) или отключён circuit breaker'ом.
	ErrUnavailable = errors.New("llm: провайдер недоступен")
	ErrEmpty       = errors.New("llm: пустой ответ")
)

// QuotaError marks a provider failure caused by exhausted quota (HTTP 429,
// RESOURCE_EXHAUSTED). It is the only failure that hands a request over to
// the secondary provider.
type QuotaError struct {
	Provider string
	Err      error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s: квота исчерпана: %v", e.Provider, e.Err)
}

func (e *QuotaError) Unwrap() error {
	return e.Err
}

func IsQuota(err error) bool {
	if err == nil {
		return false
	}
	var qe *QuotaError
	if errors.As(err, &qe) {
		return true
	}
	return quotaMessage(err.Error())
}

func quotaMessage(msg string) bool {
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

type nopLogger struct{}

func (nopLogger) LogLLMRequest(context.Context, string, string, string, string, int) error {
	return nil
}
