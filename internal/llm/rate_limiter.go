package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter ограничивает частоту запросов (RPM) и расход токенов (TPH).
// Оба лимита - token bucket из golang.org/x/time/rate; вызов ждёт, а не падает.
type RateLimiter struct {
	requestsPerMinute int
	tokensPerHour     int

	requests *rate.Limiter
	tokens   *rate.Limiter
}

// NewRateLimiter создает новый rate limiter
func NewRateLimiter(requestsPerMinute, tokensPerHour int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 15 // бесплатный тариф Gemini
	}
	if tokensPerHour <= 0 {
		tokensPerHour = 90000
	}

	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		tokensPerHour:     tokensPerHour,
		requests:          rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute),
		tokens:            rate.NewLimiter(rate.Limit(float64(tokensPerHour)/3600), tokensPerHour),
	}
}

// Wait блокирует до освобождения запроса и estimatedTokens токенов.
func (rl *RateLimiter) Wait(ctx context.Context, estimatedTokens int) error {
	if err := rl.requests.Wait(ctx); err != nil {
		return fmt.Errorf("ожидание лимита запросов (%d RPM): %w", rl.requestsPerMinute, err)
	}

	if estimatedTokens <= 0 {
		return nil
	}
	if estimatedTokens > rl.tokensPerHour {
		estimatedTokens = rl.tokensPerHour
	}
	if err := rl.tokens.WaitN(ctx, estimatedTokens); err != nil {
		return fmt.Errorf("ожидание лимита токенов (%d TPH): %w", rl.tokensPerHour, err)
	}
	return nil
}

// EstimateTokens - грубая оценка: ~4 символа на токен плюс бюджет ответа.
func EstimateTokens(prompt string, maxTokens int) int {
	return len(prompt)/4 + maxTokens
}

// Stats возвращает доступные сейчас запросы и токены.
func (rl *RateLimiter) Stats() (requestsAvailable, tokensAvailable int) {
	now := time.Now()
	return int(rl.requests.TokensAt(now)), int(rl.tokens.TokensAt(now))
}
