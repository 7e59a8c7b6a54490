package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiClient - основной провайдер (Google Gemini API).
type GeminiClient struct {
	client      *genai.Client
	model       string
	logger      Logger
	rateLimiter *RateLimiter
}

// newGenAIClient подменяется в тестах.
var newGenAIClient = genai.NewClient

// NewGeminiClient never fails: without a key, or when the SDK client cannot be
// created, the returned client reports ErrUnavailable and the fallback moves on.
func NewGeminiClient(ctx context.Context, apiKey, model string, requestsPerMinute int, logger Logger, log *zap.Logger) *GeminiClient {
	if logger == nil {
		logger = nopLogger{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &GeminiClient{
		model:       model,
		logger:      logger,
		rateLimiter: NewRateLimiter(requestsPerMinute, 0),
	}
	if apiKey == "" {
		return c
	}

	client, err := newGenAIClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Warn("клиент gemini не создан, остаётся только запасной провайдер", zap.Error(err))
		return c
	}
	c.client = client
	return c
}

func (c *GeminiClient) Name() string {
	return "gemini"
}

func (c *GeminiClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c == nil || c.client == nil {
		return "", ErrUnavailable
	}

	if err := c.rateLimiter.Wait(ctx, EstimateTokens(prompt, maxTokens)); err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		if quotaMessage(err.Error()) {
			return "", &QuotaError{Provider: c.Name(), Err: err}
		}
		return "", fmt.Errorf("gemini: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	_ = c.logger.LogLLMRequest(ctx, c.Name(), c.model, prompt, text, tokens)

	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}
