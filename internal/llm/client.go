package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Client - OpenAI-совместимый провайдер. Используется для Groq через BaseURL.
type Client struct {
	client      *openai.Client
	name        string
	model       string
	logger      Logger
	rateLimiter *RateLimiter
}

func NewGroqClient(apiKey, model, baseURL string, logger Logger) *Client {
	return NewClientWithRateLimit("groq", apiKey, model, baseURL, logger, 30, 90000)
}

func NewClientWithRateLimit(name, apiKey, model, baseURL string, logger Logger, requestsPerMinute, tokensPerHour int) *Client {
	if logger == nil {
		logger = nopLogger{}
	}
	c := &Client{
		name:        name,
		model:       model,
		logger:      logger,
		rateLimiter: NewRateLimiter(requestsPerMinute, tokensPerHour),
	}
	if apiKey == "" {
		return c
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	c.client = openai.NewClientWithConfig(cfg)
	return c
}

func (c *Client) Name() string {
	return c.name
}

func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c == nil || c.client == nil {
		return "", ErrUnavailable
	}

	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := c.createChatCompletionWithRateLimit(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", &QuotaError{Provider: c.name, Err: err}
		}
		if quotaMessage(err.Error()) {
			return "", &QuotaError{Provider: c.name, Err: err}
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmpty
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	_ = c.logger.LogLLMRequest(ctx, c.name, c.model, prompt, text, resp.Usage.TotalTokens)
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}

// createChatCompletionWithRateLimit выполняет запрос с ожиданием rate limit
func (c *Client) createChatCompletionWithRateLimit(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	estimated := 0
	for _, msg := range req.Messages {
		estimated += EstimateTokens(msg.Content, 0)
	}
	estimated += req.MaxTokens

	if err := c.rateLimiter.Wait(ctx, estimated); err != nil {
		return openai.ChatCompletionResponse{}, err
	}

	return c.client.CreateChatCompletion(ctx, req)
}
