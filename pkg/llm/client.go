// Package llm wraps an OpenAI-compatible chat completion endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/iblue/backend/pkg/circuitbreaker"
	"github.com/anonto42/iblue/backend/pkg/metrics"
	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrNotConfigured = errors.New("llm api key not configured")
	ErrEmptyResponse = errors.New("llm returned an empty completion")
)

type Client struct {
	api     *openai.Client
	model   string
	breaker *circuitbreaker.CircuitBreaker
}

// NewClient returns a client for apiKey. An empty baseURL keeps the
// library default endpoint. With no apiKey every call fails with
// ErrNotConfigured so callers fall back to canned content.
func NewClient(apiKey, baseURL, model string, breaker *circuitbreaker.CircuitBreaker) *Client {
	c := &Client{model: model, breaker: breaker}
	if apiKey == "" {
		return c
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	c.api = openai.NewClientWithConfig(cfg)
	return c
}

// Complete sends a system + user prompt and returns the trimmed first choice.
func (c *Client) Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	if c.api == nil {
		metrics.LLMRequests.WithLabelValues("error").Inc()
		return "", ErrNotConfigured
	}

	var out string
	err := c.breaker.Execute(func() error {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			MaxTokens:   maxTokens,
			Temperature: 0.9,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return ErrEmptyResponse
		}
		out = strings.TrimSpace(resp.Choices[0].Message.Content)
		if out == "" {
			return ErrEmptyResponse
		}
		return nil
	})
	if err != nil {
		metrics.LLMRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("chat completion: %w", err)
	}
	metrics.LLMRequests.WithLabelValues("ok").Inc()
	return out, nil
}
