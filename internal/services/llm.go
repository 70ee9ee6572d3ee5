package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

var ErrEmptyCompletion = errors.New("llm returned no choices")

// LLMClient generates a completion for a system/user prompt pair.
type LLMClient interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

type OpenAIClientParams struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
}

type openAIClient struct {
	logger      zerolog.Logger
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewOpenAIClient(logger zerolog.Logger, params OpenAIClientParams) LLMClient {
	cfg := openai.DefaultConfig(params.APIKey)
	if params.BaseURL != "" {
		cfg.BaseURL = params.BaseURL
	}
	return &openAIClient{
		logger:      logger,
		client:      openai.NewClientWithConfig(cfg),
		model:       params.Model,
		maxTokens:   params.MaxTokens,
		temperature: params.Temperature,
	}
}

func (c *openAIClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	c.logger.Debug().
		Str("model", c.model).
		Msg("generating completion")

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	c.logger.Debug().
		Str("finish_reason", string(resp.Choices[0].FinishReason)).
		Int("total_tokens", resp.Usage.TotalTokens).
		Msg("received completion")
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
