package llm

import (
	"context"
	"fmt"
	"log/slog"

	openaigo "github.com/sashabaranov/go-openai"
)

// OpenAIClient is a client for the OpenAI chat completion API, or any
// OpenAI-compatible gateway when a base URL override is configured.
type OpenAIClient struct {
	client      *openaigo.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// NewOpenAIClient creates a new OpenAI client. baseURL may be empty to
// use the official endpoint.
func NewOpenAIClient(apiKey, model, baseURL string, maxTokens int, temperature float64, logger *slog.Logger) *OpenAIClient {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := openaigo.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client:      openaigo.NewClientWithConfig(cfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger.With("provider", ProviderOpenAI),
	}
}

// Complete sends a single-turn chat completion request.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	var messages []openaigo.ChatCompletionMessage
	if system != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role:    openaigo.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openaigo.ChatCompletionMessage{
		Role:    openaigo.ChatMessageRoleUser,
		Content: user,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: float32(c.temperature),
	})
	if err != nil {
		return "", &ProviderError{Provider: ProviderOpenAI, Err: fmt.Errorf("chat completion: %w", err)}
	}

	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: ProviderOpenAI, Err: fmt.Errorf("response contained no choices")}
	}

	c.logger.Debug("response received",
		"model", resp.Model,
		"input_tokens", resp.Usage.PromptTokens,
		"output_tokens", resp.Usage.CompletionTokens,
	)

	return resp.Choices[0].Message.Content, nil
}
