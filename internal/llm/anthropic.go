package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"promptsmith/internal/config"
	"promptsmith/internal/httpkit"
)

const (
	defaultAnthropicURL = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
)

// AnthropicClient is a client for the Anthropic Messages API.
type AnthropicClient struct {
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewAnthropicClient creates a new Anthropic client. Timeout control is
// left to request contexts; the shared transport bounds connection
// setup and response-header wait.
func NewAnthropicClient(apiKey, model string, maxTokens int, logger *slog.Logger) *AnthropicClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnthropicClient{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultAnthropicURL,
		maxTokens:  maxTokens,
		httpClient: httpkit.NewClient(0),
		logger:     logger.With("provider", ProviderAnthropic),
	}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	Messages  []anthropicMessage `json:"messages"`
	System    string             `json:"system,omitempty"`
	MaxTokens int                `json:"max_tokens"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete sends a single-turn completion request.
func (c *AnthropicClient) Complete(ctx context.Context, system, user string) (string, error) {
	req := anthropicRequest{
		Model:     c.model,
		Messages:  []anthropicMessage{{Role: "user", Content: user}},
		System:    system,
		MaxTokens: c.maxTokens,
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", &ProviderError{Provider: ProviderAnthropic, Err: fmt.Errorf("marshal request: %w", err)}
	}

	c.logger.Log(ctx, config.LevelTrace, "request payload", "json", string(jsonData))

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", &ProviderError{Provider: ProviderAnthropic, Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &ProviderError{Provider: ProviderAnthropic, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody := httpkit.ReadErrorBody(resp.Body, 4096)
		c.logger.Error("API error", "status", resp.StatusCode, "body", errBody)
		return "", &ProviderError{Provider: ProviderAnthropic, Err: fmt.Errorf("API error %d: %s", resp.StatusCode, errBody)}
	}

	var apiResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", &ProviderError{Provider: ProviderAnthropic, Err: fmt.Errorf("decode response: %w", err)}
	}

	var text string
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", &ProviderError{Provider: ProviderAnthropic, Err: fmt.Errorf("response contained no text content")}
	}

	c.logger.Debug("response received",
		"model", apiResp.Model,
		"input_tokens", apiResp.Usage.InputTokens,
		"output_tokens", apiResp.Usage.OutputTokens,
	)
	c.logger.Log(ctx, config.LevelTrace, "response content", "content", text)

	return text, nil
}
