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

const defaultHuggingFaceURL = "https://api-inference.huggingface.co/models/"

// HuggingFaceClient is a client for the Hugging Face hosted inference
// API. The inference endpoint has no system-prompt field, so a system
// prompt is folded into the input text.
type HuggingFaceClient struct {
	apiKey      string
	model       string
	baseURL     string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewHuggingFaceClient creates a new Hugging Face inference client.
// baseURL may be empty to use the hosted inference endpoint.
func NewHuggingFaceClient(apiKey, model, baseURL string, maxTokens int, temperature float64, logger *slog.Logger) *HuggingFaceClient {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = defaultHuggingFaceURL
	}
	return &HuggingFaceClient{
		apiKey:      apiKey,
		model:       model,
		baseURL:     baseURL,
		maxTokens:   maxTokens,
		temperature: temperature,
		httpClient:  httpkit.NewClient(0),
		logger:      logger.With("provider", ProviderHuggingFace),
	}
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfResult struct {
	GeneratedText string `json:"generated_text"`
}

// Complete sends a text generation request.
func (c *HuggingFaceClient) Complete(ctx context.Context, system, user string) (string, error) {
	input := user
	if system != "" {
		input = system + "\n\n" + user
	}

	req := hfRequest{
		Inputs: input,
		Parameters: hfParameters{
			MaxNewTokens:   c.maxTokens,
			Temperature:    c.temperature,
			ReturnFullText: false,
		},
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", &ProviderError{Provider: ProviderHuggingFace, Err: fmt.Errorf("marshal request: %w", err)}
	}

	c.logger.Log(ctx, config.LevelTrace, "request payload", "json", string(jsonData))

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+c.model, bytes.NewReader(jsonData))
	if err != nil {
		return "", &ProviderError{Provider: ProviderHuggingFace, Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &ProviderError{Provider: ProviderHuggingFace, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody := httpkit.ReadErrorBody(resp.Body, 4096)
		c.logger.Error("API error", "status", resp.StatusCode, "body", errBody)
		return "", &ProviderError{Provider: ProviderHuggingFace, Err: fmt.Errorf("API error %d: %s", resp.StatusCode, errBody)}
	}

	var results []hfResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", &ProviderError{Provider: ProviderHuggingFace, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(results) == 0 || results[0].GeneratedText == "" {
		return "", &ProviderError{Provider: ProviderHuggingFace, Err: fmt.Errorf("response contained no generated text")}
	}

	c.logger.Debug("response received", "model", c.model, "content_len", len(results[0].GeneratedText))

	return results[0].GeneratedText, nil
}
