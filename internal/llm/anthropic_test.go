package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropicComplete(t *testing.T) {
	var gotReq anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key = %q, want test-key", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != anthropicAPIVersion {
			t.Errorf("anthropic-version = %q", r.Header.Get("anthropic-version"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "msg_01",
			"role":  "assistant",
			"model": "claude-test",
			"content": []map[string]string{
				{"type": "text", "text": "improved prompt text"},
			},
			"usage": map[string]int{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	defer srv.Close()

	c := NewAnthropicClient("test-key", "claude-test", 1000, nil)
	c.baseURL = srv.URL

	got, err := c.Complete(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "improved prompt text" {
		t.Errorf("Complete = %q", got)
	}

	if gotReq.System != "system prompt" {
		t.Errorf("request system = %q", gotReq.System)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" || gotReq.Messages[0].Content != "user prompt" {
		t.Errorf("request messages = %+v", gotReq.Messages)
	}
	if gotReq.MaxTokens != 1000 {
		t.Errorf("request max_tokens = %d, want 1000", gotReq.MaxTokens)
	}
}

func TestAnthropicCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"type":"authentication_error"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewAnthropicClient("bad-key", "claude-test", 1000, nil)
	c.baseURL = srv.URL

	_, err := c.Complete(context.Background(), "", "hello")
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("err = %v, want *ProviderError", err)
	}
	if provErr.Provider != ProviderAnthropic {
		t.Errorf("Provider = %q", provErr.Provider)
	}
}

func TestAnthropicCompleteEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "msg_01",
			"role":    "assistant",
			"model":   "claude-test",
			"content": []map[string]string{},
		})
	}))
	defer srv.Close()

	c := NewAnthropicClient("test-key", "claude-test", 1000, nil)
	c.baseURL = srv.URL

	_, err := c.Complete(context.Background(), "", "hello")
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("err = %v, want *ProviderError", err)
	}
}
