package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIComplete(t *testing.T) {
	var gotBody struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer oa-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "chatcmpl-1",
			"model": "gpt-test",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": "openai reply"},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 4},
		})
	}))
	defer srv.Close()

	c := NewOpenAIClient("oa-key", "gpt-test", srv.URL, 1000, 0.7, nil)

	got, err := c.Complete(context.Background(), "be terse", "hello")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "openai reply" {
		t.Errorf("Complete = %q", got)
	}

	if gotBody.Model != "gpt-test" {
		t.Errorf("model = %q", gotBody.Model)
	}
	if len(gotBody.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(gotBody.Messages))
	}
	if gotBody.Messages[0].Role != "system" || gotBody.Messages[0].Content != "be terse" {
		t.Errorf("system message = %+v", gotBody.Messages[0])
	}
	if gotBody.Messages[1].Role != "user" || gotBody.Messages[1].Content != "hello" {
		t.Errorf("user message = %+v", gotBody.Messages[1])
	}
}

func TestOpenAICompleteOmitsEmptySystem(t *testing.T) {
	var messageCount int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []json.RawMessage `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		messageCount = len(body.Messages)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	c := NewOpenAIClient("oa-key", "gpt-test", srv.URL, 1000, 0.7, nil)

	if _, err := c.Complete(context.Background(), "", "hello"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if messageCount != 1 {
		t.Errorf("messages = %d, want 1 (no system message)", messageCount)
	}
}

func TestOpenAICompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Incorrect API key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewOpenAIClient("bad-key", "gpt-test", srv.URL, 1000, 0.7, nil)

	_, err := c.Complete(context.Background(), "", "hello")
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("err = %v, want *ProviderError", err)
	}
	if provErr.Provider != ProviderOpenAI {
		t.Errorf("Provider = %q", provErr.Provider)
	}
}
