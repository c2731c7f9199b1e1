package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type fakeClient struct {
	reply string
	err   error

	gotSystem string
	gotUser   string
}

func (f *fakeClient) Complete(ctx context.Context, system, user string) (string, error) {
	f.gotSystem = system
	f.gotUser = user
	return f.reply, f.err
}

func TestRegistryRoutesByName(t *testing.T) {
	openai := &fakeClient{reply: "from openai"}
	anthropic := &fakeClient{reply: "from anthropic"}

	r := NewRegistry()
	r.Register(ProviderOpenAI, openai)
	r.Register(ProviderAnthropic, anthropic)

	got, err := r.Complete(context.Background(), ProviderAnthropic, "sys", "hello")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "from anthropic" {
		t.Errorf("Complete = %q, want from anthropic", got)
	}
	if anthropic.gotSystem != "sys" || anthropic.gotUser != "hello" {
		t.Errorf("prompts not forwarded: system=%q user=%q", anthropic.gotSystem, anthropic.gotUser)
	}
	if openai.gotUser != "" {
		t.Error("wrong client invoked")
	}
}

func TestRegistryUnknownProvider(t *testing.T) {
	r := NewRegistry()

	_, err := r.Complete(context.Background(), "mystery", "", "hello")
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("err = %v, want *ProviderError", err)
	}
	if provErr.Provider != "mystery" {
		t.Errorf("Provider = %q, want mystery", provErr.Provider)
	}
}

func TestRegistryPassesClientErrorThrough(t *testing.T) {
	failing := &fakeClient{err: &ProviderError{Provider: ProviderOpenAI, Err: fmt.Errorf("401 unauthorized")}}

	r := NewRegistry()
	r.Register(ProviderOpenAI, failing)

	_, err := r.Complete(context.Background(), ProviderOpenAI, "", "hello")
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("err = %v, want *ProviderError", err)
	}
	if provErr.Provider != ProviderOpenAI {
		t.Errorf("Provider = %q, want %q", provErr.Provider, ProviderOpenAI)
	}
}

func TestRegistryProvidersSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(ProviderOpenAI, &fakeClient{})
	r.Register(ProviderAnthropic, &fakeClient{})
	r.Register(ProviderHuggingFace, &fakeClient{})

	got := r.Providers()
	want := []string{ProviderAnthropic, ProviderHuggingFace, ProviderOpenAI}
	if len(got) != len(want) {
		t.Fatalf("Providers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Providers()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
