package enhance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"promptsmith/internal/rules"
)

// scriptedCompleter returns canned responses in order, or errors.
type scriptedCompleter struct {
	replies []string
	err     error
	calls   int

	lastProvider string
	lastSystem   string
	lastUser     string
}

func (f *scriptedCompleter) Complete(ctx context.Context, provider, system, user string) (string, error) {
	f.calls++
	f.lastProvider = provider
	f.lastSystem = system
	f.lastUser = user
	if f.err != nil {
		return "", f.err
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

func testEntry(t *testing.T) rules.Entry {
	t.Helper()
	catalog, err := rules.Load("", "general")
	if err != nil {
		t.Fatalf("rules.Load: %v", err)
	}
	entry, err := catalog.Lookup("coding")
	if err != nil {
		t.Fatalf("Lookup(coding): %v", err)
	}
	return entry
}

// The rendered meta-prompt must always contain the raw prompt verbatim.
func TestRenderContainsRawPrompt(t *testing.T) {
	entry := testEntry(t)

	raws := []string{
		"Write a function to calculate fibonacci numbers",
		"prompt with {braces} and \"quotes\"",
		"multi\nline\nprompt",
	}
	for _, raw := range raws {
		rendered := Render(entry, raw)
		if !strings.Contains(rendered, raw) {
			t.Errorf("Render output missing raw prompt %q", raw)
		}
		if strings.Contains(rendered, rules.Placeholder) {
			t.Errorf("Render left placeholder in output for %q", raw)
		}
	}
}

func TestEnhanceCarriesSystemPromptAndTemplate(t *testing.T) {
	entry := testEntry(t)
	fake := &scriptedCompleter{replies: []string{"Better prompt."}}
	e := New(fake, nil)

	got, err := e.Enhance(context.Background(), "fix my function", entry, "openai")
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if got != "Better prompt." {
		t.Errorf("Enhance = %q, want unwrapped reply", got)
	}
	if fake.lastProvider != "openai" {
		t.Errorf("provider = %q, want openai", fake.lastProvider)
	}
	if fake.lastSystem != entry.SystemPrompt {
		t.Errorf("system prompt not forwarded")
	}
	if !strings.Contains(fake.lastUser, "fix my function") {
		t.Errorf("meta-prompt missing raw prompt: %q", fake.lastUser)
	}
}

func TestEnhanceFailsOnProviderError(t *testing.T) {
	entry := testEntry(t)
	fake := &scriptedCompleter{err: fmt.Errorf("connection refused")}
	e := New(fake, nil)

	_, err := e.Enhance(context.Background(), "fix my function", entry, "openai")
	if !errors.Is(err, ErrEnhancementFailed) {
		t.Fatalf("err = %v, want ErrEnhancementFailed", err)
	}
}

func TestEnhanceFailsOnEmptyReply(t *testing.T) {
	entry := testEntry(t)
	fake := &scriptedCompleter{replies: []string{"   \n  "}}
	e := New(fake, nil)

	_, err := e.Enhance(context.Background(), "fix my function", entry, "openai")
	if !errors.Is(err, ErrEnhancementFailed) {
		t.Fatalf("err = %v, want ErrEnhancementFailed", err)
	}
}

func TestUnwrap(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"  padded  ", "padded"},
		{`"quoted prompt"`, "quoted prompt"},
		{"'single quoted'", "single quoted"},
		{"Enhanced prompt: do the thing", "do the thing"},
		{"enhanced PROMPT: do the thing", "do the thing"},
		{`Improved prompt: "do the thing"`, "do the thing"},
		{"Enhanced: do the thing", "do the thing"},
		{`"unbalanced quote`, `"unbalanced quote`},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Unwrap(tt.in); got != tt.want {
			t.Errorf("Unwrap(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
