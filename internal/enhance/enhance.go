// Package enhance renders a prompt-type's meta-prompt template and asks
// a provider to rewrite the user's raw prompt.
package enhance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"promptsmith/internal/llm"
	"promptsmith/internal/rules"
)

// ErrEnhancementFailed is returned when the meta-prompt call fails,
// times out, or yields an empty rewrite. Callers treat enhancement as
// best-effort and fall back to the raw prompt.
var ErrEnhancementFailed = errors.New("enhancement failed")

// Enhancer issues meta-prompt calls through a Completer.
type Enhancer struct {
	completer llm.Completer
	logger    *slog.Logger
}

// New creates an Enhancer.
func New(completer llm.Completer, logger *slog.Logger) *Enhancer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enhancer{completer: completer, logger: logger}
}

// Render substitutes the raw prompt into the entry's template. The
// rendered text always contains the raw prompt verbatim.
func Render(entry rules.Entry, raw string) string {
	return strings.Replace(entry.Template, rules.Placeholder, raw, 1)
}

// Enhance rewrites raw through one meta-prompt call to the named
// provider and returns the unwrapped rewrite.
func (e *Enhancer) Enhance(ctx context.Context, raw string, entry rules.Entry, provider string) (string, error) {
	metaPrompt := Render(entry, raw)

	reply, err := e.completer.Complete(ctx, provider, entry.SystemPrompt, metaPrompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEnhancementFailed, err)
	}

	enhanced := Unwrap(reply)
	if enhanced == "" {
		return "", fmt.Errorf("%w: provider returned an empty rewrite", ErrEnhancementFailed)
	}

	e.logger.Debug("prompt enhanced",
		"prompt_type", entry.Type,
		"provider", provider,
		"raw_len", len(raw),
		"enhanced_len", len(enhanced),
	)

	return enhanced, nil
}

// Unwrap strips the explanatory dressing models tend to add around a
// rewritten prompt: surrounding whitespace, a leading "Enhanced
// prompt:" style label, and one layer of matched quotes.
func Unwrap(text string) string {
	s := strings.TrimSpace(text)

	for _, label := range []string{"enhanced prompt:", "improved prompt:", "enhanced:"} {
		if len(s) >= len(label) && strings.EqualFold(s[:len(label)], label) {
			s = strings.TrimSpace(s[len(label):])
			break
		}
	}

	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}

	return s
}
