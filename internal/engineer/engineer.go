// Package engineer composes classification, enhancement, dispatch, and
// the history ledger into the single process-a-prompt operation exposed
// to the boundary layer.
package engineer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"promptsmith/internal/classify"
	"promptsmith/internal/enhance"
	"promptsmith/internal/history"
	"promptsmith/internal/llm"
	"promptsmith/internal/rules"
)

// Result is the outcome of one processed prompt.
type Result struct {
	RecordID       int64
	PromptType     string
	EnhancedPrompt string
	Response       string
	// Enhanced reports whether the meta-prompt rewrite was actually
	// applied. False means the original prompt went downstream (failed
	// or bypassed enhancement).
	Enhanced bool
}

// Request is one prompt-processing request.
type Request struct {
	Prompt   string
	Provider string
	// BypassEnhancement sends the prompt downstream unmodified while
	// still recording the transaction.
	BypassEnhancement bool
}

// Engineer owns the enhancement pipeline. The provider adapter is
// injected as an interface so tests can script its responses.
type Engineer struct {
	catalog     *rules.Catalog
	completer   llm.Completer
	enhancer    *enhance.Enhancer
	ledger      *history.Store
	logger      *slog.Logger
	metaTimeout time.Duration
}

// New creates an Engineer. metaTimeout bounds each meta-prompt attempt;
// zero means no bound beyond the request context.
func New(catalog *rules.Catalog, completer llm.Completer, ledger *history.Store, metaTimeout time.Duration, logger *slog.Logger) *Engineer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engineer{
		catalog:     catalog,
		completer:   completer,
		enhancer:    enhance.New(completer, logger),
		ledger:      ledger,
		logger:      logger,
		metaTimeout: metaTimeout,
	}
}

// Process runs one prompt through the pipeline:
//
//	classify → enhance (best-effort) → dispatch → record
//
// Enhancement failure falls back to the raw prompt and is logged as a
// degraded enhancement. Dispatch failure is the request's failure: the
// error is returned and nothing is recorded, so the ledger stays a
// record of delivered responses only.
func (e *Engineer) Process(ctx context.Context, req Request) (*Result, error) {
	raw := strings.TrimSpace(req.Prompt)
	if raw == "" {
		return nil, fmt.Errorf("empty prompt")
	}

	promptType := classify.Classify(raw, e.catalog)
	entry, err := e.catalog.Lookup(promptType)
	if err != nil {
		// Classification only returns catalog types, but the contract
		// is to degrade to the default rather than propagate.
		entry = e.catalog.Default()
		promptType = e.catalog.DefaultType()
	}

	enhanced := raw
	applied := false
	if !req.BypassEnhancement {
		if text, err := e.enhanceWithRetry(ctx, raw, entry, req.Provider); err != nil {
			e.logger.Warn("enhancement degraded, dispatching raw prompt",
				"prompt_type", promptType,
				"provider", req.Provider,
				"error", err,
			)
		} else {
			enhanced = text
			applied = true
		}
	}

	response, err := e.completer.Complete(ctx, req.Provider, "", enhanced)
	if err != nil {
		return nil, err
	}

	id, err := e.ledger.Append(ctx, history.Record{
		OriginalPrompt: raw,
		PromptType:     promptType,
		EnhancedPrompt: enhanced,
		Provider:       req.Provider,
		Response:       response,
		Enhanced:       applied,
	})
	if err != nil {
		return nil, fmt.Errorf("record enhancement: %w", err)
	}

	e.logger.Info("prompt processed",
		"record_id", id,
		"prompt_type", promptType,
		"provider", req.Provider,
		"enhanced", applied,
	)

	return &Result{
		RecordID:       id,
		PromptType:     promptType,
		EnhancedPrompt: enhanced,
		Response:       response,
		Enhanced:       applied,
	}, nil
}

// enhanceWithRetry attempts the meta-prompt call, retrying once on
// failure. The final user-facing dispatch is never retried; only this
// best-effort stage is.
func (e *Engineer) enhanceWithRetry(ctx context.Context, raw string, entry rules.Entry, provider string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if e.metaTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, e.metaTimeout)
		}
		text, err := e.enhancer.Enhance(attemptCtx, raw, entry, provider)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	if !errors.Is(lastErr, enhance.ErrEnhancementFailed) {
		lastErr = fmt.Errorf("%w: %v", enhance.ErrEnhancementFailed, lastErr)
	}
	return "", lastErr
}

// Rate records a feedback rating on a ledger record.
func (e *Engineer) Rate(ctx context.Context, id int64, rating int) error {
	return e.ledger.Rate(ctx, id, rating)
}

// Get retrieves one ledger record.
func (e *Engineer) Get(ctx context.Context, id int64) (*history.Record, error) {
	return e.ledger.Get(ctx, id)
}

// History returns all ledger records in insertion order.
func (e *Engineer) History(ctx context.Context) ([]history.Record, error) {
	return e.ledger.List(ctx)
}
