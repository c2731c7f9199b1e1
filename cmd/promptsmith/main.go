// Promptsmith is a prompt-enhancement middleware. It sits between users
// and LLM providers: it classifies an incoming prompt, rewrites it with
// a type-specific meta-prompt, forwards the improved prompt to the
// requested provider, and records the transaction in a durable ledger
// for feedback-driven analysis.
//
// Usage:
//
//	promptsmith serve                       Start the API server
//	promptsmith enhance [-provider p] TEXT  Run one prompt through the pipeline
//	promptsmith history                     Print the recorded ledger
//	promptsmith init [dir]                  Write starter config and rules files
//	promptsmith version                     Print version and build information
//	promptsmith -o json version             Output version information as JSON
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"promptsmith/internal/api"
	"promptsmith/internal/buildinfo"
	"promptsmith/internal/config"
	"promptsmith/internal/engineer"
	"promptsmith/internal/history"
	"promptsmith/internal/llm"
	"promptsmith/internal/rules"

	_ "github.com/mattn/go-sqlite3" // SQLite driver for database/sql
)

// main is intentionally minimal. It constructs the OS-level environment
// and delegates immediately to [run] so the full lifecycle can be
// driven from tests.
func main() {
	ctx := context.Background()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// run is the real entry point. Arguments are parsed by hand: the flag
// package relies on package-level globals, which interfere with
// parallel tests, and the argument surface here is small.
func run(ctx context.Context, stdout io.Writer, stderr io.Writer, args []string) error {
	var configPath string
	var outputFmt string // "text" (default) or "json"
	var command string
	var cmdArgs []string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-config" && i+1 < len(args):
			configPath = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-config="):
			configPath = strings.TrimPrefix(args[i], "-config=")
		case (args[i] == "-o" || args[i] == "--output") && i+1 < len(args):
			outputFmt = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-o="):
			outputFmt = strings.TrimPrefix(args[i], "-o=")
		case args[i] == "-h" || args[i] == "-help" || args[i] == "--help":
			return printUsage(stdout)
		case !strings.HasPrefix(args[i], "-") && command == "":
			command = args[i]
		default:
			if command != "" {
				cmdArgs = append(cmdArgs, args[i])
			} else {
				return fmt.Errorf("unknown flag %q (try -help)", args[i])
			}
		}
	}

	switch command {
	case "version":
		return printVersion(stdout, outputFmt)
	case "init":
		dir := "."
		if len(cmdArgs) > 0 {
			dir = cmdArgs[0]
		}
		return runInit(stdout, dir)
	case "serve", "enhance", "history":
		// Fall through to config-dependent commands below.
	case "":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command %q (try -help)", command)
	}

	cfgPath, err := config.FindConfig(configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", cfgPath, err)
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: config.ReplaceLogLevelNames,
	}))
	slog.SetDefault(logger)

	catalog, err := rules.Load(cfg.RulesFile, cfg.DefaultType)
	if err != nil {
		return fmt.Errorf("load rule catalog: %w", err)
	}

	registry := buildRegistry(cfg, logger)
	if len(registry.Providers()) == 0 {
		logger.Warn("no provider credentials configured; all completion calls will fail")
	} else {
		logger.Info("providers configured", "providers", registry.Providers())
	}

	ledger, err := history.NewStore(filepath.Join(cfg.DataDir, "history.db"))
	if err != nil {
		return fmt.Errorf("open history ledger: %w", err)
	}
	defer ledger.Close()

	eng := engineer.New(catalog, registry, ledger, cfg.Enhance.Timeout(), logger)

	switch command {
	case "serve":
		return runServe(ctx, cfg, eng, logger)
	case "enhance":
		return runEnhance(ctx, stdout, eng, cmdArgs)
	case "history":
		return runHistory(ctx, stdout, eng, outputFmt)
	}
	return nil
}

// buildRegistry registers a client for every provider with a credential.
// Providers without keys stay unregistered and surface as provider
// errors at call time rather than crashing startup.
func buildRegistry(cfg *config.Config, logger *slog.Logger) *llm.Registry {
	registry := llm.NewRegistry()
	enh := cfg.Enhance

	if p := cfg.Providers.OpenAI; p.APIKey != "" {
		registry.Register(llm.ProviderOpenAI,
			llm.NewOpenAIClient(p.APIKey, p.Model, p.BaseURL, enh.MaxTokens, enh.Temperature, logger))
	}
	if p := cfg.Providers.Anthropic; p.APIKey != "" {
		registry.Register(llm.ProviderAnthropic,
			llm.NewAnthropicClient(p.APIKey, p.Model, enh.MaxTokens, logger))
	}
	if p := cfg.Providers.HuggingFace; p.APIKey != "" {
		registry.Register(llm.ProviderHuggingFace,
			llm.NewHuggingFaceClient(p.APIKey, p.Model, p.BaseURL, enh.MaxTokens, enh.Temperature, logger))
	}
	return registry
}

func runServe(ctx context.Context, cfg *config.Config, eng *engineer.Engineer, logger *slog.Logger) error {
	// SIGINT/SIGTERM cancel the context and trigger graceful shutdown.
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := api.NewServer(cfg.Listen.Address, cfg.Listen.Port, eng, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	logger.Info("startup complete", "build", buildinfo.String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

func runEnhance(ctx context.Context, stdout io.Writer, eng *engineer.Engineer, args []string) error {
	provider := llm.ProviderOpenAI
	var promptParts []string
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-provider" && i+1 < len(args):
			provider = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-provider="):
			provider = strings.TrimPrefix(args[i], "-provider=")
		default:
			promptParts = append(promptParts, args[i])
		}
	}
	prompt := strings.Join(promptParts, " ")
	if prompt == "" {
		return fmt.Errorf("usage: promptsmith enhance [-provider name] <prompt>")
	}

	result, err := eng.Process(ctx, engineer.Request{Prompt: prompt, Provider: provider})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "record:   %d\n", result.RecordID)
	fmt.Fprintf(stdout, "type:     %s\n", result.PromptType)
	fmt.Fprintf(stdout, "enhanced: %s\n\n", result.EnhancedPrompt)
	fmt.Fprintln(stdout, result.Response)
	return nil
}

func runHistory(ctx context.Context, stdout io.Writer, eng *engineer.Engineer, outputFmt string) error {
	records, err := eng.History(ctx)
	if err != nil {
		return err
	}

	if outputFmt == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	for _, rec := range records {
		rating := "-"
		if rec.Rating != nil {
			rating = fmt.Sprintf("%d", *rec.Rating)
		}
		fmt.Fprintf(stdout, "#%d [%s] %s provider=%s enhanced=%t rating=%s\n",
			rec.ID,
			rec.CreatedAt.Local().Format(time.DateTime),
			rec.PromptType,
			rec.Provider,
			rec.Enhanced,
			rating,
		)
	}
	return nil
}

func printVersion(stdout io.Writer, outputFmt string) error {
	if outputFmt == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(buildinfo.Info())
	}
	fmt.Fprintln(stdout, buildinfo.String())
	return nil
}

func printUsage(stdout io.Writer) error {
	fmt.Fprint(stdout, `promptsmith - prompt-enhancement middleware

Usage:
  promptsmith [flags] <command> [args]

Commands:
  serve                        Start the API server
  enhance [-provider p] TEXT   Run one prompt through the pipeline
  history                      Print the recorded ledger
  init [dir]                   Write starter config.yaml and rules.yaml
  version                      Print version and build information

Flags:
  -config PATH   Config file (default: search standard locations)
  -o FORMAT      Output format: text or json
  -h, -help      Show this help
`)
	return nil
}
