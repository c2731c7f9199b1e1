package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"promptsmith/internal/defaults"
)

// runInit initializes a promptsmith working directory with starter
// files. Existing files are never overwritten.
func runInit(w io.Writer, dir string) error {
	fmt.Fprintf(w, "Initializing promptsmith workspace in %s\n", dir)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, "config.yaml")
	if err := writeIfMissing(configPath, defaults.ConfigYAML); err != nil {
		return err
	}
	fmt.Fprintf(w, "  ✓ %s\n", configPath)

	rulesPath := filepath.Join(dir, "rules.yaml")
	if err := writeIfMissing(rulesPath, defaults.RulesYAML); err != nil {
		return err
	}
	fmt.Fprintf(w, "  ✓ %s\n", rulesPath)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Set provider API keys in the environment, then run: promptsmith serve")
	return nil
}

// writeIfMissing writes content to path only if the file does not
// already exist, so init never overwrites user customizations.
func writeIfMissing(path string, content []byte) error {
	if _, err := os.Stat(path); err == nil {
		return nil // already exists, skip
	}
	return os.WriteFile(path, content, 0o644)
}
