package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer

	if err := run(context.Background(), &stdout, &stderr, []string{"version"}); err != nil {
		t.Fatalf("run version: %v", err)
	}
	if !strings.Contains(stdout.String(), "promptsmith") {
		t.Errorf("version output = %q, want promptsmith banner", stdout.String())
	}
}

func TestRunVersionJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer

	if err := run(context.Background(), &stdout, &stderr, []string{"-o", "json", "version"}); err != nil {
		t.Fatalf("run version: %v", err)
	}

	var info map[string]string
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		t.Fatalf("version output is not JSON: %v", err)
	}
	if info["version"] == "" {
		t.Error("version field missing from JSON output")
	}
}

func TestRunNoArgsPrintsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	if err := run(context.Background(), &stdout, &stderr, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "Usage:") {
		t.Errorf("output = %q, want usage text", stdout.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), &stdout, &stderr, []string{"frobnicate"})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("err = %v, want unknown command error", err)
	}
}

func TestRunUnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), &stdout, &stderr, []string{"-bogus"})
	if err == nil || !strings.Contains(err.Error(), "unknown flag") {
		t.Errorf("err = %v, want unknown flag error", err)
	}
}

func TestRunInitCommand(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer

	if err := run(context.Background(), &stdout, &stderr, []string{"init", dir}); err != nil {
		t.Fatalf("run init: %v", err)
	}
	if !strings.Contains(stdout.String(), "config.yaml") {
		t.Errorf("output = %q, want created-file listing", stdout.String())
	}
}
