// Package config handles promptsmith configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./config.yaml, ~/.config/promptsmith/config.yaml,
// /etc/promptsmith/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "promptsmith", "config.yaml"))
	}

	paths = append(paths, "/etc/promptsmith/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all promptsmith configuration.
type Config struct {
	Listen      ListenConfig    `yaml:"listen"`
	Providers   ProvidersConfig `yaml:"providers"`
	Enhance     EnhanceConfig   `yaml:"enhance"`
	RulesFile   string          `yaml:"rules_file"`
	DataDir     string          `yaml:"data_dir"`
	DefaultType string          `yaml:"default_type"`
	LogLevel    string          `yaml:"log_level"`
}

// ListenConfig defines the API server settings.
type ListenConfig struct {
	Address string `yaml:"address"` // Bind address (default: "" = all interfaces)
	Port    int    `yaml:"port"`
}

// ProvidersConfig holds per-backend credentials and model selection.
// A provider with an empty API key is simply not registered; requests
// naming it fail with a provider error rather than crashing startup.
type ProvidersConfig struct {
	OpenAI      ProviderConfig `yaml:"openai"`
	Anthropic   ProviderConfig `yaml:"anthropic"`
	HuggingFace ProviderConfig `yaml:"huggingface"`
}

// ProviderConfig defines a single completion backend.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"` // Override for OpenAI-compatible gateways / HF endpoints
}

// EnhanceConfig controls the meta-prompt call.
type EnhanceConfig struct {
	// TimeoutSec bounds a single meta-prompt call. A timed-out call is
	// treated as an enhancement failure, not a request failure.
	TimeoutSec int `yaml:"timeout_sec"`
	// MaxTokens caps completion length on providers that require it.
	MaxTokens int `yaml:"max_tokens"`
	// Temperature is passed through to the completion call.
	Temperature float64 `yaml:"temperature"`
}

// Timeout returns the meta-prompt timeout as a duration.
func (e EnhanceConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSec) * time.Second
}

// Load reads configuration from a YAML file. Environment variable
// references in the file (e.g. api_key: ${OPENAI_API_KEY}) are expanded
// before parsing so secrets never need to live in the file itself.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Listen:      ListenConfig{Port: 8000},
		DataDir:     ".",
		DefaultType: "general",
		Enhance: EnhanceConfig{
			TimeoutSec:  60,
			MaxTokens:   1000,
			Temperature: 0.7,
		},
		Providers: ProvidersConfig{
			OpenAI:      ProviderConfig{Model: "gpt-4o"},
			Anthropic:   ProviderConfig{Model: "claude-sonnet-4-20250514"},
			HuggingFace: ProviderConfig{Model: "meta-llama/Llama-2-70b-chat-hf"},
		},
	}
}
