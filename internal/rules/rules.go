// Package rules holds the enhancement rule catalog: per prompt-type
// classifier keywords, a system prompt, and a meta-prompt template.
//
// The built-in catalog is Go code rather than a data file because the
// templates are program logic: they carry a substitution contract that
// is validated at load time and exercised by tests. Deployments can
// still override or extend the catalog with a YAML file (see Load).
package rules

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Placeholder is the single substitution point every template must
// contain exactly once. The raw user prompt is spliced in verbatim.
const Placeholder = "{prompt}"

// ErrUnknownPromptType is returned by Lookup for a type not in the
// catalog. Callers fall back to the default type rather than surfacing
// this to the end user.
var ErrUnknownPromptType = errors.New("unknown prompt type")

// Entry is one prompt-type's enhancement rule.
type Entry struct {
	Type         string   `yaml:"-"`
	SystemPrompt string   `yaml:"system_prompt"`
	Template     string   `yaml:"template"`
	Keywords     []string `yaml:"keywords"`
}

// Catalog is the read-only rule set. It is safe for unlimited
// concurrent readers after Load returns.
type Catalog struct {
	entries     map[string]Entry
	defaultType string
}

// Load builds a catalog from the built-in rules, optionally merged with
// overrides from a YAML file (path may be empty). Overrides replace
// built-in entries wholesale by type key; new keys are added.
//
// Every template must contain exactly one Placeholder occurrence, and
// defaultType must resolve to an entry.
func Load(path, defaultType string) (*Catalog, error) {
	entries := builtin()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rules file: %w", err)
		}
		var overrides map[string]Entry
		if err := yaml.Unmarshal(data, &overrides); err != nil {
			return nil, fmt.Errorf("parse rules file: %w", err)
		}
		for key, entry := range overrides {
			entry.Type = key
			entries[key] = entry
		}
	}

	for key, entry := range entries {
		if n := strings.Count(entry.Template, Placeholder); n != 1 {
			return nil, fmt.Errorf("rule %q: template must contain exactly one %s placeholder, found %d", key, Placeholder, n)
		}
	}

	if _, ok := entries[defaultType]; !ok {
		return nil, fmt.Errorf("default type %q not present in catalog", defaultType)
	}

	return &Catalog{entries: entries, defaultType: defaultType}, nil
}

// Lookup returns the entry for the given prompt type.
func (c *Catalog) Lookup(promptType string) (Entry, error) {
	entry, ok := c.entries[promptType]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownPromptType, promptType)
	}
	return entry, nil
}

// Default returns the configured default entry.
func (c *Catalog) Default() Entry {
	return c.entries[c.defaultType]
}

// DefaultType returns the configured default type key.
func (c *Catalog) DefaultType() string {
	return c.defaultType
}

// Types returns all catalog keys in lexicographic order. The order is
// load-bearing: classification ties are broken by it.
func (c *Catalog) Types() []string {
	types := make([]string, 0, len(c.entries))
	for key := range c.entries {
		types = append(types, key)
	}
	sort.Strings(types)
	return types
}

// builtin returns the default rule catalog. Keyword lists drive
// classification; system prompts and templates drive the meta-prompt
// call that rewrites the user's prompt.
func builtin() map[string]Entry {
	return map[string]Entry{
		"coding": {
			Type:         "coding",
			SystemPrompt: "You are a professional software developer with expertise in clean code and best practices.",
			Keywords:     []string{"code", "function", "program", "script", "develop", "bug", "debug", "coding"},
			Template: `Consider this coding request: "{prompt}"

Enhance this request by:
1. Clarifying the programming language if not specified
2. Adding requirements for error handling and edge cases
3. Specifying if documentation is needed
4. Asking for proper formatting and modular design
5. Requesting appropriate comments and variable naming

Return ONLY the enhanced prompt without explanations or preamble.`,
		},
		"creative": {
			Type:         "creative",
			SystemPrompt: "You are a creative writing and content creation expert.",
			Keywords:     []string{"write", "story", "creative", "design", "article", "blog"},
			Template: `Consider this creative request: "{prompt}"

Enhance this request by:
1. Clarifying the style, tone, and format
2. Specifying target audience if relevant
3. Adding structure guidance
4. Including any relevant constraints
5. Specifying length or detail level

Return ONLY the enhanced prompt without explanations or preamble.`,
		},
		"analytical": {
			Type:         "analytical",
			SystemPrompt: "You are an analytical expert specializing in structured thinking and clear analysis.",
			Keywords:     []string{"analyze", "analysis", "research", "evaluate", "compare", "explain", "reason"},
			Template: `Consider this analytical request: "{prompt}"

Enhance this request by:
1. Adding structure for step-by-step reasoning
2. Specifying the depth of analysis needed
3. Clarifying what metrics or frameworks to use
4. Adding requirements for evidence or citations
5. Requesting specific output format if helpful

Return ONLY the enhanced prompt without explanations or preamble.`,
		},
		"general": {
			Type:         "general",
			SystemPrompt: "You are an expert prompt engineer who improves user prompts for better results.",
			Keywords:     nil, // catch-all, selected only when nothing else matches
			Template: `Consider this prompt: "{prompt}"

Enhance this prompt to be more effective by:
1. Adding relevant context or specificity
2. Clarifying any ambiguous aspects
3. Structuring multi-part requests logically
4. Adding appropriate constraints or guidance
5. Preserving the original intent while improving clarity

Return ONLY the enhanced prompt without explanations or preamble.`,
		},
	}
}
