// Package defaults bundles the starter files written by `promptsmith init`.
package defaults

// ConfigYAML is the starter configuration. API keys are pulled from the
// environment at load time, so the file itself holds no secrets.
var ConfigYAML = []byte(`# promptsmith configuration

listen:
  address: ""
  port: 8000

# One credential per provider. A provider with an empty key is simply
# unavailable; requests naming it return a provider error.
providers:
  openai:
    api_key: ${OPENAI_API_KEY}
    model: gpt-4o
    # base_url: https://openrouter.ai/api/v1   # any OpenAI-compatible gateway
  anthropic:
    api_key: ${ANTHROPIC_API_KEY}
    model: claude-sonnet-4-20250514
  huggingface:
    api_key: ${HUGGINGFACE_API_KEY}
    model: meta-llama/Llama-2-70b-chat-hf

enhance:
  timeout_sec: 60
  max_tokens: 1000
  temperature: 0.7

# Optional rule catalog overrides; see rules.yaml.
rules_file: rules.yaml

data_dir: .
default_type: general
log_level: info
`)

// RulesYAML is a starter rule override file. Entries replace built-in
// rules of the same name; new names extend the catalog. Every template
// must contain exactly one {prompt} placeholder.
var RulesYAML = []byte(`# Enhancement rule overrides.
#
# summarization:
#   system_prompt: You are an expert at writing precise summarization requests.
#   keywords: [summarize, summary, tldr, condense]
#   template: |
#     Consider this summarization request: "{prompt}"
#
#     Enhance this request by specifying the desired length, the audience,
#     and what must not be lost. Return ONLY the enhanced prompt.
`)
