package llm

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Registry routes completion requests to the backend named at call
// time. Providers are registered once at startup; a provider whose
// credential is absent is never registered, so requests naming it fail
// with a ProviderError instead of crashing the process.
type Registry struct {
	clients map[string]Client
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

// Register adds a client under a provider name.
func (r *Registry) Register(name string, client Client) {
	r.clients[name] = client
}

// Providers returns the registered provider names, sorted.
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Complete dispatches one completion call to the named provider and
// records request metrics. No retries happen here; retry policy belongs
// to the caller.
func (r *Registry) Complete(ctx context.Context, provider, system, user string) (string, error) {
	client, ok := r.clients[provider]
	if !ok {
		requestsTotal.WithLabelValues(provider, "error").Inc()
		return "", &ProviderError{Provider: provider, Err: fmt.Errorf("not configured (no credential or unsupported name)")}
	}

	start := time.Now()
	text, err := client.Complete(ctx, system, user)
	requestDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(provider, "error").Inc()
		return "", err
	}
	requestsTotal.WithLabelValues(provider, "success").Inc()
	return text, nil
}
