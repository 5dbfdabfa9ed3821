package provider

import (
	"context"
	"fmt"

	"newsdesk/internal/domain"
)

// Provider captures a single candidate-discovery strategy (RSS discovery,
// NewsAPI, Newscatcher, mediastack).
type Provider interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Candidate, error)
}

// Registry keeps a mapping from provider names to their implementations,
// preserving registration order for deterministic aggregation.
type Registry struct {
	providers map[string]Provider
	order     []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: map[string]Provider{}}
}

// Register adds or replaces a provider implementation.
func (r *Registry) Register(p Provider) {
	if r.providers == nil {
		r.providers = map[string]Provider{}
	}
	if _, ok := r.providers[p.Name()]; !ok {
		r.order = append(r.order, p.Name())
	}
	r.providers[p.Name()] = p
}

// Resolve returns a provider by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Provider, error) {
	if p, ok := r.providers[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("provider %s is not registered", name)
}

// All returns every registered provider in registration order.
func (r *Registry) All() []Provider {
	out := make([]Provider, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.providers[name])
	}
	return out
}
