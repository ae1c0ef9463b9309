package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownProvider is returned when no adapter is registered under the
// requested name.
var ErrUnknownProvider = errors.New("unknown oauth provider")

// UserInfo is the normalized identity an adapter returns after exchanging
// an authorization code. It is transient: the display name and any other
// provider PII are surfaced to the caller only and never persisted.
type UserInfo struct {
	Provider      string
	Subject       string // provider-scoped user identifier
	Email         string
	Name          string
	EmailVerified bool // provider's own assertion of email ownership
}

// Provider exchanges an authorization code for a normalized identity.
type Provider interface {
	Name() string
	Authenticate(ctx context.Context, code, redirectURI string) (*UserInfo, error)
}

// Registry holds the name→adapter map, keyed case-insensitively. It is
// constructed once at startup and injected into the OAuth login handler;
// there is no process-wide registration.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	m := make(map[string]Provider, len(providers))
	for _, p := range providers {
		m[strings.ToLower(p.Name())] = p
	}
	return &Registry{providers: m}
}

// Resolve returns the adapter for the given provider name.
func (r *Registry) Resolve(name string) (Provider, error) {
	p, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}
