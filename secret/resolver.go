package secret

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrMissingEnv reports unset environment variables.
	ErrMissingEnv = errors.New("secret: missing environment variable")

	// ErrUnknownProvider reports a secretref naming an unregistered provider.
	ErrUnknownProvider = errors.New("secret: unknown provider")

	// ErrEmptySecret reports a strict resolver receiving an empty value.
	ErrEmptySecret = errors.New("secret: empty value")
)

const refPrefix = "secretref:"

// Resolver expands env references and resolves secretrefs.
type Resolver struct {
	providers map[string]Provider
	lookup    LookupFunc
	strict    bool
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithProvider registers p, replacing any provider with the same name.
func WithProvider(p Provider) ResolverOption {
	return func(r *Resolver) {
		r.providers[p.Name()] = p
	}
}

// WithLookup sets the environment lookup used for ${VAR} expansion and
// the env provider.
func WithLookup(lookup LookupFunc) ResolverOption {
	return func(r *Resolver) {
		r.lookup = lookup
		r.providers["env"] = EnvProvider{Lookup: lookup}
	}
}

// Strict makes a secretref that resolves to "" an error.
func Strict() ResolverOption {
	return func(r *Resolver) { r.strict = true }
}

// NewResolver creates a resolver with the env and file providers.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		providers: map[string]Provider{
			"env":  EnvProvider{},
			"file": FileProvider{},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveValue expands value and, if it is a secretref, resolves it.
// Plain values are returned after expansion.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	lookup := r.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	expanded, err := Expand(value, lookup)
	if err != nil {
		return "", err
	}

	name, ref, ok := ParseSecretRef(expanded)
	if !ok {
		return expanded, nil
	}
	p, ok := r.providers[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	out, err := p.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if r.strict && out == "" {
		return "", fmt.Errorf("%w: %s%s:%s", ErrEmptySecret, refPrefix, name, ref)
	}
	return out, nil
}

// ParseSecretRef splits secretref:<provider>:<ref>.
func ParseSecretRef(value string) (provider, ref string, ok bool) {
	rest, found := strings.CutPrefix(value, refPrefix)
	if !found {
		return "", "", false
	}
	provider, ref, found = strings.Cut(rest, ":")
	if !found || provider == "" || ref == "" {
		return "", "", false
	}
	return provider, ref, true
}
