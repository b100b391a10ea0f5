package api

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultDevBaseURL is the backend root used in development when no override is set.
	DefaultDevBaseURL BaseURL = "http://localhost:13579/"
	// DefaultProdBaseURL is the backend root in production. The backend serves the
	// UI and the API from the same origin, so the root is relative.
	DefaultProdBaseURL BaseURL = "/"
)

// Environment describes the runtime the base URL is resolved for.
type Environment struct {
	Dev      bool
	Override string
}

// BaseURL is the prefix every backend request path is joined to.
type BaseURL string

// ResolveBaseURL returns the backend root for env. The override only applies in
// development.
func ResolveBaseURL(env Environment) BaseURL {
	if env.Dev {
		if env.Override != "" {
			return BaseURL(env.Override)
		}
		return DefaultDevBaseURL
	}

	return DefaultProdBaseURL
}

func (b BaseURL) String() string {
	return string(b)
}

// Join appends path to the base with exactly one slash between them.
func (b BaseURL) Join(path string) string {
	return strings.TrimRight(string(b), "/") + "/" + strings.TrimLeft(path, "/")
}

// IsAbsolute reports whether the base carries a scheme and host.
func (b BaseURL) IsAbsolute() bool {
	u, err := url.Parse(string(b))
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}

// Resolve resolves a relative base against origin. Absolute bases are returned
// unchanged.
func (b BaseURL) Resolve(origin string) (BaseURL, error) {
	if b.IsAbsolute() {
		return b, nil
	}

	ref, err := url.Parse(string(b))
	if err != nil {
		return "", fmt.Errorf("parsing base url %q: %w", string(b), err)
	}
	root, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("parsing origin %q: %w", origin, err)
	}
	if !root.IsAbs() || root.Host == "" {
		return "", fmt.Errorf("origin %q must include scheme and host", origin)
	}

	return BaseURL(root.ResolveReference(ref).String()), nil
}
