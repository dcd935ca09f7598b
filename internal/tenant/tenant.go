// Package tenant resolves the white-label configuration of the tenant a
// request was addressed to, keyed by subdomain.
package tenant

import (
	"context"
	"errors"
	"net"
	"strings"
)

// ErrTenantNotFound is returned when no tenant owns a subdomain.
var ErrTenantNotFound = errors.New("tenant not found")

// DefaultColor is applied when a tenant does not set its own brand colour.
const DefaultColor = "#1f4e79"

// Config is the theming a tenant applies to the portal.
type Config struct {
	Subdomain    string `json:"subdomain"`
	Name         string `json:"name"`
	PrimaryColor string `json:"primaryColor"`
	LogoURL      string `json:"logoUrl"`
}

// Default is the tenant used when the host carries no subdomain.
func Default() Config {
	return Config{Name: "Ledgerdesk", PrimaryColor: DefaultColor}
}

// IsDefault reports whether the config is the fallback tenant.
func (c Config) IsDefault() bool {
	return c.Subdomain == ""
}

// Color returns the brand colour with the default applied.
func (c Config) Color() string {
	if c.PrimaryColor == "" {
		return DefaultColor
	}
	return c.PrimaryColor
}

// Subdomain extracts the left-most label of host below baseDomain.
// "acme.ledgerdesk.io:8080" with base "ledgerdesk.io" yields "acme".
func Subdomain(host, baseDomain string) (string, bool) {
	baseDomain = strings.Trim(strings.ToLower(baseDomain), ".")
	if baseDomain == "" {
		return "", false
	}
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	if !strings.HasSuffix(host, "."+baseDomain) {
		return "", false
	}
	prefix := strings.TrimSuffix(host, "."+baseDomain)
	if prefix == "" {
		return "", false
	}
	labels := strings.Split(prefix, ".")
	sub := labels[len(labels)-1]
	if sub == "" || sub == "www" {
		return "", false
	}
	return sub, true
}

type contextKey struct{}

// ContextWithConfig stores the tenant config in context.
func ContextWithConfig(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, contextKey{}, cfg)
}

// FromContext returns the request's tenant, or the default tenant.
func FromContext(ctx context.Context) Config {
	if cfg, ok := ctx.Value(contextKey{}).(Config); ok {
		return cfg
	}
	return Default()
}
