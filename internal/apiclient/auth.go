package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/odyssey-erp/ledgerdesk/internal/tenant"
)

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (Token, error) {
	body := map[string]string{"email": email, "password": password}
	var token Token
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &token); err != nil {
		return Token{}, err
	}
	if token.AccessToken == "" {
		return Token{}, fmt.Errorf("apiclient: login returned no token")
	}
	return token, nil
}

// Logout revokes the token. Already-invalid tokens are not an error.
func (c *Client) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
	if errors.Is(err, ErrUnauthorized) {
		return nil
	}
	return err
}

// TenantConfig resolves a tenant's theming by subdomain.
func (c *Client) TenantConfig(ctx context.Context, subdomain string) (tenant.Config, error) {
	var cfg tenant.Config
	path := "/tenants/" + url.PathEscape(subdomain) + "/config"
	if err := c.do(ctx, http.MethodGet, path, "", nil, &cfg); err != nil {
		if errors.Is(err, ErrNotFound) {
			return tenant.Config{}, fmt.Errorf("%w: %s", tenant.ErrTenantNotFound, subdomain)
		}
		return tenant.Config{}, err
	}
	if cfg.Subdomain == "" {
		cfg.Subdomain = subdomain
	}
	return cfg, nil
}

var _ tenant.Fetcher = (*Client)(nil)
