package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Lookup sources reported to the observer.
const (
	SourceCache = "cache"
	SourceAPI   = "api"
	SourceMiss  = "miss"
)

// Fetcher loads a tenant from the system of record. Implementations return
// an error wrapping ErrTenantNotFound for unknown subdomains.
type Fetcher interface {
	TenantConfig(ctx context.Context, subdomain string) (Config, error)
}

// Resolver caches tenant configs in redis and collapses concurrent lookups
// of the same subdomain.
type Resolver struct {
	client   *redis.Client
	fetcher  Fetcher
	ttl      time.Duration
	logger   *slog.Logger
	observer func(source string)
	group    singleflight.Group
}

// ResolverOption customises a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver receives the source of every successful or missed lookup.
func WithObserver(fn func(source string)) ResolverOption {
	return func(r *Resolver) {
		r.observer = fn
	}
}

// NewResolver builds a resolver. A nil redis client disables caching.
func NewResolver(client *redis.Client, fetcher Fetcher, ttl time.Duration, opts ...ResolverOption) *Resolver {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	r := &Resolver{client: client, fetcher: fetcher, ttl: ttl, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func cacheKey(subdomain string) string {
	return "tenant:config:" + subdomain
}

// Resolve returns the config for subdomain, consulting the cache first.
func (r *Resolver) Resolve(ctx context.Context, subdomain string) (Config, error) {
	if subdomain == "" {
		return Default(), nil
	}
	if cfg, ok := r.cached(ctx, subdomain); ok {
		r.observe(SourceCache)
		return cfg, nil
	}
	ch := r.group.DoChan(subdomain, func() (interface{}, error) {
		return r.load(context.WithoutCancel(ctx), subdomain)
	})
	select {
	case <-ctx.Done():
		return Config{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			if errors.Is(res.Err, ErrTenantNotFound) {
				r.observe(SourceMiss)
			}
			return Config{}, res.Err
		}
		r.observe(SourceAPI)
		return res.Val.(Config), nil
	}
}

// Warm refetches subdomain from the API and overwrites the cache entry.
func (r *Resolver) Warm(ctx context.Context, subdomain string) error {
	if subdomain == "" {
		return nil
	}
	_, err := r.load(ctx, subdomain)
	return err
}

func (r *Resolver) cached(ctx context.Context, subdomain string) (Config, bool) {
	if r.client == nil {
		return Config{}, false
	}
	payload, err := r.client.Get(ctx, cacheKey(subdomain)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("tenant cache read failed", slog.String("subdomain", subdomain), slog.Any("error", err))
		}
		return Config{}, false
	}
	var cfg Config
	if err := json.Unmarshal(payload, &cfg); err != nil {
		r.logger.Warn("tenant cache entry corrupt", slog.String("subdomain", subdomain), slog.Any("error", err))
		return Config{}, false
	}
	return cfg, true
}

func (r *Resolver) load(ctx context.Context, subdomain string) (Config, error) {
	if r.fetcher == nil {
		return Config{}, fmt.Errorf("tenant: no fetcher configured")
	}
	cfg, err := r.fetcher.TenantConfig(ctx, subdomain)
	if err != nil {
		return Config{}, err
	}
	cfg.Subdomain = subdomain
	if r.client != nil {
		raw, err := json.Marshal(cfg)
		if err != nil {
			return Config{}, err
		}
		if err := r.client.Set(ctx, cacheKey(subdomain), raw, r.ttl).Err(); err != nil {
			r.logger.Warn("tenant cache write failed", slog.String("subdomain", subdomain), slog.Any("error", err))
		}
	}
	return cfg, nil
}

func (r *Resolver) observe(source string) {
	if r.observer != nil {
		r.observer(source)
	}
}

// Middleware resolves the tenant from the Host header. Unknown subdomains
// are answered by notFound; other lookup failures fall back to the default
// tenant so an API hiccup does not take the portal down.
func (r *Resolver) Middleware(baseDomain string, notFound http.HandlerFunc) func(http.Handler) http.Handler {
	if notFound == nil {
		notFound = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "tenant not found", http.StatusNotFound)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sub, ok := Subdomain(req.Host, baseDomain)
			if !ok {
				next.ServeHTTP(w, req.WithContext(ContextWithConfig(req.Context(), Default())))
				return
			}
			cfg, err := r.Resolve(req.Context(), sub)
			switch {
			case errors.Is(err, ErrTenantNotFound):
				notFound(w, req)
				return
			case err != nil:
				r.logger.Error("tenant lookup failed", slog.String("subdomain", sub), slog.Any("error", err))
				cfg = Default()
			}
			next.ServeHTTP(w, req.WithContext(ContextWithConfig(req.Context(), cfg)))
		})
	}
}
