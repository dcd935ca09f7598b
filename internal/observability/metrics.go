package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/odyssey-erp/ledgerdesk/internal/role"
)

// Metrics collects the portal's Prometheus metrics.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	sessionFetches  *prometheus.CounterVec
	roleResolutions *prometheus.CounterVec
	tenantLookups   *prometheus.CounterVec
}

// NewMetrics initialises the registry and the portal metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgerdesk_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledgerdesk_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgerdesk_session_fetch_total",
		Help: "Session fetches by outcome (ok, unauthenticated, failed, stale).",
	}, []string{"outcome"})
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgerdesk_role_resolution_total",
		Help: "Dashboard role resolutions by state and effective role.",
	}, []string{"state", "role"})
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgerdesk_tenant_lookup_total",
		Help: "Tenant config lookups by source (cache, api, miss).",
	}, []string{"source"})
	registry.MustRegister(requests, duration, fetches, resolutions, lookups)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		sessionFetches:  fetches,
		roleResolutions: resolutions,
		tenantLookups:   lookups,
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records every HTTP request by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveSessionFetch counts a session store fetch outcome.
func (m *Metrics) ObserveSessionFetch(outcome string) {
	if m == nil {
		return
	}
	m.sessionFetches.WithLabelValues(outcome).Inc()
}

// ObserveResolution counts a role resolution.
func (m *Metrics) ObserveResolution(res role.Resolution) {
	if m == nil {
		return
	}
	m.roleResolutions.WithLabelValues(string(res.State), string(res.Role)).Inc()
}

// ObserveTenantLookup counts a tenant lookup by source.
func (m *Metrics) ObserveTenantLookup(source string) {
	if m == nil {
		return
	}
	m.tenantLookups.WithLabelValues(source).Inc()
}

// Registerer exposes the registry for custom collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
