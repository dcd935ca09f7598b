package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/ledgerdesk/internal/jobs"
	"github.com/odyssey-erp/ledgerdesk/internal/tenant"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Warmer refreshes one tenant's cached config. *tenant.Resolver satisfies it.
type Warmer interface {
	Warm(ctx context.Context, subdomain string) error
}

// TenantWarmJob keeps the tenant config cache hot for known subdomains.
type TenantWarmJob struct {
	Tenants Warmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewTenantWarmJob wires dependencies for the warm handler.
func NewTenantWarmJob(tenants Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *TenantWarmJob {
	return &TenantWarmJob{Tenants: tenants, Logger: logger, Metrics: metrics}
}

// Handle processes tenant warm tasks. Unknown subdomains are logged and
// skipped; other failures fail the task after every subdomain was tried.
func (j *TenantWarmJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Tenants == nil {
		return errors.New("tenant warm: handler not configured")
	}
	var payload TenantWarmPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskTenantWarm)
	logger := j.logger()
	start := time.Now()

	var errs []error
	warmed := 0
	for _, sub := range payload.Subdomains {
		// One slow tenant must not starve the rest of the batch.
		subCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := j.Tenants.Warm(subCtx, sub)
		cancel()
		switch {
		case err == nil:
			warmed++
			j.metrics().TenantWarmed("ok")
		case errors.Is(err, tenant.ErrTenantNotFound):
			j.metrics().TenantWarmed("missing")
			logger.Warn("tenant no longer exists", slog.String("subdomain", sub))
		default:
			j.metrics().TenantWarmed("error")
			logger.Error("warm tenant", slog.String("subdomain", sub), slog.Any("error", err))
			errs = append(errs, err)
		}
	}

	logger.Info("completed tenant warm", slog.Int("tenants", warmed), slog.Duration("duration", time.Since(start)))
	return tracker.End(errors.Join(errs...))
}

func (j *TenantWarmJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTenantWarm))
	}
	return slog.Default().With(slog.String("job", TaskTenantWarm))
}

func (j *TenantWarmJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
