package shared

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
)

// SensitiveRateLimit bounds state-changing POSTs (login, context switch) per
// caller.
const SensitiveRateLimit = 10

// RateLimitKey keys limiters on the signed-in user, falling back to the
// client IP for anonymous requests.
func RateLimitKey(r *http.Request) (string, error) {
	sess := SessionFromContext(r.Context())
	if sess != nil {
		if user := strings.TrimSpace(sess.SignedInAs()); user != "" {
			return "user:" + user, nil
		}
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}

// SensitiveLimiter returns the per-minute limiter applied to login and
// context-switch endpoints.
func SensitiveLimiter() func(http.Handler) http.Handler {
	return httprate.Limit(SensitiveRateLimit, time.Minute,
		httprate.WithKeyFuncs(RateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)
}
