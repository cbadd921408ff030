package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/logger"
)

// Check reports whether a dependency is reachable.
type Check func(context.Context) error

const (
	StatusUp   = "UP"
	StatusDown = "DOWN"
)

// HealthResponse is the body written by HealthHandler.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler runs every check with timeout and answers 200 when all pass,
// 503 otherwise. With no checks it acts as a liveness probe.
func HealthHandler(log *slog.Logger, timeout time.Duration, checks map[string]Check) http.HandlerFunc {
	names := slices.Sorted(maps.Keys(checks))
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		resp := HealthResponse{Status: StatusUp}
		if len(names) > 0 {
			resp.Checks = make(map[string]string, len(names))
		}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				if log != nil {
					log.WarnContext(ctx, "health check failed", slog.String("check", name), logger.Error(err))
				}
				resp.Checks[name] = StatusDown
				resp.Status = StatusDown
				continue
			}
			resp.Checks[name] = StatusUp
		}

		code := http.StatusOK
		if resp.Status != StatusUp {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
