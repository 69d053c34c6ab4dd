package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/all-in-blog/internal/http/respond"
)

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

// HealthHandler returns uptime and the state of each backing store.
type HealthHandler struct {
	startedAt time.Time
	checks    map[string]Pinger
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, checks: checks}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	respond.JSON(w, status, state, map[string]any{
		"status":       state,
		"uptime":       time.Since(h.startedAt).Truncate(time.Second).String(),
		"dependencies": deps,
	})
}
