package api

import (
	"context"
	"net/http"
	"time"
)

// Pinger is satisfied by *sql.DB and by the redis client wrapper.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	ProServer Pinger
	LocalDB   Pinger
	Cache     Pinger
}

// GET /healthz
// Degraded dependencies report 503 with a per-check breakdown; the process
// itself being up is not enough to reconcile anything.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	probe := func(name string, p Pinger) {
		if p == nil {
			return
		}
		if err := p.PingContext(ctx); err != nil {
			checks[name] = err.Error()
			healthy = false
			return
		}
		checks[name] = "ok"
	}

	probe("proserver", h.ProServer)
	probe("local_db", h.LocalDB)
	probe("cache", h.Cache)

	status := http.StatusOK
	state := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	respondJSON(w, status, map[string]any{"status": state, "checks": checks})
}
