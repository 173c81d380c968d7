package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/technosupport/ts-apc/internal/middleware"
)

// Router assembles the full HTTP surface: the v1 API, the health probe and
// the optional metrics endpoint.
func Router(bh *BuildingHandler, ph *PanelHandler, hh *HealthHandler, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/buildings", bh.List)
		r.Get("/buildings/{id}/schedule", bh.GetSchedule)
		r.Put("/buildings/{id}/schedule", bh.SetSchedule)
		r.Get("/buildings/{id}/devices", bh.ListDevices)
		r.Post("/buildings/{id}/reevaluate", bh.Reevaluate)
		r.Post("/buildings/{id}/action", bh.Action)
		r.Post("/proevents/ignore/bulk", bh.IgnoreBulk)

		r.Get("/panel", ph.Status)
		r.Post("/panel", ph.SetStatus)
	})

	r.Get("/healthz", hh.Healthz)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	return r
}
