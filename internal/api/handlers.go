package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/technosupport/ts-apc/internal/buildings"
	"github.com/technosupport/ts-apc/internal/reconcile"
)

// Helpers
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func buildingID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// Reevaluator triggers the override state machine for one building.
type Reevaluator interface {
	ReevaluateBuilding(ctx context.Context, buildingID int64) error
}

// PanelStore exposes the cached panel master switch.
type PanelStore interface {
	PanelArmed(ctx context.Context) (bool, error)
	SetPanelArmed(ctx context.Context, armed bool) error
}

type BuildingHandler struct {
	Service    *buildings.Service
	Reconciler Reevaluator
}

// GET /api/v1/buildings
func (h *BuildingHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.Service.List(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": views})
}

// GET /api/v1/buildings/{id}/schedule
func (h *BuildingHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := buildingID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid building id")
		return
	}
	view, err := h.Service.GetSchedule(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// PUT /api/v1/buildings/{id}/schedule
func (h *BuildingHandler) SetSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := buildingID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid building id")
		return
	}

	var req struct {
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.Service.SetSchedule(r.Context(), id, req.StartTime, req.EndTime); err != nil {
		if errors.Is(err, buildings.ErrInvalidTime) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"building_id": id,
		"start_time":  req.StartTime,
		"end_time":    req.EndTime,
	})
}

// GET /api/v1/buildings/{id}/devices
func (h *BuildingHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	id, err := buildingID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid building id")
		return
	}
	views, err := h.Service.ListDevices(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": views})
}

// POST /api/v1/buildings/{id}/reevaluate
func (h *BuildingHandler) Reevaluate(w http.ResponseWriter, r *http.Request) {
	id, err := buildingID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid building id")
		return
	}
	if err := h.Reconciler.ReevaluateBuilding(r.Context(), id); err != nil {
		if errors.Is(err, reconcile.ErrBuildingArmed) {
			respondError(w, http.StatusConflict, "Building is armed; re-evaluation refused")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "reevaluated"})
}

// POST /api/v1/buildings/{id}/action
// Legacy panel action: force every device in the building to one state.
func (h *BuildingHandler) Action(w http.ResponseWriter, r *http.Request) {
	id, err := buildingID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid building id")
		return
	}

	var req struct {
		State int `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.Service.SetReactiveForBuilding(r.Context(), id, req.State); err != nil {
		switch {
		case errors.Is(err, buildings.ErrInvalidState):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, buildings.ErrNoDevices):
			respondError(w, http.StatusNotFound, err.Error())
		default:
			respondError(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"building_id": id, "state": req.State})
}

// POST /api/v1/proevents/ignore/bulk
func (h *BuildingHandler) IgnoreBulk(w http.ResponseWriter, r *http.Request) {
	var reqs []buildings.IgnoreRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.Service.SetIgnoreBulk(r.Context(), reqs); err != nil {
		if errors.Is(err, buildings.ErrEmptyIgnoreBatch) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"updated": len(reqs)})
}

type PanelHandler struct {
	Store PanelStore
}

// GET /api/v1/panel
func (h *PanelHandler) Status(w http.ResponseWriter, r *http.Request) {
	armed, err := h.Store.PanelArmed(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"armed": armed})
}

// POST /api/v1/panel
func (h *PanelHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Armed bool `json:"armed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.Store.SetPanelArmed(r.Context(), req.Armed); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"armed": req.Armed})
}
