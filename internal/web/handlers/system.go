package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/veriface/veriface/internal/engine"
)

// SystemHandler serves status, stats, threshold, audit, and camera
// endpoints.
type SystemHandler struct {
	engine *engine.Engine
}

// NewSystemHandler creates a system handler.
func NewSystemHandler(eng *engine.Engine) *SystemHandler {
	return &SystemHandler{engine: eng}
}

// Status handles GET /status.
func (h *SystemHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Status(r.Context()))
}

// Stats handles GET /stats: per-identity verification statistics.
func (h *SystemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	identities := h.engine.Store().List()

	stats := make(map[string]any, len(identities))
	for _, identity := range identities {
		stats[identity.Name] = h.engine.AuditLog().Stats(identity.Name)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"identities": stats,
		"count":      len(identities),
	})
}

// Events handles GET /events?limit=&name=.
func (h *SystemHandler) Events(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	name := r.URL.Query().Get("name")

	events := h.engine.AuditLog().Recent(limit, name)
	respondJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}

type thresholdRequest struct {
	Threshold float64 `json:"threshold"`
}

// UpdateThreshold handles PUT /threshold.
func (h *SystemHandler) UpdateThreshold(w http.ResponseWriter, r *http.Request) {
	var req thresholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if err := h.engine.SetThreshold(req.Threshold); err != nil {
		if errors.Is(err, engine.ErrInvalidThreshold) {
			respondError(w, http.StatusBadRequest, "threshold must be between 0.1 and 1.0")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("verification threshold set to %.2f", req.Threshold)
	respondJSON(w, http.StatusOK, map[string]float64{"threshold": h.engine.Threshold()})
}

// CameraTest handles GET /camera/test: captures one frame to probe the
// device.
func (h *SystemHandler) CameraTest(w http.ResponseWriter, r *http.Request) {
	if !h.engine.CameraTest(r.Context()) {
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{"available": false})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"available": true})
}
