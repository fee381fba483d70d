package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veriface/veriface/internal/engine"
	"github.com/veriface/veriface/internal/store"
)

// EnrollHandler serves the async enrollment endpoints.
type EnrollHandler struct {
	engine *engine.Engine
}

// NewEnrollHandler creates an enrollment handler.
func NewEnrollHandler(eng *engine.Engine) *EnrollHandler {
	return &EnrollHandler{engine: eng}
}

type enrollRequest struct {
	Name string `json:"name"`
}

// Start handles POST /identities. It kicks off sample collection and
// returns 202 with a task ID to poll.
func (h *EnrollHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	taskID, err := h.engine.StartEnrollment(req.Name)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateIdentity):
			respondError(w, http.StatusConflict, "identity already enrolled")
		case errors.Is(err, engine.ErrResourceUnavailable):
			respondError(w, http.StatusServiceUnavailable, "camera unavailable")
		default:
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	log.Printf("enrollment started for %s (task %s)", sanitizeForLog(req.Name), taskID)
	respondJSON(w, http.StatusAccepted, map[string]string{
		"task_id": taskID,
		"status":  string(engine.JobStatusCollecting),
	})
}

// Status handles GET /enroll/{taskId}.
func (h *EnrollHandler) Status(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskId")

	view, ok := h.engine.EnrollmentStatus(taskID)
	if !ok {
		respondError(w, http.StatusNotFound, "enrollment task not found")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Abort handles DELETE /enroll/{taskId}. Only collecting tasks can be
// aborted; terminal tasks return 409.
func (h *EnrollHandler) Abort(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskId")

	view, ok := h.engine.EnrollmentStatus(taskID)
	if !ok {
		respondError(w, http.StatusNotFound, "enrollment task not found")
		return
	}

	if !h.engine.AbortEnrollment(taskID) {
		respondError(w, http.StatusConflict, "enrollment already "+string(view.Status))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "aborting", "task_id": taskID})
}
