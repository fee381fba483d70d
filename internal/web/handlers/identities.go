package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/veriface/veriface/internal/engine"
	"github.com/veriface/veriface/internal/store"
)

// IdentitiesHandler serves identity read and delete endpoints.
type IdentitiesHandler struct {
	engine *engine.Engine
}

// NewIdentitiesHandler creates an identities handler.
func NewIdentitiesHandler(eng *engine.Engine) *IdentitiesHandler {
	return &IdentitiesHandler{engine: eng}
}

// identitySummary is the list representation: no encoding vectors over
// the wire, only metadata.
type identitySummary struct {
	Name        string    `json:"name"`
	Method      string    `json:"method"`
	SampleCount int       `json:"sample_count"`
	EnrolledAt  time.Time `json:"enrolled_at"`
}

func summarize(identity store.Identity) identitySummary {
	return identitySummary{
		Name:        identity.Name,
		Method:      string(identity.Encoding.Method),
		SampleCount: identity.SampleCount,
		EnrolledAt:  identity.EnrolledAt,
	}
}

// List handles GET /identities.
func (h *IdentitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	identities := h.engine.Store().List()

	summaries := make([]identitySummary, 0, len(identities))
	for _, identity := range identities {
		summaries = append(summaries, summarize(identity))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"identities": summaries,
		"count":      len(summaries),
	})
}

// Get handles GET /identities/{name}. The response includes the
// verification statistics derived from the audit window.
func (h *IdentitiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	identity, err := h.engine.Store().Get(name)
	if err != nil {
		if errors.Is(err, store.ErrUnknownIdentity) {
			respondError(w, http.StatusNotFound, "identity not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"identity": summarize(identity),
		"stats":    h.engine.AuditLog().Stats(identity.Name),
	})
}

// Stats handles GET /identities/{name}/stats.
func (h *IdentitiesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	identity, err := h.engine.Store().Get(name)
	if err != nil {
		if errors.Is(err, store.ErrUnknownIdentity) {
			respondError(w, http.StatusNotFound, "identity not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"name":  identity.Name,
		"stats": h.engine.AuditLog().Stats(identity.Name),
	})
}

// Delete handles DELETE /identities/{name}.
func (h *IdentitiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.engine.Store().Delete(name); err != nil {
		if errors.Is(err, store.ErrUnknownIdentity) {
			respondError(w, http.StatusNotFound, "identity not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("identity %s deleted", sanitizeForLog(name))
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "name": name})
}
