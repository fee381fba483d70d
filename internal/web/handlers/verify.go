package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veriface/veriface/internal/engine"
	"github.com/veriface/veriface/internal/store"
)

// VerifyHandler serves verification and identification endpoints.
type VerifyHandler struct {
	engine *engine.Engine
}

// NewVerifyHandler creates a verification handler.
func NewVerifyHandler(eng *engine.Engine) *VerifyHandler {
	return &VerifyHandler{engine: eng}
}

type verifyRequest struct {
	Attempts int `json:"attempts"`
}

// verifyResponse flattens the engine result. BestDistance is null when
// no comparable candidate was seen during the attempts.
type verifyResponse struct {
	Verified     bool     `json:"verified"`
	Name         string   `json:"name"`
	BestDistance *float64 `json:"best_distance"`
	Attempts     int      `json:"attempts"`
	Threshold    float64  `json:"threshold"`
	Method       string   `json:"method,omitempty"`
}

func toVerifyResponse(result engine.VerifyResult) verifyResponse {
	resp := verifyResponse{
		Verified:  result.Verified,
		Name:      result.Name,
		Attempts:  result.Attempts,
		Threshold: result.Threshold,
		Method:    result.Method,
	}
	if result.HasDistance() {
		d := result.BestDistance
		resp.BestDistance = &d
	}
	return resp
}

func (h *VerifyHandler) runVerify(w http.ResponseWriter, r *http.Request, attempts int) {
	name := chi.URLParam(r, "name")

	result, err := h.engine.Verify(r.Context(), name, attempts)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUnknownIdentity):
			respondError(w, http.StatusNotFound, "identity not found")
		case errors.Is(err, engine.ErrResourceUnavailable):
			respondError(w, http.StatusServiceUnavailable, "camera unavailable")
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	log.Printf("verification for %s: verified=%t after %d attempts",
		sanitizeForLog(name), result.Verified, result.Attempts)
	respondJSON(w, http.StatusOK, toVerifyResponse(result))
}

// Verify handles POST /identities/{name}/verify. The attempt count is
// optional; an empty body uses the configured default.
func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Attempts < 0 {
		respondError(w, http.StatusBadRequest, "attempts must not be negative")
		return
	}
	h.runVerify(w, r, req.Attempts)
}

// QuickVerify handles POST /identities/{name}/quick-verify: a single
// capture attempt.
func (h *VerifyHandler) QuickVerify(w http.ResponseWriter, r *http.Request) {
	h.runVerify(w, r, 1)
}

type identifyRequest struct {
	Limit int `json:"limit"`
}

// Identify handles POST /identify: best-match search across all
// enrolled identities from a single capture.
func (h *VerifyHandler) Identify(w http.ResponseWriter, r *http.Request) {
	var req identifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	result, err := h.engine.Identify(r.Context(), req.Limit)
	if err != nil {
		if errors.Is(err, engine.ErrResourceUnavailable) {
			respondError(w, http.StatusServiceUnavailable, "camera unavailable")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}
