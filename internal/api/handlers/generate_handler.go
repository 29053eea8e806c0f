package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spediak/spediak-backend/internal/generation"
)

type GenerateHandler struct {
	svc *generation.Service
}

func NewGenerateHandler(svc *generation.Service) *GenerateHandler {
	return &GenerateHandler{svc: svc}
}

type generateRequest struct {
	ImageBase64  string `json:"imageBase64"`
	Notes        string `json:"notes"`
	UserState    string `json:"userState"`
	Organization string `json:"organization"`
}

// GenerateStatement handles POST /api/generate-statement.
func (h *GenerateHandler) GenerateStatement(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.svc.GenerateStatement(r.Context(), generation.Request{
		UserID:       userID,
		ImageBase64:  req.ImageBase64,
		Notes:        req.Notes,
		State:        req.UserState,
		Organization: req.Organization,
	})
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GeneratePreDescription handles POST /api/generate-pre-description, step one
// of the legacy two-step flow.
func (h *GenerateHandler) GeneratePreDescription(w http.ResponseWriter, r *http.Request) {
	if _, ok := r.Context().Value("user_id").(string); !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pre, err := h.svc.GeneratePreDescription(r.Context(), req.ImageBase64)
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"preDescription": pre})
}

// GenerateDDID handles POST /api/generate-ddid, step two of the legacy flow.
func (h *GenerateHandler) GenerateDDID(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		generateRequest
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	notes := req.Description
	if notes == "" {
		notes = req.Notes
	}
	resp, err := h.svc.GenerateDDID(r.Context(), generation.Request{
		UserID:       userID,
		ImageBase64:  req.ImageBase64,
		Notes:        notes,
		State:        req.UserState,
		Organization: req.Organization,
	})
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"ddid": resp.Statement})
}

// writeGenerationError maps pipeline failures onto the error taxonomy:
// validation -> 400, quota -> 403 with counters, anything upstream -> 500.
func writeGenerationError(w http.ResponseWriter, err error) {
	var quotaErr *generation.QuotaError
	switch {
	case errors.As(err, &quotaErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{
			"message":          quotaErr.Error(),
			"statements_used":  quotaErr.Used,
			"statements_limit": quotaErr.Limit,
		})
	case errors.Is(err, generation.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
