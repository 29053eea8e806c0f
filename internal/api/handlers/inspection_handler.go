package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spediak/spediak-backend/internal/core"
	"github.com/spediak/spediak-backend/internal/models"
)

type InspectionHandler struct {
	dbclient core.DbClient
}

func NewInspectionHandler(dbclient core.DbClient) *InspectionHandler {
	return &InspectionHandler{dbclient: dbclient}
}

type createInspectionRequest struct {
	Description string `json:"description"`
	DDID        string `json:"ddid"`
	ImageURL    string `json:"imageUrl"`
	UserState   string `json:"userState"`
}

// Create persists one generated statement for the authenticated user.
func (h *InspectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createInspectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DDID == "" {
		writeError(w, http.StatusBadRequest, "ddid is required")
		return
	}

	ins := &models.Inspection{
		ID:          uuid.NewString(),
		UserID:      userID,
		Description: req.Description,
		Statement:   req.DDID,
		ImageURL:    req.ImageURL,
		UserState:   req.UserState,
		CreatedAt:   time.Now(),
	}
	if err := h.dbclient.CreateInspection(r.Context(), ins); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ins)
}

// Get returns a single inspection; only the owner can see it.
func (h *InspectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	ins, err := h.dbclient.GetInspectionByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if ins == nil || ins.UserID != userID {
		writeError(w, http.StatusNotFound, "inspection not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ins)
}

func (h *InspectionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	inspections, err := h.dbclient.ListInspectionsByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(inspections)
}

// Delete removes an inspection; only the owner may delete it.
func (h *InspectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.dbclient.DeleteInspection(r.Context(), id, userID); err != nil {
		writeError(w, http.StatusNotFound, "inspection not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
