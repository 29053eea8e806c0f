package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/spediak/spediak-backend/internal/usage"
)

type SubscriptionHandler struct {
	gate *usage.Gate
}

func NewSubscriptionHandler(gate *usage.Gate) *SubscriptionHandler {
	return &SubscriptionHandler{gate: gate}
}

// Get returns the caller's plan state with the lazy 30-day reset applied.
func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	sub, err := h.gate.Current(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sub)
}
