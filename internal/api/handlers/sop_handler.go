package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/spediak/spediak-backend/internal/sop"
)

// SopHandler serves the resolved SOP views used by the app and by the
// generation pipeline's internal callers.
type SopHandler struct {
	resolver *sop.Resolver
}

func NewSopHandler(resolver *sop.Resolver) *SopHandler {
	return &SopHandler{resolver: resolver}
}

// Active handles GET /api/sop/active?state=&organization= — metadata only.
func (h *SopHandler) Active(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	org := r.URL.Query().Get("organization")
	if state == "" {
		writeError(w, http.StatusBadRequest, "state is required")
		return
	}

	stateMeta, orgMeta := h.resolver.Active(r.Context(), state, org)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"stateSop": stateMeta,
		"orgSop":   orgMeta,
	})
}

// Context handles GET /api/sop/context?state=&organization= — the merged text.
func (h *SopHandler) Context(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	org := r.URL.Query().Get("organization")
	if state == "" {
		writeError(w, http.StatusBadRequest, "state is required")
		return
	}

	res := h.resolver.Resolve(r.Context(), state, org)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"context": res.Text,
		"sopUsed": res.UsedAny,
	})
}
