package rest

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/eduvance/eduvance-backend/internal/auth"
	"github.com/eduvance/eduvance-backend/internal/pkg/validate"
)

// Watermark handles POST /api/watermark. It stamps a download link with the
// attribution label the frontend overlays on shared documents. The label is
// derived server-side from the reviewing session so clients cannot forge it.
func (h *Handler) Watermark(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Link string `json:"link"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Link) == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "link is required.")
		return
	}
	if !validate.Link(req.Link) {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "link must be an https URL.")
		return
	}

	label := "Eduvance"
	if s := auth.SessionFromContext(r.Context()); s != nil && s.Username != "" {
		label = "Eduvance · " + s.Username
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"link":      strings.TrimSpace(req.Link),
		"label":     label,
		"issued_at": time.Now().UTC().Format(time.RFC3339),
	})
}
