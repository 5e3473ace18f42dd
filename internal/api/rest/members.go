package rest

import "net/http"

// GetMemberCount handles GET /api/members. Missing Discord credentials
// degrade this endpoint only; the rest of the portal is unaffected.
func (h *Handler) GetMemberCount(w http.ResponseWriter, r *http.Request) {
	if h.members == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "Member count is not configured.")
		return
	}
	count, err := h.members.GuildMemberCount(r.Context())
	if err != nil {
		h.log.Error("member count", "error", err)
		respondError(w, http.StatusBadGateway, ErrCodeUpstream, "Could not reach Discord.")
		return
	}
	respondJSON(w, http.StatusOK, count)
}
