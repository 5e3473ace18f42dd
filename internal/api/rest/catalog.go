package rest

import "net/http"

// ListSubjects handles GET /api/subjects
func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.repo.ListSubjects(r.Context())
	if err != nil {
		h.log.Error("list subjects", "error", err)
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Could not load subjects.")
		return
	}
	respondJSON(w, http.StatusOK, subjects)
}

// ListExamSessions handles GET /api/exam-sessions
func (h *Handler) ListExamSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.repo.ListExamSessions(r.Context())
	if err != nil {
		h.log.Error("list exam sessions", "error", err)
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Could not load exam sessions.")
		return
	}
	respondJSON(w, http.StatusOK, sessions)
}
