package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/eduvance/eduvance-backend/internal/auth"
	"github.com/eduvance/eduvance-backend/internal/repository"
)

// ListCommunityRequests handles GET /api/community-requests
func (h *Handler) ListCommunityRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.repo.ListPendingCommunityRequests(r.Context())
	if err != nil {
		h.log.Error("list community requests", "error", err)
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Could not load community requests.")
		return
	}
	respondJSON(w, http.StatusOK, requests)
}

// ReviewCommunityRequest handles PUT /api/community-requests/{id}. The action
// field selects approve, reject, or update; approve moves the request into
// the public resource pool under the reviewer's name.
func (h *Handler) ReviewCommunityRequest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Action          string  `json:"action"`
		Reason          string  `json:"reason"`
		Title           *string `json:"title"`
		Link            *string `json:"link"`
		Description     *string `json:"description"`
		ResourceType    *string `json:"resource_type"`
		UnitChapterName *string `json:"unit_chapter_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request body.")
		return
	}

	var err error
	switch req.Action {
	case "approve":
		reviewer := "staff"
		if s := auth.SessionFromContext(r.Context()); s != nil && s.Username != "" {
			reviewer = s.Username
		}
		err = h.repo.ApproveCommunityRequest(r.Context(), id, reviewer)
	case "reject":
		err = h.repo.RejectCommunityRequest(r.Context(), id, req.Reason)
	case "update":
		err = h.repo.UpdateCommunityRequest(r.Context(), id, repository.CommunityRequestUpdate{
			Title:           req.Title,
			Link:            req.Link,
			Description:     req.Description,
			ResourceType:    req.ResourceType,
			UnitChapterName: req.UnitChapterName,
		})
	default:
		respondError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "action must be approve, reject, or update.")
		return
	}

	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Community request not found.")
		return
	}
	if err != nil {
		h.log.Error("review community request", "id", id, "action", req.Action, "error", err)
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Could not update community request.")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "action": req.Action})
}
