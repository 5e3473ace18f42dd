package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/eduvance/eduvance-backend/internal/models"
	"github.com/eduvance/eduvance-backend/internal/pkg/validate"
	"github.com/eduvance/eduvance-backend/internal/repository"
)

// CreateResource handles POST /api/resources
func (h *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title           string `json:"title"`
		Link            string `json:"link"`
		Description     string `json:"description"`
		ResourceType    string `json:"resource_type"`
		SubjectID       string `json:"subject_id"`
		UnitChapterName string `json:"unit_chapter_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request body.")
		return
	}
	if !validate.Title(req.Title) || req.ResourceType == "" || req.SubjectID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "title, link, resource_type, and subject_id are required.")
		return
	}
	if !validate.Link(req.Link) {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "link must be an https URL.")
		return
	}

	res := &models.Resource{
		Title:           strings.TrimSpace(req.Title),
		Link:            strings.TrimSpace(req.Link),
		Description:     req.Description,
		ResourceType:    req.ResourceType,
		SubjectID:       req.SubjectID,
		UnitChapterName: req.UnitChapterName,
	}
	if err := h.repo.CreateResource(r.Context(), res); err != nil {
		h.log.Error("create resource", "error", err)
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Could not create resource.")
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

// CreatePaper handles POST /api/papers
func (h *Handler) CreatePaper(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubjectID          string  `json:"subject_id"`
		ExamSessionID      string  `json:"exam_session_id"`
		UnitCode           string  `json:"unit_code"`
		QuestionPaperLink  *string `json:"question_paper_link"`
		MarkSchemeLink     *string `json:"mark_scheme_link"`
		ExaminerReportLink *string `json:"examiner_report_link"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request body.")
		return
	}
	if req.SubjectID == "" || req.ExamSessionID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "subject_id and exam_session_id are required.")
		return
	}
	if !validate.UnitCode(req.UnitCode) {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "unit_code must be an exam unit code like WPH11.")
		return
	}

	paper := &models.Paper{
		SubjectID:          req.SubjectID,
		ExamSessionID:      req.ExamSessionID,
		UnitCode:           req.UnitCode,
		QuestionPaperLink:  req.QuestionPaperLink,
		MarkSchemeLink:     req.MarkSchemeLink,
		ExaminerReportLink: req.ExaminerReportLink,
	}
	err := h.repo.CreatePaper(r.Context(), paper)
	if errors.Is(err, repository.ErrDuplicatePaper) {
		respondError(w, http.StatusConflict, ErrCodeConflict, "A paper for this subject, session, and unit already exists.")
		return
	}
	if err != nil {
		h.log.Error("create paper", "error", err)
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Could not create paper.")
		return
	}
	respondJSON(w, http.StatusCreated, paper)
}
