package repository

import (
	"context"
	"errors"

	"github.com/eduvance/eduvance-backend/internal/models"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicatePaper is a unique-constraint violation on
	// (subject, exam session, unit code).
	ErrDuplicatePaper = errors.New("repository: paper already exists")
)

// StaffDirectory is the lookup the session resolver needs. Absence of a row
// is ErrNotFound, which the resolver treats as "authenticated, not staff".
type StaffDirectory interface {
	GetStaffUser(ctx context.Context, userID string) (*models.StaffUser, error)
}

// CatalogRepository covers the public read endpoints.
type CatalogRepository interface {
	ListSubjects(ctx context.Context) ([]*models.Subject, error)
	ListExamSessions(ctx context.Context) ([]*models.ExamSession, error)
}

// ContentRepository covers the staff write endpoints.
type ContentRepository interface {
	CreateResource(ctx context.Context, r *models.Resource) error
	CreatePaper(ctx context.Context, p *models.Paper) error
}

// ModerationRepository covers the community-request workflow.
type ModerationRepository interface {
	ListPendingCommunityRequests(ctx context.Context) ([]*models.CommunityRequest, error)
	ApproveCommunityRequest(ctx context.Context, id, approvedBy string) error
	RejectCommunityRequest(ctx context.Context, id, reason string) error
	UpdateCommunityRequest(ctx context.Context, id string, upd CommunityRequestUpdate) error
}

// CommunityRequestUpdate is a partial update; nil fields are left unchanged.
type CommunityRequestUpdate struct {
	Title           *string
	Link            *string
	Description     *string
	ResourceType    *string
	UnitChapterName *string
}
