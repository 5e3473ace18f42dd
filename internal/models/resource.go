package models

import "time"

// Approval states for resources and community requests. The legacy data model
// uses strings, not booleans: community submissions start Unapproved, staff
// approval moves them to Pending review before publication.
const (
	ApprovalUnapproved = "Unapproved"
	ApprovalPending    = "Pending"
	ApprovalApproved   = "Approved"
)

// Resource is a study resource (notes, guides) attached to a subject.
type Resource struct {
	ID               string    `json:"id" db:"id"`
	Title            string    `json:"title" db:"title"`
	Link             string    `json:"link" db:"link"`
	Description      string    `json:"description" db:"description"`
	ResourceType     string    `json:"resource_type" db:"resource_type"`
	SubjectID        string    `json:"subject_id" db:"subject_id"`
	UnitChapterName  string    `json:"unit_chapter_name" db:"unit_chapter_name"`
	ContributorEmail string    `json:"contributor_email" db:"contributor_email"`
	Approved         string    `json:"approved" db:"approved"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
