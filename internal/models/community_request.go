package models

import "time"

// CommunityRequest is a community-submitted resource awaiting moderation.
// Approval copies it into the resources table; rejection records a reason.
type CommunityRequest struct {
	ID               string     `json:"id" db:"id"`
	Title            string     `json:"title" db:"title"`
	Link             string     `json:"link" db:"link"`
	Description      string     `json:"description" db:"description"`
	ResourceType     string     `json:"resource_type" db:"resource_type"`
	SubjectID        string     `json:"subject_id" db:"subject_id"`
	UnitChapterName  string     `json:"unit_chapter_name" db:"unit_chapter_name"`
	ContributorName  string     `json:"contributor_name" db:"contributor_name"`
	ContributorEmail string     `json:"contributor_email" db:"contributor_email"`
	Approved         string     `json:"approved" db:"approved"`
	ApprovedAt       *time.Time `json:"approved_at" db:"approved_at"`
	ApprovedBy       *string    `json:"approved_by" db:"approved_by"`
	Rejected         *bool      `json:"rejected" db:"rejected"`
	RejectionReason  *string    `json:"rejection_reason" db:"rejection_reason"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// ContributorLabel is the attribution recorded on the resource created from
// an approved request.
func (r *CommunityRequest) ContributorLabel() string {
	if r.ContributorName != "" {
		return r.ContributorName
	}
	if r.ContributorEmail != "" {
		return r.ContributorEmail
	}
	return "Community"
}
