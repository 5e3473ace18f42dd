package models

import "time"

// Paper is a past paper: question paper, mark scheme, and examiner report
// links for one (subject, session, unit) combination. That triple is unique.
type Paper struct {
	ID                 string    `json:"id" db:"id"`
	SubjectID          string    `json:"subject_id" db:"subject_id"`
	ExamSessionID      string    `json:"exam_session_id" db:"exam_session_id"`
	UnitCode           string    `json:"unit_code" db:"unit_code"`
	QuestionPaperLink  *string   `json:"question_paper_link" db:"question_paper_link"`
	MarkSchemeLink     *string   `json:"mark_scheme_link" db:"mark_scheme_link"`
	ExaminerReportLink *string   `json:"examiner_report_link" db:"examiner_report_link"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}
