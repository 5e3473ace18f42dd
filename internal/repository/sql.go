package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/eduvance/eduvance-backend/internal/models"
	"github.com/eduvance/eduvance-backend/migrations"
)

// SQLRepository implements all repository interfaces over sqlx.
// postgres:// DSNs use lib/pq; anything else is treated as a SQLite path,
// which is what dev and tests run on.
type SQLRepository struct {
	db *sqlx.DB
}

func New(databaseURL string) (*SQLRepository, error) {
	driver := "sqlite"
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		driver = "postgres"
	}
	db, err := sqlx.Connect(driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if driver == "sqlite" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}
	return &SQLRepository{db: db}, nil
}

func (r *SQLRepository) Close() error {
	return r.db.Close()
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// RunMigrations applies the embedded migration files in name order.
func (r *SQLRepository) RunMigrations() error {
	entries, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return err
	}
	sort.Strings(entries)
	for _, name := range entries {
		sqlBytes, err := migrations.FS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := r.db.Exec(string(sqlBytes)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

// Catalog

func (r *SQLRepository) ListSubjects(ctx context.Context) ([]*models.Subject, error) {
	var subjects []*models.Subject
	query := `SELECT id, name, code, syllabus_type, units FROM subjects ORDER BY name ASC`
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, err
	}
	for _, s := range subjects {
		s.Units.SortNumerically()
	}
	return subjects, nil
}

func (r *SQLRepository) ListExamSessions(ctx context.Context) ([]*models.ExamSession, error) {
	var sessions []*models.ExamSession
	query := `SELECT id, session, year FROM exam_sessions ORDER BY year DESC, session DESC`
	err := r.db.SelectContext(ctx, &sessions, query)
	return sessions, err
}

// Staff directory

func (r *SQLRepository) GetStaffUser(ctx context.Context, userID string) (*models.StaffUser, error) {
	var staff models.StaffUser
	query := r.db.Rebind(`SELECT id, username, email, role, created_at FROM staff_users WHERE id = ?`)
	err := r.db.GetContext(ctx, &staff, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *SQLRepository) CreateStaffUser(ctx context.Context, staff *models.StaffUser) error {
	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = time.Now().UTC()
	}
	query := r.db.Rebind(`
		INSERT INTO staff_users (id, username, email, role, created_at)
		VALUES (?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query, staff.ID, staff.Username, staff.Email, staff.Role, staff.CreatedAt)
	return err
}

// Content

func (r *SQLRepository) CreateResource(ctx context.Context, res *models.Resource) error {
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	if res.UnitChapterName == "" {
		res.UnitChapterName = "General"
	}
	if res.Approved == "" {
		res.Approved = models.ApprovalPending
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	query := r.db.Rebind(`
		INSERT INTO resources (id, title, link, description, resource_type, subject_id,
		                       unit_chapter_name, contributor_email, approved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		res.ID, res.Title, res.Link, res.Description, res.ResourceType, res.SubjectID,
		res.UnitChapterName, res.ContributorEmail, res.Approved, res.CreatedAt)
	return err
}

func (r *SQLRepository) CreatePaper(ctx context.Context, p *models.Paper) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	query := r.db.Rebind(`
		INSERT INTO papers (id, subject_id, exam_session_id, unit_code,
		                    question_paper_link, mark_scheme_link, examiner_report_link, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.SubjectID, p.ExamSessionID, p.UnitCode,
		p.QuestionPaperLink, p.MarkSchemeLink, p.ExaminerReportLink, p.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicatePaper
	}
	return err
}

// Moderation

func (r *SQLRepository) ListPendingCommunityRequests(ctx context.Context) ([]*models.CommunityRequest, error) {
	var requests []*models.CommunityRequest
	query := r.db.Rebind(`
		SELECT * FROM community_resource_requests
		WHERE approved = ? AND rejected IS NULL
		ORDER BY created_at ASC`)
	err := r.db.SelectContext(ctx, &requests, query, models.ApprovalUnapproved)
	return requests, err
}

func (r *SQLRepository) GetCommunityRequest(ctx context.Context, id string) (*models.CommunityRequest, error) {
	var req models.CommunityRequest
	query := r.db.Rebind(`SELECT * FROM community_resource_requests WHERE id = ?`)
	err := r.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ApproveCommunityRequest marks the request approved and copies it into the
// resources table in one transaction, so a failed insert cannot leave the
// request approved with no resource to show for it.
func (r *SQLRepository) ApproveCommunityRequest(ctx context.Context, id, approvedBy string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var req models.CommunityRequest
	if err := tx.GetContext(ctx, &req, tx.Rebind(`SELECT * FROM community_resource_requests WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	now := time.Now().UTC()
	update := tx.Rebind(`
		UPDATE community_resource_requests
		SET approved = ?, approved_at = ?, approved_by = ?
		WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, update, models.ApprovalPending, now, approvedBy, id); err != nil {
		return err
	}

	insert := tx.Rebind(`
		INSERT INTO resources (id, title, link, description, resource_type, subject_id,
		                       unit_chapter_name, contributor_email, approved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := tx.ExecContext(ctx, insert,
		uuid.New().String(), req.Title, req.Link, req.Description, req.ResourceType, req.SubjectID,
		req.UnitChapterName, req.ContributorLabel(), models.ApprovalPending, now); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *SQLRepository) RejectCommunityRequest(ctx context.Context, id, reason string) error {
	query := r.db.Rebind(`
		UPDATE community_resource_requests
		SET rejection_reason = ?, approved = ?, rejected = ?
		WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, reason, models.ApprovalUnapproved, true, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *SQLRepository) UpdateCommunityRequest(ctx context.Context, id string, upd CommunityRequestUpdate) error {
	sets := []string{}
	args := []interface{}{}
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	add("title", upd.Title)
	add("link", upd.Link)
	add("description", upd.Description)
	add("resource_type", upd.ResourceType)
	add("unit_chapter_name", upd.UnitChapterName)
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	query := r.db.Rebind(`UPDATE community_resource_requests SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation recognizes unique-constraint errors from both drivers:
// pq error class 23505 and SQLite's constraint message.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
