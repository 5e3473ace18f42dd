package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduvance/eduvance-backend/internal/auth"
	"github.com/eduvance/eduvance-backend/internal/discord"
	"github.com/eduvance/eduvance-backend/internal/models"
	"github.com/eduvance/eduvance-backend/internal/repository"
	"github.com/eduvance/eduvance-backend/internal/supabase"
)

// fakeRepo answers from fixed fixtures and records nothing it isn't told to.
type fakeRepo struct {
	subjects    []*models.Subject
	sessions    []*models.ExamSession
	staff       map[string]*models.StaffUser
	requests    []*models.CommunityRequest
	paperErr    error
	resourceErr error
	reviewErr   error
	pingErr     error

	approvedBy string
	rejected   string
}

func (f *fakeRepo) ListSubjects(context.Context) ([]*models.Subject, error) {
	return f.subjects, nil
}
func (f *fakeRepo) ListExamSessions(context.Context) ([]*models.ExamSession, error) {
	return f.sessions, nil
}
func (f *fakeRepo) GetStaffUser(_ context.Context, id string) (*models.StaffUser, error) {
	if s, ok := f.staff[id]; ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}
func (f *fakeRepo) CreateResource(_ context.Context, r *models.Resource) error {
	return f.resourceErr
}
func (f *fakeRepo) CreatePaper(_ context.Context, p *models.Paper) error {
	return f.paperErr
}
func (f *fakeRepo) ListPendingCommunityRequests(context.Context) ([]*models.CommunityRequest, error) {
	return f.requests, nil
}
func (f *fakeRepo) ApproveCommunityRequest(_ context.Context, id, approvedBy string) error {
	f.approvedBy = approvedBy
	return f.reviewErr
}
func (f *fakeRepo) RejectCommunityRequest(_ context.Context, id, reason string) error {
	f.rejected = reason
	return f.reviewErr
}
func (f *fakeRepo) UpdateCommunityRequest(context.Context, string, repository.CommunityRequestUpdate) error {
	return f.reviewErr
}
func (f *fakeRepo) Ping(context.Context) error { return f.pingErr }

type fakeAuthService struct {
	result     *supabase.SignInResult
	signInErr  error
	signOutErr error
	signedOut  string
}

func (f *fakeAuthService) SignInWithPassword(_ context.Context, email, password string) (*supabase.SignInResult, error) {
	return f.result, f.signInErr
}
func (f *fakeAuthService) SignOut(_ context.Context, token string) error {
	f.signedOut = token
	return f.signOutErr
}

type fakeMembers struct {
	count *discord.MemberCount
	err   error
}

func (f *fakeMembers) GuildMemberCount(context.Context) (*discord.MemberCount, error) {
	return f.count, f.err
}

func newTestRouter(repo *fakeRepo, authSvc *fakeAuthService, members MemberCounter) *mux.Router {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(repo, authSvc, members, false, log)
	router := mux.NewRouter()
	SetupRoutes(router, h)
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListSubjects(t *testing.T) {
	repo := &fakeRepo{subjects: []*models.Subject{{ID: "s1", Name: "Physics"}}}
	router := newTestRouter(repo, &fakeAuthService{}, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/subjects", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []*models.Subject
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "Physics", got[0].Name)
}

func TestCreatePaper_Conflict(t *testing.T) {
	repo := &fakeRepo{paperErr: repository.ErrDuplicatePaper}
	router := newTestRouter(repo, &fakeAuthService{}, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/papers", map[string]string{
		"subject_id": "s1", "exam_session_id": "e1", "unit_code": "WPH11",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	var body APIError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, ErrCodeConflict, body.Error)
}

func TestCreatePaper_MissingFields(t *testing.T) {
	router := newTestRouter(&fakeRepo{}, &fakeAuthService{}, nil)
	rec := doJSON(t, router, http.MethodPost, "/api/papers", map[string]string{"subject_id": "s1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateResource_Validation(t *testing.T) {
	router := newTestRouter(&fakeRepo{}, &fakeAuthService{}, nil)
	rec := doJSON(t, router, http.MethodPost, "/api/resources", map[string]string{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/resources", map[string]string{
		"title": "Notes", "link": "https://example.com", "resource_type": "Note", "subject_id": "s1",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestReviewCommunityRequest_Approve_UsesSessionUsername(t *testing.T) {
	repo := &fakeRepo{}
	router := newTestRouter(repo, &fakeAuthService{}, nil)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]string{"action": "approve"}))
	req := httptest.NewRequest(http.MethodPut, "/api/community-requests/req-1", &buf)
	req = req.WithContext(auth.WithSession(req.Context(), &auth.Session{UserID: "u1", Username: "alex", Role: auth.RoleModerator}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alex", repo.approvedBy)
}

func TestReviewCommunityRequest_Reject(t *testing.T) {
	repo := &fakeRepo{}
	router := newTestRouter(repo, &fakeAuthService{}, nil)
	rec := doJSON(t, router, http.MethodPut, "/api/community-requests/req-1",
		map[string]string{"action": "reject", "reason": "broken link"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "broken link", repo.rejected)
}

func TestReviewCommunityRequest_BadAction(t *testing.T) {
	router := newTestRouter(&fakeRepo{}, &fakeAuthService{}, nil)
	rec := doJSON(t, router, http.MethodPut, "/api/community-requests/req-1",
		map[string]string{"action": "delete"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewCommunityRequest_NotFound(t *testing.T) {
	router := newTestRouter(&fakeRepo{reviewErr: repository.ErrNotFound}, &fakeAuthService{}, nil)
	rec := doJSON(t, router, http.MethodPut, "/api/community-requests/missing",
		map[string]string{"action": "reject"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogin_Success(t *testing.T) {
	repo := &fakeRepo{staff: map[string]*models.StaffUser{
		"u1": {ID: "u1", Username: "alex", Role: "admin"},
	}}
	authSvc := &fakeAuthService{result: &supabase.SignInResult{
		AccessToken: "token-123",
		ExpiresIn:   3600,
		User:        supabase.User{ID: "u1", Email: "alex@eduvance.au"},
	}}
	router := newTestRouter(repo, authSvc, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "alex@eduvance.au", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookie, cookies[0].Name)
	assert.Equal(t, "token-123", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "token-123", body["access_token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "admin", user["role"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	authSvc := &fakeAuthService{signInErr: supabase.ErrInvalidCredentials}
	router := newTestRouter(&fakeRepo{}, authSvc, nil)
	rec := doJSON(t, router, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "a@b.c", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_NonStaffForbidden(t *testing.T) {
	authSvc := &fakeAuthService{result: &supabase.SignInResult{
		AccessToken: "token-123",
		User:        supabase.User{ID: "not-staff"},
	}}
	router := newTestRouter(&fakeRepo{}, authSvc, nil)
	rec := doJSON(t, router, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "a@b.c", "password": "right"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Result().Cookies(), "non-staff logins must not receive a session cookie")
}

func TestLogin_UpstreamError(t *testing.T) {
	authSvc := &fakeAuthService{signInErr: errors.New("connection refused")}
	router := newTestRouter(&fakeRepo{}, authSvc, nil)
	rec := doJSON(t, router, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "a@b.c", "password": "pw"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestLogout_ClearsCookieAndRevokes(t *testing.T) {
	authSvc := &fakeAuthService{}
	router := newTestRouter(&fakeRepo{}, authSvc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer token-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "token-123", authSvc.signedOut)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookie, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0, "cookie must be expired")
}

func TestGetMemberCount(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		router := newTestRouter(&fakeRepo{}, &fakeAuthService{}, nil)
		rec := doJSON(t, router, http.MethodGet, "/api/members", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
	t.Run("upstream error", func(t *testing.T) {
		router := newTestRouter(&fakeRepo{}, &fakeAuthService{}, &fakeMembers{err: errors.New("502")})
		rec := doJSON(t, router, http.MethodGet, "/api/members", nil)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
	t.Run("ok", func(t *testing.T) {
		router := newTestRouter(&fakeRepo{}, &fakeAuthService{}, &fakeMembers{count: &discord.MemberCount{Approximate: 42000}})
		rec := doJSON(t, router, http.MethodGet, "/api/members", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body discord.MemberCount
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, 42000, body.Approximate)
	})
}

func TestWatermark(t *testing.T) {
	router := newTestRouter(&fakeRepo{}, &fakeAuthService{}, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/watermark", map[string]string{"link": "ftp://x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]string{"link": "https://drive.google.com/file/d/abc"}))
	req := httptest.NewRequest(http.MethodPost, "/api/watermark", &buf)
	req = req.WithContext(auth.WithSession(req.Context(), &auth.Session{Username: "alex", Role: auth.RoleStaff}))
	out := httptest.NewRecorder()
	router.ServeHTTP(out, req)

	require.Equal(t, http.StatusOK, out.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(out.Body).Decode(&body))
	assert.Contains(t, body["label"], "alex")
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&fakeRepo{}, &fakeAuthService{}, nil)
	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	router = newTestRouter(&fakeRepo{pingErr: errors.New("down")}, &fakeAuthService{}, nil)
	rec = doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
