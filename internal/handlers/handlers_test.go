package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oshawa-skills/apiserver/internal/services"
	"github.com/oshawa-skills/apiserver/internal/store"
	"github.com/oshawa-skills/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const adminGroup = "Admins"

type stubSkillRepo struct {
	skills map[string]types.Skill
}

func (s *stubSkillRepo) List(_ context.Context, _ string, _ int, _ *store.Cursor) ([]types.Skill, int, error) {
	var out []types.Skill
	for _, skill := range s.skills {
		out = append(out, skill)
	}
	return out, len(out), nil
}

func (s *stubSkillRepo) Search(_ context.Context, _ types.SkillFilter) ([]types.Skill, error) {
	var out []types.Skill
	for _, skill := range s.skills {
		out = append(out, skill)
	}
	return out, nil
}

func (s *stubSkillRepo) Get(_ context.Context, id string) (types.Skill, error) {
	skill, ok := s.skills[id]
	if !ok {
		return types.Skill{}, store.ErrNotFound
	}
	return skill, nil
}

func (s *stubSkillRepo) Create(_ context.Context, skill types.Skill) (types.Skill, error) {
	s.skills[skill.ID] = skill
	return skill, nil
}

func (s *stubSkillRepo) Update(_ context.Context, skill types.Skill) (types.Skill, error) {
	s.skills[skill.ID] = skill
	return skill, nil
}

func (s *stubSkillRepo) Delete(_ context.Context, id string) error {
	if _, ok := s.skills[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.skills, id)
	return nil
}

type stubProfileRepo struct {
	profiles map[string]types.Profile
}

func (s *stubProfileRepo) Get(_ context.Context, userID string) (types.Profile, error) {
	profile, ok := s.profiles[userID]
	if !ok {
		return types.Profile{}, store.ErrNotFound
	}
	return profile, nil
}

func (s *stubProfileRepo) Create(_ context.Context, profile types.Profile) (types.Profile, error) {
	s.profiles[profile.UserID] = profile
	return profile, nil
}

func (s *stubProfileRepo) Update(_ context.Context, profile types.Profile) (types.Profile, error) {
	s.profiles[profile.UserID] = profile
	return profile, nil
}

type stubCertRepo struct {
	certs map[string]types.Certification
}

func (s *stubCertRepo) Create(_ context.Context, cert types.Certification) (types.Certification, error) {
	s.certs[cert.ID] = cert
	return cert, nil
}

func (s *stubCertRepo) Get(_ context.Context, id string) (types.Certification, error) {
	cert, ok := s.certs[id]
	if !ok {
		return types.Certification{}, store.ErrNotFound
	}
	return cert, nil
}

func (s *stubCertRepo) ListByUser(_ context.Context, _ string) ([]types.Certification, error) {
	return nil, nil
}

func (s *stubCertRepo) ListByStatus(_ context.Context, _ types.CertificationStatus) ([]types.Certification, error) {
	return nil, nil
}

func (s *stubCertRepo) Approve(_ context.Context, id, reviewer string) (types.Certification, error) {
	cert, ok := s.certs[id]
	if !ok {
		return types.Certification{}, store.ErrNotFound
	}
	if cert.Status != types.StatusPending {
		return types.Certification{}, store.ErrNotPending
	}
	cert.Status = types.StatusApproved
	cert.ReviewedBy = reviewer
	s.certs[id] = cert
	return cert, nil
}

func (s *stubCertRepo) DeletePending(_ context.Context, id string) error {
	if _, ok := s.certs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.certs, id)
	return nil
}

func (s *stubCertRepo) DeleteAndRecompute(_ context.Context, id, _ string) error {
	if _, ok := s.certs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.certs, id)
	return nil
}

type stubObjects struct{}

func (stubObjects) PresignUpload(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://objects.local/put/" + key, nil
}

func (stubObjects) PresignDownload(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://objects.local/get/" + key, nil
}

func (stubObjects) Delete(_ context.Context, _ string) error { return nil }

type stubNotifier struct{}

func (stubNotifier) SendApproval(_ context.Context, _, _, _, _ string) error { return nil }

func (stubNotifier) SendRejection(_ context.Context, _, _, _, _ string) error { return nil }

func newTestRouter(t *testing.T) (*chi.Mux, *stubCertRepo) {
	t.Helper()

	skillRepo := &stubSkillRepo{skills: map[string]types.Skill{}}
	profileRepo := &stubProfileRepo{profiles: map[string]types.Profile{}}
	certRepo := &stubCertRepo{certs: map[string]types.Certification{}}

	skillService := services.NewSkillService(skillRepo)
	profileService := services.NewProfileService(profileRepo)
	certService := services.NewCertificationService(certRepo, stubObjects{}, stubNotifier{}, zap.NewNop(), time.Hour)

	auth := NewAuthenticator(adminGroup)

	router := chi.NewRouter()
	router.Get("/health", Health)
	router.Route("/api", func(r chi.Router) {
		r.Route("/skills", func(r chi.Router) {
			SkillRouter(r, skillService, auth)
		})
		r.Route("/profile", func(r chi.Router) {
			ProfileRouter(r, profileService, auth)
		})
		r.Route("/certifications", func(r chi.Router) {
			CertificationRouter(r, certService, auth)
		})
		r.Route("/admin", func(r chi.Router) {
			AdminRouter(r, certService, skillService, auth)
		})
	})
	return router, certRepo
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func memberToken(t *testing.T) string {
	return signToken(t, jwt.MapClaims{
		"sub":   "user-1",
		"email": "pat@example.com",
		"name":  "Pat Lee",
	})
}

func adminToken(t *testing.T) string {
	return signToken(t, jwt.MapClaims{
		"sub":            "admin-1",
		"email":          "admin@example.com",
		"name":           "Admin",
		"cognito:groups": []string{adminGroup},
	})
}

func doRequest(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestHealthEnvelope(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope["success"])
}

func TestListSkillsIsPublic(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/skills", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMutationsRequireToken(t *testing.T) {
	router, _ := newTestRouter(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/skills"},
		{http.MethodPut, "/api/skills/some-id"},
		{http.MethodDelete, "/api/skills/some-id"},
		{http.MethodGet, "/api/profile"},
		{http.MethodPut, "/api/profile"},
		{http.MethodGet, "/api/certifications"},
		{http.MethodPost, "/api/certifications"},
		{http.MethodDelete, "/api/certifications/some-id"},
	}
	for _, tc := range cases {
		rec := doRequest(t, router, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)

		envelope := decodeEnvelope(t, rec)
		assert.Equal(t, false, envelope["success"])
		assert.NotEmpty(t, envelope["error"])
	}
}

// Group membership is checked before the resource lookup, so a non-admin
// probing admin routes learns nothing about which identifiers exist.
func TestAdminRoutesForbiddenForNonAdmins(t *testing.T) {
	router, _ := newTestRouter(t)
	token := memberToken(t)

	cases := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/admin/certifications", nil},
		{http.MethodGet, "/api/admin/certifications/approved", nil},
		{http.MethodPost, "/api/admin/certifications/missing-id/approve", nil},
		{http.MethodPost, "/api/admin/certifications/missing-id/reject", map[string]string{"rejectionReason": "Blurry scan, please resubmit."}},
		{http.MethodDelete, "/api/admin/certifications/missing-id", nil},
		{http.MethodDelete, "/api/admin/skills/missing-id", nil},
	}
	for _, tc := range cases {
		rec := doRequest(t, router, tc.method, tc.path, token, tc.body)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestAdminRoutesUnauthorizedWithoutToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/admin/certifications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestApproveMissingCertificationAsAdmin(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/admin/certifications/ghost/approve", adminToken(t), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRejectRequiresReason(t *testing.T) {
	router, certRepo := newTestRouter(t)
	certRepo.certs["cert-1"] = types.Certification{
		ID:     "cert-1",
		UserID: "user-1",
		Status: types.StatusPending,
	}

	rec := doRequest(t, router, http.MethodPost, "/api/admin/certifications/cert-1/reject", adminToken(t),
		map[string]string{"rejectionReason": "bad"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, false, envelope["success"])
}

func TestCertificationUploadFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	body := map[string]any{
		"skillCategory":       "Electrical",
		"certificateType":     "professional",
		"certificateTitle":    "Red Seal Electrician",
		"issuingOrganization": "Ontario College of Trades",
		"issueDate":           "2024-06-01",
		"fileName":            "red-seal.pdf",
		"fileSize":            2048,
	}
	rec := doRequest(t, router, http.MethodPost, "/api/certifications", memberToken(t), body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	envelope := decodeEnvelope(t, rec)
	require.Equal(t, true, envelope["success"])

	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, data["uploadUrl"])

	cert, ok := data["certification"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "pending", cert["status"])
}

func TestProfileGetOrCreateFromClaims(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/profile", memberToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "user-1", data["userId"])
	assert.Equal(t, "pat@example.com", data["email"])
	assert.Equal(t, "Pat Lee", data["name"])
}

func TestSkillOwnershipThroughRouter(t *testing.T) {
	router, _ := newTestRouter(t)

	create := map[string]string{
		"title":       "Lawn mowing and yard cleanup",
		"description": "I mow lawns, trim hedges and haul away yard waste on weekends.",
		"userName":    "Pat Lee",
		"userEmail":   "pat@example.com",
		"category":    "Landscaping",
		"location":    "Oshawa",
	}
	rec := doRequest(t, router, http.MethodPost, "/api/skills", memberToken(t), create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]any)
	skillID := data["skillId"].(string)
	require.NotEmpty(t, skillID)

	stranger := signToken(t, jwt.MapClaims{
		"sub":   "user-2",
		"email": "other@example.com",
		"name":  "Other",
	})
	rec = doRequest(t, router, http.MethodDelete, "/api/skills/"+skillID, stranger, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admins may delete anyone's listing.
	rec = doRequest(t, router, http.MethodDelete, "/api/skills/"+skillID, adminToken(t), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSearchRequiresParameter(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/skills/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/skills/search?location=Oshawa", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// Search results use the same {skills, total} shape as the listing
// endpoint.
func TestSearchResponseShape(t *testing.T) {
	router, _ := newTestRouter(t)

	create := map[string]string{
		"title":       "Lawn mowing and yard cleanup",
		"description": "I mow lawns, trim hedges and haul away yard waste on weekends.",
		"userName":    "Pat Lee",
		"userEmail":   "pat@example.com",
		"category":    "Landscaping",
		"location":    "Oshawa",
	}
	rec := doRequest(t, router, http.MethodPost, "/api/skills", memberToken(t), create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/api/skills/search?location=Oshawa", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)

	skills, ok := data["skills"].([]any)
	require.True(t, ok)
	assert.Len(t, skills, 1)
	assert.Equal(t, float64(1), data["total"])

	rec = doRequest(t, router, http.MethodGet, "/api/skills/search?q=nothing-matches", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	envelope = decodeEnvelope(t, rec)
	data = envelope["data"].(map[string]any)
	assert.Equal(t, float64(1), data["total"], "stub matches everything; empty filters still return the wrapped shape")
}
