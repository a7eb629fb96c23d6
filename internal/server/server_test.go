package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/audit"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/server/ratelimit"
	"github.com/jonathan/resume-tailor/internal/similarity"
	"github.com/jonathan/resume-tailor/internal/tailoring"
	"github.com/jonathan/resume-tailor/internal/types"
)

const resumeText = `Jane Doe
jane@example.com | (555) 123-4567

Experience
Senior Engineer | TechCorp | Jan 2021 - Present
• Led migration of 40 services to Kubernetes
• Built CI pipelines with Docker`

func metric(v float64) *float64 { return &v }

func sampleResume() types.Resume {
	return types.Resume{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Sections: []string{"Experience", "Projects"},
		Skills:   []string{"Go"},
		Bullets: []types.ResumeBullet{
			{ID: "b2", Section: "Experience", RawText: "Reduced deploy time by 40% (using Jenkins pipelines)", Action: "Reduced", MetricValue: metric(40), MetricUnit: "%"},
			{ID: "b1", Section: "Experience", RawText: "responsible for the billing service in Go"},
			{ID: "b3", Section: "Projects", RawText: "Built a Kubernetes operator", Action: "Built"},
		},
	}
}

func sampleJob() types.Job {
	return types.Job{
		Title:            "Platform Engineer",
		Keywords:         []string{"Kubernetes", "Docker", "Go"},
		Responsibilities: []string{"Run Kubernetes clusters"},
	}
}

// fakeStore is an in-memory Store
type fakeStore struct {
	mu         sync.Mutex
	resumes    map[uuid.UUID]types.Resume
	jobs       map[uuid.UUID]types.Job
	tailorings map[uuid.UUID]*types.TailorResponseData
	err        error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		resumes:    make(map[uuid.UUID]types.Resume),
		jobs:       make(map[uuid.UUID]types.Job),
		tailorings: make(map[uuid.UUID]*types.TailorResponseData),
	}
}

func (f *fakeStore) SaveResume(_ context.Context, r types.Resume) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return uuid.Nil, f.err
	}
	id := uuid.New()
	f.resumes[id] = r
	return id, nil
}

func (f *fakeStore) GetResume(_ context.Context, id uuid.UUID) (*types.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.resumes[id]; ok {
		return &r, nil
	}
	return nil, f.err
}

func (f *fakeStore) SaveJob(_ context.Context, j types.Job) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return uuid.Nil, f.err
	}
	id := uuid.New()
	f.jobs[id] = j
	return id, nil
}

func (f *fakeStore) GetJob(_ context.Context, id uuid.UUID) (*types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.jobs[id]; ok {
		return &j, nil
	}
	return nil, f.err
}

func (f *fakeStore) SaveTailoring(_ context.Context, resumeID, jobID uuid.UUID, out *types.TailorResponseData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tailorings[db.PairID(resumeID, jobID)] = out
	return f.err
}

func (f *fakeStore) GetTailoring(_ context.Context, resumeID, jobID uuid.UUID) (*types.TailorResponseData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if out, ok := f.tailorings[db.PairID(resumeID, jobID)]; ok {
		return out, nil
	}
	return nil, f.err
}

type fakeQuota struct {
	source   db.AllowanceSource
	err      error
	users    []string
	refunded []db.AllowanceSource
}

func (f *fakeQuota) ConsumeTailoring(_ context.Context, userID string) (db.AllowanceSource, error) {
	f.users = append(f.users, userID)
	return f.source, f.err
}

func (f *fakeQuota) RefundTailoring(_ context.Context, _ string, source db.AllowanceSource) error {
	f.refunded = append(f.refunded, source)
	return nil
}

// keywordEmbedder maps any text mentioning Kubernetes to one axis and the rest to another
type keywordEmbedder struct {
	err error
}

func (e keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	if strings.Contains(strings.ToLower(text), "kubernetes") {
		return []float32{1, 0}, nil
	}
	return []float32{0, 1}, nil
}

func newTestServer(t *testing.T, mutate ...func(*Dependencies)) *Server {
	t.Helper()

	rp, err := parsing.NewResumeParser(parsing.StrategyHeuristic, nil, nil)
	require.NoError(t, err)
	jp, err := parsing.NewJobParser(parsing.StrategyHeuristic, nil, nil)
	require.NoError(t, err)
	engine, err := tailoring.NewEngine(tailoring.StrategyStub, nil, nil)
	require.NoError(t, err)

	deps := Dependencies{
		ResumeParser: rp,
		JobParser:    jp,
		Tailor:       engine,
		Audit:        audit.New(100),
	}
	for _, m := range mutate {
		m(&deps)
	}

	s, err := New(Config{Port: 0}, deps)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestNew_RequiresCoreComponents(t *testing.T) {
	_, err := New(Config{}, Dependencies{})
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, w)["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestParseResume(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(t, func(d *Dependencies) { d.Store = store })

	w := do(t, s, http.MethodPost, "/parse/resume", ParseRequest{Text: resumeText})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[ParseResumeResponse](t, w)
	assert.Equal(t, "Jane Doe", resp.Resume.Name)
	assert.Equal(t, "jane@example.com", resp.Resume.Email)
	assert.False(t, resp.Degraded)
	require.NotEmpty(t, resp.ID)

	events := s.audit.Query(audit.Filter{Action: ActionParseResume})
	require.Len(t, events, 1)
	assert.Equal(t, audit.OutcomeSuccess, events[0].Outcome)
	assert.Equal(t, resp.ID, events[0].Subject)

	// The stored record is retrievable
	w = do(t, s, http.MethodGet, "/resumes/"+resp.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Jane Doe", decodeBody[types.Resume](t, w).Name)
}

func TestParseResume_StoreFailureStillReturnsResume(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection refused")
	s := newTestServer(t, func(d *Dependencies) { d.Store = store })

	w := do(t, s, http.MethodPost, "/parse/resume", ParseRequest{Text: resumeText})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody[ParseResumeResponse](t, w).ID)
}

func TestParseResume_EmptyText(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/parse/resume", ParseRequest{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeBody[ErrorResponse](t, w)
	assert.Equal(t, "text", resp.Field)
	assert.Equal(t, "is required", resp.Error)

	events := s.audit.Query(audit.Filter{Outcome: audit.OutcomeFailure})
	assert.Len(t, events, 1)
}

func TestParseResume_InvalidJSON(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/parse/resume", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "body", decodeBody[ErrorResponse](t, w).Field)
}

func TestParseJob(t *testing.T) {
	s := newTestServer(t)

	text := "Senior Backend Engineer\nLocation: Remote\nResponsibilities:\n• Build APIs in Go\n• Operate Kubernetes clusters"
	w := do(t, s, http.MethodPost, "/parse/job", ParseRequest{Text: text})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[ParseJobResponse](t, w)
	assert.Equal(t, "Senior Backend Engineer", resp.Job.Title)
	assert.Len(t, resp.Job.Responsibilities, 2)
	assert.Empty(t, resp.ID, "no store configured")
}

func TestScore(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/ats/score", map[string]any{"resume": sampleResume(), "job": sampleJob()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	score := decodeBody[types.ATSScore](t, w)
	assert.GreaterOrEqual(t, score.OverallScore, 0)
	assert.LessOrEqual(t, score.OverallScore, 100)
	assert.NotNil(t, score.Suggestions)
}

func TestScore_RejectsMalformedResume(t *testing.T) {
	s := newTestServer(t)

	badResume := map[string]any{"name": "Jane", "sections": []string{}, "skills": []string{}, "bullets": []any{}}
	w := do(t, s, http.MethodPost, "/ats/score", map[string]any{"resume": badResume, "job": sampleJob()})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "resume", decodeBody[ErrorResponse](t, w).Field)
}

func TestScore_RejectsMissingJob(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/ats/score", map[string]any{"resume": sampleResume()})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "job", decodeBody[ErrorResponse](t, w).Field)
}

func TestMatch(t *testing.T) {
	s := newTestServer(t, func(d *Dependencies) {
		d.Matcher = similarity.NewMatcher(keywordEmbedder{}, similarity.DefaultOptions(), nil)
	})

	w := do(t, s, http.MethodPost, "/match", map[string]any{"resume": sampleResume(), "job": sampleJob()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[MatchResponse](t, w)
	assert.False(t, resp.Degraded)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "b3", resp.Matches[0].BulletID)
	assert.Equal(t, 1.0, resp.Matches[0].Similarity)
}

func TestMatch_Disabled(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/match", map[string]any{"resume": sampleResume(), "job": sampleJob()})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"matches":[],"degraded":false}`, w.Body.String())
}

func TestTailor_Stub(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/tailor", map[string]any{
		"resume": sampleResume(), "job": sampleJob(), "style": "concise",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[types.TailorResponseData](t, w)
	assert.Equal(t, "stub", resp.Strategy)
	assert.False(t, resp.Degraded)
	assert.InDelta(t, 2.0/3.0, resp.MatchScore, 1e-9)
	assert.Equal(t, []string{"Docker"}, resp.MissingSkills)
	require.NotNil(t, resp.ATSScore)
	assert.NotNil(t, resp.SimilarityMatches)
	assert.Len(t, resp.Resume.Bullets, 3)
}

func TestTailor_InvalidStyle(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/tailor", map[string]any{
		"resume": sampleResume(), "job": sampleJob(), "style": "verbose",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "style", decodeBody[ErrorResponse](t, w).Field)
}

func TestTailor_WithMatcher(t *testing.T) {
	s := newTestServer(t, func(d *Dependencies) {
		d.Matcher = similarity.NewMatcher(keywordEmbedder{}, similarity.DefaultOptions(), nil)
	})

	w := do(t, s, http.MethodPost, "/tailor", map[string]any{"resume": sampleResume(), "job": sampleJob()})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[types.TailorResponseData](t, w)
	assert.False(t, resp.Degraded)
	require.Len(t, resp.SimilarityMatches, 1)
	assert.Equal(t, "b3", resp.SimilarityMatches[0].BulletID)
}

func TestTailor_EmbeddingOutageIsDegraded(t *testing.T) {
	s := newTestServer(t, func(d *Dependencies) {
		d.Matcher = similarity.NewMatcher(keywordEmbedder{err: errors.New("503")}, similarity.DefaultOptions(), nil)
	})

	w := do(t, s, http.MethodPost, "/tailor", map[string]any{"resume": sampleResume(), "job": sampleJob()})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[types.TailorResponseData](t, w)
	assert.True(t, resp.Degraded)
	assert.Equal(t, "stub", resp.Strategy)
	assert.Empty(t, resp.SimilarityMatches)

	events := s.audit.Query(audit.Filter{Action: ActionTailor})
	require.Len(t, events, 1)
	assert.True(t, events[0].Degraded)
	assert.Contains(t, events[0].Detail, "503")
}

func TestTailor_QuotaGate(t *testing.T) {
	quota := &fakeQuota{source: db.SourceQuota}
	s := newTestServer(t, func(d *Dependencies) { d.Quota = quota })

	w := do(t, s, http.MethodPost, "/tailor", map[string]any{"resume": sampleResume(), "job": sampleJob()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "user_id", decodeBody[ErrorResponse](t, w).Field)
	assert.Empty(t, quota.users)

	w = do(t, s, http.MethodPost, "/tailor", map[string]any{"resume": sampleResume(), "job": sampleJob(), "user_id": "u1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"u1"}, quota.users)
	assert.Empty(t, quota.refunded)
}

func TestTailor_RefundsOnFailure(t *testing.T) {
	quota := &fakeQuota{source: db.SourceCredits}
	s := newTestServer(t, func(d *Dependencies) { d.Quota = quota })

	w := do(t, s, http.MethodPost, "/tailor", map[string]any{"resume": sampleResume(), "job": sampleJob(), "user_id": "u1", "style": "shouty"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"u1"}, quota.users)
	assert.Equal(t, []db.AllowanceSource{db.SourceCredits}, quota.refunded)
}

func TestTailor_QuotaExhausted(t *testing.T) {
	quota := &fakeQuota{err: db.ErrNoAllowance}
	s := newTestServer(t, func(d *Dependencies) { d.Quota = quota })

	w := do(t, s, http.MethodPost, "/tailor", map[string]any{"resume": sampleResume(), "job": sampleJob(), "user_id": "u1"})

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	events := s.audit.Query(audit.Filter{Subject: "u1"})
	require.Len(t, events, 1)
	assert.Equal(t, audit.OutcomeDenied, events[0].Outcome)
}

func TestTailor_QuotaBackendError(t *testing.T) {
	quota := &fakeQuota{err: errors.New("db down")}
	s := newTestServer(t, func(d *Dependencies) { d.Quota = quota })

	w := do(t, s, http.MethodPost, "/tailor", map[string]any{"resume": sampleResume(), "job": sampleJob(), "user_id": "u1"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", decodeBody[ErrorResponse](t, w).Error)
}

func TestTailor_PersistsWithIDs(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(t, func(d *Dependencies) { d.Store = store })
	resumeID, jobID := uuid.New(), uuid.New()

	w := do(t, s, http.MethodPost, "/tailor", map[string]any{
		"resume": sampleResume(), "job": sampleJob(),
		"resume_id": resumeID.String(), "job_id": jobID.String(),
	})
	require.Equal(t, http.StatusOK, w.Code)

	saved, ok := store.tailorings[db.PairID(resumeID, jobID)]
	require.True(t, ok)
	assert.Equal(t, "stub", saved.Strategy)
}

func TestGetTailoring(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(t, func(d *Dependencies) { d.Store = store })
	resumeID, jobID := uuid.New(), uuid.New()

	w := do(t, s, http.MethodGet, "/tailorings/"+resumeID.String()+"/"+jobID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodPost, "/tailor", map[string]any{
		"resume": sampleResume(), "job": sampleJob(),
		"resume_id": resumeID.String(), "job_id": jobID.String(),
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/tailorings/"+resumeID.String()+"/"+jobID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decodeBody[types.TailorResponseData](t, w)
	assert.Equal(t, "stub", got.Strategy)
	assert.Equal(t, []string{"Docker"}, got.MissingSkills)

	w = do(t, s, http.MethodGet, "/tailorings/"+resumeID.String()+"/nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "job_id", decodeBody[ErrorResponse](t, w).Field)
}

func TestTailor_RejectsBadResumeID(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/tailor", map[string]any{
		"resume": sampleResume(), "job": sampleJob(), "resume_id": "not-a-uuid",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "resume_id", decodeBody[ErrorResponse](t, w).Field)
}

func TestGetRecords(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(t, func(d *Dependencies) { d.Store = store })
	jobID, _ := store.SaveJob(context.Background(), sampleJob())

	tests := []struct {
		name string
		path string
		want int
	}{
		{"job found", "/jobs/" + jobID.String(), http.StatusOK},
		{"job missing", "/jobs/" + uuid.NewString(), http.StatusNotFound},
		{"resume missing", "/resumes/" + uuid.NewString(), http.StatusNotFound},
		{"bad id", "/resumes/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestGetRecords_NoStore(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/resumes/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestAuditEndpoint(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/parse/job", ParseRequest{Text: "Backend Engineer"})
	do(t, s, http.MethodPost, "/parse/resume", ParseRequest{Text: resumeText})

	w := do(t, s, http.MethodGet, "/audit?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[map[string][]audit.Event](t, w)
	require.Len(t, resp["events"], 1)
	assert.Equal(t, ActionParseResume, resp["events"][0].Action)

	w = do(t, s, http.MethodGet, "/audit?action=parse_job", nil)
	resp = decodeBody[map[string][]audit.Event](t, w)
	assert.Len(t, resp["events"], 1)

	w = do(t, s, http.MethodGet, "/audit?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/audit?since=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Hour,
		DefaultBurst:  1,
	})
	defer limiter.Stop()
	s := newTestServer(t, func(d *Dependencies) { d.Limiter = limiter })

	body := map[string]any{"resume": sampleResume(), "job": sampleJob()}
	w := do(t, s, http.MethodPost, "/ats/score", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = do(t, s, http.MethodPost, "/ats/score", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Health stays reachable
	w = do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodOptions, "/tailor", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
