package server

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-builder/internal/backend"
	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
)

// stubBackend implements Backend with overridable behavior per call. Calls
// without an override report not-found.
type stubBackend struct {
	getMaster      func(ctx context.Context, email string) (*resume.Document, error)
	saveMaster     func(ctx context.Context, email string, doc resume.Document) error
	getTailored    func(ctx context.Context, email string, jobID int64) (*resume.Document, error)
	saveTailored   func(ctx context.Context, email string, jobID int64, doc resume.Document) error
	createTailored func(ctx context.Context, email string, jobID int64) (int64, error)
	getVersion     func(ctx context.Context, email string, versionID int64) (*resume.Document, error)
	getAnalysis    func(ctx context.Context, versionID, jobID int64) (*backend.Analysis, error)
	analyze        func(ctx context.Context, versionID, jobID int64) (*backend.Analysis, error)
	generate       func(ctx context.Context, versionID int64, sectionType, sectionID, text string) (*backend.SuggestionContent, error)
	apply          func(ctx context.Context, versionID int64, approved []backend.ApprovedSuggestion) (*backend.ApplyResult, error)
	listJobs       func(ctx context.Context, email string) ([]backend.Job, error)
}

func (b *stubBackend) GetMasterResume(ctx context.Context, email string) (*resume.Document, error) {
	if b.getMaster == nil {
		return nil, backend.ErrNotFound
	}
	return b.getMaster(ctx, email)
}

func (b *stubBackend) SaveMasterResume(ctx context.Context, email string, doc resume.Document) error {
	if b.saveMaster == nil {
		return nil
	}
	return b.saveMaster(ctx, email, doc)
}

func (b *stubBackend) GetTailoredResume(ctx context.Context, email string, jobID int64) (*resume.Document, error) {
	if b.getTailored == nil {
		return nil, backend.ErrNotFound
	}
	return b.getTailored(ctx, email, jobID)
}

func (b *stubBackend) SaveTailoredResume(ctx context.Context, email string, jobID int64, doc resume.Document) error {
	if b.saveTailored == nil {
		return nil
	}
	return b.saveTailored(ctx, email, jobID, doc)
}

func (b *stubBackend) CreateTailoredResume(ctx context.Context, email string, jobID int64) (int64, error) {
	if b.createTailored == nil {
		return 0, backend.ErrNoMasterResume
	}
	return b.createTailored(ctx, email, jobID)
}

func (b *stubBackend) GetResumeVersion(ctx context.Context, email string, versionID int64) (*resume.Document, error) {
	if b.getVersion == nil {
		return nil, backend.ErrNotFound
	}
	return b.getVersion(ctx, email, versionID)
}

func (b *stubBackend) GetAnalysis(ctx context.Context, versionID, jobID int64) (*backend.Analysis, error) {
	if b.getAnalysis == nil {
		return nil, backend.ErrNotFound
	}
	return b.getAnalysis(ctx, versionID, jobID)
}

func (b *stubBackend) AnalyzeResume(ctx context.Context, versionID, jobID int64) (*backend.Analysis, error) {
	if b.analyze == nil {
		return nil, backend.ErrNotFound
	}
	return b.analyze(ctx, versionID, jobID)
}

func (b *stubBackend) GenerateSuggestion(ctx context.Context, versionID int64, sectionType, sectionID, text string) (*backend.SuggestionContent, error) {
	if b.generate == nil {
		return &backend.SuggestionContent{Explanation: "stub"}, nil
	}
	return b.generate(ctx, versionID, sectionType, sectionID, text)
}

func (b *stubBackend) ApplySuggestions(ctx context.Context, versionID int64, approved []backend.ApprovedSuggestion) (*backend.ApplyResult, error) {
	if b.apply == nil {
		return &backend.ApplyResult{NewResumeVersionID: versionID + 1, AppliedChangesCount: len(approved)}, nil
	}
	return b.apply(ctx, versionID, approved)
}

func (b *stubBackend) ListJobs(ctx context.Context, email string) ([]backend.Job, error) {
	if b.listJobs == nil {
		return nil, nil
	}
	return b.listJobs(ctx, email)
}

// newTestServer wires a server around a stub backend with rate limiting
// disabled and logging discarded.
func newTestServer(t *testing.T, sb *stubBackend) *Server {
	t.Helper()
	s := &Server{
		backend:     sb,
		sessions:    newSessionStore(time.Hour),
		rateLimiter: ratelimit.NewLimiter(&ratelimit.Config{Enabled: false}),
		validate:    validator.New(),
		logger:      log.New(io.Discard, "", 0),
	}
	t.Cleanup(func() {
		s.sessions.Stop()
		s.rateLimiter.Stop()
	})
	return s
}

func doRequest(s *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, &stubBackend{})
	rec := doRequest(s, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSessionStore(t *testing.T) {
	store := newSessionStore(time.Hour)
	defer store.Stop()

	session := editor.NewSession(editor.SessionConfig{
		Backend: &stubBackend{},
		Mode:    editor.Mode{Kind: editor.FreeformMode},
	})
	store.Put(session)
	assert.Equal(t, 1, store.Len())

	got, ok := store.Get(session.ID)
	assert.True(t, ok)
	assert.Same(t, session, got)

	_, ok = store.Get("missing")
	assert.False(t, ok)

	store.Delete(session.ID)
	assert.Equal(t, 0, store.Len())
}

func TestSessionStoreDropsIdle(t *testing.T) {
	store := newSessionStore(time.Hour)
	defer store.Stop()

	session := editor.NewSession(editor.SessionConfig{
		Backend: &stubBackend{},
		Mode:    editor.Mode{Kind: editor.FreeformMode},
	})
	store.Put(session)

	// Backdate the access time past the TTL and run a cleanup pass.
	store.mu.Lock()
	store.lastAccess[session.ID] = time.Now().Add(-2 * time.Hour)
	store.mu.Unlock()
	store.dropIdle()

	_, ok := store.Get(session.ID)
	assert.False(t, ok)
}
