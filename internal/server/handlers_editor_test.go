package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/backend"
	"github.com/jonathan/resume-builder/internal/resume"
)

func createSession(t *testing.T, s *Server, body string) SessionResponse {
	t.Helper()
	rec := doRequest(s, http.MethodPost, "/api/editor/sessions", strings.NewReader(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreateSessionMaster(t *testing.T) {
	doc := resume.EmptyDocument()
	doc.Basics.Name = "Alice"
	sb := &stubBackend{
		getMaster: func(_ context.Context, email string) (*resume.Document, error) {
			return &doc, nil
		},
	}
	s := newTestServer(t, sb)

	resp := createSession(t, s, `{"master": true, "userEmail": "a@x.com"}`)
	assert.Equal(t, "master", string(resp.Mode))
	assert.Equal(t, "a@x.com", resp.UserEmail)
	assert.Equal(t, "master", resp.Source)
	assert.Equal(t, "Alice", resp.State.Profile.Name)

	// The session is retrievable afterwards.
	rec := doRequest(s, http.MethodGet, "/api/editor/sessions/"+resp.SessionID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateSessionIdentityRequired(t *testing.T) {
	s := newTestServer(t, &stubBackend{})

	rec := doRequest(s, http.MethodPost, "/api/editor/sessions", strings.NewReader(`{"master": true}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateSessionRejectsBadEmail(t *testing.T) {
	s := newTestServer(t, &stubBackend{})

	rec := doRequest(s, http.MethodPost, "/api/editor/sessions", strings.NewReader(`{"master": true, "userEmail": "not-an-email"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSessionTailoredFallsBackToMaster(t *testing.T) {
	doc := resume.EmptyDocument()
	doc.Basics.Name = "A"
	sb := &stubBackend{
		getMaster: func(_ context.Context, email string) (*resume.Document, error) {
			return &doc, nil
		},
	}
	s := newTestServer(t, sb)

	resp := createSession(t, s, `{"resumeId": 12, "jobId": 7, "userEmail": "a@x.com"}`)
	assert.Equal(t, "tailored", string(resp.Mode))
	assert.Equal(t, "master", resp.Source)
	assert.Equal(t, "A", resp.State.Profile.Name)
}

func TestSessionNotFound(t *testing.T) {
	s := newTestServer(t, &stubBackend{})
	rec := doRequest(s, http.MethodGet, "/api/editor/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateStateAndSave(t *testing.T) {
	var saved resume.Document
	sb := &stubBackend{
		saveMaster: func(_ context.Context, email string, doc resume.Document) error {
			saved = doc
			return nil
		},
	}
	s := newTestServer(t, sb)
	resp := createSession(t, s, `{"master": true, "userEmail": "a@x.com"}`)

	state := resume.EmptyEditingState()
	state.Profile.Name = "Edited"
	body, err := json.Marshal(state)
	require.NoError(t, err)

	rec := doRequest(s, http.MethodPut, "/api/editor/sessions/"+resp.SessionID+"/state", strings.NewReader(string(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(s, http.MethodPost, "/api/editor/sessions/"+resp.SessionID+"/save", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Edited", saved.Basics.Name)
}

func TestSaveInVersionModeIsRefused(t *testing.T) {
	doc := resume.EmptyDocument()
	sb := &stubBackend{
		getVersion: func(_ context.Context, email string, versionID int64) (*resume.Document, error) {
			return &doc, nil
		},
	}
	s := newTestServer(t, sb)
	resp := createSession(t, s, `{"resumeId": 42, "userEmail": "a@x.com"}`)

	rec := doRequest(s, http.MethodPost, "/api/editor/sessions/"+resp.SessionID+"/save", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSessionCreateTailored(t *testing.T) {
	sb := &stubBackend{
		createTailored: func(_ context.Context, email string, jobID int64) (int64, error) {
			return 55, nil
		},
	}
	s := newTestServer(t, sb)
	resp := createSession(t, s, `{"userEmail": "a@x.com"}`)

	rec := doRequest(s, http.MethodPost, "/api/editor/sessions/"+resp.SessionID+"/tailored-resume", strings.NewReader(`{"job_id": 7}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"tailored_resume_id":55}`, rec.Body.String())
}

func TestSuggestionCardEndpoints(t *testing.T) {
	doc := resume.EmptyDocument()
	sb := &stubBackend{
		getTailored: func(_ context.Context, email string, jobID int64) (*resume.Document, error) {
			return &doc, nil
		},
		generate: func(_ context.Context, versionID int64, sectionType, sectionID, text string) (*backend.SuggestionContent, error) {
			return &backend.SuggestionContent{
				ImprovedContent: []byte(`"better"`),
				Explanation:     "tightened",
				SectionType:     sectionType,
			}, nil
		},
		apply: func(_ context.Context, versionID int64, approved []backend.ApprovedSuggestion) (*backend.ApplyResult, error) {
			return &backend.ApplyResult{NewResumeVersionID: versionID + 1, AppliedChangesCount: len(approved)}, nil
		},
	}
	s := newTestServer(t, sb)
	resp := createSession(t, s, `{"resumeId": 12, "jobId": 7, "userEmail": "a@x.com"}`)
	base := "/api/editor/sessions/" + resp.SessionID

	// Create a card.
	rec := doRequest(s, http.MethodPost, base+"/cards", strings.NewReader(`{"section": "skills", "suggestion": "Add Kubernetes"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	var card struct {
		ID    string `json:"id"`
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
	assert.Equal(t, "proposed", card.State)

	// Accepting before generation is a conflict.
	rec = doRequest(s, http.MethodPost, fmt.Sprintf("%s/cards/%s/accept", base, card.ID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Generate content.
	rec = doRequest(s, http.MethodPost, fmt.Sprintf("%s/cards/%s/generate", base, card.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
	assert.Equal(t, "ready", card.State)

	// Accept applies and reports the new version.
	rec = doRequest(s, http.MethodPost, fmt.Sprintf("%s/cards/%s/accept", base, card.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var accepted struct {
		NewResumeVersionID int64 `json:"new_resume_version_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	assert.Equal(t, int64(13), accepted.NewResumeVersionID)

	// No pending cards remain.
	rec = doRequest(s, http.MethodGet, base+"/cards", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cards":[]}`, rec.Body.String())
}

func TestDeleteSession(t *testing.T) {
	doc := resume.EmptyDocument()
	sb := &stubBackend{
		getMaster: func(_ context.Context, email string) (*resume.Document, error) {
			return &doc, nil
		},
	}
	s := newTestServer(t, sb)
	resp := createSession(t, s, `{"master": true, "userEmail": "a@x.com"}`)

	rec := doRequest(s, http.MethodDelete, "/api/editor/sessions/"+resp.SessionID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/editor/sessions/"+resp.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
