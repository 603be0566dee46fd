package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jonathan/resume-builder/internal/backend"
	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/resume"
)

// CreateSessionRequest is the request body for creating an editor session.
// The mode fields mirror the builder page's query parameters.
type CreateSessionRequest struct {
	Master    bool   `json:"master,omitempty"`
	ResumeID  int64  `json:"resumeId,omitempty"`
	JobID     int64  `json:"jobId,omitempty"`
	UserEmail string `json:"userEmail,omitempty" validate:"omitempty,email"`
	// ClientID identifies the browser for identity caching across visits.
	ClientID string `json:"clientId,omitempty"`
}

// SessionResponse is the wire representation of an editor session.
type SessionResponse struct {
	SessionID       string              `json:"session_id"`
	Mode            editor.ModeKind     `json:"mode"`
	ResumeID        int64               `json:"resume_id,omitempty"`
	JobID           int64               `json:"job_id,omitempty"`
	UserEmail       string              `json:"user_email,omitempty"`
	Source          string              `json:"source"`
	ActiveVersionID int64               `json:"active_version_id,omitempty"`
	State           resume.EditingState `json:"state"`
}

func (s *Server) sessionResponse(session *editor.Session) SessionResponse {
	mode := session.Mode()
	return SessionResponse{
		SessionID:       session.ID,
		Mode:            mode.Kind,
		ResumeID:        mode.ResumeID,
		JobID:           mode.JobID,
		UserEmail:       session.UserEmail(),
		Source:          session.Source(),
		ActiveVersionID: session.ActiveVersionID(),
		State:           session.State(),
	}
}

// modeParams rebuilds the builder page's query parameters from the request
// body so mode resolution has a single shape to work from.
func (req CreateSessionRequest) modeParams() url.Values {
	params := url.Values{}
	if req.Master {
		params.Set("master", "true")
	}
	if req.ResumeID > 0 {
		params.Set("resumeId", strconv.FormatInt(req.ResumeID, 10))
	}
	if req.JobID > 0 {
		params.Set("jobId", strconv.FormatInt(req.JobID, 10))
	}
	if req.UserEmail != "" {
		info, _ := json.Marshal(map[string]string{"email": req.UserEmail})
		params.Set("userInfo", string(info))
	}
	return params
}

// handleCreateSession opens an editor session for the requested mode and
// performs the initial load.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	params := req.modeParams()

	var cached string
	if req.ClientID != "" && s.drafts != nil {
		email, err := s.drafts.Identity(r.Context(), req.ClientID)
		if err != nil && !errors.Is(err, backend.ErrNotFound) {
			s.logger.Printf("identity cache read failed for client %s: %v", req.ClientID, err)
		}
		cached = email
	}

	identity := editor.ResolveIdentity(params, cached)
	if identity != "" && identity != cached && req.ClientID != "" && s.drafts != nil {
		if err := s.drafts.SetIdentity(r.Context(), req.ClientID, identity); err != nil {
			s.logger.Printf("identity cache write failed for client %s: %v", req.ClientID, err)
		}
	}

	session := editor.NewSession(editor.SessionConfig{
		Backend:   s.backend,
		Drafts:    s.editorDrafts(),
		Logger:    s.logger,
		Mode:      editor.ResolveMode(params),
		UserEmail: identity,
	})
	if err := session.Load(r.Context()); err != nil {
		s.respondError(w, err)
		return
	}

	s.sessions.Put(session)
	s.jsonResponse(w, http.StatusCreated, s.sessionResponse(session))
}

// editorDrafts narrows the draft store for session use, keeping a nil
// interface when drafts are disabled.
func (s *Server) editorDrafts() editor.DraftStore {
	if s.drafts == nil {
		return nil
	}
	return s.drafts
}

// session resolves the session referenced by the request path, writing the
// error response when it is missing.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	session, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		s.respondError(w, ErrSessionNotFound)
		return nil, false
	}
	return session, true
}

// handleGetSession returns the session's current state.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, s.sessionResponse(session))
}

// handleDeleteSession closes an editor session.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateState replaces the session's editing state with the client's
// latest edits.
func (s *Server) handleUpdateState(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var state resume.EditingState
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	session.SetState(r.Context(), state)
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSessionSave writes the session's document to its mode target.
func (s *Server) handleSessionSave(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := session.Save(r.Context()); err != nil {
		s.respondError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "saved"})
}

// handleSessionSaveAsMaster promotes the session's document to the master
// resume.
func (s *Server) handleSessionSaveAsMaster(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := session.SaveAsMaster(r.Context()); err != nil {
		s.respondError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "saved"})
}

// CreateTailoredRequest is the request body for deriving a tailored resume
// from within a session.
type CreateTailoredRequest struct {
	JobID int64 `json:"job_id" validate:"required,gt=0"`
}

// handleSessionCreateTailored derives a tailored resume for a job from the
// user's master resume.
func (s *Server) handleSessionCreateTailored(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var req CreateTailoredRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	versionID, err := session.CreateTailored(r.Context(), req.JobID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, map[string]any{"tailored_resume_id": versionID})
}

// handleSessionAnalysis returns the match analysis for the session's active
// resume version.
func (s *Server) handleSessionAnalysis(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	analysis, err := session.Analysis(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"analysis": analysis})
}

// handleListCards returns the session's pending suggestion cards.
func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"cards": session.Cards()})
}

// AddCardRequest is the request body for creating a suggestion card.
type AddCardRequest struct {
	Section    string `json:"section" validate:"required"`
	Suggestion string `json:"suggestion" validate:"required"`
	Reasoning  string `json:"reasoning,omitempty"`
}

// handleAddCard creates a proposed suggestion card.
func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var req AddCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	card := session.AddCard(req.Section, req.Suggestion, req.Reasoning)
	s.jsonResponse(w, http.StatusCreated, card)
}

// handleCardsFromAnalysis seeds suggestion cards from the current analysis.
func (s *Server) handleCardsFromAnalysis(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	analysis, err := session.Analysis(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	cards := session.CardsFromAnalysis(analysis)
	s.jsonResponse(w, http.StatusCreated, map[string]any{"cards": cards})
}

// handleGenerateCard generates concrete content for a proposed card.
func (s *Server) handleGenerateCard(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	card, err := session.GenerateCard(r.Context(), r.PathValue("cardId"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, card)
}

// handleAcceptCard applies a ready card and reports the new active version.
func (s *Server) handleAcceptCard(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	newVersionID, err := session.AcceptCard(r.Context(), r.PathValue("cardId"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"new_resume_version_id": newVersionID,
		"status":                "accepted",
	})
}

// handleRejectCard discards a card.
func (s *Server) handleRejectCard(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := session.RejectCard(r.PathValue("cardId")); err != nil {
		s.respondError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "rejected"})
}
