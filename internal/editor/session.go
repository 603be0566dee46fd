package editor

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/backend"
	"github.com/jonathan/resume-builder/internal/resume"
)

// Backend is the slice of the external resume backend the editor needs.
// *backend.Client satisfies it.
type Backend interface {
	GetMasterResume(ctx context.Context, userEmail string) (*resume.Document, error)
	SaveMasterResume(ctx context.Context, userEmail string, doc resume.Document) error
	GetTailoredResume(ctx context.Context, userEmail string, jobID int64) (*resume.Document, error)
	SaveTailoredResume(ctx context.Context, userEmail string, jobID int64, doc resume.Document) error
	CreateTailoredResume(ctx context.Context, userEmail string, jobID int64) (int64, error)
	GetResumeVersion(ctx context.Context, userEmail string, versionID int64) (*resume.Document, error)
	GetAnalysis(ctx context.Context, versionID, jobID int64) (*backend.Analysis, error)
	AnalyzeResume(ctx context.Context, versionID, jobID int64) (*backend.Analysis, error)
	GenerateSuggestion(ctx context.Context, versionID int64, sectionType, sectionID, suggestionText string) (*backend.SuggestionContent, error)
	ApplySuggestions(ctx context.Context, versionID int64, suggestions []backend.ApprovedSuggestion) (*backend.ApplyResult, error)
}

// DraftStore is the cache used for in-progress work between visits.
// *drafts.Store satisfies it. A nil store disables draft persistence.
type DraftStore interface {
	PutDraft(ctx context.Context, userEmail string, state resume.EditingState) error
	GetDraft(ctx context.Context, userEmail string) (resume.EditingState, error)
	DeleteDraft(ctx context.Context, userEmail string) error
}

// Session holds one user's editing state for one builder page: the resolved
// mode, the current editing-shaped document, the active version pointer and
// the suggestion cards. All methods are safe for concurrent use; network
// calls are made without the session lock held so independent operations
// can overlap.
type Session struct {
	ID string

	backend Backend
	drafts  DraftStore
	logger  *log.Logger

	mu        sync.Mutex
	mode      Mode
	userEmail string
	state     resume.EditingState
	source    string
	// persistenceEnabled gates automatic draft writes. Disabled while a
	// tailored resume or stored version is loaded so scratch edits cannot
	// leak into the master draft.
	persistenceEnabled bool
	// loadGen invalidates in-flight loads when the session is retargeted.
	loadGen int

	activeVersionID int64
	analysis        *backend.Analysis
	analysisVersion int64

	cards     map[string]*Card
	cardOrder []string

	createdAt time.Time
}

// SessionConfig carries the dependencies and resolved request context for a
// new session.
type SessionConfig struct {
	Backend   Backend
	Drafts    DraftStore
	Logger    *log.Logger
	Mode      Mode
	UserEmail string
}

// NewSession creates a session in the given mode. It performs no I/O; call
// Load to populate the state.
func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		ID:                 uuid.NewString(),
		backend:            cfg.Backend,
		drafts:             cfg.Drafts,
		logger:             logger,
		mode:               cfg.Mode,
		userEmail:          cfg.UserEmail,
		state:              resume.EmptyEditingState(),
		persistenceEnabled: persistenceAllowed(cfg.Mode.Kind),
		cards:              make(map[string]*Card),
		createdAt:          time.Now(),
	}
}

// persistenceAllowed reports whether automatic draft writes apply in a mode.
func persistenceAllowed(kind ModeKind) bool {
	return kind == MasterMode || kind == FreeformMode
}

// Mode returns the session's current mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// UserEmail returns the identity the session was resolved for. Empty for an
// anonymous freeform session.
func (s *Session) UserEmail() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userEmail
}

// State returns a snapshot of the current editing state.
func (s *Session) State() resume.EditingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Source reports where the current state was loaded from: "master",
// "tailored", "version", "draft" or "empty".
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// ActiveVersionID returns the resume version the session currently points
// at, or 0 when none is known.
func (s *Session) ActiveVersionID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeVersionID
}

// Load fetches the document for the session's mode, translates it to
// editing shape and installs it. Remote modes require an identity. A load
// that completes after the session was retargeted is discarded.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loadGen++
	gen := s.loadGen
	mode := s.mode
	email := s.userEmail
	s.mu.Unlock()

	if email == "" && mode.Kind != FreeformMode {
		return ErrIdentityRequired
	}

	strategies, strict := s.strategiesFor(mode, email)
	result, err := runStrategies(ctx, strategies, strict)
	if err != nil {
		return err
	}
	for _, derr := range result.degraded {
		s.logger.Printf("session %s: degraded load: %v", s.ID, derr)
	}

	state := resume.ToEditing(*result.doc)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.loadGen {
		s.logger.Printf("session %s: discarding stale load for %s target", s.ID, mode.Kind)
		return nil
	}
	s.state = state
	s.source = result.source
	if mode.Kind == ByVersionMode || mode.Kind == TailoredMode {
		s.activeVersionID = mode.ResumeID
	}
	return nil
}

// strategiesFor builds the ordered source chain for a mode. Master mode is
// strict: its single required fetch surfaces failures. Tailored and version
// modes fall back to the master resume, and from there to empty, logging
// skipped failures instead of surfacing them.
func (s *Session) strategiesFor(mode Mode, email string) ([]loadStrategy, bool) {
	master := loadStrategy{name: "master", fetch: func(ctx context.Context) (*resume.Document, error) {
		return s.backend.GetMasterResume(ctx, email)
	}}

	switch mode.Kind {
	case MasterMode:
		return []loadStrategy{master}, true
	case TailoredMode:
		tailored := loadStrategy{name: "tailored", fetch: func(ctx context.Context) (*resume.Document, error) {
			return s.backend.GetTailoredResume(ctx, email, mode.JobID)
		}}
		return []loadStrategy{tailored, master}, false
	case ByVersionMode:
		version := loadStrategy{name: "version", fetch: func(ctx context.Context) (*resume.Document, error) {
			return s.backend.GetResumeVersion(ctx, email, mode.ResumeID)
		}}
		return []loadStrategy{version, master}, false
	default:
		draft := loadStrategy{name: "draft", fetch: func(ctx context.Context) (*resume.Document, error) {
			if s.drafts == nil || email == "" {
				return nil, backend.ErrNotFound
			}
			state, err := s.drafts.GetDraft(ctx, email)
			if err != nil {
				return nil, err
			}
			doc := resume.ToCanonical(state)
			return &doc, nil
		}}
		return []loadStrategy{draft}, false
	}
}

// Retarget switches the session to a new mode. Any load still in flight for
// the previous target is invalidated.
func (s *Session) Retarget(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadGen++
	s.mode = mode
	s.persistenceEnabled = persistenceAllowed(mode.Kind)
	s.activeVersionID = 0
	s.analysis = nil
	s.analysisVersion = 0
}

// SetState replaces the editing state with the user's latest edits. When
// draft persistence is enabled for the mode, the draft cache is updated;
// cache failures are logged, not surfaced, since the edit itself succeeded.
func (s *Session) SetState(ctx context.Context, state resume.EditingState) {
	s.mu.Lock()
	s.state = state
	persist := s.persistenceEnabled && s.drafts != nil && s.userEmail != ""
	email := s.userEmail
	s.mu.Unlock()

	if !persist {
		return
	}
	if err := s.drafts.PutDraft(ctx, email, state); err != nil {
		s.logger.Printf("session %s: draft write failed: %v", s.ID, err)
	}
}

// Save writes the current document to the mode's target. Master mode saves
// the master resume, tailored mode saves the job's tailored resume and
// never touches the master. Version viewing and anonymous freeform sessions
// have no save target.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	mode := s.mode
	email := s.userEmail
	doc := resume.ToCanonical(s.state)
	s.mu.Unlock()

	switch mode.Kind {
	case MasterMode:
		if email == "" {
			return ErrIdentityRequired
		}
		if err := s.backend.SaveMasterResume(ctx, email, doc); err != nil {
			return &SaveError{Message: "master resume", Cause: err}
		}
		return nil
	case TailoredMode:
		if email == "" {
			return ErrIdentityRequired
		}
		if err := s.backend.SaveTailoredResume(ctx, email, mode.JobID, doc); err != nil {
			return &SaveError{Message: "tailored resume", Cause: err}
		}
		return nil
	case FreeformMode:
		if email == "" || s.drafts == nil {
			return ErrReadOnlyMode
		}
		s.mu.Lock()
		state := s.state
		s.mu.Unlock()
		if err := s.drafts.PutDraft(ctx, email, state); err != nil {
			return &SaveError{Message: "draft", Cause: err}
		}
		return nil
	default:
		return ErrReadOnlyMode
	}
}

// SaveAsMaster explicitly promotes the current document to the user's
// master resume. This is the only path by which non-master modes may write
// the master record.
func (s *Session) SaveAsMaster(ctx context.Context) error {
	s.mu.Lock()
	email := s.userEmail
	doc := resume.ToCanonical(s.state)
	s.mu.Unlock()

	if email == "" {
		return ErrIdentityRequired
	}
	if err := s.backend.SaveMasterResume(ctx, email, doc); err != nil {
		return &SaveError{Message: "master resume", Cause: err}
	}
	return nil
}

// CreateTailored asks the backend to derive a tailored resume for a job
// from the user's master resume. backend.ErrNoMasterResume passes through
// so callers can prompt the user to create a master resume first.
func (s *Session) CreateTailored(ctx context.Context, jobID int64) (int64, error) {
	s.mu.Lock()
	email := s.userEmail
	s.mu.Unlock()

	if email == "" {
		return 0, ErrIdentityRequired
	}
	versionID, err := s.backend.CreateTailoredResume(ctx, email, jobID)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.activeVersionID = versionID
	s.analysis = nil
	s.mu.Unlock()
	return versionID, nil
}

// Analysis returns the match analysis for the active resume version,
// fetching a stored one or computing it on demand. The result is cached per
// version id, so a version change after an accepted suggestion forces a
// fresh fetch rather than showing a stale score.
func (s *Session) Analysis(ctx context.Context) (*backend.Analysis, error) {
	s.mu.Lock()
	versionID := s.activeVersionID
	jobID := s.mode.JobID
	if s.analysis != nil && s.analysisVersion == versionID {
		cached := s.analysis
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	if versionID == 0 || jobID == 0 {
		return nil, backend.ErrNotFound
	}

	analysis, err := s.backend.GetAnalysis(ctx, versionID, jobID)
	if errors.Is(err, backend.ErrNotFound) {
		analysis, err = s.backend.AnalyzeResume(ctx, versionID, jobID)
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.analysis = analysis
	s.analysisVersion = versionID
	s.mu.Unlock()
	return analysis, nil
}
