package editor

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// ModeKind names the editing mode the builder page operates in.
type ModeKind string

const (
	// MasterMode edits the user's single master resume.
	MasterMode ModeKind = "master"
	// TailoredMode edits a job-specific tailored resume.
	TailoredMode ModeKind = "tailored"
	// ByVersionMode views a specific stored resume version.
	ByVersionMode ModeKind = "version"
	// FreeformMode is the plain builder with no remote target.
	FreeformMode ModeKind = "freeform"
)

// Mode is the resolved editing mode plus its targets. ResumeID and JobID are
// zero when the mode does not carry them.
type Mode struct {
	Kind     ModeKind
	ResumeID int64
	JobID    int64
}

// ResolveMode derives the editing mode from request query parameters.
// Presence of resumeId dominates: together with jobId it selects tailored
// editing, alone it selects version viewing. master=true applies only when
// neither id is present. Everything else is the freeform builder, so
// conflicting combinations degrade safely instead of failing.
func ResolveMode(params url.Values) Mode {
	resumeID, hasResume := parseID(params.Get("resumeId"))
	jobID, hasJob := parseID(params.Get("jobId"))

	switch {
	case hasResume && hasJob:
		return Mode{Kind: TailoredMode, ResumeID: resumeID, JobID: jobID}
	case hasResume:
		return Mode{Kind: ByVersionMode, ResumeID: resumeID}
	case params.Get("master") == "true" && !hasJob:
		return Mode{Kind: MasterMode}
	default:
		return Mode{Kind: FreeformMode}
	}
}

// parseID treats a missing or malformed id the same as an absent one.
func parseID(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ResolveIdentity extracts the user email for the request. The userInfo
// query parameter, when present, carries a JSON object with the email and
// wins over the cached identity. An empty result means no identity.
func ResolveIdentity(params url.Values, cachedEmail string) string {
	if raw := params.Get("userInfo"); raw != "" {
		var info struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal([]byte(raw), &info); err == nil && info.Email != "" {
			return info.Email
		}
	}
	return cachedEmail
}
