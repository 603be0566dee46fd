package backend

import (
	"encoding/json"
)

// Job is one job-application row as returned by the backend job list,
// including the denormalized tailored-resume pointer.
type Job struct {
	ID                int64   `json:"id"`
	Title             string  `json:"title"`
	Company           string  `json:"company"`
	Location          string  `json:"location"`
	Status            string  `json:"status"`
	DateApplied       *string `json:"date_applied,omitempty"`
	AppliedDate       *string `json:"applied_date,omitempty"`
	HasTailoredResume bool    `json:"has_tailored_resume"`
	TailoredResumeID  *int64  `json:"tailored_resume_id,omitempty"`
}

// SectionScores holds the per-section match scores of an analysis, each in
// the 0-1 range.
type SectionScores struct {
	Bio            float64 `json:"bio"`
	WorkExperience float64 `json:"work_experience"`
	Education      float64 `json:"education"`
	Projects       float64 `json:"projects"`
	Skills         float64 `json:"skills"`
}

// KeywordMatches summarizes matched and missing job keywords.
type KeywordMatches struct {
	Matched         []string `json:"matched"`
	Missing         []string `json:"missing"`
	MatchPercentage float64  `json:"match_percentage"`
}

// SuggestedImprovement is one section-level improvement proposal from the
// analysis.
type SuggestedImprovement struct {
	Section    string `json:"section"`
	Priority   int    `json:"priority"`
	Suggestion string `json:"suggestion"`
	Reasoning  string `json:"reasoning"`
}

// RequirementsAnalysis summarizes what the job posting asks for.
type RequirementsAnalysis struct {
	RequiredSkills          []string `json:"required_skills"`
	PreferredQualifications []string `json:"preferred_qualifications"`
	KeyResponsibilities     []string `json:"key_responsibilities"`
}

// Analysis is the resume-vs-job match analysis produced by the backend.
type Analysis struct {
	ID                    int64                  `json:"id"`
	OverallMatchScore     float64                `json:"overall_match_score"`
	SectionScores         SectionScores          `json:"section_scores"`
	KeywordMatches        KeywordMatches         `json:"keyword_matches"`
	MissingSkills         []string               `json:"missing_skills"`
	SuggestedImprovements []SuggestedImprovement `json:"suggested_improvements"`
	ATSOptimizationTips   []string               `json:"ats_optimization_tips"`
	JobRequirements       RequirementsAnalysis   `json:"job_requirements_analysis"`
	AnalysisModel         string                 `json:"analysis_model,omitempty"`
	AnalysisTokensUsed    int                    `json:"analysis_tokens_used,omitempty"`
	AnalysisDurationMS    int64                  `json:"analysis_duration_ms,omitempty"`
	CreatedAt             string                 `json:"created_at,omitempty"`
}

// SuggestionContent is the generated before/after content for one section
// suggestion. Original and improved content are section-shaped and opaque to
// this service.
type SuggestionContent struct {
	OriginalContent json.RawMessage `json:"original_content"`
	ImprovedContent json.RawMessage `json:"improved_content"`
	Explanation     string          `json:"explanation"`
	SectionType     string          `json:"section_type"`
	SectionID       string          `json:"section_id"`
}

// ApprovedSuggestion is one accepted suggestion submitted to the apply call.
type ApprovedSuggestion struct {
	Section         string          `json:"section"`
	SectionID       string          `json:"section_id"`
	Suggestion      string          `json:"suggestion"`
	OriginalContent json.RawMessage `json:"original_content,omitempty"`
	ImprovedContent json.RawMessage `json:"improved_content,omitempty"`
	Explanation     string          `json:"explanation,omitempty"`
}

// ApplyResult is the outcome of an apply-suggestions call. The backend
// creates a new resume version rather than mutating the input version.
type ApplyResult struct {
	NewResumeVersionID  int64 `json:"new_resume_version_id"`
	AppliedChangesCount int   `json:"applied_changes_count"`
}
