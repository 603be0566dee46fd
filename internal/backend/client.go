// Package backend provides the HTTP client for the external persistence and
// AI service. The service is a black box behind a narrow request/response
// contract; this package owns nothing but the wire calls and their error
// classification.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/resume-builder/internal/resume"
)

// DefaultTimeout is the default timeout for backend requests.
const DefaultTimeout = 30 * time.Second

// Options configures the client.
type Options struct {
	Timeout    time.Duration
	HTTPClient *http.Client
}

// DefaultOptions returns sensible defaults for backend access.
func DefaultOptions() *Options {
	return &Options{Timeout: DefaultTimeout}
}

// Client talks to the backend service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a backend client for the given base URL.
func New(baseURL string, opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// resumePayload is the {resume_data} envelope used by resume lookups.
type resumePayload struct {
	ResumeData *resume.Document `json:"resume_data"`
}

// GetMasterResume fetches the user's master resume. Returns ErrNotFound when
// no master resume exists yet.
func (c *Client) GetMasterResume(ctx context.Context, userEmail string) (*resume.Document, error) {
	endpoint := c.baseURL + "/api/openresume/master-resume?userEmail=" + url.QueryEscape(userEmail)

	var payload resumePayload
	if err := c.getJSON(ctx, "get master resume", endpoint, &payload); err != nil {
		return nil, err
	}
	if payload.ResumeData == nil {
		return nil, &RequestError{Operation: "get master resume", Message: "response missing resume_data"}
	}
	return payload.ResumeData, nil
}

// SaveMasterResume upserts the user's master resume. The backend keys the
// master row by identity, so repeated saves never create a second row.
func (c *Client) SaveMasterResume(ctx context.Context, userEmail string, doc resume.Document) error {
	endpoint := c.baseURL + "/api/openresume/master-resume"
	body := map[string]any{"userEmail": userEmail, "resumeData": doc}
	return c.postJSON(ctx, "save master resume", endpoint, body, nil)
}

// GetTailoredResume fetches the tailored resume for a job. Returns
// ErrNotFound when the job has no tailored resume yet.
func (c *Client) GetTailoredResume(ctx context.Context, userEmail string, jobID int64) (*resume.Document, error) {
	endpoint := fmt.Sprintf("%s/api/openresume/tailored-resume?userEmail=%s&jobId=%d",
		c.baseURL, url.QueryEscape(userEmail), jobID)

	var payload resumePayload
	if err := c.getJSON(ctx, "get tailored resume", endpoint, &payload); err != nil {
		return nil, err
	}
	if payload.ResumeData == nil {
		return nil, &RequestError{Operation: "get tailored resume", Message: "response missing resume_data"}
	}
	return payload.ResumeData, nil
}

// SaveTailoredResume saves the tailored resume for a job. It never touches
// the master row.
func (c *Client) SaveTailoredResume(ctx context.Context, userEmail string, jobID int64, doc resume.Document) error {
	endpoint := c.baseURL + "/api/openresume/tailored-resume"
	body := map[string]any{
		"userEmail":  userEmail,
		"jobId":      strconv.FormatInt(jobID, 10),
		"resumeData": doc,
	}
	return c.postJSON(ctx, "save tailored resume", endpoint, body, nil)
}

// createTailoredResponse is the success envelope of tailored-resume creation.
type createTailoredResponse struct {
	TailoredResumeID int64 `json:"tailored_resume_id"`
}

// CreateTailoredResume asks the backend to derive a tailored resume for a
// job from the user's master resume. Returns ErrNoMasterResume when no
// master exists; creation requires one.
func (c *Client) CreateTailoredResume(ctx context.Context, userEmail string, jobID int64) (int64, error) {
	endpoint := fmt.Sprintf("%s/api/openresume/jobs/%d/tailored-resume", c.baseURL, jobID)
	body := map[string]any{"userEmail": userEmail}

	var payload createTailoredResponse
	if err := c.postJSON(ctx, "create tailored resume", endpoint, body, &payload); err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) && isNoMasterResumeMessage(reqErr.Message) {
			return 0, ErrNoMasterResume
		}
		return 0, err
	}
	return payload.TailoredResumeID, nil
}

// GetResumeVersion fetches a specific persisted resume version by id.
// Returns ErrNotFound when no such version exists.
func (c *Client) GetResumeVersion(ctx context.Context, userEmail string, versionID int64) (*resume.Document, error) {
	endpoint := fmt.Sprintf("%s/api/openresume/resume-versions/%d?userEmail=%s",
		c.baseURL, versionID, url.QueryEscape(userEmail))

	var payload resumePayload
	if err := c.getJSON(ctx, "get resume version", endpoint, &payload); err != nil {
		return nil, err
	}
	if payload.ResumeData == nil {
		return nil, &RequestError{Operation: "get resume version", Message: "response missing resume_data"}
	}
	return payload.ResumeData, nil
}

// ListJobs fetches the user's job-application rows, including their
// denormalized tailored-resume pointers.
func (c *Client) ListJobs(ctx context.Context, userEmail string) ([]Job, error) {
	endpoint := c.baseURL + "/api/openresume/jobs?userEmail=" + url.QueryEscape(userEmail)

	var jobs []Job
	if err := c.getJSON(ctx, "list jobs", endpoint, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// analysisEnvelope wraps analysis responses, which carry a success flag.
type analysisEnvelope struct {
	Success  bool      `json:"success"`
	Analysis *Analysis `json:"analysis"`
	Error    string    `json:"error,omitempty"`
}

// AnalyzeResume runs a fresh match analysis of a resume version against a
// job posting.
func (c *Client) AnalyzeResume(ctx context.Context, versionID, jobID int64) (*Analysis, error) {
	endpoint := c.baseURL + "/api/openresume/analyze-resume"
	body := map[string]any{"resume_version_id": versionID, "job_id": jobID}

	var payload analysisEnvelope
	if err := c.postJSON(ctx, "analyze resume", endpoint, body, &payload); err != nil {
		return nil, err
	}
	if !payload.Success || payload.Analysis == nil {
		return nil, &RequestError{Operation: "analyze resume", Message: nonEmpty(payload.Error, "analysis missing from response")}
	}
	return payload.Analysis, nil
}

// GetAnalysis fetches a previously computed analysis for a resume version.
// Returns ErrNotFound when none has been computed.
func (c *Client) GetAnalysis(ctx context.Context, versionID, jobID int64) (*Analysis, error) {
	endpoint := fmt.Sprintf("%s/api/openresume/get-analysis/%d?jobId=%d", c.baseURL, versionID, jobID)

	var payload analysisEnvelope
	if err := c.getJSON(ctx, "get analysis", endpoint, &payload); err != nil {
		return nil, err
	}
	if !payload.Success || payload.Analysis == nil {
		return nil, ErrNotFound
	}
	return payload.Analysis, nil
}

// suggestionEnvelope wraps generated suggestion content.
type suggestionEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	SuggestionContent
}

// GenerateSuggestion produces improved content for one resume section.
func (c *Client) GenerateSuggestion(ctx context.Context, versionID int64, sectionType, sectionID, suggestionText string) (*SuggestionContent, error) {
	endpoint := c.baseURL + "/api/openresume/generate-suggestion"
	body := map[string]any{
		"resume_version_id": versionID,
		"section_type":      sectionType,
		"section_id":        sectionID,
		"suggestion_text":   suggestionText,
	}

	var payload suggestionEnvelope
	if err := c.postJSON(ctx, "generate suggestion", endpoint, body, &payload); err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, &RequestError{Operation: "generate suggestion", Message: nonEmpty(payload.Error, "generation failed")}
	}
	return &payload.SuggestionContent, nil
}

// applyEnvelope wraps apply-suggestions responses.
type applyEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	ApplyResult
}

// ApplySuggestions applies approved suggestions to a resume version. The
// backend creates and returns a new version linked to its parent; the input
// version is never mutated in place.
func (c *Client) ApplySuggestions(ctx context.Context, versionID int64, approved []ApprovedSuggestion) (*ApplyResult, error) {
	endpoint := c.baseURL + "/api/openresume/apply-suggestions"
	body := map[string]any{
		"resume_version_id":    versionID,
		"approved_suggestions": approved,
	}

	var payload applyEnvelope
	if err := c.postJSON(ctx, "apply suggestions", endpoint, body, &payload); err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, &RequestError{Operation: "apply suggestions", Message: nonEmpty(payload.Error, "apply failed")}
	}
	return &payload.ApplyResult, nil
}

// getJSON performs a GET and decodes the JSON response. A 404 maps to
// ErrNotFound; any other non-2xx status maps to a RequestError carrying the
// server's error message when one is present.
func (c *Client) getJSON(ctx context.Context, operation, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &RequestError{Operation: operation, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(operation, req, out)
}

// postJSON performs a POST with a JSON body and decodes the JSON response.
func (c *Client) postJSON(ctx context.Context, operation, endpoint string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return &RequestError{Operation: operation, Message: "failed to encode request body", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return &RequestError{Operation: operation, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(operation, req, out)
}

func (c *Client) do(operation string, req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Operation: operation, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Operation: operation, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Message:    serverErrorMessage(raw, resp.StatusCode),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &RequestError{Operation: operation, StatusCode: resp.StatusCode, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// serverErrorMessage extracts the {"error": ...} message from an error body,
// falling back to the raw body or the status text.
func serverErrorMessage(raw []byte, statusCode int) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	if trimmed := strings.TrimSpace(string(raw)); trimmed != "" {
		return trimmed
	}
	return http.StatusText(statusCode)
}

// isNoMasterResumeMessage recognizes the backend's refusal to create a
// tailored resume without a master, which is signaled by message content.
func isNoMasterResumeMessage(message string) bool {
	return strings.Contains(strings.ToLower(message), "no master resume")
}

func nonEmpty(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
