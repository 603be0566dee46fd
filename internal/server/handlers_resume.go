package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-builder/internal/backend"
	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/schemas"
)

// pointerRepairConcurrency bounds the version lookups made while verifying
// tailored-resume pointers in the job list.
const pointerRepairConcurrency = 4

// respondError writes the mapped status and message for an error.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	s.errorResponse(w, HTTPStatus(err), err.Error())
}

// userEmailParam extracts the required userEmail query parameter.
func (s *Server) userEmailParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := r.URL.Query().Get("userEmail")
	if email == "" {
		s.errorResponse(w, http.StatusBadRequest, "userEmail is required")
		return "", false
	}
	return email, true
}

// decodeDocument reads and schema-validates a canonical resume document body.
func (s *Server) decodeDocument(w http.ResponseWriter, r *http.Request) (resume.Document, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "failed to read request body: "+err.Error())
		return resume.Document{}, false
	}
	if err := schemas.ValidateResumeDocument(body); err != nil {
		s.respondError(w, err)
		return resume.Document{}, false
	}
	var doc resume.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid resume document: "+err.Error())
		return resume.Document{}, false
	}
	return doc, true
}

// handleGetMasterResume returns the user's master resume.
func (s *Server) handleGetMasterResume(w http.ResponseWriter, r *http.Request) {
	email, ok := s.userEmailParam(w, r)
	if !ok {
		return
	}
	doc, err := s.backend.GetMasterResume(r.Context(), email)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"resume_data": doc})
}

// handleSaveMasterResume upserts the user's master resume.
func (s *Server) handleSaveMasterResume(w http.ResponseWriter, r *http.Request) {
	email, ok := s.userEmailParam(w, r)
	if !ok {
		return
	}
	doc, ok := s.decodeDocument(w, r)
	if !ok {
		return
	}
	if err := s.backend.SaveMasterResume(r.Context(), email, doc); err != nil {
		s.respondError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "saved"})
}

// jobIDParam extracts the required jobId query parameter.
func (s *Server) jobIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("jobId")
	jobID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || jobID <= 0 {
		s.errorResponse(w, http.StatusBadRequest, "jobId is required")
		return 0, false
	}
	return jobID, true
}

// handleGetTailoredResume returns the tailored resume for a job.
func (s *Server) handleGetTailoredResume(w http.ResponseWriter, r *http.Request) {
	email, ok := s.userEmailParam(w, r)
	if !ok {
		return
	}
	jobID, ok := s.jobIDParam(w, r)
	if !ok {
		return
	}
	doc, err := s.backend.GetTailoredResume(r.Context(), email, jobID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"resume_data": doc})
}

// handleSaveTailoredResume saves the tailored resume for a job.
func (s *Server) handleSaveTailoredResume(w http.ResponseWriter, r *http.Request) {
	email, ok := s.userEmailParam(w, r)
	if !ok {
		return
	}
	jobID, ok := s.jobIDParam(w, r)
	if !ok {
		return
	}
	doc, ok := s.decodeDocument(w, r)
	if !ok {
		return
	}
	if err := s.backend.SaveTailoredResume(r.Context(), email, jobID, doc); err != nil {
		s.respondError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "saved"})
}

// handleGetResumeVersion returns a stored resume version by id.
func (s *Server) handleGetResumeVersion(w http.ResponseWriter, r *http.Request) {
	email, ok := s.userEmailParam(w, r)
	if !ok {
		return
	}
	versionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid version id")
		return
	}
	doc, err := s.backend.GetResumeVersion(r.Context(), email, versionID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"resume_data": doc})
}

// handleListJobs returns the user's job applications with verified
// tailored-resume pointers.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	email, ok := s.userEmailParam(w, r)
	if !ok {
		return
	}
	jobs, err := s.backend.ListJobs(r.Context(), email)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.repairJobPointers(r.Context(), email, jobs)
	normalizeJobs(jobs)
	s.jsonResponse(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// normalizeJobs maps backend job rows onto the shape clients expect:
// placeholder defaults for missing display fields, and the two applied-date
// aliases folded into date_applied.
func normalizeJobs(jobs []backend.Job) {
	for i := range jobs {
		job := &jobs[i]
		if job.Title == "" {
			job.Title = "Unknown Position"
		}
		if job.Company == "" {
			job.Company = "Unknown Company"
		}
		if job.Location == "" {
			job.Location = "Unknown Location"
		}
		if job.Status == "" {
			job.Status = "Unknown"
		}
		if job.DateApplied == nil {
			job.DateApplied = job.AppliedDate
		}
		job.AppliedDate = nil
	}
}

// repairJobPointers verifies each job's denormalized tailored-resume pointer
// against the version store and clears pointers whose version no longer
// exists. Verification failures other than not-found leave the pointer
// untouched.
func (s *Server) repairJobPointers(ctx context.Context, email string, jobs []backend.Job) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pointerRepairConcurrency)

	for i := range jobs {
		job := &jobs[i]
		if !job.HasTailoredResume || job.TailoredResumeID == nil {
			continue
		}
		g.Go(func() error {
			_, err := s.backend.GetResumeVersion(gctx, email, *job.TailoredResumeID)
			if errors.Is(err, backend.ErrNotFound) {
				job.HasTailoredResume = false
				job.TailoredResumeID = nil
			} else if err != nil {
				s.logger.Printf("job %d: tailored resume pointer check failed: %v", job.ID, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// handleCreateTailoredResume derives a tailored resume for a job from the
// user's master resume.
func (s *Server) handleCreateTailoredResume(w http.ResponseWriter, r *http.Request) {
	email, ok := s.userEmailParam(w, r)
	if !ok {
		return
	}
	jobID, err := strconv.ParseInt(r.PathValue("jobId"), 10, 64)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid job id")
		return
	}
	versionID, err := s.backend.CreateTailoredResume(r.Context(), email, jobID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, map[string]any{"tailored_resume_id": versionID})
}

// handleGetAnalysis returns the tailoring analysis for a resume version,
// computing it when none is stored yet.
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	versionID, err := strconv.ParseInt(r.PathValue("versionId"), 10, 64)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid version id")
		return
	}
	jobID, ok := s.jobIDParam(w, r)
	if !ok {
		return
	}

	analysis, err := s.backend.GetAnalysis(r.Context(), versionID, jobID)
	if errors.Is(err, backend.ErrNotFound) {
		analysis, err = s.backend.AnalyzeResume(r.Context(), versionID, jobID)
	}
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"analysis": analysis})
}

// AnalyzeRequest is the request body for /api/resume-tailoring/analyze-resume.
type AnalyzeRequest struct {
	ResumeVersionID int64 `json:"resume_version_id" validate:"required,gt=0"`
	JobID           int64 `json:"job_id" validate:"required,gt=0"`
}

// handleAnalyzeResume recomputes the tailoring analysis for a resume version.
func (s *Server) handleAnalyzeResume(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	analysis, err := s.backend.AnalyzeResume(r.Context(), req.ResumeVersionID, req.JobID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"analysis": analysis})
}
