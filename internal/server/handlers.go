package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/jonathan/job-board/internal/jobboard"
	"github.com/jonathan/job-board/internal/schemas"
	"github.com/jonathan/job-board/internal/server/middleware"
	"github.com/jonathan/job-board/internal/types"
)

// maxBodyBytes caps job and company payloads.
const maxBodyBytes = 64 << 10

// JobBoard is the set of operations the HTTP surface exposes.
// *jobboard.Service implements it.
type JobBoard interface {
	CreateJob(ctx context.Context, caller *jobboard.Caller, input types.JobFormData) (*types.JobResponse, error)
	UpdateJob(ctx context.Context, caller *jobboard.Caller, jobSlug string, input types.JobFormData) (*types.JobResponse, error)
	GetCompanyJobs(ctx context.Context, caller *jobboard.Caller) ([]types.JobResponse, error)
	GetJobBySlug(ctx context.Context, caller *jobboard.Caller, jobSlug string) (*types.JobResponse, error)
	GetPublicJobBySlug(ctx context.Context, jobSlug string) (*types.JobResponse, error)
	GetJobListings(ctx context.Context) ([]types.JobResponse, error)
	GetSimilarJobs(ctx context.Context, excludeSlug string, limit int) ([]types.JobResponse, error)
	SaveCompanyInfo(ctx context.Context, caller *jobboard.Caller, input types.CompanyFormData) (*types.CompanyInfo, error)
	GetCompanyInfo(ctx context.Context, caller *jobboard.Caller) (*types.CompanyInfo, error)
	ListCompanies(ctx context.Context, limit, offset int) (*types.CompanyPage, error)
	GetPublicCompanyBySlug(ctx context.Context, companySlug string) (*types.PublicCompany, error)
}

var _ JobBoard = (*jobboard.Service)(nil)

// parseQueryInt parses a non-negative integer query parameter. Missing or
// malformed values yield defaultValue.
func parseQueryInt(r *http.Request, key string, defaultValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	return val
}

// caller returns the identity OptionalAuth attached, or nil for anonymous
// requests. The service turns a nil caller into an AuthError.
func caller(r *http.Request) *jobboard.Caller {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		return nil
	}
	return &jobboard.Caller{UserID: userID}
}

// decodePayload checks the body against the named schema, decodes it into
// dst and runs rules, which normally validates dst. A schema failure does not
// stop the rule check: whatever decoded is still checked, so one response
// lists both the structural and the rule violations.
func decodePayload(w http.ResponseWriter, r *http.Request, schema string, dst any, rules func() error) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return &jobboard.ValidationError{
			Prefix: "Validation failed",
			Issues: []jobboard.FieldIssue{{Message: "Request body too large"}},
		}
	}

	structural, err := schemaIssues(schema, body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			if structural != nil {
				return structural
			}
			return &jobboard.ValidationError{
				Prefix: "Validation failed",
				Issues: []jobboard.FieldIssue{{Path: "(root)", Message: "Invalid JSON"}},
			}
		}
		// Mistyped fields are left zero; the schema has already named them.
	}

	var ruleErr *jobboard.ValidationError
	if err := rules(); err != nil && !errors.As(err, &ruleErr) {
		return err
	}

	if merged := jobboard.MergeIssues(structural, ruleErr); merged != nil {
		return merged
	}
	return nil
}

// schemaIssues converts schema violations into a *jobboard.ValidationError.
// It returns nil, nil for a conforming body.
func schemaIssues(schema string, body []byte) (*jobboard.ValidationError, error) {
	err := schemas.Validate(schema, body)
	if err == nil {
		return nil, nil
	}
	var schemaErr *schemas.ValidationError
	if !errors.As(err, &schemaErr) {
		return nil, err
	}
	issues := make([]jobboard.FieldIssue, len(schemaErr.Errors))
	for i, fe := range schemaErr.Errors {
		issues[i] = jobboard.FieldIssue{Path: fe.Field, Message: fe.Message}
	}
	return &jobboard.ValidationError{Prefix: "Validation failed", Issues: issues}, nil
}

// writeResult writes an operation outcome with the status its error maps to.
func writeResult(w http.ResponseWriter, successStatus int, result types.Result, err error) {
	status := successStatus
	if err != nil {
		status = HTTPStatus(err)
	}
	writeJSON(w, status, result)
}

// handleGetJobListings serves the home-page listings.
func (s *Server) handleGetJobListings(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.board.GetJobListings(r.Context())
	writeResult(w, http.StatusOK, jobboard.ListEnvelope(jobs, err), err)
}

// handleGetPublicJob serves one job by slug to anyone.
func (s *Server) handleGetPublicJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.board.GetPublicJobBySlug(r.Context(), r.PathValue("slug"))
	writeResult(w, http.StatusOK, jobboard.Envelope(job, err), err)
}

// handleGetSimilarJobs serves recent jobs other than the one in the path.
// A missing limit lets the service apply its default.
func (s *Server) handleGetSimilarJobs(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 0)
	jobs, err := s.board.GetSimilarJobs(r.Context(), r.PathValue("slug"), limit)
	writeResult(w, http.StatusOK, jobboard.ListEnvelope(jobs, err), err)
}

// handleListCompanies serves the public company directory.
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", jobboard.DefaultCompanyPageSize)
	offset := parseQueryInt(r, "offset", 0)

	page, err := s.board.ListCompanies(r.Context(), limit, offset)
	writeResult(w, http.StatusOK, jobboard.Envelope(page, err), err)
}

// handleGetPublicCompany serves a company page with its open roles.
func (s *Server) handleGetPublicCompany(w http.ResponseWriter, r *http.Request) {
	company, err := s.board.GetPublicCompanyBySlug(r.Context(), r.PathValue("slug"))
	writeResult(w, http.StatusOK, jobboard.Envelope(company, err), err)
}

// handleGetCompanyInfo serves the caller's own company profile.
func (s *Server) handleGetCompanyInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.board.GetCompanyInfo(r.Context(), caller(r))
	writeResult(w, http.StatusOK, jobboard.Envelope(info, err), err)
}

// handleSaveCompanyInfo creates or replaces the caller's company profile.
// Identity is checked before the body is looked at.
func (s *Server) handleSaveCompanyInfo(w http.ResponseWriter, r *http.Request) {
	who := caller(r)
	if who == nil {
		err := &jobboard.AuthError{}
		writeResult(w, http.StatusOK, jobboard.Envelope(nil, err), err)
		return
	}

	var input types.CompanyFormData
	if err := decodePayload(w, r, schemas.Company, &input, func() error {
		return jobboard.ValidateCompany(&input)
	}); err != nil {
		writeResult(w, http.StatusOK, jobboard.Envelope(nil, err), err)
		return
	}

	info, err := s.board.SaveCompanyInfo(r.Context(), who, input)
	writeResult(w, http.StatusOK, jobboard.Envelope(info, err), err)
}

// handleGetCompanyJobs serves every job the caller's company has posted.
func (s *Server) handleGetCompanyJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.board.GetCompanyJobs(r.Context(), caller(r))
	writeResult(w, http.StatusOK, jobboard.ListEnvelope(jobs, err), err)
}

// handleCreateJob posts a new job for the caller's company.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var input types.JobFormData
	if err := decodePayload(w, r, schemas.Job, &input, func() error {
		return jobboard.ValidateJob(&input)
	}); err != nil {
		writeResult(w, http.StatusCreated, jobboard.Envelope(nil, err), err)
		return
	}

	job, err := s.board.CreateJob(r.Context(), caller(r), input)
	writeResult(w, http.StatusCreated, jobboard.Envelope(job, err), err)
}

// handleGetOwnJob serves one of the caller's jobs in its edit form.
func (s *Server) handleGetOwnJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.board.GetJobBySlug(r.Context(), caller(r), r.PathValue("slug"))
	writeResult(w, http.StatusOK, jobboard.Envelope(job, err), err)
}

// handleUpdateJob replaces the editable fields of one of the caller's jobs.
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	jobSlug := r.PathValue("slug")
	if err := jobboard.ValidateSlug(jobSlug); err != nil {
		writeResult(w, http.StatusOK, jobboard.Envelope(nil, err), err)
		return
	}

	var input types.JobFormData
	if err := decodePayload(w, r, schemas.Job, &input, func() error {
		return jobboard.ValidateJob(&input)
	}); err != nil {
		writeResult(w, http.StatusOK, jobboard.Envelope(nil, err), err)
		return
	}

	job, err := s.board.UpdateJob(r.Context(), caller(r), jobSlug, input)
	writeResult(w, http.StatusOK, jobboard.Envelope(job, err), err)
}
