package jobboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/job-board/internal/db"
	"github.com/jonathan/job-board/internal/listing"
	"github.com/jonathan/job-board/internal/metrics"
	"github.com/jonathan/job-board/internal/slug"
	"github.com/jonathan/job-board/internal/types"
)

const homeListingsKey = "home"

func jobFields(f *types.JobFormData) db.JobFields {
	fields := db.JobFields{
		Title:          f.Title,
		Location:       f.Location,
		EmploymentType: f.EmploymentType,
		SeniorityLevel: f.SeniorityLevel,
		TechStack:      f.TechStack,
	}
	if f.Salary != nil {
		fields.Salary = &db.Salary{Min: f.Salary.Min, Max: f.Salary.Max, Currency: f.Salary.Currency}
	}
	return fields
}

// CreateJob validates input, checks the caller owns a company, assigns a
// unique slug derived from the title and stores the job.
func (s *Service) CreateJob(ctx context.Context, caller *Caller, input types.JobFormData) (resp *types.JobResponse, err error) {
	start := time.Now()
	defer func() { s.finish("createJob", start, err) }()

	if err := ValidateJob(&input); err != nil {
		return nil, err
	}
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	company, err := s.store.GetCompanyByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, storeErr("createJob", "Failed to create job listing", err)
	}
	if company == nil {
		return nil, errPrereqCompany
	}

	base := slug.Slugify(input.Title)
	if base == "" {
		return nil, &ValidationError{Prefix: "Validation failed", Issues: []FieldIssue{{
			Path: "title", Message: "Job title must contain at least one letter or number",
		}}}
	}

	fields := jobFields(&input)
	for attempt := 1; ; attempt++ {
		candidate, err := slug.MakeUnique(ctx, base, s.jobSlugExists)
		if err != nil {
			return nil, storeErr("createJob", "Failed to create job listing", err)
		}

		job, err := s.store.CreateJob(ctx, caller.UserID, candidate, fields)
		if errors.Is(err, db.ErrDuplicateSlug) && attempt < maxSlugAttempts {
			metrics.SlugCollisionsTotal.WithLabelValues("job_race").Inc()
			s.log.Warnw("job slug claimed concurrently, retrying", "slug", candidate, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, storeErr("createJob", "Failed to create job listing", err)
		}

		s.cache.Invalidate(ctx)
		out := listing.Shape(job, nil, s.now(), listing.ViewFull)
		return &out, nil
	}
}

func (s *Service) jobSlugExists(ctx context.Context, candidate string) (bool, error) {
	taken, err := s.store.JobSlugExists(ctx, candidate)
	if taken {
		metrics.SlugCollisionsTotal.WithLabelValues("job").Inc()
	}
	return taken, err
}

// UpdateJob replaces the mutable fields of the caller's job. The slug never
// changes, even when the title does.
func (s *Service) UpdateJob(ctx context.Context, caller *Caller, jobSlug string, input types.JobFormData) (resp *types.JobResponse, err error) {
	start := time.Now()
	defer func() { s.finish("updateJob", start, err, "slug", jobSlug) }()

	if err := ValidateSlug(jobSlug); err != nil {
		return nil, err
	}
	if err := ValidateJob(&input); err != nil {
		return nil, err
	}
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	existing, err := s.store.GetJobBySlugAndUser(ctx, jobSlug, caller.UserID)
	if err != nil {
		return nil, storeErr("updateJob", "Failed to update job listing", err)
	}
	if existing == nil {
		return nil, &NotFoundError{Resource: "Job"}
	}

	job, err := s.store.UpdateJob(ctx, jobSlug, caller.UserID, jobFields(&input))
	if err != nil {
		return nil, storeErr("updateJob", "Failed to update job listing", err)
	}
	if job == nil {
		return nil, &StoreError{Op: "updateJob", Fallback: "Failed to update job"}
	}

	s.cache.Invalidate(ctx)
	out := listing.Shape(job, nil, s.now(), listing.ViewFull)
	return &out, nil
}

// GetCompanyJobs lists the caller's jobs newest first. A caller without a
// company gets an empty list.
func (s *Service) GetCompanyJobs(ctx context.Context, caller *Caller) (resp []types.JobResponse, err error) {
	start := time.Now()
	defer func() { s.finish("getCompanyJobs", start, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	company, err := s.store.GetCompanyByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, storeErr("getCompanyJobs", "Failed to fetch job listings", err)
	}
	if company == nil {
		return []types.JobResponse{}, nil
	}

	jobs, err := s.store.ListJobsByUser(ctx, caller.UserID)
	if err != nil {
		return nil, storeErr("getCompanyJobs", "Failed to fetch job listings", err)
	}

	now := s.now()
	out := make([]types.JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, listing.Shape(&jobs[i], company, now, listing.ViewListing))
	}
	return out, nil
}

// GetJobBySlug returns the caller's own job in its edit form.
func (s *Service) GetJobBySlug(ctx context.Context, caller *Caller, jobSlug string) (resp *types.JobResponse, err error) {
	start := time.Now()
	defer func() { s.finish("getJobBySlug", start, err, "slug", jobSlug) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	job, err := s.store.GetJobBySlugAndUser(ctx, jobSlug, caller.UserID)
	if err != nil {
		return nil, storeErr("getJobBySlug", "Failed to fetch job", err)
	}
	if job == nil {
		return nil, &NotFoundError{Resource: "Job"}
	}

	out := listing.Shape(job, nil, s.now(), listing.ViewEdit)
	return &out, nil
}

// GetPublicJobBySlug returns any job with its owner's company.
func (s *Service) GetPublicJobBySlug(ctx context.Context, jobSlug string) (resp *types.JobResponse, err error) {
	start := time.Now()
	defer func() { s.finish("getPublicJobBySlug", start, err, "slug", jobSlug) }()

	job, err := s.store.GetJobBySlug(ctx, jobSlug)
	if err != nil {
		return nil, storeErr("getPublicJobBySlug", "Failed to fetch job", err)
	}
	if job == nil {
		return nil, &NotFoundError{Resource: "Job"}
	}

	company, err := s.store.GetCompanyByUserID(ctx, job.UserID)
	if err != nil {
		return nil, storeErr("getPublicJobBySlug", "Failed to fetch job", err)
	}

	out := listing.Shape(job, company, s.now(), listing.ViewFull)
	return &out, nil
}

// GetJobListings returns the most recent jobs for the home page.
func (s *Service) GetJobListings(ctx context.Context) (resp []types.JobResponse, err error) {
	start := time.Now()
	defer func() { s.finish("getJobListings", start, err) }()

	return s.recentListings(ctx, homeListingsKey, db.ListJobsOptions{Limit: s.limits.Home}, "Failed to fetch job listings")
}

// GetSimilarJobs returns recent jobs other than excludeSlug. A limit of
// zero or less uses the default; larger limits are capped. excludeSlug comes
// from the URL and becomes part of the cache key, so it is validated first.
func (s *Service) GetSimilarJobs(ctx context.Context, excludeSlug string, limit int) (resp []types.JobResponse, err error) {
	start := time.Now()
	defer func() { s.finish("getSimilarJobs", start, err, "slug", excludeSlug) }()

	if err := ValidateSlug(excludeSlug); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.limits.SimilarDefault
	}
	if limit > s.limits.SimilarMax {
		limit = s.limits.SimilarMax
	}
	key := fmt.Sprintf("similar:%s:%d", excludeSlug, limit)
	return s.recentListings(ctx, key, db.ListJobsOptions{ExcludeSlug: excludeSlug, Limit: limit}, "Failed to fetch similar jobs")
}

// WarmListings refreshes the cached home listings.
func (s *Service) WarmListings(ctx context.Context) error {
	jobs, err := s.loadRecent(ctx, db.ListJobsOptions{Limit: s.limits.Home}, "Failed to fetch job listings")
	if err != nil {
		return err
	}
	s.cache.Set(ctx, homeListingsKey, jobs)
	return nil
}

func (s *Service) recentListings(ctx context.Context, key string, opts db.ListJobsOptions, fallback string) ([]types.JobResponse, error) {
	if cached, ok := s.cache.Get(ctx, key); ok {
		metrics.ListingCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.ListingCacheTotal.WithLabelValues("miss").Inc()

	jobs, err := s.loadRecent(ctx, opts, fallback)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, jobs)
	return jobs, nil
}

func (s *Service) loadRecent(ctx context.Context, opts db.ListJobsOptions, fallback string) ([]types.JobResponse, error) {
	jobs, err := s.store.ListRecentJobs(ctx, opts)
	if err != nil {
		return nil, storeErr("listRecentJobs", fallback, err)
	}
	companies, err := s.companyMap(ctx, jobs)
	if err != nil {
		return nil, storeErr("listRecentJobs", fallback, err)
	}
	return listing.ShapeAll(jobs, companies, s.now(), listing.ViewListing), nil
}
