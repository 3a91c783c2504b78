package jobboard

import (
	"context"
	"errors"
	"time"

	"github.com/jonathan/job-board/internal/db"
	"github.com/jonathan/job-board/internal/listing"
	"github.com/jonathan/job-board/internal/slug"
	"github.com/jonathan/job-board/internal/types"
)

// Directory page bounds.
const (
	DefaultCompanyPageSize = 20
	MaxCompanyPageSize     = 100
)

var errSlugTaken = &ConflictError{Message: "This company slug is already taken"}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SaveCompanyInfo creates the caller's company or replaces every field of
// the existing one. The slug defaults to one derived from the name.
func (s *Service) SaveCompanyInfo(ctx context.Context, caller *Caller, input types.CompanyFormData) (resp *types.CompanyInfo, err error) {
	start := time.Now()
	defer func() { s.finish("saveCompanyInfo", start, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := ValidateCompany(&input); err != nil {
		return nil, err
	}

	companySlug := input.Slug
	if companySlug == "" {
		companySlug = slug.Slugify(input.Name)
	}
	if companySlug == "" {
		return nil, &ValidationError{Prefix: "Validation failed", Issues: []FieldIssue{{
			Path: "name", Message: "Company name must contain at least one letter or number",
		}}}
	}

	taken, err := s.store.CompanySlugTakenByOther(ctx, companySlug, caller.UserID)
	if err != nil {
		return nil, storeErr("saveCompanyInfo", "Failed to save company information", err)
	}
	if taken {
		return nil, errSlugTaken
	}

	company, err := s.store.UpsertCompany(ctx, caller.UserID, db.CompanyFields{
		Name:        input.Name,
		Slug:        companySlug,
		LogoURL:     optional(input.LogoURL),
		Industry:    optional(input.Industry),
		Size:        optional(input.Size),
		Location:    optional(input.Location),
		Website:     optional(input.Website),
		Description: optional(input.Description),
	})
	if errors.Is(err, db.ErrDuplicateSlug) {
		return nil, errSlugTaken
	}
	if err != nil {
		return nil, storeErr("saveCompanyInfo", "Failed to save company information", err)
	}

	s.cache.Invalidate(ctx)
	return listing.Company(company), nil
}

// GetCompanyInfo returns the caller's company, or nil if there is none yet.
func (s *Service) GetCompanyInfo(ctx context.Context, caller *Caller) (resp *types.CompanyInfo, err error) {
	start := time.Now()
	defer func() { s.finish("getCompanyInfo", start, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	company, err := s.store.GetCompanyByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, storeErr("getCompanyInfo", "Failed to fetch company information", err)
	}
	return listing.Company(company), nil
}

// ListCompanies returns one page of the public company directory ordered by
// name. Limits outside 1..MaxCompanyPageSize fall back to the bounds.
func (s *Service) ListCompanies(ctx context.Context, limit, offset int) (resp *types.CompanyPage, err error) {
	start := time.Now()
	defer func() { s.finish("listCompanies", start, err) }()

	if limit <= 0 {
		limit = DefaultCompanyPageSize
	}
	if limit > MaxCompanyPageSize {
		limit = MaxCompanyPageSize
	}
	if offset < 0 {
		offset = 0
	}

	rows, total, err := s.store.ListCompanies(ctx, limit, offset)
	if err != nil {
		return nil, storeErr("listCompanies", "Failed to fetch companies", err)
	}

	page := &types.CompanyPage{
		Companies: make([]types.CompanyCard, 0, len(rows)),
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	}
	for _, row := range rows {
		page.Companies = append(page.Companies, listing.Card(row))
	}
	return page, nil
}

// GetPublicCompanyBySlug returns a company with its open roles, newest first.
func (s *Service) GetPublicCompanyBySlug(ctx context.Context, companySlug string) (resp *types.PublicCompany, err error) {
	start := time.Now()
	defer func() { s.finish("getPublicCompanyBySlug", start, err, "slug", companySlug) }()

	company, err := s.store.GetCompanyBySlug(ctx, companySlug)
	if err != nil {
		return nil, storeErr("getPublicCompanyBySlug", "Failed to fetch company", err)
	}
	if company == nil {
		return nil, &NotFoundError{Resource: "Company"}
	}

	jobs, err := s.store.ListJobsByUser(ctx, company.UserID)
	if err != nil {
		return nil, storeErr("getPublicCompanyBySlug", "Failed to fetch company", err)
	}

	now := s.now()
	out := &types.PublicCompany{
		CompanyInfo: *listing.Company(company),
		OpenRoles:   make([]types.JobResponse, 0, len(jobs)),
	}
	for i := range jobs {
		out.OpenRoles = append(out.OpenRoles, listing.Shape(&jobs[i], company, now, listing.ViewListing))
	}
	return out, nil
}
