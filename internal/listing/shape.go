// Package listing shapes stored jobs and companies into client responses.
package listing

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-board/internal/db"
	"github.com/jonathan/job-board/internal/types"
)

// View selects which optional blocks a shaped job carries.
type View int

const (
	// ViewFull carries the full company summary and postedAt.
	ViewFull View = iota
	// ViewEdit carries neither company nor postedAt.
	ViewEdit
	// ViewListing carries postedAt and a company reduced to name and logo.
	ViewListing
)

// Builder shapes one job into a JobResponse.
type Builder struct {
	job     *db.Job
	company *db.Company
	now     time.Time
}

// NewBuilder starts shaping job. now is the reference time for postedAt.
func NewBuilder(job *db.Job, now time.Time) *Builder {
	return &Builder{job: job, now: now}
}

// WithCompany attaches the owning company. A nil company leaves the
// response without a company block in every view.
func (b *Builder) WithCompany(c *db.Company) *Builder {
	b.company = c
	return b
}

// Build produces the response for view.
func (b *Builder) Build(view View) types.JobResponse {
	j := b.job
	resp := types.JobResponse{
		Slug:           j.Slug,
		Title:          j.Title,
		Location:       j.Location,
		EmploymentType: j.EmploymentType,
		SeniorityLevel: j.SeniorityLevel,
		TechStack:      make([]string, len(j.TechStack)),
	}
	copy(resp.TechStack, j.TechStack)

	if j.Salary != nil {
		resp.Salary = &types.SalaryResponse{
			Min:      j.Salary.Min,
			Max:      j.Salary.Max,
			Currency: j.Salary.Currency,
		}
	}

	if view == ViewEdit {
		return resp
	}

	if !j.CreatedAt.IsZero() {
		postedAt := FormatPostedAt(j.CreatedAt, b.now)
		resp.PostedAt = &postedAt
	}

	if b.company != nil {
		c := b.company
		summary := &types.CompanySummary{
			Name:    c.Name,
			LogoURL: present(c.LogoURL),
		}
		if view == ViewFull {
			summary.Website = present(c.Website)
			summary.Size = present(c.Size)
			summary.Industry = present(c.Industry)
		}
		resp.Company = summary
	}
	return resp
}

// Shape is shorthand for NewBuilder(job, now).WithCompany(c).Build(view).
func Shape(job *db.Job, c *db.Company, now time.Time, view View) types.JobResponse {
	return NewBuilder(job, now).WithCompany(c).Build(view)
}

// ShapeAll shapes jobs for view, looking up each owner's company in
// companies.
func ShapeAll(jobs []db.Job, companies map[uuid.UUID]db.Company, now time.Time, view View) []types.JobResponse {
	out := make([]types.JobResponse, 0, len(jobs))
	for i := range jobs {
		var company *db.Company
		if c, ok := companies[jobs[i].UserID]; ok {
			company = &c
		}
		out = append(out, Shape(&jobs[i], company, now, view))
	}
	return out
}

// present returns s when it holds a non-empty string, nil otherwise.
func present(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

// Company converts a stored company into its client form.
func Company(c *db.Company) *types.CompanyInfo {
	if c == nil {
		return nil
	}
	return &types.CompanyInfo{
		Name:        c.Name,
		Slug:        c.Slug,
		LogoURL:     present(c.LogoURL),
		Industry:    present(c.Industry),
		Size:        present(c.Size),
		Location:    present(c.Location),
		Website:     present(c.Website),
		Description: present(c.Description),
	}
}

// Card converts a directory row into its client form.
func Card(c db.CompanyCard) types.CompanyCard {
	return types.CompanyCard{
		Name:      c.Name,
		Slug:      c.Slug,
		LogoURL:   present(c.LogoURL),
		Industry:  present(c.Industry),
		Size:      present(c.Size),
		Location:  present(c.Location),
		OpenRoles: c.OpenRoles,
	}
}
