package types

import "strings"

// Employment types and seniority levels accepted for a job.
var (
	EmploymentTypes = []string{"Full-time", "Part-time", "Contract", "Internship", "Freelance"}
	SeniorityLevels = []string{"Junior", "Mid", "Senior", "Principal"}
)

// SalaryInput is the optional pay range submitted with a job.
type SalaryInput struct {
	Min      float64 `json:"min" validate:"gte=0"`
	Max      float64 `json:"max" validate:"gte=0,gtefield=Min"`
	Currency string  `json:"currency" validate:"len=3"`
}

// JobFormData is the payload for creating or updating a job.
type JobFormData struct {
	Title          string       `json:"title" validate:"required,max=200"`
	Location       string       `json:"location" validate:"required,max=200"`
	EmploymentType string       `json:"employmentType" validate:"oneof=Full-time Part-time Contract Internship Freelance"`
	SeniorityLevel string       `json:"seniorityLevel" validate:"oneof=Junior Mid Senior Principal"`
	Salary         *SalaryInput `json:"salary,omitempty"`
	TechStack      []string     `json:"techStack" validate:"dive,required"`
}

// Normalize trims text fields, upper-cases the currency and defaults the
// tech stack to an empty list. It is applied before validation.
func (f *JobFormData) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Location = strings.TrimSpace(f.Location)
	if f.Salary != nil {
		f.Salary.Currency = strings.ToUpper(strings.TrimSpace(f.Salary.Currency))
	}
	stack := make([]string, len(f.TechStack))
	for i, t := range f.TechStack {
		stack[i] = strings.TrimSpace(t)
	}
	f.TechStack = stack
}

// SalaryResponse is a job's pay range as returned to clients.
type SalaryResponse struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

// CompanySummary is the company block embedded in a job response. Listing
// views only carry Name and LogoURL.
type CompanySummary struct {
	Name     string  `json:"name"`
	LogoURL  *string `json:"logoUrl,omitempty"`
	Website  *string `json:"website,omitempty"`
	Size     *string `json:"size,omitempty"`
	Industry *string `json:"industry,omitempty"`
}

// JobResponse is the shaped job returned by every job operation.
// Optional blocks are nil when absent and are dropped from the JSON.
type JobResponse struct {
	Slug           string          `json:"slug"`
	Title          string          `json:"title"`
	Location       string          `json:"location"`
	EmploymentType string          `json:"employmentType"`
	SeniorityLevel string          `json:"seniorityLevel"`
	Salary         *SalaryResponse `json:"salary,omitempty"`
	TechStack      []string        `json:"techStack"`
	Company        *CompanySummary `json:"company,omitempty"`
	PostedAt       *string         `json:"postedAt,omitempty"`
}
