package db

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that may own a company and its job listings.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize to JSON
	PasswordSet  bool      `json:"password_set"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Company is the single employer profile owned by one account.
type Company struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	LogoURL     *string   `json:"logo_url,omitempty"`
	Industry    *string   `json:"industry,omitempty"`
	Size        *string   `json:"size,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Website     *string   `json:"website,omitempty"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CompanyCard is a company row with its number of open roles, used by the
// public company directory.
type CompanyCard struct {
	Company
	OpenRoles int `json:"open_roles"`
}

// Salary is an optional pay range stored as JSONB on a job.
type Salary struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

// Job is one posting. Slug and UserID never change after creation.
type Job struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	Title          string    `json:"title"`
	Slug           string    `json:"slug"`
	Location       string    `json:"location"`
	EmploymentType string    `json:"employment_type"`
	SeniorityLevel string    `json:"seniority_level"`
	Salary         *Salary   `json:"salary,omitempty"`
	TechStack      []string  `json:"tech_stack"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// JobFields are the mutable attributes of a job.
type JobFields struct {
	Title          string
	Location       string
	EmploymentType string
	SeniorityLevel string
	Salary         *Salary
	TechStack      []string
}

// ListJobsOptions filters the recent-jobs query.
type ListJobsOptions struct {
	ExcludeSlug string     // Skip the job with this slug
	UserID      *uuid.UUID // Only jobs owned by this account
	Limit       int        // Zero means no limit
}
