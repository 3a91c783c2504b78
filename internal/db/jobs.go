package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const jobColumns = `id, user_id, title, slug, location, employment_type, seniority_level,
	salary, tech_stack, created_at, updated_at`

func scanJob(row pgx.Row) (*Job, error) {
	var j Job
	var salaryJSON, stackJSON []byte
	if err := row.Scan(
		&j.ID, &j.UserID, &j.Title, &j.Slug, &j.Location, &j.EmploymentType, &j.SeniorityLevel,
		&salaryJSON, &stackJSON, &j.CreatedAt, &j.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(salaryJSON) > 0 && string(salaryJSON) != "null" {
		var s Salary
		if err := json.Unmarshal(salaryJSON, &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal salary: %w", err)
		}
		j.Salary = &s
	}
	j.TechStack = []string{}
	if len(stackJSON) > 0 {
		if err := json.Unmarshal(stackJSON, &j.TechStack); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tech stack: %w", err)
		}
	}
	return &j, nil
}

func collectJobs(rows pgx.Rows) ([]Job, error) {
	defer rows.Close()
	jobs := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// encodeFields marshals the JSONB columns of f. A nil salary stays SQL NULL.
func encodeFields(f JobFields) (salary, stack []byte, err error) {
	if f.Salary != nil {
		if salary, err = json.Marshal(f.Salary); err != nil {
			return nil, nil, fmt.Errorf("failed to marshal salary: %w", err)
		}
	}
	techStack := f.TechStack
	if techStack == nil {
		techStack = []string{}
	}
	if stack, err = json.Marshal(techStack); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal tech stack: %w", err)
	}
	return salary, stack, nil
}

// JobSlugExists reports whether any job uses slug.
func (db *DB) JobSlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM jobs WHERE slug = $1)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check job slug: %w", err)
	}
	return exists, nil
}

// CreateJob inserts a job owned by userID under slug.
// Returns ErrDuplicateSlug if another job claimed the slug first.
func (db *DB) CreateJob(ctx context.Context, userID uuid.UUID, slug string, f JobFields) (*Job, error) {
	salary, stack, err := encodeFields(f)
	if err != nil {
		return nil, err
	}

	j, err := scanJob(db.pool.QueryRow(ctx,
		`INSERT INTO jobs (user_id, title, slug, location, employment_type, seniority_level, salary, tech_stack)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+jobColumns,
		userID, f.Title, slug, f.Location, f.EmploymentType, f.SeniorityLevel, salary, stack,
	))
	if err != nil {
		if terr := translate(err); terr != nil {
			return nil, terr
		}
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return j, nil
}

// GetJobBySlug retrieves a job by slug. Returns nil, nil if not found.
func (db *DB) GetJobBySlug(ctx context.Context, slug string) (*Job, error) {
	j, err := scanJob(db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE slug = $1`, slug,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// GetJobBySlugAndUser retrieves a job only if userID owns it.
// Returns nil, nil if not found.
func (db *DB) GetJobBySlugAndUser(ctx context.Context, slug string, userID uuid.UUID) (*Job, error) {
	j, err := scanJob(db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE slug = $1 AND user_id = $2`, slug, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// UpdateJob replaces the mutable fields of the job identified by slug and
// owner. Slug, owner and created_at are left untouched. Returns nil, nil if
// no such job exists for userID.
func (db *DB) UpdateJob(ctx context.Context, slug string, userID uuid.UUID, f JobFields) (*Job, error) {
	salary, stack, err := encodeFields(f)
	if err != nil {
		return nil, err
	}

	j, err := scanJob(db.pool.QueryRow(ctx,
		`UPDATE jobs
		 SET title = $3, location = $4, employment_type = $5, seniority_level = $6,
		     salary = $7, tech_stack = $8, updated_at = NOW()
		 WHERE slug = $1 AND user_id = $2
		 RETURNING `+jobColumns,
		slug, userID, f.Title, f.Location, f.EmploymentType, f.SeniorityLevel, salary, stack,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if terr := translate(err); terr != nil {
			return nil, terr
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return j, nil
}

// ListJobsByUser returns every job owned by userID, newest first.
func (db *DB) ListJobsByUser(ctx context.Context, userID uuid.UUID) ([]Job, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE user_id = $1 ORDER BY created_at DESC, id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	jobs, err := collectJobs(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan jobs: %w", err)
	}
	return jobs, nil
}

// ListRecentJobs returns jobs newest first, filtered by opts.
func (db *DB) ListRecentJobs(ctx context.Context, opts ListJobsOptions) ([]Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE ($1::text = '' OR slug <> $1::text)`
	args := []any{opts.ExcludeSlug}
	if opts.UserID != nil {
		args = append(args, *opts.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	query += ` ORDER BY created_at DESC, id`
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent jobs: %w", err)
	}
	jobs, err := collectJobs(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan jobs: %w", err)
	}
	return jobs, nil
}
