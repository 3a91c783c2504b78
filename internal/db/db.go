// Package db provides PostgreSQL storage for accounts, companies and job listings.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Postgres SQLSTATE codes the store translates.
const (
	codeUniqueViolation = "23505"
	codeCheckViolation  = "23514"
)

// Constraint names from migrations/001_init.sql.
const (
	constraintUserEmail      = "users_email_key"
	constraintCompanySlug    = "companies_slug_key"
	constraintJobSlug        = "jobs_slug_key"
	constraintWebsite        = "companies_website_check"
	constraintSeniority      = "jobs_seniority_level_check"
	constraintSalaryRange    = "jobs_salary_range_check"
	constraintEmploymentType = "jobs_employment_type_check"
)

// ErrDuplicateSlug is returned when a write collides with an existing slug.
var ErrDuplicateSlug = errors.New("slug already exists")

// ErrDuplicateEmail is returned when an account with the email already exists.
var ErrDuplicateEmail = errors.New("email already registered")

// ConstraintError reports a row rejected by a CHECK constraint.
type ConstraintError struct {
	Constraint string
	Message    string
}

func (e *ConstraintError) Error() string {
	return e.Message
}

var checkMessages = map[string]string{
	constraintWebsite:        "Website must be a valid URL",
	constraintSeniority:      "Invalid seniority level",
	constraintSalaryRange:    "Maximum salary must be greater than or equal to minimum salary",
	constraintEmploymentType: "Invalid employment type",
}

// translate maps driver errors for known constraints to package errors.
// It returns nil for anything else.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintCompanySlug, constraintJobSlug:
			return ErrDuplicateSlug
		case constraintUserEmail:
			return ErrDuplicateEmail
		}
	case codeCheckViolation:
		msg, ok := checkMessages[pgErr.ConstraintName]
		if !ok {
			msg = pgErr.Message
		}
		return &ConstraintError{Constraint: pgErr.ConstraintName, Message: msg}
	}
	return nil
}
