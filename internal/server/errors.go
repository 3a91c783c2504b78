// Package server provides the HTTP REST API for the job board.
package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/job-board/internal/jobboard"
)

// ErrEmailTaken reports a sign-up with an email that already has an account.
type ErrEmailTaken struct {
	Email string
}

func (e *ErrEmailTaken) Error() string {
	return "An account with this email already exists"
}

// ErrInvalidCredentials is returned for every failed sign-in, whatever the cause.
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "Invalid email or password"
}

// ErrAccountNotFound means a valid token names an account that no longer exists.
type ErrAccountNotFound struct {
	UserID uuid.UUID
}

func (e *ErrAccountNotFound) Error() string {
	return "Account not found"
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// A nil error maps to 200.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch err.(type) {
	case *ErrEmailTaken:
		return http.StatusConflict
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrAccountNotFound:
		return http.StatusNotFound
	}

	var (
		validation *jobboard.ValidationError
		auth       *jobboard.AuthError
		prereq     *jobboard.PrereqError
		notFound   *jobboard.NotFoundError
		conflict   *jobboard.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &auth):
		return http.StatusUnauthorized
	case errors.As(err, &prereq), errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &notFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
