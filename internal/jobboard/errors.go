package jobboard

import (
	"errors"
	"strings"

	"github.com/jonathan/job-board/internal/types"
)

// FieldIssue is one violated input rule. Path is empty for the value itself.
type FieldIssue struct {
	Path    string
	Message string
}

func (i FieldIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationError reports every rule an input violated.
type ValidationError struct {
	Prefix string
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return e.Prefix + ": " + strings.Join(parts, ", ")
}

// AuthError indicates the operation needs a caller identity and had none.
type AuthError struct{}

func (e *AuthError) Error() string {
	return "Unauthorized"
}

// PrereqError indicates a record the operation depends on does not exist.
type PrereqError struct {
	Message string
}

func (e *PrereqError) Error() string {
	return e.Message
}

// NotFoundError indicates the record is absent or not owned by the caller.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// ConflictError indicates a slug already belongs to another owner.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// StoreError wraps a datastore failure. Messages holds the store's own
// validation messages when it rejected the write.
type StoreError struct {
	Op       string
	Messages []string
	Fallback string
	Cause    error
}

func (e *StoreError) Error() string {
	if len(e.Messages) > 0 {
		return strings.Join(e.Messages, ", ")
	}
	return e.Fallback
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

var errPrereqCompany = &PrereqError{Message: "Please create a company profile first"}

// Kind names the taxonomy member of err for logs and metrics.
func Kind(err error) string {
	var (
		validation *ValidationError
		auth       *AuthError
		prereq     *PrereqError
		notFound   *NotFoundError
		conflict   *ConflictError
		store      *StoreError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &auth):
		return "auth"
	case errors.As(err, &prereq):
		return "prereq"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &conflict):
		return "conflict"
	case errors.As(err, &store):
		return "store"
	default:
		return "internal"
	}
}

// Envelope converts an operation's outcome into the uniform result.
func Envelope(data any, err error) types.Result {
	if err != nil {
		return types.Result{Success: false, Error: err.Error()}
	}
	return types.Result{Success: true, Data: data}
}

// ListEnvelope is Envelope for listings that also report their size.
func ListEnvelope[T any](data []T, err error) types.Result {
	if err != nil {
		return types.Result{Success: false, Error: err.Error()}
	}
	count := len(data)
	return types.Result{Success: true, Data: data, Count: &count}
}
