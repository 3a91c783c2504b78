// Package jobboard implements job and company CRUD for the job board:
// input validation, ownership checks, slug assignment and response shaping.
package jobboard

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/job-board/internal/db"
	"github.com/jonathan/job-board/internal/metrics"
)

// Caller identifies the account an operation runs on behalf of. A nil
// *Caller means the request is anonymous.
type Caller struct {
	UserID uuid.UUID
}

// Limits caps listing sizes.
type Limits struct {
	Home           int
	SimilarDefault int
	SimilarMax     int
}

// DefaultLimits returns the listing caps used when none are configured.
func DefaultLimits() Limits {
	return Limits{Home: 10, SimilarDefault: 5, SimilarMax: 50}
}

// maxSlugAttempts bounds how often createJob re-resolves a slug after losing
// a race for it.
const maxSlugAttempts = 5

// Service orchestrates job and company operations over a Store.
type Service struct {
	store  Store
	cache  ListingCache
	log    *zap.SugaredLogger
	now    func() time.Time
	limits Limits
}

// Option configures a Service.
type Option func(*Service)

// WithCache sets the public listing cache.
func WithCache(c ListingCache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithClock sets the time source used for postedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLimits sets the listing caps. Zero fields keep their defaults.
func WithLimits(l Limits) Option {
	return func(s *Service) {
		if l.Home > 0 {
			s.limits.Home = l.Home
		}
		if l.SimilarDefault > 0 {
			s.limits.SimilarDefault = l.SimilarDefault
		}
		if l.SimilarMax > 0 {
			s.limits.SimilarMax = l.SimilarMax
		}
	}
}

// New creates a Service. A nil logger discards output.
func New(store Store, log *zap.SugaredLogger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Service{
		store:  store,
		cache:  noCache{},
		log:    log,
		now:    time.Now,
		limits: DefaultLimits(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// finish logs a failed operation and records its outcome.
func (s *Service) finish(op string, start time.Time, err error, keysAndValues ...any) {
	kind := Kind(err)
	metrics.ObserveOperation(op, kind, start)
	if err == nil {
		return
	}
	fields := append([]any{"op", op, "kind", kind, "err", err}, keysAndValues...)
	var store *StoreError
	if errors.As(err, &store) {
		s.log.Errorw("operation failed", fields...)
		return
	}
	s.log.Infow("operation rejected", fields...)
}

func requireCaller(caller *Caller) error {
	if caller == nil || caller.UserID == uuid.Nil {
		return &AuthError{}
	}
	return nil
}

// storeErr wraps a datastore failure for op. Constraint rejections surface
// their message; anything else reports fallback.
func storeErr(op, fallback string, err error) error {
	se := &StoreError{Op: op, Fallback: fallback, Cause: err}
	var ce *db.ConstraintError
	if errors.As(err, &ce) {
		se.Messages = []string{ce.Message}
	}
	return se
}

// companyMap resolves the owning companies of jobs in one query.
func (s *Service) companyMap(ctx context.Context, jobs []db.Job) (map[uuid.UUID]db.Company, error) {
	seen := make(map[uuid.UUID]bool, len(jobs))
	ids := make([]uuid.UUID, 0, len(jobs))
	for _, j := range jobs {
		if !seen[j.UserID] {
			seen[j.UserID] = true
			ids = append(ids, j.UserID)
		}
	}
	return s.store.ListCompaniesByUserIDs(ctx, ids)
}
