package jobboard

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/job-board/internal/db"
	"github.com/jonathan/job-board/internal/types"
)

// Store is the datastore the service reads and writes. *db.DB implements it.
type Store interface {
	JobSlugExists(ctx context.Context, slug string) (bool, error)
	CreateJob(ctx context.Context, userID uuid.UUID, slug string, f db.JobFields) (*db.Job, error)
	GetJobBySlug(ctx context.Context, slug string) (*db.Job, error)
	GetJobBySlugAndUser(ctx context.Context, slug string, userID uuid.UUID) (*db.Job, error)
	UpdateJob(ctx context.Context, slug string, userID uuid.UUID, f db.JobFields) (*db.Job, error)
	ListJobsByUser(ctx context.Context, userID uuid.UUID) ([]db.Job, error)
	ListRecentJobs(ctx context.Context, opts db.ListJobsOptions) ([]db.Job, error)

	GetCompanyByUserID(ctx context.Context, userID uuid.UUID) (*db.Company, error)
	GetCompanyBySlug(ctx context.Context, slug string) (*db.Company, error)
	CompanySlugTakenByOther(ctx context.Context, slug string, userID uuid.UUID) (bool, error)
	UpsertCompany(ctx context.Context, userID uuid.UUID, f db.CompanyFields) (*db.Company, error)
	ListCompaniesByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]db.Company, error)
	ListCompanies(ctx context.Context, limit, offset int) ([]db.CompanyCard, int, error)
}

var _ Store = (*db.DB)(nil)

// ListingCache holds shaped public listings for a short time. Lookups that
// fail are treated as misses; writes and invalidations are best effort.
type ListingCache interface {
	Get(ctx context.Context, key string) ([]types.JobResponse, bool)
	Set(ctx context.Context, key string, jobs []types.JobResponse)
	Invalidate(ctx context.Context)
}

type noCache struct{}

func (noCache) Get(context.Context, string) ([]types.JobResponse, bool) { return nil, false }
func (noCache) Set(context.Context, string, []types.JobResponse) {}
func (noCache) Invalidate(context.Context) {}
