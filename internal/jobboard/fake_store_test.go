package jobboard

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-board/internal/db"
	"github.com/jonathan/job-board/internal/types"
)

// memStore is an in-memory Store with the same unique constraints as the
// SQL schema: job slug, company slug and one company per owner.
type memStore struct {
	mu        sync.Mutex
	jobs      []*db.Job
	companies map[uuid.UUID]*db.Company
	clock     time.Time

	writes int
	err    error // returned by every call when set

	// beforeCreate runs inside CreateJob before the slug check.
	beforeCreate func(slug string)
}

func newMemStore() *memStore {
	return &memStore{
		companies: make(map[uuid.UUID]*db.Company),
		clock:     time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so ordering is deterministic.
func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func cloneJob(j *db.Job) *db.Job {
	c := *j
	c.TechStack = append([]string{}, j.TechStack...)
	if j.Salary != nil {
		s := *j.Salary
		c.Salary = &s
	}
	return &c
}

func (m *memStore) JobSlugExists(_ context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for _, j := range m.jobs {
		if j.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateJob(_ context.Context, userID uuid.UUID, slug string, f db.JobFields) (*db.Job, error) {
	if m.beforeCreate != nil {
		m.beforeCreate(slug)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, j := range m.jobs {
		if j.Slug == slug {
			return nil, db.ErrDuplicateSlug
		}
	}
	now := m.tick()
	job := &db.Job{
		ID:             uuid.New(),
		UserID:         userID,
		Title:          f.Title,
		Slug:           slug,
		Location:       f.Location,
		EmploymentType: f.EmploymentType,
		SeniorityLevel: f.SeniorityLevel,
		Salary:         f.Salary,
		TechStack:      append([]string{}, f.TechStack...),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	m.jobs = append(m.jobs, job)
	m.writes++
	return cloneJob(job), nil
}

func (m *memStore) GetJobBySlug(_ context.Context, slug string) (*db.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, j := range m.jobs {
		if j.Slug == slug {
			return cloneJob(j), nil
		}
	}
	return nil, nil
}

func (m *memStore) GetJobBySlugAndUser(_ context.Context, slug string, userID uuid.UUID) (*db.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, j := range m.jobs {
		if j.Slug == slug && j.UserID == userID {
			return cloneJob(j), nil
		}
	}
	return nil, nil
}

func (m *memStore) UpdateJob(_ context.Context, slug string, userID uuid.UUID, f db.JobFields) (*db.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, j := range m.jobs {
		if j.Slug == slug && j.UserID == userID {
			j.Title = f.Title
			j.Location = f.Location
			j.EmploymentType = f.EmploymentType
			j.SeniorityLevel = f.SeniorityLevel
			j.Salary = f.Salary
			j.TechStack = append([]string{}, f.TechStack...)
			j.UpdatedAt = m.tick()
			m.writes++
			return cloneJob(j), nil
		}
	}
	return nil, nil
}

func (m *memStore) sortedJobs(keep func(*db.Job) bool) []db.Job {
	out := []db.Job{}
	for _, j := range m.jobs {
		if keep(j) {
			out = append(out, *cloneJob(j))
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out
}

func (m *memStore) ListJobsByUser(_ context.Context, userID uuid.UUID) ([]db.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.sortedJobs(func(j *db.Job) bool { return j.UserID == userID }), nil
}

func (m *memStore) ListRecentJobs(_ context.Context, opts db.ListJobsOptions) ([]db.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	jobs := m.sortedJobs(func(j *db.Job) bool {
		if opts.ExcludeSlug != "" && j.Slug == opts.ExcludeSlug {
			return false
		}
		return opts.UserID == nil || j.UserID == *opts.UserID
	})
	if opts.Limit > 0 && len(jobs) > opts.Limit {
		jobs = jobs[:opts.Limit]
	}
	return jobs, nil
}

func (m *memStore) GetCompanyByUserID(_ context.Context, userID uuid.UUID) (*db.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if c, ok := m.companies[userID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) GetCompanyBySlug(_ context.Context, slug string) (*db.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.companies {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) CompanySlugTakenByOther(_ context.Context, slug string, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for owner, c := range m.companies {
		if c.Slug == slug && owner != userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) UpsertCompany(_ context.Context, userID uuid.UUID, f db.CompanyFields) (*db.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for owner, c := range m.companies {
		if c.Slug == f.Slug && owner != userID {
			return nil, db.ErrDuplicateSlug
		}
	}
	now := m.tick()
	c, ok := m.companies[userID]
	if !ok {
		c = &db.Company{ID: uuid.New(), UserID: userID, CreatedAt: now}
		m.companies[userID] = c
	}
	c.Name, c.Slug = f.Name, f.Slug
	c.LogoURL, c.Industry, c.Size = f.LogoURL, f.Industry, f.Size
	c.Location, c.Website, c.Description = f.Location, f.Website, f.Description
	c.UpdatedAt = now
	m.writes++
	cp := *c
	return &cp, nil
}

func (m *memStore) ListCompaniesByUserIDs(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID]db.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[uuid.UUID]db.Company)
	for _, id := range userIDs {
		if c, ok := m.companies[id]; ok {
			out[id] = *c
		}
	}
	return out, nil
}

func (m *memStore) ListCompanies(_ context.Context, limit, offset int) ([]db.CompanyCard, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	cards := []db.CompanyCard{}
	for owner, c := range m.companies {
		open := 0
		for _, j := range m.jobs {
			if j.UserID == owner {
				open++
			}
		}
		cards = append(cards, db.CompanyCard{Company: *c, OpenRoles: open})
	}
	sort.Slice(cards, func(a, b int) bool { return cards[a].Name < cards[b].Name })
	total := len(cards)
	if offset >= len(cards) {
		return []db.CompanyCard{}, total, nil
	}
	cards = cards[offset:]
	if len(cards) > limit {
		cards = cards[:limit]
	}
	return cards, total, nil
}

// memCache is an in-memory ListingCache that counts invalidations.
type memCache struct {
	mu          sync.Mutex
	entries     map[string][]types.JobResponse
	hits        int
	invalidated int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]types.JobResponse)}
}

func (c *memCache) Get(_ context.Context, key string) ([]types.JobResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	jobs, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return jobs, ok
}

func (c *memCache) Set(_ context.Context, key string, jobs []types.JobResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = jobs
}

func (c *memCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]types.JobResponse)
	c.invalidated++
}
