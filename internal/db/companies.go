package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const companyColumns = `id, user_id, name, slug, logo_url, industry, size, location, website,
	description, created_at, updated_at`

func scanCompany(row pgx.Row, extra ...any) (*Company, error) {
	var c Company
	dest := []any{
		&c.ID, &c.UserID, &c.Name, &c.Slug, &c.LogoURL, &c.Industry, &c.Size, &c.Location,
		&c.Website, &c.Description, &c.CreatedAt, &c.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &c, nil
}

// CompanyFields are the attributes written by UpsertCompany.
type CompanyFields struct {
	Name        string
	Slug        string
	LogoURL     *string
	Industry    *string
	Size        *string
	Location    *string
	Website     *string
	Description *string
}

// GetCompanyByUserID retrieves the company owned by userID.
// Returns nil, nil if the account has no company yet.
func (db *DB) GetCompanyByUserID(ctx context.Context, userID uuid.UUID) (*Company, error) {
	c, err := scanCompany(db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE user_id = $1`, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return c, nil
}

// GetCompanyBySlug retrieves a company by slug. Returns nil, nil if not found.
func (db *DB) GetCompanyBySlug(ctx context.Context, slug string) (*Company, error) {
	c, err := scanCompany(db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE slug = $1`, slug,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company by slug: %w", err)
	}
	return c, nil
}

// CompanySlugTakenByOther reports whether a company not owned by userID
// uses slug.
func (db *DB) CompanySlugTakenByOther(ctx context.Context, slug string, userID uuid.UUID) (bool, error) {
	var taken bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM companies WHERE slug = $1 AND user_id <> $2)`, slug, userID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check company slug: %w", err)
	}
	return taken, nil
}

// UpsertCompany creates the company for userID or overwrites every field of
// the existing one. Returns ErrDuplicateSlug if another company owns the slug.
func (db *DB) UpsertCompany(ctx context.Context, userID uuid.UUID, f CompanyFields) (*Company, error) {
	c, err := scanCompany(db.pool.QueryRow(ctx,
		`INSERT INTO companies (user_id, name, slug, logo_url, industry, size, location, website, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id) DO UPDATE SET
		     name = EXCLUDED.name,
		     slug = EXCLUDED.slug,
		     logo_url = EXCLUDED.logo_url,
		     industry = EXCLUDED.industry,
		     size = EXCLUDED.size,
		     location = EXCLUDED.location,
		     website = EXCLUDED.website,
		     description = EXCLUDED.description,
		     updated_at = NOW()
		 RETURNING `+companyColumns,
		userID, f.Name, f.Slug, f.LogoURL, f.Industry, f.Size, f.Location, f.Website, f.Description,
	))
	if err != nil {
		if terr := translate(err); terr != nil {
			return nil, terr
		}
		return nil, fmt.Errorf("failed to upsert company: %w", err)
	}
	return c, nil
}

// ListCompaniesByUserIDs returns the companies owned by any of userIDs,
// keyed by owner.
func (db *DB) ListCompaniesByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]Company, error) {
	out := make(map[uuid.UUID]Company, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE user_id = ANY($1)`, userIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		out[c.UserID] = *c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan companies: %w", err)
	}
	return out, nil
}

// ListCompanies returns a page of companies ordered by name together with
// the total number of companies.
func (db *DB) ListCompanies(ctx context.Context, limit, offset int) ([]CompanyCard, int, error) {
	var total int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM companies`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count companies: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+companyColumns+`,
		        (SELECT COUNT(*) FROM jobs j WHERE j.user_id = companies.user_id) AS open_roles
		 FROM companies
		 ORDER BY name, id
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	cards := []CompanyCard{}
	for rows.Next() {
		var openRoles int
		c, err := scanCompany(rows, &openRoles)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan company: %w", err)
		}
		cards = append(cards, CompanyCard{Company: *c, OpenRoles: openRoles})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to scan companies: %w", err)
	}
	return cards, total, nil
}
