package cms

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/societydesk/societydesk/internal/platform/db"
	"github.com/societydesk/societydesk/internal/platform/httpx"
)

// Repository provides page persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const pageColumns = `id, slug, title, body, published, created_at, updated_at`

func scanPage(row pgx.Row) (*Page, error) {
	var p Page
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Body, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("cms: %w", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("cms: scan: %w", err)
	}
	return &p, nil
}

// Create stores a new page.
func (r *Repository) Create(ctx context.Context, p Page) (*Page, error) {
	const query = `
		INSERT INTO cms_pages (id, slug, title, body, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + pageColumns
	created, err := scanPage(r.pool.QueryRow(ctx, query, p.ID, p.Slug, p.Title, p.Body, p.Published))
	if db.UniqueViolation(err) {
		return nil, fmt.Errorf("cms: slug taken: %w", httpx.ErrDuplicate)
	}
	return created, err
}

// Update rewrites a page's content.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, title, body string, published bool) (*Page, error) {
	const query = `
		UPDATE cms_pages SET title = $2, body = $3, published = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + pageColumns
	return scanPage(r.pool.QueryRow(ctx, query, id, title, body, published))
}

// Delete removes a page.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cms_pages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("cms: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cms: %w", httpx.ErrNotFound)
	}
	return nil
}

// List returns every page for the operator console.
func (r *Repository) List(ctx context.Context) ([]Page, error) {
	const query = `SELECT ` + pageColumns + ` FROM cms_pages ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("cms: list: %w", err)
	}
	defer rows.Close()
	var out []Page
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.ID, &p.Slug, &p.Title, &p.Body, &p.Published, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("cms: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cms: rows: %w", err)
	}
	return out, nil
}

// FindBySlug returns a published page for the public site.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*Page, error) {
	const query = `SELECT ` + pageColumns + ` FROM cms_pages WHERE slug = $1 AND published`
	return scanPage(r.pool.QueryRow(ctx, query, slug))
}
