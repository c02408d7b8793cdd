package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/societydesk/societydesk/internal/platform/httpx"
)

// Repository provides document metadata persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const documentColumns = `id, apartment_id, uploaded_by, category, title, file_name, content_type, size_bytes, object_key, created_at`

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.ApartmentID, &d.UploadedBy, &d.Category, &d.Title,
		&d.FileName, &d.ContentType, &d.SizeBytes, &d.ObjectKey, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("documents: %w", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("documents: scan: %w", err)
	}
	return &d, nil
}

// Create stores document metadata after the blob landed in the bucket.
func (r *Repository) Create(ctx context.Context, d Document) (*Document, error) {
	const query = `
		INSERT INTO documents (id, apartment_id, uploaded_by, category, title, file_name, content_type, size_bytes, object_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING ` + documentColumns
	return scanDocument(r.pool.QueryRow(ctx, query,
		d.ID, d.ApartmentID, d.UploadedBy, d.Category, d.Title,
		d.FileName, d.ContentType, d.SizeBytes, d.ObjectKey))
}

// Get fetches one document within an apartment.
func (r *Repository) Get(ctx context.Context, apartmentID, id uuid.UUID) (*Document, error) {
	const query = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND apartment_id = $2`
	return scanDocument(r.pool.QueryRow(ctx, query, id, apartmentID))
}

// List returns the apartment's documents, optionally filtered by category.
func (r *Repository) List(ctx context.Context, apartmentID uuid.UUID, category Category, limit, offset int) ([]Document, int, error) {
	query := `SELECT ` + documentColumns + `, COUNT(*) OVER() FROM documents WHERE apartment_id = $1`
	args := []any{apartmentID}
	if category != "" {
		query += ` AND category = $2`
		args = append(args, category)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("documents: list: %w", err)
	}
	defer rows.Close()
	var (
		out   []Document
		total int
	)
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.ApartmentID, &d.UploadedBy, &d.Category, &d.Title,
			&d.FileName, &d.ContentType, &d.SizeBytes, &d.ObjectKey, &d.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("documents: scan: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("documents: rows: %w", err)
	}
	return out, total, nil
}

// Delete removes document metadata and reports the object key to clean up.
func (r *Repository) Delete(ctx context.Context, apartmentID, id uuid.UUID) (string, error) {
	const query = `DELETE FROM documents WHERE id = $1 AND apartment_id = $2 RETURNING object_key`
	var key string
	err := r.pool.QueryRow(ctx, query, id, apartmentID).Scan(&key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("documents: %w", httpx.ErrNotFound)
		}
		return "", fmt.Errorf("documents: delete: %w", err)
	}
	return key, nil
}
