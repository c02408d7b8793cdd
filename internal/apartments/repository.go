package apartments

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

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListApartments returns apartments, optionally including archived ones.
func (r *Repository) ListApartments(ctx context.Context, includeArchived bool, limit, offset int) ([]Apartment, int, error) {
	const query = `
		SELECT id, name, address, city, archived, created_at, COUNT(*) OVER()
		FROM apartments
		WHERE ($1 OR NOT archived)
		ORDER BY name
		LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, includeArchived, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("apartments: list: %w", err)
	}
	defer rows.Close()

	var (
		apartments []Apartment
		total      int
	)
	for rows.Next() {
		var a Apartment
		if err := rows.Scan(&a.ID, &a.Name, &a.Address, &a.City, &a.Archived, &a.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("apartments: list scan: %w", err)
		}
		apartments = append(apartments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("apartments: list rows: %w", err)
	}
	return apartments, total, nil
}

// GetApartment fetches one apartment by id.
func (r *Repository) GetApartment(ctx context.Context, id uuid.UUID) (*Apartment, error) {
	const query = `SELECT id, name, address, city, archived, created_at FROM apartments WHERE id = $1`
	var a Apartment
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.Address, &a.City, &a.Archived, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("apartments: get: %w", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("apartments: get: %w", err)
	}
	return &a, nil
}

// CreateApartment inserts a new apartment.
func (r *Repository) CreateApartment(ctx context.Context, name, address, city string) (*Apartment, error) {
	const query = `
		INSERT INTO apartments (id, name, address, city, archived, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
		RETURNING id, name, address, city, archived, created_at`
	var a Apartment
	err := r.pool.QueryRow(ctx, query, uuid.New(), name, address, city).
		Scan(&a.ID, &a.Name, &a.Address, &a.City, &a.Archived, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("apartments: create: %w", err)
	}
	return &a, nil
}

// ArchiveApartment soft-deletes an apartment.
func (r *Repository) ArchiveApartment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE apartments SET archived = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("apartments: archive: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("apartments: archive: %w", httpx.ErrNotFound)
	}
	return nil
}

// ListFlats returns all flats of an apartment.
func (r *Repository) ListFlats(ctx context.Context, apartmentID uuid.UUID) ([]Flat, error) {
	const query = `
		SELECT id, apartment_id, block, number, floor, archived
		FROM flats
		WHERE apartment_id = $1 AND NOT archived
		ORDER BY block, number`
	rows, err := r.pool.Query(ctx, query, apartmentID)
	if err != nil {
		return nil, fmt.Errorf("apartments: list flats: %w", err)
	}
	defer rows.Close()
	var flats []Flat
	for rows.Next() {
		var f Flat
		if err := rows.Scan(&f.ID, &f.ApartmentID, &f.Block, &f.Number, &f.Floor, &f.Archived); err != nil {
			return nil, fmt.Errorf("apartments: list flats scan: %w", err)
		}
		flats = append(flats, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("apartments: list flats rows: %w", err)
	}
	return flats, nil
}

// CreateFlat inserts a flat in an apartment.
func (r *Repository) CreateFlat(ctx context.Context, apartmentID uuid.UUID, block, number string, floor int) (*Flat, error) {
	const query = `
		INSERT INTO flats (id, apartment_id, block, number, floor, archived)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING id, apartment_id, block, number, floor, archived`
	var f Flat
	err := r.pool.QueryRow(ctx, query, uuid.New(), apartmentID, block, number, floor).
		Scan(&f.ID, &f.ApartmentID, &f.Block, &f.Number, &f.Floor, &f.Archived)
	if err != nil {
		// Unique on (apartment_id, block, number).
		if db.UniqueViolation(err) {
			return nil, fmt.Errorf("apartments: flat exists: %w", httpx.ErrDuplicate)
		}
		return nil, fmt.Errorf("apartments: create flat: %w", err)
	}
	return &f, nil
}

// ArchiveFlat soft-deletes a flat.
func (r *Repository) ArchiveFlat(ctx context.Context, apartmentID, flatID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE flats SET archived = TRUE WHERE id = $1 AND apartment_id = $2`, flatID, apartmentID)
	if err != nil {
		return fmt.Errorf("apartments: archive flat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("apartments: archive flat: %w", httpx.ErrNotFound)
	}
	return nil
}
