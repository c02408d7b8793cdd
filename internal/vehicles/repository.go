package vehicles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/societydesk/societydesk/internal/platform/db"
	"github.com/societydesk/societydesk/internal/platform/httpx"
)

// Repository provides vehicle registry persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const vehicleColumns = `id, apartment_id, flat_id, client_id, plate, kind, model, color, created_at`

func scanVehicle(row pgx.Row) (*Vehicle, error) {
	var v Vehicle
	err := row.Scan(&v.ID, &v.ApartmentID, &v.FlatID, &v.ClientID,
		&v.Plate, &v.Kind, &v.Model, &v.Color, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vehicles: %w", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("vehicles: scan: %w", err)
	}
	return &v, nil
}

// Create registers a vehicle. Plates are stored uppercase so gate lookups
// are spelling insensitive.
func (r *Repository) Create(ctx context.Context, v Vehicle) (*Vehicle, error) {
	const query = `
		INSERT INTO vehicles (id, apartment_id, flat_id, client_id, plate, kind, model, color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING ` + vehicleColumns
	v.Plate = normalizePlate(v.Plate)
	created, err := scanVehicle(r.pool.QueryRow(ctx, query,
		v.ID, v.ApartmentID, v.FlatID, v.ClientID, v.Plate, v.Kind, v.Model, v.Color))
	if db.UniqueViolation(err) {
		return nil, fmt.Errorf("vehicles: plate already registered: %w", httpx.ErrDuplicate)
	}
	return created, err
}

// ListForFlat returns a flat's registered vehicles.
func (r *Repository) ListForFlat(ctx context.Context, flatID uuid.UUID) ([]Vehicle, error) {
	const query = `SELECT ` + vehicleColumns + ` FROM vehicles WHERE flat_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, flatID)
	if err != nil {
		return nil, fmt.Errorf("vehicles: list: %w", err)
	}
	defer rows.Close()
	var out []Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.ApartmentID, &v.FlatID, &v.ClientID,
			&v.Plate, &v.Kind, &v.Model, &v.Color, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("vehicles: scan: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vehicles: rows: %w", err)
	}
	return out, nil
}

// FindByPlate resolves a plate inside the guard's apartment.
func (r *Repository) FindByPlate(ctx context.Context, apartmentID uuid.UUID, plate string) (*Vehicle, error) {
	const query = `SELECT ` + vehicleColumns + ` FROM vehicles WHERE apartment_id = $1 AND plate = $2`
	return scanVehicle(r.pool.QueryRow(ctx, query, apartmentID, normalizePlate(plate)))
}

// Delete removes a vehicle owned by the given client.
func (r *Repository) Delete(ctx context.Context, clientID, vehicleID uuid.UUID) error {
	const query = `DELETE FROM vehicles WHERE id = $1 AND client_id = $2`
	tag, err := r.pool.Exec(ctx, query, vehicleID, clientID)
	if err != nil {
		return fmt.Errorf("vehicles: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("vehicles: %w", httpx.ErrNotFound)
	}
	return nil
}

func normalizePlate(plate string) string {
	return strings.ToUpper(strings.ReplaceAll(plate, " ", ""))
}
