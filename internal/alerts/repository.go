package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/societydesk/societydesk/internal/platform/httpx"
)

// Repository provides alert persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const alertColumns = `id, apartment_id, flat_id, client_id, category, message, status, raised_at, resolved_at, resolved_by`

// Create stores a freshly raised alert.
func (r *Repository) Create(ctx context.Context, a Alert) (*Alert, error) {
	const query = `
		INSERT INTO alerts (id, apartment_id, flat_id, client_id, category, message, status, raised_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING ` + alertColumns
	row := r.pool.QueryRow(ctx, query,
		a.ID, a.ApartmentID, a.FlatID, a.ClientID, a.Category, a.Message, a.Status)
	return scanAlert(row)
}

// Get fetches one alert.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Alert, error) {
	const query = `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`
	return scanAlert(r.pool.QueryRow(ctx, query, id))
}

// Resolve closes an open alert in the guard's apartment.
func (r *Repository) Resolve(ctx context.Context, apartmentID, alertID, guardID uuid.UUID, at time.Time) error {
	const query = `
		UPDATE alerts SET status = $4, resolved_at = $5, resolved_by = $3
		WHERE id = $1 AND apartment_id = $2 AND status = $6`
	tag, err := r.pool.Exec(ctx, query, alertID, apartmentID, guardID, StatusResolved, at, StatusOpen)
	if err != nil {
		return fmt.Errorf("alerts: resolve: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alerts: open alert: %w", httpx.ErrNotFound)
	}
	return nil
}

// List returns the apartment's alerts, newest first.
func (r *Repository) List(ctx context.Context, apartmentID uuid.UUID, openOnly bool, limit, offset int) ([]Alert, int, error) {
	query := `SELECT ` + alertColumns + `, COUNT(*) OVER() FROM alerts WHERE apartment_id = $1`
	if openOnly {
		query += ` AND status = 'open'`
	}
	query += ` ORDER BY raised_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, apartmentID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("alerts: list: %w", err)
	}
	defer rows.Close()
	var (
		out   []Alert
		total int
	)
	for rows.Next() {
		var a Alert
		if err := rows.Scan(&a.ID, &a.ApartmentID, &a.FlatID, &a.ClientID, &a.Category,
			&a.Message, &a.Status, &a.RaisedAt, &a.ResolvedAt, &a.ResolvedBy, &total); err != nil {
			return nil, 0, fmt.Errorf("alerts: scan: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("alerts: rows: %w", err)
	}
	return out, total, nil
}

func scanAlert(row pgx.Row) (*Alert, error) {
	var a Alert
	err := row.Scan(&a.ID, &a.ApartmentID, &a.FlatID, &a.ClientID, &a.Category,
		&a.Message, &a.Status, &a.RaisedAt, &a.ResolvedAt, &a.ResolvedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("alerts: %w", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("alerts: scan: %w", err)
	}
	return &a, nil
}
