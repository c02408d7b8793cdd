package guests

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

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const guestColumns = `id, apartment_id, flat_id, client_id, name, phone, pass_code,
	status, expected_at, checked_in_at, checked_out_at`

func scanGuest(row pgx.Row) (*Guest, error) {
	var g Guest
	err := row.Scan(&g.ID, &g.ApartmentID, &g.FlatID, &g.ClientID, &g.Name, &g.Phone,
		&g.PassCode, &g.Status, &g.ExpectedAt, &g.CheckedInAt, &g.CheckedOut)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("guests: %w", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("guests: scan: %w", err)
	}
	return &g, nil
}

// Create inserts a pre-approved guest.
func (r *Repository) Create(ctx context.Context, g Guest) (*Guest, error) {
	query := fmt.Sprintf(`
		INSERT INTO guests (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULL, NULL)
		RETURNING %s`, guestColumns, guestColumns)
	return scanGuest(r.pool.QueryRow(ctx, query,
		g.ID, g.ApartmentID, g.FlatID, g.ClientID, g.Name, g.Phone, g.PassCode, g.Status, g.ExpectedAt))
}

// FindByPass locates an expected guest by pass code within one apartment.
func (r *Repository) FindByPass(ctx context.Context, apartmentID uuid.UUID, passCode string) (*Guest, error) {
	query := fmt.Sprintf(`SELECT %s FROM guests WHERE apartment_id = $1 AND pass_code = $2`, guestColumns)
	return scanGuest(r.pool.QueryRow(ctx, query, apartmentID, passCode))
}

// Get fetches one guest by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Guest, error) {
	query := fmt.Sprintf(`SELECT %s FROM guests WHERE id = $1`, guestColumns)
	return scanGuest(r.pool.QueryRow(ctx, query, id))
}

// SetStatus transitions a guest and stamps the matching timestamp.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status Status, at time.Time) error {
	var column string
	switch status {
	case StatusCheckedIn:
		column = "checked_in_at"
	case StatusCheckedOut:
		column = "checked_out_at"
	default:
		return fmt.Errorf("guests: set status %q: %w", status, httpx.ErrValidation)
	}
	query := fmt.Sprintf(`UPDATE guests SET status = $2, %s = $3 WHERE id = $1`, column)
	tag, err := r.pool.Exec(ctx, query, id, status, at)
	if err != nil {
		return fmt.Errorf("guests: set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("guests: set status: %w", httpx.ErrNotFound)
	}
	return nil
}

// ListForFlat returns a flat's guests, newest first.
func (r *Repository) ListForFlat(ctx context.Context, flatID uuid.UUID, limit, offset int) ([]Guest, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER()
		FROM guests
		WHERE flat_id = $1
		ORDER BY expected_at DESC
		LIMIT $2 OFFSET $3`, guestColumns)
	return r.list(ctx, query, flatID, limit, offset)
}

// ListExpected returns an apartment's expected guests for the gate desk.
func (r *Repository) ListExpected(ctx context.Context, apartmentID uuid.UUID, limit, offset int) ([]Guest, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER()
		FROM guests
		WHERE apartment_id = $1 AND status = 'expected'
		ORDER BY expected_at
		LIMIT $2 OFFSET $3`, guestColumns)
	return r.list(ctx, query, apartmentID, limit, offset)
}

func (r *Repository) list(ctx context.Context, query string, scope uuid.UUID, limit, offset int) ([]Guest, int, error) {
	rows, err := r.pool.Query(ctx, query, scope, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("guests: list: %w", err)
	}
	defer rows.Close()
	var (
		guests []Guest
		total  int
	)
	for rows.Next() {
		var g Guest
		err := rows.Scan(&g.ID, &g.ApartmentID, &g.FlatID, &g.ClientID, &g.Name, &g.Phone,
			&g.PassCode, &g.Status, &g.ExpectedAt, &g.CheckedInAt, &g.CheckedOut, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("guests: list scan: %w", err)
		}
		guests = append(guests, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("guests: list rows: %w", err)
	}
	return guests, total, nil
}
