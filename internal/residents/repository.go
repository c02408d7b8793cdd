package residents

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

// Repository provides resident directory persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns active residents of the apartment, newest move-in first.
func (r *Repository) List(ctx context.Context, apartmentID uuid.UUID, limit, offset int) ([]Resident, int, error) {
	const query = `
		SELECT fm.id, fm.client_id, fm.flat_id, f.number, c.name, c.phone,
		       fm.is_owner, fm.created_at, COUNT(*) OVER()
		FROM flat_members fm
		JOIN flats f ON f.id = fm.flat_id
		JOIN clients c ON c.id = fm.client_id
		WHERE f.apartment_id = $1 AND fm.active AND NOT c.archived
		ORDER BY fm.created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, apartmentID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("residents: list: %w", err)
	}
	defer rows.Close()
	var (
		out   []Resident
		total int
	)
	for rows.Next() {
		var res Resident
		if err := rows.Scan(&res.MembershipID, &res.ClientID, &res.FlatID, &res.FlatNumber,
			&res.Name, &res.Phone, &res.IsOwner, &res.MovedInAt, &total); err != nil {
			return nil, 0, fmt.Errorf("residents: scan: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("residents: rows: %w", err)
	}
	return out, total, nil
}

// AddToFlat attaches a client to a flat, creating the client record when the
// phone number is new. The flat must belong to the admin's apartment.
func (r *Repository) AddToFlat(ctx context.Context, apartmentID, flatID uuid.UUID, name, phone string, isOwner bool) (*Resident, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("residents: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var flatNumber string
	err = tx.QueryRow(ctx,
		`SELECT number FROM flats WHERE id = $1 AND apartment_id = $2 AND NOT archived`,
		flatID, apartmentID,
	).Scan(&flatNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("residents: flat: %w", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("residents: flat: %w", err)
	}

	// Find-or-create keyed on the unique phone column, so two concurrent
	// enrolments of the same person converge on one client row.
	var clientID uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO clients (id, name, phone, archived, tokens, created_at)
		 VALUES ($1, $2, $3, FALSE, '{}', NOW())
		 ON CONFLICT (phone) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		uuid.New(), name, phone,
	).Scan(&clientID)
	if err != nil {
		return nil, fmt.Errorf("residents: upsert client: %w", err)
	}

	res := Resident{
		MembershipID: uuid.New(),
		ClientID:     clientID,
		FlatID:       flatID,
		FlatNumber:   flatNumber,
		Name:         name,
		Phone:        phone,
		IsOwner:      isOwner,
	}
	// A partial unique index on (client_id, flat_id) WHERE active guards
	// duplicate memberships; the constraint decides, not a pre-check.
	err = tx.QueryRow(ctx,
		`INSERT INTO flat_members (id, client_id, flat_id, is_owner, active, created_at)
		 VALUES ($1, $2, $3, $4, TRUE, NOW())
		 RETURNING created_at`,
		res.MembershipID, clientID, flatID, isOwner,
	).Scan(&res.MovedInAt)
	if err != nil {
		if db.UniqueViolation(err) {
			return nil, fmt.Errorf("residents: already a member: %w", httpx.ErrDuplicate)
		}
		return nil, fmt.Errorf("residents: add membership: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("residents: commit: %w", err)
	}
	return &res, nil
}

// Remove ends a membership. The move-out takes effect on the client's next
// token verification, when the stale flat context is dropped.
func (r *Repository) Remove(ctx context.Context, apartmentID, membershipID uuid.UUID) error {
	const query = `
		UPDATE flat_members fm SET active = FALSE
		FROM flats f
		WHERE fm.id = $1 AND fm.flat_id = f.id AND f.apartment_id = $2 AND fm.active`
	tag, err := r.pool.Exec(ctx, query, membershipID, apartmentID)
	if err != nil {
		return fmt.Errorf("residents: remove: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("residents: membership: %w", httpx.ErrNotFound)
	}
	return nil
}
