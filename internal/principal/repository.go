package principal

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/societydesk/societydesk/internal/platform/httpx"
)

// Repository provides PostgreSQL backed principal lookups.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

// FindAdmin loads an admin with the archived state of its role.
func (r *Repository) FindAdmin(ctx context.Context, id uuid.UUID) (*Admin, error) {
	const query = `
		SELECT a.id, a.apartment_id, a.name, a.email, a.archived,
		       a.role_id, COALESCE(r.archived, FALSE), COALESCE(a.blocked_token, '')
		FROM admins a
		LEFT JOIN roles r ON r.id = a.role_id
		WHERE a.id = $1`
	var admin Admin
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&admin.ID, &admin.ApartmentID, &admin.Name, &admin.Email, &admin.Archived,
		&admin.RoleID, &admin.RoleArchived, &admin.BlockedToken,
	)
	if err != nil {
		return nil, mapRowErr("find admin", err)
	}
	return &admin, nil
}

// FindSuperAdmin loads a superadmin with the archived state of its role.
func (r *Repository) FindSuperAdmin(ctx context.Context, id uuid.UUID) (*SuperAdmin, error) {
	const query = `
		SELECT s.id, s.name, s.email, s.archived,
		       s.role_id, COALESCE(r.archived, FALSE), COALESCE(s.blocked_token, '')
		FROM super_admins s
		LEFT JOIN roles r ON r.id = s.role_id
		WHERE s.id = $1`
	var sa SuperAdmin
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&sa.ID, &sa.Name, &sa.Email, &sa.Archived,
		&sa.RoleID, &sa.RoleArchived, &sa.BlockedToken,
	)
	if err != nil {
		return nil, mapRowErr("find superadmin", err)
	}
	return &sa, nil
}

// FindGuard loads a guard with the archived state of its role.
func (r *Repository) FindGuard(ctx context.Context, id uuid.UUID) (*Guard, error) {
	const query = `
		SELECT g.id, g.apartment_id, g.name, g.phone, g.archived,
		       g.role_id, COALESCE(r.archived, FALSE), COALESCE(g.blocked_token, '')
		FROM guards g
		LEFT JOIN roles r ON r.id = g.role_id
		WHERE g.id = $1`
	var guard Guard
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&guard.ID, &guard.ApartmentID, &guard.Name, &guard.Phone, &guard.Archived,
		&guard.RoleID, &guard.RoleArchived, &guard.BlockedToken,
	)
	if err != nil {
		return nil, mapRowErr("find guard", err)
	}
	return &guard, nil
}

// FindClient loads a resident and its refresh-token list.
func (r *Repository) FindClient(ctx context.Context, id uuid.UUID) (*Client, error) {
	const query = `
		SELECT id, name, phone, archived, COALESCE(tokens, '{}')
		FROM clients
		WHERE id = $1`
	var client Client
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&client.ID, &client.Name, &client.Phone, &client.Archived, &client.Tokens,
	)
	if err != nil {
		return nil, mapRowErr("find client", err)
	}
	return &client, nil
}

// ClientFlats returns the client's current flat memberships.
func (r *Repository) ClientFlats(ctx context.Context, clientID uuid.UUID) ([]FlatMembership, error) {
	const query = `
		SELECT fm.flat_id, f.apartment_id
		FROM flat_members fm
		JOIN flats f ON f.id = fm.flat_id
		WHERE fm.client_id = $1 AND fm.active`
	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("principal: client flats: %w", err)
	}
	defer rows.Close()
	var memberships []FlatMembership
	for rows.Next() {
		var m FlatMembership
		if err := rows.Scan(&m.FlatID, &m.ApartmentID); err != nil {
			return nil, fmt.Errorf("principal: client flats scan: %w", err)
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("principal: client flats rows: %w", err)
	}
	return memberships, nil
}

// ApartmentForFlat returns the apartment owning the given flat.
func (r *Repository) ApartmentForFlat(ctx context.Context, flatID uuid.UUID) (uuid.UUID, error) {
	const query = `SELECT apartment_id FROM flats WHERE id = $1`
	var apartmentID uuid.UUID
	if err := r.pool.QueryRow(ctx, query, flatID).Scan(&apartmentID); err != nil {
		return uuid.Nil, mapRowErr("apartment for flat", err)
	}
	return apartmentID, nil
}

// mapRowErr keeps "no row" distinguishable from storage transients.
func mapRowErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("principal: %s: %w", op, httpx.ErrNotFound)
	}
	return fmt.Errorf("principal: %s: %w", op, err)
}
