package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/societydesk/societydesk/internal/platform/db"
	"github.com/societydesk/societydesk/internal/platform/httpx"
	"github.com/societydesk/societydesk/internal/principal"
	"github.com/societydesk/societydesk/internal/token"
)

// PGRepository provides PostgreSQL backed credential persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

var _ Repository = (*PGRepository)(nil)

func staffTable(kind token.Kind) (string, error) {
	switch kind {
	case token.KindAdmin:
		return "admins", nil
	case token.KindSuperAdmin:
		return "super_admins", nil
	case token.KindGuard:
		return "guards", nil
	default:
		return "", fmt.Errorf("auth: no staff table for kind %q", kind)
	}
}

// FindStaffByEmail loads a staff credential record by email.
func (r *PGRepository) FindStaffByEmail(ctx context.Context, kind token.Kind, email string) (*StaffAccount, error) {
	table, err := staffTable(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT id, email, password_hash, archived FROM %s WHERE email = $1`, table)
	return r.scanStaff(ctx, query, email)
}

// FindStaffByID loads a staff credential record by id.
func (r *PGRepository) FindStaffByID(ctx context.Context, kind token.Kind, id uuid.UUID) (*StaffAccount, error) {
	table, err := staffTable(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT id, email, password_hash, archived FROM %s WHERE id = $1`, table)
	return r.scanStaff(ctx, query, id)
}

func (r *PGRepository) scanStaff(ctx context.Context, query string, arg any) (*StaffAccount, error) {
	var account StaffAccount
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&account.ID, &account.Email, &account.PasswordHash, &account.Archived,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("auth: staff lookup: %w", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("auth: staff lookup: %w", err)
	}
	return &account, nil
}

// SetBlockedToken stores the invalidated token for a staff account.
func (r *PGRepository) SetBlockedToken(ctx context.Context, kind token.Kind, id uuid.UUID, blocked string) error {
	table, err := staffTable(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET blocked_token = $2 WHERE id = $1`, table)
	if _, err := r.pool.Exec(ctx, query, id, blocked); err != nil {
		return fmt.Errorf("auth: set blocked token: %w", err)
	}
	return nil
}

// SetPassword stores a new password hash for a staff account.
func (r *PGRepository) SetPassword(ctx context.Context, kind token.Kind, id uuid.UUID, hash string) error {
	table, err := staffTable(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET password_hash = $2 WHERE id = $1`, table)
	if _, err := r.pool.Exec(ctx, query, id, hash); err != nil {
		return fmt.Errorf("auth: set password: %w", err)
	}
	return nil
}

// FindClientByPhone loads a resident by phone number.
func (r *PGRepository) FindClientByPhone(ctx context.Context, phone string) (*principal.Client, error) {
	const query = `SELECT id, name, phone, archived, COALESCE(tokens, '{}') FROM clients WHERE phone = $1`
	return r.scanClient(ctx, query, phone)
}

// FindClientByID loads a resident by id.
func (r *PGRepository) FindClientByID(ctx context.Context, id uuid.UUID) (*principal.Client, error) {
	const query = `SELECT id, name, phone, archived, COALESCE(tokens, '{}') FROM clients WHERE id = $1`
	return r.scanClient(ctx, query, id)
}

func (r *PGRepository) scanClient(ctx context.Context, query string, arg any) (*principal.Client, error) {
	var client principal.Client
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&client.ID, &client.Name, &client.Phone, &client.Archived, &client.Tokens,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("auth: client lookup: %w", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("auth: client lookup: %w", err)
	}
	return &client, nil
}

// CreateClient inserts a resident on first OTP login.
func (r *PGRepository) CreateClient(ctx context.Context, phone string) (*principal.Client, error) {
	const query = `
		INSERT INTO clients (id, name, phone, archived, tokens, created_at)
		VALUES ($1, '', $2, FALSE, '{}', NOW())
		RETURNING id, name, phone, archived, tokens`
	var client principal.Client
	err := r.pool.QueryRow(ctx, query, uuid.New(), phone).Scan(
		&client.ID, &client.Name, &client.Phone, &client.Archived, &client.Tokens,
	)
	if err != nil {
		// Two first logins racing on one phone number; the loser retries.
		if db.UniqueViolation(err) {
			return nil, fmt.Errorf("auth: client exists: %w", httpx.ErrDuplicate)
		}
		return nil, fmt.Errorf("auth: create client: %w", err)
	}
	return &client, nil
}

// SetClientTokens replaces the client's refresh-token list.
func (r *PGRepository) SetClientTokens(ctx context.Context, id uuid.UUID, tokens []string) error {
	const query = `UPDATE clients SET tokens = $2 WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, id, tokens); err != nil {
		return fmt.Errorf("auth: set client tokens: %w", err)
	}
	return nil
}

// FirstClientFlat returns the client's oldest active membership, seeding the
// current-flat claim at login.
func (r *PGRepository) FirstClientFlat(ctx context.Context, id uuid.UUID) (*principal.FlatMembership, error) {
	const query = `
		SELECT fm.flat_id, f.apartment_id
		FROM flat_members fm
		JOIN flats f ON f.id = fm.flat_id
		WHERE fm.client_id = $1 AND fm.active
		ORDER BY fm.created_at
		LIMIT 1`
	var m principal.FlatMembership
	err := r.pool.QueryRow(ctx, query, id).Scan(&m.FlatID, &m.ApartmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("auth: first flat: %w", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("auth: first flat: %w", err)
	}
	return &m, nil
}
