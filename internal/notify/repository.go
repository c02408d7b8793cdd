package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/societydesk/societydesk/internal/token"
)

// Repository provides PostgreSQL backed device-token persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

// Register stores a device token, replacing a stale registration of the same
// token string for another principal.
func (r *Repository) Register(ctx context.Context, t DeviceToken) error {
	const query = `
		INSERT INTO device_tokens (id, principal_id, principal_kind, token, platform, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (token) DO UPDATE
		SET principal_id = EXCLUDED.principal_id,
		    principal_kind = EXCLUDED.principal_kind,
		    platform = EXCLUDED.platform`
	if _, err := r.pool.Exec(ctx, query, t.ID, t.PrincipalID, string(t.PrincipalKind), t.Token, t.Platform); err != nil {
		return fmt.Errorf("notify: register token: %w", err)
	}
	return nil
}

// Unregister removes one device token for a principal.
func (r *Repository) Unregister(ctx context.Context, principalID uuid.UUID, deviceToken string) error {
	const query = `DELETE FROM device_tokens WHERE principal_id = $1 AND token = $2`
	if _, err := r.pool.Exec(ctx, query, principalID, deviceToken); err != nil {
		return fmt.Errorf("notify: unregister token: %w", err)
	}
	return nil
}

// TokensFor returns the device tokens of the given principals.
func (r *Repository) TokensFor(ctx context.Context, recipients []uuid.UUID) ([]string, error) {
	if len(recipients) == 0 {
		return nil, nil
	}
	const query = `SELECT token FROM device_tokens WHERE principal_id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, recipients)
	if err != nil {
		return nil, fmt.Errorf("notify: tokens for recipients: %w", err)
	}
	defer rows.Close()
	return scanTokens(rows)
}

// TokensForKind returns every device token of a principal kind within one
// apartment, e.g. all guards for an SOS alert.
func (r *Repository) TokensForKind(ctx context.Context, apartmentID uuid.UUID, kind token.Kind) ([]string, error) {
	const query = `
		SELECT dt.token
		FROM device_tokens dt
		JOIN guards g ON g.id = dt.principal_id
		WHERE dt.principal_kind = $1 AND g.apartment_id = $2 AND NOT g.archived`
	rows, err := r.pool.Query(ctx, query, string(kind), apartmentID)
	if err != nil {
		return nil, fmt.Errorf("notify: tokens for kind: %w", err)
	}
	defer rows.Close()
	return scanTokens(rows)
}

type tokenRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanTokens(rows tokenRows) ([]string, error) {
	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("notify: scan token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("notify: token rows: %w", err)
	}
	return tokens, nil
}
