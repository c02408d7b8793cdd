package authz

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GrantStore loads a role's permission grants.
type GrantStore interface {
	GrantsForRole(ctx context.Context, roleID uuid.UUID) (GrantSet, error)
}

// Repository provides PostgreSQL backed grant lookups.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ GrantStore = (*Repository)(nil)

// GrantsForRole returns every grant row for the role. A role with no rows
// yields an empty set; the resolver denies from there.
func (r *Repository) GrantsForRole(ctx context.Context, roleID uuid.UUID) (GrantSet, error) {
	const query = `
		SELECT collection, access_right, COALESCE(children, '{}')
		FROM permission_grants
		WHERE role_id = $1`
	rows, err := r.pool.Query(ctx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("authz: grants for role: %w", err)
	}
	defer rows.Close()

	grants := make(GrantSet)
	for rows.Next() {
		var (
			collection string
			right      string
			kids       []string
		)
		if err := rows.Scan(&collection, &right, &kids); err != nil {
			return nil, fmt.Errorf("authz: grants scan: %w", err)
		}
		grant := Grant{
			Collection: collection,
			Right:      ParseAccessRight(right),
			Children:   make(map[string]struct{}, len(kids)),
		}
		for _, k := range kids {
			grant.Children[k] = struct{}{}
		}
		grants[collection] = grant
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("authz: grants rows: %w", err)
	}
	return grants, nil
}
