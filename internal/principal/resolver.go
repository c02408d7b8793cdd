package principal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/societydesk/societydesk/internal/platform/httpx"
	"github.com/societydesk/societydesk/internal/token"
)

// Store is the storage surface the resolver reads. Implementations map
// "no row" to httpx.ErrNotFound; any other error is a transient and must
// propagate untranslated.
type Store interface {
	FindAdmin(ctx context.Context, id uuid.UUID) (*Admin, error)
	FindSuperAdmin(ctx context.Context, id uuid.UUID) (*SuperAdmin, error)
	FindGuard(ctx context.Context, id uuid.UUID) (*Guard, error)
	FindClient(ctx context.Context, id uuid.UUID) (*Client, error)
	ClientFlats(ctx context.Context, clientID uuid.UUID) ([]FlatMembership, error)
	ApartmentForFlat(ctx context.Context, flatID uuid.UUID) (uuid.UUID, error)
}

// Resolver turns verified token payloads into authenticated principals.
type Resolver struct {
	store  Store
	logger *slog.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(store Store, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// Resolve loads and validates the principal named by claims. raw is the
// bearer token as presented, needed for the blocked-token comparison.
func (r *Resolver) Resolve(ctx context.Context, kind token.Kind, raw string, claims token.Claims) (*Auth, error) {
	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("principal: bad subject: %w", httpx.ErrUnauthenticated)
	}

	switch kind {
	case token.KindAdmin:
		admin, err := r.store.FindAdmin(ctx, id)
		if err != nil {
			return nil, staffLookupErr(err)
		}
		if err := checkStaff(admin.Archived, admin.RoleArchived, admin.BlockedToken, raw); err != nil {
			return nil, err
		}
		return &Auth{Principal: admin, RawToken: raw}, nil

	case token.KindSuperAdmin:
		sa, err := r.store.FindSuperAdmin(ctx, id)
		if err != nil {
			return nil, staffLookupErr(err)
		}
		if err := checkStaff(sa.Archived, sa.RoleArchived, sa.BlockedToken, raw); err != nil {
			return nil, err
		}
		return &Auth{Principal: sa, RawToken: raw}, nil

	case token.KindGuard:
		guard, err := r.store.FindGuard(ctx, id)
		if err != nil {
			return nil, staffLookupErr(err)
		}
		if err := checkStaff(guard.Archived, guard.RoleArchived, guard.BlockedToken, raw); err != nil {
			return nil, err
		}
		return &Auth{Principal: guard, RawToken: raw}, nil

	case token.KindClient:
		return r.resolveClient(ctx, id, raw, claims)

	default:
		return nil, fmt.Errorf("principal: unknown kind %q: %w", kind, httpx.ErrUnauthenticated)
	}
}

// resolveClient authenticates a resident and derives the active residence
// context. A stale or absent currentFlat claim drops the context without
// failing: routes that need an active flat reject on their own.
func (r *Resolver) resolveClient(ctx context.Context, id uuid.UUID, raw string, claims token.Claims) (*Auth, error) {
	client, err := r.store.FindClient(ctx, id)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, fmt.Errorf("principal: no such client: %w", httpx.ErrForbidden)
		}
		return nil, err
	}
	if client.Archived {
		return nil, fmt.Errorf("principal: client archived: %w", httpx.ErrForbidden)
	}

	auth := &Auth{Principal: client, RawToken: raw}
	if claims.CurrentFlat == "" {
		return auth, nil
	}
	flatID, err := uuid.Parse(claims.CurrentFlat)
	if err != nil {
		return auth, nil
	}

	memberships, err := r.store.ClientFlats(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, m := range memberships {
		if m.FlatID != flatID {
			continue
		}
		apartmentID, err := r.store.ApartmentForFlat(ctx, flatID)
		if err != nil {
			if errors.Is(err, httpx.ErrNotFound) {
				// Flat with no owning apartment: treat as no context.
				return auth, nil
			}
			return nil, err
		}
		auth.FlatID = &flatID
		auth.ApartmentID = &apartmentID
		return auth, nil
	}
	if r.logger != nil {
		r.logger.Debug("client flat claim not in memberships, dropping context",
			slog.String("client_id", id.String()), slog.String("flat_id", flatID.String()))
	}
	return auth, nil
}

func staffLookupErr(err error) error {
	if errors.Is(err, httpx.ErrNotFound) {
		return fmt.Errorf("principal: no such account: %w", httpx.ErrUnauthenticated)
	}
	return err
}

func checkStaff(archived, roleArchived bool, blockedToken, raw string) error {
	if archived {
		return fmt.Errorf("principal: account archived: %w", httpx.ErrUnauthenticated)
	}
	if roleArchived {
		return fmt.Errorf("principal: role archived: %w", httpx.ErrUnauthenticated)
	}
	if blockedToken != "" && blockedToken == raw {
		return fmt.Errorf("principal: %w", httpx.ErrSessionBlocked)
	}
	return nil
}
