package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/societydesk/societydesk/internal/platform/db"
	"github.com/societydesk/societydesk/internal/platform/httpx"
)

// Repository provides plan and subscription persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const planColumns = `id, name, price_cents, currency, max_flats, max_guards, archived, created_at`

// ListPlans returns every non-archived plan.
func (r *Repository) ListPlans(ctx context.Context) ([]Plan, error) {
	const query = `SELECT ` + planColumns + ` FROM plans WHERE NOT archived ORDER BY price_cents`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("subscriptions: list plans: %w", err)
	}
	defer rows.Close()
	var out []Plan
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Currency,
			&p.MaxFlats, &p.MaxGuards, &p.Archived, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("subscriptions: scan plan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("subscriptions: rows: %w", err)
	}
	return out, nil
}

// CreatePlan adds a billing tier.
func (r *Repository) CreatePlan(ctx context.Context, p Plan) (*Plan, error) {
	const query = `
		INSERT INTO plans (id, name, price_cents, currency, max_flats, max_guards, archived, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW())
		RETURNING ` + planColumns
	var out Plan
	err := r.pool.QueryRow(ctx, query, p.ID, p.Name, p.PriceCents, p.Currency, p.MaxFlats, p.MaxGuards).
		Scan(&out.ID, &out.Name, &out.PriceCents, &out.Currency,
			&out.MaxFlats, &out.MaxGuards, &out.Archived, &out.CreatedAt)
	if err != nil {
		if db.UniqueViolation(err) {
			return nil, fmt.Errorf("subscriptions: plan name taken: %w", httpx.ErrDuplicate)
		}
		return nil, fmt.Errorf("subscriptions: create plan: %w", err)
	}
	return &out, nil
}

// ArchivePlan retires a plan. Existing subscriptions keep running.
func (r *Repository) ArchivePlan(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE plans SET archived = TRUE WHERE id = $1 AND NOT archived`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("subscriptions: archive plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("subscriptions: plan: %w", httpx.ErrNotFound)
	}
	return nil
}

// Assign replaces the apartment's current subscription with a new one.
func (r *Repository) Assign(ctx context.Context, apartmentID, planID uuid.UUID, expiresAt *time.Time) (*Subscription, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("subscriptions: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var planName string
	err = tx.QueryRow(ctx, `SELECT name FROM plans WHERE id = $1 AND NOT archived`, planID).Scan(&planName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("subscriptions: plan: %w", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("subscriptions: plan: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE subscriptions SET expires_at = NOW() WHERE apartment_id = $1 AND (expires_at IS NULL OR expires_at > NOW())`,
		apartmentID); err != nil {
		return nil, fmt.Errorf("subscriptions: supersede: %w", err)
	}

	sub := Subscription{
		ID:          uuid.New(),
		ApartmentID: apartmentID,
		PlanID:      planID,
		PlanName:    planName,
		ExpiresAt:   expiresAt,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO subscriptions (id, apartment_id, plan_id, starts_at, expires_at, created_at)
		 VALUES ($1, $2, $3, NOW(), $4, NOW())
		 RETURNING starts_at, created_at`,
		sub.ID, apartmentID, planID, expiresAt,
	).Scan(&sub.StartsAt, &sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("subscriptions: assign: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("subscriptions: commit: %w", err)
	}
	return &sub, nil
}

// Current returns the apartment's active subscription.
func (r *Repository) Current(ctx context.Context, apartmentID uuid.UUID) (*Subscription, error) {
	const query = `
		SELECT s.id, s.apartment_id, s.plan_id, p.name, s.starts_at, s.expires_at, s.created_at
		FROM subscriptions s
		JOIN plans p ON p.id = s.plan_id
		WHERE s.apartment_id = $1 AND (s.expires_at IS NULL OR s.expires_at > NOW())
		ORDER BY s.starts_at DESC
		LIMIT 1`
	var sub Subscription
	err := r.pool.QueryRow(ctx, query, apartmentID).Scan(
		&sub.ID, &sub.ApartmentID, &sub.PlanID, &sub.PlanName,
		&sub.StartsAt, &sub.ExpiresAt, &sub.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("subscriptions: %w", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("subscriptions: current: %w", err)
	}
	return &sub, nil
}
