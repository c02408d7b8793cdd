// Package subscriptions handles billing plans and the plan assigned to each
// apartment.
package subscriptions

import (
	"time"

	"github.com/google/uuid"
)

// Plan is one billing tier.
type Plan struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	Currency   string    `json:"currency"`
	MaxFlats   int       `json:"max_flats"`
	MaxGuards  int       `json:"max_guards"`
	Archived   bool      `json:"archived"`
	CreatedAt  time.Time `json:"created_at"`
}

// Subscription ties an apartment to a plan for a period.
type Subscription struct {
	ID          uuid.UUID  `json:"id"`
	ApartmentID uuid.UUID  `json:"apartment_id"`
	PlanID      uuid.UUID  `json:"plan_id"`
	PlanName    string     `json:"plan_name"`
	StartsAt    time.Time  `json:"starts_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
