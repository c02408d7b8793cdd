// Package guests covers resident guest pre-approval and gate check-in.
package guests

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks a guest through the gate.
type Status string

// Guest statuses.
const (
	StatusExpected   Status = "expected"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
)

// Guest is one pre-approved visit.
type Guest struct {
	ID          uuid.UUID  `json:"id"`
	ApartmentID uuid.UUID  `json:"apartment_id"`
	FlatID      uuid.UUID  `json:"flat_id"`
	ClientID    uuid.UUID  `json:"client_id"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone,omitempty"`
	PassCode    string     `json:"pass_code"`
	Status      Status     `json:"status"`
	ExpectedAt  time.Time  `json:"expected_at"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	CheckedOut  *time.Time `json:"checked_out_at,omitempty"`
}
