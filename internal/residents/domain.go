// Package residents manages the admin-facing directory of flat occupants.
package residents

import (
	"time"

	"github.com/google/uuid"
)

// Resident is a client's membership of a flat, as the admin sees it.
type Resident struct {
	MembershipID uuid.UUID `json:"membership_id"`
	ClientID     uuid.UUID `json:"client_id"`
	FlatID       uuid.UUID `json:"flat_id"`
	FlatNumber   string    `json:"flat_number"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	IsOwner      bool      `json:"is_owner"`
	MovedInAt    time.Time `json:"moved_in_at"`
}
