// Package vehicles keeps the per-flat vehicle registry the gate checks
// plates against.
package vehicles

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle is one registered vehicle.
type Vehicle struct {
	ID          uuid.UUID `json:"id"`
	ApartmentID uuid.UUID `json:"apartment_id"`
	FlatID      uuid.UUID `json:"flat_id"`
	ClientID    uuid.UUID `json:"client_id"`
	Plate       string    `json:"plate"`
	Kind        string    `json:"kind"`
	Model       string    `json:"model,omitempty"`
	Color       string    `json:"color,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
