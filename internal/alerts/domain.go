// Package alerts implements the resident SOS flow. An alert is raised by a
// client, pushed immediately to every guard device in the apartment, and
// later resolved at the gate desk.
package alerts

import (
	"time"

	"github.com/google/uuid"
)

// Status of an alert.
type Status string

// Alert statuses.
const (
	StatusOpen     Status = "open"
	StatusResolved Status = "resolved"
)

// Alert is one raised SOS.
type Alert struct {
	ID          uuid.UUID  `json:"id"`
	ApartmentID uuid.UUID  `json:"apartment_id"`
	FlatID      uuid.UUID  `json:"flat_id"`
	ClientID    uuid.UUID  `json:"client_id"`
	Category    string     `json:"category"`
	Message     string     `json:"message,omitempty"`
	Status      Status     `json:"status"`
	RaisedAt    time.Time  `json:"raised_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy  *uuid.UUID `json:"resolved_by,omitempty"`
}
