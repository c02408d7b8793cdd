// Package notify resolves recipients to registered device tokens and
// dispatches structured push payloads. It is consumed by feature modules as a
// side effect; nothing in the authorization path depends on it.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/societydesk/societydesk/internal/token"
)

// DeviceToken is one registered push target for a principal.
type DeviceToken struct {
	ID            uuid.UUID
	PrincipalID   uuid.UUID
	PrincipalKind token.Kind
	Token         string
	Platform      string
	CreatedAt     time.Time
}

// Payload is the structured message pushed to devices.
type Payload struct {
	Event string            `json:"event"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Dispatcher fans a payload out to explicit device tokens plus every token
// registered for the recipient principals.
type Dispatcher interface {
	Send(ctx context.Context, payload Payload, tokens []string, recipients []uuid.UUID) error
}

// Store is the device-token persistence surface.
type Store interface {
	Register(ctx context.Context, t DeviceToken) error
	Unregister(ctx context.Context, principalID uuid.UUID, deviceToken string) error
	TokensFor(ctx context.Context, recipients []uuid.UUID) ([]string, error)
	TokensForKind(ctx context.Context, apartmentID uuid.UUID, kind token.Kind) ([]string, error)
}
