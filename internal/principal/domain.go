// Package principal models the four authenticated actor kinds and resolves
// verified token payloads into them.
package principal

import (
	"github.com/google/uuid"

	"github.com/societydesk/societydesk/internal/token"
)

// Principal is the tagged union over the four actor variants. Downstream
// handlers switch on the concrete type instead of assuming a shape.
type Principal interface {
	PrincipalID() uuid.UUID
	Kind() token.Kind
}

// Admin manages a single apartment's panel.
type Admin struct {
	ID           uuid.UUID
	ApartmentID  uuid.UUID
	Name         string
	Email        string
	Archived     bool
	RoleID       *uuid.UUID
	RoleArchived bool
	BlockedToken string
}

// PrincipalID implements Principal.
func (a *Admin) PrincipalID() uuid.UUID { return a.ID }

// Kind implements Principal.
func (a *Admin) Kind() token.Kind { return token.KindAdmin }

// SuperAdmin operates the platform-wide panel.
type SuperAdmin struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Archived     bool
	RoleID       *uuid.UUID
	RoleArchived bool
	BlockedToken string
}

// PrincipalID implements Principal.
func (s *SuperAdmin) PrincipalID() uuid.UUID { return s.ID }

// Kind implements Principal.
func (s *SuperAdmin) Kind() token.Kind { return token.KindSuperAdmin }

// Guard staffs an apartment gate.
type Guard struct {
	ID           uuid.UUID
	ApartmentID  uuid.UUID
	Name         string
	Phone        string
	Archived     bool
	RoleID       *uuid.UUID
	RoleArchived bool
	BlockedToken string
}

// PrincipalID implements Principal.
func (g *Guard) PrincipalID() uuid.UUID { return g.ID }

// Kind implements Principal.
func (g *Guard) Kind() token.Kind { return token.KindGuard }

// Client is a resident. Instead of a blocked-token field it carries a capped
// list of valid refresh tokens; login and logout flows mutate the list, the
// resolver only reads it.
type Client struct {
	ID       uuid.UUID
	Name     string
	Phone    string
	Archived bool
	Tokens   []string
}

// PrincipalID implements Principal.
func (c *Client) PrincipalID() uuid.UUID { return c.ID }

// Kind implements Principal.
func (c *Client) Kind() token.Kind { return token.KindClient }

// FlatMembership is one of a client's current residences.
type FlatMembership struct {
	FlatID      uuid.UUID
	ApartmentID uuid.UUID
}

// Auth is the request-scoped result of resolution. ApartmentID and FlatID
// are set only for clients with an active residence context; their absence
// is a valid authenticated state (a resident mid-onboarding or moved out).
type Auth struct {
	Principal   Principal
	RawToken    string
	ApartmentID *uuid.UUID
	FlatID      *uuid.UUID
}

// Role returns the principal's role id, or nil for kinds without one.
func (a *Auth) Role() *uuid.UUID {
	switch p := a.Principal.(type) {
	case *Admin:
		return p.RoleID
	case *SuperAdmin:
		return p.RoleID
	case *Guard:
		return p.RoleID
	default:
		return nil
	}
}
