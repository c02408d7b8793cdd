// Package auth implements the credential flows that mint and revoke panel
// tokens: staff password login, resident OTP login, refresh rotation, logout
// and password reset.
package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/societydesk/societydesk/internal/principal"
	"github.com/societydesk/societydesk/internal/token"
)

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// StaffAccount is the credential record shared by the admin, superadmin and
// guard kinds.
type StaffAccount struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Archived     bool
}

// Repository is the persistence surface for credential flows. "No row" maps
// to httpx.ErrNotFound.
type Repository interface {
	FindStaffByEmail(ctx context.Context, kind token.Kind, email string) (*StaffAccount, error)
	FindStaffByID(ctx context.Context, kind token.Kind, id uuid.UUID) (*StaffAccount, error)
	SetBlockedToken(ctx context.Context, kind token.Kind, id uuid.UUID, blocked string) error
	SetPassword(ctx context.Context, kind token.Kind, id uuid.UUID, hash string) error

	FindClientByPhone(ctx context.Context, phone string) (*principal.Client, error)
	CreateClient(ctx context.Context, phone string) (*principal.Client, error)
	FindClientByID(ctx context.Context, id uuid.UUID) (*principal.Client, error)
	SetClientTokens(ctx context.Context, id uuid.UUID, tokens []string) error
	FirstClientFlat(ctx context.Context, id uuid.UUID) (*principal.FlatMembership, error)
}

// CodeSender delivers a one-time code to a resident's phone. The SMS relay
// integration implements this; development wiring logs the code.
type CodeSender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// EmailEnqueuer queues a transactional email for the worker.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, to, subject, body string) error
}
