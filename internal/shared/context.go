// Package shared holds request-scoped helpers used across feature modules.
package shared

import (
	"context"

	"github.com/societydesk/societydesk/internal/principal"
)

type authContextKey struct{}

// ContextWithAuth stores the resolved principal in context.
func ContextWithAuth(ctx context.Context, auth *principal.Auth) context.Context {
	return context.WithValue(ctx, authContextKey{}, auth)
}

// AuthFromContext extracts the resolved principal from context, or nil on
// public routes.
func AuthFromContext(ctx context.Context) *principal.Auth {
	auth, _ := ctx.Value(authContextKey{}).(*principal.Auth)
	return auth
}
