// Package gate is the per-request authorization pipeline: bearer extraction,
// token verification, principal resolution, then the permission check.
package gate

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/societydesk/societydesk/internal/authz"
	"github.com/societydesk/societydesk/internal/observability"
	"github.com/societydesk/societydesk/internal/platform/httpx"
	"github.com/societydesk/societydesk/internal/principal"
	"github.com/societydesk/societydesk/internal/shared"
	"github.com/societydesk/societydesk/internal/token"
)

// Level is the access requirement declared at route registration, making the
// bypass auditable where routes are mounted.
type Level int

// Route access levels.
const (
	// Public skips authentication and authorization entirely.
	Public Level = iota
	// AuthenticatedOnly requires a valid principal but no permission check.
	AuthenticatedOnly
	// Permissioned runs the full permission resolution for the panel.
	Permissioned
)

// Gate orchestrates the authorization pipeline for all four panels.
type Gate struct {
	codec      *token.Codec
	principals *principal.Resolver
	authz      *authz.Resolver
	grants     authz.GrantStore
	prefixes   map[token.Kind]string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// SetMetrics attaches the denial counter. A nil receiver value is inert.
func (g *Gate) SetMetrics(m *observability.Metrics) {
	g.metrics = m
}

// New constructs a Gate. prefixes maps each panel kind to its mounted path
// prefix, which is stripped before permission resolution.
func New(codec *token.Codec, principals *principal.Resolver, resolver *authz.Resolver, grants authz.GrantStore, prefixes map[token.Kind]string, logger *slog.Logger) *Gate {
	return &Gate{
		codec:      codec,
		principals: principals,
		authz:      resolver,
		grants:     grants,
		prefixes:   prefixes,
		logger:     logger,
	}
}

// Require returns the middleware enforcing the given level for the panel.
// The permission tables only cover the admin and superadmin panels; for the
// other kinds Permissioned degrades to authentication alone.
func (g *Gate) Require(kind token.Kind, level Level) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if level == Public {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := bearerToken(r)
			if !ok {
				g.deny(w, r, kind, httpx.ErrUnauthenticated)
				return
			}

			claims, err := g.codec.Verify(raw, kind, token.ClassAccess)
			if err != nil {
				g.deny(w, r, kind, httpx.ErrUnauthenticated)
				return
			}

			auth, err := g.principals.Resolve(r.Context(), kind, raw, claims)
			if err != nil {
				g.deny(w, r, kind, err)
				return
			}

			ctx := shared.ContextWithAuth(r.Context(), auth)
			r = r.WithContext(ctx)

			if level == Permissioned {
				if err := g.authorize(r, kind, auth); err != nil {
					g.deny(w, r, kind, err)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (g *Gate) authorize(r *http.Request, kind token.Kind, auth *principal.Auth) error {
	if kind != token.KindAdmin && kind != token.KindSuperAdmin {
		return nil
	}

	roleID := auth.Role()
	if roleID == nil {
		return fmt.Errorf("gate: principal has no role: %w", httpx.ErrForbidden)
	}
	grants, err := g.grants.GrantsForRole(r.Context(), *roleID)
	if err != nil {
		return err
	}

	path := strings.TrimPrefix(r.URL.Path, g.prefixes[kind])
	if kind == token.KindAdmin {
		return g.authz.AuthorizeAdmin(grants, path, r.Method)
	}
	return g.authz.AuthorizeSuperAdmin(grants, path, r.Method)
}

func (g *Gate) deny(w http.ResponseWriter, r *http.Request, kind token.Kind, err error) {
	// Authentication and permission failures stay distinguishable in logs
	// even though the client-visible detail is generic.
	if g.logger != nil {
		g.logger.Warn("request denied",
			slog.String("path", r.URL.Path),
			slog.String("method", r.Method),
			slog.Any("error", err),
		)
	}
	g.metrics.CountDenial(string(kind), denialReason(err))
	httpx.RespondError(w, err)
}

func denialReason(err error) string {
	switch {
	case errors.Is(err, httpx.ErrSessionBlocked):
		return "session_blocked"
	case errors.Is(err, httpx.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, httpx.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
