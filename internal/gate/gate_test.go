package gate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/societydesk/societydesk/internal/authz"
	"github.com/societydesk/societydesk/internal/gate"
	"github.com/societydesk/societydesk/internal/platform/httpx"
	"github.com/societydesk/societydesk/internal/principal"
	"github.com/societydesk/societydesk/internal/shared"
	"github.com/societydesk/societydesk/internal/token"
)

type fixtureStore struct {
	admin  *principal.Admin
	client *principal.Client
}

func (s *fixtureStore) FindAdmin(ctx context.Context, id uuid.UUID) (*principal.Admin, error) {
	if s.admin == nil || s.admin.ID != id {
		return nil, httpx.ErrNotFound
	}
	return s.admin, nil
}

func (s *fixtureStore) FindSuperAdmin(ctx context.Context, id uuid.UUID) (*principal.SuperAdmin, error) {
	return nil, httpx.ErrNotFound
}

func (s *fixtureStore) FindGuard(ctx context.Context, id uuid.UUID) (*principal.Guard, error) {
	return nil, httpx.ErrNotFound
}

func (s *fixtureStore) FindClient(ctx context.Context, id uuid.UUID) (*principal.Client, error) {
	if s.client == nil || s.client.ID != id {
		return nil, httpx.ErrNotFound
	}
	return s.client, nil
}

func (s *fixtureStore) ClientFlats(ctx context.Context, clientID uuid.UUID) ([]principal.FlatMembership, error) {
	return nil, nil
}

func (s *fixtureStore) ApartmentForFlat(ctx context.Context, flatID uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, httpx.ErrNotFound
}

type fixtureGrants struct {
	grants authz.GrantSet
}

func (f *fixtureGrants) GrantsForRole(ctx context.Context, roleID uuid.UUID) (authz.GrantSet, error) {
	return f.grants, nil
}

func testCodec() *token.Codec {
	return token.NewCodec(map[token.Kind]token.KindSecrets{
		token.KindAdmin: {
			AccessSecret: "acc", RefreshSecret: "ref", ResetSecret: "rst",
			AccessTTL: 30 * time.Minute, RefreshTTL: 24 * time.Hour,
		},
	})
}

func newTestGate(store principal.Store, grants authz.GrantStore) (*gate.Gate, *token.Codec) {
	codec := testCodec()
	g := gate.New(
		codec,
		principal.NewResolver(store, nil),
		authz.NewResolver(authz.DefaultTables()),
		grants,
		map[token.Kind]string{token.KindAdmin: "/api/v1/admin"},
		nil,
	)
	return g, codec
}

func okHandler(hit *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hit = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestPublicRouteSkipsEverything(t *testing.T) {
	g, _ := newTestGate(&fixtureStore{}, &fixtureGrants{})

	var hit bool
	handler := g.Require(token.KindAdmin, gate.Public)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		assert.Nil(t, shared.AuthFromContext(r.Context()))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/auth/login", nil))
	assert.True(t, hit)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMissingBearerIsUnauthenticated(t *testing.T) {
	g, _ := newTestGate(&fixtureStore{}, &fixtureGrants{})

	var hit bool
	handler := g.Require(token.KindAdmin, gate.AuthenticatedOnly)(okHandler(&hit))

	for _, header := range []string{"", "Basic abc", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	assert.False(t, hit)
}

func TestAuthenticatedOnlyAttachesPrincipal(t *testing.T) {
	adminID := uuid.New()
	roleID := uuid.New()
	store := &fixtureStore{admin: &principal.Admin{ID: adminID, RoleID: &roleID}}
	g, codec := newTestGate(store, &fixtureGrants{})

	issued, err := codec.Issue(token.Claims{ID: adminID.String()}, token.KindAdmin, token.ClassAccess)
	require.NoError(t, err)

	var got *principal.Auth
	handler := g.Require(token.KindAdmin, gate.AuthenticatedOnly)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = shared.AuthFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/profile", nil)
	req.Header.Set("Authorization", "Bearer "+issued)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, adminID, got.Principal.PrincipalID())
	assert.Equal(t, issued, got.RawToken)
}

func TestPermissionedDeniesAndAllows(t *testing.T) {
	adminID := uuid.New()
	roleID := uuid.New()
	store := &fixtureStore{admin: &principal.Admin{ID: adminID, RoleID: &roleID}}
	grants := &fixtureGrants{grants: authz.GrantSet{
		"dashboard": {Collection: "dashboard", Right: authz.AccessReadWriteDelete},
	}}
	g, codec := newTestGate(store, grants)

	issued, err := codec.Issue(token.Claims{ID: adminID.String()}, token.KindAdmin, token.ClassAccess)
	require.NoError(t, err)

	var hit bool
	handler := g.Require(token.KindAdmin, gate.Permissioned)(okHandler(&hit))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+issued)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, hit)

	hit = false
	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/residents", nil)
	req.Header.Set("Authorization", "Bearer "+issued)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, hit)
}

func TestPermissionedWithoutRoleIsForbidden(t *testing.T) {
	adminID := uuid.New()
	store := &fixtureStore{admin: &principal.Admin{ID: adminID}}
	g, codec := newTestGate(store, &fixtureGrants{})

	issued, err := codec.Issue(token.Claims{ID: adminID.String()}, token.KindAdmin, token.ClassAccess)
	require.NoError(t, err)

	var hit bool
	handler := g.Require(token.KindAdmin, gate.Permissioned)(okHandler(&hit))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+issued)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, hit)
}

func TestBlockedTokenIsSessionSuperseded(t *testing.T) {
	adminID := uuid.New()
	roleID := uuid.New()
	store := &fixtureStore{admin: &principal.Admin{ID: adminID, RoleID: &roleID}}
	g, codec := newTestGate(store, &fixtureGrants{})

	issued, err := codec.Issue(token.Claims{ID: adminID.String()}, token.KindAdmin, token.ClassAccess)
	require.NoError(t, err)
	store.admin.BlockedToken = issued

	handler := g.Require(token.KindAdmin, gate.AuthenticatedOnly)(okHandler(new(bool)))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+issued)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Session Superseded")
}
