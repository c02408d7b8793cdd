package app

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/societydesk/societydesk/internal/alerts"
	"github.com/societydesk/societydesk/internal/apartments"
	"github.com/societydesk/societydesk/internal/auth"
	"github.com/societydesk/societydesk/internal/authz"
	"github.com/societydesk/societydesk/internal/cms"
	"github.com/societydesk/societydesk/internal/documents"
	"github.com/societydesk/societydesk/internal/gate"
	"github.com/societydesk/societydesk/internal/guests"
	"github.com/societydesk/societydesk/internal/notify"
	"github.com/societydesk/societydesk/internal/principal"
	"github.com/societydesk/societydesk/internal/residents"
	"github.com/societydesk/societydesk/internal/subscriptions"
	"github.com/societydesk/societydesk/internal/token"
	"github.com/societydesk/societydesk/internal/vehicles"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	codec := token.NewCodec(map[token.Kind]token.KindSecrets{})
	g := gate.New(codec, principal.NewResolver(nil, logger),
		authz.NewResolver(authz.DefaultTables()), nil, PanelPrefixes(), logger)
	return NewRouter(RouterParams{
		Logger:               logger,
		Config:               &Config{},
		Gate:                 g,
		AuthHandler:          auth.NewHandler(logger, nil),
		ApartmentsHandler:    apartments.NewHandler(logger, nil),
		ResidentsHandler:     residents.NewHandler(logger, nil),
		GuestsHandler:        guests.NewHandler(logger, nil),
		VehiclesHandler:      vehicles.NewHandler(logger, nil),
		AlertsHandler:        alerts.NewHandler(logger, nil),
		SubscriptionsHandler: subscriptions.NewHandler(logger, nil),
		CMSHandler:           cms.NewHandler(logger, nil),
		DocumentsHandler:     documents.NewHandler(logger, nil, nil),
		NotifyHandler:        notify.NewHandler(logger, nil),
	})
}

// Auth routes sit outside the permission tables; everything else mounted
// under the admin prefix must resolve through a table collection.
var authSegments = map[string]struct{}{
	"login":    {},
	"refresh":  {},
	"logout":   {},
	"password": {},
	"otp":      {},
}

func TestAdminTableCoversMountedSegments(t *testing.T) {
	router, ok := testRouter(t).(chi.Routes)
	require.True(t, ok)

	tables := authz.DefaultTables()
	known := map[string]struct{}{}
	for _, c := range tables.Admin {
		for _, s := range c.Segments {
			known[s] = struct{}{}
		}
	}

	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if !strings.HasPrefix(route, AdminPrefix+"/") {
			return nil
		}
		segment := strings.SplitN(strings.TrimPrefix(route, AdminPrefix+"/"), "/", 2)[0]
		if _, isAuth := authSegments[segment]; isAuth {
			return nil
		}
		if _, covered := known[segment]; !covered {
			t.Errorf("admin route %s %s mounts segment %q missing from the permission table", method, route, segment)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestSuperAdminTableCoversMountedAreas(t *testing.T) {
	router, ok := testRouter(t).(chi.Routes)
	require.True(t, ok)

	tables := authz.DefaultTables()

	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if !strings.HasPrefix(route, SuperAdminPrefix+"/") {
			return nil
		}
		area := strings.SplitN(strings.TrimPrefix(route, SuperAdminPrefix+"/"), "/", 2)[0]
		if _, isAuth := authSegments[area]; isAuth {
			return nil
		}
		if _, covered := tables.SuperAdmin[area]; !covered {
			t.Errorf("superadmin route %s %s mounts area %q missing from the permission table", method, route, area)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestHealthzIsPublic(t *testing.T) {
	router, ok := testRouter(t).(chi.Routes)
	require.True(t, ok)

	found := false
	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if method == http.MethodGet && route == "/healthz" {
			found = true
		}
		return nil
	})
	require.NoError(t, err)
	require.True(t, found)
}
