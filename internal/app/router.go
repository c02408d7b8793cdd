package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/societydesk/societydesk/internal/alerts"
	"github.com/societydesk/societydesk/internal/apartments"
	"github.com/societydesk/societydesk/internal/auth"
	"github.com/societydesk/societydesk/internal/cms"
	"github.com/societydesk/societydesk/internal/documents"
	"github.com/societydesk/societydesk/internal/gate"
	"github.com/societydesk/societydesk/internal/guests"
	"github.com/societydesk/societydesk/internal/notify"
	"github.com/societydesk/societydesk/internal/observability"
	"github.com/societydesk/societydesk/internal/residents"
	"github.com/societydesk/societydesk/internal/subscriptions"
	"github.com/societydesk/societydesk/internal/token"
	"github.com/societydesk/societydesk/internal/vehicles"
)

// Panel path prefixes, stripped by the gate before permission resolution.
const (
	AdminPrefix      = "/api/v1/admin"
	ClientPrefix     = "/api/v1/client"
	GuardPrefix      = "/api/v1/guard"
	SuperAdminPrefix = "/api/v1/superadmin"
)

// PanelPrefixes maps each panel kind to its mounted prefix.
func PanelPrefixes() map[token.Kind]string {
	return map[token.Kind]string{
		token.KindAdmin:      AdminPrefix,
		token.KindClient:     ClientPrefix,
		token.KindGuard:      GuardPrefix,
		token.KindSuperAdmin: SuperAdminPrefix,
	}
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger               *slog.Logger
	Config               *Config
	Gate                 *gate.Gate
	AuthHandler          *auth.Handler
	ApartmentsHandler    *apartments.Handler
	ResidentsHandler     *residents.Handler
	GuestsHandler        *guests.Handler
	VehiclesHandler      *vehicles.Handler
	AlertsHandler        *alerts.Handler
	SubscriptionsHandler *subscriptions.Handler
	CMSHandler           *cms.Handler
	DocumentsHandler     *documents.Handler
	NotifyHandler        *notify.Handler
	Metrics              *observability.Metrics
}

// NewRouter constructs the chi.Router with SocietyDesk defaults. Each panel
// mounts three route groups: public auth routes, authenticated-only routes,
// and permissioned feature routes.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	// Public site.
	r.Route("/pages", params.CMSHandler.MountPublicRoutes)

	r.Route(AdminPrefix, func(r chi.Router) {
		params.AuthHandler.MountStaffRoutes(r,
			r.With(params.Gate.Require(token.KindAdmin, gate.AuthenticatedOnly)), token.KindAdmin)
		r.Group(func(perm chi.Router) {
			perm.Use(params.Gate.Require(token.KindAdmin, gate.Permissioned))
			perm.Route("/flats", params.ApartmentsHandler.MountAdminRoutes)
			perm.Route("/residents", params.ResidentsHandler.MountAdminRoutes)
			perm.Route("/alerts", params.AlertsHandler.MountAdminRoutes)
			perm.Route("/documents", params.DocumentsHandler.MountAdminRoutes)
			params.NotifyHandler.MountRoutes(perm)
		})
	})

	r.Route(ClientPrefix, func(r chi.Router) {
		params.AuthHandler.MountClientRoutes(r,
			r.With(params.Gate.Require(token.KindClient, gate.AuthenticatedOnly)))
		r.Group(func(authed chi.Router) {
			authed.Use(params.Gate.Require(token.KindClient, gate.AuthenticatedOnly))
			authed.Route("/guests", params.GuestsHandler.MountClientRoutes)
			authed.Route("/vehicles", params.VehiclesHandler.MountClientRoutes)
			authed.Route("/alerts", params.AlertsHandler.MountClientRoutes)
			authed.Route("/documents", params.DocumentsHandler.MountClientRoutes)
			params.NotifyHandler.MountRoutes(authed)
		})
	})

	r.Route(GuardPrefix, func(r chi.Router) {
		params.AuthHandler.MountStaffRoutes(r,
			r.With(params.Gate.Require(token.KindGuard, gate.AuthenticatedOnly)), token.KindGuard)
		r.Group(func(authed chi.Router) {
			authed.Use(params.Gate.Require(token.KindGuard, gate.AuthenticatedOnly))
			authed.Route("/guests", params.GuestsHandler.MountGuardRoutes)
			authed.Route("/vehicles", params.VehiclesHandler.MountGuardRoutes)
			authed.Route("/alerts", params.AlertsHandler.MountGuardRoutes)
			params.NotifyHandler.MountRoutes(authed)
		})
	})

	r.Route(SuperAdminPrefix, func(r chi.Router) {
		params.AuthHandler.MountStaffRoutes(r,
			r.With(params.Gate.Require(token.KindSuperAdmin, gate.AuthenticatedOnly)), token.KindSuperAdmin)
		r.Group(func(perm chi.Router) {
			perm.Use(params.Gate.Require(token.KindSuperAdmin, gate.Permissioned))
			perm.Route("/apartments", func(r chi.Router) {
				params.ApartmentsHandler.MountSuperAdminRoutes(r)
				r.Route("/{apartmentID}/subscription", params.SubscriptionsHandler.MountApartmentRoutes)
			})
			perm.Route("/plans", params.SubscriptionsHandler.MountPlanRoutes)
			perm.Route("/cms", func(r chi.Router) {
				r.Route("/pages", params.CMSHandler.MountSuperAdminRoutes)
			})
		})
	})

	return r
}
