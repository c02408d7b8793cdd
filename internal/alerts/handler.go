package alerts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/societydesk/societydesk/internal/platform/httpx"
	"github.com/societydesk/societydesk/internal/shared"
)

// Handler exposes SOS endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountClientRoutes registers the resident SOS route.
func (h *Handler) MountClientRoutes(r chi.Router) {
	r.Post("/", h.raise)
}

// MountGuardRoutes registers the gate desk alert routes.
func (h *Handler) MountGuardRoutes(r chi.Router) {
	r.Get("/", h.listOpen)
	r.Post("/{alertID}/resolve", h.resolve)
}

// MountAdminRoutes registers the admin alert log.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/", h.listAll)
}

type raiseAlertRequest struct {
	Category string `json:"category" validate:"required,oneof=sos fire medical intruder other"`
	Message  string `json:"message" validate:"max=500"`
}

func (h *Handler) raise(w http.ResponseWriter, r *http.Request) {
	apartmentID, flatID, ok := shared.ClientResidence(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	var req raiseAlertRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	auth := shared.AuthFromContext(r.Context())
	alert, err := h.service.Raise(r.Context(), apartmentID, flatID, auth.Principal.PrincipalID(), req.Category, req.Message)
	if err != nil {
		h.logger.Error("raise alert", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, alert)
}

func (h *Handler) listOpen(w http.ResponseWriter, r *http.Request) {
	apartmentID, ok := shared.GuardApartment(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	h.list(w, r, apartmentID, true)
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	apartmentID, ok := shared.AdminApartment(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	h.list(w, r, apartmentID, r.URL.Query().Get("open") == "true")
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, apartmentID uuid.UUID, openOnly bool) {
	page, perPage := shared.PageParams(r)
	alerts, total, err := h.service.List(r.Context(), apartmentID, openOnly, perPage, (page-1)*perPage)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"alerts":     alerts,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	apartmentID, ok := shared.GuardApartment(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	alertID, err := uuid.Parse(chi.URLParam(r, "alertID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	auth := shared.AuthFromContext(r.Context())
	alert, err := h.service.Resolve(r.Context(), apartmentID, alertID, auth.Principal.PrincipalID())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, alert)
}
