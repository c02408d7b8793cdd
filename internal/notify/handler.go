package notify

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/societydesk/societydesk/internal/platform/httpx"
	"github.com/societydesk/societydesk/internal/shared"
)

// Handler exposes device-token registration for the client and guard panels.
type Handler struct {
	logger *slog.Logger
	store  Store
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, store Store) *Handler {
	return &Handler{logger: logger, store: store}
}

// MountRoutes registers device routes; callers gate them AuthenticatedOnly.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/devices", h.register)
	r.Delete("/devices", h.unregister)
}

type registerDeviceRequest struct {
	Token    string `json:"token" validate:"required,max=512"`
	Platform string `json:"platform" validate:"required,oneof=android ios web"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	auth := shared.AuthFromContext(r.Context())
	if auth == nil {
		httpx.RespondError(w, httpx.ErrUnauthenticated)
		return
	}
	var req registerDeviceRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	err := h.store.Register(r.Context(), DeviceToken{
		ID:            uuid.New(),
		PrincipalID:   auth.Principal.PrincipalID(),
		PrincipalKind: auth.Principal.Kind(),
		Token:         req.Token,
		Platform:      req.Platform,
	})
	if err != nil {
		h.logger.Error("register device", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

type unregisterDeviceRequest struct {
	Token string `json:"token" validate:"required,max=512"`
}

func (h *Handler) unregister(w http.ResponseWriter, r *http.Request) {
	auth := shared.AuthFromContext(r.Context())
	if auth == nil {
		httpx.RespondError(w, httpx.ErrUnauthenticated)
		return
	}
	var req unregisterDeviceRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.store.Unregister(r.Context(), auth.Principal.PrincipalID(), req.Token); err != nil {
		h.logger.Error("unregister device", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "unregistered"})
}
