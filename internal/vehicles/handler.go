package vehicles

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/societydesk/societydesk/internal/platform/httpx"
	"github.com/societydesk/societydesk/internal/shared"
)

// Handler exposes vehicle registry endpoints.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, repo *Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

// MountClientRoutes registers the resident-facing registry routes.
func (h *Handler) MountClientRoutes(r chi.Router) {
	r.Get("/", h.listMine)
	r.Post("/", h.register)
	r.Delete("/{vehicleID}", h.remove)
}

// MountGuardRoutes registers the gate plate lookup.
func (h *Handler) MountGuardRoutes(r chi.Router) {
	r.Get("/lookup", h.lookup)
}

type registerVehicleRequest struct {
	Plate string `json:"plate" validate:"required,max=20"`
	Kind  string `json:"kind" validate:"required,oneof=car motorcycle bicycle other"`
	Model string `json:"model" validate:"max=100"`
	Color string `json:"color" validate:"max=50"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	apartmentID, flatID, ok := shared.ClientResidence(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	var req registerVehicleRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	auth := shared.AuthFromContext(r.Context())
	vehicle, err := h.repo.Create(r.Context(), Vehicle{
		ID:          uuid.New(),
		ApartmentID: apartmentID,
		FlatID:      flatID,
		ClientID:    auth.Principal.PrincipalID(),
		Plate:       req.Plate,
		Kind:        req.Kind,
		Model:       req.Model,
		Color:       req.Color,
	})
	if err != nil {
		h.logger.Error("register vehicle", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, vehicle)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	_, flatID, ok := shared.ClientResidence(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	vehicles, err := h.repo.ListForFlat(r.Context(), flatID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"vehicles": vehicles})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := shared.ClientResidence(r.Context()); !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	vehicleID, err := uuid.Parse(chi.URLParam(r, "vehicleID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	auth := shared.AuthFromContext(r.Context())
	if err := h.repo.Delete(r.Context(), auth.Principal.PrincipalID(), vehicleID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	apartmentID, ok := shared.GuardApartment(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	plate := r.URL.Query().Get("plate")
	if plate == "" {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	vehicle, err := h.repo.FindByPlate(r.Context(), apartmentID, plate)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, vehicle)
}
