package guests

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/societydesk/societydesk/internal/platform/httpx"
	"github.com/societydesk/societydesk/internal/shared"
)

// Handler exposes guest endpoints for residents and the gate desk.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountClientRoutes registers the resident-facing guest routes.
func (h *Handler) MountClientRoutes(r chi.Router) {
	r.Get("/", h.listMine)
	r.Post("/", h.preapprove)
}

// MountGuardRoutes registers the gate desk routes.
func (h *Handler) MountGuardRoutes(r chi.Router) {
	r.Get("/expected", h.listExpected)
	r.Post("/checkin", h.checkIn)
	r.Post("/{guestID}/checkout", h.checkOut)
}

type preapproveRequest struct {
	Name       string    `json:"name" validate:"required,max=200"`
	Phone      string    `json:"phone" validate:"omitempty,e164"`
	ExpectedAt time.Time `json:"expected_at" validate:"required"`
}

func (h *Handler) preapprove(w http.ResponseWriter, r *http.Request) {
	apartmentID, flatID, ok := shared.ClientResidence(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	var req preapproveRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	auth := shared.AuthFromContext(r.Context())
	guest, err := h.service.Preapprove(r.Context(), apartmentID, flatID, auth.Principal.PrincipalID(), req.Name, req.Phone, req.ExpectedAt)
	if err != nil {
		h.logger.Error("preapprove guest", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, guest)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	_, flatID, ok := shared.ClientResidence(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	page, perPage := shared.PageParams(r)
	guests, total, err := h.service.ListForFlat(r.Context(), flatID, perPage, (page-1)*perPage)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"guests":     guests,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) listExpected(w http.ResponseWriter, r *http.Request) {
	apartmentID, ok := shared.GuardApartment(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	page, perPage := shared.PageParams(r)
	guests, total, err := h.service.ListExpected(r.Context(), apartmentID, perPage, (page-1)*perPage)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"guests":     guests,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

type checkInRequest struct {
	PassCode string `json:"pass_code" validate:"required,len=6,numeric"`
}

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	apartmentID, ok := shared.GuardApartment(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	var req checkInRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	guest, err := h.service.CheckIn(r.Context(), apartmentID, req.PassCode)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, guest)
}

func (h *Handler) checkOut(w http.ResponseWriter, r *http.Request) {
	apartmentID, ok := shared.GuardApartment(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	guestID, err := uuid.Parse(chi.URLParam(r, "guestID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	guest, err := h.service.CheckOut(r.Context(), apartmentID, guestID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, guest)
}
