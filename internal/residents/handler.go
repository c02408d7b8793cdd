package residents

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/societydesk/societydesk/internal/platform/httpx"
	"github.com/societydesk/societydesk/internal/shared"
)

// Handler exposes the admin resident directory.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, repo *Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

// MountAdminRoutes registers the directory routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.add)
	r.Delete("/{membershipID}", h.remove)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	apartmentID, ok := shared.AdminApartment(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	page, perPage := shared.PageParams(r)
	residents, total, err := h.repo.List(r.Context(), apartmentID, perPage, (page-1)*perPage)
	if err != nil {
		h.logger.Error("list residents", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"residents":  residents,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

type addResidentRequest struct {
	FlatID  uuid.UUID `json:"flat_id" validate:"required"`
	Name    string    `json:"name" validate:"required,max=200"`
	Phone   string    `json:"phone" validate:"required,e164"`
	IsOwner bool      `json:"is_owner"`
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	apartmentID, ok := shared.AdminApartment(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	var req addResidentRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	resident, err := h.repo.AddToFlat(r.Context(), apartmentID, req.FlatID, req.Name, req.Phone, req.IsOwner)
	if err != nil {
		h.logger.Error("add resident", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, resident)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	apartmentID, ok := shared.AdminApartment(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	membershipID, err := uuid.Parse(chi.URLParam(r, "membershipID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.repo.Remove(r.Context(), apartmentID, membershipID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
