package apartments

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/societydesk/societydesk/internal/platform/httpx"
	"github.com/societydesk/societydesk/internal/shared"
)

// Handler exposes apartment and flat management endpoints.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, repo *Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

// MountSuperAdminRoutes registers the platform-wide apartment routes.
func (h *Handler) MountSuperAdminRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{apartmentID}", h.get)
	r.Delete("/{apartmentID}", h.archive)
	r.Get("/{apartmentID}/flats", h.listFlats)
	r.Post("/{apartmentID}/flats", h.createFlat)
}

// MountAdminRoutes registers the per-apartment flat routes, scoped to the
// admin's own apartment.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/", h.listOwnFlats)
	r.Post("/", h.createOwnFlat)
	r.Delete("/{flatID}", h.archiveOwnFlat)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	includeArchived := r.URL.Query().Get("archived") == "true"
	apartments, total, err := h.repo.ListApartments(r.Context(), includeArchived, perPage, (page-1)*perPage)
	if err != nil {
		h.logger.Error("list apartments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"apartments": apartments,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

type createApartmentRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address" validate:"required,max=500"`
	City    string `json:"city" validate:"required,max=100"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createApartmentRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	apartment, err := h.repo.CreateApartment(r.Context(), req.Name, req.Address, req.City)
	if err != nil {
		h.logger.Error("create apartment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, apartment)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "apartmentID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	apartment, err := h.repo.GetApartment(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, apartment)
}

func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "apartmentID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.repo.ArchiveApartment(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

func (h *Handler) listFlats(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "apartmentID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	flats, err := h.repo.ListFlats(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"flats": flats})
}

type createFlatRequest struct {
	Block  string `json:"block" validate:"max=20"`
	Number string `json:"number" validate:"required,max=20"`
	Floor  int    `json:"floor" validate:"gte=-5,lte=200"`
}

func (h *Handler) createFlat(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "apartmentID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	h.createFlatIn(w, r, id)
}

func (h *Handler) createFlatIn(w http.ResponseWriter, r *http.Request, apartmentID uuid.UUID) {
	var req createFlatRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	flat, err := h.repo.CreateFlat(r.Context(), apartmentID, req.Block, req.Number, req.Floor)
	if err != nil {
		h.logger.Error("create flat", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, flat)
}

func (h *Handler) listOwnFlats(w http.ResponseWriter, r *http.Request) {
	apartmentID, ok := shared.AdminApartment(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	flats, err := h.repo.ListFlats(r.Context(), apartmentID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"flats": flats})
}

func (h *Handler) createOwnFlat(w http.ResponseWriter, r *http.Request) {
	apartmentID, ok := shared.AdminApartment(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	h.createFlatIn(w, r, apartmentID)
}

func (h *Handler) archiveOwnFlat(w http.ResponseWriter, r *http.Request) {
	apartmentID, ok := shared.AdminApartment(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	flatID, err := uuid.Parse(chi.URLParam(r, "flatID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.repo.ArchiveFlat(r.Context(), apartmentID, flatID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "archived"})
}
