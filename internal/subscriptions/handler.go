package subscriptions

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/societydesk/societydesk/internal/platform/httpx"
)

// Handler exposes plan and subscription endpoints for the platform operator.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, repo *Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

// MountPlanRoutes registers the plan catalogue routes.
func (h *Handler) MountPlanRoutes(r chi.Router) {
	r.Get("/", h.listPlans)
	r.Post("/", h.createPlan)
	r.Delete("/{planID}", h.archivePlan)
}

// MountApartmentRoutes registers the per-apartment subscription routes.
// The router is expected to carry an apartmentID URL parameter.
func (h *Handler) MountApartmentRoutes(r chi.Router) {
	r.Get("/", h.current)
	r.Put("/", h.assign)
}

func (h *Handler) listPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.repo.ListPlans(r.Context())
	if err != nil {
		h.logger.Error("list plans", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"plans": plans})
}

type createPlanRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	PriceCents int64  `json:"price_cents" validate:"gte=0"`
	Currency   string `json:"currency" validate:"required,iso4217"`
	MaxFlats   int    `json:"max_flats" validate:"gt=0"`
	MaxGuards  int    `json:"max_guards" validate:"gt=0"`
}

func (h *Handler) createPlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	plan, err := h.repo.CreatePlan(r.Context(), Plan{
		ID:         uuid.New(),
		Name:       req.Name,
		PriceCents: req.PriceCents,
		Currency:   req.Currency,
		MaxFlats:   req.MaxFlats,
		MaxGuards:  req.MaxGuards,
	})
	if err != nil {
		h.logger.Error("create plan", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, plan)
}

func (h *Handler) archivePlan(w http.ResponseWriter, r *http.Request) {
	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.repo.ArchivePlan(r.Context(), planID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

type assignPlanRequest struct {
	PlanID    uuid.UUID  `json:"plan_id" validate:"required"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	apartmentID, err := uuid.Parse(chi.URLParam(r, "apartmentID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req assignPlanRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	sub, err := h.repo.Assign(r.Context(), apartmentID, req.PlanID, req.ExpiresAt)
	if err != nil {
		h.logger.Error("assign plan", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sub)
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	apartmentID, err := uuid.Parse(chi.URLParam(r, "apartmentID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	sub, err := h.repo.Current(r.Context(), apartmentID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sub)
}
