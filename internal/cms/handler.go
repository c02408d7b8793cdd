package cms

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/societydesk/societydesk/internal/platform/httpx"
)

// Handler exposes the operator page console and the public page endpoint.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, repo *Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

// MountSuperAdminRoutes registers the page management routes.
func (h *Handler) MountSuperAdminRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{pageID}", h.update)
	r.Delete("/{pageID}", h.remove)
}

// MountPublicRoutes registers the unauthenticated published-page endpoint.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/{slug}", h.bySlug)
}

type pageRequest struct {
	Title     string `json:"title" validate:"required,max=200"`
	Body      string `json:"body" validate:"required"`
	Published bool   `json:"published"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	title := NormalizeTitle(req.Title)
	page, err := h.repo.Create(r.Context(), Page{
		ID:        uuid.New(),
		Slug:      Slugify(title),
		Title:     title,
		Body:      req.Body,
		Published: req.Published,
	})
	if err != nil {
		h.logger.Error("create page", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, page)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	pageID, err := uuid.Parse(chi.URLParam(r, "pageID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req pageRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	page, err := h.repo.Update(r.Context(), pageID, NormalizeTitle(req.Title), req.Body, req.Published)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	pageID, err := uuid.Parse(chi.URLParam(r, "pageID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.repo.Delete(r.Context(), pageID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	pages, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("list pages", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"pages": pages})
}

func (h *Handler) bySlug(w http.ResponseWriter, r *http.Request) {
	page, err := h.repo.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}
