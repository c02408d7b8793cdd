package documents

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/societydesk/societydesk/internal/platform/httpx"
	"github.com/societydesk/societydesk/internal/shared"
)

const (
	maxUploadBytes  = 20 << 20
	downloadExpiry  = 15 * time.Minute
	uploadFormField = "file"
)

var allowedContentTypes = map[string]struct{}{
	"application/pdf": {},
	"image/png":       {},
	"image/jpeg":      {},
	"text/plain":      {},
}

// Handler exposes document upload and download endpoints.
type Handler struct {
	logger  *slog.Logger
	repo    *Repository
	storage *ObjectStorage
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, repo *Repository, storage *ObjectStorage) *Handler {
	return &Handler{logger: logger, repo: repo, storage: storage}
}

// MountAdminRoutes registers the management routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/", h.listAdmin)
	r.Post("/", h.upload)
	r.Get("/{documentID}/download", h.downloadAdmin)
	r.Delete("/{documentID}", h.remove)
}

// MountClientRoutes registers the resident read-only routes.
func (h *Handler) MountClientRoutes(r chi.Router) {
	r.Get("/", h.listClient)
	r.Get("/{documentID}/download", h.downloadClient)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	apartmentID, ok := shared.AdminApartment(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.RespondError(w, fmt.Errorf("documents: body too large: %w", httpx.ErrValidation))
		return
	}
	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("documents: missing file: %w", httpx.ErrValidation))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if _, ok := allowedContentTypes[contentType]; !ok {
		httpx.RespondError(w, fmt.Errorf("documents: unsupported type %s: %w", contentType, httpx.ErrValidation))
		return
	}
	title := r.FormValue("title")
	if title == "" {
		title = header.Filename
	}
	category := Category(r.FormValue("category"))
	switch category {
	case CategoryNotice, CategoryCircular, CategoryBylaw:
	default:
		category = CategoryOther
	}

	auth := shared.AuthFromContext(r.Context())
	doc := Document{
		ID:          uuid.New(),
		ApartmentID: apartmentID,
		UploadedBy:  auth.Principal.PrincipalID(),
		Category:    category,
		Title:       title,
		FileName:    header.Filename,
		ContentType: contentType,
		SizeBytes:   header.Size,
	}
	doc.ObjectKey = fmt.Sprintf("%s/%s/%s", apartmentID, doc.ID, header.Filename)

	if err := h.storage.Put(r.Context(), doc.ObjectKey, file, header.Size, contentType); err != nil {
		h.logger.Error("upload document", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	saved, err := h.repo.Create(r.Context(), doc)
	if err != nil {
		h.logger.Error("save document", slog.Any("error", err))
		// Orphaned blob, best effort cleanup.
		if rmErr := h.storage.Remove(r.Context(), doc.ObjectKey); rmErr != nil {
			h.logger.Warn("orphan cleanup", slog.Any("error", rmErr))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, saved)
}

func (h *Handler) listAdmin(w http.ResponseWriter, r *http.Request) {
	apartmentID, ok := shared.AdminApartment(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	h.list(w, r, apartmentID)
}

func (h *Handler) listClient(w http.ResponseWriter, r *http.Request) {
	apartmentID, _, ok := shared.ClientResidence(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	h.list(w, r, apartmentID)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, apartmentID uuid.UUID) {
	page, perPage := shared.PageParams(r)
	docs, total, err := h.repo.List(r.Context(), apartmentID, Category(r.URL.Query().Get("category")), perPage, (page-1)*perPage)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"documents":  docs,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) downloadAdmin(w http.ResponseWriter, r *http.Request) {
	apartmentID, ok := shared.AdminApartment(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	h.download(w, r, apartmentID)
}

func (h *Handler) downloadClient(w http.ResponseWriter, r *http.Request) {
	apartmentID, _, ok := shared.ClientResidence(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	h.download(w, r, apartmentID)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request, apartmentID uuid.UUID) {
	documentID, err := uuid.Parse(chi.URLParam(r, "documentID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	doc, err := h.repo.Get(r.Context(), apartmentID, documentID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	link, err := h.storage.PresignedURL(r.Context(), doc.ObjectKey, doc.FileName, downloadExpiry)
	if err != nil {
		h.logger.Error("presign document", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"url": link})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	apartmentID, ok := shared.AdminApartment(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	documentID, err := uuid.Parse(chi.URLParam(r, "documentID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	key, err := h.repo.Delete(r.Context(), apartmentID, documentID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.storage.Remove(r.Context(), key); err != nil {
		h.logger.Warn("remove blob", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
