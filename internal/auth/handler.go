package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/societydesk/societydesk/internal/platform/httpx"
	"github.com/societydesk/societydesk/internal/shared"
	"github.com/societydesk/societydesk/internal/token"
)

// Handler exposes the credential endpoints for one panel.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountStaffRoutes registers password-based routes for a staff panel.
// Callers mount login/refresh/reset Public and logout AuthenticatedOnly.
func (h *Handler) MountStaffRoutes(public, authed chi.Router, kind token.Kind) {
	public.Post("/login", h.staffLogin(kind))
	public.Post("/refresh", h.staffRefresh(kind))
	public.Post("/password/reset", h.passwordReset(kind))
	public.Post("/password/confirm", h.passwordConfirm(kind))
	authed.Post("/logout", h.staffLogout(kind))
}

// MountClientRoutes registers the resident OTP routes.
func (h *Handler) MountClientRoutes(public, authed chi.Router) {
	public.Post("/otp/request", h.otpRequest)
	public.Post("/otp/verify", h.otpVerify)
	public.Post("/refresh", h.clientRefresh)
	authed.Post("/logout", h.clientLogout)
}

type staffLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) staffLogin(kind token.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req staffLoginRequest
		if err := httpx.Bind(r, &req); err != nil {
			httpx.RespondError(w, err)
			return
		}
		pair, err := h.service.LoginStaff(r.Context(), kind, req.Email, req.Password)
		if err != nil {
			h.logger.Warn("staff login failed", slog.String("kind", string(kind)), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, pair)
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *Handler) staffRefresh(kind token.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := httpx.Bind(r, &req); err != nil {
			httpx.RespondError(w, err)
			return
		}
		pair, err := h.service.RefreshStaff(r.Context(), kind, req.RefreshToken)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, pair)
	}
}

func (h *Handler) staffLogout(kind token.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := shared.AuthFromContext(r.Context())
		if auth == nil {
			httpx.RespondError(w, httpx.ErrUnauthenticated)
			return
		}
		if err := h.service.LogoutStaff(r.Context(), kind, auth.Principal.PrincipalID(), auth.RawToken); err != nil {
			h.logger.Error("staff logout", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
	}
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) passwordReset(kind token.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req passwordResetRequest
		if err := httpx.Bind(r, &req); err != nil {
			httpx.RespondError(w, err)
			return
		}
		if err := h.service.RequestPasswordReset(r.Context(), kind, req.Email); err != nil {
			h.logger.Error("password reset request", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		// Same response whether or not the address exists.
		httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "reset_sent"})
	}
}

type passwordConfirmRequest struct {
	Email       string `json:"email" validate:"required,email"`
	ResetToken  string `json:"reset_token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func (h *Handler) passwordConfirm(kind token.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req passwordConfirmRequest
		if err := httpx.Bind(r, &req); err != nil {
			httpx.RespondError(w, err)
			return
		}
		if err := h.service.ConfirmPasswordReset(r.Context(), kind, req.Email, req.ResetToken, req.NewPassword); err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "password_changed"})
	}
}

type otpRequestRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
}

func (h *Handler) otpRequest(w http.ResponseWriter, r *http.Request) {
	var req otpRequestRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.RequestOTP(r.Context(), req.Phone); err != nil {
		h.logger.Error("otp request", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "otp_sent"})
}

type otpVerifyRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

func (h *Handler) otpVerify(w http.ResponseWriter, r *http.Request) {
	var req otpVerifyRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	pair, err := h.service.VerifyOTP(r.Context(), req.Phone, req.Code)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pair)
}

func (h *Handler) clientRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	pair, err := h.service.RefreshClient(r.Context(), req.RefreshToken)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pair)
}

func (h *Handler) clientLogout(w http.ResponseWriter, r *http.Request) {
	auth := shared.AuthFromContext(r.Context())
	if auth == nil {
		httpx.RespondError(w, httpx.ErrUnauthenticated)
		return
	}
	var req refreshRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.LogoutClient(r.Context(), auth.Principal.PrincipalID(), req.RefreshToken); err != nil {
		h.logger.Error("client logout", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
