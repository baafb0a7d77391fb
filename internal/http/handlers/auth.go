package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/nattawatz/blog-api/internal/config"
	"github.com/nattawatz/blog-api/internal/http/respond"
	"github.com/nattawatz/blog-api/internal/models/dto"
	"github.com/nattawatz/blog-api/internal/service"
	"github.com/nattawatz/blog-api/internal/storage"
)

// RefreshCookie is the cookie the refresh token travels in.
const RefreshCookie = "refreshToken"

// AuthHandler owns the register/login/refresh/logout endpoints.
type AuthHandler struct {
	svc *service.AuthService
	cfg *config.Config
	log *logrus.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc *service.AuthService, cfg *config.Config, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, cfg: cfg, log: log}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.KindValidation, "invalid JSON payload")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validateCredentials(req.Email, req.Password); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.KindValidation, err.Error())
		return
	}

	session, err := h.svc.Register(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdminNotAllowed):
			respond.Error(w, http.StatusForbidden, respond.KindAuthorization, "You cannot register as an admin")
		case errors.Is(err, service.ErrInvalidRole):
			respond.Error(w, http.StatusBadRequest, respond.KindValidation, "role must be either user or admin")
		case errors.Is(err, storage.ErrAlreadyExists):
			respond.Error(w, http.StatusConflict, respond.KindValidation, "email is already registered")
		default:
			h.log.WithError(err).Error("error during user registration")
			respond.ServerError(w, err, !h.cfg.IsProduction())
		}
		return
	}

	h.setRefreshCookie(w, session.RefreshToken)
	respond.JSON(w, http.StatusCreated, dto.AuthResponse{
		User: dto.PublicUser{
			Username: session.User.Username,
			Email:    session.User.Email,
			Role:     session.User.Role,
		},
		AccessToken: session.AccessToken,
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.KindValidation, "invalid JSON payload")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, respond.KindValidation, "email and password are required")
		return
	}

	session, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, respond.KindAuthentication, "Invalid email or password")
			return
		}
		h.log.WithError(err).Error("error during user login")
		respond.ServerError(w, err, !h.cfg.IsProduction())
		return
	}

	h.setRefreshCookie(w, session.RefreshToken)
	respond.JSON(w, http.StatusOK, dto.AuthResponse{
		User: dto.PublicUser{
			Username: session.User.Username,
			Email:    session.User.Email,
			Role:     session.User.Role,
		},
		AccessToken: session.AccessToken,
	})
}

// RefreshToken handles POST /auth/refresh-token. The token arrives via
// the refresh cookie, never the request body.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var refreshToken string
	if c, err := r.Cookie(RefreshCookie); err == nil {
		refreshToken = c.Value
	}

	accessToken, err := h.svc.Refresh(r.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshExpired):
			respond.Error(w, http.StatusUnauthorized, respond.KindAuthentication, "Refresh token has expired, please login again")
		case errors.Is(err, service.ErrRefreshInvalid):
			respond.Error(w, http.StatusUnauthorized, respond.KindAuthentication, "Invalid refresh token")
		default:
			h.log.WithError(err).Error("error during refresh token")
			respond.ServerError(w, err, !h.cfg.IsProduction())
		}
		return
	}

	respond.JSON(w, http.StatusOK, dto.RefreshResponse{AccessToken: accessToken})
}

// Logout handles POST /auth/logout. It revokes the refresh token record
// and clears the cookie; both steps are idempotent.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(RefreshCookie); err == nil && c.Value != "" {
		if err := h.svc.Logout(r.Context(), c.Value); err != nil {
			h.log.WithError(err).Error("error during logout")
			respond.ServerError(w, err, !h.cfg.IsProduction())
			return
		}
	}
	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(h.cfg.RefreshTTL),
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return errors.New("a valid email is required")
	}
	if utf8.RuneCountInString(password) < 8 || !utf8.ValidString(password) {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
