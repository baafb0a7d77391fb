package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/nattawatz/blog-api/internal/config"
	"github.com/nattawatz/blog-api/internal/http/respond"
	"github.com/nattawatz/blog-api/internal/middleware"
	"github.com/nattawatz/blog-api/internal/models/dto"
	"github.com/nattawatz/blog-api/internal/service"
	"github.com/nattawatz/blog-api/internal/storage"
)

// UserHandler owns the user-facing routes behind authentication.
type UserHandler struct {
	svc *service.AuthService
	cfg *config.Config
	log *logrus.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(svc *service.AuthService, cfg *config.Config, log *logrus.Logger) *UserHandler {
	return &UserHandler{svc: svc, cfg: cfg, log: log}
}

// Current handles GET /user/current for the authenticated identity.
func (h *UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.log.Error("current user handler reached without an authenticated identity")
		respond.ServerError(w, nil, false)
		return
	}

	user, err := h.svc.CurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, respond.KindNotFound, "User not found")
			return
		}
		h.log.WithError(err).Error("error while getting current user")
		respond.ServerError(w, err, !h.cfg.IsProduction())
		return
	}

	respond.JSON(w, http.StatusOK, dto.CurrentUserResponse{User: user})
}
