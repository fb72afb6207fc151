// Package changepassword implements the authenticated password-change
// endpoint. A successful change re-authenticates the user, rotating the
// session cookie pair.
package changepassword

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/promptvault/promptvault/internal/http/cookies"
	"github.com/promptvault/promptvault/internal/http/middlewarectx"
	"github.com/promptvault/promptvault/internal/http/response"
	"github.com/promptvault/promptvault/internal/lib/sl"
	"github.com/promptvault/promptvault/internal/models"
	"github.com/promptvault/promptvault/internal/services/session"
)

// Request is the password-change input.
type Request struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// Service is the session operation the handler delegates to.
type Service interface {
	ChangePassword(ctx context.Context, user *models.User, currentPassword, newPassword string) ([]*http.Cookie, error)
}

// Handler handles password-change requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates the change-password handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Change password
// @Description Verifies the current password, sets the new one and rotates the session cookies.
// @Tags User
// @Accept json
// @Produce json
// @Param request body Request true "Current and new password"
// @Success 200 {object} response.Response "Password changed"
// @Failure 400 {object} response.ErrorResponse "Wrong current password or weak new password"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /user/change-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.changepassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user := middlewarectx.CurrentUser(r.Context())
	if user == nil {
		log.Info("anonymous request")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("not authenticated"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	effects, err := h.service.ChangePassword(r.Context(), user, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, session.ErrWrongPassword) {
			log.Info("wrong current password", slog.String("email", user.Email))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("current password is incorrect"))
			return
		}
		log.Error("password change failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to change password"))
		return
	}

	cookies.Apply(w, effects)
	log.Info("password changed", slog.String("email", user.Email))
	render.JSON(w, r, response.OKWithData(map[string]any{"message": "password changed"}))
}
