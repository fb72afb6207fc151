// Package login implements the HTTP handler for user authentication.
//
// It defines the Request structure for the input data, decodes and
// validates the JSON body and delegates the login operation to the session
// service. On success the user record is returned and the session cookies
// are set; on failure the matching HTTP error response is produced.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/promptvault/promptvault/internal/cms"
	"github.com/promptvault/promptvault/internal/http/cookies"
	"github.com/promptvault/promptvault/internal/http/response"
	"github.com/promptvault/promptvault/internal/lib/sl"
	"github.com/promptvault/promptvault/internal/models"
)

// Request is the login input.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Service is the session operation the handler delegates to.
type Service interface {
	Login(ctx context.Context, email, password string) (*models.User, []*http.Cookie, error)
}

// Handler handles login requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates the login handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary User login
// @Description Authenticates by email and password. Sets the access and refresh cookies and returns the user record.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "User credentials"
// @Success 200 {object} response.Response "Authenticated"
// @Failure 400 {object} response.ErrorResponse "Invalid body or missing fields"
// @Failure 401 {object} response.ErrorResponse "Invalid credentials"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	user, effects, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, cms.ErrInvalidCredentials) {
			log.Info("login rejected", slog.String("email", req.Email))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid credentials"))
			return
		}
		log.Error("login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("login failed"))
		return
	}

	cookies.Apply(w, effects)
	log.Info("login success", slog.String("email", req.Email))
	render.JSON(w, r, response.OKWithData(map[string]any{"user": user}))
}
