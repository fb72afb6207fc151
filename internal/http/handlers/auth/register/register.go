// Package register implements the HTTP handler for account creation. The
// account is created in the CMS and the new user is logged straight in,
// so a successful registration responds with the user record and a fresh
// cookie pair.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/promptvault/promptvault/internal/cms"
	"github.com/promptvault/promptvault/internal/http/cookies"
	"github.com/promptvault/promptvault/internal/http/response"
	"github.com/promptvault/promptvault/internal/lib/sl"
	"github.com/promptvault/promptvault/internal/models"
)

// Request is the registration input.
type Request struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// Service is the session operation the handler delegates to.
type Service interface {
	Register(ctx context.Context, email, password string, firstName, lastName *string) (*models.User, []*http.Cookie, error)
}

// Handler handles registration requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates the register handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary User registration
// @Description Creates an account and logs the user in, setting the session cookies.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Account data"
// @Success 200 {object} response.Response "Registered and logged in"
// @Failure 400 {object} response.ErrorResponse "Validation or CMS rejection"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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

	user, effects, err := h.service.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, cms.ErrRegistrationFailed) {
			log.Info("registration rejected", slog.String("email", req.Email), sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(registrationMessage(err)))
			return
		}
		log.Error("registration failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to register"))
		return
	}

	cookies.Apply(w, effects)
	log.Info("user registered", slog.String("email", req.Email))
	render.JSON(w, r, response.OKWithData(map[string]any{"user": user}))
}

// registrationMessage strips the wrapping and keeps the CMS message where
// one was attached, falling back to a generic text.
func registrationMessage(err error) string {
	msg := err.Error()
	if idx := strings.LastIndex(msg, cms.ErrRegistrationFailed.Error()); idx >= 0 {
		detail := strings.TrimPrefix(msg[idx+len(cms.ErrRegistrationFailed.Error()):], ": ")
		if detail != "" {
			return detail
		}
	}
	return "registration failed"
}
