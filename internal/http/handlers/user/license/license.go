// Package license implements the entitlement-view endpoint. It always
// responds 200; anonymous visitors get the empty view.
package license

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/promptvault/promptvault/internal/http/middlewarectx"
	"github.com/promptvault/promptvault/internal/models"
)

// Service builds the entitlement view.
type Service interface {
	License(user *models.User) models.License
}

// Handler handles license requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates the license handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Entitlement view
// @Description Returns the premium entitlement of the current visitor. Always 200, even unauthenticated.
// @Tags User
// @Produce json
// @Success 200 {object} models.License "Entitlement"
// @Router /user/license [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.license"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user := middlewarectx.CurrentUser(r.Context())
	log.Info("license view", slog.Bool("authenticated", user != nil))
	render.JSON(w, r, h.service.License(user))
}
