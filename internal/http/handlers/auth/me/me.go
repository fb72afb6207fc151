// Package me implements the HTTP handler returning the current user. The
// authoritative resolution already happened in the session middleware;
// this handler only reads its result from the request context.
package me

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/promptvault/promptvault/internal/http/middlewarectx"
	"github.com/promptvault/promptvault/internal/http/response"
)

// Handler handles current-user requests.
type Handler struct {
	log *slog.Logger
}

// New creates the me handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Current user
// @Description Returns the user resolved from the session cookies.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response "Current user"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

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

	render.JSON(w, r, response.OKWithData(map[string]any{"user": user}))
}
