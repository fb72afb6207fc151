// Package logout implements the HTTP handler ending the browser session.
// Logout is best-effort: the CMS-side token invalidation may fail, the
// cookies are cleared and a success response is returned regardless.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/promptvault/promptvault/internal/http/cookies"
	"github.com/promptvault/promptvault/internal/http/response"
)

// Service is the session operation the handler delegates to.
type Service interface {
	Logout(ctx context.Context, refreshToken string) []*http.Cookie
}

// Handler handles logout requests.
type Handler struct {
	log     *slog.Logger
	service Service
	jar     *cookies.Jar
}

// New creates the logout handler.
func New(log *slog.Logger, service Service, jar *cookies.Jar) *Handler {
	return &Handler{
		log:     log,
		service: service,
		jar:     jar,
	}
}

// ServeHTTP godoc
// @Summary User logout
// @Description Invalidates the refresh token best-effort and clears both session cookies. Always succeeds.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response "Logged out"
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	_, refresh := h.jar.Read(r)
	effects := h.service.Logout(r.Context(), refresh)
	cookies.Apply(w, effects)

	log.Info("session cleared")
	render.JSON(w, r, response.OKWithData(map[string]any{"message": "logged out"}))
}
