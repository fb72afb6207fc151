// Package refresh implements the explicit token-rotation endpoint. The
// refresh cookie is exchanged for a new pair; when the exchange fails the
// session is terminated and both cookies cleared.
package refresh

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/promptvault/promptvault/internal/http/cookies"
	"github.com/promptvault/promptvault/internal/http/response"
	"github.com/promptvault/promptvault/internal/lib/sl"
)

// Service is the session operation the handler delegates to.
type Service interface {
	Rotate(ctx context.Context, refreshToken string) ([]*http.Cookie, error)
}

// Handler handles token-refresh requests.
type Handler struct {
	log     *slog.Logger
	service Service
	jar     *cookies.Jar
}

// New creates the refresh handler.
func New(log *slog.Logger, service Service, jar *cookies.Jar) *Handler {
	return &Handler{
		log:     log,
		service: service,
		jar:     jar,
	}
}

// ServeHTTP godoc
// @Summary Rotate the session tokens
// @Description Exchanges the refresh cookie for a new token pair. On failure the session cookies are cleared.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response "Tokens rotated"
// @Failure 401 {object} response.ErrorResponse "Refresh failed"
// @Router /auth/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	_, refresh := h.jar.Read(r)
	effects, err := h.service.Rotate(r.Context(), refresh)
	cookies.Apply(w, effects)
	if err != nil {
		if effects == nil {
			// Transient failure: the session is left untouched.
			log.Error("refresh failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("refresh failed"))
			return
		}
		log.Info("refresh rejected", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("please log in again"))
		return
	}

	log.Info("tokens rotated")
	render.JSON(w, r, response.OKWithData(map[string]any{"message": "tokens refreshed"}))
}
