// Package read implements the single-prompt endpoint with freemium
// gating: unknown prompts respond 404, prompts outside the visitor's tier
// respond 403.
package read

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/promptvault/promptvault/internal/http/middlewarectx"
	"github.com/promptvault/promptvault/internal/http/response"
	"github.com/promptvault/promptvault/internal/lib/sl"
	"github.com/promptvault/promptvault/internal/models"
)

// Policy decides access and position for a prompt id.
type Policy interface {
	ItemIndex(ctx context.Context, id int) (int, error)
	CanAccessItem(ctx context.Context, user *models.User, id int) bool
}

// Handler handles single-prompt requests.
type Handler struct {
	log    *slog.Logger
	policy Policy
}

// New creates the read handler.
func New(log *slog.Logger, policy Policy) *Handler {
	return &Handler{log: log, policy: policy}
}

// ServeHTTP godoc
// @Summary Read a prompt
// @Description Returns the prompt when the current visitor may view it.
// @Tags Prompts
// @Produce json
// @Param id path int true "Prompt id"
// @Success 200 {object} response.Response "Prompt"
// @Failure 400 {object} response.ErrorResponse "Bad id"
// @Failure 403 {object} response.ErrorResponse "Upgrade required"
// @Failure 404 {object} response.ErrorResponse "Unknown prompt"
// @Router /prompts/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prompt.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	user := middlewarectx.CurrentUser(r.Context())

	index, err := h.policy.ItemIndex(r.Context(), id)
	if err != nil {
		log.Error("prompt lookup failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read prompt"))
		return
	}
	if index < 0 {
		log.Info("unknown prompt", slog.Int("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("prompt not found"))
		return
	}

	if !h.policy.CanAccessItem(r.Context(), user, id) {
		log.Info("prompt locked for visitor", slog.Int("id", id))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("upgrade required"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":       id,
		"position": index,
	}))
}
