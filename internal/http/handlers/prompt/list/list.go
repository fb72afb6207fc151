// Package list implements the prompt-catalog endpoint. Prompts come back
// in canonical ordering with a per-item accessible flag computed for the
// current visitor, so the UI can render locked cards without a second
// round trip.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/promptvault/promptvault/internal/http/middlewarectx"
	"github.com/promptvault/promptvault/internal/http/response"
	"github.com/promptvault/promptvault/internal/lib/sl"
	"github.com/promptvault/promptvault/internal/models"
)

// Catalog is the published-prompt query.
type Catalog interface {
	PublishedPromptIDs(ctx context.Context) ([]int, error)
}

// Policy decides per-item access against the ordering already fetched.
type Policy interface {
	CanAccessPosition(user *models.User, index int) bool
}

// Entry is one catalog row.
type Entry struct {
	ID         int  `json:"id"`
	Accessible bool `json:"accessible"`
}

// Handler handles prompt-list requests.
type Handler struct {
	log     *slog.Logger
	catalog Catalog
	policy  Policy
}

// New creates the list handler.
func New(log *slog.Logger, catalog Catalog, policy Policy) *Handler {
	return &Handler{
		log:     log,
		catalog: catalog,
		policy:  policy,
	}
}

// ServeHTTP godoc
// @Summary List prompts
// @Description Returns all published prompts in canonical ordering with a per-item accessible flag for the current visitor.
// @Tags Prompts
// @Produce json
// @Success 200 {object} response.Response "Prompt catalog"
// @Failure 500 {object} response.ErrorResponse "Catalog unavailable"
// @Router /prompts [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prompt.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	ids, err := h.catalog.PublishedPromptIDs(r.Context())
	if err != nil {
		log.Error("failed to list prompts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list prompts"))
		return
	}

	user := middlewarectx.CurrentUser(r.Context())
	entries := make([]Entry, 0, len(ids))
	for i, id := range ids {
		entries = append(entries, Entry{
			ID:         id,
			Accessible: h.policy.CanAccessPosition(user, i),
		})
	}

	log.Info("prompts listed", slog.Int("count", len(entries)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count":   len(entries),
		"prompts": entries,
	}))
}
