// Package access computes whether a visitor may view a prompt. Paid
// subscribers see everything; anonymous and free visitors see the first
// FreeLimit prompts of the canonical ordering (id descending over
// published prompts). Any lookup failure resolves to inaccessible.
package access

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/promptvault/promptvault/internal/lib/sl"
	"github.com/promptvault/promptvault/internal/models"
)

// Catalog is the published-prompt query the policy runs against.
type Catalog interface {
	PublishedPromptIDs(ctx context.Context) ([]int, error)
}

// Policy carries the freemium access rules.
type Policy struct {
	catalog   Catalog
	freeLimit int
	log       *slog.Logger
}

// New creates a Policy with the configured free-tier size.
func New(log *slog.Logger, catalog Catalog, freeLimit int) *Policy {
	return &Policy{
		catalog:   catalog,
		freeLimit: freeLimit,
		log:       log,
	}
}

// IsPaidUser reports whether user holds unrestricted access.
func IsPaidUser(user *models.User) bool {
	return user.IsPaid()
}

// ItemIndex returns the zero-based position of id in the canonical
// ordering, or -1 when the id is not among the published prompts. The
// ordering is queried per call; a newly published prompt shifts every
// position below it.
func (p *Policy) ItemIndex(ctx context.Context, id int) (int, error) {
	const op = "access.ItemIndex"

	ids, err := p.catalog.PublishedPromptIDs(ctx)
	if err != nil {
		return -1, fmt.Errorf("%s: %w", op, err)
	}
	for i, candidate := range ids {
		if candidate == id {
			return i, nil
		}
	}
	return -1, nil
}

// CanAccessItem decides whether user may view the prompt with the given
// id. Fails closed: an unknown id or a failing catalog query both deny.
func (p *Policy) CanAccessItem(ctx context.Context, user *models.User, id int) bool {
	if IsPaidUser(user) {
		return true
	}

	index, err := p.ItemIndex(ctx, id)
	if err != nil {
		p.log.Warn("prompt index lookup failed, denying access", slog.Int("id", id), sl.Err(err))
		return false
	}
	return index >= 0 && p.CanAccessPosition(user, index)
}

// CanAccessPosition decides access for the prompt at the given position of
// an already-fetched canonical ordering. Callers iterating one catalog
// query use this instead of CanAccessItem to avoid re-querying per item.
func (p *Policy) CanAccessPosition(user *models.User, index int) bool {
	return IsPaidUser(user) || index < p.freeLimit
}

// FreeLimit exposes the configured free-tier size.
func (p *Policy) FreeLimit() int {
	return p.freeLimit
}
