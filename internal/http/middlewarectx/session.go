package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/promptvault/promptvault/internal/http/cookies"
	"github.com/promptvault/promptvault/internal/lib/sl"
	"github.com/promptvault/promptvault/internal/models"
)

// Key is the type of the request-context keys.
type Key string

// UserKey holds the resolved *models.User (nil for anonymous visitors).
const UserKey Key = "user"

// Resolver is the session resolution the middleware delegates to.
type Resolver interface {
	Resolve(ctx context.Context, access, refresh string) (*models.User, []*http.Cookie, error)
}

// Session resolves the cookie pair into a user once per request, applies
// any cookie effects (refresh rotation, session clearing) and stores the
// result in the request context. Resolution failures degrade to an
// anonymous request rather than failing the page.
func Session(log *slog.Logger, jar *cookies.Jar, resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Session"

			access, refresh := jar.Read(r)
			user, effects, err := resolver.Resolve(r.Context(), access, refresh)
			cookies.Apply(w, effects)
			if err != nil {
				log.Error("session resolution failed, continuing as anonymous",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err))
				user = nil
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser returns the user resolved by the Session middleware, or nil
// when the request is anonymous.
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(UserKey).(*models.User)
	return user
}
