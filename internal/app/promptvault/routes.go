package promptvault

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/promptvault/promptvault/internal/cms"
	"github.com/promptvault/promptvault/internal/http/cookies"
	"github.com/promptvault/promptvault/internal/http/handlers/auth/login"
	"github.com/promptvault/promptvault/internal/http/handlers/auth/logout"
	"github.com/promptvault/promptvault/internal/http/handlers/auth/me"
	"github.com/promptvault/promptvault/internal/http/handlers/auth/refresh"
	"github.com/promptvault/promptvault/internal/http/handlers/auth/register"
	"github.com/promptvault/promptvault/internal/http/handlers/health"
	"github.com/promptvault/promptvault/internal/http/handlers/prompt/list"
	"github.com/promptvault/promptvault/internal/http/handlers/prompt/read"
	"github.com/promptvault/promptvault/internal/http/handlers/user/changepassword"
	"github.com/promptvault/promptvault/internal/http/handlers/user/license"
	"github.com/promptvault/promptvault/internal/http/middlewarectx"
	"github.com/promptvault/promptvault/internal/services/access"
	"github.com/promptvault/promptvault/internal/services/session"
)

// RegisterRoutes registers all application routes.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jar *cookies.Jar, gateway *cms.Client, sessionService *session.Service, accessPolicy *access.Policy) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)
	r.Use(middlewarectx.Guard(logger, middlewarectx.DefaultGuardConfig))

	// Credential endpoints share one limiter: a burst of logins is either
	// a stampede or a guessing attempt, never organic traffic.
	credentialLimiter := rate.NewLimiter(rate.Limit(5), 10)

	r.Route("/api/v1", func(r chi.Router) {
		// Refresh and logout spend the refresh token themselves; resolving
		// the session first would consume it and terminate the session the
		// handler is about to serve. They read the cookies directly.
		r.Post("/auth/refresh", refresh.New(logger, sessionService, jar).ServeHTTP)
		r.Post("/auth/logout", logout.New(logger, sessionService, jar).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.Session(logger, jar, sessionService))

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RateLimit(logger, credentialLimiter))
				r.Post("/auth/login", login.New(logger, sessionService).ServeHTTP)
				r.Post("/auth/register", register.New(logger, sessionService).ServeHTTP)
			})

			r.Get("/auth/me", me.New(logger).ServeHTTP)

			r.Post("/user/change-password", changepassword.New(logger, sessionService).ServeHTTP)
			r.Get("/user/license", license.New(logger, sessionService).ServeHTTP)

			r.Get("/prompts", list.New(logger, gateway, accessPolicy).ServeHTTP)
			r.Get("/prompts/{id}", read.New(logger, accessPolicy).ServeHTTP)

			r.Get("/health", health.New(logger).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
