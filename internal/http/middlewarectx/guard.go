// Package middlewarectx contains the HTTP middleware of the service: the
// route guard, the per-request session resolver and the rate limiter, plus
// the context keys they populate.
package middlewarectx

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/promptvault/promptvault/internal/http/cookies"
)

// GuardConfig describes the path sets the route guard acts on.
type GuardConfig struct {
	// Protected are path prefixes that require the access-token cookie.
	Protected []string
	// AuthOnly are paths meant for anonymous visitors (login, signup).
	AuthOnly []string
	// LoginPath receives anonymous visitors bounced off a protected path.
	LoginPath string
	// LandingPath receives authenticated visitors bounced off an
	// auth-only path.
	LandingPath string
}

// DefaultGuardConfig holds the page-path sets of the product.
var DefaultGuardConfig = GuardConfig{
	Protected:   []string{"/dashboard", "/account"},
	AuthOnly:    []string{"/login", "/register"},
	LoginPath:   "/login",
	LandingPath: "/dashboard",
}

// Guard is a cheap, non-authoritative pre-filter keyed on the presence of
// the access-token cookie. It never validates the token; a stale cookie
// passes and the downstream session resolver demotes it to anonymous.
func Guard(log *slog.Logger, cfg GuardConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := r.Cookie(cookies.AccessToken)
			hasToken := err == nil

			path := r.URL.Path

			if !hasToken && hasPrefix(path, cfg.Protected) {
				target := cfg.LoginPath + "?redirect=" + url.QueryEscape(path)
				log.Info("redirecting anonymous visitor to login", slog.String("path", path))
				http.Redirect(w, r, target, http.StatusFound)
				return
			}

			if hasToken && matches(path, cfg.AuthOnly) {
				log.Info("redirecting authenticated visitor to landing", slog.String("path", path))
				http.Redirect(w, r, cfg.LandingPath, http.StatusFound)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func hasPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func matches(path string, paths []string) bool {
	for _, p := range paths {
		if path == p {
			return true
		}
	}
	return false
}
