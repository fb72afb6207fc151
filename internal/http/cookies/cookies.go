// Package cookies is the token store: it maps the CMS token pair onto the
// two session cookies. Operations never touch the ResponseWriter directly;
// they return cookie effects for the caller to apply, so session logic is
// testable without a live HTTP exchange.
package cookies

import (
	"net/http"
	"time"

	"github.com/promptvault/promptvault/internal/config"
	"github.com/promptvault/promptvault/internal/models"
)

// Cookie names holding the token pair.
const (
	AccessToken  = "access_token"
	RefreshToken = "refresh_token"
)

// Jar builds and reads the session cookies.
type Jar struct {
	secure     bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// New creates a Jar from config.
func New(cfg config.Cookies) *Jar {
	return &Jar{
		secure:     cfg.Secure,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}
}

func (j *Jar) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Issue returns the set-cookie effects for a freshly issued pair. The two
// cookies are always written together; the access max-age follows the
// CMS-reported lifetime when it reads as a duration. A value beyond the
// refresh TTL is an epoch timestamp, not a lifetime, and falls back to
// the configured TTL.
func (j *Jar) Issue(pair models.TokenPair) []*http.Cookie {
	accessMaxAge := int(j.accessTTL.Seconds())
	if sec := pair.Expires / 1000; sec > 0 && sec <= int64(j.refreshTTL.Seconds()) {
		accessMaxAge = int(sec)
	}
	return []*http.Cookie{
		j.cookie(AccessToken, pair.AccessToken, accessMaxAge),
		j.cookie(RefreshToken, pair.RefreshToken, int(j.refreshTTL.Seconds())),
	}
}

// Clear returns the delete effects for both cookies.
func (j *Jar) Clear() []*http.Cookie {
	return []*http.Cookie{
		j.cookie(AccessToken, "", -1),
		j.cookie(RefreshToken, "", -1),
	}
}

// Read returns the current token values from the request. A missing cookie
// reads as the empty string; absence is not an error.
func (j *Jar) Read(r *http.Request) (access, refresh string) {
	if c, err := r.Cookie(AccessToken); err == nil {
		access = c.Value
	}
	if c, err := r.Cookie(RefreshToken); err == nil {
		refresh = c.Value
	}
	return access, refresh
}

// Apply writes a list of cookie effects to the response.
func Apply(w http.ResponseWriter, effects []*http.Cookie) {
	for _, c := range effects {
		http.SetCookie(w, c)
	}
}
