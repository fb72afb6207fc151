// Package session implements the session lifecycle: resolving the cookie
// pair into a user, logging in and out, registration with auto-login and
// password changes. All state lives in the CMS and in the two cookies;
// every operation returns the cookie effects the HTTP layer must apply.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/promptvault/promptvault/internal/cms"
	"github.com/promptvault/promptvault/internal/events"
	"github.com/promptvault/promptvault/internal/http/cookies"
	"github.com/promptvault/promptvault/internal/lib/sl"
	"github.com/promptvault/promptvault/internal/models"
)

// ErrWrongPassword is returned by ChangePassword when the current password
// does not verify.
var ErrWrongPassword = errors.New("current password is incorrect")

// Gateway is the CMS surface the session service depends on.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Register(ctx context.Context, email, password string, firstName, lastName *string) error
	Me(ctx context.Context, accessToken string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID, newPassword string) error
}

// Service carries session operations. locker and publisher are optional;
// a nil locker refreshes without cross-request coordination and a nil
// publisher disables auth events.
type Service struct {
	log       *slog.Logger
	cms       Gateway
	jar       *cookies.Jar
	locker    *RefreshLock
	publisher events.Publisher
}

// New creates the session service.
func New(log *slog.Logger, gateway Gateway, jar *cookies.Jar, locker *RefreshLock, publisher events.Publisher) *Service {
	return &Service{
		log:       log,
		cms:       gateway,
		jar:       jar,
		locker:    locker,
		publisher: publisher,
	}
}

// Resolve turns the current cookie values into a user. Exactly one refresh
// attempt is made when the access token no longer validates; on refresh
// success both cookies are rewritten together, on refresh failure both are
// cleared. No network call happens when no token is present.
func (s *Service) Resolve(ctx context.Context, access, refresh string) (*models.User, []*http.Cookie, error) {
	const op = "session.Resolve"

	if access == "" && refresh == "" {
		return nil, nil, nil
	}

	if access != "" {
		user, err := s.cms.Me(ctx, access)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		if user != nil {
			return user, nil, nil
		}
	}

	if refresh == "" {
		return nil, nil, nil
	}

	pair, err := s.refresh(ctx, refresh)
	if err != nil {
		if errors.Is(err, cms.ErrRefreshFailed) {
			return nil, s.jar.Clear(), nil
		}
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	effects := s.jar.Issue(*pair)
	user, err := s.cms.Me(ctx, pair.AccessToken)
	if err != nil {
		return nil, effects, fmt.Errorf("%s: %w", op, err)
	}
	// user may still be nil on a race with server-side revocation; the
	// caller treats that as anonymous.
	return user, effects, nil
}

// refresh rotates the pair, going through the single-flight lock when one
// is configured so concurrent requests sharing a refresh token reuse one
// rotation instead of racing the CMS.
func (s *Service) refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	if s.locker == nil {
		return s.cms.Refresh(ctx, refreshToken)
	}

	if pair, ok := s.locker.RotatedPair(ctx, refreshToken); ok {
		return pair, nil
	}

	if s.locker.TryAcquire(ctx, refreshToken) {
		defer s.locker.Release(ctx, refreshToken)
		pair, err := s.cms.Refresh(ctx, refreshToken)
		if err != nil {
			return nil, err
		}
		s.locker.StoreRotatedPair(ctx, refreshToken, pair)
		return pair, nil
	}

	if pair, ok := s.locker.AwaitRotatedPair(ctx, refreshToken); ok {
		return pair, nil
	}
	return s.cms.Refresh(ctx, refreshToken)
}

// Login authenticates the user and returns the resolved user together with
// the set-cookie effects for the fresh pair.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, []*http.Cookie, error) {
	const op = "session.Login"

	pair, err := s.cms.Login(ctx, email, password)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.cms.Me(ctx, pair.AccessToken)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if user == nil {
		return nil, nil, fmt.Errorf("%s: freshly issued token failed validation", op)
	}

	s.emit(ctx, events.UserLoggedIn, email)
	return user, s.jar.Issue(*pair), nil
}

// Logout invalidates the refresh token best-effort and always returns the
// clear effects: the browser session ends regardless of the CMS outcome.
func (s *Service) Logout(ctx context.Context, refreshToken string) []*http.Cookie {
	if refreshToken != "" {
		if err := s.cms.Logout(ctx, refreshToken); err != nil {
			s.log.Warn("cms logout failed, clearing session anyway", sl.Err(err))
		}
		s.emit(ctx, events.UserLoggedOut, "")
	}
	return s.jar.Clear()
}

// Rotate refreshes the pair for the explicit refresh endpoint. On refresh
// failure the returned effects clear both cookies alongside the error.
func (s *Service) Rotate(ctx context.Context, refreshToken string) ([]*http.Cookie, error) {
	const op = "session.Rotate"

	if refreshToken == "" {
		return s.jar.Clear(), cms.ErrRefreshFailed
	}
	pair, err := s.refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, cms.ErrRefreshFailed) {
			return s.jar.Clear(), err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.jar.Issue(*pair), nil
}

// Register creates the account and logs the new user straight in.
func (s *Service) Register(ctx context.Context, email, password string, firstName, lastName *string) (*models.User, []*http.Cookie, error) {
	const op = "session.Register"

	if err := s.cms.Register(ctx, email, password, firstName, lastName); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	s.emit(ctx, events.UserRegistered, email)

	return s.Login(ctx, email, password)
}

// ChangePassword verifies the current password, updates it through the
// service connection and re-authenticates, rotating the cookie pair.
func (s *Service) ChangePassword(ctx context.Context, user *models.User, currentPassword, newPassword string) ([]*http.Cookie, error) {
	const op = "session.ChangePassword"

	if _, err := s.cms.Login(ctx, user.Email, currentPassword); err != nil {
		if errors.Is(err, cms.ErrInvalidCredentials) {
			return nil, ErrWrongPassword
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cms.UpdatePassword(ctx, user.ID, newPassword); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pair, err := s.cms.Login(ctx, user.Email, newPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.emit(ctx, events.PasswordChanged, user.Email)
	return s.jar.Issue(*pair), nil
}

// License builds the entitlement view for the license endpoint. A nil user
// yields the anonymous view; the endpoint never fails.
func (s *Service) License(user *models.User) models.License {
	if user == nil {
		return models.License{}
	}
	var expiresAt *string
	if user.SubscriptionExpiresAt != nil {
		formatted := user.SubscriptionExpiresAt.Format(time.RFC3339)
		expiresAt = &formatted
	}
	return models.License{
		IsPremium: user.IsPaid(),
		ExpiresAt: expiresAt,
		License:   user.PremiumLicense,
	}
}

func (s *Service) emit(ctx context.Context, eventType, email string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.New(eventType, email)); err != nil {
		s.log.Warn("failed to publish auth event", slog.String("type", eventType), sl.Err(err))
	}
}
