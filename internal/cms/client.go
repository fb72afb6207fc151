// Package cms wraps the headless CMS REST API: token issuing
// (login/refresh/logout), account management and the published-prompt
// query used by the access policy. The CMS is the sole owner of users and
// content; this client is the only place in the service that talks to it.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"github.com/promptvault/promptvault/internal/config"
	"github.com/promptvault/promptvault/internal/lib/retry"
	"github.com/promptvault/promptvault/internal/models"
)

// Client is an HTTP client for the CMS API.
type Client struct {
	baseURL      string
	serviceToken string
	httpClient   *http.Client
	validate     *validator.Validate
	retryCfg     retry.Config
}

// NewClient creates a CMS client from config. Every call carries a bounded
// timeout; transient failures are retried with exponential backoff, while
// authentication rejections propagate immediately.
func NewClient(cfg config.CMS) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		serviceToken: cfg.ServiceToken,
		httpClient:   &http.Client{Timeout: cfg.RequestTimeout},
		validate:     validator.New(),
		retryCfg: retry.Config{
			Attempts:  cfg.RetryAttempts,
			BaseDelay: cfg.RetryBaseDelay,
			MaxDelay:  cfg.RetryMaxDelay,
		},
	}
}

// do sends one JSON request. Network failures, 5xx and 429 responses come
// back marked transient so retry.Do re-runs them; all other statuses are
// returned to the caller for mapping.
func (c *Client) do(ctx context.Context, method, path, bearer string, payload any) (int, []byte, error) {
	const op = "cms.do"

	var buf bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return 0, nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, retry.Transient(fmt.Errorf("%s: %w", op, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, retry.Transient(fmt.Errorf("%s: %w", op, err))
	}
	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return resp.StatusCode, body, retry.Transient(fmt.Errorf("%s: unexpected status %s", op, resp.Status))
	}
	return resp.StatusCode, body, nil
}

func (c *Client) parseTokenPair(body []byte) (*models.TokenPair, error) {
	var env tokenEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if err := c.validate.Struct(env.Data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return env.Data.toModel(), nil
}

func (c *Client) parseUser(body []byte) (*models.User, error) {
	var env userEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if err := c.validate.Struct(env.Data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return env.Data.toModel(), nil
}

// Login exchanges credentials for a token pair.
// Returns ErrInvalidCredentials on rejection.
func (c *Client) Login(ctx context.Context, email, password string) (pair *models.TokenPair, err error) {
	const op = "cms.Login"
	start := time.Now()
	defer func() { observe("login", start, err) }()

	err = retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		status, body, err := c.do(ctx, http.MethodPost, "/auth/login", "",
			loginRequest{Email: email, Password: password, Mode: "json"})
		if err != nil {
			return err
		}
		switch status {
		case http.StatusOK:
			pair, err = c.parseTokenPair(body)
			return err
		case http.StatusUnauthorized, http.StatusBadRequest:
			return ErrInvalidCredentials
		default:
			return fmt.Errorf("%s: unexpected status %d", op, status)
		}
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a rotated token pair.
// Returns ErrRefreshFailed when the token is invalid, expired or revoked.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (pair *models.TokenPair, err error) {
	const op = "cms.Refresh"
	start := time.Now()
	defer func() { observe("refresh", start, err) }()

	err = retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		status, body, err := c.do(ctx, http.MethodPost, "/auth/refresh", "",
			refreshRequest{RefreshToken: refreshToken, Mode: "json"})
		if err != nil {
			return err
		}
		switch status {
		case http.StatusOK:
			pair, err = c.parseTokenPair(body)
			return err
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusBadRequest:
			return ErrRefreshFailed
		default:
			return fmt.Errorf("%s: unexpected status %d", op, status)
		}
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout invalidates a refresh token on the CMS side. The caller treats
// failures as non-fatal: the token may already be invalid.
func (c *Client) Logout(ctx context.Context, refreshToken string) (err error) {
	const op = "cms.Logout"
	start := time.Now()
	defer func() { observe("logout", start, err) }()

	err = retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		status, _, err := c.do(ctx, http.MethodPost, "/auth/logout", "",
			logoutRequest{RefreshToken: refreshToken})
		if err != nil {
			return err
		}
		if status != http.StatusOK && status != http.StatusNoContent {
			return fmt.Errorf("%s: unexpected status %d", op, status)
		}
		return nil
	})
	return err
}

// Register creates a user account through the service connection. Never
// retried, not even on transient failures: a blind retry risks a duplicate
// account. Returns ErrRegistrationFailed with the CMS message on rejection.
func (c *Client) Register(ctx context.Context, email, password string, firstName, lastName *string) (err error) {
	const op = "cms.Register"
	start := time.Now()
	defer func() { observe("register", start, err) }()

	status, body, err := c.do(ctx, http.MethodPost, "/users", c.serviceToken,
		registerRequest{Email: email, Password: password, FirstName: firstName, LastName: lastName})
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusConflict:
		return registrationError(body)
	default:
		return fmt.Errorf("%s: unexpected status %d", op, status)
	}
}

// Me resolves an access token into its user record. An invalid or expired
// token yields (nil, nil), not an error: absence of a session is a normal
// outcome for the resolver.
func (c *Client) Me(ctx context.Context, accessToken string) (user *models.User, err error) {
	const op = "cms.Me"
	start := time.Now()
	defer func() { observe("me", start, err) }()

	err = retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		status, body, err := c.do(ctx, http.MethodGet, "/users/me", accessToken, nil)
		if err != nil {
			return err
		}
		switch status {
		case http.StatusOK:
			user, err = c.parseUser(body)
			return err
		case http.StatusUnauthorized, http.StatusForbidden:
			user = nil
			return nil
		default:
			return fmt.Errorf("%s: unexpected status %d", op, status)
		}
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// PublishedPromptIDs returns the ids of all published prompts in canonical
// ordering (id descending, newest first).
func (c *Client) PublishedPromptIDs(ctx context.Context) (ids []int, err error) {
	const op = "cms.PublishedPromptIDs"
	start := time.Now()
	defer func() { observe("published_prompt_ids", start, err) }()

	query := url.Values{}
	query.Set("filter[status][_eq]", models.PromptPublished)
	query.Set("sort", "-id")
	query.Set("fields", "id")
	query.Set("limit", "-1")

	err = retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		status, body, err := c.do(ctx, http.MethodGet, "/items/prompts?"+query.Encode(), c.serviceToken, nil)
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return fmt.Errorf("%s: unexpected status %d", op, status)
		}
		var env promptIDsEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		ids = make([]int, 0, len(env.Data))
		for _, item := range env.Data {
			ids = append(ids, item.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdatePassword sets a new password on the account through the service
// connection. The caller re-authenticates afterwards to rotate the pair.
func (c *Client) UpdatePassword(ctx context.Context, userID, newPassword string) (err error) {
	const op = "cms.UpdatePassword"
	start := time.Now()
	defer func() { observe("update_password", start, err) }()

	err = retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		status, body, err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(userID), c.serviceToken,
			passwordRequest{Password: newPassword})
		if err != nil {
			return err
		}
		switch status {
		case http.StatusOK, http.StatusNoContent:
			return nil
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			if msg := errorMessage(body); msg != "" {
				return fmt.Errorf("%s: %s", op, msg)
			}
			return fmt.Errorf("%s: unexpected status %d", op, status)
		default:
			return fmt.Errorf("%s: unexpected status %d", op, status)
		}
	})
	return err
}
