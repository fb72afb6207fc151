package cms

import (
	"time"

	"github.com/promptvault/promptvault/internal/models"
)

// Request bodies sent to the CMS.

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Mode     string `json:"mode"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	Mode         string `json:"mode"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type registerRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

// Response envelopes. The CMS wraps every payload in {"data": ...}; the
// shapes are validated before they are turned into domain models so that a
// malformed payload surfaces as ErrMalformedResponse instead of a
// half-filled struct.

type tokenData struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
	Expires      int64  `json:"expires"`
}

type tokenEnvelope struct {
	Data tokenData `json:"data"`
}

func (d tokenData) toModel() *models.TokenPair {
	return &models.TokenPair{
		AccessToken:  d.AccessToken,
		RefreshToken: d.RefreshToken,
		Expires:      d.Expires,
	}
}

type userData struct {
	ID                    string     `json:"id" validate:"required"`
	Email                 string     `json:"email" validate:"required,email"`
	FirstName             *string    `json:"first_name"`
	LastName              *string    `json:"last_name"`
	Role                  string     `json:"role"`
	SubscriptionStatus    string     `json:"subscription_status"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at"`
	PremiumLicense        *string    `json:"premium_license"`
}

type userEnvelope struct {
	Data userData `json:"data"`
}

func (d userData) toModel() *models.User {
	status := d.SubscriptionStatus
	if status == "" {
		status = models.SubscriptionFree
	}
	return &models.User{
		ID:                    d.ID,
		Email:                 d.Email,
		FirstName:             d.FirstName,
		LastName:              d.LastName,
		Role:                  d.Role,
		SubscriptionStatus:    status,
		SubscriptionExpiresAt: d.SubscriptionExpiresAt,
		PremiumLicense:        d.PremiumLicense,
	}
}

type promptIDsEnvelope struct {
	Data []struct {
		ID int `json:"id"`
	} `json:"data"`
}
