// Package models contains the domain structures of the service: the user
// account with its entitlement fields and the token pair issued by the CMS.
package models

import "time"

// Subscription status values as stored by the CMS.
const (
	SubscriptionFree = "free"
	SubscriptionPaid = "paid"
)

// User represents an account fetched from the CMS.
type User struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email"`
	FirstName             *string    `json:"first_name"`
	LastName              *string    `json:"last_name"`
	Role                  string     `json:"role"`
	SubscriptionStatus    string     `json:"subscription_status"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at"`
	PremiumLicense        *string    `json:"premium_license"`
}

// IsPaid reports whether the user holds a paid subscription.
// SubscriptionStatus is the sole authority; the expiry date is advisory.
func (u *User) IsPaid() bool {
	return u != nil && u.SubscriptionStatus == SubscriptionPaid
}

// TokenPair is the access/refresh token pair issued by the CMS.
// Both tokens are always rotated together; Expires is the access-token
// lifetime in milliseconds as reported by the CMS.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Expires      int64  `json:"expires"`
}
