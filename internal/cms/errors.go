package cms

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error taxonomy of the CMS boundary. Transient network failures are not
// listed here; they are marked through the retry package and never escape
// the client unretried.
var (
	// ErrInvalidCredentials is returned by Login on rejected credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRefreshFailed is returned by Refresh when the refresh token is
	// invalid, expired or revoked. Session-terminal for the caller.
	ErrRefreshFailed = errors.New("refresh failed")
	// ErrRegistrationFailed is returned by Register; the CMS message is
	// attached where one was given.
	ErrRegistrationFailed = errors.New("registration failed")
	// ErrMalformedResponse is returned when a CMS payload does not parse
	// into the expected shape.
	ErrMalformedResponse = errors.New("malformed cms response")
)

// errorEnvelope is the CMS error body: {"errors":[{"message":"..."}]}.
type errorEnvelope struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// errorMessage extracts the first CMS error message from body, or "".
func errorMessage(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Errors) == 0 {
		return ""
	}
	return env.Errors[0].Message
}

func registrationError(body []byte) error {
	if msg := errorMessage(body); msg != "" {
		return fmt.Errorf("%w: %s", ErrRegistrationFailed, msg)
	}
	return ErrRegistrationFailed
}
