package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophtasks/internal/common"
)

// ErrUnavailable is returned when the server cannot be reached at all.
var ErrUnavailable = errors.New("server unavailable")

// Messages the server uses to tell apart the 400 answers of the auth
// endpoints.
const (
	msgUsernameTaken      = "Username already exists"
	msgInvalidCredentials = "Invalid credentials"
)

// APIError is a non-2xx answer. Error returns the server's message; under
// errors.Is it matches the common sentinel of its status.
type APIError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.kind }

// NewAPIError classifies an answer by status and message.
func NewAPIError(status int, message string) *APIError {
	return &APIError{StatusCode: status, Message: message, kind: mapStatus(status, message)}
}

func mapStatus(status int, message string) error {
	switch {
	case status == http.StatusUnauthorized:
		if message == "Invalid or expired token" {
			return common.ErrInvalidToken
		}
		return common.ErrorUnauthenticated
	case status == http.StatusForbidden:
		return common.ErrorForbidden
	case status == http.StatusNotFound:
		return common.ErrorNotFound
	case status == http.StatusBadRequest:
		switch message {
		case msgUsernameTaken:
			return common.ErrorAlreadyExists
		case msgInvalidCredentials:
			return common.ErrorInvalidCredentials
		}
		return common.ErrorValidation
	case status >= http.StatusInternalServerError:
		return common.ErrorInternal
	default:
		return errors.New(http.StatusText(status))
	}
}

// IsAuthFailure reports whether err means the stored credential is no
// longer accepted.
func IsAuthFailure(err error) bool {
	return errors.Is(err, common.ErrorUnauthenticated) || errors.Is(err, common.ErrInvalidToken)
}
