package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTokenExpired is returned before any request is sent when the
// configured API token is a JWT whose expiry has passed.
var ErrTokenExpired = errors.New("API token expired")

// ErrStatus indicates the backend answered with a non-2xx status.
type ErrStatus struct {
	Code int
	Body string
	// Message is the backend's "error" field, when present.
	Message string
}

func (e *ErrStatus) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("backend returned %d %s", e.Code, http.StatusText(e.Code))
}

// NotFound reports whether the backend did not know the lesson, card or
// attempt.
func (e *ErrStatus) NotFound() bool {
	return e.Code == http.StatusNotFound
}

// ErrUnavailable indicates the backend could not be reached.
type ErrUnavailable struct {
	Err error
}

func (e *ErrUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend unavailable: %v", e.Err)
	}
	return "backend unavailable"
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// ErrDecode indicates the backend answered with a body that could not be
// decoded.
type ErrDecode struct {
	Err error
}

func (e *ErrDecode) Error() string {
	return fmt.Sprintf("invalid backend response: %v", e.Err)
}

func (e *ErrDecode) Unwrap() error { return e.Err }

// UserMessage returns a short message suitable for an alert panel.
func UserMessage(err error) string {
	var (
		st  *ErrStatus
		un  *ErrUnavailable
		dec *ErrDecode
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTokenExpired):
		return "Your session token has expired. Set a new LINGO_API_TOKEN and try again."
	case errors.As(err, &st) && st.NotFound():
		return "The lesson server could not find that lesson or attempt."
	case errors.As(err, &st):
		return fmt.Sprintf("The lesson server returned an error (%d). Please try again.", st.Code)
	case errors.As(err, &un):
		return "Could not reach the lesson server. Check your connection and try again."
	case errors.As(err, &dec):
		return "The lesson server sent a response that could not be read."
	default:
		return "Something went wrong: " + err.Error()
	}
}
