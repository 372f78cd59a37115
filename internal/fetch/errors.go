package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Error represents an error during URL fetching.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// TimeoutError represents a browser operation that did not finish in time.
type TimeoutError struct {
	Operation string
	Timeout   time.Duration
	Err       error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout during %s after %s: %v", e.Operation, e.Timeout, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a *TimeoutError or a deadline expiry.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te) || errors.Is(err, context.DeadlineExceeded)
}

// CheckStatus returns an *Error for a non-2xx status. Zero means the transport
// reported no status (file or data URLs) and is accepted.
func CheckStatus(url string, status int) error {
	if status == 0 || (status >= 200 && status <= 299) {
		return nil
	}
	return &Error{
		URL:        url,
		Message:    fmt.Sprintf("HTTP status %d", status),
		StatusCode: status,
	}
}

// StatusCode returns the HTTP status carried by err, or zero.
func StatusCode(err error) int {
	var fe *Error
	for errors.As(err, &fe) {
		if fe.StatusCode != 0 {
			return fe.StatusCode
		}
		err = fe.Cause
	}
	return 0
}
