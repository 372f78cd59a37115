//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// InvalidTargetError is returned when a catalog entry lacks its issuer id or strategy.
type InvalidTargetError struct {
	IssuerID string
	Message  string
	Cause    error
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid target %q: %s", e.IssuerID, e.Message)
}

func (e *InvalidTargetError) Unwrap() error {
	return e.Cause
}

// InvalidSourceError is returned when a source lacks its id or URL.
type InvalidSourceError struct {
	SourceID string
	URL      string
	Message  string
	Cause    error
}

func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("invalid source %q (%s): %s", e.SourceID, e.URL, e.Message)
}

func (e *InvalidSourceError) Unwrap() error {
	return e.Cause
}
