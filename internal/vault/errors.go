package vault

import "fmt"

// SaveError represents a failure to persist one issuer's records.
type SaveError struct {
	IssuerID string
	Message  string
	Cause    error
}

func (e *SaveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to save records for %s: %s: %v", e.IssuerID, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to save records for %s: %s", e.IssuerID, e.Message)
}

func (e *SaveError) Unwrap() error {
	return e.Cause
}
