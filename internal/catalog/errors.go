package catalog

import "fmt"

// LoadError represents a catalog that could not be read or decoded.
type LoadError struct {
	Location string
	Message  string
	Cause    error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load catalog %s: %s: %v", e.Location, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load catalog %s: %s", e.Location, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
