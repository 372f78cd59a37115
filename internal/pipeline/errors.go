package pipeline

import "fmt"

// UnexpectedExtractorError is a panic recovered while a strategy processed one source.
type UnexpectedExtractorError struct {
	SourceID string
	Value    any
}

func (e *UnexpectedExtractorError) Error() string {
	return fmt.Sprintf("extractor failed unexpectedly on source %s: %v", e.SourceID, e.Value)
}
