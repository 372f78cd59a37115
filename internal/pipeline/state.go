package pipeline

// TargetState is the lifecycle position of one catalog target.
type TargetState string

const (
	StatePending                TargetState = "PENDING"
	StateValidated              TargetState = "VALIDATED"
	StateStrategyResolved       TargetState = "STRATEGY_RESOLVED"
	StateSourcesProcessed       TargetState = "SOURCES_PROCESSED"
	StateSaved                  TargetState = "SAVED"
	StateSkippedEmpty           TargetState = "SKIPPED_EMPTY"
	StateSkippedInvalid         TargetState = "SKIPPED_INVALID"
	StateSkippedUnknownStrategy TargetState = "SKIPPED_UNKNOWN_STRATEGY"
	// StateSaveFailed means records were produced but the store rejected them.
	StateSaveFailed TargetState = "SAVE_FAILED"
)

// Terminal reports whether no further transition follows s.
func (s TargetState) Terminal() bool {
	switch s {
	case StateSaved, StateSkippedEmpty, StateSkippedInvalid, StateSkippedUnknownStrategy, StateSaveFailed:
		return true
	}
	return false
}

// SourceState is the lifecycle position of one source within a target.
type SourceState string

const (
	SourcePending   SourceState = "PENDING"
	SourceFetched   SourceState = "FETCHED"
	SourceExtracted SourceState = "EXTRACTED"
	SourceFailed    SourceState = "FAILED"
)
