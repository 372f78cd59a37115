package pipeline

import (
	"github.com/jonathan/cerebro/internal/extraction"
	"github.com/jonathan/cerebro/internal/types"
)

// TargetCheck is the pre-flight verdict for one catalog entry.
type TargetCheck struct {
	Index          int
	IssuerID       string
	Strategy       string
	// State is StateStrategyResolved for a runnable target, otherwise the skip state Run would reach.
	State          TargetState
	Reason         string
	Sources        int
	InvalidSources []string
}

// Runnable reports whether Run would extract this target's sources.
func (c TargetCheck) Runnable() bool {
	return c.State == StateStrategyResolved
}

// Check applies Run's validation to every target without fetching anything.
func Check(registry *extraction.Registry, targets []types.Target) []TargetCheck {
	checks := make([]TargetCheck, 0, len(targets))
	for i := range targets {
		target := &targets[i]
		check := TargetCheck{
			Index:    i,
			IssuerID: target.IssuerID,
			Strategy: target.ParserStrategy,
			Sources:  len(target.Sources),
		}
		switch err := target.Validate(); {
		case err != nil:
			check.State = StateSkippedInvalid
			check.Reason = err.Error()
		default:
			if _, err := registry.Lookup(target.ParserStrategy); err != nil {
				check.State = StateSkippedUnknownStrategy
				check.Reason = err.Error()
				break
			}
			check.State = StateStrategyResolved
			for j := range target.Sources {
				if err := target.Sources[j].Validate(); err != nil {
					check.InvalidSources = append(check.InvalidSources, err.Error())
				}
			}
		}
		checks = append(checks, check)
	}
	return checks
}
