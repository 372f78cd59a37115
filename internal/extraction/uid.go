package extraction

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Clock returns the current time. Tests inject a fixed clock.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// UIDGenerator issues benefit uids of the form <issuer>-<unix ms>-<n>, where
// n is a run-wide counter. The counter is atomic, so uids stay unique even if
// several extractors share one generator.
type UIDGenerator struct {
	clock   Clock
	counter atomic.Uint64
}

// NewUIDGenerator creates a generator. A nil clock uses time.Now.
func NewUIDGenerator(clock Clock) *UIDGenerator {
	return &UIDGenerator{clock: clock}
}

// Next returns a new uid for issuerID.
func (g *UIDGenerator) Next(issuerID string) string {
	n := g.counter.Add(1) - 1
	return fmt.Sprintf("%s-%d-%d", issuerID, g.clock.now().UnixMilli(), n)
}
