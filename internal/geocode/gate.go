// Package geocode proxies place searches to an OpenStreetMap Nominatim
// instance under a process-wide rate gate.
package geocode

import (
	"time"

	"golang.org/x/time/rate"
)

// DefaultMinInterval is the minimum spacing between upstream searches.
const DefaultMinInterval = 1200 * time.Millisecond

// Gate admits at most one upstream search per interval. A denied caller is
// told so immediately; requests are never queued.
//
// Build one Gate per process and share it by pointer: a copy would admit its
// own searches independently of the original.
type Gate struct {
	limiter *rate.Limiter
}

// NewGate returns a Gate admitting one search per interval. The first call to
// TryAcquire always succeeds.
func NewGate(interval time.Duration) *Gate {
	if interval <= 0 {
		interval = DefaultMinInterval
	}
	return &Gate{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// TryAcquire reports whether a search may start at now, consuming the slot
// when it may. Safe for concurrent use.
func (g *Gate) TryAcquire(now time.Time) bool {
	return g.limiter.AllowN(now, 1)
}
