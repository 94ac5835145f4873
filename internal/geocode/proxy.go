package geocode

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/couplemap/couplemap/internal/domain"
	"github.com/couplemap/couplemap/internal/metrics"
)

const (
	// DefaultLimit is used when the caller passes no usable limit.
	DefaultLimit = 6
	// MaxLimit is the largest number of results a search may ask for.
	MaxLimit = 10
	// MinQueryRunes is the shortest trimmed query that reaches the upstream.
	MinQueryRunes = 2
)

// Upstream is the geocoder the proxy forwards to.
type Upstream interface {
	Search(ctx context.Context, query string, limit int) ([]Candidate, error)
}

// Proxy forwards searches to an Upstream under a shared Gate.
type Proxy struct {
	upstream Upstream
	gate     *Gate
	now      func() time.Time
}

// NewProxy returns a Proxy. now may be nil, meaning time.Now.
func NewProxy(upstream Upstream, gate *Gate, now func() time.Time) *Proxy {
	if now == nil {
		now = time.Now
	}
	return &Proxy{upstream: upstream, gate: gate, now: now}
}

// Search trims query and returns candidates for it.
//   - Queries shorter than MinQueryRunes return an empty list without touching
//     the gate or the upstream.
//   - limit is clamped to [1, MaxLimit]; 0 (not given) means DefaultLimit.
//   - A search the gate denies fails with domain.ErrRateLimited.
//   - Upstream failures surface as domain.ErrUpstream.
func (p *Proxy) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < MinQueryRunes {
		metrics.GeocodeRequests.WithLabelValues(metrics.GeocodeShortQuery).Inc()
		return []Candidate{}, nil
	}
	limit = ClampLimit(limit)

	if !p.gate.TryAcquire(p.now()) {
		metrics.GeocodeRequests.WithLabelValues(metrics.GeocodeRateLimited).Inc()
		return nil, fmt.Errorf("%w: try again in a second", domain.ErrRateLimited)
	}

	out, err := p.upstream.Search(ctx, q, limit)
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues(metrics.GeocodeUpstreamErr).Inc()
		return nil, fmt.Errorf("geocode.Proxy.Search: %w", err)
	}
	metrics.GeocodeRequests.WithLabelValues(metrics.GeocodeOK).Inc()
	if out == nil {
		out = []Candidate{}
	}
	return out, nil
}

// ClampLimit maps a requested result count onto [1, MaxLimit]. 0 means the
// caller gave none and yields DefaultLimit; negatives clamp to 1.
func ClampLimit(limit int) int {
	if limit == 0 {
		return DefaultLimit
	}
	return max(1, min(limit, MaxLimit))
}
