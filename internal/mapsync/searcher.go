package mapsync

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sethvargo/go-retry"

	"github.com/couplemap/couplemap/internal/domain"
	"github.com/couplemap/couplemap/internal/geocode"
)

// Geocoder runs a place search. *client.Client satisfies it.
type Geocoder interface {
	Geocode(ctx context.Context, query string, limit int) ([]geocode.Candidate, error)
}

// Search defaults.
const (
	DefaultDebounce   = 600 * time.Millisecond
	DefaultRetryDelay = 1500 * time.Millisecond
	DefaultRetries    = 2
	DefaultLimit      = 5
	minQueryRunes     = 2
)

// SearchResult is delivered once per settled query.
type SearchResult struct {
	Query      string
	Candidates []geocode.Candidate
	Err        error
}

// SearcherConfig configures a Searcher. Zero values take the defaults;
// a negative Retries disables retrying.
type SearcherConfig struct {
	Debounce   time.Duration
	RetryDelay time.Duration
	Retries    int
	Limit      int
}

// Searcher debounces query input and runs the search once typing pauses.
// A result is only delivered if no newer input arrived while it was running.
// Superseded searches are left to finish; their results are dropped.
// Deliveries never overlap and never happen after Close returns.
type Searcher struct {
	geo      Geocoder
	deliver  func(SearchResult)
	debounce time.Duration
	delay    time.Duration
	retries  uint64
	limit    int

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	closed bool

	// deliverMu serializes deliveries with their staleness check.
	deliverMu sync.Mutex
}

// NewSearcher returns a Searcher that calls deliver with each fresh result.
// deliver runs on a background goroutine. It may call Input but not Close.
func NewSearcher(geo Geocoder, cfg SearcherConfig, deliver func(SearchResult)) *Searcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	} else if cfg.Retries == 0 {
		cfg.Retries = DefaultRetries
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Searcher{
		geo:      geo,
		deliver:  deliver,
		debounce: cfg.Debounce,
		delay:    cfg.RetryDelay,
		retries:  uint64(cfg.Retries),
		limit:    cfg.Limit,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Input records new query text and restarts the debounce window.
// Queries shorter than two characters clear the results without searching.
func (s *Searcher) Input(query string) {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if utf8.RuneCountInString(query) < minQueryRunes {
		go s.emit(gen, SearchResult{Query: query})
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.run(gen, query) })
}

// Close stops pending searches. Once it returns no result is delivered.
func (s *Searcher) Close() {
	s.mu.Lock()
	s.closed = true
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
	}
	s.cancel()
	s.mu.Unlock()

	// Wait out a delivery that passed its check before closed was set.
	s.deliverMu.Lock()
	s.deliverMu.Unlock() //nolint:staticcheck // barrier
}

func (s *Searcher) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.gen == gen
}

func (s *Searcher) run(gen uint64, query string) {
	if !s.current(gen) {
		return
	}
	candidates, err := s.search(s.ctx, query)
	s.emit(gen, SearchResult{Query: query, Candidates: candidates, Err: err})
}

// emit delivers r if gen is still the latest input.
func (s *Searcher) emit(gen uint64, r SearchResult) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if !s.current(gen) {
		return
	}
	s.deliver(r)
}

// search retries rate-limited calls at a fixed spacing. Any other error, or
// the last rate-limit error, is returned as-is.
func (s *Searcher) search(ctx context.Context, query string) ([]geocode.Candidate, error) {
	var candidates []geocode.Candidate
	backoff := retry.WithMaxRetries(s.retries, retry.NewConstant(s.delay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, err := s.geo.Geocode(ctx, query, s.limit)
		if errors.Is(err, domain.ErrRateLimited) {
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		candidates = res
		return nil
	})
	return candidates, err
}
