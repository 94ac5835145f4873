package geocode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/couplemap/couplemap/internal/domain"
	"github.com/couplemap/couplemap/internal/metrics"
)

// maxErrorBody bounds how much of an upstream error body is echoed back.
const maxErrorBody = 2048

// NominatimConfig configures the upstream client.
type NominatimConfig struct {
	// BaseURL is the Nominatim root, e.g. https://nominatim.openstreetmap.org.
	BaseURL string
	// UserAgent identifies the application, as the Nominatim usage policy requires.
	UserAgent string
	// Language is sent as Accept-Language.
	Language string
	// HTTPClient defaults to a client with a 10 second timeout.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Nominatim searches a Nominatim instance. Calls go through a circuit
// breaker that opens after five consecutive failures and lets a trial call through after
// thirty seconds.
type Nominatim struct {
	base      *url.URL
	userAgent string
	language  string
	http      *http.Client
	cb        *gobreaker.CircuitBreaker[[]Candidate]
}

// NewNominatim validates cfg and returns a Nominatim client.
func NewNominatim(cfg NominatimConfig) (*Nominatim, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("geocode.NewNominatim: invalid base URL %q", cfg.BaseURL)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cb := gobreaker.NewCircuitBreaker[[]Candidate](gobreaker.Settings{
		Name:        "nominatim",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			metrics.GeocodeBreakerOpen.Set(boolGauge(to == gobreaker.StateOpen))
		},
	})

	return &Nominatim{
		base:      base,
		userAgent: cfg.UserAgent,
		language:  cfg.Language,
		http:      hc,
		cb:        cb,
	}, nil
}

// Search runs one upstream query. Every failure is reported as
// domain.ErrUpstream, carrying the upstream's error text when it sent one.
func (n *Nominatim) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	out, err := n.cb.Execute(func() ([]Candidate, error) {
		return n.search(ctx, query, limit)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: geocoder temporarily unavailable", domain.ErrUpstream)
		}
		return nil, err
	}
	return out, nil
}

func (n *Nominatim) search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	u := n.base.JoinPath("search")
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("addressdetails", "1")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}
	if n.language != "" {
		req.Header.Set("Accept-Language", n.language)
	}

	resp, err := n.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("geocode error: %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrUpstream, msg)
	}

	var out []Candidate
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrUpstream, err)
	}
	if out == nil {
		out = []Candidate{}
	}
	return out, nil
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
