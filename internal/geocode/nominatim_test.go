package geocode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couplemap/couplemap/internal/domain"
	"github.com/couplemap/couplemap/internal/geocode"
)

func newNominatim(t *testing.T, h http.HandlerFunc) *geocode.Nominatim {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	n, err := geocode.NewNominatim(geocode.NominatimConfig{
		BaseURL:   srv.URL,
		UserAgent: "CoupleMap-test/1.0",
		Language:  "ko",
	})
	require.NoError(t, err)
	return n
}

func TestNominatim_Search(t *testing.T) {
	n := newNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("addressdetails"))
		assert.Equal(t, "4", r.URL.Query().Get("limit"))
		assert.Equal(t, "남산타워", r.URL.Query().Get("q"))
		assert.Equal(t, "CoupleMap-test/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "ko", r.Header.Get("Accept-Language"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"place_id": 1234, "lat": "37.5512", "lon": "126.9882", "display_name": "N Seoul Tower, Yongsan", "name": "N Seoul Tower", "type": "attraction", "class": "tourism", "address": {"city": "Seoul"}},
			{"place_id": "abc", "lat": "1", "lon": "2", "display_name": "Other"}
		]`))
	})

	got, err := n.Search(context.Background(), "남산타워", 4)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1234", got[0].PlaceID.String())
	assert.Equal(t, "N Seoul Tower", got[0].Name)
	assert.Equal(t, "Seoul", got[0].Address["city"])
	lat, lng, ok := got[0].Coordinates()
	require.True(t, ok)
	assert.InDelta(t, 37.5512, lat, 1e-9)
	assert.InDelta(t, 126.9882, lng, 1e-9)
	assert.Equal(t, "abc", got[1].PlaceID.String())
}

func TestNominatim_Non2xxCarriesUpstreamText(t *testing.T) {
	n := newNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Too many requests from your IP", http.StatusTooManyRequests)
	})

	_, err := n.Search(context.Background(), "seoul", 1)

	require.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "Too many requests from your IP")
}

func TestNominatim_EmptyErrorBody(t *testing.T) {
	n := newNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := n.Search(context.Background(), "seoul", 1)

	require.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "503")
}

func TestNominatim_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var hits atomic.Int32
	n := newNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := n.Search(ctx, "seoul", 1)
		require.ErrorIs(t, err, domain.ErrUpstream)
	}
	_, err := n.Search(ctx, "seoul", 1)

	require.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, int32(5), hits.Load(), "open breaker must not call the upstream")
}

func TestNewNominatim_InvalidURL(t *testing.T) {
	_, err := geocode.NewNominatim(geocode.NominatimConfig{BaseURL: "not a url"})

	assert.Error(t, err)
}
