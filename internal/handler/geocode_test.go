package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couplemap/couplemap/internal/api"
	"github.com/couplemap/couplemap/internal/domain"
	"github.com/couplemap/couplemap/internal/geocode"
	"github.com/couplemap/couplemap/internal/handler"
)

func TestGeocode_200_NoCredentialNeeded(t *testing.T) {
	var gotQuery string
	var gotLimit int
	geo := &mockGeocoder{
		search: func(_ context.Context, q string, limit int) ([]geocode.Candidate, error) {
			gotQuery, gotLimit = q, limit
			return []geocode.Candidate{{
				PlaceID:     "123",
				Lat:         "37.5665",
				Lon:         "126.9780",
				DisplayName: "Seoul, South Korea",
			}}, nil
		},
	}
	h := newHTTPHandler(handler.Services{Geocode: geo})

	rec := doAnon(t, h, http.MethodGet, "/api/geocode?q=seoul&limit=3", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "seoul", gotQuery)
	assert.Equal(t, 3, gotLimit)
	resp := decode[[]geocode.Candidate](t, rec)
	require.Len(t, resp, 1)
	assert.Equal(t, "Seoul, South Korea", resp[0].DisplayName)
}

func TestGeocode_InvalidLimitPassesZero(t *testing.T) {
	var gotLimit = -1
	geo := &mockGeocoder{
		search: func(_ context.Context, _ string, limit int) ([]geocode.Candidate, error) {
			gotLimit = limit
			return []geocode.Candidate{}, nil
		},
	}
	h := newHTTPHandler(handler.Services{Geocode: geo})

	rec := doAnon(t, h, http.MethodGet, "/api/geocode?q=busan&limit=lots", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, gotLimit)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGeocode_429(t *testing.T) {
	geo := &mockGeocoder{
		search: func(context.Context, string, int) ([]geocode.Candidate, error) {
			return nil, domain.ErrRateLimited
		},
	}
	h := newHTTPHandler(handler.Services{Geocode: geo})

	rec := doAnon(t, h, http.MethodGet, "/api/geocode?q=seoul", nil)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, api.CodeRateLimited, errorCode(t, rec))
}

func TestGeocode_502_CarriesUpstreamText(t *testing.T) {
	geo := &mockGeocoder{
		search: func(context.Context, string, int) ([]geocode.Candidate, error) {
			return nil, fmt.Errorf("geocode.Proxy.Search: %w: Service Unavailable", domain.ErrUpstream)
		},
	}
	h := newHTTPHandler(handler.Services{Geocode: geo})

	rec := doAnon(t, h, http.MethodGet, "/api/geocode?q=seoul", nil)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Service Unavailable", decode[api.ErrorResponse](t, rec).Error.Message)
}
