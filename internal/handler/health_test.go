package handler_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couplemap/couplemap/internal/api"
	"github.com/couplemap/couplemap/internal/handler"
)

// TestGetHealth_returns200WithOKStatus verifies that GET /healthz returns
// HTTP 200 and a JSON body of {"status":"ok"}.
func TestGetHealth_returns200WithOKStatus(t *testing.T) {
	h := newHTTPHandler(handler.Services{})

	rec := doAnon(t, h, http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode[api.HealthResponse](t, rec).Status)
}

func TestRouter_ServesOpenAPIDocument(t *testing.T) {
	h := newHTTPHandler(handler.Services{})

	rec := doAnon(t, h, http.MethodGet, "/openapi.yaml", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "openapi:")
	assert.Contains(t, rec.Body.String(), "/api/couple/create")
}

func TestRouter_ServesMetrics(t *testing.T) {
	h := newHTTPHandler(handler.Services{})
	doAnon(t, h, http.MethodGet, "/healthz", nil)

	rec := doAnon(t, h, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "couplemap_http_requests_total")
}

func TestRouter_UnknownRouteIsJSON404(t *testing.T) {
	h := newHTTPHandler(handler.Services{})

	rec := doAnon(t, h, http.MethodGet, "/api/nope", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, api.CodeNotFound, errorCode(t, rec))
}

func TestRouter_413_BodyTooLarge(t *testing.T) {
	srv := handler.NewServer(handler.Services{Couples: authedCouples(), Folders: &mockFolderServicer{}}, nil)
	h := handler.NewRouter(srv, handler.RouterConfig{MaxBodyBytes: 64})

	body := `{"name":"` + strings.Repeat("a", 200) + `","color":"#000"}`
	req := newRequest(t, http.MethodPost, "/api/folders", body)
	req.Header.Set(api.InviteCodeHeader, testCode)
	rec := doRequest(h, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, api.CodeBadRequest, errorCode(t, rec))
}

func TestRouter_PerIPRateLimit(t *testing.T) {
	srv := handler.NewServer(handler.Services{Couples: authedCouples()}, nil)
	h := handler.NewRouter(srv, handler.RouterConfig{RateLimit: 2})

	for i := 0; i < 2; i++ {
		rec := doAnon(t, h, http.MethodPost, "/api/couple/join", "{}")
		assert.NotEqual(t, http.StatusTooManyRequests, rec.Code)
	}
	rec := doAnon(t, h, http.MethodPost, "/api/couple/join", "{}")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, api.CodeRateLimited, errorCode(t, rec))
}

func TestRouter_HealthNotRateLimited(t *testing.T) {
	srv := handler.NewServer(handler.Services{}, nil)
	h := handler.NewRouter(srv, handler.RouterConfig{RateLimit: 1})

	for i := 0; i < 3; i++ {
		rec := doAnon(t, h, http.MethodGet, "/healthz", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
