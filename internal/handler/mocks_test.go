package handler_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/couplemap/couplemap/internal/api"
	"github.com/couplemap/couplemap/internal/domain"
	"github.com/couplemap/couplemap/internal/geocode"
	"github.com/couplemap/couplemap/internal/handler"
)

// Test doubles for the handler's service interfaces.
// Set only the method fields your test needs.

type mockCoupleServicer struct {
	create  func(ctx context.Context) (domain.Couple, error)
	join    func(ctx context.Context, code string) (uuid.UUID, error)
	resolve func(ctx context.Context, code string) (uuid.UUID, error)
	rotate  func(ctx context.Context, coupleID uuid.UUID) (string, error)
}

func (m *mockCoupleServicer) Create(ctx context.Context) (domain.Couple, error) {
	return m.create(ctx)
}
func (m *mockCoupleServicer) Join(ctx context.Context, code string) (uuid.UUID, error) {
	return m.join(ctx, code)
}
func (m *mockCoupleServicer) Resolve(ctx context.Context, code string) (uuid.UUID, error) {
	return m.resolve(ctx, code)
}
func (m *mockCoupleServicer) Rotate(ctx context.Context, coupleID uuid.UUID) (string, error) {
	return m.rotate(ctx, coupleID)
}

type mockFolderServicer struct {
	list   func(ctx context.Context, coupleID uuid.UUID) ([]domain.Folder, error)
	create func(ctx context.Context, f domain.Folder) (domain.Folder, error)
	update func(ctx context.Context, coupleID, id uuid.UUID, patch domain.FolderPatch) error
	delete func(ctx context.Context, coupleID, id uuid.UUID) error
}

func (m *mockFolderServicer) List(ctx context.Context, coupleID uuid.UUID) ([]domain.Folder, error) {
	return m.list(ctx, coupleID)
}
func (m *mockFolderServicer) Create(ctx context.Context, f domain.Folder) (domain.Folder, error) {
	return m.create(ctx, f)
}
func (m *mockFolderServicer) Update(ctx context.Context, coupleID, id uuid.UUID, patch domain.FolderPatch) error {
	return m.update(ctx, coupleID, id, patch)
}
func (m *mockFolderServicer) Delete(ctx context.Context, coupleID, id uuid.UUID) error {
	return m.delete(ctx, coupleID, id)
}

type mockPlaceServicer struct {
	list   func(ctx context.Context, coupleID uuid.UUID) ([]domain.Place, error)
	create func(ctx context.Context, p domain.Place) (domain.Place, error)
	update func(ctx context.Context, coupleID, id uuid.UUID, patch domain.PlacePatch) error
	delete func(ctx context.Context, coupleID, id uuid.UUID) error
}

func (m *mockPlaceServicer) List(ctx context.Context, coupleID uuid.UUID) ([]domain.Place, error) {
	return m.list(ctx, coupleID)
}
func (m *mockPlaceServicer) Create(ctx context.Context, p domain.Place) (domain.Place, error) {
	return m.create(ctx, p)
}
func (m *mockPlaceServicer) Update(ctx context.Context, coupleID, id uuid.UUID, patch domain.PlacePatch) error {
	return m.update(ctx, coupleID, id, patch)
}
func (m *mockPlaceServicer) Delete(ctx context.Context, coupleID, id uuid.UUID) error {
	return m.delete(ctx, coupleID, id)
}

type mockTagServicer struct {
	suggestions func(ctx context.Context, coupleID uuid.UUID, prefix string, limit int) ([]domain.TagCount, error)
}

func (m *mockTagServicer) Suggestions(ctx context.Context, coupleID uuid.UUID, prefix string, limit int) ([]domain.TagCount, error) {
	return m.suggestions(ctx, coupleID, prefix, limit)
}

type mockExportServicer struct {
	export func(ctx context.Context, coupleID uuid.UUID) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, coupleID uuid.UUID) ([]domain.ExportRow, error) {
	return m.export(ctx, coupleID)
}

type mockGeocoder struct {
	search func(ctx context.Context, query string, limit int) ([]geocode.Candidate, error)
}

func (m *mockGeocoder) Search(ctx context.Context, query string, limit int) ([]geocode.Candidate, error) {
	return m.search(ctx, query, limit)
}

// compile-time checks: every mock must satisfy its handler interface.
var (
	_ handler.CoupleServicer = (*mockCoupleServicer)(nil)
	_ handler.FolderServicer = (*mockFolderServicer)(nil)
	_ handler.PlaceServicer  = (*mockPlaceServicer)(nil)
	_ handler.TagServicer    = (*mockTagServicer)(nil)
	_ handler.ExportServicer = (*mockExportServicer)(nil)
	_ handler.Geocoder       = (*mockGeocoder)(nil)
)

// ---- helpers ---------------------------------------------------------------

const testCode = "ABCD-EFGH"

var testCoupleID = uuid.MustParse("7f2c1a8e-3b4d-4c5e-9f60-718293a4b5c6")

// authedCouples resolves testCode to testCoupleID and rejects anything else.
func authedCouples() *mockCoupleServicer {
	return &mockCoupleServicer{
		resolve: func(_ context.Context, code string) (uuid.UUID, error) {
			if code != testCode {
				return uuid.Nil, domain.ErrUnauthenticated
			}
			return testCoupleID, nil
		},
	}
}

// newHTTPHandler wires a Server into the real router.
// This mirrors exactly how main.go wires it in production.
func newHTTPHandler(svc handler.Services) http.Handler {
	if svc.Couples == nil {
		svc.Couples = authedCouples()
	}
	srv := handler.NewServer(svc, nil)
	return handler.NewRouter(srv, handler.RouterConfig{
		CORSOrigins:  []string{"http://localhost:5173"},
		MaxBodyBytes: 1 << 20,
	})
}

// do sends a request carrying the test invite code and returns the recorder.
func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := newRequest(t, method, path, body)
	req.Header.Set(api.InviteCodeHeader, testCode)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// doAnon sends a request without a credential.
func doAnon(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newRequest(t, method, path, body))
	return rec
}

func newRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[api.ErrorResponse](t, rec).Error.Code
}

func doRequest(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
