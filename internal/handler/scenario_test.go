package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couplemap/couplemap/internal/api"
	"github.com/couplemap/couplemap/internal/handler"
	"github.com/couplemap/couplemap/internal/invite"
	"github.com/couplemap/couplemap/internal/repo"
	"github.com/couplemap/couplemap/internal/service"
	"github.com/couplemap/couplemap/testutil"
)

// newScenarioHandler wires the real services and repos over a rolled-back
// test transaction.
func newScenarioHandler(t *testing.T) http.Handler {
	t.Helper()
	tx := testutil.NewTx(t)

	couples := repo.NewCoupleRepo(tx)
	folders := repo.NewFolderRepo(tx)
	places := repo.NewPlaceRepo(tx)

	srv := handler.NewServer(handler.Services{
		Couples: service.NewCoupleService(couples, invite.NewGenerator(), nil),
		Folders: service.NewFolderService(folders),
		Places:  service.NewPlaceService(places, folders),
		Tags:    service.NewTagService(places),
		Export:  service.NewExportService(places, folders),
	}, nil)
	return handler.NewRouter(srv, handler.RouterConfig{MaxBodyBytes: 1 << 20})
}

// as sends a request with the given invite code.
func as(t *testing.T, h http.Handler, code, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := newRequest(t, method, path, body)
	if code != "" {
		req.Header.Set(api.InviteCodeHeader, code)
	}
	return doRequest(h, req)
}

func TestScenario_CoupleLifecycle(t *testing.T) {
	h := newScenarioHandler(t)

	// Create a couple and join it from a "second device".
	rec := as(t, h, "", http.MethodPost, "/api/couple/create", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[api.CreateCoupleResponse](t, rec)
	require.True(t, invite.Valid(created.InviteCode), created.InviteCode)

	rec = as(t, h, "", http.MethodPost, "/api/couple/join",
		map[string]any{"inviteCode": "  " + strings.ToLower(created.InviteCode) + " "})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, created.CoupleID, decode[api.JoinCoupleResponse](t, rec).CoupleID)

	code := created.InviteCode

	// Folder, then a place inside it.
	rec = as(t, h, code, http.MethodPost, "/api/folders",
		map[string]any{"name": " Cafes ", "color": "#F4A261", "icon": "coffee"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	folder := decode[api.Folder](t, rec)
	assert.Equal(t, "Cafes", folder.Name)

	rec = as(t, h, code, http.MethodPost, "/api/places", map[string]any{
		"folder_id":  folder.ID.String(),
		"title":      "Seaside Cafe",
		"lat":        35.1587,
		"lng":        129.1604,
		"tags":       []string{"cafe", "#cafe", "sea"},
		"visited_at": "2025-05-04",
		"source":     "nominatim",
		"source_id":  "987",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	place := decode[api.Place](t, rec)
	assert.Equal(t, []string{"#cafe", "#sea"}, place.Tags)
	assert.Equal(t, "circle", place.MarkerStyle)
	require.NotNil(t, place.FolderID)

	// Patch: clear visited_at, keep the title on a blank value.
	rec = as(t, h, code, http.MethodPatch, "/api/places/"+place.ID.String(),
		`{"visited_at":"","title":"   ","marker_style":"heart"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = as(t, h, code, http.MethodGet, "/api/places", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]api.Place](t, rec)
	require.Len(t, listed, 1)
	assert.Nil(t, listed[0].VisitedAt)
	assert.Equal(t, "Seaside Cafe", listed[0].Title)
	assert.Equal(t, "heart", listed[0].MarkerStyle)

	// Tag suggestions come from the saved place.
	rec = as(t, h, code, http.MethodGet, "/api/tags?q=ca", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []api.TagSuggestion{{Tag: "#cafe", Count: 1}}, decode[[]api.TagSuggestion](t, rec))

	// Rotation: the old code stops working at once.
	rec = as(t, h, code, http.MethodPost, "/api/couple/rotate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	newCode := decode[api.RotateCodeResponse](t, rec).InviteCode
	require.NotEqual(t, code, newCode)

	rec = as(t, h, code, http.MethodGet, "/api/places", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = as(t, h, newCode, http.MethodGet, "/api/places", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Deleting the folder keeps the place, now unassigned.
	rec = as(t, h, newCode, http.MethodDelete, "/api/folders/"+folder.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = as(t, h, newCode, http.MethodGet, "/api/places", nil)
	listed = decode[[]api.Place](t, rec)
	require.Len(t, listed, 1)
	assert.Nil(t, listed[0].FolderID)

	rec = as(t, h, newCode, http.MethodGet, "/api/folders", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())

	// Saving the same geocoder result twice is a conflict. This aborts the
	// test transaction, so it runs last.
	rec = as(t, h, newCode, http.MethodPost, "/api/places", map[string]any{
		"title": "Again", "lat": 1, "lng": 1, "source": "nominatim", "source_id": "987",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestScenario_TenantIsolation(t *testing.T) {
	h := newScenarioHandler(t)

	codeA := decode[api.CreateCoupleResponse](t, as(t, h, "", http.MethodPost, "/api/couple/create", nil)).InviteCode
	codeB := decode[api.CreateCoupleResponse](t, as(t, h, "", http.MethodPost, "/api/couple/create", nil)).InviteCode

	rec := as(t, h, codeA, http.MethodPost, "/api/folders", map[string]any{"name": "A", "color": "#111"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	folderA := decode[api.Folder](t, rec)

	rec = as(t, h, codeA, http.MethodPost, "/api/places", map[string]any{
		"title": "A's place", "lat": 1, "lng": 2, "folder_id": folderA.ID.String(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	placeA := decode[api.Place](t, rec)

	// B sees nothing of A's.
	assert.JSONEq(t, `[]`, as(t, h, codeB, http.MethodGet, "/api/folders", nil).Body.String())
	assert.JSONEq(t, `[]`, as(t, h, codeB, http.MethodGet, "/api/places", nil).Body.String())

	// B cannot touch A's rows, and cannot reference A's folder.
	paths := []struct{ method, path, body string }{
		{http.MethodPatch, "/api/folders/" + folderA.ID.String(), `{"name":"mine"}`},
		{http.MethodPatch, "/api/folders/" + folderA.ID.String(), `{}`},
		{http.MethodDelete, "/api/folders/" + folderA.ID.String(), ``},
		{http.MethodPatch, "/api/places/" + placeA.ID.String(), `{"title":"mine"}`},
		{http.MethodDelete, "/api/places/" + placeA.ID.String(), ``},
	}
	for _, p := range paths {
		var body any
		if p.body != "" {
			body = p.body
		}
		rec := as(t, h, codeB, p.method, p.path, body)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", p.method, p.path)
	}

	rec = as(t, h, codeB, http.MethodPost, "/api/places", map[string]any{
		"title": "sneaky", "lat": 1, "lng": 2, "folder_id": folderA.ID.String(),
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// A's data is untouched.
	rec = as(t, h, codeA, http.MethodGet, "/api/export?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), fmt.Sprintf("%s,A's place,A,", placeA.ID))
}
