package handler_test

import (
	"context"
	"encoding/csv"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couplemap/couplemap/internal/api"
	"github.com/couplemap/couplemap/internal/domain"
	"github.com/couplemap/couplemap/internal/handler"
)

func exportFixture() []domain.ExportRow {
	return []domain.ExportRow{
		{
			PlaceID:     "11111111-1111-1111-1111-111111111111",
			Title:       "Seaside Cafe",
			FolderName:  "Cafes",
			Lat:         35.1587,
			Lng:         129.1604,
			VisitedAt:   "2025-05-04",
			Memo:        "window seat, again",
			MarkerStyle: domain.MarkerHeart,
			CreatedAt:   time.Date(2025, 5, 4, 9, 30, 0, 0, time.UTC),
			Tags:        []string{"#cafe", "#sea"},
		},
		{
			PlaceID:     "22222222-2222-2222-2222-222222222222",
			Title:       "Park",
			Lat:         37.5,
			Lng:         127,
			MarkerStyle: domain.MarkerCircle,
			CreatedAt:   time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func exportServicer() *mockExportServicer {
	return &mockExportServicer{
		export: func(_ context.Context, coupleID uuid.UUID) ([]domain.ExportRow, error) {
			if coupleID != testCoupleID {
				return nil, domain.ErrNotFound
			}
			return exportFixture(), nil
		},
	}
}

func TestGetExport_JSON(t *testing.T) {
	h := newHTTPHandler(handler.Services{Export: exportServicer()})

	rec := do(t, h, http.MethodGet, "/api/export", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]api.ExportRow](t, rec)
	require.Len(t, rows, 2)
	assert.Equal(t, "Cafes", rows[0].FolderName)
	assert.Equal(t, []string{"#cafe", "#sea"}, rows[0].Tags)
	assert.Equal(t, []string{}, rows[1].Tags)
}

func TestGetExport_CSV(t *testing.T) {
	h := newHTTPHandler(handler.Services{Export: exportServicer()})

	rec := do(t, h, http.MethodGet, "/api/export?format=csv", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "place_id", records[0][0])
	assert.Equal(t, "window seat, again", records[1][6])
	assert.Equal(t, "#cafe|#sea", records[1][7])
	assert.Equal(t, "35.1587", records[1][3])
	assert.Equal(t, "2025-05-04T09:30:00Z", records[1][9])
	assert.Equal(t, "", records[2][2])
}
