package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couplemap/couplemap/internal/api"
	"github.com/couplemap/couplemap/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"place_id", "title", "folder_name", "lat", "lng",
	"visited_at", "memo", "tags", "marker_style", "created_at",
}

// GetExport handles GET /api/export.
// It returns one flat row per place. Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.export.Export(r.Context(), coupleID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if strings.EqualFold(queryString(r, "format"), "csv") {
		writeCSV(w, rows)
		return
	}

	out := make([]api.ExportRow, len(rows))
	for i, row := range rows {
		out[i] = exportRowToResponse(row)
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV encodes rows as CSV with a header line.
// Tags within a row are pipe-separated ("|") to keep each place on a single line.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, row := range rows {
		//nolint:errcheck
		cw.Write(exportRowToCSVRecord(row))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="couplemap-export.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func exportRowToResponse(r domain.ExportRow) api.ExportRow {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return api.ExportRow{
		PlaceID:     r.PlaceID,
		Title:       r.Title,
		FolderName:  r.FolderName,
		Lat:         r.Lat,
		Lng:         r.Lng,
		VisitedAt:   r.VisitedAt,
		Memo:        r.Memo,
		Tags:        tags,
		MarkerStyle: string(r.MarkerStyle),
		CreatedAt:   r.CreatedAt,
	}
}

func exportRowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		r.PlaceID,
		r.Title,
		r.FolderName,
		strconv.FormatFloat(r.Lat, 'f', -1, 64),
		strconv.FormatFloat(r.Lng, 'f', -1, 64),
		r.VisitedAt,
		r.Memo,
		strings.Join(r.Tags, "|"),
		string(r.MarkerStyle),
		r.CreatedAt.UTC().Format(time.RFC3339),
	}
}
