package domain

import "time"

// ExportRow is a single row in the full-data export.
// It is a flat, denormalized view: one row per place, with the folder name
// repeated for every place in that folder. Unfoldered places have an empty
// FolderName.
//
// Tags keep their stored order. Callers that need a joined string (e.g. CSV)
// should join with "|".
type ExportRow struct {
	PlaceID     string
	Title       string
	FolderName  string
	Lat         float64
	Lng         float64
	VisitedAt   string // "2006-01-02" formatted date, empty when nil
	Memo        string
	MarkerStyle MarkerStyle
	CreatedAt   time.Time

	Tags []string
}
