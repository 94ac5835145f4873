package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/couplemap/couplemap/internal/domain"
)

// PlaceRepo defines the persistence operations for Places.
// Every operation is scoped by coupleID.
type PlaceRepo interface {
	// Create inserts a new place and returns the persisted record.
	// A zero CreatedAt is replaced by the database clock.
	// Returns domain.ErrConflict when the same source result is already saved,
	// and domain.ErrNotFound when FolderID is not a folder of the same couple.
	Create(ctx context.Context, place domain.Place) (domain.Place, error)

	// GetByID retrieves a single place owned by coupleID.
	// Returns domain.ErrNotFound if no such place exists for that couple.
	GetByID(ctx context.Context, coupleID, id uuid.UUID) (domain.Place, error)

	// List returns the couple's places, newest first.
	List(ctx context.Context, coupleID uuid.UUID) ([]domain.Place, error)

	// Update applies the specified slots of patch.
	// Returns domain.ErrNotFound if no such place exists for that couple.
	Update(ctx context.Context, coupleID, id uuid.UUID, patch domain.PlacePatch) error

	// Delete removes a place. Returns domain.ErrNotFound if no such place
	// exists for that couple.
	Delete(ctx context.Context, coupleID, id uuid.UUID) error
}

// pgPlaceRepo is the Postgres implementation of PlaceRepo.
type pgPlaceRepo struct {
	db db
}

// NewPlaceRepo constructs a PlaceRepo backed by the provided db connection.
func NewPlaceRepo(db db) PlaceRepo {
	return &pgPlaceRepo{db: db}
}

const placeColumns = `id, couple_id, folder_id, title, memo, lat, lng, visited_at,
		tags_json, source, source_id, marker_style, created_at`

func (r *pgPlaceRepo) Create(ctx context.Context, place domain.Place) (domain.Place, error) {
	const q = `
		INSERT INTO places (couple_id, folder_id, title, memo, lat, lng, visited_at,
		                    tags_json, source, source_id, marker_style, created_at)
		VALUES (@couple_id, @folder_id, @title, @memo, @lat, @lng, @visited_at,
		        @tags_json, @source, @source_id, @marker_style, COALESCE(@created_at, now()))
		RETURNING ` + placeColumns

	tags, err := encodeTags(place.Tags)
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.Create: %w", err)
	}

	var createdAt pgtype.Timestamptz
	if !place.CreatedAt.IsZero() {
		createdAt = nullTime(&place.CreatedAt)
	}

	args := pgx.NamedArgs{
		"couple_id":    place.CoupleID,
		"folder_id":    nullUUID(place.FolderID),
		"title":        place.Title,
		"memo":         place.Memo, // nil becomes NULL
		"lat":          place.Lat,
		"lng":          place.Lng,
		"visited_at":   nullDate(place.VisitedAt),
		"tags_json":    tags,
		"source":       place.Source,
		"source_id":    place.SourceID,
		"marker_style": string(place.MarkerStyle.OrDefault()),
		"created_at":   createdAt,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanPlace(row)
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.Create: %w", translate(err))
	}
	return result, nil
}

func (r *pgPlaceRepo) GetByID(ctx context.Context, coupleID, id uuid.UUID) (domain.Place, error) {
	const q = `
		SELECT ` + placeColumns + `
		FROM places
		WHERE id = @id AND couple_id = @couple_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "couple_id": coupleID})
	result, err := scanPlace(row)
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgPlaceRepo) List(ctx context.Context, coupleID uuid.UUID) ([]domain.Place, error) {
	const q = `
		SELECT ` + placeColumns + `
		FROM places
		WHERE couple_id = @couple_id
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"couple_id": coupleID})
	if err != nil {
		return nil, fmt.Errorf("repo.PlaceRepo.List: %w", err)
	}
	defer rows.Close()

	places := []domain.Place{}
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.PlaceRepo.List: scan: %w", err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PlaceRepo.List: rows: %w", err)
	}
	return places, nil
}

func (r *pgPlaceRepo) Update(ctx context.Context, coupleID, id uuid.UUID, patch domain.PlacePatch) error {
	args := pgx.NamedArgs{"id": id, "couple_id": coupleID}
	var set []string

	if patch.FolderID.IsSpecified() {
		set = append(set, "folder_id = @folder_id")
		if patch.FolderID.IsNull() {
			args["folder_id"] = pgtype.UUID{}
		} else {
			args["folder_id"] = pgtype.UUID{Bytes: patch.FolderID.MustGet(), Valid: true}
		}
	}
	if patch.Title != nil {
		set = append(set, "title = @title")
		args["title"] = *patch.Title
	}
	if patch.Memo.IsSpecified() {
		set = append(set, "memo = @memo")
		if patch.Memo.IsNull() {
			args["memo"] = pgtype.Text{}
		} else {
			args["memo"] = pgtype.Text{String: patch.Memo.MustGet(), Valid: true}
		}
	}
	if patch.VisitedAt.IsSpecified() {
		set = append(set, "visited_at = @visited_at")
		if patch.VisitedAt.IsNull() {
			args["visited_at"] = pgtype.Date{}
		} else {
			args["visited_at"] = pgtype.Date{Time: patch.VisitedAt.MustGet(), Valid: true}
		}
	}
	if patch.Tags != nil {
		tags, err := encodeTags(*patch.Tags)
		if err != nil {
			return fmt.Errorf("repo.PlaceRepo.Update: %w", err)
		}
		set = append(set, "tags_json = @tags_json")
		args["tags_json"] = tags
	}
	if patch.MarkerStyle != nil {
		set = append(set, "marker_style = @marker_style")
		args["marker_style"] = string(*patch.MarkerStyle)
	}

	if len(set) == 0 {
		if _, err := r.GetByID(ctx, coupleID, id); err != nil {
			return fmt.Errorf("repo.PlaceRepo.Update: %w", err)
		}
		return nil
	}

	q := `UPDATE places SET ` + strings.Join(set, ", ") + ` WHERE id = @id AND couple_id = @couple_id`
	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("repo.PlaceRepo.Update: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PlaceRepo.Update: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgPlaceRepo) Delete(ctx context.Context, coupleID, id uuid.UUID) error {
	const q = `DELETE FROM places WHERE id = @id AND couple_id = @couple_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "couple_id": coupleID})
	if err != nil {
		return fmt.Errorf("repo.PlaceRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PlaceRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanPlace maps a single database row into a domain.Place.
// The tags blob is decoded leniently; see decodeTags.
func scanPlace(s scanner) (domain.Place, error) {
	var (
		p           domain.Place
		id          pgtype.UUID
		coupleID    pgtype.UUID
		folderID    pgtype.UUID
		memo        pgtype.Text
		visitedAt   pgtype.Date
		tagsJSON    string
		source      pgtype.Text
		sourceID    pgtype.Text
		markerStyle string
	)
	err := s.Scan(&id, &coupleID, &folderID, &p.Title, &memo, &p.Lat, &p.Lng, &visitedAt,
		&tagsJSON, &source, &sourceID, &markerStyle, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Place{}, domain.ErrNotFound
		}
		return domain.Place{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	p.CoupleID = uuid.UUID(coupleID.Bytes)
	if folderID.Valid {
		fid := uuid.UUID(folderID.Bytes)
		p.FolderID = &fid
	}
	p.Memo = textPtr(memo)
	if visitedAt.Valid {
		v := visitedAt.Time
		p.VisitedAt = &v
	}
	p.Tags = decodeTags(tagsJSON)
	p.Source = textPtr(source)
	p.SourceID = textPtr(sourceID)
	p.MarkerStyle = domain.MarkerStyle(markerStyle).OrDefault()
	return p, nil
}

// encodeTags serializes tags for the tags_json column. nil encodes as "[]".
func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

// decodeTags parses the tags_json column. A blob that is not a JSON array
// yields an empty list, and non-string elements are skipped: a bad row must
// never break listing.
func decodeTags(blob string) []string {
	var raw []any
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return []string{}
	}
	tags := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func nullUUID(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}

func nullDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *t, Valid: true}
}
