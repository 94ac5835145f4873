// Package api holds the JSON wire types of the CoupleMap HTTP API. The
// server handlers decode and encode them, and the Go client uses the same
// types, so both sides agree on field names and null handling.
package api

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// InviteCodeHeader carries the couple credential on every scoped request.
const InviteCodeHeader = "X-Invite-Code"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is a machine-readable code plus a human-readable message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes used in ErrorBody.Code.
const (
	CodeBadRequest    = "bad_request"
	CodeValidation    = "validation_error"
	CodeUnauthorized  = "unauthorized"
	CodeNotFound      = "not_found"
	CodeConflict      = "conflict"
	CodeRateLimited   = "rate_limited"
	CodeUpstream      = "upstream_error"
	CodeInternalError = "internal_error"
)

// ---- couple -----------------------------------------------------------------

// CreateCoupleResponse is returned by POST /api/couple/create.
type CreateCoupleResponse struct {
	InviteCode string    `json:"inviteCode"`
	CoupleID   uuid.UUID `json:"coupleId"`
}

// JoinCoupleRequest is the body of POST /api/couple/join.
type JoinCoupleRequest struct {
	InviteCode string `json:"inviteCode" validate:"required,max=64"`
}

// JoinCoupleResponse is returned by POST /api/couple/join.
type JoinCoupleResponse struct {
	CoupleID uuid.UUID `json:"coupleId"`
}

// RotateCodeResponse is returned by POST /api/couple/rotate.
type RotateCodeResponse struct {
	InviteCode string `json:"inviteCode"`
}

// ---- generic ----------------------------------------------------------------

// UpdatedResponse is returned by every PATCH endpoint.
type UpdatedResponse struct {
	ID string `json:"id"`
}

// DeletedResponse is returned by every DELETE endpoint.
type DeletedResponse struct {
	Success bool `json:"success"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// ---- tags & export ----------------------------------------------------------

// TagSuggestion is one entry of GET /api/tags.
type TagSuggestion struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// ExportRow is one entry of GET /api/export.
type ExportRow struct {
	PlaceID     string    `json:"place_id"`
	Title       string    `json:"title"`
	FolderName  string    `json:"folder_name"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	VisitedAt   string    `json:"visited_at"`
	Memo        string    `json:"memo"`
	Tags        []string  `json:"tags"`
	MarkerStyle string    `json:"marker_style"`
	CreatedAt   time.Time `json:"created_at"`
}

// ---- helpers ----------------------------------------------------------------

// LooseFloat decodes a JSON number or numeric string. Anything else (null,
// booleans, text, objects) decodes without error and leaves Valid false, so
// a sloppy client never fails a whole request over an ordering key.
type LooseFloat struct {
	Value float64
	Valid bool
}

// Float returns a LooseFloat holding v.
func Float(v float64) *LooseFloat {
	return &LooseFloat{Value: v, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *LooseFloat) UnmarshalJSON(b []byte) error {
	*f = LooseFloat{}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	f.Value, f.Valid = n, true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f LooseFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// TagList decodes a tags field leniently: string elements of a JSON array are
// kept and everything else is dropped. A value that is not an array decodes
// as an empty list.
type TagList []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *TagList) UnmarshalJSON(b []byte) error {
	*t = TagList{}
	var raw []any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	for _, v := range raw {
		if s, ok := v.(string); ok {
			*t = append(*t, s)
		}
	}
	return nil
}

// Date formats t as a YYYY-MM-DD date, or returns nil for nil.
func Date(t *time.Time) *openapi_types.Date {
	if t == nil {
		return nil
	}
	return &openapi_types.Date{Time: *t}
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(openapi_types.DateFormat, strings.TrimSpace(s))
}
