package geocode

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"
)

// Candidate is one search result as Nominatim's jsonv2 format reports it.
// Coordinates stay strings because that is how the upstream sends them.
type Candidate struct {
	PlaceID     PlaceID           `json:"place_id"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	Name        string            `json:"name,omitempty"`
	Type        string            `json:"type,omitempty"`
	Class       string            `json:"class,omitempty"`
	Category    string            `json:"category,omitempty"`
	Address     map[string]string `json:"address,omitempty"`
}

// Coordinates parses Lat and Lon. ok is false when either is not a number.
func (c Candidate) Coordinates() (lat, lng float64, ok bool) {
	lat, err := strconv.ParseFloat(c.Lat, 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(c.Lon, 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

// PlaceID is the upstream's identifier for a result. Nominatim sends a
// number, other geocoders a string; both decode, and a numeric id encodes
// back as a number.
type PlaceID string

// UnmarshalJSON accepts a JSON number, string or null.
func (p *PlaceID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*p = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = PlaceID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*p = PlaceID(n.String())
	}
	return nil
}

// MarshalJSON writes integer ids as numbers and everything else as strings.
func (p PlaceID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(p), 10, 64); err == nil {
		return []byte(p), nil
	}
	return json.Marshal(string(p))
}

// String returns the id as text.
func (p PlaceID) String() string {
	return string(p)
}
