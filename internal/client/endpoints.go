package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/couplemap/couplemap/internal/api"
	"github.com/couplemap/couplemap/internal/geocode"
	"github.com/couplemap/couplemap/internal/invite"
)

// ---- couple -----------------------------------------------------------------

// CreateCouple mints a new couple and stores its invite code.
func (c *Client) CreateCouple(ctx context.Context) (api.CreateCoupleResponse, error) {
	var resp api.CreateCoupleResponse
	err := c.do(ctx, call{method: http.MethodPost, path: "/api/couple/create", public: true}, &resp)
	if err != nil {
		return api.CreateCoupleResponse{}, fmt.Errorf("client.CreateCouple: %w", err)
	}
	if err := c.creds.Set(resp.InviteCode); err != nil {
		return resp, fmt.Errorf("client.CreateCouple: store code: %w", err)
	}
	return resp, nil
}

// JoinCouple joins the couple holding code and stores the code, normalized,
// as this device's credential.
func (c *Client) JoinCouple(ctx context.Context, code string) (api.JoinCoupleResponse, error) {
	var resp api.JoinCoupleResponse
	body := api.JoinCoupleRequest{InviteCode: code}
	err := c.do(ctx, call{method: http.MethodPost, path: "/api/couple/join", body: body, public: true}, &resp)
	if err != nil {
		return api.JoinCoupleResponse{}, fmt.Errorf("client.JoinCouple: %w", err)
	}
	if err := c.creds.Set(invite.Normalize(code)); err != nil {
		return resp, fmt.Errorf("client.JoinCouple: store code: %w", err)
	}
	return resp, nil
}

// RotateCode replaces the couple's invite code and stores the new one.
// The partner's device must join again with the new code.
func (c *Client) RotateCode(ctx context.Context) (string, error) {
	var resp api.RotateCodeResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/couple/rotate"}, &resp); err != nil {
		return "", fmt.Errorf("client.RotateCode: %w", err)
	}
	if err := c.creds.Set(resp.InviteCode); err != nil {
		return resp.InviteCode, fmt.Errorf("client.RotateCode: store code: %w", err)
	}
	return resp.InviteCode, nil
}

// ---- folders ----------------------------------------------------------------

// ListFolders returns the couple's folders in display order.
func (c *Client) ListFolders(ctx context.Context) ([]api.Folder, error) {
	var out []api.Folder
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/folders"}, &out); err != nil {
		return nil, fmt.Errorf("client.ListFolders: %w", err)
	}
	return out, nil
}

// CreateFolder creates a folder.
func (c *Client) CreateFolder(ctx context.Context, req api.CreateFolderRequest) (api.Folder, error) {
	var out api.Folder
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/folders", body: req}, &out); err != nil {
		return api.Folder{}, fmt.Errorf("client.CreateFolder: %w", err)
	}
	return out, nil
}

// UpdateFolder applies a partial update.
func (c *Client) UpdateFolder(ctx context.Context, id uuid.UUID, req api.UpdateFolderRequest) error {
	if err := c.do(ctx, call{method: http.MethodPatch, path: "/api/folders/" + id.String(), body: req}, nil); err != nil {
		return fmt.Errorf("client.UpdateFolder: %w", err)
	}
	return nil
}

// DeleteFolder deletes a folder; its places become unassigned.
func (c *Client) DeleteFolder(ctx context.Context, id uuid.UUID) error {
	if err := c.do(ctx, call{method: http.MethodDelete, path: "/api/folders/" + id.String()}, nil); err != nil {
		return fmt.Errorf("client.DeleteFolder: %w", err)
	}
	return nil
}

// ---- places -----------------------------------------------------------------

// ListPlaces returns the couple's places, newest first.
func (c *Client) ListPlaces(ctx context.Context) ([]api.Place, error) {
	var out []api.Place
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/places"}, &out); err != nil {
		return nil, fmt.Errorf("client.ListPlaces: %w", err)
	}
	return out, nil
}

// CreatePlace saves a place.
func (c *Client) CreatePlace(ctx context.Context, req api.CreatePlaceRequest) (api.Place, error) {
	var out api.Place
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/places", body: req}, &out); err != nil {
		return api.Place{}, fmt.Errorf("client.CreatePlace: %w", err)
	}
	return out, nil
}

// UpdatePlace applies a partial update.
func (c *Client) UpdatePlace(ctx context.Context, id uuid.UUID, req api.UpdatePlaceRequest) error {
	if err := c.do(ctx, call{method: http.MethodPatch, path: "/api/places/" + id.String(), body: req}, nil); err != nil {
		return fmt.Errorf("client.UpdatePlace: %w", err)
	}
	return nil
}

// DeletePlace deletes a place.
func (c *Client) DeletePlace(ctx context.Context, id uuid.UUID) error {
	if err := c.do(ctx, call{method: http.MethodDelete, path: "/api/places/" + id.String()}, nil); err != nil {
		return fmt.Errorf("client.DeletePlace: %w", err)
	}
	return nil
}

// ---- search, tags, export ---------------------------------------------------

// Geocode searches for places matching query. limit <= 0 lets the server
// pick its default.
func (c *Client) Geocode(ctx context.Context, query string, limit int) ([]geocode.Candidate, error) {
	q := url.Values{"q": {query}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []geocode.Candidate
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/geocode", query: q, public: true}, &out); err != nil {
		return nil, fmt.Errorf("client.Geocode: %w", err)
	}
	return out, nil
}

// Tags returns tag suggestions, most used first.
func (c *Client) Tags(ctx context.Context, prefix string, limit int) ([]api.TagSuggestion, error) {
	q := url.Values{}
	if prefix != "" {
		q.Set("q", prefix)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []api.TagSuggestion
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/tags", query: q}, &out); err != nil {
		return nil, fmt.Errorf("client.Tags: %w", err)
	}
	return out, nil
}

// Export returns every place as a flat row.
func (c *Client) Export(ctx context.Context) ([]api.ExportRow, error) {
	var out []api.ExportRow
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/export"}, &out); err != nil {
		return nil, fmt.Errorf("client.Export: %w", err)
	}
	return out, nil
}

// ExportCSV returns the CSV form of Export.
func (c *Client) ExportCSV(ctx context.Context) ([]byte, error) {
	raw, err := c.send(ctx, call{method: http.MethodGet, path: "/api/export", query: url.Values{"format": {"csv"}}})
	if err != nil {
		return nil, fmt.Errorf("client.ExportCSV: %w", err)
	}
	return raw, nil
}
