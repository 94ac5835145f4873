// Package client is a typed Go client for the CoupleMap HTTP API.
// It attaches the stored invite code to every scoped call and maps error
// responses back onto the domain error taxonomy.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/couplemap/couplemap/internal/api"
)

const defaultTimeout = 15 * time.Second

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 4096

// Options configures a Client. Every field is optional.
type Options struct {
	// HTTPClient defaults to a client with a 15 second timeout.
	HTTPClient *http.Client
	// Credentials defaults to MemoryCredentials.
	Credentials CredentialStore
	// OnAuthError runs after a 401 or 403 has cleared the stored code,
	// e.g. to send the user back to onboarding.
	OnAuthError func()
	Logger      *slog.Logger
}

// Client talks to one CoupleMap server. It is safe for concurrent use.
type Client struct {
	base        *url.URL
	http        *http.Client
	creds       CredentialStore
	onAuthError func()
	logger      *slog.Logger
}

// New returns a Client for the server at baseURL.
func New(baseURL string, opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("client.New: invalid base URL %q", baseURL)
	}
	c := &Client{
		base:        base,
		http:        opts.HTTPClient,
		creds:       opts.Credentials,
		onAuthError: opts.OnAuthError,
		logger:      opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultTimeout}
	}
	if c.creds == nil {
		c.creds = &MemoryCredentials{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// Credentials returns the store the client reads the invite code from.
func (c *Client) Credentials() CredentialStore {
	return c.creds
}

// call describes one request.
type call struct {
	method string
	path   string
	query  url.Values
	body   any
	// public calls carry no invite code.
	public bool
}

// do sends the request and decodes a 2xx body into out (when non-nil).
func (c *Client) do(ctx context.Context, cl call, out any) error {
	raw, err := c.send(ctx, cl)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", cl.method, cl.path, err)
	}
	return nil
}

// send performs the round trip and returns the raw 2xx body.
func (c *Client) send(ctx context.Context, cl call) ([]byte, error) {
	u := *c.base
	u.Path = c.base.Path + cl.path
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", cl.method, cl.path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !cl.public {
		code, err := c.creds.Get()
		if err != nil {
			return nil, fmt.Errorf("read credential: %w", err)
		}
		if code == "" {
			return nil, ErrNoCredential
		}
		req.Header.Set(api.InviteCodeHeader, code)
	}

	c.logger.DebugContext(ctx, "api request", "method", cl.method, "path", cl.path)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnreachable, cl.method, cl.path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: read response: %v", ErrUnreachable, err)
		}
		return raw, nil
	}

	apiErr := readError(resp)
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.handleAuthError(ctx)
	}
	return nil, apiErr
}

// handleAuthError forgets the stored code and notifies the application.
func (c *Client) handleAuthError(ctx context.Context) {
	if err := c.creds.Clear(); err != nil {
		c.logger.WarnContext(ctx, "failed to clear credential", "error", err)
	}
	if c.onAuthError != nil {
		c.onAuthError()
	}
}

// readError builds an *Error from a non-2xx response. The body may be the
// standard JSON error envelope or plain text.
func readError(resp *http.Response) *Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	e := &Error{Status: resp.StatusCode}

	var envelope api.ErrorResponse
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Code != "" {
		e.Code = envelope.Error.Code
		e.Message = envelope.Error.Message
		return e
	}
	e.Message = strings.TrimSpace(string(raw))
	return e
}
