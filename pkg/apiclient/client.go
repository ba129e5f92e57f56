// Package apiclient is a typed client for the FleetDesk HTTP API. It
// decodes the {"data"} and {"error"} envelopes so callers deal in values
// and *Error.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fleetdesk/fleetdesk/pkg/httpapi"
)

const defaultTimeout = 30 * time.Second

type Option func(c *Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithToken sends a fixed session token as a bearer header.
func WithToken(token string) Option {
	return func(c *Client) { c.tokens = staticToken(token) }
}

// WithCredentials logs in lazily and logs in again when the session expires.
func WithCredentials(email, password string) Option {
	return func(c *Client) {
		c.tokens = &tokenRefresher{client: c, email: email, password: password}
	}
}

type tokenSource interface {
	CurrentToken() string
	RefreshToken(ctx context.Context) (string, error)
}

type staticToken string

func (t staticToken) CurrentToken() string { return string(t) }

func (t staticToken) RefreshToken(ctx context.Context) (string, error) {
	return string(t), nil
}

type Client struct {
	base   *url.URL
	http   *http.Client
	tokens tokenSource
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("apiclient: invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("apiclient: base url %q must be absolute", baseURL)
	}
	c := &Client{base: u, http: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Do sends body as JSON and decodes the data envelope into out. The list
// meta is returned when the response carries one.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) (*httpapi.ListMeta, error) {
	return c.do(ctx, method, path, query, body, out, true)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, retryAuth bool) (*httpapi.ListMeta, error) {
	token := ""
	if c.tokens != nil {
		token = c.tokens.CurrentToken()
		if token == "" {
			var err error
			if token, err = c.tokens.RefreshToken(ctx); err != nil {
				return nil, err
			}
		}
	}

	resp, err := c.send(ctx, method, path, query, body, token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && retryAuth && c.tokens != nil {
		if _, ok := c.tokens.(*tokenRefresher); ok {
			if _, err := c.tokens.RefreshToken(ctx); err != nil {
				return nil, err
			}
			return c.do(ctx, method, path, query, body, out, false)
		}
	}
	return decode(resp, out)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any, token string) (*http.Response, error) {
	u, err := url.Parse(c.base.String() + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("apiclient: invalid path %q: %w", path, err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: encode body: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		if method == http.MethodPatch {
			req.Header.Set("Content-Type", "application/merge-patch+json")
		} else {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.http.Do(req)
}

type envelope struct {
	Data  json.RawMessage    `json:"data"`
	Meta  *httpapi.ListMeta  `json:"meta"`
	Error *httpapi.ErrorBody `json:"error"`
}

func decode(resp *http.Response, out any) (*httpapi.ListMeta, error) {
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: read body: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &Error{Status: resp.StatusCode, Code: "HTTP_ERROR", Message: strings.TrimSpace(string(raw))}
		}
		return nil, fmt.Errorf("apiclient: decode body: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || env.Error != nil {
		return nil, newError(resp.StatusCode, env.Error)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("apiclient: decode data: %w", err)
		}
	}
	return env.Meta, nil
}
