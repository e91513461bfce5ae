// Package jellyfin is a client for the subset of the Jellyfin HTTP API
// needed to browse a library and acquire transcoded streams: the
// QuickConnect handshake, user views/items, and playback info.
package jellyfin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Sentinel errors for Jellyfin API responses.
var (
	// ErrUnauthorized is returned when the token is invalid or expired.
	ErrUnauthorized = errors.New("unauthorized: invalid or expired token")

	// ErrNoTranscodingURL is returned when playback info carries no
	// transcoding URL: the server declined to transcode. Not retryable.
	ErrNoTranscodingURL = errors.New("playback info has no transcoding url")
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jellyfin api error: status %d", e.Status)
}

// IsClientError reports whether err is a 4xx response. QuickConnect polls
// use this to distinguish an expired code from a transport failure.
func IsClientError(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500
}

// Client is a stateless Jellyfin API client. Authenticated calls take the
// session explicitly; the client itself holds no credentials.
type Client struct {
	baseURL    string
	clientName string
	deviceName string
	version    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "jellyfin")
	}
}

// WithDevice overrides the client/device identity reported to the server.
func WithDevice(clientName, deviceName, version string) Option {
	return func(c *Client) {
		c.clientName = clientName
		c.deviceName = deviceName
		c.version = version
	}
}

// New creates a Jellyfin client for the given server base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		clientName: "binge",
		deviceName: "binge-proxy",
		version:    "0.1.0",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server base URL, used to absolutize segment URIs.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// authorization builds the X-Emby-Authorization header value. The token is
// omitted for unauthenticated calls.
func (c *Client) authorization(token string) string {
	v := fmt.Sprintf(`MediaBrowser Client=%q, Device=%q, DeviceId=%q, Version=%q`,
		c.clientName, c.deviceName, c.deviceName, c.version)
	if token != "" {
		v += fmt.Sprintf(`, Token=%q`, token)
	}
	return v
}

// do performs one request against the server and decodes a JSON body into
// out when out is non-nil.
func (c *Client) do(ctx context.Context, method, url, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Emby-Authorization", c.authorization(token))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Fetch downloads raw bytes from an absolute URL on the server, typically
// a playlist handed out by playback info. Transcoding URLs carry their own
// api_key parameter, so no auth header is attached.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

// Ping checks that the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.baseURL+"/health", "", nil, nil)
}

func checkResponse(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return &APIError{Status: resp.StatusCode}
	}
}
