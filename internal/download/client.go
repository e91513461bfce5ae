package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"
)

// Retry policy for segment fetches. Any transport failure or non-200
// response is retried with exponential backoff until the attempt cap.
const (
	maxAttempts  = 8
	baseBackoff  = 250 * time.Millisecond
	maxBackoff   = 10 * time.Second
	fetchTimeout = 30 * time.Second
)

// ErrRetriesExhausted is returned when every fetch attempt failed.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Fetcher retrieves remote bytes. Implemented by RetryClient; faked in
// tests.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// RetryClient is an HTTP Fetcher with exponential backoff.
type RetryClient struct {
	httpClient *http.Client
}

// NewRetryClient creates a retrying fetch client. A nil httpClient gets
// a default with a per-request timeout.
func NewRetryClient(httpClient *http.Client) *RetryClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: fetchTimeout}
	}
	return &RetryClient{httpClient: httpClient}
}

// Fetch downloads url, retrying on transport errors and non-200
// responses. Context cancellation stops retrying immediately.
func (c *RetryClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff(attempt)):
			}
		}

		data, err := c.fetchOnce(ctx, url)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, maxAttempts, lastErr)
}

func (c *RetryClient) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// backoff returns the pause before attempt n with a little jitter so
// parallel fetches do not retry in lockstep.
func backoff(attempt int) time.Duration {
	d := baseBackoff << (attempt - 1)
	if d > maxBackoff {
		d = maxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(d) / 4))
	return d + jitter
}
