// Package scryfall is a minimal client for the Scryfall bulk-data API:
// it resolves the current oracle-cards bulk dataset and downloads it.
package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.scryfall.com"

	// OracleCardsType is the bulk dataset containing one record per
	// oracle identity, which is exactly the name universe needed for
	// spell-checking decklists.
	OracleCardsType = "oracle-cards"

	rateLimitDelay = 100 * time.Millisecond // 10 req/sec, per Scryfall guidance
	requestTimeout = 5 * time.Minute        // bulk files run 150+ MB
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

// Client is a rate-limited Scryfall API client.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new Scryfall client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: requestTimeout},
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		userAgent:   "decklist/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetBulkData returns the metadata for a bulk dataset by type, including
// its download URI and last update time.
func (c *Client) GetBulkData(ctx context.Context, bulkType string) (*BulkData, error) {
	url := fmt.Sprintf("%s/bulk-data/%s", c.baseURL, bulkType)

	var bulk BulkData
	if err := c.getJSON(ctx, url, &bulk); err != nil {
		return nil, fmt.Errorf("get bulk data %s: %w", bulkType, err)
	}
	return &bulk, nil
}

// DownloadBulk streams the bulk dataset body into w and returns the
// number of bytes written. The caller owns w and decides where the data
// lands; the client never touches the filesystem.
func (c *Client) DownloadBulk(ctx context.Context, downloadURI string, w io.Writer) (int64, error) {
	resp, err := c.get(ctx, downloadURI)
	if err != nil {
		return 0, fmt.Errorf("download bulk data: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download bulk data: unexpected status %d", resp.StatusCode)
	}

	written, err := io.Copy(w, resp.Body)
	if err != nil {
		return written, fmt.Errorf("write bulk data: %w", err)
	}
	return written, nil
}

// getJSON performs a GET and decodes the JSON response into result.
func (c *Client) getJSON(ctx context.Context, url string, result interface{}) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("parse JSON response: %w", err)
		}
		return nil

	case http.StatusNotFound:
		return &NotFoundError{URL: url}

	default:
		body, _ := io.ReadAll(resp.Body)
		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
			return &apiErr
		}
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
}

// get performs a rate-limited GET with retry on network errors and 429s.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			if attempt < maxRetries && ctx.Err() == nil {
				time.Sleep(backoff)
				backoff = minDuration(backoff*2, maxBackoff)
				continue
			}
			return nil, lastErr
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("rate limited (HTTP 429)")
			if attempt < maxRetries {
				time.Sleep(backoff)
				backoff = minDuration(backoff*2, maxBackoff)
				continue
			}
			return nil, lastErr
		}

		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
