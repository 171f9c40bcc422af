package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// LinkPreviewClient calls the linkpreview.net API.
type LinkPreviewClient struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// NewLinkPreviewClient creates a client for baseURL (https://api.linkpreview.net).
// The free plan allows 60 requests per hour; bursts of 5 are let through.
func NewLinkPreviewClient(baseURL, apiKey string, logger *slog.Logger) *LinkPreviewClient {
	return &LinkPreviewClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute), 5),
		logger:      logger,
	}
}

// Fetch asks the API for link's preview.
func (c *LinkPreviewClient) Fetch(ctx context.Context, link string) (*Preview, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	endpoint := c.baseURL + "/?q=" + url.QueryEscape(link)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Linkpreview-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch preview: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		c.logger.Warn("link preview request failed", "status", resp.StatusCode, "url", link)
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var p Preview
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if p.URL == "" {
		p.URL = link
	}

	c.logger.Debug("link preview fetched", "url", link, "title", p.Title)
	return &p, nil
}

var _ Fetcher = (*LinkPreviewClient)(nil)
