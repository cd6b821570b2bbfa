// Package jikan is the gateway to the Jikan REST API (MyAnimeList mirror),
// the secondary source of numeric ratings and genre tags.
package jikan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"courtracker/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultAPIURL  = "https://api.jikan.moe/v4"
	defaultTimeout = 30 * time.Second
	userAgent      = "CourTracker/1.0"

	// Jikan enforces roughly 3 requests per second; a burst-1 limiter at a
	// 350ms interval guarantees the fixed minimum inter-call delay even
	// when season fetches fan out.
	requestInterval = 350 * time.Millisecond
)

type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *logrus.Logger
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *logrus.Logger
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAPIURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		rateLimiter: rate.NewLimiter(rate.Every(requestInterval), 1),
		logger:      cfg.Logger,
	}
}

// BestMatch searches by title and returns the top result, or nil when the
// search comes back empty.
func (c *Client) BestMatch(ctx context.Context, title string) (*models.JikanAnime, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("search title cannot be empty")
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", title)
	params.Set("limit", "1")
	searchURL := fmt.Sprintf("%s/anime?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var result models.JikanSearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Data) == 0 {
		c.logger.WithField("title", title).Debug("No Jikan match")
		return nil, nil
	}
	return &result.Data[0], nil
}
