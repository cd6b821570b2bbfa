// Package annict is the gateway to the Annict GraphQL API, the primary
// source of seasonal work metadata.
package annict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"courtracker/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultAPIURL  = "https://api.annict.com/graphql"
	defaultTimeout = 30 * time.Second
	userAgent      = "CourTracker/1.0"

	// Annict tolerates a moderate request rate; stay well under it.
	requestsPerSecond = 2
	requestBurst      = 5

	maxRetries = 3
	retryDelay = 2 * time.Second
)

// Client handles GraphQL requests with rate limiting and retries.
type Client struct {
	apiURL      string
	token       string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *logrus.Logger
}

type Config struct {
	APIURL  string
	Token   string
	Timeout time.Duration
	Logger  *logrus.Logger
}

func NewClient(cfg Config) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Client{
		apiURL: cfg.APIURL,
		token:  cfg.Token,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		rateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		logger:      cfg.Logger,
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

const seasonWorksQuery = `
query getAnimeListBySeason($season: String!, $first: Int) {
  searchWorks(seasons: [$season], orderBy: { field: WATCHERS_COUNT, direction: DESC }, first: $first) {
    nodes {
      annictId
      title
      media
      seasonYear
      seasonName
      image {
        recommendedImageUrl
        facebookOgImageUrl
      }
    }
  }
}`

const workDetailQuery = `
query getAnimeDetailsById($id: [Int!]) {
  searchWorks(annictIds: $id, first: 1) {
    nodes {
      annictId
      title
      media
      seasonYear
      seasonName
      image {
        recommendedImageUrl
        facebookOgImageUrl
      }
      officialSiteUrl
      twitterUsername
      episodes(orderBy: { field: SORT_NUMBER, direction: ASC }) {
        nodes {
          annictId
          numberText
          title
        }
      }
      casts(orderBy: { field: SORT_NUMBER, direction: ASC }, first: 10) {
        nodes {
          character {
            name
            annictId
          }
          person {
            name
          }
        }
      }
      staffs(orderBy: { field: SORT_NUMBER, direction: ASC }, first: 10) {
        nodes {
          resource {
            ... on Person {
              name
            }
            ... on Organization {
              name
            }
          }
          roleText
          annictId
        }
      }
    }
  }
}`

const titleSearchQuery = `
query searchWorkByTitle($title: String!) {
  searchWorks(titles: [$title], first: 1) {
    nodes {
      annictId
      title
    }
  }
}`

// SeasonWorks fetches the works of one season, ordered by watcher count
// descending. The caller filters by media type.
func (c *Client) SeasonWorks(ctx context.Context, season string, first int) ([]models.Work, error) {
	var result models.SearchWorksData
	err := c.do(ctx, seasonWorksQuery, map[string]any{"season": season, "first": first}, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch season %s: %w", season, err)
	}
	return result.SearchWorks.Nodes, nil
}

// WorkByID fetches the full detail record for one work. Returns nil when
// Annict knows no such work.
func (c *Client) WorkByID(ctx context.Context, id int) (*models.Work, error) {
	var result models.SearchWorksData
	err := c.do(ctx, workDetailQuery, map[string]any{"id": []int{id}}, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch work %d: %w", id, err)
	}
	if len(result.SearchWorks.Nodes) == 0 {
		return nil, nil
	}
	return &result.SearchWorks.Nodes[0], nil
}

// WorkByTitle finds the best title match. Returns nil when nothing matches.
func (c *Client) WorkByTitle(ctx context.Context, title string) (*models.Work, error) {
	var result models.SearchWorksData
	err := c.do(ctx, titleSearchQuery, map[string]any{"title": title}, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to search title %q: %w", title, err)
	}
	if len(result.SearchWorks.Nodes) == 0 {
		return nil, nil
	}
	return &result.SearchWorks.Nodes[0], nil
}

func (c *Client) do(ctx context.Context, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return err
		}

		body, err := c.post(ctx, payload)
		if err != nil {
			lastErr = err
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt + 1,
				"error":   err.Error(),
			}).Warn("Annict request failed, retrying...")
			if err := c.waitForRetry(ctx, attempt); err != nil {
				return err
			}
			continue
		}

		var envelope gqlResponse
		if err := json.Unmarshal(body, &envelope); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		if len(envelope.Errors) > 0 {
			messages := make([]string, len(envelope.Errors))
			for i, e := range envelope.Errors {
				messages[i] = e.Message
			}
			return fmt.Errorf("graphql error: %s", strings.Join(messages, ", "))
		}
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode data: %w", err)
		}
		return nil
	}
	return fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

func (c *Client) post(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

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
	return body, nil
}

func (c *Client) waitForRetry(ctx context.Context, attempt int) error {
	if attempt >= maxRetries-1 {
		return nil
	}
	delay := time.Duration(attempt+1) * retryDelay
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
