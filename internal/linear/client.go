// Package linear loads roadmap projects from the Linear GraphQL API.
package linear

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rpggio/pmbot/internal/domain/project"
)

// DefaultAPIURL is the public Linear GraphQL endpoint.
const DefaultAPIURL = "https://api.linear.app/graphql"

var (
	// ErrRequestFailed indicates the API could not be reached or refused the request.
	ErrRequestFailed = errors.New("linear request failed")
	// ErrInvalidResponse indicates a response that does not match the expected schema.
	ErrInvalidResponse = errors.New("invalid linear response")
)

// Config configures the client.
type Config struct {
	APIURL   string
	APIKey   string
	PageSize int
	Timeout  time.Duration
}

// Client is a minimal Linear GraphQL client.
type Client struct {
	apiURL     string
	apiKey     string
	pageSize   int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client, filling defaults for empty fields.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		apiURL:     cfg.APIURL,
		apiKey:     cfg.APIKey,
		pageSize:   cfg.PageSize,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

const maxPages = 200

// ListProjects returns every project on the roadmap, fully hydrated and
// validated. Any malformed project fails the whole call.
func (c *Client) ListProjects(ctx context.Context, roadmapID string) ([]project.Project, error) {
	if roadmapID == "" {
		return nil, fmt.Errorf("%w: roadmap id is required", ErrRequestFailed)
	}

	var (
		out    []project.Project
		cursor *string
	)
	for page := 0; ; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("%w: more than %d pages", ErrInvalidResponse, maxPages)
		}

		var data roadmapData
		vars := map[string]any{"id": roadmapID, "first": c.pageSize, "after": cursor}
		if err := c.query(ctx, roadmapProjectsQuery, vars, &data); err != nil {
			return nil, err
		}
		if data.Roadmap == nil || data.Roadmap.Projects == nil {
			return nil, fmt.Errorf("%w: roadmap %s not found", ErrInvalidResponse, roadmapID)
		}

		conn := data.Roadmap.Projects
		for _, node := range conn.Nodes {
			p, err := node.toDomain()
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
			}
			if err := project.Validate(p); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
			}
			out = append(out, p)
		}

		if !conn.PageInfo.HasNextPage {
			break
		}
		if conn.PageInfo.EndCursor == nil || *conn.PageInfo.EndCursor == "" {
			return nil, fmt.Errorf("%w: next page without cursor", ErrInvalidResponse)
		}
		cursor = conn.PageInfo.EndCursor
	}

	c.logger.Debug("linear projects loaded", "roadmap_id", roadmapID, "count", len(out))
	return out, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

func (c *Client) query(ctx context.Context, query string, vars map[string]any, out any) error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: API key not configured", ErrRequestFailed)
	}
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrRequestFailed, err)
	}
	c.logger.Debug("linear query", "status", resp.StatusCode, "duration", time.Since(start), "bytes", len(body))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, truncate(string(body), 200))
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("%w: %s", ErrRequestFailed, strings.Join(msgs, "; "))
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return fmt.Errorf("%w: missing data", ErrInvalidResponse)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
