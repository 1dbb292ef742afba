// Package slack publishes reports and reminders through the Slack Web API.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultAPIURL is the Slack Web API base URL.
const DefaultAPIURL = "https://slack.com/api"

var (
	// ErrAPI indicates Slack answered with ok=false.
	ErrAPI = errors.New("slack api error")
	// ErrRequestFailed indicates Slack could not be reached.
	ErrRequestFailed = errors.New("slack request failed")
)

// Client calls Slack Web API methods with a bot token.
type Client struct {
	token      string
	apiURL     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client. An empty apiURL uses DefaultAPIURL.
func NewClient(token, apiURL string, logger *slog.Logger) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		token:      token,
		apiURL:     strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type postMessageRequest struct {
	Channel     string `json:"channel"`
	Text        string `json:"text"`
	UnfurlLinks bool   `json:"unfurl_links"`
}

type postMessageResponse struct {
	apiResponse
	Channel string `json:"channel"`
	TS      string `json:"ts"`
}

type lookupResponse struct {
	apiResponse
	User struct {
		ID string `json:"id"`
	} `json:"user"`
}

// PostMessage posts text to a channel or user id and returns the message timestamp.
func (c *Client) PostMessage(ctx context.Context, channel, text string) (string, error) {
	payload, err := json.Marshal(postMessageRequest{Channel: channel, Text: text})
	if err != nil {
		return "", fmt.Errorf("marshal message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/chat.postMessage", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	var resp postMessageResponse
	if err := c.do(req, "chat.postMessage", &resp, &resp.apiResponse); err != nil {
		return "", err
	}
	return resp.TS, nil
}

// LookupUserByEmail returns the Slack user id for an email address.
func (c *Client) LookupUserByEmail(ctx context.Context, email string) (string, error) {
	endpoint := c.apiURL + "/users.lookupByEmail?" + url.Values{"email": {email}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	var resp lookupResponse
	if err := c.do(req, "users.lookupByEmail", &resp, &resp.apiResponse); err != nil {
		return "", err
	}
	return resp.User.ID, nil
}

func (c *Client) do(req *http.Request, method string, out any, status *apiResponse) error {
	if c.token == "" {
		return fmt.Errorf("%w: bot token not configured", ErrRequestFailed)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRequestFailed, method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: read response: %w", ErrRequestFailed, method, err)
	}
	c.logger.Debug("slack call", "method", method, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: status %d", ErrRequestFailed, method, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRequestFailed, method, err)
	}
	if !status.OK {
		return fmt.Errorf("%w: %s: %s", ErrAPI, method, status.Error)
	}
	return nil
}
