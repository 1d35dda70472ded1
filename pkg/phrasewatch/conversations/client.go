// Package conversations provides the webhook event payload types and a small
// HTTP client for the messaging platform's conversations API (sending
// messages and resolving direct channels).
package conversations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client talks to the conversations API with bearer-token auth.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient creates a conversations client for the given API base URL.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger.With("component", "conversations"),
	}
}

// StatusError is a non-2xx response from the conversations API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("conversations: unexpected status %d: %s", e.StatusCode, e.Body)
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type directChannelRequest struct {
	MemberToInvite User `json:"memberToInvite"`
}

type directChannelResponse struct {
	Channel Channel `json:"channel"`
}

// SendMessage posts a plain-text message to the channel.
func (c *Client) SendMessage(ctx context.Context, channelID, text string) error {
	path := fmt.Sprintf("/channels/%s/messages", channelID)
	return c.api(ctx, http.MethodPost, path, sendMessageRequest{Text: text}, nil)
}

// GetOrCreateDirectChannel resolves (or creates) the 1:1 channel with the
// user identified by email and returns its channel id.
func (c *Client) GetOrCreateDirectChannel(ctx context.Context, email string) (string, error) {
	var resp directChannelResponse
	req := directChannelRequest{MemberToInvite: User{Email: email}}
	if err := c.api(ctx, http.MethodPost, "/channels/direct", req, &resp); err != nil {
		return "", err
	}
	if resp.Channel.ChannelID == "" {
		return "", fmt.Errorf("conversations: direct channel response missing channel id")
	}
	return resp.Channel.ChannelID, nil
}

// api performs one JSON request against the conversations API, decoding the
// response into out when out is non-nil.
func (c *Client) api(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("conversations: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("conversations: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("conversations: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("conversations: decode response: %w", err)
	}
	return nil
}
