// Package assistant implements the client for the assistant service:
// conversation threads, streamed runs and tool-output submission, using the
// Assistants v2 wire format over server-sent events.
package assistant

import (
	"bufio"
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

// MessageHandler receives the concatenated text of each completed assistant
// message as the run streams.
type MessageHandler func(text string)

// Run is the terminal state of one streamed run.
type Run struct {
	ID             string          `json:"id"`
	ThreadID       string          `json:"thread_id"`
	Status         string          `json:"status"`
	RequiredAction *RequiredAction `json:"required_action,omitempty"`
}

// RequiresToolOutputs reports whether the run is paused waiting for tool
// outputs to be submitted.
func (r *Run) RequiresToolOutputs() bool {
	return r != nil && r.Status == "requires_action" &&
		r.RequiredAction != nil && r.RequiredAction.Type == "submit_tool_outputs"
}

// ToolCalls returns the pending tool invocations, if any.
func (r *Run) ToolCalls() []ToolCall {
	if !r.RequiresToolOutputs() {
		return nil
	}
	return r.RequiredAction.SubmitToolOutputs.ToolCalls
}

// RequiredAction describes what a paused run is waiting for.
type RequiredAction struct {
	Type              string `json:"type"`
	SubmitToolOutputs struct {
		ToolCalls []ToolCall `json:"tool_calls"`
	} `json:"submit_tool_outputs"`
}

// ToolCall is one assistant-issued function invocation.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the function name and its raw JSON argument payload.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolOutput is the resolved result for one tool call, echoed back with the
// call's correlation id.
type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

// Client talks to the assistant service.
type Client struct {
	baseURL     string
	apiKey      string
	assistantID string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient creates an assistant client. baseURL defaults to the public API
// endpoint when empty.
func NewClient(baseURL, apiKey, assistantID string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		assistantID: assistantID,
		httpClient: &http.Client{
			// No global timeout: runs stream for as long as the assistant
			// takes. Hung connections are bounded at the transport level.
			Transport: &http.Transport{
				MaxIdleConns:          10,
				IdleConnTimeout:       120 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 180 * time.Second,
			},
		},
		logger: logger.With("component", "assistant"),
	}
}

type createThreadResponse struct {
	ID string `json:"id"`
}

// CreateThread creates a new empty conversation thread and returns its id.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	var resp createThreadResponse
	if err := c.post(ctx, "/threads", map[string]any{}, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("assistant: thread response missing id")
	}
	return resp.ID, nil
}

// AddUserMessage appends a user message to the thread.
func (c *Client) AddUserMessage(ctx context.Context, threadID, text string) error {
	body := map[string]string{"role": "user", "content": text}
	return c.post(ctx, "/threads/"+threadID+"/messages", body, nil)
}

// StreamRun starts a streamed run on the thread for the configured assistant
// and consumes it until the stream ends. Each completed assistant message is
// handed to onMessage; the final run state is returned.
func (c *Client) StreamRun(ctx context.Context, threadID string, onMessage MessageHandler) (*Run, error) {
	body := map[string]any{"assistant_id": c.assistantID, "stream": true}
	return c.streamRequest(ctx, "/threads/"+threadID+"/runs", body, onMessage)
}

// SubmitToolOutputs resumes a paused run with the resolved tool outputs,
// streaming the continuation the same way as StreamRun.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput, onMessage MessageHandler) (*Run, error) {
	body := map[string]any{"tool_outputs": outputs, "stream": true}
	path := fmt.Sprintf("/threads/%s/runs/%s/submit_tool_outputs", threadID, runID)
	return c.streamRequest(ctx, path, body, onMessage)
}

// apiError is a non-2xx response from the assistant service.
type apiError struct {
	statusCode int
	body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("assistant: API error %d: %s", e.statusCode, e.body)
}

func (c *Client) newRequest(ctx context.Context, path string, body any) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("assistant: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("assistant: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")
	return req, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	req, err := c.newRequest(ctx, path, body)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("assistant: POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &apiError{statusCode: resp.StatusCode, body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("assistant: decode response: %w", err)
	}
	return nil
}

// threadMessage is the completed-message event payload; only text parts are
// collected, other content kinds are skipped.
type threadMessage struct {
	Content []struct {
		Type string `json:"type"`
		Text struct {
			Value string `json:"value"`
		} `json:"text"`
	} `json:"content"`
}

func (m *threadMessage) text() string {
	var parts []string
	for _, chunk := range m.Content {
		if chunk.Type == "text" {
			parts = append(parts, chunk.Text.Value)
		}
	}
	return strings.Join(parts, "\n")
}

// streamRequest performs one streamed run request and consumes the SSE body.
// Run lifecycle events overwrite the result so the last observed state wins;
// thread.message.completed events are forwarded to onMessage.
func (c *Client) streamRequest(ctx context.Context, path string, body any, onMessage MessageHandler) (*Run, error) {
	req, err := c.newRequest(ctx, path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assistant: POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &apiError{statusCode: resp.StatusCode, body: string(raw)}
	}

	var run *Run
	var eventType string

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "event: ") {
			eventType = strings.TrimPrefix(line, "event: ")
			continue
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			break
		}

		switch {
		case eventType == "thread.message.completed":
			var msg threadMessage
			if err := json.Unmarshal([]byte(payload), &msg); err != nil {
				c.logger.Warn("skipping undecodable message event", "error", err)
				continue
			}
			if onMessage != nil {
				onMessage(msg.text())
			}

		case strings.HasPrefix(eventType, "thread.run."):
			var r Run
			if err := json.Unmarshal([]byte(payload), &r); err != nil {
				c.logger.Warn("skipping undecodable run event", "error", err)
				continue
			}
			run = &r
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("assistant: reading run stream: %w", err)
	}
	if run == nil {
		return nil, fmt.Errorf("assistant: run stream ended without a run state")
	}

	c.logger.Debug("run stream finished", "run", run.ID, "status", run.Status)
	return run, nil
}
