package provider

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

	"github.com/plumechat/plume/internal/turn"
)

// Client submits adapted turns to the model gateway over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	adapter    *Adapter
	logger     *slog.Logger
}

func NewClient(log *slog.Logger, adapter *Adapter, baseURL, token string, timeout time.Duration) *Client {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		adapter:    adapter,
		logger:     log.With(slog.String("service", "provider_client")),
	}
}

type chatRequest struct {
	System   string    `json:"system,omitempty"`
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Send lowers and adapts one turn, then posts it. system carries the
// rendered memory context alongside any base instructions.
func (c *Client) Send(ctx context.Context, system string, parts []turn.Part) (string, error) {
	adapted, err := c.adapter.AdaptParts(Lower(parts))
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(chatRequest{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: adapted}},
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	url := c.baseURL + "/v1/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(c.token) != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("gateway error",
			slog.String("url", url),
			slog.Int("status", resp.StatusCode),
			slog.String("body_prefix", truncate(string(respBody), 300)),
		)
		return "", fmt.Errorf("model gateway error: %s", strings.TrimSpace(string(respBody)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		c.logger.Error("gateway response parse failed",
			slog.String("body_prefix", truncate(string(respBody), 300)),
			slog.Any("error", err),
		)
		return "", fmt.Errorf("failed to parse gateway response: %w", err)
	}
	return parsed.Reply, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
