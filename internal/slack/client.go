package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"newsdesk/internal/domain"
	"newsdesk/internal/ports"
)

const defaultAPIBase = "https://slack.com/api"

// Client posts TitleGate cards and opens modals via the Slack Web API.
type Client struct {
	botToken   string
	channelID  string
	apiBase    string
	httpClient *http.Client
}

var _ ports.Notifier = (*Client)(nil)
var _ ports.ModalOpener = (*Client)(nil)

// NewClient registers bot credentials and the default review channel.
func NewClient(botToken, channelID string) *Client {
	return &Client{
		botToken:  botToken,
		channelID: channelID,
		apiBase:   defaultAPIBase,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// PostTitleGate posts the review card for an awaiting-approval article.
func (c *Client) PostTitleGate(ctx context.Context, article domain.Article) error {
	payload := map[string]any{
		"channel": c.channelID,
		"text":    "TitleGate",
		"blocks":  titleGateBlocks(article),
	}
	return c.call(ctx, "chat.postMessage", payload)
}

// PostText posts a plain Markdown message to the review channel.
func (c *Client) PostText(ctx context.Context, text string) error {
	payload := map[string]any{
		"channel": c.channelID,
		"text":    text,
		"blocks": []block{
			{Type: "section", Text: mrkdwn(text)},
		},
	}
	return c.call(ctx, "chat.postMessage", payload)
}

// OpenEditModal opens the title-edit modal against the interaction's
// trigger id. Trigger ids expire quickly, so callers fire this concurrently
// with the webhook acknowledgment.
func (c *Client) OpenEditModal(ctx context.Context, triggerID, articleID, currentTitle string) error {
	payload := map[string]any{
		"trigger_id": triggerID,
		"view":       editModalView(articleID, currentTitle),
	}
	return c.call(ctx, "views.open", payload)
}

func (c *Client) call(ctx context.Context, method string, payload any) error {
	if c.botToken == "" {
		return fmt.Errorf("slack client misconfigured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", method, err)
	}

	endpoint := strings.TrimSuffix(c.apiBase, "/") + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.botToken)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %s", method, resp.Status)
	}

	var result struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !result.OK {
		return fmt.Errorf("%s failed: %s", method, result.Error)
	}

	return nil
}
