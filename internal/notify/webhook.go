package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// WebhookNotifier posts run summaries as text webhook messages.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

type webhookPayload struct {
	MsgType string      `json:"msgtype"`
	Text    webhookText `json:"text"`
}

type webhookText struct {
	Content string `json:"content"`
}

// NewWebhookNotifier constructs a notifier.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify posts msg to the webhook.
func (n *WebhookNotifier) Notify(ctx context.Context, msg RunMessage) error {
	if n == nil || n.url == "" {
		return errors.New("webhook notifier: empty url")
	}
	body, err := json.Marshal(webhookPayload{
		MsgType: "text",
		Text:    webhookText{Content: formatRunMessage(msg)},
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook notifier: status %d", resp.StatusCode)
	}
	return nil
}

func formatRunMessage(msg RunMessage) string {
	var b strings.Builder
	b.WriteString("[High X of Y Baseline]\n")
	if msg.SubjectID != "" {
		fmt.Fprintf(&b, "Subject: %s\n", msg.SubjectID)
	}
	fmt.Fprintf(&b, "Records: %d (defined %d, undefined %d)\n", msg.Records, msg.Defined, msg.Undefined)
	if !msg.FirstAt.IsZero() {
		fmt.Fprintf(&b, "Range: %s to %s\n", msg.FirstAt.Format(time.RFC3339), msg.LastAt.Format(time.RFC3339))
	}
	return strings.TrimSpace(b.String())
}
