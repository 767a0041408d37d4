package alert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// webhookNotifier POSTs a structured event to a caller-supplied URL, with any
// configured custom headers merged in. Headers live in the channel config
// under "headers" as a JSON object.
type webhookNotifier struct {
	d       *Dispatcher
	url     string
	headers map[string]string
}

func newWebhookNotifier(d *Dispatcher, cfg map[string]string) (Notifier, error) {
	url := cfg["url"]
	if url == "" {
		return nil, errors.New("webhook channel missing url")
	}
	var headers map[string]string
	if raw := cfg["headers"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &headers); err != nil {
			return nil, fmt.Errorf("webhook channel headers: %w", err)
		}
	}
	return &webhookNotifier{d: d, url: url, headers: headers}, nil
}

func (n *webhookNotifier) Notify(ctx context.Context, evt Event) error {
	payload := map[string]interface{}{
		"event": "status_changed",
		"monitor": map[string]string{
			"id":   evt.MonitorID,
			"name": evt.MonitorName,
			"url":  evt.MonitorURL,
		},
		"status": map[string]string{
			"old": string(evt.OldStatus),
			"new": string(evt.NewStatus),
		},
		"timestamp": evt.At.UTC().Format(time.RFC3339),
	}

	code, err := n.d.postJSON(ctx, n.url, payload, n.headers)
	if err != nil {
		return err
	}
	if code < 200 || code > 299 {
		return fmt.Errorf("webhook returned %d", code)
	}
	return nil
}
