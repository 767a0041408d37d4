package alert

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"vigil/model"
)

// Attachment accent colors per status.
var slackColors = map[model.Status]string{
	model.StatusUp:       "#16a34a", // green
	model.StatusDown:     "#dc2626", // red
	model.StatusDegraded: "#f59e0b", // amber
}

// slackNotifier posts to a Slack incoming webhook.
type slackNotifier struct {
	d          *Dispatcher
	webhookURL string
}

func newSlackNotifier(d *Dispatcher, cfg map[string]string) (Notifier, error) {
	url := cfg["webhook_url"]
	if url == "" {
		return nil, errors.New("slack channel missing webhook_url")
	}
	return &slackNotifier{d: d, webhookURL: url}, nil
}

func (n *slackNotifier) Notify(ctx context.Context, evt Event) error {
	color, ok := slackColors[evt.NewStatus]
	if !ok {
		color = "#6b7280"
	}

	payload := map[string]interface{}{
		"text": "Monitor Status Changed: " + evt.MonitorName,
		"attachments": []map[string]interface{}{{
			"color": color,
			"fields": []map[string]interface{}{
				{"title": "Monitor", "value": evt.MonitorName, "short": true},
				{"title": "Status", "value": fmt.Sprintf("%s → *%s*",
					strings.ToUpper(string(evt.OldStatus)), strings.ToUpper(string(evt.NewStatus))), "short": true},
				{"title": "URL", "value": evt.MonitorURL, "short": false},
				{"title": "Time", "value": timestamp(evt), "short": true},
			},
		}},
	}

	code, err := n.d.postJSON(ctx, n.webhookURL, payload, nil)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("slack returned %d", code)
	}
	return nil
}
