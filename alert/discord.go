package alert

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vigil/model"
)

// Embed accent colors per status, as Discord decimal color codes.
var discordColors = map[model.Status]int{
	model.StatusUp:       1356954,  // green
	model.StatusDown:     14423100, // red
	model.StatusDegraded: 16098571, // amber
}

// discordNotifier posts a rich embed to a Discord webhook.
type discordNotifier struct {
	d          *Dispatcher
	webhookURL string
}

func newDiscordNotifier(d *Dispatcher, cfg map[string]string) (Notifier, error) {
	url := cfg["webhook_url"]
	if url == "" {
		return nil, errors.New("discord channel missing webhook_url")
	}
	return &discordNotifier{d: d, webhookURL: url}, nil
}

func (n *discordNotifier) Notify(ctx context.Context, evt Event) error {
	color, ok := discordColors[evt.NewStatus]
	if !ok {
		color = 7119450
	}

	payload := map[string]interface{}{
		"embeds": []map[string]interface{}{{
			"title": "Monitor Status Changed",
			"color": color,
			"fields": []map[string]interface{}{
				{"name": "Monitor", "value": evt.MonitorName, "inline": true},
				{"name": "Status", "value": fmt.Sprintf("%s → **%s**",
					strings.ToUpper(string(evt.OldStatus)), strings.ToUpper(string(evt.NewStatus))), "inline": true},
				{"name": "URL", "value": evt.MonitorURL, "inline": false},
			},
			"timestamp": evt.At.UTC().Format(time.RFC3339),
		}},
	}

	code, err := n.d.postJSON(ctx, n.webhookURL, payload, nil)
	if err != nil {
		return err
	}
	if code != http.StatusNoContent {
		return fmt.Errorf("discord returned %d", code)
	}
	return nil
}
