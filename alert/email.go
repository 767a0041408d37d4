package alert

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// emailNotifier sends transition mail through the SendGrid v3 API.
type emailNotifier struct {
	d  *Dispatcher
	to string
}

func newEmailNotifier(d *Dispatcher, cfg map[string]string) (Notifier, error) {
	if d.sendgridKey == "" {
		return nil, errors.New("sendgrid api key not configured")
	}
	to := cfg["email"]
	if to == "" {
		return nil, errors.New("email channel missing recipient")
	}
	return &emailNotifier{d: d, to: to}, nil
}

func (n *emailNotifier) Notify(ctx context.Context, evt Event) error {
	newUpper := strings.ToUpper(string(evt.NewStatus))
	oldUpper := strings.ToUpper(string(evt.OldStatus))

	headline := "#dc2626"
	if evt.NewStatus == "up" {
		headline = "#16a34a"
	}

	html := fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif;">
  <h2 style="color: %s;">Monitor Status Changed</h2>
  <p><strong>Monitor:</strong> %s</p>
  <p><strong>URL:</strong> <a href="%s">%s</a></p>
  <p><strong>Status:</strong> %s &rarr; <strong>%s</strong></p>
  <p><strong>Time:</strong> %s</p>
  <hr>
  <p style="font-size: 12px; color: #666;">Sent by Vigil</p>
</body>
</html>`, headline, evt.MonitorName, evt.MonitorURL, evt.MonitorURL, oldUpper, newUpper, timestamp(evt))

	payload := map[string]interface{}{
		"personalizations": []map[string]interface{}{{
			"to":      []map[string]string{{"email": n.to}},
			"subject": fmt.Sprintf("%s is %s", evt.MonitorName, newUpper),
		}},
		"from": map[string]string{
			"email": n.d.fromEmail,
			"name":  "Vigil",
		},
		"content": []map[string]string{{
			"type":  "text/html",
			"value": html,
		}},
	}

	code, err := n.d.postJSON(ctx, n.d.sendgridURL, payload, map[string]string{
		"Authorization": "Bearer " + n.d.sendgridKey,
	})
	if err != nil {
		return err
	}
	if code != http.StatusAccepted {
		return fmt.Errorf("sendgrid returned %d", code)
	}
	return nil
}
