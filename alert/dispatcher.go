// Package alert fans status-transition notifications out to the channels
// attached to a monitor.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"vigil/config"
	"vigil/model"
	"vigil/store"
)

// Event describes one status transition to deliver.
type Event struct {
	MonitorID   string
	MonitorName string
	MonitorURL  string
	OldStatus   model.Status
	NewStatus   model.Status
	At          time.Time // UTC
}

// Notifier delivers one event to one destination.
type Notifier interface {
	Notify(ctx context.Context, evt Event) error
}

// Dispatcher sends an event through every active channel attached to the
// monitor. Delivery is best effort: one attempt per channel per transition,
// and one channel's failure never blocks the rest.
type Dispatcher struct {
	store  store.Store
	client *http.Client

	sendgridKey string
	fromEmail   string

	// Overridable in tests.
	sendgridURL  string
	telegramBase string
}

func NewDispatcher(st store.Store, cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		store:        st,
		client:       &http.Client{Timeout: cfg.AlertTimeout},
		sendgridKey:  cfg.SendGridKey,
		fromEmail:    cfg.FromEmail,
		sendgridURL:  "https://api.sendgrid.com/v3/mail/send",
		telegramBase: "https://api.telegram.org",
	}
}

// Dispatch delivers evt to all active channels of the monitor and returns the
// attempted and delivered counts. The counts are observability data, never a
// correctness gate.
func (d *Dispatcher) Dispatch(ctx context.Context, evt Event) (attempted, delivered int) {
	channels, err := d.store.ActiveChannelsForMonitor(ctx, evt.MonitorID)
	if err != nil {
		log.Printf("alert: load channels for %s: %v", evt.MonitorID, err)
		return 0, 0
	}

	for _, ch := range channels {
		n, err := d.notifierFor(ch)
		if err != nil {
			log.Printf("alert: channel %s (%s): %v", ch.Name, ch.Type, err)
			continue
		}
		attempted++
		if err := n.Notify(ctx, evt); err != nil {
			log.Printf("alert: deliver via %s (%s): %v", ch.Name, ch.Type, err)
			continue
		}
		delivered++
	}

	if attempted > 0 {
		log.Printf("alert: %s %s -> %s, delivered %d/%d channels",
			evt.MonitorName, evt.OldStatus, evt.NewStatus, delivered, attempted)
	}
	return attempted, delivered
}

// notifierFor selects the implementation for a channel type. Channel configs
// are validated at creation time, so a missing key here is reported but not
// retried.
func (d *Dispatcher) notifierFor(ch model.AlertChannel) (Notifier, error) {
	switch ch.Type {
	case model.ChannelEmail:
		return newEmailNotifier(d, ch.Config)
	case model.ChannelSlack:
		return newSlackNotifier(d, ch.Config)
	case model.ChannelTelegram:
		return newTelegramNotifier(d, ch.Config)
	case model.ChannelDiscord:
		return newDiscordNotifier(d, ch.Config)
	case model.ChannelWebhook:
		return newWebhookNotifier(d, ch.Config)
	default:
		return nil, fmt.Errorf("unknown channel type %q", ch.Type)
	}
}

// postJSON marshals payload, POSTs it, and returns the response status code.
// The body is drained so connections can be reused.
func (d *Dispatcher) postJSON(ctx context.Context, url string, payload interface{}, headers map[string]string) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	resp.Body.Close()
	return resp.StatusCode, nil
}

func timestamp(evt Event) string {
	return evt.At.UTC().Format("2006-01-02 15:04:05 UTC")
}
