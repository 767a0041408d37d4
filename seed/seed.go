// Package seed bootstraps monitors and alert channels from a YAML file at
// startup, for deployments that declare their fleet in version control
// instead of driving the API.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"vigil/model"
	"vigil/store"
)

type File struct {
	Monitors []MonitorSpec `yaml:"monitors"`
	Channels []ChannelSpec `yaml:"channels"`
}

type MonitorSpec struct {
	Name           string            `yaml:"name"`
	URL            string            `yaml:"url"`
	Method         string            `yaml:"method,omitempty"`
	Headers        map[string]string `yaml:"headers,omitempty"`
	Body           string            `yaml:"body,omitempty"`
	IntervalSec    int               `yaml:"interval,omitempty"`
	TimeoutSec     int               `yaml:"timeout,omitempty"`
	ExpectedStatus int               `yaml:"expected_status,omitempty"`
	Channels       []string          `yaml:"channels,omitempty"` // channel names to attach
}

type ChannelSpec struct {
	Name   string            `yaml:"name"`
	Type   string            `yaml:"type"`
	Config map[string]string `yaml:"config"`
}

// Load reads the seed file and registers anything not already present.
// Monitors and channels are matched by name, so re-running against the same
// file is a no-op.
func Load(ctx context.Context, db *store.DB, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	channelIDs := make(map[string]string, len(f.Channels))
	for _, spec := range f.Channels {
		id, err := ensureChannel(ctx, db, spec)
		if err != nil {
			return fmt.Errorf("channel %q: %w", spec.Name, err)
		}
		channelIDs[spec.Name] = id
	}

	for _, spec := range f.Monitors {
		if err := ensureMonitor(ctx, db, spec, channelIDs); err != nil {
			return fmt.Errorf("monitor %q: %w", spec.Name, err)
		}
	}

	log.Printf("seed: loaded %d monitors, %d channels from %s", len(f.Monitors), len(f.Channels), path)
	return nil
}

func ensureChannel(ctx context.Context, db *store.DB, spec ChannelSpec) (string, error) {
	existing, err := db.GetChannelByName(ctx, spec.Name)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	ch := model.AlertChannel{
		ID:        uuid.NewString(),
		Name:      spec.Name,
		Type:      model.ChannelType(spec.Type),
		Config:    spec.Config,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.InsertChannel(ctx, &ch); err != nil {
		return "", err
	}
	return ch.ID, nil
}

func ensureMonitor(ctx context.Context, db *store.DB, spec MonitorSpec, channelIDs map[string]string) error {
	m, err := db.GetMonitorByName(ctx, spec.Name)
	if errors.Is(err, store.ErrNotFound) {
		m = &model.Monitor{
			ID:             uuid.NewString(),
			Name:           spec.Name,
			URL:            spec.URL,
			Method:         orDefault(spec.Method, "GET"),
			Headers:        spec.Headers,
			Body:           spec.Body,
			IntervalSec:    orDefaultInt(spec.IntervalSec, 300),
			TimeoutSec:     orDefaultInt(spec.TimeoutSec, 30),
			ExpectedStatus: orDefaultInt(spec.ExpectedStatus, 200),
			Active:         true,
			NextCheckAt:    time.Now().UTC(), // checked on the first scan tick
			CreatedAt:      time.Now().UTC(),
		}
		if err := db.InsertMonitor(ctx, m); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	for _, name := range spec.Channels {
		id, ok := channelIDs[name]
		if !ok {
			return fmt.Errorf("references unknown channel %q", name)
		}
		if err := db.AttachChannel(ctx, m.ID, id); err != nil {
			return err
		}
	}
	return nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func orDefaultInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
