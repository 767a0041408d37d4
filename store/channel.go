package store

import (
	"context"
	"encoding/json"

	"vigil/model"
)

func (db *DB) InsertChannel(ctx context.Context, ch *model.AlertChannel) error {
	cfg, _ := json.Marshal(ch.Config)
	if cfg == nil {
		cfg = []byte("{}")
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO alert_channels (id, name, type, config, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		ch.ID, ch.Name, ch.Type, cfg, ch.Active, ch.CreatedAt,
	)
	return err
}

func (db *DB) GetChannelByName(ctx context.Context, name string) (*model.AlertChannel, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, name, type, config, active, created_at FROM alert_channels WHERE name = $1`, name)
	return scanChannel(row)
}

func (db *DB) ListChannels(ctx context.Context) ([]model.AlertChannel, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, type, config, active, created_at FROM alert_channels ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []model.AlertChannel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, *ch)
	}
	return channels, rows.Err()
}

// AttachChannel links a channel to a monitor. Attaching twice is a no-op.
func (db *DB) AttachChannel(ctx context.Context, monitorID, channelID string) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO monitor_alert_channels (monitor_id, channel_id)
		 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		monitorID, channelID,
	)
	return err
}

// ActiveChannelsForMonitor returns the active channels attached to a monitor;
// paused channels are filtered out here so the dispatcher never sees them.
func (db *DB) ActiveChannelsForMonitor(ctx context.Context, monitorID string) ([]model.AlertChannel, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT c.id, c.name, c.type, c.config, c.active, c.created_at
		 FROM alert_channels c
		 JOIN monitor_alert_channels mc ON mc.channel_id = c.id
		 WHERE mc.monitor_id = $1 AND c.active`,
		monitorID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []model.AlertChannel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, *ch)
	}
	return channels, rows.Err()
}

func scanChannel(row rowScanner) (*model.AlertChannel, error) {
	var ch model.AlertChannel
	var typ string
	var cfg []byte
	if err := row.Scan(&ch.ID, &ch.Name, &typ, &cfg, &ch.Active, &ch.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	ch.Type = model.ChannelType(typ)
	if len(cfg) > 0 {
		json.Unmarshal(cfg, &ch.Config)
	}
	return &ch, nil
}
