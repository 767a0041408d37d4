package model

import "time"

// ChannelType identifies the delivery mechanism of an alert channel.
type ChannelType string

const (
	ChannelEmail    ChannelType = "email"
	ChannelSlack    ChannelType = "slack"
	ChannelTelegram ChannelType = "telegram"
	ChannelDiscord  ChannelType = "discord"
	ChannelWebhook  ChannelType = "webhook"
)

// AlertChannel is a configured notification destination. Channels attach to
// monitors many-to-many; an active channel fires for every monitor it is
// attached to.
type AlertChannel struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Type      ChannelType       `json:"type"`
	Config    map[string]string `json:"config"`
	Active    bool              `json:"active"`
	CreatedAt time.Time         `json:"createdAt"`
}
