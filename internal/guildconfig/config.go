// Package guildconfig loads per-guild configuration. A guild is
// configured through the topic of its #glyph channel, parsed as JSON5;
// any fault falls back to the packaged defaults, so a malformed topic
// can degrade behavior but never break event handling.
package guildconfig

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/titanous/json5"
)

// ConfigChannelName is the channel whose topic holds the guild config.
const ConfigChannelName = "glyph"

// Config is the per-guild configuration surface the core reads. The
// core never writes configuration.
type Config struct {
	SelectableRoles []string        `json:"selectable_roles"`
	Wiki            string          `json:"wiki"`
	Auditing        AuditingConfig  `json:"auditing"`
	Quickview       QuickviewConfig `json:"quickview"`
	Spoilers        SpoilersConfig  `json:"spoilers"`
}

// AuditingConfig toggles the mod-log and names its channel.
type AuditingConfig struct {
	Channel   string `json:"channel"`
	Joins     bool   `json:"joins"`
	Leaves    bool   `json:"leaves"`
	Reactions bool   `json:"reactions"`
	Deletes   bool   `json:"deletes"`
}

// QuickviewConfig toggles link previews.
type QuickviewConfig struct {
	FAEnabled      bool `json:"fa_enabled"`
	FAThumbnail    bool `json:"fa_thumbnail"`
	PicartoEnabled bool `json:"picarto_enabled"`
}

// SpoilersConfig names the channel where spoiler keywords are allowed.
type SpoilersConfig struct {
	Channel  string   `json:"channel"`
	Keywords []string `json:"keywords"`
}

// Default returns the fallback configuration used for direct messages
// and for guilds without (or with broken) config.
func Default() *Config {
	return &Config{
		Wiki: "wikipedia",
		Quickview: QuickviewConfig{
			FAEnabled:      true,
			FAThumbnail:    false,
			PicartoEnabled: true,
		},
	}
}

// Parse decodes a config document, overlaying the defaults.
func Parse(doc string) (*Config, error) {
	cfg := Default()
	if err := json5.Unmarshal([]byte(doc), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ChannelLister is the read surface the provider needs.
type ChannelLister interface {
	GuildChannels(guildID string) ([]*discordgo.Channel, error)
}

// Provider fetches guild configuration per event.
type Provider struct {
	api ChannelLister
}

func NewProvider(api ChannelLister) *Provider {
	return &Provider{api: api}
}

// Fetch returns the configuration for a guild. It never fails: lookup
// or parse faults are logged and the defaults returned.
func (p *Provider) Fetch(guildID string) *Config {
	if guildID == "" {
		return Default()
	}
	channels, err := p.api.GuildChannels(guildID)
	if err != nil {
		slog.Warn("guildconfig: channel lookup failed, using defaults", "guild_id", guildID, "error", err)
		return Default()
	}
	for _, ch := range channels {
		if ch.Name != ConfigChannelName {
			continue
		}
		if ch.Topic == "" {
			return Default()
		}
		cfg, err := Parse(ch.Topic)
		if err != nil {
			slog.Warn("guildconfig: topic parse failed, using defaults", "guild_id", guildID, "error", err)
			return Default()
		}
		return cfg
	}
	return Default()
}
