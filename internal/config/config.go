// Package config holds the process-level configuration: Discord
// credentials, NLU access, external lookup endpoints and telemetry.
// Per-guild behavior lives in guildconfig, not here.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
)

// Config is the full process configuration. Loaded once at startup from
// a JSON5 file, then overlaid with GLYPH_* environment variables.
type Config struct {
	mu sync.RWMutex

	Discord   DiscordConfig   `json:"discord"`
	NLU       NLUConfig       `json:"nlu"`
	Lookup    LookupConfig    `json:"lookup"`
	Botlist   BotlistConfig   `json:"botlist,omitempty"`
	Telemetry TelemetryConfig `json:"telemetry,omitempty"`
	Log       LogConfig       `json:"log,omitempty"`

	// RatelimitSeconds is the per-user cooldown window opened after a
	// successful skill dispatch.
	RatelimitSeconds int `json:"ratelimit_seconds,omitempty"`
}

// DiscordConfig carries the gateway credentials.
type DiscordConfig struct {
	Token  string `json:"token"`
	Status string `json:"status,omitempty"` // presence text, optional
}

// NLUConfig points at the natural-language backend.
type NLUConfig struct {
	Endpoint string `json:"endpoint,omitempty"` // default https://api.api.ai/v1
	Token    string `json:"token"`
	Lang     string `json:"lang,omitempty"` // default "en"
}

// LookupConfig configures the external lookup services used by skills
// and quickviews.
type LookupConfig struct {
	FAExportEndpoint string `json:"faexport_endpoint,omitempty"`
	HasteEndpoint    string `json:"haste_endpoint,omitempty"`
	RedditUserAgent  string `json:"reddit_user_agent,omitempty"`
}

// BotlistConfig configures periodic guild-count reporting. Empty URL or
// token disables it.
type BotlistConfig struct {
	URL      string `json:"url,omitempty"`
	Token    string `json:"token,omitempty"`
	Schedule string `json:"schedule,omitempty"` // cron expression
}

// TelemetryConfig configures OpenTelemetry trace export. When enabled,
// spans are exported to an OTLP-compatible backend.
type TelemetryConfig struct {
	Enabled     bool              `json:"enabled,omitempty"`
	Endpoint    string            `json:"endpoint,omitempty"` // e.g. "localhost:4317"
	Protocol    string            `json:"protocol,omitempty"` // "grpc" (default) or "http"
	Insecure    bool              `json:"insecure,omitempty"`
	ServiceName string            `json:"service_name,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

// LogConfig controls slog output.
type LogConfig struct {
	Level  string `json:"level,omitempty"`  // debug, info, warn, error
	Format string `json:"format,omitempty"` // "text" (default) or "json"
}

// Hash returns a stable digest of the config, used by the file watcher
// to suppress spurious reload notifications.
func (c *Config) Hash() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, _ := json.Marshal(c)
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
