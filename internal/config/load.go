package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/titanous/json5"
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		NLU: NLUConfig{
			Endpoint: "https://api.api.ai/v1",
			Lang:     "en",
		},
		Lookup: LookupConfig{
			FAExportEndpoint: "https://faexport.spangle.org.uk",
			HasteEndpoint:    "https://hastebin.com",
			RedditUserAgent:  "linux:glyph:1.0",
		},
		Botlist: BotlistConfig{
			Schedule: "0 * * * *",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		RatelimitSeconds: 5,
	}
}

// Load reads config from a JSON5 file, then overlays env vars. A
// missing file is not an error; env vars alone can carry a full config.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config.
// Env vars take precedence over file values.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	envStr("GLYPH_DISCORD_TOKEN", &c.Discord.Token)
	envStr("GLYPH_DISCORD_STATUS", &c.Discord.Status)

	envStr("GLYPH_NLU_ENDPOINT", &c.NLU.Endpoint)
	envStr("GLYPH_NLU_TOKEN", &c.NLU.Token)
	envStr("GLYPH_NLU_LANG", &c.NLU.Lang)

	envStr("GLYPH_FAEXPORT_ENDPOINT", &c.Lookup.FAExportEndpoint)
	envStr("GLYPH_HASTE_ENDPOINT", &c.Lookup.HasteEndpoint)

	envStr("GLYPH_BOTLIST_URL", &c.Botlist.URL)
	envStr("GLYPH_BOTLIST_TOKEN", &c.Botlist.Token)
	envStr("GLYPH_BOTLIST_SCHEDULE", &c.Botlist.Schedule)

	envStr("GLYPH_TELEMETRY_ENDPOINT", &c.Telemetry.Endpoint)
	envStr("GLYPH_TELEMETRY_PROTOCOL", &c.Telemetry.Protocol)
	envStr("GLYPH_TELEMETRY_SERVICE_NAME", &c.Telemetry.ServiceName)
	if v := os.Getenv("GLYPH_TELEMETRY_ENABLED"); v != "" {
		c.Telemetry.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("GLYPH_TELEMETRY_INSECURE"); v != "" {
		c.Telemetry.Insecure = v == "true" || v == "1"
	}

	envStr("GLYPH_LOG_LEVEL", &c.Log.Level)
	envStr("GLYPH_LOG_FORMAT", &c.Log.Format)

	if v := os.Getenv("GLYPH_RATELIMIT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RatelimitSeconds = n
		}
	}
}

// Validate checks the fields without which the process cannot start.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("config: discord.token is required (or GLYPH_DISCORD_TOKEN)")
	}
	if c.NLU.Token == "" {
		return fmt.Errorf("config: nlu.token is required (or GLYPH_NLU_TOKEN)")
	}
	return nil
}

// Save writes the config to a JSON file.
func Save(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
