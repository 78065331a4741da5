package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NLU.Endpoint != "https://api.api.ai/v1" {
		t.Errorf("NLU endpoint = %q, want default", cfg.NLU.Endpoint)
	}
	if cfg.RatelimitSeconds != 5 {
		t.Errorf("RatelimitSeconds = %d, want 5", cfg.RatelimitSeconds)
	}
}

func TestLoad_JSON5Overlay(t *testing.T) {
	path := writeConfig(t, `{
		// comments are allowed
		discord: {token: "file-token"},
		nlu: {token: "nlu-token"},
		ratelimit_seconds: 10,
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Discord.Token != "file-token" {
		t.Errorf("Discord.Token = %q", cfg.Discord.Token)
	}
	if cfg.RatelimitSeconds != 10 {
		t.Errorf("RatelimitSeconds = %d, want 10", cfg.RatelimitSeconds)
	}
	// Unset sections keep defaults.
	if cfg.Lookup.HasteEndpoint == "" {
		t.Error("haste endpoint default lost in overlay")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{discord: {token: "file-token"}}`)
	t.Setenv("GLYPH_DISCORD_TOKEN", "env-token")
	t.Setenv("GLYPH_TELEMETRY_ENABLED", "1")
	t.Setenv("GLYPH_RATELIMIT_SECONDS", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Discord.Token != "env-token" {
		t.Errorf("Discord.Token = %q, env must win", cfg.Discord.Token)
	}
	if !cfg.Telemetry.Enabled {
		t.Error("telemetry should be enabled via env")
	}
	if cfg.RatelimitSeconds != 7 {
		t.Errorf("RatelimitSeconds = %d, want 7", cfg.RatelimitSeconds)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, `{discord: `)
	if _, err := Load(path); err == nil {
		t.Fatal("want error for malformed config")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty tokens must fail validation")
	}
	cfg.Discord.Token = "d"
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing NLU token must fail validation")
	}
	cfg.NLU.Token = "n"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("complete config failed validation: %v", err)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.Discord.Token = "d"
	cfg.NLU.Token = "n"
	cfg.RatelimitSeconds = 9
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	// Tokens go in this file, so it must not be world readable.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Discord.Token != "d" || loaded.NLU.Token != "n" {
		t.Errorf("tokens lost on round trip: %+v", loaded)
	}
	if loaded.RatelimitSeconds != 9 {
		t.Errorf("RatelimitSeconds = %d, want 9", loaded.RatelimitSeconds)
	}
}
