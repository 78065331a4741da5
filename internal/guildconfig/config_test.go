package guildconfig

import (
	"errors"
	"reflect"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestParse_OverlaysDefaults(t *testing.T) {
	cfg, err := Parse(`{
		// JSON5: comments and trailing commas are fine in a channel topic
		selectable_roles: ["artist", "musician"],
		wiki: "fallout",
		auditing: {channel: "mod-log", joins: true},
	}`)
	if err != nil {
		t.Fatal(err)
	}

	if want := []string{"artist", "musician"}; !reflect.DeepEqual(cfg.SelectableRoles, want) {
		t.Errorf("SelectableRoles = %v, want %v", cfg.SelectableRoles, want)
	}
	if cfg.Wiki != "fallout" {
		t.Errorf("Wiki = %q, want fallout", cfg.Wiki)
	}
	if cfg.Auditing.Channel != "mod-log" || !cfg.Auditing.Joins {
		t.Errorf("Auditing = %+v", cfg.Auditing)
	}
	if cfg.Auditing.Leaves {
		t.Error("unmentioned auditing toggle should stay off")
	}
	// Untouched sections keep their defaults.
	if !cfg.Quickview.FAEnabled {
		t.Error("quickview default lost in overlay")
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse(`{wiki: `); err == nil {
		t.Fatal("want error for truncated document")
	}
}

// fakeLister serves canned channel lists per guild.
type fakeLister struct {
	channels []*discordgo.Channel
	err      error
}

func (f *fakeLister) GuildChannels(guildID string) ([]*discordgo.Channel, error) {
	return f.channels, f.err
}

func TestFetch_ReadsConfigChannelTopic(t *testing.T) {
	p := NewProvider(&fakeLister{channels: []*discordgo.Channel{
		{Name: "general", Topic: `{wiki: "wrong"}`},
		{Name: ConfigChannelName, Topic: `{wiki: "fallout"}`},
	}})

	cfg := p.Fetch("g1")
	if cfg.Wiki != "fallout" {
		t.Errorf("Wiki = %q, want the #%s topic to win", cfg.Wiki, ConfigChannelName)
	}
}

func TestFetch_FallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name   string
		lister *fakeLister
	}{
		{"lookup failure", &fakeLister{err: errors.New("api down")}},
		{"no config channel", &fakeLister{channels: []*discordgo.Channel{{Name: "general"}}}},
		{"empty topic", &fakeLister{channels: []*discordgo.Channel{{Name: ConfigChannelName}}}},
		{"broken topic", &fakeLister{channels: []*discordgo.Channel{{Name: ConfigChannelName, Topic: "{{{"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewProvider(tt.lister).Fetch("g1")
			if cfg == nil {
				t.Fatal("Fetch must never return nil")
			}
			if !reflect.DeepEqual(cfg, Default()) {
				t.Errorf("got %+v, want defaults", cfg)
			}
		})
	}
}

func TestFetch_DirectMessage(t *testing.T) {
	p := NewProvider(&fakeLister{err: errors.New("must not be called")})
	if cfg := p.Fetch(""); !reflect.DeepEqual(cfg, Default()) {
		t.Error("DM fetch should return defaults without a lookup")
	}
}
