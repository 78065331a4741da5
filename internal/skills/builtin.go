package skills

import (
	"log/slog"
	"time"

	"github.com/glyphbot/glyph/internal/guildconfig"
	"github.com/glyphbot/glyph/internal/haste"
	"github.com/glyphbot/glyph/internal/lookup"
	"github.com/glyphbot/glyph/internal/messaging"
)

// Set bundles the built-in skills and their collaborators.
type Set struct {
	messenger *messaging.Orchestrator
	configs   *guildconfig.Provider
	wiki      *lookup.WikiClient
	reddit    *lookup.RedditClient
	haste     *haste.Client
	started   time.Time
}

func NewSet(messenger *messaging.Orchestrator, configs *guildconfig.Provider, wiki *lookup.WikiClient, reddit *lookup.RedditClient, hasteClient *haste.Client) *Set {
	return &Set{
		messenger: messenger,
		configs:   configs,
		wiki:      wiki,
		reddit:    reddit,
		haste:     hasteClient,
		started:   time.Now(),
	}
}

// RegisterAll populates the registry from the static skill table and
// logs the full key set once registration is complete.
func (s *Set) RegisterAll(reg *Registry, guards *Guards) {
	table := []struct {
		key     string
		handler Handler
	}{
		{"help", s.Help},
		{"status", s.Status},
		{"time", s.Time},
		{"wiki", s.Wiki},
		{"reddit", s.Reddit},
		{"role.set", guards.ServerOnly(s.RoleSet)},
		{"role.list", guards.ServerOnly(s.RoleList)},
		{"moderation.purge", guards.AdminOnly(guards.ServerOnly(s.Purge))},
		{"moderation.kick", guards.AdminOnly(guards.ServerOnly(s.Kick))},
		{"configuration.view", guards.AdminOnly(guards.ServerOnly(s.ConfigView))},
		{"configuration.load", guards.AdminOnly(guards.ServerOnly(s.ConfigLoad))},
	}
	for _, entry := range table {
		reg.Register(entry.key, entry.handler)
	}
	slog.Info("skills: registry populated", "keys", reg.Keys())
}
