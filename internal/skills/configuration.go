package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/glyphbot/glyph/internal/messaging"
)

// ConfigView uploads the guild's effective configuration to the paste
// service and replies with the link.
func (s *Set) ConfigView(ctx context.Context, req *Request) error {
	ev := req.Event
	pretty, err := json.MarshalIndent(req.Config, "", "  ")
	if err != nil {
		return fmt.Errorf("skills: encode guild config: %w", err)
	}
	link, err := s.haste.Post(ctx, string(pretty))
	if err != nil {
		_, _ = s.messenger.Send(ctx, ev.ChannelID,
			"Sorry, I couldn't upload the configuration right now.", messaging.SendOptions{})
		return nil
	}
	_, _ = s.messenger.Send(ctx, ev.ChannelID,
		fmt.Sprintf("Here's the current configuration: %s", link),
		messaging.SendOptions{ExpireAfter: apologyExpiry * 6})
	return nil
}

// ConfigLoad re-reads the guild configuration from the config channel
// topic and reports what was loaded. The provider absorbs parse faults
// by falling back to defaults, so this doubles as a validity check.
func (s *Set) ConfigLoad(ctx context.Context, req *Request) error {
	ev := req.Event
	cfg := s.configs.Fetch(ev.GuildID)
	summary := []string{
		fmt.Sprintf("selectable roles: %d", len(cfg.SelectableRoles)),
		fmt.Sprintf("wiki: %s", cfg.Wiki),
		fmt.Sprintf("auditing channel: %s", orNone(cfg.Auditing.Channel)),
		fmt.Sprintf("spoilers channel: %s", orNone(cfg.Spoilers.Channel)),
	}
	_, _ = s.messenger.Send(ctx, ev.ChannelID,
		"Configuration reloaded.\n"+strings.Join(summary, "\n"), messaging.SendOptions{})
	return nil
}

func orNone(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}
