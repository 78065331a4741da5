// Package auditing mirrors notable guild events into a moderator log
// channel when the guild config asks for it.
package auditing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/glyphbot/glyph/internal/bus"
	"github.com/glyphbot/glyph/internal/guildconfig"
	"github.com/glyphbot/glyph/internal/messaging"
)

const (
	colorJoin     = 0x42F465
	colorLeave    = 0xF4A742
	colorDelete   = 0xF44242
	colorReaction = 0x4286F4
)

// Auditor writes one embed per audited event. Every method is best
// effort; a missing or misconfigured channel only produces a log line.
type Auditor struct {
	messenger *messaging.Orchestrator
}

func New(messenger *messaging.Orchestrator) *Auditor {
	return &Auditor{messenger: messenger}
}

func (a *Auditor) MemberJoined(ctx context.Context, cfg *guildconfig.Config, ev bus.MemberEvent) {
	if !cfg.Auditing.Joins {
		return
	}
	a.post(ctx, cfg, &discordgo.MessageEmbed{
		Title:       "Member joined",
		Description: fmt.Sprintf("<@%s> (%s)", ev.UserID, ev.Username),
		Color:       colorJoin,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *Auditor) MemberLeft(ctx context.Context, cfg *guildconfig.Config, ev bus.MemberEvent) {
	if !cfg.Auditing.Leaves {
		return
	}
	a.post(ctx, cfg, &discordgo.MessageEmbed{
		Title:       "Member left",
		Description: fmt.Sprintf("<@%s> (%s)", ev.UserID, ev.Username),
		Color:       colorLeave,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *Auditor) MessageDeleted(ctx context.Context, cfg *guildconfig.Config, ev bus.DeleteEvent) {
	if !cfg.Auditing.Deletes {
		return
	}
	a.post(ctx, cfg, &discordgo.MessageEmbed{
		Title:       "Message deleted",
		Description: fmt.Sprintf("Message `%s` deleted in <#%s>", ev.MessageID, ev.ChannelID),
		Color:       colorDelete,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *Auditor) ReactionAdded(ctx context.Context, cfg *guildconfig.Config, ev bus.ReactionEvent) {
	if !cfg.Auditing.Reactions {
		return
	}
	a.post(ctx, cfg, &discordgo.MessageEmbed{
		Title:       "Reaction added",
		Description: fmt.Sprintf("<@%s> reacted %s to message `%s` in <#%s>", ev.UserID, ev.Emoji, ev.MessageID, ev.ChannelID),
		Color:       colorReaction,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *Auditor) ReactionRemoved(ctx context.Context, cfg *guildconfig.Config, ev bus.ReactionEvent) {
	if !cfg.Auditing.Reactions {
		return
	}
	a.post(ctx, cfg, &discordgo.MessageEmbed{
		Title:       "Reaction removed",
		Description: fmt.Sprintf("<@%s> removed %s from message `%s` in <#%s>", ev.UserID, ev.Emoji, ev.MessageID, ev.ChannelID),
		Color:       colorReaction,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *Auditor) post(ctx context.Context, cfg *guildconfig.Config, embed *discordgo.MessageEmbed) {
	channelID := a.resolveChannel(cfg)
	if channelID == "" {
		return
	}
	if _, err := a.messenger.Send(ctx, channelID, "", messaging.SendOptions{Embed: embed}); err != nil {
		slog.Warn("auditing: post failed", "channel_id", channelID, "error", err)
	}
}

// resolveChannel accepts a raw channel ID or a <#id> mention in the
// config value.
func (a *Auditor) resolveChannel(cfg *guildconfig.Config) string {
	ch := cfg.Auditing.Channel
	if len(ch) > 3 && ch[0] == '<' && ch[1] == '#' && ch[len(ch)-1] == '>' {
		return ch[2 : len(ch)-1]
	}
	return ch
}
