package skills

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/glyphbot/glyph/internal/messaging"
)

const (
	purgeFetchLimit = 100

	checkMark = "✅"
	crossMark = "❎"
)

var durationPattern = regexp.MustCompile(`(?i)(\d+)\s*(s|sec|second|m|min|minute|h|hour|d|day|w|week)s?\b`)

// parseDurationText turns free-form text like "2 hours" or "14d" into a
// duration. Multiple units accumulate.
func parseDurationText(text string) (time.Duration, bool) {
	matches := durationPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return 0, false
	}
	var total time.Duration
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		switch m[2][0] | 0x20 { // lowercase first letter
		case 's':
			total += time.Duration(n) * time.Second
		case 'm':
			total += time.Duration(n) * time.Minute
		case 'h':
			total += time.Duration(n) * time.Hour
		case 'd':
			total += time.Duration(n) * 24 * time.Hour
		case 'w':
			total += time.Duration(n) * 7 * 24 * time.Hour
		}
	}
	return total, total > 0
}

// Purge bulk-deletes recent messages in the invoking channel. The
// status message it posts is excluded from the purge and edited with
// the outcome.
func (s *Set) Purge(ctx context.Context, req *Request) error {
	ev := req.Event
	window, ok := parseDurationText(req.Intent.Param("duration"))
	if !ok {
		window, ok = parseDurationText(ev.Content)
	}
	if !ok {
		_, _ = s.messenger.Send(ctx, ev.ChannelID,
			"How far back should I purge? Try asking \"purge 2 hours\".", messaging.SendOptions{})
		return nil
	}

	status, err := s.messenger.Send(ctx, ev.ChannelID, "", messaging.SendOptions{
		Embed: moderationEmbed("Purging", fmt.Sprintf("Purging everything from the last %s.", window)),
	})
	if err != nil || status == nil {
		return nil
	}
	ref := messaging.MessageRef{ChannelID: status.ChannelID, MessageID: status.ID}

	keep := func(m *discordgo.Message) bool { return m.ID == status.ID }
	deleted, err := s.messenger.Purge(ctx, ev.ChannelID, window, purgeFetchLimit, keep)
	var windowErr *messaging.WindowError
	switch {
	case errors.As(err, &windowErr):
		_, _ = s.messenger.Edit(ctx, ref, "", messaging.EditOptions{
			Embed: moderationEmbed("Purge Failed",
				crossMark+" You can only bulk delete messages that are under 14 days old."),
		})
	case err != nil:
		_, _ = s.messenger.Edit(ctx, ref, "", messaging.EditOptions{
			Embed: moderationEmbed("Purge Failed",
				crossMark+" Either I was given an invalid duration or I don't have Manage Messages permission!"),
		})
	default:
		_, _ = s.messenger.Edit(ctx, ref, "", messaging.EditOptions{
			Embed: moderationEmbed("Purge Successful",
				fmt.Sprintf("%s Purged %d messages from the last %s.", checkMark, deleted, window)),
		})
	}
	return nil
}

// Kick removes the first mentioned member from the guild.
func (s *Set) Kick(ctx context.Context, req *Request) error {
	ev := req.Event
	if len(ev.MentionIDs) == 0 {
		_, _ = s.messenger.Send(ctx, ev.ChannelID,
			"Who should I kick? Mention them in your message.", messaging.SendOptions{})
		return nil
	}
	target := ev.MentionIDs[0]
	reason := req.Intent.Param("reason")
	if err := s.messenger.Kick(ctx, ev.GuildID, target, reason); err != nil {
		_, _ = s.messenger.Send(ctx, ev.ChannelID,
			"Sorry, I couldn't kick them. Do I have the Kick Members permission?", messaging.SendOptions{})
		return nil
	}
	_, _ = s.messenger.Send(ctx, ev.ChannelID, "", messaging.SendOptions{
		Embed: moderationEmbed("Member Kicked", fmt.Sprintf("%s <@%s> was kicked.", checkMark, target)),
	})
	return nil
}

func moderationEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Moderation"},
	}
}
