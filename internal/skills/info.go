package skills

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/glyphbot/glyph/internal/messaging"
)

const helpEmbedColor = 0x4286F4

const helpText = "Glyph has no commands; just mention it or send it a DM and " +
	"describe what you want in plain language.\n\n" +
	"**Wiki Search** — ask a question like \"Who is Commander Shepard?\"\n" +
	"**Role Setting** — say something like \"Set me as Geth\" (or \"list roles\")\n" +
	"**Images** — ask for a picture, e.g. \"show me a fancy snek\"\n" +
	"**Time** — ask \"what time is it in UTC?\"\n" +
	"**Status** — say \"ping\" or \"are you working?\"\n" +
	"**Moderation** — admins can ask for things like \"purge 2h\""

// Help replies with the usage embed.
func (s *Set) Help(ctx context.Context, req *Request) error {
	embed := &discordgo.MessageEmbed{
		Title:       "Glyph Help",
		Description: helpText,
		Color:       helpEmbedColor,
	}
	_, _ = s.messenger.Send(ctx, req.Event.ChannelID, "", messaging.SendOptions{Embed: embed, Removable: true})
	return nil
}

// Status replies with a runtime snapshot, then edits the reply in place
// with the measured round-trip time.
func (s *Set) Status(ctx context.Context, req *Request) error {
	start := time.Now()
	msg, err := s.messenger.Send(ctx, req.Event.ChannelID, "", messaging.SendOptions{Embed: s.statusEmbed("?")})
	if err != nil || msg == nil {
		return nil
	}
	ping := time.Since(start).Milliseconds()
	ref := messaging.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID}
	_, _ = s.messenger.Edit(ctx, ref, "", messaging.EditOptions{Embed: s.statusEmbed(fmt.Sprintf("%d ms", ping))})
	return nil
}

func (s *Set) statusEmbed(ping string) *discordgo.MessageEmbed {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	uptime := time.Since(s.started).Round(time.Second)
	return &discordgo.MessageEmbed{
		Title: "Glyph Status",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Ping", Value: ping, Inline: true},
			{Name: "Uptime", Value: uptime.String(), Inline: true},
			{Name: "Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "Heap", Value: fmt.Sprintf("%d MiB", mem.HeapAlloc/1024/1024), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Status Skill"},
	}
}

// Time replies with the current time, localized when the intent names a
// timezone.
func (s *Set) Time(ctx context.Context, req *Request) error {
	tz := req.Intent.Param("timezone")
	title := "Current Time"
	now := time.Now().UTC()
	if tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			_, _ = s.messenger.Send(ctx, req.Event.ChannelID,
				fmt.Sprintf("Sorry, I don't know the timezone `%s`.", tz), messaging.SendOptions{})
			return nil
		}
		title = tz + " Time"
		now = now.In(loc)
	}
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: now.Format("Monday, January 2 2006, 15:04 MST"),
		Footer:      &discordgo.MessageEmbedFooter{Text: "Time Skill"},
	}
	_, _ = s.messenger.Send(ctx, req.Event.ChannelID, "", messaging.SendOptions{Embed: embed})
	return nil
}
