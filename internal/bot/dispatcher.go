// Package bot is the gateway edge: it turns discordgo events into the
// platform-neutral types the rest of the code consumes, and owns the
// per-event pipeline (guild config, passive features, NLU, routing).
package bot

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/glyphbot/glyph/internal/auditing"
	"github.com/glyphbot/glyph/internal/bus"
	"github.com/glyphbot/glyph/internal/conversation"
	"github.com/glyphbot/glyph/internal/guildconfig"
	"github.com/glyphbot/glyph/internal/messaging"
	"github.com/glyphbot/glyph/internal/nlu"
	"github.com/glyphbot/glyph/internal/quickview"
	"github.com/glyphbot/glyph/internal/router"
)

// sessionNamespace seeds deterministic per-user NLU session IDs.
var sessionNamespace = uuid.MustParse("b12f7834-d3a6-4c2e-9d3b-46a1041653a7")

const nluUnavailableReply = "Sorry, my brain is currently unavailable. Please try again in a moment."

// maxQuickviews caps the number of link previews per message.
const maxQuickviews = 3

// Dispatcher registers the gateway handlers and drives the message
// pipeline. All handler bodies recover, so one malformed event never
// takes the process down.
type Dispatcher struct {
	messenger *messaging.Orchestrator
	router    *router.Router
	nlu       *nlu.Client
	configs   *guildconfig.Provider
	conv      *conversation.State
	auditor   *auditing.Auditor
	fa        *quickview.FAClient
	picarto   *quickview.PicartoClient
	status    string
	tracer    trace.Tracer
}

type Options struct {
	Messenger *messaging.Orchestrator
	Router    *router.Router
	NLU       *nlu.Client
	Configs   *guildconfig.Provider
	Conv      *conversation.State
	Auditor   *auditing.Auditor
	FA        *quickview.FAClient
	Picarto   *quickview.PicartoClient
	Status    string
}

func NewDispatcher(opts Options) *Dispatcher {
	return &Dispatcher{
		messenger: opts.Messenger,
		router:    opts.Router,
		nlu:       opts.NLU,
		configs:   opts.Configs,
		conv:      opts.Conv,
		auditor:   opts.Auditor,
		fa:        opts.FA,
		picarto:   opts.Picarto,
		status:    opts.Status,
		tracer:    otel.Tracer("glyph/bot"),
	}
}

// Attach registers every handler on the session. Call before Open.
func (d *Dispatcher) Attach(s *discordgo.Session) {
	s.AddHandler(d.onReady)
	s.AddHandler(d.onMessageCreate)
	s.AddHandler(d.onMessageDelete)
	s.AddHandler(d.onReactionAdd)
	s.AddHandler(d.onReactionRemove)
	s.AddHandler(d.onMemberAdd)
	s.AddHandler(d.onMemberRemove)
}

func (d *Dispatcher) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	if d.status != "" {
		if err := s.UpdateGameStatus(0, d.status); err != nil {
			slog.Warn("bot: status update failed", "error", err)
		}
	}
	slog.Info("bot: gateway ready", "user_id", s.State.User.ID, "guilds", len(s.State.Guilds))
}

func (d *Dispatcher) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	defer d.recoverEvent("message_create")

	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	ev := inboundEvent(m.Message)
	ctx, span := d.tracer.Start(context.Background(), "bot.message",
		trace.WithAttributes(
			attribute.String("channel_id", ev.ChannelID),
			attribute.String("guild_id", ev.GuildID),
		))
	defer span.End()

	cfg := d.configs.Fetch(ev.GuildID)

	if !ev.IsDM() {
		d.spoilerGuard(ctx, cfg, ev)
		d.quickviews(ctx, cfg, ev)
	}

	// The bot only listens when addressed, in a DM, or mid-dialog.
	if !ev.Mentions(s.State.User.ID) && !ev.IsDM() && !d.conv.IsIncomplete(ev.AuthorID) {
		return
	}

	query := stripMention(ev.Content, s.State.User.ID)
	if query == "" {
		return
	}

	d.messenger.StartTyping(ev.ChannelID)

	sessionID := uuid.NewSHA1(sessionNamespace, []byte(ev.AuthorID)).String()
	res, err := d.nlu.Query(ctx, query, sessionID)
	if err != nil {
		slog.Error("bot: language query failed", "author_id", ev.AuthorID, "error", err)
		_, _ = d.messenger.Send(ctx, ev.ChannelID, nluUnavailableReply, messaging.SendOptions{})
		return
	}

	span.SetAttributes(attribute.String("nlu.action", strings.Join(res.ActionPath, ".")))
	d.router.Route(ctx, ev, res, cfg)
}

func (d *Dispatcher) onMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	defer d.recoverEvent("message_delete")

	ev := bus.DeleteEvent{MessageID: m.ID, ChannelID: m.ChannelID, GuildID: m.GuildID}
	ctx := context.Background()
	d.messenger.HandleMessageDelete(ctx, ev)

	if m.GuildID != "" {
		d.auditor.MessageDeleted(ctx, d.configs.Fetch(m.GuildID), ev)
	}
}

func (d *Dispatcher) onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	defer d.recoverEvent("reaction_add")

	if r.UserID == s.State.User.ID {
		return
	}
	ev := bus.ReactionEvent{
		MessageID: r.MessageID,
		ChannelID: r.ChannelID,
		GuildID:   r.GuildID,
		UserID:    r.UserID,
		Emoji:     r.Emoji.Name,
	}
	ctx := context.Background()
	d.messenger.HandleReactionAdd(ctx, ev)

	if r.GuildID != "" {
		d.auditor.ReactionAdded(ctx, d.configs.Fetch(r.GuildID), ev)
	}
}

func (d *Dispatcher) onReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	defer d.recoverEvent("reaction_remove")

	if r.UserID == s.State.User.ID || r.GuildID == "" {
		return
	}
	d.auditor.ReactionRemoved(context.Background(), d.configs.Fetch(r.GuildID), bus.ReactionEvent{
		MessageID: r.MessageID,
		ChannelID: r.ChannelID,
		GuildID:   r.GuildID,
		UserID:    r.UserID,
		Emoji:     r.Emoji.Name,
	})
}

func (d *Dispatcher) onMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	defer d.recoverEvent("member_add")

	ev := bus.MemberEvent{
		GuildID:  m.GuildID,
		UserID:   m.User.ID,
		Username: m.User.Username,
		Mention:  m.User.Mention(),
	}
	ctx := context.Background()
	cfg := d.configs.Fetch(m.GuildID)

	d.welcome(s, ev)
	d.auditor.MemberJoined(ctx, cfg, ev)
}

func (d *Dispatcher) onMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	defer d.recoverEvent("member_remove")

	ev := bus.MemberEvent{
		GuildID:  m.GuildID,
		UserID:   m.User.ID,
		Username: m.User.Username,
		Mention:  m.User.Mention(),
	}
	d.auditor.MemberLeft(context.Background(), d.configs.Fetch(m.GuildID), ev)
}

// welcome greets a new member in the guild's system channel and sends a
// short orientation DM. Both halves are best effort.
func (d *Dispatcher) welcome(s *discordgo.Session, ev bus.MemberEvent) {
	guild, err := s.Guild(ev.GuildID)
	if err == nil && guild.SystemChannelID != "" {
		_, _ = d.messenger.Send(context.Background(), guild.SystemChannelID,
			"Welcome "+ev.Mention+"!", messaging.SendOptions{})
	}

	dm, err := s.UserChannelCreate(ev.UserID)
	if err != nil {
		slog.Debug("bot: welcome dm channel failed", "user_id", ev.UserID, "error", err)
		return
	}
	_, _ = d.messenger.Send(context.Background(), dm.ID,
		"Hi "+ev.Username+"! Mention me in a channel or message me here and I'll try to help. Say \"help\" to see what I can do.",
		messaging.SendOptions{})
}

// spoilerGuard reacts with a warning when spoiler keywords show up
// outside the designated spoiler channel.
func (d *Dispatcher) spoilerGuard(ctx context.Context, cfg *guildconfig.Config, ev bus.InboundEvent) {
	if len(cfg.Spoilers.Keywords) == 0 {
		return
	}
	if cfg.Spoilers.Channel != "" {
		ch, err := d.messenger.API().Channel(ev.ChannelID)
		if err == nil && ch.Name == cfg.Spoilers.Channel {
			return
		}
	}
	content := strings.ToLower(ev.Content)
	for _, kw := range cfg.Spoilers.Keywords {
		if kw != "" && strings.Contains(content, strings.ToLower(kw)) {
			_ = d.messenger.React(ctx, ev.ChannelID, ev.MessageID, messaging.WarnEmoji)
			return
		}
	}
}

// quickviews posts inline previews for recognized links.
func (d *Dispatcher) quickviews(ctx context.Context, cfg *guildconfig.Config, ev bus.InboundEvent) {
	posted := 0

	if cfg.Quickview.FAEnabled && d.fa != nil {
		for _, id := range quickview.ScanFALinks(ev.Content) {
			if posted >= maxQuickviews {
				return
			}
			sub, err := d.fa.Submission(ctx, id)
			if err != nil {
				slog.Debug("bot: fa quickview failed", "submission_id", id, "error", err)
				continue
			}
			if _, err := d.messenger.Send(ctx, ev.ChannelID, "", messaging.SendOptions{
				Embed:      sub.Embed(cfg.Quickview.FAThumbnail),
				Removable:  true,
				DeleteWith: ev.MessageID,
			}); err == nil {
				posted++
			}
		}
	}

	if cfg.Quickview.PicartoEnabled && d.picarto != nil {
		for _, name := range quickview.ScanPicartoLinks(ev.Content) {
			if posted >= maxQuickviews {
				return
			}
			ch, err := d.picarto.Channel(ctx, name)
			if err != nil {
				slog.Debug("bot: picarto quickview failed", "channel", name, "error", err)
				continue
			}
			if _, err := d.messenger.Send(ctx, ev.ChannelID, "", messaging.SendOptions{
				Embed:      ch.Embed(),
				Removable:  true,
				DeleteWith: ev.MessageID,
			}); err == nil {
				posted++
			}
		}
	}
}

func (d *Dispatcher) recoverEvent(event string) {
	if r := recover(); r != nil {
		slog.Error("bot: handler panic", "event", event, "panic", r, "stack", string(debug.Stack()))
	}
}

// inboundEvent converts a gateway message into the neutral event type.
func inboundEvent(m *discordgo.Message) bus.InboundEvent {
	ev := bus.InboundEvent{
		MessageID:   m.ID,
		AuthorID:    m.Author.ID,
		AuthorName:  m.Author.Username,
		AuthorIsBot: m.Author.Bot,
		ChannelID:   m.ChannelID,
		GuildID:     m.GuildID,
		Content:     m.Content,
	}
	for _, u := range m.Mentions {
		ev.MentionIDs = append(ev.MentionIDs, u.ID)
	}
	for _, a := range m.Attachments {
		ev.AttachmentURLs = append(ev.AttachmentURLs, a.URL)
	}
	return ev
}

// stripMention removes a leading or embedded mention of the bot so the
// NLU sees only the request text.
func stripMention(content, botID string) string {
	for _, form := range []string{"<@" + botID + ">", "<@!" + botID + ">"} {
		content = strings.ReplaceAll(content, form, "")
	}
	return strings.TrimSpace(content)
}
