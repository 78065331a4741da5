// Package router decides what happens to each decoded utterance:
// polite refusal, fallback acknowledgement, guarded skill dispatch, or
// a verbatim NLU reply. State here is per-event; the persistent pieces
// (cooldowns, incomplete set) live in the conversation package.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/glyphbot/glyph/internal/bus"
	"github.com/glyphbot/glyph/internal/conversation"
	"github.com/glyphbot/glyph/internal/guildconfig"
	"github.com/glyphbot/glyph/internal/messaging"
	"github.com/glyphbot/glyph/internal/nlu"
	"github.com/glyphbot/glyph/internal/skills"
)

// DefaultCooldown is the throttle window opened after each successful
// skill dispatch.
const DefaultCooldown = 5 * time.Second

const (
	ignoreContext = "ignore"
	insultAction  = "insult"

	genericFailureReply = "Sorry, something went wrong doing that. Please try again later."
)

// Router drives the per-event intent state machine.
type Router struct {
	skills    *skills.Registry
	conv      *conversation.State
	messenger *messaging.Orchestrator
	cooldown  time.Duration
}

func New(registry *skills.Registry, conv *conversation.State, messenger *messaging.Orchestrator, cooldown time.Duration) *Router {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Router{skills: registry, conv: conv, messenger: messenger, cooldown: cooldown}
}

// Route runs the state machine for one event. NLU failures never reach
// this point; the dispatcher answers those with a single unavailability
// reply.
func (r *Router) Route(ctx context.Context, ev bus.InboundEvent, res *nlu.Result, cfg *guildconfig.Config) {
	switch {
	case res.HasContext(ignoreContext) && res.ActionAt(1) != insultAction:
		r.reply(ctx, ev, fmt.Sprintf("No <@%s>, I'm done helping you for now.", ev.AuthorID))

	case res.ActionRoot() == "fallback":
		// Lightweight acknowledgement; fall back to text when the
		// reaction itself is denied.
		if err := r.messenger.React(ctx, ev.ChannelID, ev.MessageID, messaging.AckEmoji); err != nil {
			r.reply(ctx, ev, res.FallbackText)
		}

	case res.ActionRoot() == "skill" && !res.Incomplete:
		r.dispatchSkill(ctx, ev, res, cfg)

	default:
		if res.Incomplete {
			r.conv.MarkIncomplete(ev.AuthorID)
		}
		r.reply(ctx, ev, res.FallbackText)
	}
}

func (r *Router) dispatchSkill(ctx context.Context, ev bus.InboundEvent, res *nlu.Result, cfg *guildconfig.Config) {
	key := res.SkillKey()

	verdict, remaining := r.conv.CheckCooldown(ev.AuthorID)
	switch verdict {
	case conversation.Deny:
		slog.Debug("router: cooldown deny", "author_id", ev.AuthorID, "key", key)
		return
	case conversation.Warn:
		r.reply(ctx, ev, fmt.Sprintf("<@%s> slow down! You can use skills again in %d seconds.",
			ev.AuthorID, int((remaining+time.Second-1)/time.Second)))
		return
	}

	// A completed skill intent ends any multi-turn dialog.
	r.conv.ClearIncomplete(ev.AuthorID)

	handled, err := r.skills.Dispatch(ctx, key, &skills.Request{Event: ev, Intent: res, Config: cfg})
	switch {
	case !handled:
		r.reply(ctx, ev, fmt.Sprintf("Odd, you seem to have triggered `%s`, a skill that isn't currently available.", key))
	case err != nil:
		r.reply(ctx, ev, genericFailureReply)
	default:
		r.conv.StartCooldown(ev.AuthorID, r.cooldown)
	}
}

func (r *Router) reply(ctx context.Context, ev bus.InboundEvent, text string) {
	if text == "" {
		return
	}
	_, _ = r.messenger.Send(ctx, ev.ChannelID, text, messaging.SendOptions{})
}
