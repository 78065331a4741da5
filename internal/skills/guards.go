package skills

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/glyphbot/glyph/internal/messaging"
)

const (
	serverOnlyReply = "You can't do this in a PM!"
	adminOnlyReply  = "You can't do this, you don't have permission `administrator`!"
)

// Guards builds composable access wrappers around skill handlers.
// Guards compose by ordinary wrapping and evaluate outer-to-inner,
// short-circuiting with a denial reply on the first failing guard.
type Guards struct {
	messenger *messaging.Orchestrator
}

func NewGuards(messenger *messaging.Orchestrator) *Guards {
	return &Guards{messenger: messenger}
}

// ServerOnly denies invocations from direct messages.
func (g *Guards) ServerOnly(h Handler) Handler {
	return func(ctx context.Context, req *Request) error {
		if req.Event.IsDM() {
			_, _ = g.messenger.Send(ctx, req.Event.ChannelID, serverOnlyReply, messaging.SendOptions{})
			return nil
		}
		return h(ctx, req)
	}
}

// AdminOnly denies invokers without the administrator capability in the
// event's channel.
func (g *Guards) AdminOnly(h Handler) Handler {
	return func(ctx context.Context, req *Request) error {
		if !g.messenger.HasPermission(req.Event.ChannelID, req.Event.AuthorID, discordgo.PermissionAdministrator) {
			_, _ = g.messenger.Send(ctx, req.Event.ChannelID, adminOnlyReply, messaging.SendOptions{})
			return nil
		}
		return h(ctx, req)
	}
}
