// Package messaging is the single boundary to the remote chat API.
// Every outbound action (send, edit, delete, react, typing, purge, role
// mutation) goes through the Orchestrator, which probes permissions,
// degrades content, schedules expiry and maintains the removable and
// delete-with registries. Remote failures are classified and logged
// here; they never propagate as faults.
package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/glyphbot/glyph/internal/bus"
	"github.com/glyphbot/glyph/internal/messaging/typing"
)

const (
	// DeleteEmoji marks a removable message for user-triggered deletion.
	DeleteEmoji = "❌"
	// WarnEmoji flags spoiler-keyword messages.
	WarnEmoji = "⚠"
	// AckEmoji is the lightweight acknowledgement for fallback intents.
	AckEmoji = "\U0001F44C"

	removableHint  = "React " + DeleteEmoji + " to delete this."
	escalationHint = "*No embed permission compatibility mode, please grant embed permission*"

	// MaxBulkDeleteAge is the platform's bulk-delete age ceiling.
	MaxBulkDeleteAge = 14 * 24 * time.Hour

	// RoleMutationPause is the mandatory gap between a role removal and
	// the following addition, respecting platform rate limits.
	RoleMutationPause = 200 * time.Millisecond

	tombstoneTTL = 5 * time.Second

	typingTTL       = 60 * time.Second
	typingKeepalive = 9 * time.Second
)

// WindowError reports a purge request whose window exceeds the
// platform's bulk-delete maximum. Returned before any remote call.
type WindowError struct {
	Window time.Duration
	Max    time.Duration
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("purge window %s exceeds the %s bulk-delete maximum", e.Window, e.Max)
}

func (e *WindowError) Unwrap() error { return ErrWindowTooLarge }

// SendOptions controls the lifecycle of a sent message.
type SendOptions struct {
	Embed *discordgo.MessageEmbed
	// ExpireAfter schedules a best-effort deletion of the message.
	// Takes precedence over Removable.
	ExpireAfter time.Duration
	// Removable tags the message as deletable via the delete reaction.
	Removable bool
	// DeleteWith links the message to a trigger: deleting the trigger
	// cascades to this message.
	DeleteWith string
}

// EditOptions controls an edit.
type EditOptions struct {
	Embed          *discordgo.MessageEmbed
	ExpireAfter    time.Duration
	ClearReactions bool
}

// Orchestrator mediates all outbound platform actions.
type Orchestrator struct {
	api         ChatAPI
	removable   *RemovableRegistry
	ledger      *Ledger
	typingCtrls sync.Map // channelID → *typing.Controller

	// schedule and now are injectable for tests.
	schedule func(time.Duration, func())
	now      func() time.Time
}

func NewOrchestrator(api ChatAPI) *Orchestrator {
	return &Orchestrator{
		api:       api,
		removable: NewRemovableRegistry(),
		ledger:    NewLedger(),
		schedule:  func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
		now:       time.Now,
	}
}

// Removable exposes the removable registry for tests and diagnostics.
func (o *Orchestrator) Removable() *RemovableRegistry { return o.removable }

// LedgerEntries exposes the delete-with ledger for tests and diagnostics.
func (o *Orchestrator) LedgerEntries() *Ledger { return o.ledger }

// Send delivers a message to a channel. Both content and embed empty is
// a caller bug: logged, no remote call. When the bot lacks embed-links
// permission in the destination, a supplied embed is flattened to plain
// text with an escalation hint. Lifecycle registration (expiry,
// removable, delete-with) happens only after the send succeeds.
func (o *Orchestrator) Send(_ context.Context, channelID, content string, opts SendOptions) (*discordgo.Message, error) {
	if content == "" && opts.Embed == nil {
		slog.Error("messaging: send needs content or an embed", "channel_id", channelID)
		return nil, ErrEmptyMessage
	}

	o.stopTyping(channelID)

	embed := opts.Embed
	if embed != nil && opts.Removable {
		appendFooter(embed, removableHint)
	}

	var msg *discordgo.Message
	var err error
	if embed != nil && !o.canEmbed(channelID) {
		msg, err = o.api.SendMessage(channelID, flattenEmbed(content, embed), nil)
	} else {
		msg, err = o.api.SendMessage(channelID, content, embed)
	}
	if err != nil {
		o.logFailure("send message", channelID, err)
		return nil, err
	}

	switch {
	case opts.ExpireAfter > 0:
		o.expireLater(MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID}, opts.ExpireAfter)
	case opts.Removable:
		o.removable.Track(msg.ID)
	}
	if opts.DeleteWith != "" {
		// Strictly after send success: a racing delete notification can
		// never observe a half-created entry.
		o.ledger.Record(opts.DeleteWith, MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID})
	}
	return msg, nil
}

// Edit rewrites a message, optionally clearing reactions first and
// scheduling expiry afterwards.
func (o *Orchestrator) Edit(_ context.Context, ref MessageRef, content string, opts EditOptions) (*discordgo.Message, error) {
	if opts.ClearReactions {
		if err := o.api.ClearReactions(ref.ChannelID, ref.MessageID); err != nil {
			o.logFailure("clear reactions", ref.ChannelID, err)
		}
	}
	msg, err := o.api.EditMessage(ref.ChannelID, ref.MessageID, content, opts.Embed)
	if err != nil {
		o.logFailure("edit message", ref.ChannelID, err)
		return nil, err
	}
	if opts.ExpireAfter > 0 {
		o.expireLater(ref, opts.ExpireAfter)
	}
	return msg, nil
}

// Delete removes a message. Not-found is a benign no-op.
func (o *Orchestrator) Delete(_ context.Context, ref MessageRef) error {
	if err := o.api.DeleteMessage(ref.ChannelID, ref.MessageID); err != nil {
		o.logFailure("delete message", ref.ChannelID, err)
		return err
	}
	return nil
}

// React adds a reaction to a message.
func (o *Orchestrator) React(_ context.Context, channelID, messageID, emoji string) error {
	if err := o.api.AddReaction(channelID, messageID, emoji); err != nil {
		o.logFailure("add reaction", channelID, err)
		return err
	}
	return nil
}

// ClearReactions removes all reactions from a message.
func (o *Orchestrator) ClearReactions(_ context.Context, channelID, messageID string) error {
	if err := o.api.ClearReactions(channelID, messageID); err != nil {
		o.logFailure("clear reactions", channelID, err)
		return err
	}
	return nil
}

// StartTyping shows a typing indicator with keepalive until the next
// Send to the channel or the TTL safety net.
func (o *Orchestrator) StartTyping(channelID string) {
	ctrl := typing.New(typing.Options{
		MaxDuration:       typingTTL,
		KeepaliveInterval: typingKeepalive,
		StartFn: func() error {
			if err := o.api.Typing(channelID); err != nil {
				o.logFailure("send typing", channelID, err)
				return err
			}
			return nil
		},
	})
	// Swap makes the handoff atomic: whichever controller a concurrent
	// start displaces is stopped by exactly one caller.
	if prev, ok := o.typingCtrls.Swap(channelID, ctrl); ok {
		prev.(*typing.Controller).Stop()
	}
	ctrl.Start()
}

func (o *Orchestrator) stopTyping(channelID string) {
	if ctrl, ok := o.typingCtrls.LoadAndDelete(channelID); ok {
		ctrl.(*typing.Controller).Stop()
	}
}

// Purge bulk-deletes messages newer than now-window, skipping those the
// keep predicate matches. The window is validated against the platform
// maximum before any remote call; in-range requests issue exactly one
// bulk-delete.
func (o *Orchestrator) Purge(_ context.Context, channelID string, window time.Duration, limit int, keep func(*discordgo.Message) bool) (int, error) {
	if window > MaxBulkDeleteAge {
		return 0, &WindowError{Window: window, Max: MaxBulkDeleteAge}
	}
	msgs, err := o.api.ChannelMessages(channelID, limit)
	if err != nil {
		o.logFailure("purge: fetch messages", channelID, err)
		return 0, err
	}
	cutoff := o.now().Add(-window)
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Timestamp.Before(cutoff) {
			continue
		}
		if keep != nil && keep(m) {
			continue
		}
		ids = append(ids, m.ID)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := o.api.BulkDelete(channelID, ids); err != nil {
		o.logFailure("purge: bulk delete", channelID, err)
		return 0, err
	}
	return len(ids), nil
}

// SwapRoles removes every role in remove from the member, pauses for
// the mandatory rate-limit gap, then adds the new role. Removal
// failures are logged and do not abort the swap.
func (o *Orchestrator) SwapRoles(ctx context.Context, guildID, userID string, remove []string, add string) error {
	for _, roleID := range remove {
		if err := o.api.RemoveRole(guildID, userID, roleID); err != nil {
			o.logFailure("remove role", guildID, err)
		}
	}
	select {
	case <-time.After(RoleMutationPause):
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := o.api.AddRole(guildID, userID, add); err != nil {
		o.logFailure("add role", guildID, err)
		return err
	}
	return nil
}

// Kick removes a member from a guild.
func (o *Orchestrator) Kick(_ context.Context, guildID, userID, reason string) error {
	if err := o.api.KickMember(guildID, userID, reason); err != nil {
		o.logFailure("kick member", guildID, err)
		return err
	}
	return nil
}

// HasPermission reports whether the user holds the permission bits in
// the channel. A failed probe is logged and treated as lacking.
func (o *Orchestrator) HasPermission(channelID, userID string, perm int64) bool {
	perms, err := o.api.Permissions(channelID, userID)
	if err != nil {
		o.logFailure("probe permissions", channelID, err)
		return false
	}
	return perms&perm == perm
}

// API exposes the underlying read surface for collaborators that need
// guild metadata (role lists, channel topics).
func (o *Orchestrator) API() ChatAPI { return o.api }

// HandleReactionAdd drives the removable-message lifecycle. A delete
// reaction on a tracked Active message wins the Active→PendingRemoval
// transition exactly once; the message is edited to a tombstone and
// deleted shortly after, then evicted so later reactions are no-ops.
func (o *Orchestrator) HandleReactionAdd(ctx context.Context, ev bus.ReactionEvent) {
	if ev.Emoji != DeleteEmoji {
		return
	}
	if !o.removable.BeginRemoval(ev.MessageID) {
		return
	}
	ref := MessageRef{ChannelID: ev.ChannelID, MessageID: ev.MessageID}
	o.tombstone(ctx, ref, func() { o.removable.Evict(ev.MessageID) })
}

// HandleMessageDelete cascades a trigger deletion to the reply recorded
// in the ledger. The entry is taken atomically, so a repeated delete
// notification for the same trigger is a no-op. Both the deleted
// message and a cascaded reply leave the removable registry; without
// the eviction, messages that exit through the cascade would sit Active
// in the registry for the life of the process.
func (o *Orchestrator) HandleMessageDelete(ctx context.Context, ev bus.DeleteEvent) {
	o.removable.Evict(ev.MessageID)

	ref, ok := o.ledger.Take(ev.MessageID)
	if !ok {
		return
	}
	o.removable.Evict(ref.MessageID)
	o.tombstone(ctx, ref, nil)
}

func (o *Orchestrator) tombstone(ctx context.Context, ref MessageRef, onRemoved func()) {
	embed := &discordgo.MessageEmbed{Description: ":x: Removed!", Color: 0xFF0000}
	_, _ = o.Edit(ctx, ref, "", EditOptions{Embed: embed, ClearReactions: true})
	o.schedule(tombstoneTTL, func() {
		if err := o.api.DeleteMessage(ref.ChannelID, ref.MessageID); err != nil {
			o.logFailure("tombstone delete", ref.ChannelID, err)
		}
		if onRemoved != nil {
			onRemoved()
		}
	})
}

func (o *Orchestrator) expireLater(ref MessageRef, after time.Duration) {
	o.schedule(after, func() {
		// Best effort: the message may already be gone.
		if err := o.api.DeleteMessage(ref.ChannelID, ref.MessageID); err != nil && Classify(err) != KindNotFound {
			o.logFailure("expire message", ref.ChannelID, err)
		}
	})
}

func (o *Orchestrator) canEmbed(channelID string) bool {
	perms, err := o.api.Permissions(channelID, o.api.BotUserID())
	if err != nil {
		slog.Debug("messaging: embed permission probe failed, assuming allowed",
			"channel_id", channelID, "error", err)
		return true
	}
	return perms&discordgo.PermissionEmbedLinks != 0
}

func (o *Orchestrator) logFailure(op, target string, err error) {
	kind := Classify(err)
	slog.Warn("messaging: "+op+" failed", "target", target, "kind", kind.String(), "error", err)
}

// flattenEmbed renders an embed as plain text for channels where the
// bot cannot post rich content.
func flattenEmbed(content string, embed *discordgo.MessageEmbed) string {
	text := content
	if text != "" {
		text += "\n"
	}
	text += "**" + embed.Title + "**"
	if embed.Description != "" {
		text += "\n" + embed.Description
	}
	if embed.Image != nil && embed.Image.URL != "" {
		text += "\n" + embed.Image.URL
	}
	if embed.Thumbnail != nil && embed.Thumbnail.URL != "" {
		text += "\n" + embed.Thumbnail.URL
	}
	return text + "\n" + escalationHint
}

func appendFooter(embed *discordgo.MessageEmbed, hint string) {
	if embed.Footer == nil || embed.Footer.Text == "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: hint}
		return
	}
	embed.Footer.Text = hint + " | " + embed.Footer.Text
}
