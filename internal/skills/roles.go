package skills

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/glyphbot/glyph/internal/messaging"
)

const roleEmbedColor = 0x42F465

// RoleSet swaps the target member onto the desired selectable role:
// every configured selectable role is removed, then the new one added
// after the mandatory rate-limit pause, then exactly one confirmation
// is sent.
func (s *Set) RoleSet(ctx context.Context, req *Request) error {
	ev := req.Event
	desired := req.Intent.Param("role")
	if desired == "" {
		_, _ = s.messenger.Send(ctx, ev.ChannelID,
			"Sorry, I can not seem to find a desired role in your message.", messaging.SendOptions{})
		return nil
	}

	targetID := ev.AuthorID
	if len(ev.MentionIDs) > 0 {
		targetID = ev.MentionIDs[0]
	}
	if targetID != ev.AuthorID && !s.messenger.HasPermission(ev.ChannelID, ev.AuthorID, discordgo.PermissionManageRoles) {
		_, _ = s.messenger.Send(ctx, ev.ChannelID,
			"You don't have permission to set someone else's role.", messaging.SendOptions{})
		return nil
	}

	allowed, newRole, err := s.selectableRoles(ev.GuildID, req.Config.SelectableRoles, desired)
	if err != nil {
		return err
	}
	if len(allowed) == 0 {
		_, _ = s.messenger.Send(ctx, ev.ChannelID,
			"Sorry, but this server has no available roles configured.", messaging.SendOptions{})
		return nil
	}
	if newRole == nil {
		_, _ = s.messenger.Send(ctx, ev.ChannelID,
			fmt.Sprintf("Sorry, but `%s` is not an available role.", desired), messaging.SendOptions{})
		return s.sendRoleList(ctx, ev.ChannelID, allowed)
	}

	removeIDs := make([]string, 0, len(allowed))
	for _, r := range allowed {
		removeIDs = append(removeIDs, r.ID)
	}
	if err := s.messenger.SwapRoles(ctx, ev.GuildID, targetID, removeIDs, newRole.ID); err != nil {
		_, _ = s.messenger.Send(ctx, ev.ChannelID,
			fmt.Sprintf("Sorry, I can not assign the role `%s`.", desired), messaging.SendOptions{})
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Poof!",
		Description: fmt.Sprintf("<@%s> you are now a <@&%s>!", targetID, newRole.ID),
		Color:       roleEmbedColor,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Roles Skill"},
	}
	if member, merr := s.messenger.API().GuildMember(ev.GuildID, targetID); merr == nil && member.User != nil {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: member.User.AvatarURL("")}
	}
	_, _ = s.messenger.Send(ctx, ev.ChannelID, "", messaging.SendOptions{Embed: embed})
	return nil
}

// RoleList replies with the selectable roles configured for the guild.
func (s *Set) RoleList(ctx context.Context, req *Request) error {
	ev := req.Event
	allowed, _, err := s.selectableRoles(ev.GuildID, req.Config.SelectableRoles, "")
	if err != nil {
		return err
	}
	if len(allowed) == 0 {
		_, _ = s.messenger.Send(ctx, ev.ChannelID,
			"Sorry, but this server has no available roles configured.", messaging.SendOptions{})
		return nil
	}
	return s.sendRoleList(ctx, ev.ChannelID, allowed)
}

func (s *Set) sendRoleList(ctx context.Context, channelID string, allowed []*discordgo.Role) error {
	var b strings.Builder
	for _, r := range allowed {
		fmt.Fprintf(&b, "<@&%s>\n", r.ID)
	}
	embed := &discordgo.MessageEmbed{
		Title:       "Available Roles",
		Description: b.String(),
		Footer:      &discordgo.MessageEmbedFooter{Text: "Roles Skill"},
	}
	_, _ = s.messenger.Send(ctx, channelID, "", messaging.SendOptions{Embed: embed, Removable: true})
	return nil
}

// selectableRoles resolves the configured selectable role names against
// the guild's live roles and, when desired is non-empty, picks the one
// matching it case-insensitively.
func (s *Set) selectableRoles(guildID string, configured []string, desired string) (allowed []*discordgo.Role, match *discordgo.Role, err error) {
	roles, err := s.messenger.API().GuildRoles(guildID)
	if err != nil {
		return nil, nil, fmt.Errorf("skills: list guild roles: %w", err)
	}
	names := make(map[string]bool, len(configured))
	for _, n := range configured {
		names[strings.ToLower(n)] = true
	}
	for _, r := range roles {
		if !names[strings.ToLower(r.Name)] {
			continue
		}
		allowed = append(allowed, r)
		if desired != "" && strings.EqualFold(r.Name, desired) {
			match = r
		}
	}
	return allowed, match, nil
}
