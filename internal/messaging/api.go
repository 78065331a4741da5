package messaging

import (
	"github.com/bwmarrin/discordgo"
)

// ChatAPI is the slice of the platform REST surface the orchestrator
// uses. Production code wraps a *discordgo.Session; tests substitute a
// recording fake.
type ChatAPI interface {
	BotUserID() string

	SendMessage(channelID, content string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
	EditMessage(channelID, messageID, content string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
	DeleteMessage(channelID, messageID string) error
	AddReaction(channelID, messageID, emoji string) error
	ClearReactions(channelID, messageID string) error
	Typing(channelID string) error

	ChannelMessages(channelID string, limit int) ([]*discordgo.Message, error)
	BulkDelete(channelID string, messageIDs []string) error

	Permissions(channelID, userID string) (int64, error)
	Channel(channelID string) (*discordgo.Channel, error)
	GuildChannels(guildID string) ([]*discordgo.Channel, error)
	GuildRoles(guildID string) ([]*discordgo.Role, error)
	GuildMember(guildID, userID string) (*discordgo.Member, error)
	AddRole(guildID, userID, roleID string) error
	RemoveRole(guildID, userID, roleID string) error
	KickMember(guildID, userID, reason string) error
}

// Session adapts a live *discordgo.Session to ChatAPI.
type Session struct {
	s *discordgo.Session
}

func NewSession(s *discordgo.Session) *Session { return &Session{s: s} }

func (a *Session) BotUserID() string {
	if a.s.State != nil && a.s.State.User != nil {
		return a.s.State.User.ID
	}
	return ""
}

func (a *Session) SendMessage(channelID, content string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return a.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{Content: content, Embed: embed})
}

func (a *Session) EditMessage(channelID, messageID, content string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	edit := discordgo.NewMessageEdit(channelID, messageID)
	edit.SetContent(content)
	if embed != nil {
		edit.SetEmbed(embed)
	}
	return a.s.ChannelMessageEditComplex(edit)
}

func (a *Session) DeleteMessage(channelID, messageID string) error {
	return a.s.ChannelMessageDelete(channelID, messageID)
}

func (a *Session) AddReaction(channelID, messageID, emoji string) error {
	return a.s.MessageReactionAdd(channelID, messageID, emoji)
}

func (a *Session) ClearReactions(channelID, messageID string) error {
	return a.s.MessageReactionsRemoveAll(channelID, messageID)
}

func (a *Session) Typing(channelID string) error {
	return a.s.ChannelTyping(channelID)
}

func (a *Session) ChannelMessages(channelID string, limit int) ([]*discordgo.Message, error) {
	return a.s.ChannelMessages(channelID, limit, "", "", "")
}

func (a *Session) BulkDelete(channelID string, messageIDs []string) error {
	return a.s.ChannelMessagesBulkDelete(channelID, messageIDs)
}

func (a *Session) Permissions(channelID, userID string) (int64, error) {
	return a.s.UserChannelPermissions(userID, channelID)
}

func (a *Session) Channel(channelID string) (*discordgo.Channel, error) {
	return a.s.Channel(channelID)
}

func (a *Session) GuildChannels(guildID string) ([]*discordgo.Channel, error) {
	return a.s.GuildChannels(guildID)
}

func (a *Session) GuildRoles(guildID string) ([]*discordgo.Role, error) {
	return a.s.GuildRoles(guildID)
}

func (a *Session) GuildMember(guildID, userID string) (*discordgo.Member, error) {
	return a.s.GuildMember(guildID, userID)
}

func (a *Session) AddRole(guildID, userID, roleID string) error {
	return a.s.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (a *Session) RemoveRole(guildID, userID, roleID string) error {
	return a.s.GuildMemberRoleRemove(guildID, userID, roleID)
}

func (a *Session) KickMember(guildID, userID, reason string) error {
	return a.s.GuildMemberDeleteWithReason(guildID, userID, reason)
}
