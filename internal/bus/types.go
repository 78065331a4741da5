// Package bus defines the platform-neutral event types exchanged between
// the gateway handlers, the intent router and the skill handlers.
package bus

// InboundEvent is a single user message as received from the platform.
// Immutable once constructed.
type InboundEvent struct {
	MessageID      string
	AuthorID       string
	AuthorName     string
	AuthorIsBot    bool
	ChannelID      string
	GuildID        string // empty for direct messages
	Content        string
	MentionIDs     []string
	AttachmentURLs []string
}

// IsDM reports whether the event originated in a direct message channel.
func (e InboundEvent) IsDM() bool { return e.GuildID == "" }

// Mentions reports whether userID appears in the event's mention list.
func (e InboundEvent) Mentions(userID string) bool {
	for _, id := range e.MentionIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ReactionEvent is a reaction added to or removed from a message.
type ReactionEvent struct {
	MessageID string
	ChannelID string
	GuildID   string
	UserID    string
	Emoji     string
}

// DeleteEvent is a platform notification that a message was deleted.
type DeleteEvent struct {
	MessageID string
	ChannelID string
	GuildID   string
}

// MemberEvent is a guild member joining or leaving.
type MemberEvent struct {
	GuildID  string
	UserID   string
	Username string
	Mention  string
}
