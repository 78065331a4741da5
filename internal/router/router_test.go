package router

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/glyphbot/glyph/internal/bus"
	"github.com/glyphbot/glyph/internal/conversation"
	"github.com/glyphbot/glyph/internal/guildconfig"
	"github.com/glyphbot/glyph/internal/messaging"
	"github.com/glyphbot/glyph/internal/nlu"
	"github.com/glyphbot/glyph/internal/skills"
)

type stubAPI struct {
	sent      []string
	reactions []string
	reactErr  error
	nextID    int
}

func (s *stubAPI) BotUserID() string { return "bot" }

func (s *stubAPI) SendMessage(channelID, content string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	s.sent = append(s.sent, content)
	s.nextID++
	return &discordgo.Message{ID: "m" + strconv.Itoa(s.nextID), ChannelID: channelID}, nil
}

func (s *stubAPI) EditMessage(channelID, messageID, content string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return &discordgo.Message{ID: messageID, ChannelID: channelID}, nil
}

func (s *stubAPI) DeleteMessage(channelID, messageID string) error { return nil }

func (s *stubAPI) AddReaction(channelID, messageID, emoji string) error {
	if s.reactErr != nil {
		return s.reactErr
	}
	s.reactions = append(s.reactions, emoji)
	return nil
}

func (s *stubAPI) ClearReactions(channelID, messageID string) error { return nil }
func (s *stubAPI) Typing(channelID string) error                    { return nil }
func (s *stubAPI) ChannelMessages(channelID string, limit int) ([]*discordgo.Message, error) {
	return nil, nil
}
func (s *stubAPI) BulkDelete(channelID string, messageIDs []string) error { return nil }
func (s *stubAPI) Permissions(channelID, userID string) (int64, error) {
	return discordgo.PermissionAll, nil
}
func (s *stubAPI) Channel(channelID string) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: channelID}, nil
}
func (s *stubAPI) GuildChannels(guildID string) ([]*discordgo.Channel, error) { return nil, nil }
func (s *stubAPI) GuildRoles(guildID string) ([]*discordgo.Role, error)       { return nil, nil }
func (s *stubAPI) GuildMember(guildID, userID string) (*discordgo.Member, error) {
	return &discordgo.Member{}, nil
}
func (s *stubAPI) AddRole(guildID, userID, roleID string) error    { return nil }
func (s *stubAPI) RemoveRole(guildID, userID, roleID string) error { return nil }
func (s *stubAPI) KickMember(guildID, userID, reason string) error { return nil }

func newTestRouter(api *stubAPI, reg *skills.Registry) (*Router, *conversation.State) {
	conv := conversation.NewState()
	messenger := messaging.NewOrchestrator(api)
	return New(reg, conv, messenger, 5*time.Second), conv
}

func inbound() bus.InboundEvent {
	return bus.InboundEvent{MessageID: "trigger", AuthorID: "u1", ChannelID: "c1", GuildID: "g1"}
}

func TestRoute_IgnoreContextRefuses(t *testing.T) {
	api := &stubAPI{}
	reg := skills.NewRegistry()
	dispatched := false
	reg.Register("wiki", func(ctx context.Context, req *skills.Request) error {
		dispatched = true
		return nil
	})
	r, _ := newTestRouter(api, reg)

	res := &nlu.Result{ActionPath: []string{"skill", "wiki"}, Contexts: []string{"ignore"}}
	r.Route(context.Background(), inbound(), res, guildconfig.Default())

	if dispatched {
		t.Error("ignored user must not reach the skill")
	}
	if len(api.sent) != 1 || !strings.Contains(api.sent[0], "<@u1>") {
		t.Errorf("sent %v, want one refusal mentioning the author", api.sent)
	}
}

func TestRoute_InsultBypassesIgnore(t *testing.T) {
	api := &stubAPI{}
	reg := skills.NewRegistry()
	dispatched := false
	reg.Register("insult", func(ctx context.Context, req *skills.Request) error {
		dispatched = true
		return nil
	})
	r, _ := newTestRouter(api, reg)

	res := &nlu.Result{ActionPath: []string{"skill", "insult"}, Contexts: []string{"ignore"}}
	r.Route(context.Background(), inbound(), res, guildconfig.Default())

	if !dispatched {
		t.Error("insult action should pass through the ignore context")
	}
}

func TestRoute_FallbackReacts(t *testing.T) {
	api := &stubAPI{}
	r, _ := newTestRouter(api, skills.NewRegistry())

	res := &nlu.Result{ActionPath: []string{"fallback"}, FallbackText: "Hello there!"}
	r.Route(context.Background(), inbound(), res, guildconfig.Default())

	if len(api.reactions) != 1 || api.reactions[0] != messaging.AckEmoji {
		t.Errorf("reactions = %v, want one acknowledgement", api.reactions)
	}
	if len(api.sent) != 0 {
		t.Errorf("successful reaction must not also send text, sent %v", api.sent)
	}
}

func TestRoute_FallbackTextWhenReactionDenied(t *testing.T) {
	api := &stubAPI{reactErr: errors.New("missing permission")}
	r, _ := newTestRouter(api, skills.NewRegistry())

	res := &nlu.Result{ActionPath: []string{"fallback"}, FallbackText: "Hello there!"}
	r.Route(context.Background(), inbound(), res, guildconfig.Default())

	if len(api.sent) != 1 || api.sent[0] != "Hello there!" {
		t.Errorf("sent %v, want the fallback text verbatim", api.sent)
	}
}

func TestRoute_SkillDispatchAndCooldown(t *testing.T) {
	api := &stubAPI{}
	reg := skills.NewRegistry()
	calls := 0
	reg.Register("wiki", func(ctx context.Context, req *skills.Request) error {
		calls++
		return nil
	})
	r, _ := newTestRouter(api, reg)

	res := &nlu.Result{ActionPath: []string{"skill", "wiki"}}
	ctx := context.Background()
	cfg := guildconfig.Default()

	r.Route(ctx, inbound(), res, cfg)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}

	// Second request inside the window: one warning, no dispatch.
	r.Route(ctx, inbound(), res, cfg)
	if calls != 1 {
		t.Error("cooldown must block the second dispatch")
	}
	if len(api.sent) != 1 || !strings.Contains(api.sent[0], "slow down") {
		t.Errorf("sent %v, want one rate-limit warning", api.sent)
	}

	// Third request: dropped silently.
	r.Route(ctx, inbound(), res, cfg)
	if calls != 1 || len(api.sent) != 1 {
		t.Errorf("third request should be silent: calls=%d sent=%v", calls, api.sent)
	}
}

func TestRoute_UnknownSkillNamesKey(t *testing.T) {
	api := &stubAPI{}
	r, _ := newTestRouter(api, skills.NewRegistry())

	res := &nlu.Result{ActionPath: []string{"skill", "jukebox"}}
	r.Route(context.Background(), inbound(), res, guildconfig.Default())

	if len(api.sent) != 1 || !strings.Contains(api.sent[0], "`jukebox`") {
		t.Errorf("sent %v, want a reply naming the missing key", api.sent)
	}
}

func TestRoute_HandlerFailureGenericReply(t *testing.T) {
	api := &stubAPI{}
	reg := skills.NewRegistry()
	reg.Register("wiki", func(ctx context.Context, req *skills.Request) error {
		return errors.New("upstream exploded")
	})
	r, conv := newTestRouter(api, reg)

	res := &nlu.Result{ActionPath: []string{"skill", "wiki"}}
	r.Route(context.Background(), inbound(), res, guildconfig.Default())

	if len(api.sent) != 1 || api.sent[0] != genericFailureReply {
		t.Errorf("sent %v, want the generic failure reply", api.sent)
	}
	if strings.Contains(api.sent[0], "exploded") {
		t.Error("internal error text must not reach the user")
	}
	// A failed dispatch does not open a cooldown.
	if v, _ := conv.CheckCooldown("u1"); v != conversation.Allow {
		t.Error("failed dispatch must not start a cooldown")
	}
}

func TestRoute_IncompleteMarksDialog(t *testing.T) {
	api := &stubAPI{}
	r, conv := newTestRouter(api, skills.NewRegistry())

	res := &nlu.Result{
		ActionPath:   []string{"skill", "role", "set"},
		Incomplete:   true,
		FallbackText: "Which role would you like?",
	}
	r.Route(context.Background(), inbound(), res, guildconfig.Default())

	if !conv.IsIncomplete("u1") {
		t.Error("incomplete intent should mark the dialog open")
	}
	if len(api.sent) != 1 || api.sent[0] != "Which role would you like?" {
		t.Errorf("sent %v, want the prompt verbatim", api.sent)
	}
}

func TestRoute_CompletedSkillClosesDialog(t *testing.T) {
	api := &stubAPI{}
	reg := skills.NewRegistry()
	reg.Register("role.set", func(ctx context.Context, req *skills.Request) error { return nil })
	r, conv := newTestRouter(api, reg)

	conv.MarkIncomplete("u1")
	res := &nlu.Result{ActionPath: []string{"skill", "role", "set"}}
	r.Route(context.Background(), inbound(), res, guildconfig.Default())

	if conv.IsIncomplete("u1") {
		t.Error("completed skill intent should close the dialog")
	}
}
