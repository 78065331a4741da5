package skills

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/glyphbot/glyph/internal/messaging"
)

const apologyExpiry = 5 * time.Second

// Wiki searches the guild's configured wiki source and replies with a
// page embed tied to the trigger message, so deleting the question also
// removes the answer.
func (s *Set) Wiki(ctx context.Context, req *Request) error {
	ev := req.Event
	query := req.Intent.Param("query")
	if query == "" {
		query = req.Intent.Param("wikipedia_search_query")
	}
	if query == "" {
		_, _ = s.messenger.Send(ctx, ev.ChannelID, "Sorry, I couldn't find a search query.",
			messaging.SendOptions{ExpireAfter: apologyExpiry})
		return nil
	}

	source := req.Config.Wiki
	page, err := s.wiki.Search(ctx, source, query)
	if err != nil {
		_, _ = s.messenger.Send(ctx, ev.ChannelID,
			fmt.Sprintf("Sorry, I have no information for your search query `%s`.", query),
			messaging.SendOptions{ExpireAfter: apologyExpiry})
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title:       page.Title,
		URL:         page.URL,
		Description: page.Summary,
		Footer:      &discordgo.MessageEmbedFooter{Text: source},
	}
	if page.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: page.Thumbnail}
	}
	_, _ = s.messenger.Send(ctx, ev.ChannelID, "", messaging.SendOptions{
		Embed:      embed,
		Removable:  true,
		DeleteWith: ev.MessageID,
	})
	return nil
}

// Reddit replies with a random image from the requested multireddit,
// refusing NSFW content outside NSFW channels.
func (s *Set) Reddit(ctx context.Context, req *Request) error {
	ev := req.Event
	multireddit := req.Intent.Param("multireddit")
	if multireddit == "" {
		_, _ = s.messenger.Send(ctx, ev.ChannelID,
			"I think you wanted an image from Reddit, but I'm not sure of what. Sorry.",
			messaging.SendOptions{})
		return nil
	}

	allowNSFW := false
	if ch, err := s.messenger.API().Channel(ev.ChannelID); err == nil {
		allowNSFW = ch.NSFW
	}

	image, err := s.reddit.RandomImage(ctx, multireddit, allowNSFW)
	if err != nil {
		_, _ = s.messenger.Send(ctx, ev.ChannelID,
			fmt.Sprintf("Sorry, I couldn't get an image from `%s` right now.", multireddit),
			messaging.SendOptions{})
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title:  image.Title,
		URL:    image.URL,
		Image:  &discordgo.MessageEmbedImage{URL: image.ImageURL},
		Footer: &discordgo.MessageEmbedFooter{Text: "r/" + image.Subreddit},
	}
	_, _ = s.messenger.Send(ctx, ev.ChannelID, "", messaging.SendOptions{
		Embed:      embed,
		Removable:  true,
		DeleteWith: ev.MessageID,
	})
	return nil
}
