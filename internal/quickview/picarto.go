package quickview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/bwmarrin/discordgo"
)

// PicartoChannelPattern matches Picarto channel links; group 5 is the
// channel name.
var PicartoChannelPattern = regexp.MustCompile(`(?i)((http[s]?)://)?(www\.)?(picarto\.tv)/(\w+)/?`)

// PicartoChannel is the live status of one streaming channel.
type PicartoChannel struct {
	Name     string
	Title    string
	Category string
	Viewers  int
	Online   bool
	Adult    bool
}

// PicartoClient reads channel status from the public Picarto API.
type PicartoClient struct {
	baseURL string
	client  *http.Client
}

func NewPicartoClient(baseURL string) *PicartoClient {
	if baseURL == "" {
		baseURL = "https://api.picarto.tv/api/v1"
	}
	return &PicartoClient{baseURL: baseURL, client: &http.Client{Timeout: 10 * time.Second}}
}

// Channel fetches a channel by name.
func (p *PicartoClient) Channel(ctx context.Context, name string) (*PicartoChannel, error) {
	endpoint := fmt.Sprintf("%s/channel/name/%s", p.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("quickview: build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quickview: fetch channel %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quickview: channel %s returned status %d", name, resp.StatusCode)
	}
	var decoded struct {
		Name     string `json:"name"`
		Title    string `json:"title"`
		Category string `json:"category"`
		Viewers  int    `json:"viewers"`
		Online   bool   `json:"online"`
		Adult    bool   `json:"adult"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("quickview: decode channel %s: %w", name, err)
	}
	return &PicartoChannel{
		Name:     decoded.Name,
		Title:    decoded.Title,
		Category: decoded.Category,
		Viewers:  decoded.Viewers,
		Online:   decoded.Online,
		Adult:    decoded.Adult,
	}, nil
}

// Embed renders the channel preview.
func (c *PicartoChannel) Embed() *discordgo.MessageEmbed {
	status, color := "Offline", 0xFF0000
	if c.Online {
		status, color = "Online", 0x10FF00
	}
	rating := "SFW"
	if c.Adult {
		rating = "NSFW"
	}
	return &discordgo.MessageEmbed{
		Title:       c.Name,
		URL:         "https://picarto.tv/" + c.Name,
		Description: fmt.Sprintf("%s\n%s | %s | Viewers: %d", c.Title, status, rating, c.Viewers),
		Color:       color,
	}
}

// ScanPicartoLinks returns the channel names linked in the text.
func ScanPicartoLinks(text string) []string {
	var names []string
	for _, match := range PicartoChannelPattern.FindAllStringSubmatch(text, -1) {
		names = append(names, match[5])
	}
	return names
}
