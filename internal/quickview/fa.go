// Package quickview renders preview embeds for recognized third-party
// links (FurAffinity submissions, Picarto channels) found in messages.
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

// FASubmissionPattern matches FurAffinity submission links; group 5 is
// the link type, group 6 the submission id.
var FASubmissionPattern = regexp.MustCompile(`(?i)((http[s]?)://)?(www\.)?(furaffinity\.net)/(\w*)/(\d+)/?`)

const (
	faColorGeneral = 0x10FF00
	faColorMature  = 0x0026FF
	faColorAdult   = 0xFF0000
)

// FASubmission is the metadata behind one submission link.
type FASubmission struct {
	ID        string
	Title     string
	Author    string
	Posted    string
	Category  string
	Theme     string
	Species   string
	Gender    string
	Favorites int
	Comments  int
	Views     int
	Rating    string
	Link      string
	Download  string
}

// FAClient fetches submission metadata from a faexport-compatible API.
type FAClient struct {
	baseURL string
	client  *http.Client
}

func NewFAClient(baseURL string) *FAClient {
	if baseURL == "" {
		baseURL = "https://faexport.spangle.org.uk"
	}
	return &FAClient{baseURL: baseURL, client: &http.Client{Timeout: 10 * time.Second}}
}

// Submission fetches one submission by id.
func (f *FAClient) Submission(ctx context.Context, id string) (*FASubmission, error) {
	endpoint := fmt.Sprintf("%s/submission/%s.json", f.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("quickview: build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quickview: fetch submission %s: %w", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quickview: submission %s returned status %d", id, resp.StatusCode)
	}
	var decoded struct {
		Title     string `json:"title"`
		Name      string `json:"name"`
		Posted    string `json:"posted"`
		Category  string `json:"category"`
		Theme     string `json:"theme"`
		Species   string `json:"species"`
		Gender    string `json:"gender"`
		Favorites int    `json:"favorites,string"`
		Comments  int    `json:"comments,string"`
		Views     int    `json:"views,string"`
		Rating    string `json:"rating"`
		Link      string `json:"link"`
		Download  string `json:"download"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("quickview: decode submission %s: %w", id, err)
	}
	return &FASubmission{
		ID:        id,
		Title:     decoded.Title,
		Author:    decoded.Name,
		Posted:    decoded.Posted,
		Category:  decoded.Category,
		Theme:     decoded.Theme,
		Species:   decoded.Species,
		Gender:    decoded.Gender,
		Favorites: decoded.Favorites,
		Comments:  decoded.Comments,
		Views:     decoded.Views,
		Rating:    decoded.Rating,
		Link:      decoded.Link,
		Download:  decoded.Download,
	}, nil
}

// Color maps the submission rating to its embed color.
func (s *FASubmission) Color() int {
	switch s.Rating {
	case "General":
		return faColorGeneral
	case "Mature":
		return faColorMature
	default:
		return faColorAdult
	}
}

// Embed renders the submission preview.
func (s *FASubmission) Embed(thumbnail bool) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: s.Title,
		URL:   s.Link,
		Description: fmt.Sprintf("Posted by %s at %s\n%s > %s > %s > %s > %s\nFavorites: %d | Comments: %d | Views: %d",
			s.Author, s.Posted,
			s.Rating, s.Category, s.Theme, s.Species, s.Gender,
			s.Favorites, s.Comments, s.Views),
		Color:  s.Color(),
		Footer: &discordgo.MessageEmbedFooter{Text: "FurAffinity"},
	}
	if thumbnail && s.Download != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: s.Download}
	}
	return embed
}

// ScanFALinks returns the submission ids of view links in the text.
func ScanFALinks(text string) []string {
	var ids []string
	for _, match := range FASubmissionPattern.FindAllStringSubmatch(text, -1) {
		if match[5] == "view" {
			ids = append(ids, match[6])
		}
	}
	return ids
}
