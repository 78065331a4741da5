package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// minImageScore filters low-quality submissions.
	minImageScore   = 10
	defaultRedditUA = "linux:glyph:1.0"
	redditBaseURL   = "https://www.reddit.com"
)

// RedditImage is an embeddable image submission.
type RedditImage struct {
	Title     string
	URL       string
	ImageURL  string
	Subreddit string
	NSFW      bool
}

// RedditClient fetches random embeddable images from a subreddit or
// multireddit via the public JSON API. A single client is shared across
// concurrent event handlers, so it keeps no mutable state; random picks
// go through the locked top-level math/rand source.
type RedditClient struct {
	userAgent string
	baseURL   string
	client    *http.Client
}

func NewRedditClient(userAgent string) *RedditClient {
	if userAgent == "" {
		userAgent = defaultRedditUA
	}
	return &RedditClient{
		userAgent: userAgent,
		baseURL:   redditBaseURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif"}

func embeddableImage(u string) bool {
	for _, ext := range imageExtensions {
		if strings.Contains(u, ext) {
			return true
		}
	}
	return false
}

// RandomImage returns a random hot submission with an embeddable image
// above the score threshold. allowNSFW mirrors the destination channel.
func (r *RedditClient) RandomImage(ctx context.Context, multireddit string, allowNSFW bool) (*RedditImage, error) {
	endpoint := fmt.Sprintf("%s/r/%s/hot.json?limit=50", r.baseURL, url.PathEscape(multireddit))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("lookup: build request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup: reddit fetch: %w", err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("lookup: unknown subreddit %q", multireddit)
	case http.StatusForbidden:
		return nil, fmt.Errorf("lookup: subreddit %q is private", multireddit)
	default:
		return nil, fmt.Errorf("lookup: reddit returned status %d", resp.StatusCode)
	}

	var listing struct {
		Data struct {
			Children []struct {
				Data struct {
					Title     string  `json:"title"`
					Permalink string  `json:"permalink"`
					URL       string  `json:"url"`
					Subreddit string  `json:"subreddit"`
					Score     int     `json:"score"`
					Over18    bool    `json:"over_18"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("lookup: decode reddit listing: %w", err)
	}

	candidates := make([]*RedditImage, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		d := child.Data
		if d.Score < minImageScore || !embeddableImage(d.URL) {
			continue
		}
		if d.Over18 && !allowNSFW {
			continue
		}
		candidates = append(candidates, &RedditImage{
			Title:     d.Title,
			URL:       redditBaseURL + d.Permalink,
			ImageURL:  d.URL,
			Subreddit: d.Subreddit,
			NSFW:      d.Over18,
		})
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("lookup: no embeddable image in r/%s", multireddit)
	}
	return candidates[rand.Intn(len(candidates))], nil
}
