// Package lookup holds the third-party content clients backing skills:
// wiki search and subreddit images. They are thin, fallible boundaries;
// skills translate their errors into user-facing apologies.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WikiPage is one search hit with enough material for an embed.
type WikiPage struct {
	Title     string
	URL       string
	Summary   string
	Thumbnail string
}

// WikiClient searches Wikipedia or a Fandom wiki, selected per guild.
type WikiClient struct {
	client *http.Client
}

func NewWikiClient() *WikiClient {
	return &WikiClient{client: &http.Client{Timeout: 10 * time.Second}}
}

// Search runs a query against the configured source. source is either
// "wikipedia" or a Fandom wiki name.
func (w *WikiClient) Search(ctx context.Context, source, query string) (*WikiPage, error) {
	if strings.EqualFold(source, "wikipedia") || source == "" {
		return w.searchWikipedia(ctx, query)
	}
	return w.searchFandom(ctx, source, query)
}

func (w *WikiClient) searchWikipedia(ctx context.Context, query string) (*WikiPage, error) {
	endpoint := "https://en.wikipedia.org/api/rest_v1/page/summary/" + url.PathEscape(query)
	var decoded struct {
		Title   string `json:"title"`
		Extract string `json:"extract"`
		Content struct {
			Desktop struct {
				Page string `json:"page"`
			} `json:"desktop"`
		} `json:"content_urls"`
		Thumbnail struct {
			Source string `json:"source"`
		} `json:"thumbnail"`
	}
	if err := w.getJSON(ctx, endpoint, &decoded); err != nil {
		return nil, err
	}
	if decoded.Title == "" {
		return nil, fmt.Errorf("lookup: no wikipedia page for %q", query)
	}
	return &WikiPage{
		Title:     decoded.Title,
		URL:       decoded.Content.Desktop.Page,
		Summary:   decoded.Extract,
		Thumbnail: decoded.Thumbnail.Source,
	}, nil
}

func (w *WikiClient) searchFandom(ctx context.Context, wiki, query string) (*WikiPage, error) {
	base := fmt.Sprintf("https://%s.fandom.com", url.PathEscape(strings.ToLower(wiki)))
	endpoint := base + "/api/v1/SearchSuggestions/List?query=" + url.QueryEscape(query)
	var suggestions struct {
		Items []struct {
			Title string `json:"title"`
		} `json:"items"`
	}
	if err := w.getJSON(ctx, endpoint, &suggestions); err != nil {
		return nil, err
	}
	if len(suggestions.Items) == 0 {
		return nil, fmt.Errorf("lookup: no %s wiki page for %q", wiki, query)
	}
	title := suggestions.Items[0].Title

	detail := base + "/api/v1/Articles/Details?abstract=500&titles=" + url.QueryEscape(title)
	var details struct {
		Items    map[string]struct {
			Title     string `json:"title"`
			URL       string `json:"url"`
			Abstract  string `json:"abstract"`
			Thumbnail string `json:"thumbnail"`
		} `json:"items"`
		BasePath string `json:"basepath"`
	}
	if err := w.getJSON(ctx, detail, &details); err != nil {
		return nil, err
	}
	for _, item := range details.Items {
		return &WikiPage{
			Title:     item.Title,
			URL:       details.BasePath + strings.ReplaceAll(item.URL, " ", "_"),
			Summary:   item.Abstract,
			Thumbnail: item.Thumbnail,
		}, nil
	}
	return nil, fmt.Errorf("lookup: no %s wiki details for %q", wiki, title)
}

func (w *WikiClient) getJSON(ctx context.Context, endpoint string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("lookup: build request: %w", err)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("lookup: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lookup: %s returned status %d", endpoint, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("lookup: decode: %w", err)
	}
	return nil
}
