package lookup

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const redditListing = `{
	"data": {"children": [
		{"data": {"title": "low score", "permalink": "/r/pics/low", "url": "https://i.example/low.png", "subreddit": "pics", "score": 2, "over_18": false}},
		{"data": {"title": "no image", "permalink": "/r/pics/text", "url": "https://example.com/article", "subreddit": "pics", "score": 80, "over_18": false}},
		{"data": {"title": "nsfw", "permalink": "/r/pics/nsfw", "url": "https://i.example/nsfw.jpg", "subreddit": "pics", "score": 90, "over_18": true}},
		{"data": {"title": "good", "permalink": "/r/pics/good", "url": "https://i.example/good.png", "subreddit": "pics", "score": 50, "over_18": false}}
	]}
}`

func newTestRedditClient(t *testing.T, handler http.HandlerFunc) *RedditClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewRedditClient("test-agent")
	c.baseURL = srv.URL
	return c
}

func TestRandomImage_Filters(t *testing.T) {
	c := newTestRedditClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/r/pics/") {
			t.Errorf("path = %q, want subreddit listing", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("user agent = %q", ua)
		}
		fmt.Fprint(w, redditListing)
	})

	img, err := c.RandomImage(context.Background(), "pics", false)
	if err != nil {
		t.Fatal(err)
	}
	// Only the well-scored SFW image survives the filters.
	if img.Title != "good" || img.ImageURL != "https://i.example/good.png" {
		t.Errorf("picked %+v", img)
	}
	if img.URL != redditBaseURL+"/r/pics/good" {
		t.Errorf("permalink = %q", img.URL)
	}
}

func TestRandomImage_NSFWChannelWidensPool(t *testing.T) {
	c := newTestRedditClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, redditListing)
	})

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		img, err := c.RandomImage(context.Background(), "pics", true)
		if err != nil {
			t.Fatal(err)
		}
		seen[img.Title] = true
	}
	if !seen["good"] || !seen["nsfw"] {
		t.Errorf("seen = %v, want both eligible submissions reachable", seen)
	}
}

func TestRandomImage_Statuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
	}{
		{"unknown subreddit", http.StatusNotFound, "unknown subreddit"},
		{"private subreddit", http.StatusForbidden, "private"},
		{"server error", http.StatusInternalServerError, "status 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestRedditClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := c.RandomImage(context.Background(), "pics", false)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestRandomImage_EmptyPool(t *testing.T) {
	c := newTestRedditClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data": {"children": []}}`)
	})
	if _, err := c.RandomImage(context.Background(), "pics", false); err == nil {
		t.Fatal("want error for an empty listing")
	}
}

// One client is shared across gateway event goroutines; concurrent
// picks must be safe. Run with -race.
func TestRandomImage_Concurrent(t *testing.T) {
	c := newTestRedditClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, redditListing)
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if _, err := c.RandomImage(context.Background(), "pics", true); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
