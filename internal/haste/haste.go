// Package haste posts documents to a hastebin-compatible paste service.
package haste

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://hastebin.com"

// Client posts text and returns the share link.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Post uploads the text and returns its URL.
func (c *Client) Post(ctx context.Context, text string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/documents", strings.NewReader(text))
	if err != nil {
		return "", fmt.Errorf("haste: build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("haste: post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("haste: post returned status %d", resp.StatusCode)
	}
	var decoded struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("haste: decode response: %w", err)
	}
	return c.baseURL + "/" + decoded.Key, nil
}
