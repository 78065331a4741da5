package nlu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.api.ai/v1"
	apiVersion     = "20150910"

	// queriesPerSecond bounds outbound NLU traffic; the service applies
	// its own stricter account limits.
	queriesPerSecond = 5
	queryBurst       = 10
)

// Client queries the NLU service over HTTP. The service is opaque: any
// decode or transport failure surfaces as a plain error and the caller
// converts it into a single user-facing unavailability reply.
type Client struct {
	token   string
	baseURL string
	lang    string
	client  *http.Client
	limiter *rate.Limiter
}

func NewClient(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &Client{
		token:   token,
		baseURL: baseURL,
		lang:    "en",
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(queriesPerSecond, queryBurst),
	}
}

type queryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId"`
	Lang      string `json:"lang"`
}

type queryResponse struct {
	Result struct {
		Action           string            `json:"action"`
		ActionIncomplete bool              `json:"actionIncomplete"`
		Parameters       map[string]string `json:"parameters"`
		Contexts         []struct {
			Name string `json:"name"`
		} `json:"contexts"`
		Fulfillment struct {
			Speech string `json:"speech"`
		} `json:"fulfillment"`
	} `json:"result"`
	Status struct {
		Code         int    `json:"code"`
		ErrorDetails string `json:"errorDetails"`
	} `json:"status"`
}

// Query sends one utterance and returns the decoded intent result.
func (c *Client) Query(ctx context.Context, text, sessionID string) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("nlu: rate limit wait: %w", err)
	}

	body, err := json.Marshal(queryRequest{Query: text, SessionID: sessionID, Lang: c.lang})
	if err != nil {
		return nil, fmt.Errorf("nlu: encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query?v="+apiVersion, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("nlu: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nlu: query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nlu: query returned status %d", resp.StatusCode)
	}

	var decoded queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("nlu: decode response: %w", err)
	}
	if decoded.Status.Code != 0 && decoded.Status.Code != http.StatusOK {
		return nil, fmt.Errorf("nlu: service error %d: %s", decoded.Status.Code, decoded.Status.ErrorDetails)
	}

	res := &Result{
		Parameters:   decoded.Result.Parameters,
		Incomplete:   decoded.Result.ActionIncomplete,
		FallbackText: decoded.Result.Fulfillment.Speech,
	}
	if decoded.Result.Action != "" {
		res.ActionPath = strings.Split(decoded.Result.Action, ".")
	}
	for _, c := range decoded.Result.Contexts {
		res.Contexts = append(res.Contexts, c.Name)
	}
	return res, nil
}
