// Package botlist periodically reports the bot's guild count to a
// bot-listing site.
package botlist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/adhocore/gronx"
)

// GuildCounter yields the current number of guilds the bot is in.
type GuildCounter func() int

// Reporter posts {"server_count": N} on a cron schedule. A zero URL or
// token disables it.
type Reporter struct {
	URL      string
	Token    string
	Schedule string // cron expression, e.g. "0 * * * *"
	Count    GuildCounter

	client *http.Client
	cron   *gronx.Gronx
}

func New(url, token, schedule string, count GuildCounter) *Reporter {
	if schedule == "" {
		schedule = "0 * * * *"
	}
	return &Reporter{
		URL:      url,
		Token:    token,
		Schedule: schedule,
		Count:    count,
		client:   &http.Client{Timeout: 15 * time.Second},
		cron:     gronx.New(),
	}
}

// Run blocks until ctx is done, checking the schedule once a minute.
func (r *Reporter) Run(ctx context.Context) error {
	if r.URL == "" || r.Token == "" {
		slog.Info("botlist: reporting disabled")
		<-ctx.Done()
		return ctx.Err()
	}
	if !r.cron.IsValid(r.Schedule) {
		return fmt.Errorf("botlist: invalid schedule %q", r.Schedule)
	}

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			due, err := r.cron.IsDue(r.Schedule, now)
			if err != nil || !due {
				continue
			}
			if err := r.report(ctx); err != nil {
				slog.Warn("botlist: report failed", "error", err)
			}
		}
	}
}

func (r *Reporter) report(ctx context.Context) error {
	payload, err := json.Marshal(map[string]int{"server_count": r.Count()})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", r.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("botlist: unexpected status %d", resp.StatusCode)
	}
	slog.Info("botlist: reported guild count", "count", r.Count())
	return nil
}
