package skills

import (
	"testing"
	"time"
)

func TestParseDurationText(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"2 hours", 2 * time.Hour, true},
		{"14d", 14 * 24 * time.Hour, true},
		{"90 seconds", 90 * time.Second, true},
		{"1 week", 7 * 24 * time.Hour, true},
		{"5 min", 5 * time.Minute, true},
		{"1 hour 30 minutes", 90 * time.Minute, true},
		{"purge the last 3 days please", 3 * 24 * time.Hour, true},
		{"2 HOURS", 2 * time.Hour, true},
		{"no duration here", 0, false},
		{"", 0, false},
		{"0 hours", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseDurationText(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parseDurationText(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
