package messaging

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func restError(status int) error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: status}}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"forbidden", restError(http.StatusForbidden), KindPermission},
		{"not found", restError(http.StatusNotFound), KindNotFound},
		{"server error", restError(http.StatusInternalServerError), KindTransport},
		{"plain error", errors.New("dial tcp: timeout"), KindTransport},
		{"wrapped forbidden", fmt.Errorf("send: %w", restError(http.StatusForbidden)), KindPermission},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRemovableRegistry_BeginRemovalWinsOnce(t *testing.T) {
	r := NewRemovableRegistry()
	r.Track("m1")

	if !r.BeginRemoval("m1") {
		t.Fatal("first BeginRemoval should win")
	}
	if r.BeginRemoval("m1") {
		t.Fatal("second BeginRemoval must lose")
	}
	if r.BeginRemoval("unknown") {
		t.Fatal("untracked message must not begin removal")
	}

	r.Evict("m1")
	r.Evict("m1") // idempotent
	if r.Tracked("m1") {
		t.Error("evicted message should not be tracked")
	}
}

func TestLedger_TakeIsAtomic(t *testing.T) {
	l := NewLedger()
	ref := MessageRef{ChannelID: "c1", MessageID: "m9"}
	l.Record("trigger", ref)

	got, ok := l.Take("trigger")
	if !ok || got != ref {
		t.Fatalf("Take = %v, %v; want %v, true", got, ok, ref)
	}
	if _, ok := l.Take("trigger"); ok {
		t.Error("second Take must miss")
	}
	if _, ok := l.Take("never-recorded"); ok {
		t.Error("unknown trigger must miss")
	}
}
