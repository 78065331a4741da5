package skills

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/glyphbot/glyph/internal/bus"
	"github.com/glyphbot/glyph/internal/nlu"
)

func testRequest() *Request {
	return &Request{
		Event:  bus.InboundEvent{MessageID: "m1", AuthorID: "u1", ChannelID: "c1"},
		Intent: &nlu.Result{},
	}
}

func TestRegistry_LastWriterWins(t *testing.T) {
	reg := NewRegistry()
	var called string

	reg.Register("wiki", func(ctx context.Context, req *Request) error {
		called = "first"
		return nil
	})
	reg.Register("wiki", func(ctx context.Context, req *Request) error {
		called = "second"
		return nil
	})

	handled, err := reg.Dispatch(context.Background(), "wiki", testRequest())
	if !handled || err != nil {
		t.Fatalf("Dispatch = %v, %v; want true, nil", handled, err)
	}
	if called != "second" {
		t.Errorf("dispatched %q, want the later registration", called)
	}
}

func TestRegistry_UnknownKey(t *testing.T) {
	reg := NewRegistry()

	handled, err := reg.Dispatch(context.Background(), "no.such.skill", testRequest())
	if handled {
		t.Error("unknown key must report handled=false")
	}
	if err != nil {
		t.Errorf("unknown key must not error, got %v", err)
	}
}

func TestRegistry_PanicContained(t *testing.T) {
	reg := NewRegistry()
	reg.Register("boom", func(ctx context.Context, req *Request) error {
		panic("handler exploded")
	})

	handled, err := reg.Dispatch(context.Background(), "boom", testRequest())
	if !handled {
		t.Error("panicking handler still counts as handled")
	}
	if err == nil {
		t.Fatal("panic must surface as an error")
	}
}

func TestRegistry_HandlerErrorWrapped(t *testing.T) {
	reg := NewRegistry()
	sentinel := errors.New("upstream down")
	reg.Register("wiki", func(ctx context.Context, req *Request) error {
		return sentinel
	})

	handled, err := reg.Dispatch(context.Background(), "wiki", testRequest())
	if !handled || err == nil {
		t.Fatalf("Dispatch = %v, %v; want true and an error", handled, err)
	}
	// The raw handler error stays at the log boundary.
	if errors.Is(err, sentinel) {
		t.Error("handler error must not leak to the caller")
	}
}

func TestRegistry_KeysSorted(t *testing.T) {
	reg := NewRegistry()
	noop := func(ctx context.Context, req *Request) error { return nil }
	reg.Register("wiki", noop)
	reg.Register("help", noop)
	reg.Register("role.set", noop)

	want := []string{"help", "role.set", "wiki"}
	if got := reg.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}
