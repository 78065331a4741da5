// Package skills holds the skill registry, the access guards and the
// built-in skill handlers. The registry is populated once at startup
// from a static table and treated as read-only afterwards.
package skills

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/glyphbot/glyph/internal/bus"
	"github.com/glyphbot/glyph/internal/guildconfig"
	"github.com/glyphbot/glyph/internal/nlu"
)

// Request carries everything a skill needs for one invocation.
type Request struct {
	Event  bus.InboundEvent
	Intent *nlu.Result
	Config *guildconfig.Config
}

// Handler executes one skill invocation. Handlers reply through the
// messaging orchestrator; a returned error is a handler fault, logged
// at the dispatch boundary and answered with a generic failure reply.
type Handler func(ctx context.Context, req *Request) error

// Registry maps canonical action keys (e.g. "role.set") to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register inserts a handler for a key. Re-registration overwrites the
// previous entry: last writer wins, logged as a warning.
func (r *Registry) Register(key string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[key]; exists {
		slog.Warn("skills: overwriting registered handler", "key", key)
	}
	r.handlers[key] = h
	slog.Debug("skills: registered", "key", key)
}

// Keys returns the registered keys, sorted, for the startup log.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dispatch invokes the handler for key. Unknown keys return
// handled=false and never an error. Handler panics and errors are
// contained here: logged with the key and event context, surfaced to
// the caller as a generic failure that must not reach the event loop.
func (r *Registry) Dispatch(ctx context.Context, key string, req *Request) (handled bool, err error) {
	r.mu.RLock()
	h, ok := r.handlers[key]
	r.mu.RUnlock()
	if !ok {
		return false, nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("skills: handler panic",
				"key", key,
				"author_id", req.Event.AuthorID,
				"channel_id", req.Event.ChannelID,
				"panic", rec)
			err = fmt.Errorf("skills: %s: handler fault", key)
		}
	}()

	if herr := h(ctx, req); herr != nil {
		slog.Error("skills: handler failed",
			"key", key,
			"author_id", req.Event.AuthorID,
			"channel_id", req.Event.ChannelID,
			"error", herr)
		return true, fmt.Errorf("skills: %s: handler fault", key)
	}
	return true, nil
}
