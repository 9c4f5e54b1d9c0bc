package domain

import (
	"context"
	"sync"
)

type noticesKey struct{}

// Notices collects user-facing notifications raised while serving one request.
// The handler puts a collector into the context before calling the service;
// services append to it when they degrade instead of failing; the handler
// reads it back for response headers.
type Notices struct {
	mu    sync.Mutex
	items []string
}

// NewContextWithNotices returns a context with an empty notice collector.
func NewContextWithNotices(ctx context.Context) (context.Context, *Notices) {
	n := &Notices{}
	return context.WithValue(ctx, noticesKey{}, n), n
}

// NoticesFromContext extracts the notice collector from context. Returns nil if not set.
func NoticesFromContext(ctx context.Context) *Notices {
	n, _ := ctx.Value(noticesKey{}).(*Notices)
	return n
}

// Add records a notice. Safe on a nil receiver and from concurrent loads.
func (n *Notices) Add(msg string) {
	if n == nil || msg == "" {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, m := range n.items {
		if m == msg {
			return
		}
	}
	n.items = append(n.items, msg)
}

// List returns a copy of the collected notices.
func (n *Notices) List() []string {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.items))
	copy(out, n.items)
	return out
}
