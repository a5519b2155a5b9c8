// ABOUTME: Durable key-value store abstraction shared by every open client
// ABOUTME: Change notifications reach other handles only, never the writer

package kvstore

import (
	"context"
	"sync"
)

// Keys persisted by the session layer
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Change describes a mutation made through another handle
type Change struct {
	Key     string
	Value   string
	Present bool
}

// Listener receives changes for a single key
type Listener func(Change)

// Store is a durable per-origin key-value store.
// Values are either absent or a string; last write wins.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// OnChange subscribes to changes made by other handles of the same store
	OnChange(key string, fn Listener) (unsubscribe func())
	Close() error
}

type subscription struct {
	id     uint64
	origin string
	key    string
	fn     Listener
}

// hub fans changes out to listeners registered by other origins
type hub struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]subscription
}

func newHub() *hub {
	return &hub{subs: make(map[uint64]subscription)}
}

func (h *hub) subscribe(origin, key string, fn Listener) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = subscription{id: id, origin: origin, key: key, fn: fn}
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// publish delivers the change to every listener not owned by origin.
// Listeners run outside the lock so they may call back into the store.
func (h *hub) publish(origin string, c Change) {
	h.mu.Lock()
	var targets []Listener
	for _, s := range h.subs {
		if s.origin != origin && s.key == c.Key {
			targets = append(targets, s.fn)
		}
	}
	h.mu.Unlock()

	for _, fn := range targets {
		fn(c)
	}
}
