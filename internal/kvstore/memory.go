// ABOUTME: In-memory store with per-tab handles for tests and embedding
// ABOUTME: Each Tab behaves like one browser tab sharing the same origin storage

package kvstore

import (
	"context"
	"strconv"
	"sync"
)

// Memory is the shared backing data for a set of tabs
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
	hub  *hub
	tabs int
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]string),
		hub:  newHub(),
	}
}

// Tab returns a new handle with its own origin
func (m *Memory) Tab() *MemoryTab {
	m.mu.Lock()
	m.tabs++
	origin := "tab-" + strconv.Itoa(m.tabs)
	m.mu.Unlock()
	return &MemoryTab{mem: m, origin: origin}
}

// MemoryTab is a Store handle over a Memory
type MemoryTab struct {
	mem    *Memory
	origin string
}

func (t *MemoryTab) Get(_ context.Context, key string) (string, bool, error) {
	t.mem.mu.RLock()
	defer t.mem.mu.RUnlock()
	v, ok := t.mem.data[key]
	return v, ok, nil
}

func (t *MemoryTab) Set(_ context.Context, key, value string) error {
	t.mem.mu.Lock()
	t.mem.data[key] = value
	t.mem.mu.Unlock()

	t.mem.hub.publish(t.origin, Change{Key: key, Value: value, Present: true})
	return nil
}

func (t *MemoryTab) Delete(_ context.Context, key string) error {
	t.mem.mu.Lock()
	_, existed := t.mem.data[key]
	delete(t.mem.data, key)
	t.mem.mu.Unlock()

	if existed {
		t.mem.hub.publish(t.origin, Change{Key: key})
	}
	return nil
}

func (t *MemoryTab) OnChange(key string, fn Listener) func() {
	return t.mem.hub.subscribe(t.origin, key, fn)
}

func (t *MemoryTab) Close() error { return nil }
