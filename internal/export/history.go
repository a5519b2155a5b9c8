// ABOUTME: Remembers the most recent exports in the config directory
// ABOUTME: Entries whose file has since been deleted are dropped on load

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// MaxHistory is the number of exports kept
const MaxHistory = 5

// Entry is one completed export
type Entry struct {
	Path   string    `json:"path"`
	Format Format    `json:"format"`
	Rows   int       `json:"rows"`
	At     time.Time `json:"at"`
}

// History manages the recent exports list
type History struct {
	configDir string
	entries   []Entry
}

type historyData struct {
	Exports []Entry `json:"exports"`
}

// NewHistory creates a History stored under configDir
func NewHistory(configDir string) *History {
	return &History{configDir: configDir}
}

func (h *History) file() string {
	return filepath.Join(h.configDir, "exports.json")
}

// Load reads the list from disk, starting fresh when it is missing or unreadable
func (h *History) Load() ([]Entry, error) {
	data, err := os.ReadFile(h.file())
	if os.IsNotExist(err) {
		h.entries = []Entry{}
		return h.entries, nil
	}
	if err != nil {
		return nil, err
	}

	var stored historyData
	if err := json.Unmarshal(data, &stored); err != nil {
		h.entries = []Entry{}
		return h.entries, nil
	}

	h.entries = make([]Entry, 0, len(stored.Exports))
	for _, e := range stored.Exports {
		if _, err := os.Stat(e.Path); err == nil {
			h.entries = append(h.entries, e)
		}
	}
	return h.entries, nil
}

func (h *History) save(entries []Entry) error {
	if len(entries) > MaxHistory {
		entries = entries[:MaxHistory]
	}
	h.entries = entries

	data, err := json.MarshalIndent(historyData{Exports: entries}, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(h.file(), data)
}

// Add records an export at the front, replacing an older entry for the same path
func (h *History) Add(e Entry) error {
	if h.entries == nil {
		if _, err := h.Load(); err != nil {
			h.entries = []Entry{}
		}
	}

	next := make([]Entry, 0, len(h.entries)+1)
	next = append(next, e)
	for _, old := range h.entries {
		if old.Path != e.Path {
			next = append(next, old)
		}
	}
	return h.save(next)
}

// List returns the current entries, loading them on first use
func (h *History) List() []Entry {
	if h.entries == nil {
		if _, err := h.Load(); err != nil {
			return nil
		}
	}
	return h.entries
}
