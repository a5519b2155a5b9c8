// ABOUTME: File-backed store persisting keys as JSON in the user's config directory
// ABOUTME: Handles share a change hub; an fsnotify watch surfaces writes made by other processes

package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// FileName is the document holding persisted keys
const FileName = "session.json"

// externalOrigin tags changes written by another process
const externalOrigin = ""

var (
	fileHubsMu sync.Mutex
	fileHubs   = map[string]*fileShared{}
)

// fileShared serializes access to one file and carries its hub.
// While anyone listens, last mirrors the document as this process last saw it.
type fileShared struct {
	mu        sync.Mutex
	path      string
	hub       *hub
	listeners int
	last      map[string]string
	watcher   *fsnotify.Watcher
}

func sharedFor(path string) *fileShared {
	fileHubsMu.Lock()
	defer fileHubsMu.Unlock()
	s, ok := fileHubs[path]
	if !ok {
		s = &fileShared{path: path, hub: newHub()}
		fileHubs[path] = s
	}
	return s
}

// File stores keys in <dir>/session.json with owner-only permissions
type File struct {
	path   string
	origin string
	shared *fileShared
}

// NewFile opens a file store rooted at dir. The file is created lazily.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, fmt.Errorf("config directory is not set")
	}
	abs, err := filepath.Abs(filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("resolve store path: %w", err)
	}
	return &File{
		path:   abs,
		origin: uuid.NewString(),
		shared: sharedFor(abs),
	}, nil
}

// Path returns the backing file path
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.shared.mu.Lock()
	defer f.shared.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.shared.mu.Lock()
	data, err := f.load()
	var external []Change
	if err == nil {
		external = f.shared.observeLocked(data)
		data[key] = value
		err = f.save(data)
		if err == nil {
			f.shared.rememberLocked(data)
		}
	}
	f.shared.mu.Unlock()

	f.shared.publishExternal(external)
	if err != nil {
		return err
	}
	f.shared.hub.publish(f.origin, Change{Key: key, Value: value, Present: true})
	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	f.shared.mu.Lock()
	data, err := f.load()
	var external []Change
	_, existed := data[key]
	if err == nil {
		external = f.shared.observeLocked(data)
	}
	if err == nil && existed {
		delete(data, key)
		err = f.save(data)
		if err == nil {
			f.shared.rememberLocked(data)
		}
	}
	f.shared.mu.Unlock()

	f.shared.publishExternal(external)
	if err != nil {
		return err
	}
	if existed {
		f.shared.hub.publish(f.origin, Change{Key: key})
	}
	return nil
}

// OnChange subscribes to changes from other handles in this process and,
// through a watch on the document, from other processes.
func (f *File) OnChange(key string, fn Listener) func() {
	unsub := f.shared.hub.subscribe(f.origin, key, fn)
	f.shared.retain()

	var once sync.Once
	return func() {
		once.Do(func() {
			unsub()
			f.shared.release()
		})
	}
}

func (f *File) Close() error { return nil }

// load reads the document; a missing or corrupt file is an empty store
func (f *File) load() (map[string]string, error) {
	data, _, err := f.shared.read()
	return data, err
}

// save writes the document atomically
func (f *File) save(data map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

// read returns the document and whether it parsed. A missing file is a valid
// empty document; an unparseable one is empty but not valid.
func (s *fileShared) read() (map[string]string, bool, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", s.path, err)
	}

	data := map[string]string{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return map[string]string{}, false, nil
	}
	return data, true, nil
}

// retain starts watching the document when the first listener arrives
func (s *fileShared) retain() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners++
	if s.listeners > 1 {
		return
	}
	if data, ok, err := s.read(); err == nil && ok {
		s.last = data
	} else {
		s.last = map[string]string{}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return
	}
	// The directory is watched because saves replace the file by rename.
	if err := w.Add(dir); err != nil {
		w.Close()
		return
	}
	s.watcher = w
	go s.watch(w)
}

// release stops the watch when the last listener leaves
func (s *fileShared) release() {
	s.mu.Lock()
	s.listeners--
	var w *fsnotify.Watcher
	if s.listeners == 0 {
		w = s.watcher
		s.watcher = nil
		s.last = nil
	}
	s.mu.Unlock()

	if w != nil {
		w.Close()
	}
}

func (s *fileShared) watch(w *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != FileName || ev.Op == fsnotify.Chmod {
				continue
			}
			s.reload()
		case _, ok := <-w.Errors:
			if !ok {
				return
			}
		}
	}
}

// reload diffs the document against the last seen state and publishes what
// another process changed. Half-written documents are skipped until complete.
func (s *fileShared) reload() {
	s.mu.Lock()
	data, ok, err := s.read()
	var changes []Change
	if err == nil && ok {
		changes = s.observeLocked(data)
	}
	s.mu.Unlock()

	s.publishExternal(changes)
}

// observeLocked records data as seen and returns how it differs from the
// previous observation. Nothing is tracked while no one listens.
func (s *fileShared) observeLocked(data map[string]string) []Change {
	if s.last == nil {
		return nil
	}
	changes := diffDocuments(s.last, data)
	s.rememberLocked(data)
	return changes
}

func (s *fileShared) rememberLocked(data map[string]string) {
	if s.last == nil {
		return
	}
	s.last = make(map[string]string, len(data))
	for k, v := range data {
		s.last[k] = v
	}
}

func (s *fileShared) publishExternal(changes []Change) {
	for _, c := range changes {
		s.hub.publish(externalOrigin, c)
	}
}

// diffDocuments lists the keys whose presence or value differs, sorted by key
func diffDocuments(before, after map[string]string) []Change {
	keys := make([]string, 0, len(before)+len(after))
	for k := range before {
		keys = append(keys, k)
	}
	for k := range after {
		if _, ok := before[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var changes []Change
	for _, k := range keys {
		old, had := before[k]
		cur, has := after[k]
		switch {
		case had && !has:
			changes = append(changes, Change{Key: k})
		case has && (!had || old != cur):
			changes = append(changes, Change{Key: k, Value: cur, Present: true})
		}
	}
	return changes
}
