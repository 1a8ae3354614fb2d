package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"

	"logviewer-client/internal/logging"
)

// Store keeps one JSON document of namespace -> key -> value on disk.
// Writes hold a cross-process file lock and replace the file atomically.
type Store struct {
	path   string
	logger *logging.Logger

	// fileMu serializes this process's use of the shared lock file.
	fileMu sync.Mutex
	lock   *flock.Flock

	mu  sync.RWMutex
	doc map[string]map[string]json.RawMessage
}

func Open(path string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		panic("settings.Open: logger must not be nil")
	}
	if path == "" {
		return nil, errors.New("settings path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create settings directory: %w", err)
	}
	s := &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger.Component("settings"),
		doc:    map[string]map[string]json.RawMessage{},
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

// Reload replaces the in-memory document with the file contents. A missing
// or corrupt file yields an empty document; a read error is returned and
// the cache is left untouched.
func (s *Store) Reload() error {
	s.fileMu.Lock()
	if err := s.lock.RLock(); err != nil {
		s.fileMu.Unlock()
		return fmt.Errorf("lock settings file: %w", err)
	}
	data, readErr := os.ReadFile(s.path)
	_ = s.lock.Unlock()
	s.fileMu.Unlock()

	doc := map[string]map[string]json.RawMessage{}
	switch {
	case errors.Is(readErr, fs.ErrNotExist):
	case readErr != nil:
		return fmt.Errorf("read settings: %w", readErr)
	case len(data) > 0:
		if err := json.Unmarshal(data, &doc); err != nil {
			s.logger.Warn("settings file is not valid JSON; ignoring it",
				logging.Field("path", s.path),
				logging.Field("error", err))
			doc = map[string]map[string]json.RawMessage{}
		}
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

func (s *Store) Raw(namespace, key string) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.doc[namespace][key]
	if !ok {
		return nil, false
	}
	return append(json.RawMessage(nil), value...), true
}

// Keys lists the keys stored under namespace in sorted order.
func (s *Store) Keys(namespace string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.doc[namespace]))
	for key := range s.doc[namespace] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Put replaces namespace/key with value and persists the document.
func (s *Store) Put(namespace, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", namespace, key, err)
	}
	return s.mutate(func(doc map[string]map[string]json.RawMessage) {
		if doc[namespace] == nil {
			doc[namespace] = map[string]json.RawMessage{}
		}
		doc[namespace][key] = raw
	})
}

func (s *Store) Delete(namespace, key string) error {
	return s.mutate(func(doc map[string]map[string]json.RawMessage) {
		delete(doc[namespace], key)
		if len(doc[namespace]) == 0 {
			delete(doc, namespace)
		}
	})
}

// Clear drops a whole namespace.
func (s *Store) Clear(namespace string) error {
	return s.mutate(func(doc map[string]map[string]json.RawMessage) {
		delete(doc, namespace)
	})
}

func (s *Store) mutate(apply func(map[string]map[string]json.RawMessage)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]map[string]json.RawMessage, len(s.doc)+1)
	for ns, values := range s.doc {
		copied := make(map[string]json.RawMessage, len(values))
		for k, v := range values {
			copied[k] = v
		}
		next[ns] = copied
	}
	apply(next)

	payload, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	s.fileMu.Lock()
	defer s.fileMu.Unlock()
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock settings file: %w", err)
	}
	defer func() {
		_ = s.lock.Unlock()
	}()
	if err := writeFileAtomic(s.path, payload); err != nil {
		return err
	}
	s.doc = next
	return nil
}

func writeFileAtomic(path string, payload []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = os.Remove(tmpName)
	}
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("chmod settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// Watch reloads the document whenever the file changes on disk, until ctx
// is done. onReload, when set, runs after each successful reload.
func (s *Store) Watch(ctx context.Context, onReload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: atomic replaces swap the file's inode.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch settings directory: %w", err)
	}
	s.logger.Debug("watching settings file", logging.Field("path", s.path))

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("settings watcher error", logging.Field("error", watchErr))
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if reloadErr := s.Reload(); reloadErr != nil {
				s.logger.Warn("failed to reload settings", logging.Field("error", reloadErr))
				continue
			}
			s.logger.Debug("settings reloaded", logging.Field("op", event.Op.String()))
			if onReload != nil {
				onReload()
			}
		}
	}
}

// Load returns the value stored under namespace/key decoded into T, or
// defaults when nothing is stored, the value cannot be decoded, or its
// shape does not match defaults.
func Load[T any](s *Store, namespace, key string, defaults T) T {
	raw, ok := s.Raw(namespace, key)
	if !ok {
		return defaults
	}
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed == nil {
		s.logger.Debug("stored settings are not an object; using defaults",
			logging.Field("namespace", namespace), logging.Field("key", key))
		return defaults
	}
	shape, err := toObject(defaults)
	if err != nil {
		s.logger.Warn("defaults are not an object", logging.Field("namespace", namespace), logging.Field("error", err))
		return defaults
	}
	if _, issues := Reconcile(parsed, shape); len(issues) > 0 {
		s.logger.Debug("stored settings do not match defaults; using defaults",
			logging.Field("namespace", namespace),
			logging.Field("key", key),
			logging.Field("mismatched", issues))
		return defaults
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		s.logger.Debug("stored settings failed to decode; using defaults",
			logging.Field("namespace", namespace), logging.Field("key", key), logging.Field("error", err))
		return defaults
	}
	return out
}

func Save[T any](s *Store, namespace, key string, value T) error {
	return s.Put(namespace, key, value)
}

func toObject(value any) (map[string]any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.New("value encodes to null")
	}
	return out, nil
}
