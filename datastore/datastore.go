// Package datastore is a small JSON file backed key/value store. Values are
// kept as raw JSON in memory and flushed to disk periodically and on Close.
package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrClosed = errors.New("datastore is closed")

// Config holds the store options.
type Config struct {
	FilePath         string
	AutoSaveInterval time.Duration
}

// DefaultConfig flushes every 30 seconds.
func DefaultConfig(filePath string) Config {
	return Config{FilePath: filePath, AutoSaveInterval: 30 * time.Second}
}

type DataStore struct {
	mu     sync.RWMutex
	data   map[string]json.RawMessage
	dirty  bool
	closed bool

	cfg    Config
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(filePath string) (*DataStore, error) {
	return NewWithConfig(DefaultConfig(filePath))
}

// NewWithConfig loads cfg.FilePath, creating it when missing, and starts the
// autosave loop when AutoSaveInterval is positive.
func NewWithConfig(cfg Config) (*DataStore, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	ds := &DataStore{data: make(map[string]json.RawMessage), cfg: cfg}

	raw, err := os.ReadFile(cfg.FilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := writeFileAtomic(cfg.FilePath, []byte("{}")); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", cfg.FilePath, err)
	default:
		if err := json.Unmarshal(raw, &ds.data); err != nil {
			return nil, fmt.Errorf("invalid JSON in %s: %w", cfg.FilePath, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	ds.cancel = cancel
	if cfg.AutoSaveInterval > 0 {
		ds.wg.Add(1)
		go ds.autoSave(ctx)
	}
	return ds, nil
}

// Put stores v under key as JSON.
func (ds *DataStore) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return ErrClosed
	}
	ds.data[key] = raw
	ds.dirty = true
	return nil
}

// Get decodes the value under key into v. It reports false when key is absent.
func (ds *DataStore) Get(key string, v any) (bool, error) {
	ds.mu.RLock()
	raw, ok := ds.data[key]
	closed := ds.closed
	ds.mu.RUnlock()
	if closed {
		return false, ErrClosed
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("unmarshal %q: %w", key, err)
	}
	return true, nil
}

// Update runs fn under the write lock so read-modify-write of one key is atomic.
func (ds *DataStore) Update(key string, fn func(raw json.RawMessage) (any, error)) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return ErrClosed
	}
	v, err := fn(ds.data[key])
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	ds.data[key] = raw
	ds.dirty = true
	return nil
}

func (ds *DataStore) Delete(key string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if _, ok := ds.data[key]; ok {
		delete(ds.data, key)
		ds.dirty = true
	}
}

// Save flushes pending changes.
func (ds *DataStore) Save() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.saveLocked()
}

// Close stops autosave and writes a final snapshot.
func (ds *DataStore) Close() error {
	ds.mu.Lock()
	if ds.closed {
		ds.mu.Unlock()
		return nil
	}
	ds.closed = true
	ds.mu.Unlock()

	ds.cancel()
	ds.wg.Wait()

	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.saveLocked()
}

func (ds *DataStore) saveLocked() error {
	if !ds.dirty {
		return nil
	}
	raw, err := json.MarshalIndent(ds.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	if err := writeFileAtomic(ds.cfg.FilePath, raw); err != nil {
		return err
	}
	ds.dirty = false
	return nil
}

func (ds *DataStore) autoSave(ctx context.Context) {
	defer ds.wg.Done()

	ticker := time.NewTicker(ds.cfg.AutoSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ds.Save(); err != nil {
				log.Error().Err(err).Str("file", ds.cfg.FilePath).Msg("datastore: autosave failed")
			}
		}
	}
}

// writeFileAtomic writes to a sibling temp file, syncs it and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
