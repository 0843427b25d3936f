package identity

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
)

// Index is an optional on-disk accelerator mapping remote task IDs to local
// task UUIDs. It only speeds up lookups; the annotation scan remains the
// source of truth, so a stale or deleted index never changes sync behavior.
type Index struct {
	Mappings map[string]string `json:"mappings"`
	Path     string            `json:"-"`
	mu       sync.RWMutex
	dirty    bool
}

// OpenIndex loads the index at path, starting empty if the file is absent.
func OpenIndex(path string) (*Index, error) {
	idx := &Index{
		Mappings: make(map[string]string),
		Path:     path,
	}

	if _, err := os.Stat(path); err == nil {
		if err := idx.load(); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

func (idx *Index) load() error {
	f, err := os.Open(idx.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(&idx.Mappings)
}

// Save writes the index back to disk if anything changed since the last save.
func (idx *Index) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if !idx.dirty {
		return nil
	}

	dir := filepath.Dir(idx.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(idx.Mappings); err != nil {
		return err
	}
	if err := atomic.WriteFile(idx.Path, &buf); err != nil {
		return err
	}
	idx.dirty = false
	return nil
}

func (idx *Index) Get(remoteID string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.Mappings[remoteID]
}

func (idx *Index) Set(remoteID, taskUUID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.Mappings[remoteID] != taskUUID {
		idx.Mappings[remoteID] = taskUUID
		idx.dirty = true
	}
}

func (idx *Index) Remove(remoteID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, exists := idx.Mappings[remoteID]; exists {
		delete(idx.Mappings, remoteID)
		idx.dirty = true
	}
}
