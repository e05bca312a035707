package filestore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2/log"
)

// MemoryAdapter implements BlobBackend for demo mode. Blob contents live
// in process memory; only the list of known paths is persisted to a JSON
// state file, so a restarted demo remembers which blobs existed even
// though their bytes are gone.
type MemoryAdapter struct {
	mu        sync.RWMutex
	blobs     map[string][]byte
	statePath string
}

// NewMemoryAdapter creates a new in-memory blob adapter. statePath may be
// empty to disable persistence of the path list.
func NewMemoryAdapter(statePath string) *MemoryAdapter {
	m := &MemoryAdapter{
		blobs:     make(map[string][]byte),
		statePath: statePath,
	}
	m.loadState()
	return m
}

// Save saves data to the specified path
func (m *MemoryAdapter) Save(path string, data []byte) error {
	m.mu.Lock()
	m.blobs[path] = append([]byte(nil), data...)
	m.mu.Unlock()
	m.saveState()
	return nil
}

// SaveReader saves data from a reader to the specified path
func (m *MemoryAdapter) SaveReader(path string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	return m.Save(path, data)
}

// Load loads data from the specified path
func (m *MemoryAdapter) Load(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[path]
	if !ok {
		return nil, fmt.Errorf("blob not found: %s", path)
	}
	return append([]byte(nil), data...), nil
}

// LoadReader returns a reader for the specified path
func (m *MemoryAdapter) LoadReader(path string) (io.ReadCloser, error) {
	data, err := m.Load(path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Exists checks if a blob exists at the specified path
func (m *MemoryAdapter) Exists(path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs[path]
	return ok, nil
}

// Delete deletes the blob at the specified path
func (m *MemoryAdapter) Delete(path string) error {
	m.mu.Lock()
	if _, ok := m.blobs[path]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("blob not found: %s", path)
	}
	delete(m.blobs, path)
	m.mu.Unlock()
	m.saveState()
	return nil
}

// List lists blob paths under the specified prefix
func (m *MemoryAdapter) List(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var paths []string
	for path := range m.blobs {
		if prefix == "" || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/") || path == prefix {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Locator returns a mock:// URL for the blob at path.
func (m *MemoryAdapter) Locator(path string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.blobs[path]; !ok {
		return "", fmt.Errorf("blob not found: %s", path)
	}
	return "mock://" + path, nil
}

// saveState persists the path list (not contents, which could be large).
func (m *MemoryAdapter) saveState() {
	if m.statePath == "" {
		return
	}

	m.mu.RLock()
	paths := make([]string, 0, len(m.blobs))
	for path := range m.blobs {
		paths = append(paths, path)
	}
	m.mu.RUnlock()
	sort.Strings(paths)

	data, err := json.Marshal(paths)
	if err != nil {
		log.Warnf("Failed to encode mock blob state: %v", err)
		return
	}
	if err := os.WriteFile(m.statePath, data, 0644); err != nil {
		log.Warnf("Failed to persist mock blob state: %v", err)
	}
}

// loadState recreates empty entries for known paths from a previous run.
func (m *MemoryAdapter) loadState() {
	if m.statePath == "" {
		return
	}

	data, err := os.ReadFile(m.statePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Failed to read mock blob state: %v", err)
		}
		return
	}

	var paths []string
	if err := json.Unmarshal(data, &paths); err != nil {
		log.Warnf("Failed to decode mock blob state: %v", err)
		return
	}

	m.mu.Lock()
	for _, path := range paths {
		if _, ok := m.blobs[path]; !ok {
			m.blobs[path] = nil
		}
	}
	m.mu.Unlock()
}
