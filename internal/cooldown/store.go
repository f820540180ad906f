package cooldown

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Store persists the ticker → last-bought-date map. Dates are ISO strings
// (2006-01-02) so the file stays human readable and editable.
type Store interface {
	Load() (map[string]string, error)
	Save(map[string]string) error
}

// FileStore keeps the map in a JSON file. A missing or corrupt file loads
// as empty — the blacklist is rebuildable state, never worth crashing for.
type FileStore struct {
	Path string
}

// NewFileStore creates a FileStore at the given path.
func NewFileStore(path string) *FileStore { return &FileStore{Path: path} }

func (f *FileStore) Load() (map[string]string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("[WARN] cooldown state unreadable (%v), starting empty: %s", err, f.Path)
		return map[string]string{}, nil
	}
	return entries, nil
}

func (f *FileStore) Save(entries map[string]string) error {
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0644)
}

// MemoryStore is an in-memory Store for tests and dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]string{}}
}

func (m *MemoryStore) Load() (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryStore) Save(entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]string, len(entries))
	for k, v := range entries {
		m.entries[k] = v
	}
	return nil
}
