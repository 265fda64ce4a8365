package profilecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Record is the memoized embedding of one entity. A record is always
// replaced as a whole, so Hash describes exactly the content Vector came from.
type Record struct {
	Hash         string    `json:"hash"`
	Vector       []float64 `json:"vector"`
	LastEmbedded string    `json:"last_embedded"`
	Model        string    `json:"model,omitempty"`
}

// Store is the durable side of the cache.
type Store interface {
	// Load returns every persisted record keyed by entity id.
	Load(ctx context.Context) (map[string]Record, error)
	// Save persists the given records and leaves all other records untouched.
	Save(ctx context.Context, records map[string]Record) error
}

// FileStore keeps the cache as one JSON document keyed by entity id.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(_ context.Context) (map[string]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read()
}

// Save merges records into the file and replaces it atomically, so a crash
// leaves either the previous or the new document on disk.
func (s *FileStore) Save(_ context.Context, records map[string]Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil {
		return err
	}
	for id, rec := range records {
		current[id] = rec
	}

	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temporary cache file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temporary cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temporary cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}

func (s *FileStore) read() (map[string]Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]Record), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile cache: %w", err)
	}

	records := make(map[string]Record)
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode profile cache %s: %w", s.path, err)
	}
	return records, nil
}
