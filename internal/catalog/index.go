package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// SaveIndex writes records as an indented JSON array, creating parent
// directories when needed.
func SaveIndex[T any](path string, records []T) error {
	if records == nil {
		records = []T{}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write index %s: %w", path, err)
	}
	return nil
}

// LoadIndex reads an index written by SaveIndex. An absent file is an empty
// index. A file that cannot be decoded reports ErrMalformedInput.
func LoadIndex[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", path, err)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: decode index %s: %w", ErrMalformedInput, path, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}
