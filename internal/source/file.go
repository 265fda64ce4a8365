// Package source loads raw employee profiles from a JSON file or an HTTP API.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/career-compass/internal/profile"
)

// Load reads profiles from location, which is either a file path or an http(s) URL.
func Load(ctx context.Context, location string, client *Client) ([]profile.Raw, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("profile source is not configured")
	}

	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		if client == nil {
			client = New(ctx, zap.NewNop(), "")
		}
		return client.Fetch(location)
	}

	return LoadFile(location)
}

// LoadFile reads a JSON array of profile documents.
func LoadFile(path string) ([]profile.Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	docs, err := decodeDocuments(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse profiles from %s: %w", path, err)
	}

	return parseAll(docs)
}

func decodeDocuments(r io.Reader) ([]map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var docs []map[string]any
	if err := dec.Decode(&docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func parseAll(docs []map[string]any) ([]profile.Raw, error) {
	out := make([]profile.Raw, 0, len(docs))
	for i, doc := range docs {
		raw, err := profile.Parse(doc)
		if err != nil {
			return nil, fmt.Errorf("profile #%d: %w", i, err)
		}
		out = append(out, raw)
	}
	return out, nil
}
