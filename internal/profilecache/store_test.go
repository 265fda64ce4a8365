package profilecache

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	records, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty map, got %v", records)
	}
}

func TestFileStoreSaveLeavesOtherRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.json")
	store := NewFileStore(path)
	ctx := context.Background()

	a := Record{Hash: "ha", Vector: []float64{0.1, 0.2}, LastEmbedded: "2025-01-01T00:00:00Z", Model: "m"}
	b := Record{Hash: "hb", Vector: []float64{0.3}, LastEmbedded: "2025-01-02T00:00:00Z", Model: "m"}

	if err := store.Save(ctx, map[string]Record{"a": a, "b": b}); err != nil {
		t.Fatalf("save: %v", err)
	}

	updated := Record{Hash: "hb2", Vector: []float64{0.5}, LastEmbedded: "2025-02-01T00:00:00Z", Model: "m"}
	if err := store.Save(ctx, map[string]Record{"b": updated}); err != nil {
		t.Fatalf("save: %v", err)
	}

	records, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(records["a"], a) {
		t.Fatalf("record a changed: %+v", records["a"])
	}
	if !reflect.DeepEqual(records["b"], updated) {
		t.Fatalf("record b not updated: %+v", records["b"])
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestFileStoreReadsLegacyRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	legacy := `{"1": {"hash": "abc", "vector": [0.25, 0.5], "last_embedded": "2024-05-01T10:00:00.123456"}}`
	if err := os.WriteFile(path, []byte(legacy), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	records, err := NewFileStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rec := records["1"]
	if rec.Hash != "abc" || rec.Model != "" || len(rec.Vector) != 2 {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFileStore(path).Load(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLiteStore(ctx, filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	a := Record{Hash: "ha", Vector: []float64{0.125, -0.5}, LastEmbedded: "2025-01-01T00:00:00Z", Model: "m"}
	b := Record{Hash: "hb", Vector: []float64{1}, LastEmbedded: "2025-01-01T00:00:00Z", Model: "m"}
	if err := store.Save(ctx, map[string]Record{"a": a, "b": b}); err != nil {
		t.Fatalf("save: %v", err)
	}

	b.Hash = "hb2"
	if err := store.Save(ctx, map[string]Record{"b": b}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	records, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(records, map[string]Record{"a": a, "b": b}) {
		t.Fatalf("unexpected records %+v", records)
	}
}
