package profilecache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	// sqlite driver
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS profile_cache (
	entity_id     TEXT PRIMARY KEY,
	hash          TEXT NOT NULL,
	vector        TEXT NOT NULL,
	last_embedded TEXT NOT NULL,
	model         TEXT NOT NULL DEFAULT ''
)`

// SQLiteStore keeps one row per entity. Vectors are stored as JSON text so
// they round-trip without loss.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (and creates when needed) the cache database at path.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	// a single connection serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) (map[string]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT entity_id, hash, vector, last_embedded, model FROM profile_cache`)
	if err != nil {
		return nil, fmt.Errorf("query profile cache: %w", err)
	}
	defer rows.Close()

	records := make(map[string]Record)
	for rows.Next() {
		var (
			id     string
			rec    Record
			vector string
		)
		if err := rows.Scan(&id, &rec.Hash, &vector, &rec.LastEmbedded, &rec.Model); err != nil {
			return nil, fmt.Errorf("scan profile cache row: %w", err)
		}
		if err := json.Unmarshal([]byte(vector), &rec.Vector); err != nil {
			return nil, fmt.Errorf("decode vector of %s: %w", id, err)
		}
		records[id] = rec
	}

	return records, rows.Err()
}

// Save upserts the records in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, records map[string]Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO profile_cache (entity_id, hash, vector, last_embedded, model)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			hash = excluded.hash,
			vector = excluded.vector,
			last_embedded = excluded.last_embedded,
			model = excluded.model
	`)
	if err != nil {
		return fmt.Errorf("prepare cache upsert: %w", err)
	}
	defer stmt.Close()

	for id, rec := range records {
		vector, err := json.Marshal(rec.Vector)
		if err != nil {
			return fmt.Errorf("encode vector of %s: %w", id, err)
		}
		if _, err := stmt.ExecContext(ctx, id, rec.Hash, string(vector), rec.LastEmbedded, rec.Model); err != nil {
			return fmt.Errorf("upsert cache record %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cache transaction: %w", err)
	}
	return nil
}
