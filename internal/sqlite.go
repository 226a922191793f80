package internal

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	query     TEXT PRIMARY KEY,
	response  TEXT NOT NULL,
	entities  TEXT NOT NULL DEFAULT '[]',
	timestamp REAL NOT NULL,
	embedding BLOB NOT NULL
);`

var _ Persister = (*SQLiteStore)(nil)

// SQLiteStore keeps the snapshot as rows of one table. Each save rewrites
// the table inside a single transaction.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	dir := filepath.Dir(dsn)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time; the cache serializes saves anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cache_entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cache_entries (query, response, entities, timestamp, embedding)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for query, rec := range snap.Contexts {
		vec, ok := snap.Embeddings[query]
		if !ok {
			return fmt.Errorf("%w: context %q has no embedding", ErrPersistFormat, query)
		}

		entities := rec.Entities
		if entities == nil {
			entities = []string{}
		}
		ents, err := json.Marshal(entities)
		if err != nil {
			return fmt.Errorf("marshal entities: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, query, rec.Response, string(ents), rec.Timestamp, encodeVector(vec)); err != nil {
			return fmt.Errorf("insert entry %q: %w", query, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT query, response, entities, timestamp, embedding FROM cache_entries`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	snap := EmptySnapshot()
	for rows.Next() {
		var (
			rec  ContextRecord
			ents string
			blob []byte
		)
		if err := rows.Scan(&rec.Query, &rec.Response, &ents, &rec.Timestamp, &blob); err != nil {
			return nil, fmt.Errorf("%w: scan entry: %v", ErrPersistFormat, err)
		}
		if err := json.Unmarshal([]byte(ents), &rec.Entities); err != nil {
			return nil, fmt.Errorf("%w: entities of %q: %v", ErrPersistFormat, rec.Query, err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("embedding of %q: %w", rec.Query, err)
		}

		snap.Contexts[rec.Query] = rec
		snap.Embeddings[rec.Query] = vec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return snap, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("%w: blob of %d bytes is not a float32 vector", ErrPersistFormat, len(buf))
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec, nil
}
