// Package chunkdb is the durable chunk save store: one sqlite row per
// saved chunk, keyed by chunk coordinate, holding the compressed block
// blob. A chunk never saved here is regenerated from the world seed.
package chunkdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"voxelgate.dev/internal/sim/coords"
	"voxelgate.dev/internal/sim/terrain"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	// WAL keeps loader reads from blocking save writes.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS chunks (
			cx INTEGER NOT NULL,
			cy INTEGER NOT NULL,
			cz INTEGER NOT NULL,
			blob BLOB NOT NULL,
			saved_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			PRIMARY KEY (cx, cy, cz)
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the saved payload for cc, or (nil, nil) when the chunk
// has never been saved.
func (s *Store) Get(cc coords.Chunk) (*terrain.Chunk, error) {
	var blob []byte
	err := s.db.QueryRow(
		`SELECT blob FROM chunks WHERE cx=? AND cy=? AND cz=?`,
		cc.X, cc.Y, cc.Z,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ch, err := terrain.ChunkFromBlob(blob)
	if err != nil {
		return nil, fmt.Errorf("chunk (%d,%d,%d): %w", cc.X, cc.Y, cc.Z, err)
	}
	return ch, nil
}

// Has reports whether cc has a saved payload without decoding it.
func (s *Store) Has(cc coords.Chunk) (bool, error) {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM chunks WHERE cx=? AND cy=? AND cz=?`,
		cc.X, cc.Y, cc.Z,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Put(cc coords.Chunk, ch *terrain.Chunk) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO chunks(cx,cy,cz,blob) VALUES(?,?,?,?)`,
		cc.X, cc.Y, cc.Z, ch.MarshalBlob(),
	)
	return err
}

// Count returns the number of saved chunks. Used by admin tooling and tests.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}
