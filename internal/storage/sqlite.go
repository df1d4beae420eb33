package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteGateway persists slots in a single-table SQLite database so surveys
// and responses survive process restarts the way localStorage survives page
// loads. One row per slot; REPLACE keeps last-write-wins semantics.
type SQLiteGateway struct {
	db *sql.DB
}

func NewSQLiteGateway(db *sql.DB) (*SQLiteGateway, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS slots (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create slots table: %w", err)
	}
	return &SQLiteGateway{db: db}, nil
}

// Open opens (creating if needed) the slot database at path.
func Open(path string) (*SQLiteGateway, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	g, err := NewSQLiteGateway(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return g, nil
}

func (g *SQLiteGateway) Close() error {
	return g.db.Close()
}

func (g *SQLiteGateway) Get(key string, out any) bool {
	var raw string
	err := g.db.QueryRow(`SELECT value FROM slots WHERE key = ?`, key).Scan(&raw)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("slot gateway: get %s: %v", key, err)
		}
		return false
	}
	return decodeSlot(raw, out)
}

func (g *SQLiteGateway) Set(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = g.db.Exec(
		`INSERT INTO slots (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, string(b))
	return err
}
