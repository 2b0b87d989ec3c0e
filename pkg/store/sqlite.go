package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	rgio "github.com/matzehuels/roomgraph/pkg/io"
	"github.com/matzehuels/roomgraph/pkg/roomgraph"
)

// DefaultSQLitePath is used by [NewSQLiteStore] when no path is given.
const DefaultSQLitePath = "roomgraph.db"

// SQLiteStore keeps graphs as JSON documents in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path.
// It enables WAL mode for concurrent readers.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultSQLitePath
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema migration: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS graphs (
		name TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		node_count INTEGER NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create graphs table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, name string) (roomgraph.Snapshot, error) {
	if err := checkName(name); err != nil {
		return roomgraph.Snapshot{}, err
	}
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM graphs WHERE name = ?`, name).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return roomgraph.Snapshot{}, notFound(name)
	}
	if err != nil {
		return roomgraph.Snapshot{}, fmt.Errorf("query %s: %w", name, err)
	}
	snap, err := rgio.DecodeSnapshot([]byte(doc))
	if err != nil {
		return roomgraph.Snapshot{}, fmt.Errorf("graph %s: %w", name, err)
	}
	return snap, nil
}

func (s *SQLiteStore) Save(ctx context.Context, name string, snap roomgraph.Snapshot) error {
	if err := checkName(name); err != nil {
		return err
	}
	data, err := rgio.EncodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("graph %s: %w", name, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO graphs (name, document, node_count, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			document = excluded.document,
			node_count = excluded.node_count,
			updated_at = excluded.updated_at`,
		name, string(data), len(snap.Nodes))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM graphs WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	if n == 0 {
		return notFound(name)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM graphs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan graph name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
