package localrev

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"drawing-viewer/internal/drawing"
)

const schema = `
CREATE TABLE IF NOT EXISTS local_revisions (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    drawing_key TEXT NOT NULL,
    payload     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_local_revisions_key ON local_revisions (drawing_key);
`

// SQLiteStore persists revisions in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dbPath. Use
// ":memory:" for a throwaway store.
func OpenSQLite(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	dsn := "file::memory:"
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)", dbPath)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Append(ctx context.Context, drawingID, discipline string, rev drawing.Revision) error {
	payload, err := json.Marshal(rev)
	if err != nil {
		return fmt.Errorf("encode revision: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO local_revisions (drawing_key, payload) VALUES (?, ?)`,
		drawing.Key(drawingID, discipline), string(payload))
	if err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, drawingID, discipline string) ([]drawing.Revision, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM local_revisions WHERE drawing_key = ? ORDER BY id`,
		drawing.Key(drawingID, discipline))
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	var out []drawing.Revision
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var rev drawing.Revision
		if err := json.Unmarshal([]byte(payload), &rev); err != nil {
			return nil, fmt.Errorf("decode revision: %w", err)
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, drawingID, discipline string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM local_revisions WHERE drawing_key = ?`,
		drawing.Key(drawingID, discipline))
	if err != nil {
		return fmt.Errorf("delete revisions: %w", err)
	}
	return nil
}
