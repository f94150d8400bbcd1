// Package sqlitestore backs internal/index.Store with an embedded
// modernc.org/sqlite database: a single prefix_ref table holding the
// prefix -> refs inverted index on disk.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/k0kubun/dingdef/internal/index"
)

const schema = `
CREATE TABLE IF NOT EXISTS prefix_ref (
	prefix TEXT NOT NULL,
	ref    INTEGER NOT NULL,
	PRIMARY KEY (prefix, ref)
);
CREATE INDEX IF NOT EXISTS prefix_ref_prefix ON prefix_ref (prefix);
`

// Store is the sqlite-backed index.Store implementation.
type Store struct {
	path string
	db   *sql.DB
	tx   *sql.Tx
}

// Open creates (if necessary) and opens the index database at path,
// applying the schema if it is missing.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{path: path, db: db}, nil
}

var _ index.Store = (*Store)(nil)

func (s *Store) BeginTx(ctx context.Context) error {
	if s.tx != nil {
		return fmt.Errorf("sqlitestore: transaction already in progress")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	s.tx = tx
	return nil
}

func (s *Store) Add(ctx context.Context, prefix string, ref int64) error {
	if s.tx == nil {
		return fmt.Errorf("sqlitestore: Add called outside a transaction")
	}
	_, err := s.tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO prefix_ref (prefix, ref) VALUES (?, ?)`, prefix, ref)
	return err
}

func (s *Store) Commit(ctx context.Context) error {
	if s.tx == nil {
		return fmt.Errorf("sqlitestore: Commit called outside a transaction")
	}
	err := s.tx.Commit()
	s.tx = nil
	return err
}

func (s *Store) Rollback(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback()
	s.tx = nil
	return err
}

// Lookup returns the refs of every stored key that prefix is itself a
// prefix of (e.g. lookup("HAUS") matches stored keys "HAUS" and
// "HAUSA"), since a stored key is a corpus word cropped to DEPTH and a
// shorter query keyword must still find it. A ref can be reached
// through more than one matching key, so duplicates are collapsed with
// DISTINCT.
func (s *Store) Lookup(ctx context.Context, prefix string) ([]int64, error) {
	upper, unbounded := incrementLastByte(prefix)

	var (
		rows *sql.Rows
		err  error
	)
	if unbounded {
		rows, err = s.db.QueryContext(ctx,
			`SELECT DISTINCT ref FROM prefix_ref WHERE prefix >= ? ORDER BY ref ASC`, prefix)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT DISTINCT ref FROM prefix_ref WHERE prefix >= ? AND prefix < ? ORDER BY ref ASC`,
			prefix, upper)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []int64
	for rows.Next() {
		var ref int64
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// incrementLastByte computes the exclusive upper bound of the
// byte-lexicographic range covering every key for which s is a prefix:
// it increments the last byte that isn't already 0xFF and truncates
// after it. If every byte is 0xFF, no finite upper bound exists and
// unbounded is true (the range is simply ">= s").
func incrementLastByte(s string) (upper string, unbounded bool) {
	b := []byte(s)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 0xFF {
			b[i]++
			return string(b[:i+1]), false
		}
	}
	return "", true
}

func (s *Store) Close() error {
	return s.db.Close()
}
