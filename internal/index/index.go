// Package index defines the abstract prefix -> set-of-refs store used
// by the installer and query engine (spec §4.5). Concrete backings
// live in subpackages, e.g. internal/index/sqlitestore.
package index

import "context"

// Store is a persistent inverted index: it maps a normalized keyword
// prefix to the set of corpus line offsets (refs) it occurs in.
// Implementations must make Add idempotent — adding the same
// (prefix, ref) pair twice must not duplicate the ref in Lookup's
// result, so installer restarts after a crash-during-flush never
// corrupt the index.
type Store interface {
	// BeginTx starts a write transaction. All Add calls until the
	// matching Commit or Rollback are part of the same unit of work.
	BeginTx(ctx context.Context) error

	// Add records that prefix occurs at ref. Must only be called
	// between BeginTx and Commit/Rollback.
	Add(ctx context.Context, prefix string, ref int64) error

	// Commit finalizes the current write transaction.
	Commit(ctx context.Context) error

	// Rollback discards the current write transaction.
	Rollback(ctx context.Context) error

	// Lookup returns every ref recorded under any stored key that
	// prefix is itself a prefix of (e.g. prefix "HAUS" matches stored
	// keys "HAUS" and "HAUSA"), in ascending order, with no duplicates.
	// This is a prefix-range match, not an exact-key match: a stored
	// key is a corpus word cropped to DEPTH, so a query keyword shorter
	// than the matched word must still find it.
	Lookup(ctx context.Context, prefix string) ([]int64, error)

	// Close releases the underlying resources.
	Close() error
}
