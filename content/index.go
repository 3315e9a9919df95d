package content

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Index is the SQLite-backed content index. One row binds a slug to its
// content file and is also the slug's entry in the post collection, so the
// two can never drift apart.
type Index struct {
	db *sql.DB
}

// OpenIndex opens (or creates) the index database at path, ensures the data
// directory exists, and runs schema migrations.
func OpenIndex(path string) (*Index, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL plus a busy timeout lets the CLI read while the server writes.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(1)
	idx := &Index{db: db}
	if err := idx.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

// Close closes the underlying database connection.
func (i *Index) Close() error {
	return i.db.Close()
}

func (i *Index) ensureSchema() error {
	_, err := i.db.Exec(`
CREATE TABLE IF NOT EXISTS post_index (
    slug TEXT PRIMARY KEY,
    component TEXT NOT NULL UNIQUE,
    frontmatter_ref TEXT NOT NULL UNIQUE,
    source TEXT NOT NULL,
    position INTEGER NOT NULL,
    created_at TEXT NOT NULL
);
`)
	return err
}

// Add inserts the entry for slug at the head of the collection.
func (i *Index) Add(ctx context.Context, slug string) (Entry, error) {
	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, err
	}
	defer tx.Rollback()

	var position int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) + 1 FROM post_index`).Scan(&position); err != nil {
		return Entry{}, err
	}
	e := Entry{
		Slug:           slug,
		Component:      ComponentName(slug),
		FrontmatterRef: FrontmatterName(slug),
		Source:         FileName(slug),
		Position:       position,
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO post_index (slug, component, frontmatter_ref, source, position, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Slug, e.Component, e.FrontmatterRef, e.Source, e.Position, e.CreatedAt.Format(time.RFC3339)); err != nil {
		return Entry{}, fmt.Errorf("insert %s: %w", slug, err)
	}
	if err := tx.Commit(); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Remove deletes the entry for slug. Removing a slug that has no entry is
// not an error.
func (i *Index) Remove(ctx context.Context, slug string) error {
	_, err := i.db.ExecContext(ctx, `DELETE FROM post_index WHERE slug = ? AND component = ? AND frontmatter_ref = ?`,
		slug, ComponentName(slug), FrontmatterName(slug))
	return err
}

// Has reports whether slug has an entry.
func (i *Index) Has(ctx context.Context, slug string) (bool, error) {
	var n int
	if err := i.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM post_index WHERE slug = ?`, slug).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Entries returns every entry, most recently added first.
func (i *Index) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := i.db.QueryContext(ctx, `SELECT slug, component, frontmatter_ref, source, position, created_at FROM post_index ORDER BY position DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.Slug, &e.Component, &e.FrontmatterRef, &e.Source, &e.Position, &created); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
