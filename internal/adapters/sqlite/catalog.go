package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pdflens/internal/domain"
	"pdflens/internal/ports"

	_ "github.com/mattn/go-sqlite3"
)

const schemaVersion = "1"

// DatabaseName is the catalog file name inside the cache directory
const DatabaseName = "catalog.db"

// Catalog implements ports.Catalog using SQLite
type Catalog struct {
	db     *sql.DB
	dbPath string
}

// Ensure Catalog implements Catalog
var _ ports.Catalog = (*Catalog)(nil)

// NewCatalog creates a new SQLite catalog
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Open initializes the catalog inside the given cache directory
func (c *Catalog) Open(dir string) error {
	// Expand ~ in path
	if len(dir) > 0 && dir[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, dir[1:])
	}

	c.dbPath = filepath.Join(dir, DatabaseName)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	// WAL lets the TUI read while background extraction writes
	db, err := sql.Open("sqlite3", c.dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	c.db = db

	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA cache_size = -64000;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to setup database: %w", err)
	}

	if c.needsRebuild() {
		if err := c.rebuild(); err != nil {
			db.Close()
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (c *Catalog) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Path returns the database file path
func (c *Catalog) Path() string {
	return c.dbPath
}

// needsRebuild returns true if the schema on disk is missing or from another version
func (c *Catalog) needsRebuild() bool {
	var version string
	c.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&version)
	return version != schemaVersion
}

// rebuild drops and recreates the data tables. Cached text is disposable.
func (c *Catalog) rebuild() error {
	_, err := c.db.Exec(`
		DROP TABLE IF EXISTS pages;
		DROP TABLE IF EXISTS documents;

		CREATE TABLE documents (
			path TEXT PRIMARY KEY,
			fingerprint TEXT NOT NULL,
			page_count INTEGER NOT NULL,
			indexed_at INTEGER NOT NULL
		);
		CREATE TABLE pages (
			fingerprint TEXT NOT NULL,
			page INTEGER NOT NULL,
			text TEXT NOT NULL,
			PRIMARY KEY (fingerprint, page)
		);
		CREATE INDEX idx_documents_fingerprint ON documents(fingerprint);

		INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?);
	`, schemaVersion)
	return err
}

// LoadPages returns the cached page texts of a fingerprint, in page order
func (c *Catalog) LoadPages(fp domain.Fingerprint) ([]string, bool, error) {
	var count int
	err := c.db.QueryRow(`
		SELECT page_count FROM documents WHERE fingerprint = ? LIMIT 1
	`, string(fp)).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	rows, err := c.db.Query(`
		SELECT page, text FROM pages WHERE fingerprint = ? ORDER BY page
	`, string(fp))
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	pages := make([]string, 0, count)
	for rows.Next() {
		var page int
		var text string
		if err := rows.Scan(&page, &text); err != nil {
			return nil, false, err
		}
		pages = append(pages, text)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	// a partial row set is treated as a miss and rewritten by the caller
	if len(pages) != count {
		return nil, false, nil
	}
	return pages, true, nil
}

// StorePages replaces the cached text of a document
func (c *Catalog) StorePages(path string, fp domain.Fingerprint, pages []string) error {
	tx, err := c.beginTx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	old, err := tx.fingerprintOf(path)
	if err != nil {
		return err
	}
	if old != "" && old != fp {
		if err := tx.deleteDocument(path); err != nil {
			return err
		}
		if err := tx.deleteOrphanPages(old); err != nil {
			return err
		}
	}

	if err := tx.upsertDocument(path, fp, len(pages), time.Now()); err != nil {
		return err
	}
	if err := tx.replacePages(fp, pages); err != nil {
		return err
	}

	return tx.Commit()
}

// ListDocuments returns every cataloged document ordered by path
func (c *Catalog) ListDocuments() ([]ports.CatalogDocument, error) {
	rows, err := c.db.Query(`
		SELECT path, fingerprint, page_count, indexed_at
		FROM documents ORDER BY path
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []ports.CatalogDocument
	for rows.Next() {
		var d ports.CatalogDocument
		var fp string
		var indexedAt int64
		if err := rows.Scan(&d.Path, &fp, &d.PageCount, &indexedAt); err != nil {
			return nil, err
		}
		d.Fingerprint = domain.Fingerprint(fp)
		d.IndexedAt = time.Unix(indexedAt, 0)
		docs = append(docs, d)
	}

	return docs, rows.Err()
}

// DeleteDocument removes a document and any page text no other path shares
func (c *Catalog) DeleteDocument(path string) error {
	tx, err := c.beginTx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	fp, err := tx.fingerprintOf(path)
	if err != nil {
		return err
	}
	if fp == "" {
		return nil
	}
	if err := tx.deleteDocument(path); err != nil {
		return err
	}
	if err := tx.deleteOrphanPages(fp); err != nil {
		return err
	}

	return tx.Commit()
}

// Stats summarizes the catalog contents
func (c *Catalog) Stats() (ports.CatalogStats, error) {
	var stats ports.CatalogStats

	if err := c.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&stats.Documents); err != nil {
		return stats, err
	}
	err := c.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(LENGTH(CAST(text AS BLOB))), 0) FROM pages
	`).Scan(&stats.Pages, &stats.TextBytes)
	return stats, err
}

// Clear removes all cached documents and text
func (c *Catalog) Clear() error {
	_, err := c.db.Exec(`
		DELETE FROM pages;
		DELETE FROM documents;
	`)
	return err
}
