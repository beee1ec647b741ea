package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"pdflens/internal/domain"
)

// catalogTx groups the writes of one catalog update
type catalogTx struct {
	tx *sql.Tx
}

// beginTx starts a new transaction
func (c *Catalog) beginTx() (*catalogTx, error) {
	tx, err := c.db.Begin()
	if err != nil {
		return nil, err
	}
	return &catalogTx{tx: tx}, nil
}

// fingerprintOf returns the stored fingerprint of a path, or "" when unknown
func (t *catalogTx) fingerprintOf(path string) (domain.Fingerprint, error) {
	var fp string
	err := t.tx.QueryRow(`SELECT fingerprint FROM documents WHERE path = ?`, path).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return domain.Fingerprint(fp), err
}

// upsertDocument inserts or updates a document row
func (t *catalogTx) upsertDocument(path string, fp domain.Fingerprint, pageCount int, indexedAt time.Time) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO documents (path, fingerprint, page_count, indexed_at)
		VALUES (?, ?, ?, ?)
	`, path, string(fp), pageCount, indexedAt.Unix())
	return err
}

// deleteDocument removes a document row by path
func (t *catalogTx) deleteDocument(path string) error {
	_, err := t.tx.Exec(`DELETE FROM documents WHERE path = ?`, path)
	return err
}

// replacePages rewrites all page rows of a fingerprint
func (t *catalogTx) replacePages(fp domain.Fingerprint, pages []string) error {
	if _, err := t.tx.Exec(`DELETE FROM pages WHERE fingerprint = ?`, string(fp)); err != nil {
		return err
	}

	stmt, err := t.tx.Prepare(`INSERT INTO pages (fingerprint, page, text) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, text := range pages {
		if _, err := stmt.Exec(string(fp), i+1, text); err != nil {
			return err
		}
	}
	return nil
}

// deleteOrphanPages removes page rows of a fingerprint no document references
func (t *catalogTx) deleteOrphanPages(fp domain.Fingerprint) error {
	_, err := t.tx.Exec(`
		DELETE FROM pages
		WHERE fingerprint = ?
		AND NOT EXISTS (SELECT 1 FROM documents WHERE fingerprint = ?)
	`, string(fp), string(fp))
	return err
}

// Commit commits the transaction
func (t *catalogTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *catalogTx) Rollback() error {
	return t.tx.Rollback()
}
