package ports

import (
	"time"

	"pdflens/internal/domain"
)

// CatalogDocument is the persisted metadata of an extracted document
type CatalogDocument struct {
	Path        string
	Fingerprint domain.Fingerprint
	PageCount   int
	IndexedAt   time.Time
}

// CatalogStats summarizes catalog contents
type CatalogStats struct {
	Documents int
	Pages     int
	TextBytes int64
}

// Catalog persists per-page extracted text keyed by document fingerprint,
// so unchanged documents are not re-extracted across sessions.
type Catalog interface {
	// Lifecycle
	Open(dir string) error
	Close() error

	// Text cache
	LoadPages(fp domain.Fingerprint) ([]string, bool, error)
	StorePages(path string, fp domain.Fingerprint, pages []string) error

	// Maintenance
	ListDocuments() ([]CatalogDocument, error)
	DeleteDocument(path string) error
	Stats() (CatalogStats, error)
	Clear() error
}
