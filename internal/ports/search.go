package ports

import (
	"context"

	"pdflens/internal/domain"
)

// CandidateFinder lists PDF files under a root that may contain a term
type CandidateFinder interface {
	// FindCandidates returns absolute paths in a stable (sorted) order
	FindCandidates(ctx context.Context, term, root string) ([]string, error)
}

// TextExtractor returns the plain text of a document, one block per page.
// An error means the document cannot be page-mapped and must be left out.
type TextExtractor interface {
	ExtractPages(ctx context.Context, path string) ([]string, error)
}

// SearchBackend finds raw hits for a term under a root directory.
// Only documents with at least one hit are returned.
type SearchBackend interface {
	Search(ctx context.Context, term, root string) ([]domain.Document, map[string][]domain.RawHit, error)
}

// Fingerprinter derives the current content fingerprint of a document
type Fingerprinter interface {
	Fingerprint(path string) (domain.Fingerprint, error)
}
