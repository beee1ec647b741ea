package sqlite

import (
	"context"
	"log/slog"

	"pdflens/internal/logging"
	"pdflens/internal/ports"
)

// CachedExtractor serves page text from the catalog and extracts on a miss.
// Entries are keyed by fingerprint, so an edited file is extracted again.
type CachedExtractor struct {
	catalog     ports.Catalog
	inner       ports.TextExtractor
	fingerprint ports.Fingerprinter
	log         *slog.Logger
}

// Ensure CachedExtractor implements TextExtractor
var _ ports.TextExtractor = (*CachedExtractor)(nil)

// NewCachedExtractor wraps inner with a catalog-backed text cache
func NewCachedExtractor(catalog ports.Catalog, inner ports.TextExtractor, fp ports.Fingerprinter) *CachedExtractor {
	return &CachedExtractor{
		catalog:     catalog,
		inner:       inner,
		fingerprint: fp,
		log:         logging.For(logging.CompCatalog),
	}
}

// ExtractPages returns cached text when the fingerprint is known
func (e *CachedExtractor) ExtractPages(ctx context.Context, path string) ([]string, error) {
	fp, err := e.fingerprint.Fingerprint(path)
	if err != nil {
		return nil, err
	}

	pages, ok, err := e.catalog.LoadPages(fp)
	if err != nil {
		e.log.Warn("catalog read failed", "path", path, "error", err)
	}
	if ok {
		return pages, nil
	}

	pages, err = e.inner.ExtractPages(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := e.catalog.StorePages(path, fp, pages); err != nil {
		// the text is still usable for this session
		e.log.Warn("catalog write failed", "path", path, "error", err)
	} else {
		e.log.Debug("pages cataloged", "path", path, "pages", len(pages))
	}
	return pages, nil
}
