// Package chain composes adapters of one port into ordered fallbacks.
package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"pdflens/internal/application"
	"pdflens/internal/domain"
	"pdflens/internal/logging"
	"pdflens/internal/ports"
)

// Finders tries candidate finders in order, moving on only when one is unavailable
type Finders []ports.CandidateFinder

// Ensure Finders implements CandidateFinder
var _ ports.CandidateFinder = Finders(nil)

// FindCandidates returns the first available finder's result
func (c Finders) FindCandidates(ctx context.Context, term, root string) ([]string, error) {
	for _, f := range c {
		paths, err := f.FindCandidates(ctx, term, root)
		if errors.Is(err, application.ErrNoBackend) {
			continue
		}
		return paths, err
	}
	return nil, fmt.Errorf("%w: no candidate finder", application.ErrNoBackend)
}

// Extractors tries text extractors in order until one succeeds
type Extractors []ports.TextExtractor

// Ensure Extractors implements TextExtractor
var _ ports.TextExtractor = Extractors(nil)

// ExtractPages returns the first successful extraction, or the last error
func (c Extractors) ExtractPages(ctx context.Context, path string) ([]string, error) {
	log := logging.For(logging.CompExtract)
	err := fmt.Errorf("%w: no text extractor", application.ErrNoBackend)
	for i, e := range c {
		var pages []string
		pages, err = e.ExtractPages(ctx, path)
		if err == nil {
			return pages, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Debug("extractor failed", "path", path, "extractor", i, "error", err)
	}
	return nil, err
}

// Rasterizers tries rasterizers in order until one produces an image.
// All members must render at the same DPI; the first one's is reported.
type Rasterizers []ports.Rasterizer

// Ensure Rasterizers implements Rasterizer
var _ ports.Rasterizer = Rasterizers(nil)

// Rasterize returns the first non-empty render, or the last error
func (c Rasterizers) Rasterize(ctx context.Context, path string, page int) ([]byte, error) {
	log := logging.For(logging.CompRender)
	err := fmt.Errorf("%w: no rasterizer", application.ErrNoBackend)
	for i, r := range c {
		var data []byte
		data, err = r.Rasterize(ctx, path, page)
		if err == nil && len(data) > 0 {
			return data, nil
		}
		if err == nil {
			err = errors.New("rasterizer produced no output")
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Debug("rasterizer failed", "path", path, "page", page, "rasterizer", i, "error", err)
	}
	return nil, err
}

// DPI returns the resolution of the first rasterizer
func (c Rasterizers) DPI() int {
	if len(c) == 0 {
		return 0
	}
	return c[0].DPI()
}

// Memo remembers extractions for the lifetime of a session, keyed by fingerprint,
// so search and page mapping do not extract a document twice.
type Memo struct {
	inner       ports.TextExtractor
	fingerprint ports.Fingerprinter
	log         *slog.Logger

	mu    sync.Mutex
	pages map[domain.Fingerprint][]string
}

// Ensure Memo implements TextExtractor
var _ ports.TextExtractor = (*Memo)(nil)

// NewMemo wraps an extractor with an in-memory memo
func NewMemo(inner ports.TextExtractor, fp ports.Fingerprinter) *Memo {
	return &Memo{
		inner:       inner,
		fingerprint: fp,
		log:         logging.For(logging.CompExtract),
		pages:       make(map[domain.Fingerprint][]string),
	}
}

// ExtractPages returns memoized pages for an unchanged document
func (m *Memo) ExtractPages(ctx context.Context, path string) ([]string, error) {
	fp, err := m.fingerprint.Fingerprint(path)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	pages, ok := m.pages[fp]
	m.mu.Unlock()
	if ok {
		return pages, nil
	}

	pages, err = m.inner.ExtractPages(ctx, path)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.pages[fp] = pages
	m.mu.Unlock()
	return pages, nil
}
