// Package render caches rasterized PDF pages by document fingerprint and page number.
//
// A page image is only served while the document's fingerprint is unchanged; the
// fingerprint is recomputed on every access, so a document edited on disk gets
// fresh renders under its new fingerprint and the old entries are evicted.
// Concurrent requests for one key share a single rasterization.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"

	"pdflens/internal/application"
	"pdflens/internal/domain"
	"pdflens/internal/logging"
	"pdflens/internal/ports"
)

// Stats counts cache activity since construction
type Stats struct {
	Hits      int
	Misses    int
	Renders   int
	Failures  int
	Evictions int
}

// Cache is a fingerprint-keyed render cache in front of a Rasterizer
type Cache struct {
	store       ports.PageStore
	fingerprint ports.Fingerprinter
	rasterizer  ports.Rasterizer
	log         *slog.Logger

	flights singleflight.Group

	mu    sync.Mutex
	seen  map[string]domain.Fingerprint // last fingerprint observed per path
	stats Stats
}

// NewCache creates a render cache
func NewCache(store ports.PageStore, fp ports.Fingerprinter, rasterizer ports.Rasterizer) *Cache {
	return &Cache{
		store:       store,
		fingerprint: fp,
		rasterizer:  rasterizer,
		log:         logging.For(logging.CompRender),
		seen:        make(map[string]domain.Fingerprint),
	}
}

// Get returns the image of a 1-based page, rendering it on a miss
func (c *Cache) Get(ctx context.Context, doc domain.Document, page int) (domain.PageImage, error) {
	if page < 1 || page > doc.NavigablePages() {
		return domain.PageImage{}, fmt.Errorf("%w: %d of %d", domain.ErrPageOutOfRange, page, doc.NavigablePages())
	}

	fp, err := c.fingerprint.Fingerprint(doc.Path)
	if err != nil {
		return domain.PageImage{}, &application.RenderError{Path: doc.Path, Page: page, Err: err}
	}
	c.observe(doc.Path, fp)

	key := domain.CacheKey{Fingerprint: fp, Page: page}

	data, ok, err := c.store.Get(key.String())
	if err != nil {
		// an unreadable entry is treated as a miss and overwritten
		c.log.Warn("page store read failed", "key", key.String(), "error", err)
	}
	if ok {
		c.count(func(s *Stats) { s.Hits++ })
		return c.image(key, data), nil
	}
	c.count(func(s *Stats) { s.Misses++ })

	// the render outlives an abandoning caller so a waiting second caller still gets it
	flightCtx := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(key.String(), func() (any, error) {
		return c.render(flightCtx, doc.Path, key)
	})

	select {
	case <-ctx.Done():
		return domain.PageImage{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.PageImage{}, res.Err
		}
		return c.image(key, res.Val.([]byte)), nil
	}
}

func (c *Cache) render(ctx context.Context, path string, key domain.CacheKey) ([]byte, error) {
	// a flight that started just after another one finished finds the entry already stored
	if data, ok, err := c.store.Get(key.String()); err == nil && ok {
		return data, nil
	}

	c.count(func(s *Stats) { s.Renders++ })
	data, err := c.rasterizer.Rasterize(ctx, path, key.Page)
	if err == nil && len(data) == 0 {
		err = errors.New("rasterizer produced no output")
	}
	if err != nil {
		c.count(func(s *Stats) { s.Failures++ })
		c.log.Warn("render failed", "path", path, "page", key.Page, "error", err)
		return nil, &application.RenderError{Path: path, Page: key.Page, Err: err}
	}

	if err := c.store.Put(key.String(), data); err != nil {
		// the image is still good for this caller
		c.log.Warn("page store write failed", "key", key.String(), "error", err)
	}
	c.log.Debug("page rendered", "path", path, "page", key.Page, "bytes", len(data))
	return data, nil
}

// observe records the fingerprint for a path and evicts entries of a previous one.
// Identical files share a content fingerprint, so the old entries stay while another
// tracked path still maps to them.
func (c *Cache) observe(path string, fp domain.Fingerprint) {
	c.mu.Lock()
	old, known := c.seen[path]
	c.seen[path] = fp
	shared := false
	for other, ofp := range c.seen {
		if other != path && ofp == old {
			shared = true
			break
		}
	}
	c.mu.Unlock()

	if !known || old == fp {
		return
	}
	if shared {
		c.log.Info("document changed on disk", "path", path, "old", old.Short(), "new", fp.Short(), "shared", true)
		return
	}

	c.log.Info("document changed on disk", "path", path, "old", old.Short(), "new", fp.Short())
	if err := c.store.Evict(old); err != nil {
		c.log.Warn("eviction failed", "fingerprint", old.Short(), "error", err)
		return
	}
	c.count(func(s *Stats) { s.Evictions++ })
}

func (c *Cache) image(key domain.CacheKey, data []byte) domain.PageImage {
	return domain.PageImage{
		Key:    key,
		Data:   data,
		Format: http.DetectContentType(data),
		DPI:    c.rasterizer.DPI(),
	}
}

func (c *Cache) count(update func(*Stats)) {
	c.mu.Lock()
	update(&c.stats)
	c.mu.Unlock()
}

// Stats returns a snapshot of the cache counters
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
