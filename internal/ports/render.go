package ports

import (
	"context"

	"pdflens/internal/domain"
)

// Rasterizer renders one 1-based page of a document to image bytes
type Rasterizer interface {
	Rasterize(ctx context.Context, path string, page int) ([]byte, error)

	// DPI returns the resolution the rasterizer renders at
	DPI() int
}

// PageStore is a persistent key to bytes store for rendered pages.
// Keys are produced by domain.CacheKey.String.
type PageStore interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, data []byte) error

	// Evict removes every entry stored under a fingerprint
	Evict(fp domain.Fingerprint) error
}

// ImageDisplay converts a page image into terminal output sized to a cell box
type ImageDisplay interface {
	Render(ctx context.Context, img domain.PageImage, width, height int) (string, error)

	// Name identifies the display backend in use
	Name() string
}

// StoreUsage summarizes a page store's contents
type StoreUsage struct {
	Documents int
	Pages     int
	Bytes     int64
}

// ManagedPageStore is a PageStore that can be listed and emptied
type ManagedPageStore interface {
	PageStore

	Fingerprints() ([]domain.Fingerprint, error)
	Usage() (StoreUsage, error)
	Clear() error
}
