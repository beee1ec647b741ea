package commands

import (
	"context"
	"fmt"

	"pdflens/internal/domain"
	"pdflens/internal/logging"
	"pdflens/internal/ports"
)

// CacheStats reports the contents of the text catalog and the page store
type CacheStats struct {
	Catalog ports.CatalogStats
	Renders ports.StoreUsage
}

// CacheStatsCommand summarizes cache usage
type CacheStatsCommand struct {
	catalog ports.Catalog
	store   ports.ManagedPageStore
}

// NewCacheStatsCommand creates a new CacheStatsCommand
func NewCacheStatsCommand(catalog ports.Catalog, store ports.ManagedPageStore) *CacheStatsCommand {
	return &CacheStatsCommand{
		catalog: catalog,
		store:   store,
	}
}

// Execute runs the cache stats command
func (c *CacheStatsCommand) Execute(ctx context.Context) (*CacheStats, error) {
	catalogStats, err := c.catalog.Stats()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	usage, err := c.store.Usage()
	if err != nil {
		return nil, fmt.Errorf("failed to read page store: %w", err)
	}
	return &CacheStats{Catalog: catalogStats, Renders: usage}, nil
}

// PruneResult contains the result of a prune operation
type PruneResult struct {
	DocumentsRemoved int
	RendersEvicted   int
	Message          string
}

// PruneCacheCommand drops cached text and renders whose document changed or vanished.
// Renders are kept only for fingerprints of documents still in the catalog.
type PruneCacheCommand struct {
	catalog     ports.Catalog
	store       ports.ManagedPageStore
	fingerprint ports.Fingerprinter
}

// NewPruneCacheCommand creates a new PruneCacheCommand
func NewPruneCacheCommand(catalog ports.Catalog, store ports.ManagedPageStore, fp ports.Fingerprinter) *PruneCacheCommand {
	return &PruneCacheCommand{
		catalog:     catalog,
		store:       store,
		fingerprint: fp,
	}
}

// Execute runs the prune command
func (c *PruneCacheCommand) Execute(ctx context.Context) (*PruneResult, error) {
	log := logging.For(logging.CompCatalog)

	docs, err := c.catalog.ListDocuments()
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}

	result := &PruneResult{}
	live := make(map[domain.Fingerprint]bool)
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current, err := c.fingerprint.Fingerprint(doc.Path)
		if err == nil && current == doc.Fingerprint {
			live[current] = true
			continue
		}

		if err := c.catalog.DeleteDocument(doc.Path); err != nil {
			return nil, fmt.Errorf("failed to delete %s: %w", doc.Path, err)
		}
		log.Info("pruned document", "path", doc.Path, "fingerprint", doc.Fingerprint.Short())
		result.DocumentsRemoved++
	}

	fps, err := c.store.Fingerprints()
	if err != nil {
		return nil, fmt.Errorf("failed to list page store: %w", err)
	}
	for _, fp := range fps {
		if live[fp] {
			continue
		}
		if err := c.store.Evict(fp); err != nil {
			return nil, fmt.Errorf("failed to evict %s: %w", fp.Short(), err)
		}
		result.RendersEvicted++
	}

	result.Message = fmt.Sprintf("Removed %d documents and %d rendered page sets", result.DocumentsRemoved, result.RendersEvicted)
	return result, nil
}

// ClearCacheCommand empties the catalog and the page store
type ClearCacheCommand struct {
	catalog ports.Catalog
	store   ports.ManagedPageStore
}

// NewClearCacheCommand creates a new ClearCacheCommand
func NewClearCacheCommand(catalog ports.Catalog, store ports.ManagedPageStore) *ClearCacheCommand {
	return &ClearCacheCommand{
		catalog: catalog,
		store:   store,
	}
}

// Execute runs the clear command
func (c *ClearCacheCommand) Execute(ctx context.Context) error {
	if err := c.catalog.Clear(); err != nil {
		return fmt.Errorf("failed to clear catalog: %w", err)
	}
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear page store: %w", err)
	}
	return nil
}
