// Package bootstrap assembles the adapters behind the pdflens binaries.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"pdflens/internal/adapters/chain"
	"pdflens/internal/adapters/filesystem"
	"pdflens/internal/adapters/mupdf"
	"pdflens/internal/adapters/pdftext"
	"pdflens/internal/adapters/poppler"
	"pdflens/internal/adapters/rga"
	"pdflens/internal/adapters/sqlite"
	"pdflens/internal/application"
	"pdflens/internal/application/commands"
	"pdflens/internal/application/render"
	"pdflens/internal/config"
	"pdflens/internal/domain"
	"pdflens/internal/logging"
	"pdflens/internal/ports"
)

// LogFileName is used under the cache dir when debug is on and no log file is set
const LogFileName = "pdflens.log"

// Stack holds the wired adapters for one process
type Stack struct {
	Config      config.Config
	Snap        domain.SnapPolicy
	Fingerprint ports.Fingerprinter
	Catalog     *sqlite.Catalog
	Extractor   ports.TextExtractor
	Store       *filesystem.PageStore
	Rasterizer  ports.Rasterizer
	Render      *render.Cache

	logCloser io.Closer
}

// New configures logging and opens the catalog and page store for cfg
func New(cfg config.Config) (*Stack, error) {
	snap, err := domain.ParseSnapPolicy(cfg.Snap)
	if err != nil {
		return nil, err
	}
	fp, err := filesystem.NewFingerprinter(cfg.Fingerprint)
	if err != nil {
		return nil, err
	}

	logFile := cfg.LogFile
	if logFile == "" && cfg.Debug {
		logFile = filepath.Join(cfg.CacheDir, LogFileName)
	}
	closer, err := logging.Setup(logFile, cfg.Debug)
	if err != nil {
		return nil, err
	}

	catalog := sqlite.NewCatalog()
	if err := catalog.Open(cfg.CacheDir); err != nil {
		closer.Close()
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	// poppler keeps the layout; the native reader covers machines without it
	extractor := sqlite.NewCachedExtractor(catalog,
		chain.Extractors{poppler.NewExtractor(), pdftext.NewExtractor()}, fp)

	store := filesystem.NewPageStore(cfg.CacheDir, cfg.DPI)
	rasterizer := chain.Rasterizers{poppler.NewRasterizer(cfg.DPI), mupdf.NewRasterizer(cfg.DPI)}

	logging.For(logging.CompCatalog).Info("stack ready",
		"cache_dir", cfg.CacheDir,
		"config", cfg.Source,
		"fingerprint", cfg.Fingerprint,
		"dpi", cfg.DPI,
	)

	return &Stack{
		Config:      cfg,
		Snap:        snap,
		Fingerprint: fp,
		Catalog:     catalog,
		Extractor:   chain.NewMemo(extractor, fp),
		Store:       store,
		Rasterizer:  rasterizer,
		Render:      render.NewCache(store, fp, rasterizer),
		logCloser:   closer,
	}, nil
}

// Finder returns rga with a directory walk fallback
func (s *Stack) Finder(regex bool) ports.CandidateFinder {
	return chain.Finders{rga.NewFinder(rga.WithRegex(regex)), filesystem.NewWalker()}
}

// Searcher returns the text searcher over the stack's finder and extractor
func (s *Stack) Searcher(regex bool) *commands.TextSearcher {
	return commands.NewTextSearcher(s.Finder(regex), s.Extractor, s.Fingerprint, regex, s.Config.Concurrency)
}

// Session returns the command that builds a search session for query under root
func (s *Stack) Session(query, root string, regex bool) (*commands.BuildSessionCommand, error) {
	abs, err := filesystem.ExpandPath(root)
	if err != nil {
		return nil, err
	}
	if err := application.ValidateSearchRoot("searchRoot", abs); err != nil {
		return nil, err
	}
	return commands.NewBuildSessionCommand(s.Searcher(regex), s.Extractor, s.Fingerprint, query, abs), nil
}

// Pages returns the page text command for path
func (s *Stack) Pages(path string) (*commands.PagesCommand, error) {
	abs, err := filesystem.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	return commands.NewPagesCommand(s.Extractor, s.Fingerprint, abs), nil
}

// Search builds a session and returns its result
func (s *Stack) Search(ctx context.Context, query, root string, regex bool) (*commands.SessionResult, error) {
	cmd, err := s.Session(query, root, regex)
	if err != nil {
		return nil, err
	}
	return cmd.Execute(ctx)
}

// ReadPages extracts the pages of one document
func (s *Stack) ReadPages(ctx context.Context, path string) (*commands.PagesResult, error) {
	cmd, err := s.Pages(path)
	if err != nil {
		return nil, err
	}
	return cmd.Execute(ctx)
}

// Close releases the catalog and the log file
func (s *Stack) Close() error {
	return errors.Join(s.Catalog.Close(), s.logCloser.Close())
}
