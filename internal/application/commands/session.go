package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"pdflens/internal/application"
	"pdflens/internal/domain"
	"pdflens/internal/logging"
	"pdflens/internal/ports"
)

// DefaultConcurrency bounds how many documents are extracted at once
const DefaultConcurrency = 4

// TextSearcher implements ports.SearchBackend on top of a candidate finder and a text extractor.
// Hits carry offsets into the concatenation of the document's pages.
type TextSearcher struct {
	finder      ports.CandidateFinder
	extractor   ports.TextExtractor
	fingerprint ports.Fingerprinter
	regex       bool
	concurrency int
	log         *slog.Logger
}

// Ensure TextSearcher implements SearchBackend
var _ ports.SearchBackend = (*TextSearcher)(nil)

// NewTextSearcher creates a searcher. concurrency <= 0 selects DefaultConcurrency.
func NewTextSearcher(finder ports.CandidateFinder, extractor ports.TextExtractor, fp ports.Fingerprinter, regex bool, concurrency int) *TextSearcher {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &TextSearcher{
		finder:      finder,
		extractor:   extractor,
		fingerprint: fp,
		regex:       regex,
		concurrency: concurrency,
		log:         logging.For(logging.CompSearch),
	}
}

type searchResult struct {
	doc  domain.Document
	hits []domain.RawHit
}

// Search lists candidates, extracts each one and collects hits in candidate order
func (s *TextSearcher) Search(ctx context.Context, term, root string) ([]domain.Document, map[string][]domain.RawHit, error) {
	matcher, err := NewMatcher(term, s.regex)
	if err != nil {
		return nil, nil, err
	}

	candidates, err := s.finder.FindCandidates(ctx, term, root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find candidates: %w", err)
	}
	s.log.Debug("candidates found", "count", len(candidates), "root", root)

	results := make([]searchResult, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, path := range candidates {
		g.Go(func() error {
			res, err := s.searchDocument(gctx, matcher, path)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				// one unreadable document must not abort the session
				s.log.Warn("skipping document", "path", path, "error", err)
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var docs []domain.Document
	hits := make(map[string][]domain.RawHit)
	for _, res := range results {
		if len(res.hits) == 0 {
			continue
		}
		docs = append(docs, res.doc)
		hits[res.doc.Path] = res.hits
	}
	return docs, hits, nil
}

func (s *TextSearcher) searchDocument(ctx context.Context, matcher *Matcher, path string) (searchResult, error) {
	fp, err := s.fingerprint.Fingerprint(path)
	if err != nil {
		return searchResult{}, err
	}

	pages, err := s.extractor.ExtractPages(ctx, path)
	if err != nil {
		return searchResult{}, err
	}

	mapper := domain.NewPageMapper(pages)
	var hits []domain.RawHit
	for i, text := range pages {
		start, _ := mapper.PageStart(i + 1)
		for _, r := range matcher.FindAll(text) {
			hits = append(hits, domain.RawHit{
				Offset:  start + r[0],
				Snippet: Snippet(text, r[0], r[1], DefaultSnippetRadius),
			})
		}
	}

	return searchResult{
		doc:  domain.Document{Path: path, Fingerprint: fp, PageCount: len(pages)},
		hits: hits,
	}, nil
}

// SessionResult is the outcome of building a search session
type SessionResult struct {
	Index      *domain.SessionIndex
	Exclusions []domain.Exclusion
	Duration   time.Duration
}

// BuildSessionCommand searches a directory and builds the page-aware session index
type BuildSessionCommand struct {
	backend     ports.SearchBackend
	extractor   ports.TextExtractor
	fingerprint ports.Fingerprinter
	Query       string
	Root        string
}

// NewBuildSessionCommand creates a new BuildSessionCommand
func NewBuildSessionCommand(backend ports.SearchBackend, extractor ports.TextExtractor, fp ports.Fingerprinter, query, root string) *BuildSessionCommand {
	return &BuildSessionCommand{
		backend:     backend,
		extractor:   extractor,
		fingerprint: fp,
		Query:       query,
		Root:        root,
	}
}

// Execute runs the search and resolves every hit to a page.
// An empty result is not an error.
func (c *BuildSessionCommand) Execute(ctx context.Context) (*SessionResult, error) {
	if err := application.ValidateRequired("query", c.Query); err != nil {
		return nil, err
	}

	start := time.Now()
	docs, hits, err := c.backend.Search(ctx, c.Query, c.Root)
	if err != nil {
		return nil, err
	}

	factory := func(doc domain.Document) (*domain.PageMapper, error) {
		pages, err := c.extractor.ExtractPages(ctx, doc.Path)
		if err != nil {
			return nil, err
		}
		// hit offsets are only valid against the text they were found in
		if err := c.checkUnchanged(doc); err != nil {
			return nil, err
		}
		return domain.NewPageMapper(pages), nil
	}

	idx, excluded := domain.BuildSessionIndex(docs, hits, factory)

	log := logging.For(logging.CompSearch)
	for _, ex := range excluded {
		log.Warn("document excluded", "path", ex.Path, "reason", ex.Reason)
	}
	log.Info("session built",
		"query", c.Query,
		"documents", idx.Len(),
		"matches", idx.TotalMatches(),
		"excluded", len(excluded),
	)

	return &SessionResult{
		Index:      idx,
		Exclusions: excluded,
		Duration:   time.Since(start),
	}, nil
}

// checkUnchanged fails with domain.ErrDocumentChanged when the document's current
// fingerprint differs from the one recorded at search time
func (c *BuildSessionCommand) checkUnchanged(doc domain.Document) error {
	if c.fingerprint == nil || doc.Fingerprint == "" {
		return nil
	}
	fp, err := c.fingerprint.Fingerprint(doc.Path)
	if err != nil {
		return fmt.Errorf("failed to fingerprint %s: %w", doc.Path, err)
	}
	if fp != doc.Fingerprint {
		return fmt.Errorf("%w: %s -> %s", domain.ErrDocumentChanged, doc.Fingerprint.Short(), fp.Short())
	}
	return nil
}
