package commands

import (
	"context"
	"fmt"
	"unicode/utf8"

	"pdflens/internal/application"
	"pdflens/internal/domain"
	"pdflens/internal/ports"
)

// PageInfo describes one extracted page
type PageInfo struct {
	Page  int
	Runes int
	Text  string
}

// PagesResult contains the extracted pages of a document
type PagesResult struct {
	Document domain.Document
	Pages    []PageInfo
}

// PagesCommand extracts the per-page text of one document
type PagesCommand struct {
	extractor   ports.TextExtractor
	fingerprint ports.Fingerprinter
	Path        string
}

// NewPagesCommand creates a new PagesCommand
func NewPagesCommand(extractor ports.TextExtractor, fp ports.Fingerprinter, path string) *PagesCommand {
	return &PagesCommand{
		extractor:   extractor,
		fingerprint: fp,
		Path:        path,
	}
}

// Execute runs the pages command
func (c *PagesCommand) Execute(ctx context.Context) (*PagesResult, error) {
	if err := application.ValidateRequired("filePath", c.Path); err != nil {
		return nil, err
	}

	fp, err := c.fingerprint.Fingerprint(c.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", application.ErrNotFound, c.Path)
	}

	texts, err := c.extractor.ExtractPages(ctx, c.Path)
	if err != nil {
		return nil, err
	}

	result := &PagesResult{
		Document: domain.Document{Path: c.Path, Fingerprint: fp, PageCount: len(texts)},
		Pages:    make([]PageInfo, len(texts)),
	}
	for i, text := range texts {
		result.Pages[i] = PageInfo{Page: i + 1, Runes: utf8.RuneCountInString(text), Text: text}
	}
	return result, nil
}

// Page returns the text of a 1-based page
func (r *PagesResult) Page(page int) (PageInfo, error) {
	if err := application.ValidatePage(page, len(r.Pages)); err != nil {
		return PageInfo{}, err
	}
	if len(r.Pages) == 0 {
		return PageInfo{Page: 1}, nil
	}
	return r.Pages[page-1], nil
}
