// Package pdftext extracts page text in-process with github.com/ledongthuc/pdf.
package pdftext

import (
	"context"
	"fmt"

	pdflib "github.com/ledongthuc/pdf"

	"pdflens/internal/application"
	"pdflens/internal/ports"
)

// Extractor implements ports.TextExtractor without external tools
type Extractor struct{}

// Ensure Extractor implements TextExtractor
var _ ports.TextExtractor = (*Extractor)(nil)

// NewExtractor creates a native PDF text extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractPages returns one text block per page. Any page that cannot be
// decoded fails the whole document, since later offsets would shift.
func (e *Extractor) ExtractPages(ctx context.Context, path string) (pages []string, err error) {
	// the parser panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = &application.ExtractionError{Path: path, Reason: fmt.Sprintf("parser panic: %v", r)}
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, &application.ExtractionError{Path: path, Reason: err.Error()}
	}
	defer f.Close()

	n := reader.NumPage()
	if n < 1 {
		return nil, &application.ExtractionError{Path: path, Reason: "document has no pages"}
	}

	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, &application.ExtractionError{Path: path, Reason: fmt.Sprintf("page %d: %v", i, err)}
		}
		pages = append(pages, text)
	}
	return pages, nil
}
