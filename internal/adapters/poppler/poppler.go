// Package poppler drives the poppler-utils command line tools:
// pdfinfo for page counts, pdftotext for text and pdftoppm for page images.
package poppler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"pdflens/internal/application"
	"pdflens/internal/ports"
)

// DefaultDPI is the render resolution when none is configured
const DefaultDPI = 110

// Extractor implements ports.TextExtractor with pdfinfo and pdftotext
type Extractor struct {
	layout bool
}

// Ensure Extractor implements TextExtractor
var _ ports.TextExtractor = (*Extractor)(nil)

// NewExtractor creates a poppler text extractor
func NewExtractor() *Extractor {
	return &Extractor{layout: true}
}

// ExtractPages returns one text block per page. A page count that disagrees
// with pdfinfo means the form feeds cannot be trusted, so the document fails.
func (e *Extractor) ExtractPages(ctx context.Context, path string) ([]string, error) {
	if err := requireTools("pdfinfo", "pdftotext"); err != nil {
		return nil, err
	}

	info, err := run(ctx, "pdfinfo", path)
	if err != nil {
		return nil, &application.ExtractionError{Path: path, Reason: err.Error()}
	}
	count, err := ParsePageCount(info)
	if err != nil {
		return nil, &application.ExtractionError{Path: path, Reason: err.Error()}
	}

	args := []string{"-enc", "UTF-8"}
	if e.layout {
		args = append(args, "-layout")
	}
	text, err := run(ctx, "pdftotext", append(args, path, "-")...)
	if err != nil {
		return nil, &application.ExtractionError{Path: path, Reason: err.Error()}
	}

	pages, err := SplitPages(text, count)
	if err != nil {
		return nil, &application.ExtractionError{Path: path, Reason: err.Error()}
	}
	return pages, nil
}

// ParsePageCount reads the "Pages:" line of pdfinfo output
func ParsePageCount(info string) (int, error) {
	scanner := bufio.NewScanner(strings.NewReader(info))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok || strings.TrimSpace(key) != "Pages" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, fmt.Errorf("invalid page count %q", strings.TrimSpace(value))
		}
		if n < 1 {
			return 0, errors.New("document has no pages")
		}
		return n, nil
	}
	return 0, errors.New("pdfinfo reported no page count")
}

// SplitPages splits pdftotext output on form feeds. pdftotext ends every page
// with a form feed, so the trailing empty segment is dropped.
func SplitPages(text string, count int) ([]string, error) {
	pages := strings.Split(text, "\f")
	if len(pages) == count+1 && pages[count] == "" {
		pages = pages[:count]
	}
	if len(pages) != count {
		return nil, fmt.Errorf("pdftotext produced %d pages, pdfinfo reports %d", len(pages), count)
	}
	return pages, nil
}

// Rasterizer implements ports.Rasterizer with pdftoppm
type Rasterizer struct {
	dpi int
}

// Ensure Rasterizer implements Rasterizer
var _ ports.Rasterizer = (*Rasterizer)(nil)

// NewRasterizer creates a pdftoppm rasterizer. dpi <= 0 selects DefaultDPI.
func NewRasterizer(dpi int) *Rasterizer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Rasterizer{dpi: dpi}
}

// DPI returns the render resolution
func (r *Rasterizer) DPI() int {
	return r.dpi
}

// Rasterize renders one page to PNG bytes
func (r *Rasterizer) Rasterize(ctx context.Context, path string, page int) ([]byte, error) {
	if err := requireTools("pdftoppm"); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "pdflens-render-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create render directory: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	if _, err := run(ctx, "pdftoppm", RasterizeArgs(path, page, r.dpi, prefix)...); err != nil {
		return nil, err
	}

	// -singlefile writes <prefix>.png without a page suffix
	return os.ReadFile(prefix + ".png")
}

// RasterizeArgs builds the pdftoppm command line for one page
func RasterizeArgs(path string, page, dpi int, prefix string) []string {
	p := strconv.Itoa(page)
	return []string{"-f", p, "-l", p, "-r", strconv.Itoa(dpi), "-png", "-singlefile", path, prefix}
}

func requireTools(names ...string) error {
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			return fmt.Errorf("%w: %s not found", application.ErrNoBackend, name)
		}
	}
	return nil
}

func run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%s error: %s", name, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("%s error: %w", name, err)
	}
	return string(output), nil
}
