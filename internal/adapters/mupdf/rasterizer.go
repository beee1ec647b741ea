package mupdf

import (
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

// Rasterizer implements ports.Rasterizer with mutool draw
type Rasterizer struct {
	dpi int
}

// Ensure Rasterizer implements Rasterizer
var _ ports.Rasterizer = (*Rasterizer)(nil)

// NewRasterizer creates a mutool rasterizer
func NewRasterizer(dpi int) *Rasterizer {
	return &Rasterizer{dpi: dpi}
}

// DPI returns the render resolution
func (r *Rasterizer) DPI() int {
	return r.dpi
}

// Rasterize renders one page to PNG bytes
func (r *Rasterizer) Rasterize(ctx context.Context, path string, page int) ([]byte, error) {
	if _, err := exec.LookPath("mutool"); err != nil {
		return nil, fmt.Errorf("%w: mutool not found", application.ErrNoBackend)
	}

	dir, err := os.MkdirTemp("", "pdflens-mutool-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create render directory: %w", err)
	}
	defer os.RemoveAll(dir)

	out := filepath.Join(dir, "page.png")
	cmd := exec.CommandContext(ctx, "mutool", Args(path, page, r.dpi, out)...)
	if _, err := cmd.Output(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("mutool error: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("mutool error: %w", err)
	}

	return os.ReadFile(out)
}

// Args builds the mutool draw command line for one page
func Args(path string, page, dpi int, out string) []string {
	return []string{"draw", "-q", "-r", strconv.Itoa(dpi), "-F", "png", "-o", out, path, strconv.Itoa(page)}
}
