// Package logging configures the process-wide slog logger.
// The terminal belongs to the TUI, so records only go to a file, or nowhere.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
)

// Component names used as the "component" attribute
const (
	CompSearch  = "search"
	CompExtract = "extract"
	CompRender  = "render"
	CompCatalog = "catalog"
	CompTUI     = "tui"
	CompMCP     = "mcp"
)

var base atomic.Pointer[slog.Logger]

func init() {
	base.Store(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// Setup points the logger at path. An empty path discards all records.
// The returned closer must be called on exit.
func Setup(path string, debug bool) (io.Closer, error) {
	if path == "" {
		base.Store(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	base.Store(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
	return f, nil
}

// For returns a logger tagged with a component name
func For(component string) *slog.Logger {
	return base.Load().With("component", component)
}
