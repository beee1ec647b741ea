package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pdflens/internal/ports"
)

// Walker implements ports.CandidateFinder by listing every PDF under a root.
// It does not look at content; the text searcher filters by term afterwards.
type Walker struct{}

// Ensure Walker implements CandidateFinder
var _ ports.CandidateFinder = (*Walker)(nil)

// NewWalker creates a new filesystem walker
func NewWalker() *Walker {
	return &Walker{}
}

// FindCandidates returns absolute paths of all PDFs under root, sorted
func (w *Walker) FindCandidates(ctx context.Context, _ string, root string) ([]string, error) {
	root, err := ExpandPath(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read search root: %w", err)
	}
	if !info.IsDir() {
		if IsPDF(root) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		// Skip hidden directories
		if d.IsDir() && path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}

		if d.Type().IsRegular() && IsPDF(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// IsPDF reports whether a path has a .pdf extension
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// ExpandPath expands a leading ~ and makes the path absolute
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	return filepath.Abs(path)
}
