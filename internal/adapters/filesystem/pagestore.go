package filesystem

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"

	"pdflens/internal/domain"
	"pdflens/internal/ports"
)

const imageExt = ".img"

// PageStore implements ports.PageStore with one file per rendered page:
// <cache>/renders/<dpi>dpi/<fingerprint>/<page>.img
type PageStore struct {
	root string
}

// Ensure PageStore implements ManagedPageStore
var _ ports.ManagedPageStore = (*PageStore)(nil)

// NewPageStore creates a page store for renders at one resolution
func NewPageStore(cacheDir string, dpi int) *PageStore {
	return &PageStore{root: filepath.Join(cacheDir, "renders", fmt.Sprintf("%ddpi", dpi))}
}

// Root returns the directory holding the store's entries
func (s *PageStore) Root() string {
	return s.root
}

// Get reads an entry. A missing entry is not an error.
func (s *PageStore) Get(key string) ([]byte, bool, error) {
	path, err := s.keyPath(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read page image: %w", err)
	}
	return data, true, nil
}

// Put writes an entry atomically, so readers never see a partial image
func (s *PageStore) Put(key string, data []byte) error {
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create page directory: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write page image: %w", err)
	}
	return nil
}

// Evict removes every page stored under a fingerprint
func (s *PageStore) Evict(fp domain.Fingerprint) error {
	if !validSegment(string(fp)) {
		return fmt.Errorf("invalid fingerprint %q", fp)
	}
	return os.RemoveAll(filepath.Join(s.root, string(fp)))
}

// Fingerprints lists the fingerprints that have stored pages
func (s *PageStore) Fingerprints() ([]domain.Fingerprint, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read page store: %w", err)
	}

	var fps []domain.Fingerprint
	for _, entry := range entries {
		if entry.IsDir() {
			fps = append(fps, domain.Fingerprint(entry.Name()))
		}
	}
	return fps, nil
}

// Usage counts stored documents, pages and bytes
func (s *PageStore) Usage() (ports.StoreUsage, error) {
	var usage ports.StoreUsage
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if path != s.root {
				usage.Documents++
			}
			return nil
		}
		if filepath.Ext(path) != imageExt {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		usage.Pages++
		usage.Bytes += info.Size()
		return nil
	})
	return usage, err
}

// Clear removes every stored page at this resolution
func (s *PageStore) Clear() error {
	return os.RemoveAll(s.root)
}

// keyPath maps "<fingerprint>/<page>" to a file path inside the root
func (s *PageStore) keyPath(key string) (string, error) {
	fp, page, ok := strings.Cut(key, "/")
	if !ok || !validSegment(fp) {
		return "", fmt.Errorf("invalid page key %q", key)
	}
	n, err := strconv.Atoi(page)
	if err != nil || n < 1 {
		return "", fmt.Errorf("invalid page key %q", key)
	}
	return filepath.Join(s.root, fp, strconv.Itoa(n)+imageExt), nil
}

func validSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}
