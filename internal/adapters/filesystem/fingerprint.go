package filesystem

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"sync"

	"pdflens/internal/domain"
	"pdflens/internal/ports"
)

// Fingerprint modes accepted by NewFingerprinter
const (
	FingerprintStat    = "stat"
	FingerprintContent = "content"
)

// NewFingerprinter returns the fingerprinter for a mode name
func NewFingerprinter(mode string) (ports.Fingerprinter, error) {
	switch mode {
	case "", FingerprintStat:
		return StatFingerprinter{}, nil
	case FingerprintContent:
		return NewContentFingerprinter(), nil
	default:
		return nil, fmt.Errorf("unknown fingerprint mode %q", mode)
	}
}

// StatFingerprinter fingerprints a file by absolute path, size and mtime
type StatFingerprinter struct{}

// Ensure StatFingerprinter implements Fingerprinter
var _ ports.Fingerprinter = StatFingerprinter{}

// Fingerprint stats the file
func (StatFingerprinter) Fingerprint(path string) (domain.Fingerprint, error) {
	abs, err := ExpandPath(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to stat document: %w", err)
	}
	return domain.StatFingerprint(abs, info.Size(), info.ModTime()), nil
}

// ContentFingerprinter fingerprints a file by a digest of its bytes.
// Digests are reused while the file's stat fingerprint is unchanged.
type ContentFingerprinter struct {
	mu   sync.Mutex
	memo map[domain.Fingerprint]domain.Fingerprint
}

// Ensure ContentFingerprinter implements Fingerprinter
var _ ports.Fingerprinter = (*ContentFingerprinter)(nil)

// NewContentFingerprinter creates a content fingerprinter
func NewContentFingerprinter() *ContentFingerprinter {
	return &ContentFingerprinter{memo: make(map[domain.Fingerprint]domain.Fingerprint)}
}

// Fingerprint hashes the file, or returns the memoized digest
func (c *ContentFingerprinter) Fingerprint(path string) (domain.Fingerprint, error) {
	statFP, err := StatFingerprinter{}.Fingerprint(path)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	fp, ok := c.memo[statFP]
	c.mu.Unlock()
	if ok {
		return fp, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	fp = domain.ContentFingerprint(h.Sum(nil))

	c.mu.Lock()
	c.memo[statFP] = fp
	c.mu.Unlock()
	return fp, nil
}
