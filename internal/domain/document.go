package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"
)

// Sentinel errors for domain invariants
var (
	ErrNoPages             = errors.New("document has no extractable pages")
	ErrOffsetOutOfRange    = errors.New("offset out of range")
	ErrEmptySession        = errors.New("session has no documents")
	ErrPageOutOfRange      = errors.New("page out of range")
	ErrSelectionOutOfRange = errors.New("selection out of range")
	ErrDocumentChanged     = errors.New("document changed since it was searched")
)

// Fingerprint identifies the content version of a document on disk.
// Two fingerprints are equal only when the document is considered unchanged.
type Fingerprint string

// Short returns an abbreviated form for display and logs
func (f Fingerprint) Short() string {
	if len(f) <= 12 {
		return string(f)
	}
	return string(f[:12])
}

// StatFingerprint derives a fingerprint from a file's path, size and modification time.
// The path is part of the digest so that two distinct files with equal size and mtime
// never share cache entries.
func StatFingerprint(path string, size int64, modTime time.Time) Fingerprint {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(size, 10)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(modTime.UnixNano(), 10)))
	return Fingerprint(hex.EncodeToString(h.Sum(nil)[:16]))
}

// ContentFingerprint derives a fingerprint from the document bytes' digest
func ContentFingerprint(sum []byte) Fingerprint {
	if len(sum) > 16 {
		sum = sum[:16]
	}
	return Fingerprint(hex.EncodeToString(sum))
}

// Document is a PDF discovered by a search session, identified by its absolute path
type Document struct {
	Path        string
	Fingerprint Fingerprint
	PageCount   int
}

// Name returns the base file name of the document
func (d Document) Name() string {
	return filepath.Base(d.Path)
}

// NavigablePages returns the number of pages a cursor may visit.
// A document without extractable pages still has one previewable page.
func (d Document) NavigablePages() int {
	if d.PageCount < 1 {
		return 1
	}
	return d.PageCount
}

// RawHit is a search backend hit before page attribution
type RawHit struct {
	Offset  int    // byte offset into the document's concatenated page text
	Snippet string // short surrounding context
}

// Match is a located occurrence of the search term within a document page
type Match struct {
	Path    string
	Page    int // 1-based
	Offset  int
	Snippet string
}

// Location formats the match as a path with a page fragment (file.pdf#page=3)
func (m Match) Location() string {
	return fmt.Sprintf("%s#page=%d", m.Path, m.Page)
}

// CacheKey addresses a rendered page image
type CacheKey struct {
	Fingerprint Fingerprint
	Page        int
}

func (k CacheKey) String() string {
	return fmt.Sprintf("%s/%d", k.Fingerprint, k.Page)
}

// PageImage is a rendered page, valid only while its document keeps the same fingerprint
type PageImage struct {
	Key    CacheKey
	Data   []byte
	Format string // MIME type, e.g. image/png
	DPI    int
}
