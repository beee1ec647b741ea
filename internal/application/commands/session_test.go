package commands

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pdflens/internal/application"
	"pdflens/internal/domain"
)

type fakeFinder struct {
	paths []string
	err   error
}

func (f *fakeFinder) FindCandidates(_ context.Context, _, _ string) ([]string, error) {
	return f.paths, f.err
}

type fakeExtractor struct {
	mu    sync.Mutex
	pages map[string][]string
	calls map[string]int
}

func newFakeExtractor(pages map[string][]string) *fakeExtractor {
	return &fakeExtractor{pages: pages, calls: make(map[string]int)}
}

func (f *fakeExtractor) ExtractPages(_ context.Context, path string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[path]++
	p, ok := f.pages[path]
	if !ok {
		return nil, &application.ExtractionError{Path: path, Reason: "not a pdf"}
	}
	return p, nil
}

type fakeFingerprinter struct{}

func (fakeFingerprinter) Fingerprint(path string) (domain.Fingerprint, error) {
	return domain.Fingerprint("fp:" + path), nil
}

func TestTextSearcher_Search(t *testing.T) {
	extractor := newFakeExtractor(map[string][]string{
		"/d/a.pdf": {"The cat sat", "on the mat"}, // page 2 starts at 11
		"/d/b.pdf": {"no felines"},
		"/d/c.pdf": {"", "CAT"},
	})
	finder := &fakeFinder{paths: []string{"/d/a.pdf", "/d/b.pdf", "/d/broken.pdf", "/d/c.pdf"}}

	searcher := NewTextSearcher(finder, extractor, fakeFingerprinter{}, false, 2)
	docs, hits, err := searcher.Search(context.Background(), "at", "/d")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	wantDocs := []domain.Document{
		{Path: "/d/a.pdf", Fingerprint: "fp:/d/a.pdf", PageCount: 2},
		{Path: "/d/c.pdf", Fingerprint: "fp:/d/c.pdf", PageCount: 2},
	}
	if diff := cmp.Diff(wantDocs, docs); diff != "" {
		t.Errorf("documents mismatch (-want +got):\n%s", diff)
	}

	wantOffsets := map[string][]int{
		"/d/a.pdf": {5, 9, 19}, // cat, sat, mat
		"/d/c.pdf": {1},
	}
	gotOffsets := make(map[string][]int)
	for path, hs := range hits {
		for _, h := range hs {
			gotOffsets[path] = append(gotOffsets[path], h.Offset)
		}
	}
	if diff := cmp.Diff(wantOffsets, gotOffsets); diff != "" {
		t.Errorf("hit offsets mismatch (-want +got):\n%s", diff)
	}
	if got := hits["/d/a.pdf"][2].Snippet; got != "on the mat" {
		t.Errorf("snippet = %q, want %q", got, "on the mat")
	}
}

func TestTextSearcher_FinderError(t *testing.T) {
	searcher := NewTextSearcher(&fakeFinder{err: errors.New("rga exploded")}, newFakeExtractor(nil), fakeFingerprinter{}, false, 1)
	if _, _, err := searcher.Search(context.Background(), "x", "/d"); err == nil {
		t.Error("expected finder error to surface")
	}
}

func TestBuildSessionCommand_Execute(t *testing.T) {
	extractor := newFakeExtractor(map[string][]string{
		"/d/a.pdf": {"alpha", "beta gamma", "gamma"},
		"/d/b.pdf": {"gamma ray"},
	})
	finder := &fakeFinder{paths: []string{"/d/a.pdf", "/d/b.pdf"}}
	searcher := NewTextSearcher(finder, extractor, fakeFingerprinter{}, false, 1)

	cmd := NewBuildSessionCommand(searcher, extractor, fakeFingerprinter{}, "gamma", "/d")
	res, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	idx := res.Index
	if idx.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", idx.Len())
	}

	var pages []int
	for _, m := range idx.Entry(0).Matches {
		pages = append(pages, m.Page)
	}
	if diff := cmp.Diff([]int{2, 3}, pages); diff != "" {
		t.Errorf("a.pdf match pages mismatch (-want +got):\n%s", diff)
	}
	if got := idx.Entry(0).Document.PageCount; got != 3 {
		t.Errorf("a.pdf PageCount = %d, want 3", got)
	}
	if got := idx.Entry(1).Matches[0].Page; got != 1 {
		t.Errorf("b.pdf match page = %d, want 1", got)
	}
}

func TestBuildSessionCommand_ExtractionFailureExcludesDocument(t *testing.T) {
	extractor := newFakeExtractor(map[string][]string{
		"/d/a.pdf": {"gamma"},
		"/d/b.pdf": {"gamma"},
	})
	searcher := NewTextSearcher(&fakeFinder{paths: []string{"/d/a.pdf", "/d/b.pdf"}}, extractor, fakeFingerprinter{}, false, 1)

	// b.pdf extracts during search but fails when the session maps pages
	mapping := newFakeExtractor(map[string][]string{"/d/a.pdf": {"gamma"}})

	res, err := NewBuildSessionCommand(searcher, mapping, fakeFingerprinter{}, "gamma", "/d").Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Index.Len() != 1 || res.Index.Entry(0).Document.Path != "/d/a.pdf" {
		t.Errorf("index documents = %v, want only a.pdf", res.Index.Documents())
	}
	if len(res.Exclusions) != 1 || !errors.Is(res.Exclusions[0].Reason, application.ErrExtractionFailed) {
		t.Errorf("exclusions = %v, want b.pdf extraction failure", res.Exclusions)
	}
}

type editedFingerprinter map[string]domain.Fingerprint

func (f editedFingerprinter) Fingerprint(path string) (domain.Fingerprint, error) {
	if fp, ok := f[path]; ok {
		return fp, nil
	}
	return fakeFingerprinter{}.Fingerprint(path)
}

func TestBuildSessionCommand_DocumentEditedAfterSearchIsExcluded(t *testing.T) {
	// "gamma" sits on page 3 of the searched text
	searched := newFakeExtractor(map[string][]string{
		"/d/a.pdf": {"ab", "cd", "gamma"},
		"/d/b.pdf": {"gamma"},
	})
	searcher := NewTextSearcher(&fakeFinder{paths: []string{"/d/a.pdf", "/d/b.pdf"}}, searched, fakeFingerprinter{}, false, 1)

	// a.pdf is rewritten before its pages are mapped: page 1 grew to 20 bytes
	mapping := newFakeExtractor(map[string][]string{
		"/d/a.pdf": {"twenty bytes of text", "cd", "gamma"},
		"/d/b.pdf": {"gamma"},
	})
	edited := editedFingerprinter{"/d/a.pdf": "fp:/d/a.pdf#v2"}

	res, err := NewBuildSessionCommand(searcher, mapping, edited, "gamma", "/d").Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var paths []string
	for _, doc := range res.Index.Documents() {
		paths = append(paths, doc.Path)
	}
	if diff := cmp.Diff([]string{"/d/b.pdf"}, paths); diff != "" {
		t.Errorf("index documents mismatch (-want +got):\n%s", diff)
	}
	if len(res.Exclusions) != 1 {
		t.Fatalf("exclusions = %v, want one", res.Exclusions)
	}
	if res.Exclusions[0].Path != "/d/a.pdf" {
		t.Errorf("excluded path = %q, want /d/a.pdf", res.Exclusions[0].Path)
	}
	if !errors.Is(res.Exclusions[0].Reason, domain.ErrDocumentChanged) {
		t.Errorf("exclusion reason = %v, want ErrDocumentChanged", res.Exclusions[0].Reason)
	}
	if errors.Is(res.Exclusions[0].Reason, application.ErrExtractionFailed) {
		t.Errorf("document change must not read as an extraction failure")
	}
}

func TestBuildSessionCommand_EmptyResultIsNotAnError(t *testing.T) {
	searcher := NewTextSearcher(&fakeFinder{}, newFakeExtractor(nil), fakeFingerprinter{}, false, 1)

	res, err := NewBuildSessionCommand(searcher, newFakeExtractor(nil), fakeFingerprinter{}, "gamma", "/d").Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Index.IsEmpty() {
		t.Errorf("expected empty index, got %d documents", res.Index.Len())
	}
}

func TestBuildSessionCommand_RequiresQuery(t *testing.T) {
	cmd := NewBuildSessionCommand(nil, nil, nil, "  ", "/d")
	_, err := cmd.Execute(context.Background())

	var valErr *application.ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("Execute() error = %v, want ValidationError", err)
	}
}
