package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func mapperFrom(pages map[string][]string) PageMapperFactory {
	return func(doc Document) (*PageMapper, error) {
		p, ok := pages[doc.Path]
		if !ok {
			return nil, errors.New("extraction failed")
		}
		return NewPageMapper(p), nil
	}
}

func TestBuildSessionIndex(t *testing.T) {
	docs := []Document{
		{Path: "/pdfs/a.pdf"},
		{Path: "/pdfs/b.pdf"},
		{Path: "/pdfs/broken.pdf"},
		{Path: "/pdfs/nohits.pdf"},
		{Path: "/pdfs/c.pdf"},
	}
	pages := map[string][]string{
		"/pdfs/a.pdf":       {"cat one", "two cat"},    // starts 0, 7
		"/pdfs/b.pdf":       {"nothing", "", "cat"},     // starts 0, 7, 7
		"/pdfs/nohits.pdf":  {"plain"},
		"/pdfs/c.pdf":       {"x", "cat", "y", "cat"},   // starts 0, 1, 4, 5
	}
	hits := map[string][]RawHit{
		"/pdfs/a.pdf":      {{Offset: 11, Snippet: "two cat"}, {Offset: 0, Snippet: "cat one"}},
		"/pdfs/b.pdf":      {{Offset: 7, Snippet: "cat"}},
		"/pdfs/broken.pdf": {{Offset: 3, Snippet: "cat"}},
		"/pdfs/c.pdf":      {{Offset: 1, Snippet: "cat"}, {Offset: 5, Snippet: "cat"}},
	}

	idx, excluded := BuildSessionIndex(docs, hits, mapperFrom(pages))

	want := []Entry{
		{
			Document: Document{Path: "/pdfs/a.pdf", PageCount: 2},
			Matches: []Match{
				{Path: "/pdfs/a.pdf", Page: 1, Offset: 0, Snippet: "cat one"},
				{Path: "/pdfs/a.pdf", Page: 2, Offset: 11, Snippet: "two cat"},
			},
		},
		{
			Document: Document{Path: "/pdfs/b.pdf", PageCount: 3},
			Matches: []Match{
				{Path: "/pdfs/b.pdf", Page: 3, Offset: 7, Snippet: "cat"},
			},
		},
		{
			Document: Document{Path: "/pdfs/c.pdf", PageCount: 4},
			Matches: []Match{
				{Path: "/pdfs/c.pdf", Page: 2, Offset: 1, Snippet: "cat"},
				{Path: "/pdfs/c.pdf", Page: 4, Offset: 5, Snippet: "cat"},
			},
		},
	}

	var got []Entry
	for i := 0; i < idx.Len(); i++ {
		got = append(got, idx.Entry(i))
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("session entries mismatch (-want +got):\n%s", diff)
	}

	if len(excluded) != 1 || excluded[0].Path != "/pdfs/broken.pdf" {
		t.Errorf("excluded = %v, want only broken.pdf", excluded)
	}
	if idx.TotalMatches() != 5 {
		t.Errorf("TotalMatches() = %d, want 5", idx.TotalMatches())
	}
}

func TestBuildSessionIndex_NeverKeepsEmptyDocuments(t *testing.T) {
	docs := []Document{{Path: "/a.pdf"}, {Path: "/b.pdf"}, {Path: "/c.pdf"}}
	pages := map[string][]string{
		"/a.pdf": {"cat"},
		"/b.pdf": {}, // no extractable pages
		"/c.pdf": {"dog"},
	}
	hits := map[string][]RawHit{
		"/a.pdf": {{Offset: 0}},
		"/b.pdf": {{Offset: 0}},
		"/c.pdf": nil,
	}

	idx, excluded := BuildSessionIndex(docs, hits, mapperFrom(pages))

	for i := 0; i < idx.Len(); i++ {
		if idx.MatchCount(i) < 1 {
			t.Errorf("document %s has no matches", idx.Entry(i).Document.Path)
		}
	}
	if idx.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", idx.Len())
	}
	if len(excluded) != 1 || !errors.Is(excluded[0].Reason, ErrNoPages) {
		t.Errorf("excluded = %v, want /b.pdf with ErrNoPages", excluded)
	}
}

func TestBuildSessionIndex_Deterministic(t *testing.T) {
	docs := []Document{{Path: "/z.pdf"}, {Path: "/a.pdf"}}
	pages := map[string][]string{
		"/z.pdf": {"aaaa", "bbbb"},
		"/a.pdf": {"cccc"},
	}
	hits := map[string][]RawHit{
		"/z.pdf": {{Offset: 5, Snippet: "second"}, {Offset: 5, Snippet: "first-equal"}, {Offset: 1}},
		"/a.pdf": {{Offset: 2}},
	}

	first, _ := BuildSessionIndex(docs, hits, mapperFrom(pages))
	for i := 0; i < 20; i++ {
		again, _ := BuildSessionIndex(docs, hits, mapperFrom(pages))
		if diff := cmp.Diff(first.entries, again.entries); diff != "" {
			t.Fatalf("build not deterministic (-first +again):\n%s", diff)
		}
	}

	// input order of documents is preserved, equal offsets keep input order
	if first.Entry(0).Document.Path != "/z.pdf" {
		t.Errorf("first document = %s, want /z.pdf", first.Entry(0).Document.Path)
	}
	z := first.Entry(0).Matches
	if z[1].Snippet != "second" || z[2].Snippet != "first-equal" {
		t.Errorf("stable sort broken: %+v", z)
	}
}

func TestSessionIndex_FlatIndexAndLocate(t *testing.T) {
	idx := threeDocSession()

	for doc := 0; doc < idx.Len(); doc++ {
		for match := 0; match < idx.MatchCount(doc); match++ {
			flat := idx.FlatIndex(doc, match)
			gotDoc, gotMatch, ok := idx.Locate(flat)
			if !ok || gotDoc != doc || gotMatch != match {
				t.Errorf("Locate(FlatIndex(%d,%d)=%d) = (%d,%d,%v)", doc, match, flat, gotDoc, gotMatch, ok)
			}
		}
	}

	if _, _, ok := idx.Locate(idx.TotalMatches()); ok {
		t.Error("Locate past the end should fail")
	}
	if _, _, ok := idx.Locate(-1); ok {
		t.Error("Locate(-1) should fail")
	}
}

func TestStatFingerprint(t *testing.T) {
	mtime := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)
	base := StatFingerprint("/a.pdf", 100, mtime)

	if base != StatFingerprint("/a.pdf", 100, mtime) {
		t.Error("fingerprint should be stable")
	}
	if base == StatFingerprint("/a.pdf", 101, mtime) {
		t.Error("size change should change fingerprint")
	}
	if base == StatFingerprint("/a.pdf", 100, mtime.Add(time.Nanosecond)) {
		t.Error("mtime change should change fingerprint")
	}
	if base == StatFingerprint("/b.pdf", 100, mtime) {
		t.Error("different paths should not share a fingerprint")
	}
}
