package domain

import (
	"fmt"
	"sort"
)

// PageMapperFactory builds the page mapper for a document, typically by extracting its text
type PageMapperFactory func(doc Document) (*PageMapper, error)

// Entry is a document together with its ordered matches
type Entry struct {
	Document Document
	Matches  []Match
}

// Exclusion records why a document with hits was left out of the session
type Exclusion struct {
	Path   string
	Reason error
}

func (e Exclusion) String() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Reason)
}

// SessionIndex is the read-only, ordered set of documents with matches for one search session.
// Every entry has at least one match.
type SessionIndex struct {
	entries []Entry
	offsets []int // offsets[i] is the flat index of entries[i].Matches[0]
	total   int
}

// BuildSessionIndex resolves raw hits to pages and assembles the session index.
// Documents keep the order of docs. A document whose mapper cannot be built, or
// any of whose hits cannot be attributed to a page, is excluded entirely.
func BuildSessionIndex(docs []Document, hits map[string][]RawHit, factory PageMapperFactory) (*SessionIndex, []Exclusion) {
	var entries []Entry
	var excluded []Exclusion

	for _, doc := range docs {
		raw := hits[doc.Path]
		if len(raw) == 0 {
			continue
		}

		mapper, err := factory(doc)
		if err != nil {
			excluded = append(excluded, Exclusion{Path: doc.Path, Reason: err})
			continue
		}

		matches, err := resolveHits(doc.Path, raw, mapper)
		if err != nil {
			excluded = append(excluded, Exclusion{Path: doc.Path, Reason: err})
			continue
		}
		if len(matches) == 0 {
			continue
		}

		doc.PageCount = mapper.PageCount()
		entries = append(entries, Entry{Document: doc, Matches: matches})
	}

	return NewSessionIndex(entries), excluded
}

func resolveHits(path string, raw []RawHit, mapper *PageMapper) ([]Match, error) {
	matches := make([]Match, 0, len(raw))
	for _, hit := range raw {
		page, err := mapper.PageFor(hit.Offset)
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", hit.Offset, err)
		}
		matches = append(matches, Match{
			Path:    path,
			Page:    page,
			Offset:  hit.Offset,
			Snippet: hit.Snippet,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Offset < matches[j].Offset
	})
	return matches, nil
}

// NewSessionIndex wraps already resolved entries. Entries without matches are dropped.
func NewSessionIndex(entries []Entry) *SessionIndex {
	idx := &SessionIndex{}
	for _, e := range entries {
		if len(e.Matches) == 0 {
			continue
		}
		idx.offsets = append(idx.offsets, idx.total)
		idx.total += len(e.Matches)
		idx.entries = append(idx.entries, e)
	}
	return idx
}

// Len returns the number of documents
func (s *SessionIndex) Len() int {
	return len(s.entries)
}

// IsEmpty reports whether the session has no documents
func (s *SessionIndex) IsEmpty() bool {
	return len(s.entries) == 0
}

// Entry returns the i-th document entry
func (s *SessionIndex) Entry(i int) Entry {
	return s.entries[i]
}

// Documents returns the documents in session order
func (s *SessionIndex) Documents() []Document {
	docs := make([]Document, len(s.entries))
	for i, e := range s.entries {
		docs[i] = e.Document
	}
	return docs
}

// MatchCount returns the number of matches of the i-th document
func (s *SessionIndex) MatchCount(i int) int {
	return len(s.entries[i].Matches)
}

// TotalMatches returns the number of matches across all documents
func (s *SessionIndex) TotalMatches() int {
	return s.total
}

// FlatIndex converts a (document, match) pair into a position in the flattened match list
func (s *SessionIndex) FlatIndex(doc, match int) int {
	return s.offsets[doc] + match
}

// Locate converts a flat match position back into a (document, match) pair
func (s *SessionIndex) Locate(flat int) (doc, match int, ok bool) {
	if flat < 0 || flat >= s.total {
		return 0, 0, false
	}
	doc = sort.Search(len(s.offsets), func(i int) bool {
		return s.offsets[i] > flat
	}) - 1
	return doc, flat - s.offsets[doc], true
}
