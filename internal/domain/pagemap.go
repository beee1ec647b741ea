package domain

import "sort"

// PageMapper attributes byte offsets of a document's concatenated page text to pages
type PageMapper struct {
	starts []int // starts[i] is the global offset where page i+1 begins
	total  int
}

// NewPageMapper builds a mapper from ordered per-page text blocks
func NewPageMapper(pages []string) *PageMapper {
	m := &PageMapper{starts: make([]int, len(pages))}
	offset := 0
	for i, text := range pages {
		m.starts[i] = offset
		offset += len(text)
	}
	m.total = offset
	return m
}

// PageCount returns the number of pages known to the mapper
func (m *PageMapper) PageCount() int {
	return len(m.starts)
}

// Len returns the length in bytes of the concatenated text
func (m *PageMapper) Len() int {
	return m.total
}

// PageStart returns the global offset at which a 1-based page begins
func (m *PageMapper) PageStart(page int) (int, error) {
	if page < 1 || page > len(m.starts) {
		return 0, ErrPageOutOfRange
	}
	return m.starts[page-1], nil
}

// PageFor returns the 1-based page containing the given offset.
// Offsets past the end of the text clamp to the last page. When several pages
// share a start offset (empty pages), the last of them wins since the text at
// that offset belongs to it.
func (m *PageMapper) PageFor(offset int) (int, error) {
	if len(m.starts) == 0 {
		return 0, ErrNoPages
	}
	if offset < 0 {
		return 0, ErrOffsetOutOfRange
	}
	// first index whose start is past the offset
	i := sort.Search(len(m.starts), func(i int) bool {
		return m.starts[i] > offset
	})
	return i, nil
}
