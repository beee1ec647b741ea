package domain

import "fmt"

// SnapPolicy decides where a page move lands when it crosses into another document
type SnapPolicy int

const (
	// SnapNone lands on the first page going forward and the last page going backward
	SnapNone SnapPolicy = iota
	// SnapToMatch lands on the page of the entered document's first (or last) match
	SnapToMatch
)

func (p SnapPolicy) String() string {
	switch p {
	case SnapToMatch:
		return "match"
	default:
		return "none"
	}
}

// ParseSnapPolicy parses "none" or "match"
func ParseSnapPolicy(s string) (SnapPolicy, error) {
	switch s {
	case "", "none":
		return SnapNone, nil
	case "match":
		return SnapToMatch, nil
	default:
		return SnapNone, fmt.Errorf("unknown snap policy %q (want none or match)", s)
	}
}

// Cursor is the navigable position within a session
type Cursor struct {
	Doc   int // index into the session's documents
	Match int // index into the current document's matches
	Page  int // 1-based page within the current document
}

// Navigator moves a Cursor over a SessionIndex.
// All moves are total: they always leave the cursor on a valid document, match and page.
type Navigator struct {
	idx    *SessionIndex
	policy SnapPolicy
	cur    Cursor
}

// NewNavigator positions a cursor on the first match of the first document
func NewNavigator(idx *SessionIndex, policy SnapPolicy) (*Navigator, error) {
	if idx == nil || idx.IsEmpty() {
		return nil, ErrEmptySession
	}
	n := &Navigator{idx: idx, policy: policy}
	n.jumpToMatch(0, 0)
	return n, nil
}

// Cursor returns the current position
func (n *Navigator) Cursor() Cursor {
	return n.cur
}

// Index returns the session being navigated
func (n *Navigator) Index() *SessionIndex {
	return n.idx
}

// Document returns the currently selected document
func (n *Navigator) Document() Document {
	return n.idx.entries[n.cur.Doc].Document
}

// Match returns the current match sub-cursor's match
func (n *Navigator) Match() Match {
	return n.idx.entries[n.cur.Doc].Matches[n.cur.Match]
}

// FlatMatch returns the current match position in the flattened match list
func (n *Navigator) FlatMatch() int {
	return n.idx.FlatIndex(n.cur.Doc, n.cur.Match)
}

// NextMatch advances to the next match, continuing with the first match of the
// next document (wrapping to the first document) after the last one.
func (n *Navigator) NextMatch() Cursor {
	if n.cur.Match+1 < n.idx.MatchCount(n.cur.Doc) {
		n.jumpToMatch(n.cur.Doc, n.cur.Match+1)
		return n.cur
	}
	n.jumpToMatch(n.nextDoc(), 0)
	return n.cur
}

// PrevMatch moves to the previous match, continuing with the last match of the
// previous document (wrapping to the last document) before the first one.
func (n *Navigator) PrevMatch() Cursor {
	if n.cur.Match > 0 {
		n.jumpToMatch(n.cur.Doc, n.cur.Match-1)
		return n.cur
	}
	doc := n.prevDoc()
	n.jumpToMatch(doc, n.idx.MatchCount(doc)-1)
	return n.cur
}

// NextPage advances one page. Past the last page it enters the next document.
// Within a document the match sub-cursor is left untouched.
func (n *Navigator) NextPage() Cursor {
	if n.cur.Page < n.Document().NavigablePages() {
		n.cur.Page++
		return n.cur
	}

	doc := n.nextDoc()
	n.cur = Cursor{Doc: doc, Match: 0, Page: 1}
	if n.policy == SnapToMatch {
		n.cur.Page = n.idx.entries[doc].Matches[0].Page
	}
	return n.cur
}

// PrevPage goes back one page. Before the first page it enters the previous document.
// Within a document the match sub-cursor is left untouched.
func (n *Navigator) PrevPage() Cursor {
	if n.cur.Page > 1 {
		n.cur.Page--
		return n.cur
	}

	doc := n.prevDoc()
	entry := n.idx.entries[doc]
	last := len(entry.Matches) - 1
	n.cur = Cursor{Doc: doc, Match: last, Page: entry.Document.NavigablePages()}
	if n.policy == SnapToMatch {
		n.cur.Page = entry.Matches[last].Page
	}
	return n.cur
}

// Select jumps to an arbitrary match and its page
func (n *Navigator) Select(doc, match int) error {
	if doc < 0 || doc >= n.idx.Len() || match < 0 || match >= n.idx.MatchCount(doc) {
		return fmt.Errorf("%w: document %d match %d", ErrSelectionOutOfRange, doc, match)
	}
	n.jumpToMatch(doc, match)
	return nil
}

// SelectFlat jumps to the match at a position of the flattened match list
func (n *Navigator) SelectFlat(flat int) error {
	doc, match, ok := n.idx.Locate(flat)
	if !ok {
		return fmt.Errorf("%w: flat index %d", ErrSelectionOutOfRange, flat)
	}
	n.jumpToMatch(doc, match)
	return nil
}

func (n *Navigator) jumpToMatch(doc, match int) {
	n.cur = Cursor{
		Doc:   doc,
		Match: match,
		Page:  n.idx.entries[doc].Matches[match].Page,
	}
}

func (n *Navigator) nextDoc() int {
	return (n.cur.Doc + 1) % n.idx.Len()
}

func (n *Navigator) prevDoc() int {
	return (n.cur.Doc - 1 + n.idx.Len()) % n.idx.Len()
}
