package views

import "testing"

func TestPaginator_CursorFollowsPages(t *testing.T) {
	p := NewPaginator(3)
	p.SetTotal(7)

	for range 4 {
		p.CursorDown()
	}
	if got := p.CurrentPage(); got != 2 {
		t.Errorf("CurrentPage() = %d, want 2", got)
	}
	if start, end := p.VisibleRange(); start != 3 || end != 6 {
		t.Errorf("VisibleRange() = %d,%d, want 3,6", start, end)
	}

	p.NextPage()
	if start, end := p.VisibleRange(); start != 6 || end != 7 {
		t.Errorf("last page range = %d,%d, want 6,7", start, end)
	}
	if p.NextPage() {
		t.Error("NextPage() past the last page should report false")
	}
	if p.TotalPages() != 3 {
		t.Errorf("TotalPages() = %d, want 3", p.TotalPages())
	}
}

func TestPaginator_SetPageSizeKeepsCursorVisible(t *testing.T) {
	p := NewPaginator(10)
	p.SetTotal(30)
	p.SetCursor(25)

	p.SetPageSize(4)
	start, end := p.VisibleRange()
	if p.Cursor() < start || p.Cursor() >= end {
		t.Errorf("cursor %d outside visible range %d-%d", p.Cursor(), start, end)
	}
}

func TestPaginator_SetCursorClamps(t *testing.T) {
	p := NewPaginator(5)
	p.SetTotal(3)

	p.SetCursor(10)
	if p.Cursor() != 2 {
		t.Errorf("Cursor() = %d, want 2", p.Cursor())
	}
	p.SetCursor(-1)
	if p.Cursor() != 0 {
		t.Errorf("Cursor() = %d, want 0", p.Cursor())
	}
}
