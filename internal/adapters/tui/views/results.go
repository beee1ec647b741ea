package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"

	"pdflens/internal/adapters/tui/styles"
	"pdflens/internal/domain"
)

// ResultsKeyMap defines key bindings for the result list
type ResultsKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	NextPage key.Binding
	PrevPage key.Binding
}

var ResultsKeys = ResultsKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open match"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+f"),
		key.WithHelp("pgdn", "next page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("pgup", "ctrl+b"),
		key.WithHelp("pgup", "prev page"),
	),
}

// resultRow is one line of the list: a document header or one of its matches
type resultRow struct {
	header bool
	doc    int
	match  int
	flat   int // flat index of the match; for headers, of the document's first match
}

// ResultsModel lists matches grouped by document
type ResultsModel struct {
	ViewState
	index     *domain.SessionIndex
	rows      []resultRow
	paginator *Paginator
	current   int // flat index of the match being previewed
}

// NewResultsModel creates an empty result list
func NewResultsModel() *ResultsModel {
	return &ResultsModel{
		paginator: NewPaginator(10),
		current:   -1,
	}
}

// SetIndex replaces the listed session
func (m *ResultsModel) SetIndex(idx *domain.SessionIndex) {
	m.index = idx
	m.rows = m.rows[:0]
	m.current = -1
	m.paginator.Reset()

	if idx == nil {
		return
	}
	for d := 0; d < idx.Len(); d++ {
		m.rows = append(m.rows, resultRow{header: true, doc: d, match: -1, flat: idx.FlatIndex(d, 0)})
		for i := range idx.Entry(d).Matches {
			m.rows = append(m.rows, resultRow{doc: d, match: i, flat: idx.FlatIndex(d, i)})
		}
	}
	m.paginator.SetTotal(len(m.rows))
}

// SetSize updates the list area; each row takes one line
func (m *ResultsModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	m.paginator.SetPageSize(max(height-1, 1))
}

// Follow moves the cursor to the row of a flat match and marks it current
func (m *ResultsModel) Follow(flat int) {
	m.current = flat
	for i, row := range m.rows {
		if !row.header && row.flat == flat {
			m.paginator.SetCursor(i)
			return
		}
	}
}

// Selected returns the flat match index under the cursor
func (m *ResultsModel) Selected() (int, bool) {
	cursor := m.paginator.Cursor()
	if cursor < 0 || cursor >= len(m.rows) {
		return 0, false
	}
	return m.rows[cursor].flat, true
}

// Init initializes the list
func (m *ResultsModel) Init() tea.Cmd {
	return nil
}

// Update handles list keys. Enter emits MatchSelectedMsg.
func (m *ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, ResultsKeys.Up):
		m.paginator.CursorUp()
	case key.Matches(keyMsg, ResultsKeys.Down):
		m.paginator.CursorDown()
	case key.Matches(keyMsg, ResultsKeys.NextPage):
		m.paginator.NextPage()
	case key.Matches(keyMsg, ResultsKeys.PrevPage):
		m.paginator.PrevPage()
	case key.Matches(keyMsg, ResultsKeys.Select):
		if flat, ok := m.Selected(); ok {
			return m, func() tea.Msg {
				return MatchSelectedMsg{Flat: flat}
			}
		}
	}
	return m, nil
}

// View renders the visible rows
func (m *ResultsModel) View() string {
	if len(m.rows) == 0 {
		return RenderMuted("No matches")
	}

	var b strings.Builder
	start, end := m.paginator.VisibleRange()
	for i := start; i < end; i++ {
		b.WriteString(m.renderRow(m.rows[i], i == m.paginator.Cursor()))
		b.WriteString("\n")
	}
	if m.paginator.TotalPages() > 1 {
		b.WriteString(RenderMuted(fmt.Sprintf("page %d/%d", m.paginator.CurrentPage(), m.paginator.TotalPages())))
	}
	return b.String()
}

func (m *ResultsModel) renderRow(row resultRow, selected bool) string {
	width := uint(max(m.Width, 8))
	entry := m.index.Entry(row.doc)

	if row.header {
		text := fmt.Sprintf("%s (%d)", entry.Document.Name(), len(entry.Matches))
		text = truncate.StringWithTail(text, width, "…")
		if selected {
			return styles.DocHeaderSelected.Render(text)
		}
		return styles.DocHeader.Render(text)
	}

	match := entry.Matches[row.match]
	marker := "  "
	if row.flat == m.current {
		marker = "▶ "
	}
	text := truncate.StringWithTail(fmt.Sprintf("%sp%d: %s", marker, match.Page, match.Snippet), width, "…")

	switch {
	case selected:
		return styles.MatchSelected.Render(text)
	case row.flat == m.current:
		return styles.MatchCurrent.Render(text)
	default:
		return styles.MatchRow.Render(text)
	}
}
