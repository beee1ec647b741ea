package views

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pdflens/internal/application/commands"
	"pdflens/internal/domain"
	"pdflens/internal/logging"
)

// Previewer renders a document page for a terminal cell box
type Previewer interface {
	Execute(ctx context.Context, doc domain.Document, page, width, height int) (*commands.Preview, error)
}

// Viewer opens a document page outside the terminal
type Viewer interface {
	Open(path string, page int) error
}

// SessionKeyMap defines key bindings for the two-pane session view
type SessionKeyMap struct {
	FocusLeft  key.Binding
	FocusRight key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	NextMatch  key.Binding
	PrevMatch  key.Binding
	Copy       key.Binding
	Open       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var SessionKeys = SessionKeyMap{
	FocusLeft: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h", "focus list"),
	),
	FocusRight: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l", "focus preview"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j", "next page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k", "prev page"),
	),
	NextMatch: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "next match"),
	),
	PrevMatch: key.NewBinding(
		key.WithKeys("N"),
		key.WithHelp("N", "prev match"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy location"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open in viewer"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// SessionModel is the main view: results on the left, page preview on the right
type SessionModel struct {
	ViewState
	previewer Previewer
	snap      domain.SnapPolicy
	copy      func(string) error
	viewer    Viewer
	log       *slog.Logger

	nav     *domain.Navigator
	result  *commands.SessionResult
	focus   Focus
	results *ResultsModel
	preview *PreviewModel

	cancelPreview context.CancelFunc
}

// NewSessionModel creates the session view
func NewSessionModel(previewer Previewer, snap domain.SnapPolicy, copyFn func(string) error) *SessionModel {
	return &SessionModel{
		previewer: previewer,
		snap:      snap,
		copy:      copyFn,
		log:       logging.For(logging.CompTUI),
		results:   NewResultsModel(),
		preview:   NewPreviewModel(),
	}
}

// SetResult installs a finished search session and previews its first match
func (m *SessionModel) SetResult(res *commands.SessionResult) tea.Cmd {
	m.result = res
	m.results.SetIndex(res.Index)

	nav, err := domain.NewNavigator(res.Index, m.snap)
	if errors.Is(err, domain.ErrEmptySession) {
		m.nav = nil
		m.preview.ShowMessage("", "No matches found.")
		return nil
	}
	if err != nil {
		m.SetMessage(err.Error(), true)
		return nil
	}

	m.nav = nav
	m.results.Follow(nav.FlatMatch())
	return m.requestPreview()
}

// SetViewer enables opening the current page in an external viewer
func (m *SessionModel) SetViewer(v Viewer) {
	m.viewer = v
}

// Navigator returns the active navigator, nil for an empty session
func (m *SessionModel) Navigator() *domain.Navigator {
	return m.nav
}

// Focus returns the focused pane
func (m *SessionModel) Focus() Focus {
	return m.focus
}

// SetSize lays out the panes: list 40%, preview the rest, two lines of chrome
func (m *SessionModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)

	leftW := max(width*2/5, 20)
	rightW := max(width-leftW, 20)
	paneH := max(height-2, 3)

	// pane borders take one cell on each side
	m.results.SetSize(leftW-2, paneH-2)
	m.preview.SetSize(rightW-2, paneH-2)
}

// Init initializes the session view
func (m *SessionModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the session view
func (m *SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		_, cmd := m.preview.Update(msg)
		return m, cmd

	case PreviewReadyMsg:
		m.preview.Apply(msg)
		return m, nil

	case PreviewErrMsg:
		if m.preview.Fail(msg) {
			m.log.Warn("preview failed", "error", msg.Err)
		}
		return m, nil

	case MatchSelectedMsg:
		if m.nav == nil {
			return m, nil
		}
		if err := m.nav.SelectFlat(msg.Flat); err != nil {
			m.SetMessage(err.Error(), true)
			return m, nil
		}
		return m, m.afterMove()

	case CopiedMsg:
		if msg.Err != nil {
			m.SetMessage(fmt.Sprintf("Copy failed: %v", msg.Err), true)
		} else {
			m.SetMessage("Copied "+msg.Text, false)
		}
		return m, nil

	case ViewerOpenedMsg:
		if msg.Err != nil {
			m.SetMessage(fmt.Sprintf("Open failed: %v", msg.Err), true)
		} else {
			m.SetMessage("Opened "+msg.Location, false)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *SessionModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.ClearMessage()

	switch {
	case key.Matches(msg, SessionKeys.Quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, SessionKeys.Help):
		return m, func() tea.Msg {
			return SwitchToHelpMsg{}
		}
	case key.Matches(msg, SessionKeys.FocusLeft):
		m.focus = FocusLeft
		return m, nil
	case key.Matches(msg, SessionKeys.FocusRight):
		m.focus = FocusRight
		return m, nil
	}

	// an empty session has nothing to navigate
	if m.nav == nil {
		return m, nil
	}

	if key.Matches(msg, SessionKeys.Copy) {
		return m, m.copyLocation()
	}
	if key.Matches(msg, SessionKeys.Open) && m.viewer != nil {
		return m, m.openViewer()
	}

	if m.focus == FocusLeft {
		_, cmd := m.results.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, SessionKeys.NextPage):
		m.nav.NextPage()
	case key.Matches(msg, SessionKeys.PrevPage):
		m.nav.PrevPage()
	case key.Matches(msg, SessionKeys.NextMatch):
		m.nav.NextMatch()
	case key.Matches(msg, SessionKeys.PrevMatch):
		m.nav.PrevMatch()
	default:
		_, cmd := m.preview.Update(msg)
		return m, cmd
	}
	return m, m.afterMove()
}

func (m *SessionModel) afterMove() tea.Cmd {
	m.results.Follow(m.nav.FlatMatch())
	return m.requestPreview()
}

// requestPreview renders the cursor's page. The previous request's context is
// cancelled; its result would be dropped anyway since its sequence is stale.
func (m *SessionModel) requestPreview() tea.Cmd {
	if m.cancelPreview != nil {
		m.cancelPreview()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelPreview = cancel

	doc := m.nav.Document()
	page := m.nav.Cursor().Page
	width, height := m.preview.ContentSize()
	seq := m.preview.Begin(fmt.Sprintf("%s p%d", doc.Name(), page))
	previewer := m.previewer

	render := func() tea.Msg {
		p, err := previewer.Execute(ctx, doc, page, width, height)
		if err != nil {
			return PreviewErrMsg{Seq: seq, Err: err}
		}
		return PreviewReadyMsg{Seq: seq, Preview: p}
	}
	return tea.Batch(m.preview.Tick(), render)
}

func (m *SessionModel) copyLocation() tea.Cmd {
	loc := domain.Match{Path: m.nav.Document().Path, Page: m.nav.Cursor().Page}.Location()
	copyFn := m.copy
	return func() tea.Msg {
		if copyFn == nil {
			return CopiedMsg{Text: loc, Err: errors.New("clipboard unavailable")}
		}
		return CopiedMsg{Text: loc, Err: copyFn(loc)}
	}
}

func (m *SessionModel) openViewer() tea.Cmd {
	path := m.nav.Document().Path
	page := m.nav.Cursor().Page
	loc := domain.Match{Path: path, Page: page}.Location()
	v := m.viewer
	return func() tea.Msg {
		return ViewerOpenedMsg{Location: loc, Err: v.Open(path, page)}
	}
}

// Close cancels any in-flight preview
func (m *SessionModel) Close() {
	if m.cancelPreview != nil {
		m.cancelPreview()
		m.cancelPreview = nil
	}
}

// Status returns the status line text
func (m *SessionModel) Status() string {
	if m.nav == nil {
		return fmt.Sprintf("No results | focus: %s", m.focus)
	}
	doc := m.nav.Document()
	c := m.nav.Cursor()
	return fmt.Sprintf("%s | page %d/%d | match %d/%d | focus: %s",
		doc.Name(), c.Page, doc.NavigablePages(), c.Match+1, m.nav.Index().MatchCount(c.Doc), m.focus)
}

// View renders the session view
func (m *SessionModel) View() string {
	leftW := m.results.Width + 2
	rightW := m.preview.Width + 2
	paneH := m.results.Height + 2

	left := RenderPane(m.results.View(), leftW, paneH, m.focus == FocusLeft)
	right := RenderPane(m.preview.View(), rightW, paneH, m.focus == FocusRight)
	panes := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	label := "pdflens"
	if m.result != nil {
		label = fmt.Sprintf("%d matches", m.result.Index.TotalMatches())
	}
	status := RenderStatusBar(label, m.Status(), m.Message, m.MessageErr, m.Width)

	var help string
	if m.focus == FocusLeft {
		help = RenderHelpLine(ResultsKeys.Select, SessionKeys.FocusRight, SessionKeys.Copy, SessionKeys.Help, SessionKeys.Quit)
	} else {
		help = RenderHelpLine(SessionKeys.NextPage, SessionKeys.PrevPage, SessionKeys.NextMatch, SessionKeys.PrevMatch, SessionKeys.FocusLeft, SessionKeys.Quit)
	}

	return lipgloss.JoinVertical(lipgloss.Left, panes, status, help)
}
