package views

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"pdflens/internal/adapters/tui/styles"
)

// PreviewState is the state of the preview pane
type PreviewState int

const (
	PreviewIdle PreviewState = iota
	PreviewLoading
	PreviewReady
	PreviewFailed
)

// previewScrollKeys leaves j/k free for page navigation
var previewScrollKeys = viewport.KeyMap{
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+f"),
		key.WithHelp("pgdn", "scroll down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+b"),
		key.WithHelp("pgup", "scroll up"),
	),
	HalfPageDown: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "½ page down"),
	),
	HalfPageUp: key.NewBinding(
		key.WithKeys("ctrl+u"),
		key.WithHelp("ctrl+u", "½ page up"),
	),
}

// PreviewModel shows the rendered page, a spinner while rendering, or an error
type PreviewModel struct {
	ViewState
	viewport viewport.Model
	spinner  spinner.Model
	state    PreviewState
	seq      int
	title    string
	err      error
}

// NewPreviewModel creates an idle preview pane
func NewPreviewModel() *PreviewModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	vp := viewport.New(1, 1)
	vp.KeyMap = previewScrollKeys

	return &PreviewModel{
		viewport: vp,
		spinner:  s,
	}
}

// SetSize updates the preview area
func (m *PreviewModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	m.viewport.Width = max(width, 1)
	m.viewport.Height = max(height-1, 1) // title line
}

// ContentSize returns the cell box available to the page image
func (m *PreviewModel) ContentSize() (int, int) {
	return m.viewport.Width, m.viewport.Height
}

// State returns the current pane state
func (m *PreviewModel) State() PreviewState {
	return m.state
}

// Seq returns the sequence number of the latest request
func (m *PreviewModel) Seq() int {
	return m.seq
}

// Begin starts a new render request and returns its sequence number.
// Results for earlier sequence numbers are ignored from now on.
func (m *PreviewModel) Begin(title string) int {
	m.seq++
	m.state = PreviewLoading
	m.title = title
	m.err = nil
	return m.seq
}

// Apply shows a finished render; stale results are dropped
func (m *PreviewModel) Apply(msg PreviewReadyMsg) bool {
	if msg.Seq != m.seq {
		return false
	}
	m.state = PreviewReady
	m.viewport.SetContent(msg.Preview.Output)
	m.viewport.GotoTop()
	return true
}

// Fail shows a render error; stale errors are dropped
func (m *PreviewModel) Fail(msg PreviewErrMsg) bool {
	if msg.Seq != m.seq {
		return false
	}
	m.state = PreviewFailed
	m.err = msg.Err
	return true
}

// ShowMessage replaces the pane content with a plain message
func (m *PreviewModel) ShowMessage(title, text string) {
	m.seq++
	m.state = PreviewIdle
	m.title = title
	m.err = nil
	m.viewport.SetContent(text)
}

// Tick returns the spinner tick command
func (m *PreviewModel) Tick() tea.Cmd {
	return m.spinner.Tick
}

// Init initializes the preview pane
func (m *PreviewModel) Init() tea.Cmd {
	return nil
}

// Update advances the spinner and scrolls the viewport
func (m *PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.state == PreviewLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.state == PreviewReady {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View renders the pane
func (m *PreviewModel) View() string {
	header := styles.InputLabel.Render(m.title)

	switch m.state {
	case PreviewLoading:
		return header + "\n" + m.spinner.View() + " Rendering..."
	case PreviewFailed:
		return header + "\n" + styles.ErrorMsg.Render(fmt.Sprintf("Render failed: %v", m.err))
	default:
		return header + "\n" + m.viewport.View()
	}
}
