package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"pdflens/internal/adapters/tui/styles"
)

// HelpKeyMap defines key bindings for the help view
type HelpKeyMap struct {
	Close key.Binding
}

var HelpKeys = HelpKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "?"),
		key.WithHelp("esc/q/?", "close"),
	),
}

// HelpModel is the model for the help view
type HelpModel struct {
	width  int
	height int
}

// NewHelpModel creates a new help view model
func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

// Init initializes the help view
func (m *HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view
func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, HelpKeys.Close) {
			return m, func() tea.Msg {
				return SwitchToSessionMsg{}
			}
		}
	}

	return m, nil
}

// View renders the help view
func (m *HelpModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("pdflens Help"))
	b.WriteString("\n\n")

	b.WriteString(styles.Subtitle.Render("Search PDFs, preview the matching pages"))
	b.WriteString("\n\n")

	b.WriteString(styles.InputLabel.Render("Panes"))
	b.WriteString("\n")
	b.WriteString(helpLine("h / ←", "Focus the match list"))
	b.WriteString(helpLine("l / →", "Focus the page preview"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("Match list"))
	b.WriteString("\n")
	b.WriteString(helpLine("j / k", "Move down/up"))
	b.WriteString(helpLine("PgDn / PgUp", "Next/previous screen"))
	b.WriteString(helpLine("Enter", "Jump to match"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("Preview"))
	b.WriteString("\n")
	b.WriteString(helpLine("j / k", "Next/previous page"))
	b.WriteString(helpLine("n / N", "Next/previous match"))
	b.WriteString(helpLine("Ctrl+D / Ctrl+U", "Scroll the page image"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("General"))
	b.WriteString("\n")
	b.WriteString(helpLine("y", "Copy file#page=N"))
	b.WriteString(helpLine("o", "Open page in external viewer"))
	b.WriteString(helpLine("?", "Toggle help"))
	b.WriteString(helpLine("q / Ctrl+C", "Quit"))
	b.WriteString("\n")

	b.WriteString(styles.MutedText.Render("  Paging past the last page or match moves to the next document."))
	b.WriteString("\n\n")

	b.WriteString(styles.HelpDesc.Render("Press "))
	b.WriteString(styles.HelpKey.Render("esc"))
	b.WriteString(styles.HelpDesc.Render(" or "))
	b.WriteString(styles.HelpKey.Render("?"))
	b.WriteString(styles.HelpDesc.Render(" to close"))

	return styles.App.Render(b.String())
}

func helpLine(key, desc string) string {
	return "  " + styles.HelpKey.Render(padRight(key, 20)) + styles.HelpDesc.Render(desc) + "\n"
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

// SetSize updates the view dimensions
func (m *HelpModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}
