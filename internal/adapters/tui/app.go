package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"pdflens/internal/adapters/tui/styles"
	"pdflens/internal/adapters/tui/views"
	"pdflens/internal/application/commands"
	"pdflens/internal/domain"
)

// ViewState represents the current view
type ViewState int

const (
	ViewLoading ViewState = iota
	ViewSession
	ViewHelp
	ViewFailed
)

// SessionBuilder runs the search and builds the session index
type SessionBuilder interface {
	Execute(ctx context.Context) (*commands.SessionResult, error)
}

// Options configures the application
type Options struct {
	Query  string
	Root   string
	Snap   domain.SnapPolicy
	Copy   func(string) error
	Viewer views.Viewer
}

// App is the main TUI application model
type App struct {
	builder SessionBuilder
	opts    Options

	ctx    context.Context
	cancel context.CancelFunc

	state   ViewState
	spinner spinner.Model
	session *views.SessionModel
	help    *views.HelpModel
	err     error

	width  int
	height int
}

var quitKeys = key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"))

// NewApp creates a new TUI application
func NewApp(builder SessionBuilder, previewer views.Previewer, opts Options) *App {
	ctx, cancel := context.WithCancel(context.Background())

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	session := views.NewSessionModel(previewer, opts.Snap, opts.Copy)
	if opts.Viewer != nil {
		session.SetViewer(opts.Viewer)
	}

	return &App{
		builder: builder,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		state:   ViewLoading,
		spinner: s,
		session: session,
		help:    views.NewHelpModel(),
	}
}

// Init starts the search
func (a *App) Init() tea.Cmd {
	ctx := a.ctx
	builder := a.builder
	build := func() tea.Msg {
		res, err := builder.Execute(ctx)
		if err != nil {
			return views.SessionErrMsg{Err: err}
		}
		return views.SessionBuiltMsg{Result: res}
	}
	return tea.Batch(a.spinner.Tick, build)
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.session.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	case views.SessionBuiltMsg:
		a.state = ViewSession
		return a, a.session.SetResult(msg.Result)

	case views.SessionErrMsg:
		a.state = ViewFailed
		a.err = msg.Err
		return a, nil

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToSessionMsg:
		a.state = ViewSession
		return a, nil

	case spinner.TickMsg:
		if a.state == ViewLoading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
	}

	switch a.state {
	case ViewLoading, ViewFailed:
		if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, quitKeys) {
			a.Close()
			return a, tea.Quit
		}
		return a, nil
	case ViewHelp:
		// previews keep landing in the session behind the help screen
		if _, ok := msg.(tea.KeyMsg); ok {
			_, cmd := a.help.Update(msg)
			return a, cmd
		}
	}

	_, cmd := a.session.Update(msg)
	return a, cmd
}

// Close cancels the search and any in-flight preview
func (a *App) Close() {
	a.cancel()
	a.session.Close()
}

// State returns the current view
func (a *App) State() ViewState {
	return a.state
}

// Session returns the session view
func (a *App) Session() *views.SessionModel {
	return a.session
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewLoading:
		text := fmt.Sprintf("%s Searching for %q in %s", a.spinner.View(), a.opts.Query, a.opts.Root)
		return styles.App.Render(text)
	case ViewFailed:
		return views.NewViewBuilder().
			Title("pdflens").
			Line(views.RenderMessage(fmt.Sprintf("Search failed: %v", a.err), true)).
			BlankLine().
			Muted("Press q to quit").
			String()
	case ViewHelp:
		return a.help.View()
	default:
		return a.session.View()
	}
}
