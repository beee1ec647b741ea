package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"pdflens/internal/adapters/tui/views"
	"pdflens/internal/application/commands"
	"pdflens/internal/domain"
)

type stubBuilder struct {
	res *commands.SessionResult
	err error
}

func (b stubBuilder) Execute(ctx context.Context) (*commands.SessionResult, error) {
	return b.res, b.err
}

type stubPreviewer struct{}

func (stubPreviewer) Execute(_ context.Context, doc domain.Document, page, _, _ int) (*commands.Preview, error) {
	return &commands.Preview{Document: doc, Page: page, Output: "page image"}, nil
}

func oneMatch() *commands.SessionResult {
	doc := domain.Document{Path: "/d/a.pdf", PageCount: 2}
	return &commands.SessionResult{Index: domain.NewSessionIndex([]domain.Entry{{
		Document: doc,
		Matches:  []domain.Match{{Path: doc.Path, Page: 2, Snippet: "gamma"}},
	}})}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func findMsg[T any](cmd tea.Cmd) (T, bool) {
	var zero T
	if cmd == nil {
		return zero, false
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if m, ok := findMsg[T](c); ok {
				return m, true
			}
		}
		return zero, false
	}
	m, ok := msg.(T)
	return m, ok
}

func TestApp_BuildsSession(t *testing.T) {
	app := NewApp(stubBuilder{res: oneMatch()}, stubPreviewer{}, Options{Query: "gamma", Root: "/d"})
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	if !strings.Contains(app.View(), `Searching for "gamma"`) {
		t.Errorf("loading view = %q", app.View())
	}

	built, ok := findMsg[views.SessionBuiltMsg](app.Init())
	if !ok {
		t.Fatal("Init should build the session")
	}
	_, cmd := app.Update(built)
	if app.State() != ViewSession {
		t.Fatalf("state = %v, want session", app.State())
	}

	ready, ok := findMsg[views.PreviewReadyMsg](cmd)
	if !ok {
		t.Fatal("session should request the first preview")
	}
	app.Update(ready)
	if !strings.Contains(app.View(), "page image") {
		t.Error("view should show the preview")
	}
	if !strings.Contains(app.Session().Status(), "page 2/2") {
		t.Errorf("status = %q, want the match page", app.Session().Status())
	}
}

func TestApp_SearchFailure(t *testing.T) {
	app := NewApp(stubBuilder{err: errors.New("rga: exit 2")}, stubPreviewer{}, Options{Query: "x", Root: "/d"})

	failed, ok := findMsg[views.SessionErrMsg](app.Init())
	if !ok {
		t.Fatal("Init should report the failure")
	}
	app.Update(failed)

	if app.State() != ViewFailed {
		t.Fatalf("state = %v, want failed", app.State())
	}
	if !strings.Contains(app.View(), "rga: exit 2") {
		t.Error("view should show the error")
	}

	_, cmd := app.Update(runes("q"))
	if _, ok := findMsg[tea.QuitMsg](cmd); !ok {
		t.Error("q should quit from the failure screen")
	}
}

func TestApp_HelpKeepsReceivingPreviews(t *testing.T) {
	app := NewApp(stubBuilder{res: oneMatch()}, stubPreviewer{}, Options{})
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	built, _ := findMsg[views.SessionBuiltMsg](app.Init())
	_, cmd := app.Update(built)
	ready, _ := findMsg[views.PreviewReadyMsg](cmd)

	_, cmd = app.Update(runes("?"))
	toHelp, ok := findMsg[views.SwitchToHelpMsg](cmd)
	if !ok {
		t.Fatal("? should open help")
	}
	app.Update(toHelp)
	if app.State() != ViewHelp {
		t.Fatalf("state = %v, want help", app.State())
	}

	app.Update(ready)

	_, cmd = app.Update(runes("?"))
	back, ok := findMsg[views.SwitchToSessionMsg](cmd)
	if !ok {
		t.Fatal("? should close help")
	}
	app.Update(back)
	if !strings.Contains(app.View(), "page image") {
		t.Error("preview delivered during help was lost")
	}
}
