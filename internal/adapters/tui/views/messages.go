package views

import (
	"pdflens/internal/application/commands"
)

// SessionBuiltMsg carries a finished search session
type SessionBuiltMsg struct {
	Result *commands.SessionResult
}

// SessionErrMsg reports a failed search session
type SessionErrMsg struct {
	Err error
}

// PreviewReadyMsg carries a rendered page for request Seq
type PreviewReadyMsg struct {
	Seq     int
	Preview *commands.Preview
}

// PreviewErrMsg reports a failed render for request Seq
type PreviewErrMsg struct {
	Seq int
	Err error
}

// MatchSelectedMsg asks the session to jump to a flat match index
type MatchSelectedMsg struct {
	Flat int
}

// CopiedMsg reports the result of a clipboard copy
type CopiedMsg struct {
	Text string
	Err  error
}

// ViewerOpenedMsg reports the outcome of launching the external viewer
type ViewerOpenedMsg struct {
	Location string
	Err      error
}

// Messages for view switching
type SwitchToHelpMsg struct{}

type SwitchToSessionMsg struct{}
