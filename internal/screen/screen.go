package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lingo/internal/backend"
	"github.com/abhisek/lingo/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// EscapeHandler is implemented by screens that use Esc themselves, for
// example to cancel a recording. When HandleEscape reports false the app
// pops the screen as usual.
type EscapeHandler interface {
	HandleEscape() (tea.Cmd, bool)
}

// Closer is implemented by screens that hold resources. The router calls
// Close when the screen leaves the stack.
type Closer interface {
	Close()
}

// StackMsg is implemented by messages delivered to every screen on the
// stack rather than only the active one, such as live status events a
// screen below the active one keeps waiting for.
type StackMsg interface {
	tea.Msg
	StackMsg()
}

// ProgressMsg updates the experience and level shown in the header.
// Screens emit it whenever the backend reports new progress.
type ProgressMsg struct {
	Progress backend.Progress
}

// ProgressCmd wraps p in a ProgressMsg.
func ProgressCmd(p backend.Progress) tea.Cmd {
	return func() tea.Msg { return ProgressMsg{Progress: p} }
}
