package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathstep/internal/i18n"
	"github.com/abhisek/mathstep/internal/ui/layout"
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

// ID names one of the tutor screens.
type ID int

const (
	APIKey ID = iota
	Input
	Result
)

func (id ID) String() string {
	switch id {
	case APIKey:
		return "apikey"
	case Input:
		return "input"
	case Result:
		return "result"
	default:
		return "unknown"
	}
}

// NavigateMsg asks the app to replace the active screen.
type NavigateMsg struct {
	To ID
}

// Navigate returns a command emitting NavigateMsg.
func Navigate(to ID) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{To: to} }
}

// LanguageChangedMsg is broadcast after the session language switched.
type LanguageChangedMsg struct {
	Language i18n.Language
}
