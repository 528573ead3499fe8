package components

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathstep/internal/ui/theme"
)

// Button is a labelled action bound to one or more keys.
type Button struct {
	Label  string
	Keys   []string
	Active bool
}

// NewButton creates a button triggered by keys.
func NewButton(label string, active bool, keys ...string) Button {
	return Button{Label: label, Active: active, Keys: keys}
}

// Pressed reports whether msg is a key press that triggers the button.
func (b Button) Pressed(msg tea.Msg) bool {
	if !b.Active {
		return false
	}
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return false
	}
	k := kmsg.String()
	for _, want := range b.Keys {
		if k == want {
			return true
		}
	}
	return false
}

// View renders the button.
func (b Button) View() string {
	label := "▸ " + b.Label
	if b.Active {
		return theme.ButtonActive.Render(label)
	}
	return theme.ButtonInactive.Render(label)
}
