// Package result is the Result-mode view: analysis, equation and the
// step-by-step reveal.
package result

import (
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/screen"
	"github.com/abhisek/mathstep/internal/screens"
	"github.com/abhisek/mathstep/internal/tutor"
	"github.com/abhisek/mathstep/internal/ui/layout"
)

// Screen shows the active solution.
type Screen struct {
	env    *screens.Env
	vp     viewport.Model
	follow bool
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

func New(env *screens.Env) *Screen {
	return &Screen{env: env, vp: viewport.New()}
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string {
	return s.env.T("analysis_title")
}

func (s *Screen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{}
	if s.env.Session.Phase() == tutor.PhaseRevealing {
		hints = append(hints, layout.KeyHint{Key: "Enter/N", Description: s.env.T("hint_next")})
	} else {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: s.env.T("hint_new")})
	}
	return append(hints,
		layout.KeyHint{Key: "R", Description: s.env.T("hint_new")},
		layout.KeyHint{Key: "↑↓", Description: s.env.T("hint_scroll")},
	)
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.LanguageChangedMsg:
		// Switching language drops the solution.
		if s.env.Session.Mode() == tutor.ModeInput {
			return s, screen.Navigate(screen.Input)
		}
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter", "n", "space", " ":
			if s.env.Session.RevealNext() {
				s.follow = true
				return s, nil
			}
			if msg.String() == "enter" {
				s.env.Session.StartNew()
				return s, screen.Navigate(screen.Input)
			}
			return s, nil
		case "r":
			s.env.Session.NewProblem()
			return s, screen.Navigate(screen.Input)
		}
	}

	var cmd tea.Cmd
	s.vp, cmd = s.vp.Update(msg)
	return s, cmd
}

func (s *Screen) View(width, height int) string {
	s.vp.SetWidth(width - 2)
	s.vp.SetHeight(max(height-1, 1))
	s.vp.SetContent(Render(s.env.Session, width-2))
	if s.follow {
		s.vp.GotoBottom()
		s.follow = false
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(s.vp.View())
}
