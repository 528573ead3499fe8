package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/router"
	"github.com/abhisek/mathstep/internal/screen"
	"github.com/abhisek/mathstep/internal/screens"
	"github.com/abhisek/mathstep/internal/screens/apikey"
	"github.com/abhisek/mathstep/internal/screens/input"
	"github.com/abhisek/mathstep/internal/screens/result"
	"github.com/abhisek/mathstep/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	env     *screens.Env
	router  *router.Router
	current screen.ID
	width   int
	height  int
}

// New creates the root model. Without a usable key it starts on key entry.
func New(env *screens.Env) AppModel {
	start := screen.Input
	if !env.Ready() {
		start = screen.APIKey
	}
	return AppModel{
		env:     env,
		router:  router.New(newScreen(env, start)),
		current: start,
	}
}

func newScreen(env *screens.Env, id screen.ID) screen.Screen {
	switch id {
	case screen.APIKey:
		return apikey.New(env)
	case screen.Result:
		return result.New(env)
	default:
		return input.New(env)
	}
}

// Current reports which screen is active.
func (m AppModel) Current() screen.ID {
	return m.current
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.NavigateMsg:
		m.env.Log().Debug("navigate", "from", m.current.String(), "to", msg.To.String())
		m.current = msg.To
		return m, m.router.Replace(newScreen(m.env, msg.To))

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+l":
			lang := m.env.Session.ToggleLanguage()
			m.env.Log().Info("language switched", "language", lang.String())
			return m, m.router.Update(screen.LanguageChangedMsg{Language: lang})
		case "ctrl+k":
			if m.current == screen.APIKey {
				return m, nil
			}
			m.env.ClearKey()
			return m, screen.Navigate(screen.APIKey)
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) keyHints() []layout.KeyHint {
	var hints []layout.KeyHint
	if p, ok := m.router.Active().(screen.KeyHintProvider); ok {
		hints = append(hints, p.KeyHints()...)
	}
	hints = append(hints, layout.KeyHint{Key: "Ctrl+L", Description: m.env.T("hint_language")})
	if m.current != screen.APIKey {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+K", Description: m.env.T("hint_change_key")})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: m.env.T("hint_quit")})
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	title := ""
	if active := m.router.Active(); active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.env.Session.Language().String(), m.width)
	footer := layout.RenderFooter(m.keyHints(), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(env *screens.Env) error {
	p := tea.NewProgram(New(env))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
