// Package apikey is the key-entry screen shown when no API key resolves.
package apikey

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/screen"
	"github.com/abhisek/mathstep/internal/screens"
	"github.com/abhisek/mathstep/internal/tutor"
	"github.com/abhisek/mathstep/internal/ui/components"
	"github.com/abhisek/mathstep/internal/ui/layout"
	"github.com/abhisek/mathstep/internal/ui/theme"
)

// connectedMsg carries the outcome of building a client for a typed key.
type connectedMsg struct {
	client tutor.ModelClient
	err    error
}

// Screen collects an API key. The key lives only in memory.
type Screen struct {
	env        *screens.Env
	input      components.TextInput
	warn       string
	connecting bool
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

func New(env *screens.Env) *Screen {
	return &Screen{
		env:   env,
		input: components.NewTextInput(env.T("api_placeholder"), true, 48),
	}
}

func (s *Screen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *Screen) Title() string {
	return s.env.T("api_title")
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: s.env.T("hint_save")},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.LanguageChangedMsg:
		s.input.Model.Placeholder = s.env.T("api_placeholder")
		if s.warn != "" {
			s.warn = s.env.T("api_warn")
		}
		return s, nil

	case connectedMsg:
		s.connecting = false
		if msg.err != nil {
			s.env.Log().Warn("api key rejected", "error", msg.err)
			s.warn = tutor.Describe(s.env.Lang(), msg.err)
			return s, nil
		}
		s.env.Client = msg.client
		s.env.Session.SetAPIKeyConfigured(true)
		return s, screen.Navigate(screen.Input)

	case tea.KeyPressMsg:
		if msg.String() == "enter" {
			return s, s.save()
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Screen) save() tea.Cmd {
	if s.connecting {
		return nil
	}
	key := strings.TrimSpace(s.input.Value())
	if key == "" {
		s.warn = s.env.T("api_warn")
		return nil
	}
	s.warn = ""
	if s.env.Connect == nil {
		return nil
	}
	s.connecting = true
	connect := s.env.Connect
	return func() tea.Msg {
		client, err := connect(context.Background(), key)
		return connectedMsg{client: client, err: err}
	}
}

func (s *Screen) View(width, height int) string {
	var b strings.Builder

	if height >= 24 {
		b.WriteString(components.Banner(width - 4))
		b.WriteString("\n\n")
	}
	b.WriteString(theme.Title.Render(s.env.T("api_title")))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(s.env.T("subtitle")))
	b.WriteString("\n\n")
	b.WriteString(theme.Card.Width(min(width-4, 60)).Render(s.input.View()))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(s.env.T("api_help")))
	b.WriteString("\n\n")
	b.WriteString(components.NewButton(s.env.T("api_save"), !s.connecting, "enter").View())
	if s.warn != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Warning.Render(s.warn))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 2).
		Render(b.String())
}
