// Package input is the problem entry screen: a text area for the problem,
// an optional image path, and the asynchronous submit.
package input

import (
	"errors"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/media"
	"github.com/abhisek/mathstep/internal/screen"
	"github.com/abhisek/mathstep/internal/screens"
	"github.com/abhisek/mathstep/internal/solution"
	"github.com/abhisek/mathstep/internal/tutor"
	"github.com/abhisek/mathstep/internal/ui/components"
	"github.com/abhisek/mathstep/internal/ui/layout"
	"github.com/abhisek/mathstep/internal/ui/theme"
)

type field int

const (
	fieldProblem field = iota
	fieldImage
)

// solvedMsg carries the model reply for a dispatched ticket.
type solvedMsg struct {
	ticket tutor.Ticket
	raw    string
	err    error
}

// Screen is the Input-mode view of the session.
type Screen struct {
	env     *screens.Env
	problem textarea.Model
	image   components.TextInput
	spinner spinner.Model
	focus   field
	errMsg  string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates the input screen, prefilled with whatever problem text the
// session still holds.
func New(env *screens.Env) *Screen {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.Placeholder = env.T("input_placeholder")
	ta.SetHeight(5)
	ta.SetValue(env.Session.ProblemText())
	ta.Focus()

	img := components.NewTextInput(env.T("upload_placeholder"), false, 0)
	img.Blur()

	return &Screen{
		env:     env,
		problem: ta,
		image:   img,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Accent))),
	}
}

func (s *Screen) Init() tea.Cmd {
	return s.problem.Focus()
}

func (s *Screen) Title() string {
	return s.env.T("input_title")
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Ctrl+S", Description: s.env.T("hint_submit")},
		{Key: "Tab", Description: s.env.T("hint_switch_field")},
	}
}

func (s *Screen) loading() bool {
	return s.env.Session.Loading()
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.LanguageChangedMsg:
		s.problem.Placeholder = s.env.T("input_placeholder")
		s.image.Model.Placeholder = s.env.T("upload_placeholder")
		s.errMsg = ""
		return s, nil

	case solvedMsg:
		return s.handleSolved(msg)

	case spinner.TickMsg:
		if !s.loading() {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		if s.loading() {
			return s, nil
		}
		switch msg.String() {
		case "ctrl+s":
			return s, s.submit()
		case "tab", "shift+tab":
			return s, s.toggleFocus()
		case "enter":
			if s.focus == fieldImage {
				return s, s.submit()
			}
		}
	}

	var cmd tea.Cmd
	if s.focus == fieldProblem {
		s.problem, cmd = s.problem.Update(msg)
	} else {
		s.image, cmd = s.image.Update(msg)
	}
	return s, cmd
}

func (s *Screen) toggleFocus() tea.Cmd {
	if s.focus == fieldProblem {
		s.focus = fieldImage
		s.problem.Blur()
		return s.image.Focus()
	}
	s.focus = fieldProblem
	s.image.Blur()
	return s.problem.Focus()
}

func (s *Screen) submit() tea.Cmd {
	s.errMsg = ""
	if !s.env.Ready() {
		return screen.Navigate(screen.APIKey)
	}

	var img *media.Image
	if path := strings.TrimSpace(s.image.Value()); path != "" {
		loaded, err := media.Load(path)
		if err != nil {
			s.errMsg = s.env.T("err_image") + ": " + err.Error()
			return nil
		}
		img = loaded
	}

	ticket, err := s.env.Session.BeginSubmit(s.problem.Value(), img)
	if err != nil {
		s.errMsg = tutor.Describe(s.env.Lang(), err)
		return nil
	}

	s.env.Log().Info("submitting problem",
		"session", ticket.SessionID,
		"chars", len([]rune(s.problem.Value())),
		"image", img != nil,
	)
	return tea.Batch(s.spinner.Tick, dispatch(s.env, ticket))
}

// dispatch runs the model call off the update loop.
func dispatch(env *screens.Env, ticket tutor.Ticket) tea.Cmd {
	client := env.Client
	return func() tea.Msg {
		ctx, cancel := env.SolveContext()
		defer cancel()
		raw, err := ticket.Dispatch(ctx, client)
		return solvedMsg{ticket: ticket, raw: raw, err: err}
	}
}

func (s *Screen) handleSolved(msg solvedMsg) (screen.Screen, tea.Cmd) {
	err := s.env.Session.CompleteSubmit(msg.ticket, msg.raw, msg.err)
	switch {
	case err == nil:
		return s, screen.Navigate(screen.Result)
	case errors.Is(err, tutor.ErrStale):
		s.env.Log().Debug("dropping stale reply", "session", msg.ticket.SessionID)
		return s, nil
	case errors.Is(err, solution.ErrResponseParse):
		s.env.Log().Warn("unreadable model reply", "error", err)
	default:
		s.env.Log().Error("model call failed", "error", err)
	}
	s.errMsg = tutor.Describe(s.env.Lang(), err)
	return s, nil
}

func (s *Screen) View(width, height int) string {
	inner := max(width-8, 20)
	s.problem.SetWidth(inner)
	s.image.Model.SetWidth(inner - 4)

	var b strings.Builder
	b.WriteString(theme.Title.Render(s.env.T("input_title")))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(s.env.T("subtitle")))
	b.WriteString("\n\n")
	b.WriteString(s.box(s.problem.View(), s.focus == fieldProblem, inner))
	b.WriteString("\n")
	b.WriteString(theme.Label.Render(s.env.T("upload_label")))
	b.WriteString("\n")
	b.WriteString(s.box(s.image.View(), s.focus == fieldImage, inner))
	b.WriteString("\n\n")

	switch {
	case s.loading():
		b.WriteString(s.spinner.View() + " " + theme.Body.Render(s.env.T("spinner")))
	default:
		b.WriteString(components.NewButton(s.env.T("submit"), true, "ctrl+s").View())
	}
	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.ErrorText.Width(inner).Render(s.errMsg))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 2).
		Render(b.String())
}

func (s *Screen) box(content string, focused bool, width int) string {
	st := theme.Card.Width(width + 4)
	if focused {
		st = st.BorderForeground(theme.Primary)
	}
	return st.Render(content)
}
