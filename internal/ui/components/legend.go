package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/i18n"
	"github.com/abhisek/mathstep/internal/ui/theme"
)

// Legend explains the explanation color coding.
func Legend(lang i18n.Language) string {
	entries := []struct {
		color lipgloss.Style
		key   string
	}{
		{lipgloss.NewStyle().Foreground(theme.Data), "legend_data"},
		{lipgloss.NewStyle().Foreground(theme.Op), "legend_op"},
		{lipgloss.NewStyle().Foreground(theme.Result), "legend_result"},
		{lipgloss.NewStyle().Foreground(theme.Answer), "legend_answer"},
	}
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, e.color.Render("●")+" "+theme.Subtitle.Render(i18n.Lookup(lang, e.key)))
	}
	return strings.Join(parts, "   ")
}
