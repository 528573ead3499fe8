package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/ui/theme"
)

// StepProgress shows "<label> k / n" followed by a bar.
type StepProgress struct {
	Label   string
	Visible int
	Total   int
	Width   int
}

// NewStepProgress creates a step progress indicator.
func NewStepProgress(label string, visible, total, width int) StepProgress {
	return StepProgress{Label: label, Visible: visible, Total: total, Width: width}
}

// Fraction returns Visible/Total clamped to [0, 1]. Zero total counts as
// complete.
func (p StepProgress) Fraction() float64 {
	if p.Total <= 0 {
		return 1
	}
	return min(max(float64(p.Visible)/float64(p.Total), 0), 1)
}

// View renders the progress line.
func (p StepProgress) View() string {
	text := lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true).
		Render(fmt.Sprintf("%s %d / %d", p.Label, p.Visible, p.Total))

	barWidth := max(p.Width-lipgloss.Width(text)-2, 4)
	filled := int(float64(barWidth) * p.Fraction())
	empty := barWidth - filled

	return text + "  " +
		theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", empty))
}
