package result

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/i18n"
	"github.com/abhisek/mathstep/internal/markup"
	"github.com/abhisek/mathstep/internal/solution"
	"github.com/abhisek/mathstep/internal/tutor"
	"github.com/abhisek/mathstep/internal/ui/components"
	"github.com/abhisek/mathstep/internal/ui/theme"
)

// previewRunes caps the problem echo at the top of the result.
const previewRunes = 80

// Render draws the whole result document for sess at width. It returns an
// empty string in Input mode.
func Render(sess *tutor.Session, width int) string {
	if sess.Solution() == nil {
		return ""
	}
	lang := sess.Language()
	t := func(key string) string { return i18n.Lookup(lang, key) }
	inner := innerWidth(width)

	sections := []string{RenderAnalysis(sess, width)}

	visible, total := sess.Progress()
	sections = append(sections,
		"",
		components.Legend(lang),
		"",
		components.NewStepProgress(t("step_label"), visible, total, min(inner, 60)).View(),
	)
	for i := range sess.VisibleStepList() {
		sections = append(sections, RenderStep(sess, i, width))
	}

	sections = append(sections, "")
	if visible < total {
		sections = append(sections, components.NewButton(fmt.Sprintf("%s %d", t("next_step"), visible+1), true, "enter").View())
	} else {
		sections = append(sections, RenderDone(lang, width), components.NewButton(t("start_new"), true, "enter").View())
	}

	return strings.Join(sections, "\n")
}

func innerWidth(width int) int {
	return max(width-4, 20)
}

// RenderAnalysis draws the problem echo, topic, analysis rows and the
// equation box.
func RenderAnalysis(sess *tutor.Session, width int) string {
	sol := sess.Solution()
	if sol == nil {
		return ""
	}
	lang := sess.Language()
	t := func(key string) string { return i18n.Lookup(lang, key) }
	styles := markup.DefaultStyles()
	inner := innerWidth(width)

	sections := []string{
		theme.Label.Render(t("problem_label")+": ") + theme.Body.Render(sess.ProblemPreview(previewRunes)),
		"",
		theme.Title.Render(t("analysis_title")),
	}

	rows := []struct{ key, value string }{
		{"topic_label", sol.Topic},
		{"given_label", sol.Analysis.Given},
		{"find_label", sol.Analysis.Find},
		{"keywords_label", sol.Analysis.Keywords},
		{"logic_label", sol.Analysis.Logic},
	}
	for _, r := range rows {
		line := theme.Label.Render(t(r.key)+": ") + markup.Terminal(solution.Field(r.value), styles)
		sections = append(sections, lipgloss.NewStyle().Width(inner).Render(line))
	}

	if sol.HasEquation() {
		sections = append(sections,
			"",
			theme.Label.Render(t("equation_label")),
			theme.EquationBox.Render(markup.Terminal(strings.TrimSpace(sol.Equation), styles)),
		)
	}
	return strings.Join(sections, "\n")
}

// RenderStep draws revealed step i (zero-based) as a card, the final card
// once every step is shown. It returns "" for a step not yet revealed.
func RenderStep(sess *tutor.Session, i, width int) string {
	steps := sess.VisibleStepList()
	if i < 0 || i >= len(steps) {
		return ""
	}
	lang := sess.Language()
	step := steps[i]
	card := theme.Card
	if sess.IsFinal(i) {
		card = theme.FinalCard
	}
	body := theme.Label.Render(fmt.Sprintf("%s %d: %s", i18n.Lookup(lang, "step_label"), i+1, markup.Plain(step.Title))) +
		"\n" + markup.Terminal(step.Explanation, markup.DefaultStyles())
	return card.Width(innerWidth(width)).Render(body)
}

// RenderDone draws the completion card.
func RenderDone(lang i18n.Language, width int) string {
	return theme.DoneCard.Width(min(innerWidth(width), 60)).Render(
		i18n.Lookup(lang, "all_done") + "\n" + theme.Subtitle.Render(i18n.Lookup(lang, "all_done_sub")))
}
