package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/abhisek/mathstep/internal/i18n"
	"github.com/abhisek/mathstep/internal/markup"
	"github.com/abhisek/mathstep/internal/solution"
	"github.com/abhisek/mathstep/internal/tutor"
)

// Callback data carried by the inline buttons.
const (
	cbNext = "next"
	cbNew  = "new"
	cbLang = "lang"
)

// maxMessageRunes is Telegram's text limit.
const maxMessageRunes = 4096

const previewRunes = 80

func nextKeyboard(lang i18n.Language, next int) tgbotapi.InlineKeyboardMarkup {
	label := strings.TrimSpace(i18n.Lookup(lang, "next_step")) + fmt.Sprintf(" %d", next)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, cbNext)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.Lookup(lang, "new_problem"), cbNew),
			tgbotapi.NewInlineKeyboardButtonData(i18n.Lookup(lang, "lang_toggle"), cbLang),
		),
	)
}

func doneKeyboard(lang i18n.Language) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(strings.TrimSpace(i18n.Lookup(lang, "start_new")), cbNew),
			tgbotapi.NewInlineKeyboardButtonData(i18n.Lookup(lang, "lang_toggle"), cbLang),
		),
	)
}

func langKeyboard(lang i18n.Language) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(i18n.Lookup(lang, "lang_toggle"), cbLang)),
	)
}

// keyboardFor picks the buttons matching the session's reveal state.
func keyboardFor(sess *tutor.Session) tgbotapi.InlineKeyboardMarkup {
	lang := sess.Language()
	visible, total := sess.Progress()
	if visible < total {
		return nextKeyboard(lang, visible+1)
	}
	return doneKeyboard(lang)
}

// analysisHTML is the first message after a successful solve: problem,
// topic, analysis, equation and the color legend.
func analysisHTML(lang i18n.Language, problem string, sol *solution.Solution) string {
	t := func(key string) string { return i18n.Lookup(lang, key) }
	var b strings.Builder

	fmt.Fprintf(&b, "<b>%s</b>\n%s\n\n", markup.Escape(t("problem_label")), markup.Escape(tutor.Preview(problem, previewRunes)))
	fmt.Fprintf(&b, "<b>%s</b>: %s\n\n", markup.Escape(t("topic_label")), markup.TelegramHTML(solution.Field(sol.Topic)))
	fmt.Fprintf(&b, "<b>%s</b>\n", markup.Escape(t("analysis_title")))
	rows := []struct{ key, val string }{
		{"given_label", sol.Analysis.Given},
		{"find_label", sol.Analysis.Find},
		{"keywords_label", sol.Analysis.Keywords},
		{"logic_label", sol.Analysis.Logic},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "%s: %s\n", markup.Escape(t(r.key)), markup.TelegramHTML(solution.Field(r.val)))
	}
	if sol.HasEquation() {
		fmt.Fprintf(&b, "\n<b>%s</b>\n<code>%s</code>\n", markup.Escape(t("equation_label")), markup.Escape(markup.Plain(sol.Equation)))
	}
	b.WriteString("\n")
	b.WriteString(legendHTML(lang))
	return b.String()
}

func legendHTML(lang i18n.Language) string {
	return fmt.Sprintf("<b>%s</b> · <b>%s</b> · <i>%s</i> · <b><u>%s</u></b>",
		markup.Escape(i18n.Lookup(lang, "legend_data")),
		markup.Escape(i18n.Lookup(lang, "legend_op")),
		markup.Escape(i18n.Lookup(lang, "legend_result")),
		markup.Escape(i18n.Lookup(lang, "legend_answer")),
	)
}

// stepHTML renders step n (one-based) of total.
func stepHTML(lang i18n.Language, n, total int, step solution.Step, final bool) string {
	icon := "🔹"
	if final {
		icon = "🏁"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s %d / %d</b>", icon, markup.Escape(i18n.Lookup(lang, "step_label")), n, total)
	if title := strings.TrimSpace(step.Title); title != "" {
		fmt.Fprintf(&b, ": <b>%s</b>", markup.Escape(markup.Plain(title)))
	}
	b.WriteString("\n\n")
	b.WriteString(markup.TelegramHTML(step.Explanation))
	return b.String()
}

func doneHTML(lang i18n.Language) string {
	return fmt.Sprintf("🎉 <b>%s</b>\n%s",
		markup.Escape(i18n.Lookup(lang, "all_done")),
		markup.Escape(i18n.Lookup(lang, "all_done_sub")))
}

// fitMessage keeps text within Telegram's limit. Cutting HTML could
// leave a tag open, so oversize text falls back to plain.
func fitMessage(html string) (text, parseMode string) {
	if len([]rune(html)) <= maxMessageRunes {
		return html, tgbotapi.ModeHTML
	}
	plain := []rune(markup.Plain(html))
	if len(plain) > maxMessageRunes {
		plain = append(plain[:maxMessageRunes-1], '…')
	}
	return string(plain), ""
}
