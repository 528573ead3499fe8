package markup

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/net/html"
)

// Styles holds the terminal style for each colored role.
type Styles map[Role]lipgloss.Style

// DefaultStyles uses the same colors the model was asked to emit.
func DefaultStyles() Styles {
	return Styles{
		RoleData:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorData)).Bold(true),
		RoleOp:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorOp)).Bold(true),
		RoleResult: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorResult)).Bold(true),
		RoleAnswer: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAnswer)).Bold(true).Underline(true),
	}
}

// Terminal renders s with ANSI styling. Plain segments are left untouched.
func Terminal(s string, styles Styles) string {
	var b strings.Builder
	for _, seg := range Parse(s) {
		st, ok := styles[seg.Role]
		if !ok || seg.Role == RolePlain {
			b.WriteString(seg.Text)
			continue
		}
		b.WriteString(renderSegment(st, seg.Text))
	}
	return b.String()
}

// renderSegment styles text as one run. lipgloss styles underlined text
// rune by rune and leaves spaces unbolded, which splits a multi-word answer.
func renderSegment(st lipgloss.Style, text string) string {
	if !st.GetUnderline() {
		return st.Render(text)
	}
	var as ansi.Style
	if st.GetBold() {
		as = as.Bold()
	}
	if st.GetItalic() {
		as = as.Italic(true)
	}
	as = as.Underline(true)
	if fg := st.GetForeground(); fg != nil {
		if _, none := fg.(lipgloss.NoColor); !none {
			as = as.ForegroundColor(fg)
		}
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = as.Styled(line)
	}
	return strings.Join(lines, "\n")
}

var telegramTags = map[Role][2]string{
	RoleData:   {"<b>", "</b>"},
	RoleOp:     {"<b>", "</b>"},
	RoleResult: {"<i>", "</i>"},
	RoleAnswer: {"<b><u>", "</u></b>"},
}

// TelegramHTML renders s using the HTML subset Telegram accepts in
// ParseMode HTML. All text is escaped.
func TelegramHTML(s string) string {
	var b strings.Builder
	for _, seg := range Parse(s) {
		text := html.EscapeString(seg.Text)
		tags, ok := telegramTags[seg.Role]
		if !ok {
			b.WriteString(text)
			continue
		}
		b.WriteString(tags[0])
		b.WriteString(text)
		b.WriteString(tags[1])
	}
	return b.String()
}

// Escape escapes s for Telegram HTML without interpreting markup.
func Escape(s string) string {
	return html.EscapeString(s)
}
