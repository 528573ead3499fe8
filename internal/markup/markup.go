// Package markup reads the colored <span> markup the model puts in step
// explanations and renders it for terminals, Telegram, or plain text.
package markup

import (
	"errors"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Role is the meaning a color carries in an explanation.
type Role int

const (
	RolePlain Role = iota
	RoleData
	RoleOp
	RoleResult
	RoleAnswer
)

func (r Role) String() string {
	switch r {
	case RoleData:
		return "data"
	case RoleOp:
		return "op"
	case RoleResult:
		return "result"
	case RoleAnswer:
		return "answer"
	default:
		return "plain"
	}
}

// Palette colors used by the system instructions.
const (
	ColorData   = "#2E86C1"
	ColorOp     = "#E67E22"
	ColorResult = "#27AE60"
	ColorAnswer = "#E74C3C"
)

var colorDecl = regexp.MustCompile(`(?i)(?:^|;)\s*color\s*:\s*(#[0-9a-f]{3,8})`)

// RoleForColor maps a CSS hex color to its role. Unknown colors are plain.
func RoleForColor(hex string) Role {
	switch strings.ToUpper(strings.TrimSpace(hex)) {
	case ColorData:
		return RoleData
	case ColorOp:
		return RoleOp
	case ColorResult:
		return RoleResult
	case ColorAnswer:
		return RoleAnswer
	default:
		return RolePlain
	}
}

// Segment is a run of text sharing one role.
type Segment struct {
	Text string
	Role Role
}

// Parse splits s into role-tagged segments. Tags other than span and br are
// dropped and their text kept. Adjacent segments with the same role merge.
func Parse(s string) []Segment {
	var (
		segs  []Segment
		stack []Role
	)
	current := func() Role {
		if len(stack) == 0 {
			return RolePlain
		}
		return stack[len(stack)-1]
	}
	emit := func(text string, role Role) {
		if text == "" {
			return
		}
		if n := len(segs); n > 0 && segs[n-1].Role == role {
			segs[n-1].Text += text
			return
		}
		segs = append(segs, Segment{Text: text, Role: role})
	}

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				// Tokenizer gave up; keep the rest verbatim.
				emit(string(z.Raw()), current())
			}
			return segs
		case html.TextToken:
			emit(string(z.Text()), current())
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "span":
				if tt == html.SelfClosingTagToken {
					continue
				}
				role := current()
				for _, a := range tok.Attr {
					if a.Key != "style" {
						continue
					}
					if m := colorDecl.FindStringSubmatch(a.Val); m != nil {
						if r := RoleForColor(m[1]); r != RolePlain {
							role = r
						}
					}
				}
				stack = append(stack, role)
			case "br":
				emit("\n", current())
			}
		case html.EndTagToken:
			tok := z.Token()
			if tok.Data == "span" && len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
}

// Plain returns s with all markup removed.
func Plain(s string) string {
	var b strings.Builder
	for _, seg := range Parse(s) {
		b.WriteString(seg.Text)
	}
	return b.String()
}
