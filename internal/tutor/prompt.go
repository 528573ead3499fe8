package tutor

import (
	"strings"

	"github.com/abhisek/mathstep/internal/i18n"
	"github.com/abhisek/mathstep/internal/media"
)

// Prompt is what the model client sends: a system instruction, the user
// text and an optional image.
type Prompt struct {
	System string
	Text   string
	Image  *media.Image
}

// BuildPrompt assembles the model call for lang. With an image, the text
// becomes extra context, or a read-the-image directive when blank. Without
// one the problem text is sent alone.
func BuildPrompt(lang i18n.Language, text string, img *media.Image) Prompt {
	p := Prompt{System: i18n.SystemInstruction(lang), Text: text}
	if img == nil {
		return p
	}
	p.Image = img
	if strings.TrimSpace(text) != "" {
		p.Text = i18n.Lookup(lang, "extra_text") + text
	} else {
		p.Text = i18n.Lookup(lang, "image_prompt")
	}
	return p
}
