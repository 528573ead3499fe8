package tutor

import (
	"errors"
	"strings"

	"github.com/abhisek/mathstep/internal/i18n"
	"github.com/abhisek/mathstep/internal/media"
	"github.com/abhisek/mathstep/internal/solution"
)

// Describe turns a submit error into the text shown to the learner.
func Describe(lang i18n.Language, err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return i18n.Lookup(lang, "warn_empty")
	case errors.Is(err, ErrShowingResult):
		return i18n.Lookup(lang, "warn_result_shown")
	case errors.Is(err, ErrBusy):
		return i18n.Lookup(lang, "bot_busy")
	case errors.Is(err, solution.ErrResponseParse):
		return i18n.Lookup(lang, "err_json")
	case errors.Is(err, media.ErrUnsupportedType),
		errors.Is(err, media.ErrTooLarge),
		errors.Is(err, media.ErrEmpty):
		return i18n.Lookup(lang, "err_image") + ": " + err.Error()
	}
	msg := err.Error()
	msg = strings.TrimPrefix(msg, ErrModelInvocation.Error()+": ")
	return i18n.Lookup(lang, "err_generic") + ": " + msg
}
