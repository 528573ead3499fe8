package i18n

import (
	"fmt"
	"strings"
)

// Language is one of the two supported locales.
type Language string

const (
	TH Language = "TH"
	EN Language = "EN"
)

// Default is the language a new session starts in.
const Default = TH

// Other returns the opposite language.
func (l Language) Other() Language {
	if l == EN {
		return TH
	}
	return EN
}

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return l == TH || l == EN
}

func (l Language) String() string {
	return string(l)
}

// ParseLanguage accepts "th" or "en" in any case.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToUpper(strings.TrimSpace(s))) {
	case TH:
		return TH, nil
	case EN:
		return EN, nil
	}
	return "", fmt.Errorf("unsupported language %q (want th or en)", s)
}
