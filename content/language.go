package content

import (
	"strings"

	"golang.org/x/text/language"
)

// Language identifies one of the two site languages.
type Language string

const (
	English Language = "en"
	Spanish Language = "es"
)

// DefaultLanguage is the language every LocalizedText is guaranteed to carry.
const DefaultLanguage = English

var (
	supportedTags = []language.Tag{language.English, language.Spanish}
	matcher       = language.NewMatcher(supportedTags)
)

// Languages returns the supported languages in priority order.
func Languages() []Language {
	return []Language{English, Spanish}
}

// String implements fmt.Stringer.
func (l Language) String() string {
	return string(l)
}

// Valid reports whether the language is supported.
func (l Language) Valid() bool {
	return l == English || l == Spanish
}

// ParseLanguage normalises a BCP 47 tag ("es-MX", "EN") into a supported language.
func ParseLanguage(value string) (Language, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	switch Language(base.String()) {
	case English:
		return English, true
	case Spanish:
		return Spanish, true
	default:
		return "", false
	}
}

// NegotiateLanguage picks the best supported language for an Accept-Language header,
// defaulting to English.
func NegotiateLanguage(acceptLanguage string) Language {
	accept := strings.TrimSpace(acceptLanguage)
	if accept == "" {
		return DefaultLanguage
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(supportedTags) {
		return DefaultLanguage
	}
	return Languages()[index]
}
