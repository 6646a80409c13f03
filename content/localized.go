package content

import "strings"

// LocalizedText is a bilingual string pair. English is always considered present;
// Spanish falls back to English when empty.
type LocalizedText struct {
	EN string `json:"en"`
	ES string `json:"es"`
}

// LocalizedArray is the list counterpart of LocalizedText.
type LocalizedArray struct {
	EN []string `json:"en"`
	ES []string `json:"es"`
}

// Text builds a LocalizedText.
func Text(en, es string) LocalizedText {
	return LocalizedText{EN: en, ES: es}
}

// Get returns the raw value stored for lang without fallback.
func (t LocalizedText) Get(lang Language) string {
	switch lang {
	case English:
		return t.EN
	case Spanish:
		return t.ES
	default:
		return ""
	}
}

// Resolve returns the value for lang, falling back to English.
func (t LocalizedText) Resolve(lang Language) string {
	return Resolve(t, lang)
}

// Resolve returns text[lang] when non-empty, else text.en, else "".
func Resolve(text LocalizedText, lang Language) string {
	if value := text.Get(lang); value != "" {
		return value
	}
	return text.EN
}

// ResolveArray applies the LocalizedText fallback rule to arrays.
func ResolveArray(values LocalizedArray, lang Language) []string {
	var selected []string
	switch lang {
	case English:
		selected = values.EN
	case Spanish:
		selected = values.ES
	}
	if len(selected) > 0 {
		return selected
	}
	if len(values.EN) > 0 {
		return values.EN
	}
	return []string{}
}

// ResolveMap resolves an untyped {"en": ..., "es": ...} node taken from a page content tree.
// Missing keys and non-string values are treated as empty.
func ResolveMap(node map[string]any, lang Language) string {
	if node == nil {
		return ""
	}
	if value, ok := node[string(lang)].(string); ok && value != "" {
		return value
	}
	if value, ok := node[string(English)].(string); ok {
		return value
	}
	return ""
}

// IsLocalizedNode reports whether node has the shape of a LocalizedText: an "en" string,
// an optional "es" string and nothing else.
func IsLocalizedNode(node map[string]any) bool {
	if node == nil {
		return false
	}
	en, ok := node[string(English)]
	if !ok {
		return false
	}
	if _, ok := en.(string); !ok {
		return false
	}
	for key, value := range node {
		switch key {
		case string(English):
		case string(Spanish):
			if _, ok := value.(string); !ok && value != nil {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// TextFromMap converts a localized node into a LocalizedText, trimming nothing.
func TextFromMap(node map[string]any) LocalizedText {
	var out LocalizedText
	if node == nil {
		return out
	}
	out.EN, _ = node[string(English)].(string)
	out.ES, _ = node[string(Spanish)].(string)
	return out
}

// IsBlank reports whether both languages are empty after trimming.
func (t LocalizedText) IsBlank() bool {
	return strings.TrimSpace(t.EN) == "" && strings.TrimSpace(t.ES) == ""
}
