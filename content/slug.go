package content

import (
	"strings"

	"github.com/goliatone/go-slug"
)

// NormalizePageID applies the default slug rules to a page identifier.
func NormalizePageID(value string) (string, error) {
	return slug.Normalize(strings.TrimSpace(value))
}

// IsValidPageID reports whether the identifier can be used as a file name and row key as-is.
func IsValidPageID(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed != value {
		return false
	}
	if strings.ContainsAny(trimmed, `/\`) || strings.Contains(trimmed, "..") {
		return false
	}
	return slug.IsValid(trimmed)
}
