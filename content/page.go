package content

import "time"

// SharedHeaderID and SharedFooterID are the page ids holding site-wide chrome.
const (
	SharedHeaderID = "header"
	SharedFooterID = "footer"
)

// ContentMeta identifies a page revision.
type ContentMeta struct {
	PageID      string `json:"pageId"`
	LastUpdated string `json:"lastUpdated"`
	Version     int    `json:"version"`
}

// SEOContent holds the localized metadata rendered into <head>.
type SEOContent struct {
	Title       LocalizedText   `json:"title"`
	Description LocalizedText   `json:"description"`
	Keywords    *LocalizedArray `json:"keywords,omitempty"`
}

// ContentPage is the versioned, bilingual page envelope. Content is page specific and
// only structurally validated at the top level.
type ContentPage struct {
	Meta    ContentMeta    `json:"meta"`
	SEO     SEOContent     `json:"seo"`
	Content map[string]any `json:"content"`
}

// LastUpdatedTime parses Meta.LastUpdated.
func (p *ContentPage) LastUpdatedTime() (time.Time, error) {
	return ParseTimestamp(p.Meta.LastUpdated)
}

// Clone returns a deep copy of the page.
func (p *ContentPage) Clone() *ContentPage {
	if p == nil {
		return nil
	}
	cloned := &ContentPage{
		Meta: p.Meta,
		SEO: SEOContent{
			Title:       p.SEO.Title,
			Description: p.SEO.Description,
		},
		Content: CloneTree(p.Content),
	}
	if p.SEO.Keywords != nil {
		keywords := LocalizedArray{
			EN: append([]string(nil), p.SEO.Keywords.EN...),
			ES: append([]string(nil), p.SEO.Keywords.ES...),
		}
		cloned.SEO.Keywords = &keywords
	}
	return cloned
}

// FormatTimestamp renders t the way Meta.LastUpdated is stored.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp accepts the ISO-8601 shapes produced by authors and by FormatTimestamp.
func ParseTimestamp(value string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.000Z07:00",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	var lastErr error
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// CloneTree deep copies a JSON-compatible map.
func CloneTree(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = CloneValue(value)
	}
	return out
}

// CloneValue deep copies a JSON-compatible value.
func CloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return CloneTree(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = CloneValue(item)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(typed))
		for i, item := range typed {
			out[i] = CloneTree(item)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return value
	}
}
