package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/goliatone/go-sitecontent/content"
)

func LoadFixture(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func LoadGolden(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// PageDocument builds a minimal well-formed raw page with a bilingual hero headline.
func PageDocument(pageID string, version int) map[string]any {
	return map[string]any{
		"meta": map[string]any{
			"pageId":      pageID,
			"lastUpdated": "2026-01-15T09:30:00Z",
			"version":     version,
		},
		"seo": map[string]any{
			"title":       map[string]any{"en": "Title " + pageID, "es": "Título " + pageID},
			"description": map[string]any{"en": "Description", "es": ""},
		},
		"content": map[string]any{
			"hero": map[string]any{
				"headline": map[string]any{"en": "Hello", "es": "Hola"},
				"cta":      map[string]any{"link": "/contact"},
			},
		},
	}
}

// Page returns PageDocument decoded into a ContentPage.
func Page(pageID string, version int) *content.ContentPage {
	encoded, err := json.Marshal(PageDocument(pageID, version))
	if err != nil {
		panic(err)
	}
	var page content.ContentPage
	if err := json.Unmarshal(encoded, &page); err != nil {
		panic(err)
	}
	return &page
}

// WritePageFile writes raw as JSON to root/rel, creating parent directories.
func WritePageFile(root, rel string, raw map[string]any) error {
	target := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(target, encoded, 0o644)
}
