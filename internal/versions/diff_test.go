package versions_test

import (
	"slices"
	"testing"

	"github.com/goliatone/go-sitecontent/internal/versions"
)

func TestDiffContentNestedPaths(t *testing.T) {
	from := map[string]any{
		"hero": map[string]any{
			"headline": map[string]any{"en": "Hello", "es": "Hola"},
			"image":    "/img/a.png",
		},
		"legacy": true,
		"tags":   []any{"a", "b"},
	}
	to := map[string]any{
		"hero": map[string]any{
			"headline": map[string]any{"en": "Hello", "es": "Buenas"},
			"subtitle": "new",
		},
		"tags": []any{"a", "b", "c"},
	}

	added, removed, modified := versions.DiffContent(from, to)
	if !slices.Equal(added, []string{"hero.subtitle"}) {
		t.Fatalf("unexpected added %v", added)
	}
	if !slices.Equal(removed, []string{"hero.image", "legacy"}) {
		t.Fatalf("unexpected removed %v", removed)
	}
	if !slices.Equal(modified, []string{"hero.headline.es", "tags"}) {
		t.Fatalf("unexpected modified %v", modified)
	}
}

func TestDiffContentArrayReorderIsModification(t *testing.T) {
	_, _, modified := versions.DiffContent(
		map[string]any{"items": []any{"a", "b"}},
		map[string]any{"items": []any{"b", "a"}},
	)
	if !slices.Equal(modified, []string{"items"}) {
		t.Fatalf("expected whole array marked modified, got %v", modified)
	}
}

func TestDiffContentTypeChange(t *testing.T) {
	added, removed, modified := versions.DiffContent(
		map[string]any{"cta": "Contact"},
		map[string]any{"cta": map[string]any{"en": "Contact"}},
	)
	if len(added) != 0 || len(removed) != 0 || !slices.Equal(modified, []string{"cta"}) {
		t.Fatalf("expected cta modified, got %v %v %v", added, removed, modified)
	}
}

func TestDiffContentIdentical(t *testing.T) {
	tree := map[string]any{"a": map[string]any{"b": 1.0}}
	added, removed, modified := versions.DiffContent(tree, tree)
	if len(added)+len(removed)+len(modified) != 0 {
		t.Fatalf("expected empty diff")
	}
	if added == nil || removed == nil || modified == nil {
		t.Fatalf("expected non-nil slices for JSON output")
	}
}
