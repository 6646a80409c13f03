package admin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-sitecontent/content"
	"github.com/goliatone/go-sitecontent/internal/util"
)

// SplitField turns a dotted field key into its segments, rejecting empty segments.
func SplitField(field string) ([]string, error) {
	trimmed := strings.TrimSpace(field)
	if trimmed == "" {
		return nil, ErrFieldRequired
	}
	segments := strings.Split(trimmed, ".")
	for _, segment := range segments {
		if strings.TrimSpace(segment) == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidField, field)
		}
	}
	return segments, nil
}

// FlattenFields turns a nested object of edits into dotted leaf patches in key order. Plain
// objects are walked; localized {en, es} nodes, arrays, scalars and empty objects are leaves.
func FlattenFields(values map[string]any) []FieldPatch {
	var patches []FieldPatch
	flatten("", values, &patches)
	return patches
}

func flatten(prefix string, values map[string]any, patches *[]FieldPatch) {
	for _, key := range util.SortedKeys(values) {
		field := key
		if prefix != "" {
			field = prefix + "." + key
		}
		if node, ok := values[key].(map[string]any); ok && len(node) > 0 && !content.IsLocalizedNode(node) {
			flatten(field, node, patches)
			continue
		}
		*patches = append(*patches, FieldPatch{Field: field, Value: values[key]})
	}
}

// PatchField writes value at the dotted field path inside tree. When the existing value is a
// localized {en, es} node and value is a string, only the locale key changes. Any other value
// replaces the field. Missing intermediate objects are created.
func PatchField(tree map[string]any, field string, value any, locale content.Language) error {
	if tree == nil {
		return fmt.Errorf("%w: content tree is nil", ErrInvalidField)
	}
	segments, err := SplitField(field)
	if err != nil {
		return err
	}

	var parent any = tree
	for i, segment := range segments[:len(segments)-1] {
		next, err := descend(parent, segment, strings.Join(segments[:i+1], "."))
		if err != nil {
			return err
		}
		parent = next
	}
	return assign(parent, segments[len(segments)-1], field, value, locale)
}

// descend returns the child container at segment, creating an object when it is missing.
func descend(node any, segment, path string) (any, error) {
	switch container := node.(type) {
	case map[string]any:
		child, ok := container[segment]
		if !ok || child == nil {
			created := map[string]any{}
			container[segment] = created
			return created, nil
		}
		switch child.(type) {
		case map[string]any, []any:
			return child, nil
		}
		return nil, fmt.Errorf("%w: %s is not an object", ErrFieldConflict, path)
	case []any:
		index, err := arrayIndex(container, segment, path)
		if err != nil {
			return nil, err
		}
		switch container[index].(type) {
		case map[string]any, []any:
			return container[index], nil
		}
		return nil, fmt.Errorf("%w: %s is not an object", ErrFieldConflict, path)
	default:
		return nil, fmt.Errorf("%w: %s is not an object", ErrFieldConflict, path)
	}
}

func assign(node any, segment, field string, value any, locale content.Language) error {
	switch container := node.(type) {
	case map[string]any:
		patched, err := patchValue(container[segment], value, locale)
		if err != nil {
			return err
		}
		container[segment] = patched
		return nil
	case []any:
		index, err := arrayIndex(container, segment, field)
		if err != nil {
			return err
		}
		patched, err := patchValue(container[index], value, locale)
		if err != nil {
			return err
		}
		container[index] = patched
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrFieldConflict, field)
	}
}

func patchValue(existing, value any, locale content.Language) (any, error) {
	node, ok := existing.(map[string]any)
	if !ok || !content.IsLocalizedNode(node) {
		return value, nil
	}
	text, ok := value.(string)
	if !ok {
		return value, nil
	}
	if !locale.Valid() {
		return nil, fmt.Errorf("%w: %q", content.ErrUnknownLanguage, locale)
	}
	patched := make(map[string]any, len(node)+1)
	for key, v := range node {
		patched[key] = v
	}
	patched[string(locale)] = text
	return patched, nil
}

func arrayIndex(items []any, segment, path string) (int, error) {
	index, err := strconv.Atoi(segment)
	if err != nil || index < 0 || index >= len(items) {
		return 0, fmt.Errorf("%w: %s is not a valid array index", ErrInvalidField, path)
	}
	return index, nil
}
