package validation

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-sitecontent/content"
)

//go:embed page_schema.json
var pageSchemaJSON []byte

const pageSchemaResource = "content-page.json"

var (
	pageSchemaOnce     sync.Once
	pageSchemaCompiled *jsonschema.Schema
	pageSchemaErr      error
)

func pageSchema() (*jsonschema.Schema, error) {
	pageSchemaOnce.Do(func() {
		pageSchemaCompiled, pageSchemaErr = compileSchema(pageSchemaResource, pageSchemaJSON)
	})
	return pageSchemaCompiled, pageSchemaErr
}

func compileSchema(name string, raw []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("validation: add schema resource: %w", err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("validation: compile schema: %w", err)
	}
	return compiled, nil
}

// schemaIssues validates payload and flattens the leaf causes into dotted-path issues.
func schemaIssues(schema *jsonschema.Schema, payload any) []content.Issue {
	err := schema.Validate(payload)
	if err == nil {
		return nil
	}
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) || validationErr == nil {
		return []content.Issue{{Message: err.Error()}}
	}
	issues := []content.Issue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, leafIssues(node)...)
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return issues
}

// leafIssues reports "missing properties" failures at the missing property's own path.
func leafIssues(node *jsonschema.ValidationError) []content.Issue {
	path := pointerToPath(node.InstanceLocation)
	message := strings.TrimSpace(node.Message)
	const missingPrefix = "missing properties:"
	if !strings.HasPrefix(message, missingPrefix) {
		return []content.Issue{{Path: path, Message: message}}
	}
	names := strings.Split(strings.TrimPrefix(message, missingPrefix), ",")
	out := make([]content.Issue, 0, len(names))
	for _, name := range names {
		name = strings.Trim(strings.TrimSpace(name), "'\"")
		if name == "" {
			continue
		}
		out = append(out, content.Issue{Path: joinPath(path, name), Message: "is required"})
	}
	if len(out) == 0 {
		return []content.Issue{{Path: path, Message: message}}
	}
	return out
}

// pointerToPath turns a JSON pointer ("/meta/version") into a dotted path ("meta.version").
func pointerToPath(pointer string) string {
	trimmed := strings.Trim(strings.TrimSpace(pointer), "/#")
	if trimmed == "" {
		return ""
	}
	segments := strings.Split(trimmed, "/")
	for i, segment := range segments {
		segment = strings.ReplaceAll(segment, "~1", "/")
		segments[i] = strings.ReplaceAll(segment, "~0", "~")
	}
	return strings.Join(segments, ".")
}

func joinPath(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.Trim(part, "."); part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, ".")
}
