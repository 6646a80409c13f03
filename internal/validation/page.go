// Package validation checks raw page payloads against the ContentPage contract before
// they reach the cache or a source's write path.
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-sitecontent/content"
)

// Result is the non-panicking, non-error outcome of SafeValidate.
type Result struct {
	Success bool                 `json:"success"`
	Page    *content.ContentPage `json:"page,omitempty"`
	Issues  []content.Issue      `json:"issues,omitempty"`
}

// Validate checks raw and decodes it into a ContentPage. Failures are returned as
// *content.ValidationError listing every offending path.
func Validate(raw map[string]any) (*content.ContentPage, error) {
	pageID := rawPageID(raw)

	schema, err := pageSchema()
	if err != nil {
		return nil, &content.ValidationError{PageID: pageID, Issues: []content.Issue{{Message: err.Error()}}}
	}

	payload, err := normalize(raw)
	if err != nil {
		return nil, &content.ValidationError{PageID: pageID, Issues: []content.Issue{{Message: err.Error()}}}
	}

	issues := schemaIssues(schema, payload)
	normalized, _ := payload.(map[string]any)
	issues = append(issues, timestampIssues(normalized)...)
	if contentTree, ok := normalized["content"].(map[string]any); ok {
		issues = append(issues, TeamMemberIssues(contentTree)...)
	}
	if len(issues) > 0 {
		return nil, &content.ValidationError{PageID: pageID, Issues: issues}
	}

	page, err := decodePage(raw)
	if err != nil {
		return nil, &content.ValidationError{PageID: pageID, Issues: []content.Issue{{Message: err.Error()}}}
	}
	return page, nil
}

// SafeValidate is the variant of Validate that reports failure through Result.
func SafeValidate(raw map[string]any) Result {
	page, err := Validate(raw)
	if err != nil {
		issues := content.ValidationIssues(err)
		if len(issues) == 0 {
			issues = []content.Issue{{Message: err.Error()}}
		}
		return Result{Success: false, Issues: issues}
	}
	return Result{Success: true, Page: page}
}

// ValidateJSON decodes data and validates it.
func ValidateJSON(data []byte) (*content.ContentPage, error) {
	raw, err := DecodeRaw(data)
	if err != nil {
		return nil, &content.ValidationError{Issues: []content.Issue{{Message: err.Error()}}}
	}
	return Validate(raw)
}

// ValidatePage re-validates an already typed page, e.g. after an admin patch.
func ValidatePage(page *content.ContentPage) error {
	if page == nil {
		return &content.ValidationError{Issues: []content.Issue{{Message: "page is required"}}}
	}
	raw, err := ToRaw(page)
	if err != nil {
		return &content.ValidationError{PageID: page.Meta.PageID, Issues: []content.Issue{{Message: err.Error()}}}
	}
	_, err = Validate(raw)
	return err
}

// DecodeRaw decodes a JSON document into a generic map.
func DecodeRaw(data []byte) (map[string]any, error) {
	var raw map[string]any
	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode page json: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("decode page json: document is null")
	}
	return raw, nil
}

// ToRaw converts a typed page back into its generic map form.
func ToRaw(page *content.ContentPage) (map[string]any, error) {
	encoded, err := json.Marshal(page)
	if err != nil {
		return nil, fmt.Errorf("encode page: %w", err)
	}
	return DecodeRaw(encoded)
}

// normalize converts Go-native values (ints, typed slices) into the JSON value model the
// schema validator expects.
func normalize(raw map[string]any) (any, error) {
	if raw == nil {
		return map[string]any{}, nil
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode page: %w", err)
	}
	var payload any
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	return payload, nil
}

func decodePage(raw map[string]any) (*content.ContentPage, error) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode page: %w", err)
	}
	var page content.ContentPage
	if err := json.Unmarshal(encoded, &page); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	if page.Content == nil {
		page.Content = map[string]any{}
	}
	return &page, nil
}

func timestampIssues(raw map[string]any) []content.Issue {
	meta, ok := raw["meta"].(map[string]any)
	if !ok {
		return nil
	}
	value, ok := meta["lastUpdated"].(string)
	if !ok || value == "" {
		return nil
	}
	if _, err := content.ParseTimestamp(value); err != nil {
		return []content.Issue{{Path: "meta.lastUpdated", Message: "must be an ISO-8601 timestamp"}}
	}
	return nil
}

func rawPageID(raw map[string]any) string {
	meta, ok := raw["meta"].(map[string]any)
	if !ok {
		return ""
	}
	id, _ := meta["pageId"].(string)
	return id
}

// ValidatePageID rejects ids that cannot safely address a file or row.
func ValidatePageID(pageID string) error {
	if pageID == "" {
		return content.ErrPageIDRequired
	}
	if !content.IsValidPageID(pageID) {
		return fmt.Errorf("%w: %q", content.ErrPageIDInvalid, pageID)
	}
	return nil
}
