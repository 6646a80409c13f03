package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-sitecontent/content"
)

var teamLanguageValues = func() []any {
	values := []any{}
	for _, lang := range content.TeamLanguages() {
		values = append(values, string(lang))
	}
	return values
}()

var localizedTextRule = ozzo.Map(
	ozzo.Key("en", ozzo.By(stringValue)),
	ozzo.Key("es", ozzo.By(stringValue)).Optional(),
).AllowExtraKeys()

var localizedArrayRule = ozzo.Map(
	ozzo.Key("en", ozzo.By(stringList)),
	ozzo.Key("es", ozzo.By(stringList)).Optional(),
).AllowExtraKeys()

func teamMemberRule() ozzo.MapRule {
	return ozzo.Map(
		ozzo.Key("name", ozzo.Required, ozzo.By(stringValue)),
		ozzo.Key("language", ozzo.Required, ozzo.In(teamLanguageValues...).Error("must be one of english, spanish, bilingual")),
		ozzo.Key("displayOrder", ozzo.By(numberValue)),
		ozzo.Key("id", ozzo.By(stringValue)).Optional(),
		ozzo.Key("title", ozzo.By(mapValue), localizedTextRule).Optional(),
		ozzo.Key("bio", ozzo.By(mapValue), localizedTextRule).Optional(),
		ozzo.Key("specialties", ozzo.By(mapValue), localizedArrayRule).Optional(),
		ozzo.Key("imageUrl", ozzo.By(stringValue)).Optional(),
		ozzo.Key("email", ozzo.By(stringValue)).Optional(),
	).AllowExtraKeys()
}

// TeamMemberIssues validates contentTree["team_members"] when present. Paths are rooted at
// "content", e.g. "content.team_members.2.language".
func TeamMemberIssues(contentTree map[string]any) []content.Issue {
	raw, ok := contentTree[content.TeamMembersKey]
	if !ok || raw == nil {
		return nil
	}
	base := joinPath("content", content.TeamMembersKey)
	members, ok := raw.([]any)
	if !ok {
		return []content.Issue{{Path: base, Message: "must be an array"}}
	}

	rule := teamMemberRule()
	issues := []content.Issue{}
	for i, member := range members {
		path := joinPath(base, strconv.Itoa(i))
		record, ok := member.(map[string]any)
		if !ok {
			issues = append(issues, content.Issue{Path: path, Message: "must be an object"})
			continue
		}
		if err := ozzo.Validate(record, rule); err != nil {
			issues = append(issues, flattenErrors(path, err)...)
		}
	}
	return issues
}

// ValidateTeamMember validates a typed record, e.g. a row from the team_members table.
func ValidateTeamMember(member content.TeamMember) error {
	languages := make([]any, 0, len(content.TeamLanguages()))
	for _, lang := range content.TeamLanguages() {
		languages = append(languages, lang)
	}
	err := ozzo.ValidateStruct(&member,
		ozzo.Field(&member.Name, ozzo.Required),
		ozzo.Field(&member.Language, ozzo.Required, ozzo.In(languages...).Error("must be one of english, spanish, bilingual")),
		ozzo.Field(&member.Title, ozzo.By(func(value any) error {
			if text, ok := value.(content.LocalizedText); ok && text.EN == "" && text.ES != "" {
				return errors.New("english value is required when spanish is set")
			}
			return nil
		})),
	)
	if err == nil {
		return nil
	}
	return &content.ValidationError{Issues: flattenErrors("", err)}
}

// DecodeTeamMembers validates and decodes content.team_members, sorted by display order.
func DecodeTeamMembers(page *content.ContentPage) ([]content.TeamMember, error) {
	if page == nil || page.Content == nil {
		return nil, nil
	}
	if issues := TeamMemberIssues(page.Content); len(issues) > 0 {
		return nil, &content.ValidationError{PageID: page.Meta.PageID, Issues: issues}
	}
	raw, ok := page.Content[content.TeamMembersKey]
	if !ok || raw == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode team members: %w", err)
	}
	var members []content.TeamMember
	if err := json.Unmarshal(encoded, &members); err != nil {
		return nil, &content.ValidationError{
			PageID: page.Meta.PageID,
			Issues: []content.Issue{{Path: joinPath("content", content.TeamMembersKey), Message: err.Error()}},
		}
	}
	content.SortTeamMembers(members)
	return members, nil
}

func flattenErrors(prefix string, err error) []content.Issue {
	var errs ozzo.Errors
	if !errors.As(err, &errs) {
		return []content.Issue{{Path: prefix, Message: err.Error()}}
	}
	keys := make([]string, 0, len(errs))
	for key := range errs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	issues := []content.Issue{}
	for _, key := range keys {
		nested := errs[key]
		if nested == nil {
			continue
		}
		issues = append(issues, flattenErrors(joinPath(prefix, key), nested)...)
	}
	return issues
}

func stringValue(value any) error {
	if value == nil {
		return nil
	}
	if _, ok := value.(string); !ok {
		return errors.New("must be a string")
	}
	return nil
}

func stringList(value any) error {
	items, ok := value.([]any)
	if !ok {
		if _, typed := value.([]string); typed {
			return nil
		}
		return errors.New("must be an array of strings")
	}
	for _, item := range items {
		if _, ok := item.(string); !ok {
			return errors.New("must be an array of strings")
		}
	}
	return nil
}

func numberValue(value any) error {
	switch value.(type) {
	case float64, float32, int, int32, int64, json.Number:
		return nil
	default:
		return errors.New("must be a number")
	}
}

func mapValue(value any) error {
	if _, ok := value.(map[string]any); !ok {
		return errors.New("must be an object")
	}
	return nil
}

// ValidateTeamMembers returns a *content.ValidationError when content.team_members is malformed.
func ValidateTeamMembers(pageID string, contentTree map[string]any) error {
	issues := TeamMemberIssues(contentTree)
	if len(issues) == 0 {
		return nil
	}
	return &content.ValidationError{PageID: pageID, Issues: issues}
}
