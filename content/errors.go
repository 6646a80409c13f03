package content

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("content: page not found")
	ErrValidation        = errors.New("content: validation failed")
	ErrSourceUnavailable = errors.New("content: source unavailable")
	ErrPageIDRequired    = errors.New("content: page id required")
	ErrPageIDInvalid     = errors.New("content: page id contains invalid characters")
	ErrUnknownLanguage   = errors.New("content: unknown language")
)

// NotFoundError reports a page id unknown to the active source.
type NotFoundError struct {
	PageID string
	Locale Language
	Source string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ErrNotFound.Error()
	}
	parts := []string{fmt.Sprintf("%s: page=%s", ErrNotFound.Error(), e.PageID)}
	if e.Locale != "" {
		parts = append(parts, "locale="+string(e.Locale))
	}
	if e.Source != "" {
		parts = append(parts, "source="+e.Source)
	}
	return strings.Join(parts, " ")
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Issue is a single schema violation located by a dotted path.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	path := strings.TrimSpace(i.Path)
	if path == "" {
		path = "(root)"
	}
	if i.Message == "" {
		return path
	}
	return path + ": " + i.Message
}

// ValidationError reports a schema mismatch for a page.
type ValidationError struct {
	PageID string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ErrValidation.Error()
	}
	prefix := ErrValidation.Error()
	if e.PageID != "" {
		prefix = fmt.Sprintf("%s: page=%s", prefix, e.PageID)
	}
	if len(e.Issues) == 0 {
		return prefix
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return prefix + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// HasPath reports whether any issue is located at path.
func (e *ValidationError) HasPath(path string) bool {
	if e == nil {
		return false
	}
	for _, issue := range e.Issues {
		if issue.Path == path {
			return true
		}
	}
	return false
}

// SourceUnavailableError wraps a connection, auth, decode or filesystem failure.
type SourceUnavailableError struct {
	PageID string
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	if e == nil {
		return ErrSourceUnavailable.Error()
	}
	msg := ErrSourceUnavailable.Error()
	if e.Source != "" {
		msg = fmt.Sprintf("%s: source=%s", msg, e.Source)
	}
	if e.PageID != "" {
		msg = fmt.Sprintf("%s page=%s", msg, e.PageID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *SourceUnavailableError) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Err == nil {
		return []error{ErrSourceUnavailable}
	}
	return []error{ErrSourceUnavailable, e.Err}
}

// IsNotFound reports whether err is a missing page error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ValidationIssues extracts the issues carried by err, if any.
func ValidationIssues(err error) []Issue {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return validationErr.Issues
	}
	return nil
}
