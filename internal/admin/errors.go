package admin

import (
	"errors"
	"fmt"
)

var (
	ErrFieldRequired      = errors.New("admin: field is required")
	ErrInvalidField       = errors.New("admin: invalid field path")
	ErrFieldConflict      = errors.New("admin: field path crosses a non-object value")
	ErrNoChanges          = errors.New("admin: no fields to save")
	ErrHistoryNotRecorded = errors.New("admin: content saved but version history not recorded")
)

// PartialSaveError reports that the page was persisted but its version entry was not appended.
// Live content is ahead of the recorded history; the pipeline does not retry.
type PartialSaveError struct {
	PageID  string
	Version int
	Err     error
}

func (e *PartialSaveError) Error() string {
	return fmt.Sprintf("%s: page=%s version=%d: %v", ErrHistoryNotRecorded.Error(), e.PageID, e.Version, e.Err)
}

func (e *PartialSaveError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrHistoryNotRecorded}
	}
	return []error{ErrHistoryNotRecorded, e.Err}
}
