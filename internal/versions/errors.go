package versions

import (
	"errors"
	"fmt"
)

var (
	ErrPageRequired    = errors.New("versions: page is required")
	ErrInvalidVersion  = errors.New("versions: version must be a positive integer")
	ErrVersionNotFound = errors.New("versions: version not found")
)

// VersionNotFoundError names the page and version that could not be diffed.
type VersionNotFoundError struct {
	PageID  string
	Version int
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("%s: page=%s version=%d", ErrVersionNotFound.Error(), e.PageID, e.Version)
}

func (e *VersionNotFoundError) Unwrap() error {
	return ErrVersionNotFound
}
