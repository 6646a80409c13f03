package content

import "fmt"

// InvalidLink describes a link that failed validation.
type InvalidLink struct {
	Path   string `json:"path"`
	Link   string `json:"link"`
	Reason string `json:"reason"`
}

// LinkValidationResult partitions the links found in a content tree.
type LinkValidationResult struct {
	Valid        bool          `json:"valid"`
	InvalidLinks []InvalidLink `json:"invalidLinks"`
	ValidLinks   []string      `json:"validLinks"`
}

// LinkIntegrityWarning is a non-fatal report about a broken link. It is logged or returned
// alongside data, never as an error.
type LinkIntegrityWarning struct {
	PageID string `json:"pageId"`
	InvalidLink
}

func (w LinkIntegrityWarning) String() string {
	if w.PageID == "" {
		return fmt.Sprintf("%s: %s (%s)", w.Path, w.Link, w.Reason)
	}
	return fmt.Sprintf("%s %s: %s (%s)", w.PageID, w.Path, w.Link, w.Reason)
}
