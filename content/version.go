package content

import "time"

// DefaultVersionRetention is the number of version entries kept per page.
const DefaultVersionRetention = 50

// VersionEntry is an immutable snapshot of a page at a specific version.
type VersionEntry struct {
	Version   int         `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	PageID    string      `json:"pageId"`
	Content   ContentPage `json:"content"`
	Author    string      `json:"author,omitempty"`
	Comment   string      `json:"comment,omitempty"`
}

// VersionHistory lists the retained entries of a page in ascending version order.
type VersionHistory struct {
	PageID         string         `json:"pageId"`
	Versions       []VersionEntry `json:"versions"`
	CurrentVersion int            `json:"currentVersion"`
}

// Find returns the entry with the given version number.
func (h *VersionHistory) Find(version int) (*VersionEntry, bool) {
	if h == nil {
		return nil, false
	}
	for i := range h.Versions {
		if h.Versions[i].Version == version {
			entry := h.Versions[i]
			return &entry, true
		}
	}
	return nil, false
}

// Latest returns the entry with the highest version number.
func (h *VersionHistory) Latest() (*VersionEntry, bool) {
	if h == nil || len(h.Versions) == 0 {
		return nil, false
	}
	latest := h.Versions[0]
	for _, entry := range h.Versions[1:] {
		if entry.Version > latest.Version {
			latest = entry
		}
	}
	return &latest, true
}

// VersionDiff lists dotted content paths that changed between two versions.
type VersionDiff struct {
	Added       []string `json:"added"`
	Removed     []string `json:"removed"`
	Modified    []string `json:"modified"`
	FromVersion int      `json:"fromVersion"`
	ToVersion   int      `json:"toVersion"`
}

// Empty reports whether the diff carries no changes.
func (d VersionDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}
