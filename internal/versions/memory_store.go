package versions

import (
	"context"
	"sync"

	"github.com/goliatone/go-sitecontent/content"
)

// MemoryStore is an in-process Store used by tests and the memory wiring.
type MemoryStore struct {
	mu        sync.RWMutex
	histories map[string]*content.VersionHistory
	saves     int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{histories: map[string]*content.VersionHistory{}}
}

func (s *MemoryStore) Load(_ context.Context, pageID string) (*content.VersionHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history, ok := s.histories[pageID]
	if !ok {
		return nil, nil
	}
	return copyHistory(history), nil
}

func (s *MemoryStore) Save(_ context.Context, history *content.VersionHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[history.PageID] = copyHistory(history)
	s.saves++
	return nil
}

// Saves reports how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func copyHistory(history *content.VersionHistory) *content.VersionHistory {
	out := &content.VersionHistory{
		PageID:         history.PageID,
		CurrentVersion: history.CurrentVersion,
		Versions:       make([]content.VersionEntry, len(history.Versions)),
	}
	for i, entry := range history.Versions {
		entry.Content = *entry.Content.Clone()
		out.Versions[i] = entry
	}
	return out
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
	_ Store = (*BunStore)(nil)
)
