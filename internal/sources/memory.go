package sources

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-sitecontent/content"
	"github.com/goliatone/go-sitecontent/internal/validation"
)

const memorySourceName = "memory"

// MemorySource keeps raw page documents in memory. It validates on every Get like the other
// backends and counts reads so callers can observe caching.
type MemorySource struct {
	mu    sync.RWMutex
	pages map[string]map[string]any
	reads map[string]int
	fail  error
}

// NewMemorySource returns an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		pages: map[string]map[string]any{},
		reads: map[string]int{},
	}
}

func (s *MemorySource) Name() string { return memorySourceName }

// Put stores a raw document without validating it.
func (s *MemorySource) Put(pageID string, raw map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[pageID] = content.CloneTree(raw)
}

// Fail makes every subsequent call return err wrapped as SourceUnavailable. Pass nil to reset.
func (s *MemorySource) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

// Reads reports how many times Get reached the backing map for pageID.
func (s *MemorySource) Reads(pageID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads[pageID]
}

func (s *MemorySource) Get(ctx context.Context, pageID string, locale content.Language) (*content.ContentPage, error) {
	if err := checkPageID(pageID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.fail != nil {
		err := s.fail
		s.mu.Unlock()
		return nil, unavailable(memorySourceName, pageID, err)
	}
	s.reads[pageID]++
	raw, ok := s.pages[pageID]
	if ok {
		raw = content.CloneTree(raw)
	}
	s.mu.Unlock()

	if !ok {
		return nil, notFound(memorySourceName, pageID, locale)
	}
	return validateRaw(pageID, raw)
}

func (s *MemorySource) Save(ctx context.Context, page *content.ContentPage, _ content.Language) error {
	if page == nil {
		return fmt.Errorf("memory source: page is required")
	}
	if err := checkPageID(page.Meta.PageID); err != nil {
		return err
	}
	if err := validation.ValidatePage(page); err != nil {
		return err
	}
	raw, err := validation.ToRaw(page)
	if err != nil {
		return unavailable(memorySourceName, page.Meta.PageID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return unavailable(memorySourceName, page.Meta.PageID, s.fail)
	}
	s.pages[page.Meta.PageID] = raw
	return nil
}

var (
	_ Source = (*FileSource)(nil)
	_ Source = (*StoreSource)(nil)
	_ Source = (*MemorySource)(nil)
)
