// Package versions keeps an append-only history of saved page snapshots with bounded retention.
package versions

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goliatone/go-sitecontent/content"
	"github.com/goliatone/go-sitecontent/internal/logging"
	"github.com/goliatone/go-sitecontent/internal/util"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

// Service records and queries page version history.
type Service interface {
	// SaveVersion appends a snapshot of page. The entry version is page.Meta.Version, which the
	// caller must already have bumped.
	SaveVersion(ctx context.Context, page *content.ContentPage, author, comment string) (*content.VersionEntry, error)
	// GetVersion returns nil, nil when the version is not retained.
	GetVersion(ctx context.Context, pageID string, version int) (*content.VersionEntry, error)
	// GetLatestVersion returns nil, nil when the page has no history.
	GetLatestVersion(ctx context.Context, pageID string) (*content.VersionEntry, error)
	GetHistory(ctx context.Context, pageID string) (*content.VersionHistory, error)
	GetVersionDiff(ctx context.Context, pageID string, from, to int) (*content.VersionDiff, error)
}

// ServiceOption configures the version service.
type ServiceOption func(*service)

// WithClock overrides the time source used to stamp entries.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithRetention sets how many entries are kept per page. Values below 1 are ignored.
func WithRetention(limit int) ServiceOption {
	return func(s *service) {
		if limit > 0 {
			s.retention = limit
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	store     Store
	locks     *util.KeyedMutex
	now       func() time.Time
	retention int
	logger    interfaces.Logger
}

// NewService returns a version service backed by store.
func NewService(store Store, opts ...ServiceOption) Service {
	s := &service{
		store:     store,
		locks:     util.NewKeyedMutex(),
		now:       time.Now,
		retention: content.DefaultVersionRetention,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) SaveVersion(ctx context.Context, page *content.ContentPage, author, comment string) (*content.VersionEntry, error) {
	if page == nil {
		return nil, ErrPageRequired
	}
	pageID := page.Meta.PageID
	if pageID == "" {
		return nil, content.ErrPageIDRequired
	}
	if page.Meta.Version < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidVersion, page.Meta.Version)
	}

	unlock := s.locks.Lock(pageID)
	defer unlock()

	history, err := s.store.Load(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("load version history: %w", err)
	}
	if history == nil {
		history = &content.VersionHistory{PageID: pageID}
	}

	entry := content.VersionEntry{
		Version:   page.Meta.Version,
		Timestamp: s.now().UTC(),
		PageID:    pageID,
		Content:   *page.Clone(),
		Author:    author,
		Comment:   comment,
	}
	history.Versions = append(history.Versions, entry)
	pruned := s.prune(history)
	history.CurrentVersion = highestVersion(history.Versions)

	if err := s.store.Save(ctx, history); err != nil {
		return nil, fmt.Errorf("save version history: %w", err)
	}

	s.logger.Info("version recorded",
		"page_id", pageID,
		"version", entry.Version,
		"retained", len(history.Versions),
		"pruned", pruned,
	)
	return &entry, nil
}

// prune keeps the highest `retention` versions and leaves them in ascending order.
func (s *service) prune(history *content.VersionHistory) int {
	if len(history.Versions) <= s.retention {
		sortAscending(history.Versions)
		return 0
	}
	sort.SliceStable(history.Versions, func(i, j int) bool {
		return history.Versions[i].Version > history.Versions[j].Version
	})
	dropped := len(history.Versions) - s.retention
	history.Versions = history.Versions[:s.retention]
	sortAscending(history.Versions)
	return dropped
}

func (s *service) GetVersion(ctx context.Context, pageID string, version int) (*content.VersionEntry, error) {
	history, err := s.store.Load(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("load version history: %w", err)
	}
	entry, ok := history.Find(version)
	if !ok {
		return nil, nil
	}
	return entry, nil
}

func (s *service) GetLatestVersion(ctx context.Context, pageID string) (*content.VersionEntry, error) {
	history, err := s.store.Load(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("load version history: %w", err)
	}
	entry, ok := history.Latest()
	if !ok {
		return nil, nil
	}
	return entry, nil
}

// GetHistory returns an empty history rather than nil for pages never saved.
func (s *service) GetHistory(ctx context.Context, pageID string) (*content.VersionHistory, error) {
	history, err := s.store.Load(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("load version history: %w", err)
	}
	if history == nil {
		return &content.VersionHistory{PageID: pageID, Versions: []content.VersionEntry{}}, nil
	}
	return history, nil
}

func (s *service) GetVersionDiff(ctx context.Context, pageID string, from, to int) (*content.VersionDiff, error) {
	history, err := s.store.Load(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("load version history: %w", err)
	}
	fromEntry, ok := history.Find(from)
	if !ok {
		return nil, &VersionNotFoundError{PageID: pageID, Version: from}
	}
	toEntry, ok := history.Find(to)
	if !ok {
		return nil, &VersionNotFoundError{PageID: pageID, Version: to}
	}

	added, removed, modified := DiffContent(fromEntry.Content.Content, toEntry.Content.Content)
	return &content.VersionDiff{
		Added:       added,
		Removed:     removed,
		Modified:    modified,
		FromVersion: from,
		ToVersion:   to,
	}, nil
}

func sortAscending(entries []content.VersionEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Version < entries[j].Version
	})
}

func highestVersion(entries []content.VersionEntry) int {
	highest := 0
	for _, entry := range entries {
		if entry.Version > highest {
			highest = entry.Version
		}
	}
	return highest
}
