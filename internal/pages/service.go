// Package pages is the content service: the single read entry point for renderers. It reads through
// the active source, validates on miss and memoizes results in a PageCache.
package pages

import (
	"context"
	"errors"

	"github.com/goliatone/go-sitecontent/content"
	"github.com/goliatone/go-sitecontent/internal/cache"
	"github.com/goliatone/go-sitecontent/internal/logging"
	"github.com/goliatone/go-sitecontent/internal/sources"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

// Service exposes page reads, the admin write path and cache control.
type Service interface {
	// Get returns the page for (pageID, locale). Outside development mode repeated calls return
	// the same cached pointer; callers must treat it as read-only.
	Get(ctx context.Context, pageID string, locale content.Language) (*content.ContentPage, error)
	// GetFresh skips the cache and returns a private copy the caller may mutate.
	GetFresh(ctx context.Context, pageID string, locale content.Language) (*content.ContentPage, error)
	// Save persists page through the active source and drops its cache entries.
	Save(ctx context.Context, page *content.ContentPage, locale content.Language) error
	ClearPageCache(pageID string)
	ClearAll()
	SourceName() string
	Development() bool
}

// ServiceOption configures the content service.
type ServiceOption func(*service)

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDevelopment toggles development mode: the cache is bypassed and validation failures are
// logged with their full issue list.
func WithDevelopment(enabled bool) ServiceOption {
	return func(s *service) {
		s.development = enabled
	}
}

// WithCache injects a cache instance, e.g. one shared with an admin process.
func WithCache(c *cache.PageCache) ServiceOption {
	return func(s *service) {
		if c != nil {
			s.cache = c
		}
	}
}

type service struct {
	source      sources.Source
	cache       *cache.PageCache
	logger      interfaces.Logger
	development bool
}

// NewService builds the content service around the process-wide source.
func NewService(source sources.Source, opts ...ServiceOption) Service {
	s := &service{
		source: source,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.cache == nil {
		s.cache = cache.New(cache.Options{Bypass: s.development})
	}
	return s
}

func (s *service) Get(ctx context.Context, pageID string, locale content.Language) (*content.ContentPage, error) {
	if cached, ok := s.cache.Get(pageID, locale); ok {
		return cached, nil
	}

	page, err := s.load(ctx, pageID, locale)
	if err != nil {
		return nil, err
	}
	s.cache.Set(pageID, locale, page)
	return page, nil
}

func (s *service) GetFresh(ctx context.Context, pageID string, locale content.Language) (*content.ContentPage, error) {
	page, err := s.load(ctx, pageID, locale)
	if err != nil {
		return nil, err
	}
	return page.Clone(), nil
}

func (s *service) Save(ctx context.Context, page *content.ContentPage, locale content.Language) error {
	if page == nil {
		return errors.New("pages: page is required")
	}
	logger := logging.WithPageContext(s.logger, page.Meta.PageID, string(locale), s.source.Name())
	if err := s.source.Save(ctx, page, locale); err != nil {
		s.logFailure(logger, "content save failed", err)
		return err
	}
	s.cache.Clear(page.Meta.PageID)
	logger.Info("content saved", "version", page.Meta.Version)
	return nil
}

func (s *service) ClearPageCache(pageID string) {
	s.cache.Clear(pageID)
}

func (s *service) ClearAll() {
	s.cache.ClearAll()
}

func (s *service) SourceName() string {
	return s.source.Name()
}

func (s *service) Development() bool {
	return s.development
}

func (s *service) load(ctx context.Context, pageID string, locale content.Language) (*content.ContentPage, error) {
	if s.source == nil {
		return nil, &content.SourceUnavailableError{PageID: pageID, Err: errors.New("no content source configured")}
	}
	logger := logging.WithPageContext(s.logger, pageID, string(locale), s.source.Name())
	page, err := s.source.Get(ctx, pageID, locale)
	if err != nil {
		s.logFailure(logger, "content load failed", err)
		return nil, err
	}
	logger.Debug("content loaded", "version", page.Meta.Version)
	return page, nil
}

// logFailure records the error without altering it. The issue list is only logged in development.
func (s *service) logFailure(logger interfaces.Logger, msg string, err error) {
	switch {
	case content.IsNotFound(err):
		logger.Debug(msg, "error", err)
	case errors.Is(err, content.ErrValidation):
		issues := content.ValidationIssues(err)
		if s.development {
			logger.Error(msg, "issues", issues, "error", err)
			return
		}
		logger.Error(msg, "issue_count", len(issues))
	default:
		logger.Error(msg, "error", err)
	}
}
