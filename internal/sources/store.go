package sources

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecontent/content"
	"github.com/goliatone/go-sitecontent/internal/validation"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

const storeSourceName = "store"

// StoreSource reads pages from the page_content table. Every call opens its own handle through
// the Opener and releases it before returning.
type StoreSource struct {
	opener Opener
	logger interfaces.Logger
	now    func() time.Time
}

// NewStoreSource returns a store-backed source.
func NewStoreSource(opener Opener, opts ...Option) *StoreSource {
	cfg := applyOptions(opts)
	return &StoreSource{opener: opener, logger: cfg.logger, now: time.Now}
}

func (s *StoreSource) Name() string { return storeSourceName }

// Opener returns the opener backing every call.
func (s *StoreSource) Opener() Opener { return s.opener }

func (s *StoreSource) Get(ctx context.Context, pageID string, locale content.Language) (*content.ContentPage, error) {
	if err := checkPageID(pageID); err != nil {
		return nil, err
	}

	var record *PageContentRecord
	err := s.withDB(ctx, pageID, func(db *bun.DB) error {
		found, err := findRecord(ctx, NewPageContentRepository(db), pageID, locale)
		record = found
		return err
	})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, notFound(storeSourceName, pageID, locale)
	}
	s.logger.Debug("content row loaded", "page_id", pageID, "row_locale", record.Locale)
	return validateRaw(pageID, record.raw())
}

// Save upserts the row a Get with the same arguments resolves to. New pages are stored under
// the empty locale so every locale reads them.
func (s *StoreSource) Save(ctx context.Context, page *content.ContentPage, locale content.Language) error {
	if page == nil {
		return fmt.Errorf("store source: page is required")
	}
	pageID := page.Meta.PageID
	if err := checkPageID(pageID); err != nil {
		return err
	}
	if err := validation.ValidatePage(page); err != nil {
		return err
	}
	raw, err := validation.ToRaw(page)
	if err != nil {
		return unavailable(storeSourceName, pageID, err)
	}

	return s.withDB(ctx, pageID, func(db *bun.DB) error {
		repo := NewPageContentRepository(db)
		existing, err := findRecord(ctx, repo, pageID, locale)
		if err != nil {
			return err
		}

		meta, _ := raw["meta"].(map[string]any)
		seo, _ := raw["seo"].(map[string]any)
		body, _ := raw["content"].(map[string]any)
		if body == nil {
			body = map[string]any{}
		}
		now := s.now().UTC()

		if existing == nil {
			_, err := repo.Create(ctx, &PageContentRecord{
				ID:        uuid.New(),
				PageID:    pageID,
				Locale:    "",
				Meta:      meta,
				SEO:       seo,
				Content:   body,
				UpdatedAt: now,
			})
			if err != nil {
				return fmt.Errorf("insert page_content: %w", err)
			}
			return nil
		}

		existing.Meta = meta
		existing.SEO = seo
		existing.Content = body
		existing.UpdatedAt = now
		_, err = repo.Update(ctx, existing,
			repository.UpdateByID(existing.ID.String()),
			repository.UpdateColumns("meta", "seo", "content", "updated_at"),
		)
		if err != nil {
			return fmt.Errorf("update page_content: %w", err)
		}
		return nil
	})
}

func (s *StoreSource) withDB(ctx context.Context, pageID string, fn func(*bun.DB) error) error {
	if s.opener == nil {
		return unavailable(storeSourceName, pageID, fmt.Errorf("database opener not configured"))
	}
	db, release, err := s.opener.Open(ctx)
	if err != nil {
		return unavailable(storeSourceName, pageID, err)
	}
	defer func() {
		if closeErr := release(); closeErr != nil {
			s.logger.Warn("content store release failed", "page_id", pageID, "error", closeErr)
		}
	}()

	if err := fn(db); err != nil {
		return unavailable(storeSourceName, pageID, err)
	}
	return nil
}

// findRecord prefers the locale-specific row and falls back to the shared (empty locale) row.
func findRecord(ctx context.Context, repo repository.Repository[*PageContentRecord], pageID string, locale content.Language) (*PageContentRecord, error) {
	locales := []string{""}
	if locale != "" {
		locales = []string{string(locale), ""}
	}

	records, _, err := repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.page_id = ?", pageID).
				Where("?TableAlias.locale IN (?)", bun.In(locales)).
				Order("locale DESC")
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}
