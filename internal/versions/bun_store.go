package versions

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecontent/content"
)

// VersionRecord is one retained entry in the content_versions table.
type VersionRecord struct {
	bun.BaseModel `bun:"table:content_versions,alias:cv"`

	ID        uuid.UUID           `bun:",pk,type:uuid" json:"id"`
	PageID    string              `bun:"page_id,notnull" json:"page_id"`
	Version   int                 `bun:"version,notnull" json:"version"`
	Snapshot  content.ContentPage `bun:"snapshot,type:jsonb,notnull" json:"snapshot"`
	Author    string              `bun:"author" json:"author,omitempty"`
	Comment   string              `bun:"comment" json:"comment,omitempty"`
	CreatedAt time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// NewVersionRepository returns the go-repository-bun repository for content_versions rows.
func NewVersionRepository(db *bun.DB) repository.Repository[*VersionRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*VersionRecord]{
		NewRecord: func() *VersionRecord { return &VersionRecord{} },
		GetID: func(r *VersionRecord) uuid.UUID {
			return r.ID
		},
		SetID: func(r *VersionRecord, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "page_id"
		},
		GetIdentifierValue: func(r *VersionRecord) string {
			return r.PageID
		},
	})
}

// BunStore keeps one row per retained entry. Save replaces a page's rows in a single transaction.
type BunStore struct {
	db   *bun.DB
	repo repository.Repository[*VersionRecord]
}

func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db, repo: NewVersionRepository(db)}
}

func (s *BunStore) Load(ctx context.Context, pageID string) (*content.VersionHistory, error) {
	records, _, err := s.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.page_id = ?", pageID).Order("version ASC")
		}),
	)
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("content_versions repository error: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	history := &content.VersionHistory{
		PageID:   pageID,
		Versions: make([]content.VersionEntry, 0, len(records)),
	}
	for _, record := range records {
		history.Versions = append(history.Versions, content.VersionEntry{
			Version:   record.Version,
			Timestamp: record.CreatedAt.UTC(),
			PageID:    record.PageID,
			Content:   record.Snapshot,
			Author:    record.Author,
			Comment:   record.Comment,
		})
	}
	history.CurrentVersion = highestVersion(history.Versions)
	return history, nil
}

func (s *BunStore) Save(ctx context.Context, history *content.VersionHistory) error {
	if history == nil {
		return fmt.Errorf("versions: history is required")
	}
	if s.db == nil {
		return fmt.Errorf("versions: database not configured")
	}

	records := make([]*VersionRecord, 0, len(history.Versions))
	for _, entry := range history.Versions {
		records = append(records, &VersionRecord{
			ID:        uuid.New(),
			PageID:    history.PageID,
			Version:   entry.Version,
			Snapshot:  entry.Content,
			Author:    entry.Author,
			Comment:   entry.Comment,
			CreatedAt: entry.Timestamp,
		})
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*VersionRecord)(nil)).
			Where("?TableAlias.page_id = ?", history.PageID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete content versions: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&records).Exec(ctx); err != nil {
			return fmt.Errorf("insert content versions: %w", err)
		}
		return nil
	})
}
