package sources

import (
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PageContentRecord is a row of the page_content table. The three JSON columns hold the
// same shape as a content file.
type PageContentRecord struct {
	bun.BaseModel `bun:"table:page_content,alias:pc"`

	ID        uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	PageID    string         `bun:"page_id,notnull" json:"page_id"`
	Locale    string         `bun:"locale,notnull,default:''" json:"locale"`
	Meta      map[string]any `bun:"meta,type:jsonb,notnull" json:"meta"`
	SEO       map[string]any `bun:"seo,type:jsonb,notnull" json:"seo"`
	Content   map[string]any `bun:"content,type:jsonb,notnull" json:"content"`
	UpdatedAt time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// NewPageContentRepository returns the go-repository-bun repository for page_content rows.
func NewPageContentRepository(db *bun.DB) repository.Repository[*PageContentRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*PageContentRecord]{
		NewRecord: func() *PageContentRecord { return &PageContentRecord{} },
		GetID: func(r *PageContentRecord) uuid.UUID {
			return r.ID
		},
		SetID: func(r *PageContentRecord, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "page_id"
		},
		GetIdentifierValue: func(r *PageContentRecord) string {
			return r.PageID
		},
	})
}

func (r *PageContentRecord) raw() map[string]any {
	return map[string]any{
		"meta":    r.Meta,
		"seo":     r.SEO,
		"content": r.Content,
	}
}
