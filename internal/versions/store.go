package versions

import (
	"context"

	"github.com/goliatone/go-sitecontent/content"
)

// Store persists whole page histories. Load returns nil, nil when a page has no history yet.
type Store interface {
	Load(ctx context.Context, pageID string) (*content.VersionHistory, error)
	Save(ctx context.Context, history *content.VersionHistory) error
}
