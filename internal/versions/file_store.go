package versions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goliatone/go-sitecontent/content"
	"github.com/goliatone/go-sitecontent/internal/util"
)

// FileStore keeps one JSON document per page at {dir}/{pageId}.json.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: filepath.Clean(dir)}
}

func (s *FileStore) path(pageID string) (string, error) {
	if !content.IsValidPageID(pageID) {
		return "", fmt.Errorf("%w: %q", content.ErrPageIDInvalid, pageID)
	}
	return filepath.Join(s.dir, pageID+".json"), nil
}

func (s *FileStore) Load(ctx context.Context, pageID string) (*content.VersionHistory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(pageID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", pageID, err)
	}
	var history content.VersionHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("decode history %s: %w", pageID, err)
	}
	return &history, nil
}

func (s *FileStore) Save(ctx context.Context, history *content.VersionHistory) error {
	if history == nil {
		return fmt.Errorf("versions: history is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(history.PageID)
	if err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history %s: %w", history.PageID, err)
	}
	return util.WriteFileAtomic(path, append(encoded, '\n'))
}
