package sources

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
	"github.com/goliatone/go-sitecontent/internal/validation"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

const fileSourceName = "file"

// FileSource reads pages from JSON documents under a root directory. Lookup order for a page:
// {locale}/pages/{id}.json, pages/{id}.json, {id}.json.
type FileSource struct {
	root   string
	logger interfaces.Logger
}

// NewFileSource returns a source rooted at dir.
func NewFileSource(dir string, opts ...Option) *FileSource {
	cfg := applyOptions(opts)
	return &FileSource{root: filepath.Clean(dir), logger: cfg.logger}
}

func (s *FileSource) Name() string { return fileSourceName }

// Root returns the directory the source reads from.
func (s *FileSource) Root() string { return s.root }

func (s *FileSource) Get(ctx context.Context, pageID string, locale content.Language) (*content.ContentPage, error) {
	if err := checkPageID(pageID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, unavailable(fileSourceName, pageID, err)
	}

	path, data, err := s.read(pageID, locale)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("content file loaded", "page_id", pageID, "path", path)

	raw, err := validation.DecodeRaw(data)
	if err != nil {
		return nil, unavailable(fileSourceName, pageID, fmt.Errorf("%s: %w", path, err))
	}
	return validateRaw(pageID, raw)
}

func (s *FileSource) Save(ctx context.Context, page *content.ContentPage, locale content.Language) error {
	if page == nil {
		return fmt.Errorf("file source: page is required")
	}
	pageID := page.Meta.PageID
	if err := checkPageID(pageID); err != nil {
		return err
	}
	if err := validation.ValidatePage(page); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return unavailable(fileSourceName, pageID, err)
	}

	target := s.writeTarget(pageID, locale)
	encoded, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return unavailable(fileSourceName, pageID, err)
	}
	encoded = append(encoded, '\n')
	if err := util.WriteFileAtomic(target, encoded); err != nil {
		return unavailable(fileSourceName, pageID, err)
	}
	s.logger.Debug("content file written", "page_id", pageID, "path", target)
	return nil
}

func (s *FileSource) candidates(pageID string, locale content.Language) []string {
	name := pageID + ".json"
	out := make([]string, 0, 3)
	if locale != "" {
		out = append(out, filepath.Join(s.root, string(locale), "pages", name))
	}
	return append(out,
		filepath.Join(s.root, "pages", name),
		filepath.Join(s.root, name),
	)
}

func (s *FileSource) read(pageID string, locale content.Language) (string, []byte, error) {
	for _, candidate := range s.candidates(pageID, locale) {
		data, err := os.ReadFile(candidate)
		if err == nil {
			return candidate, data, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return "", nil, unavailable(fileSourceName, pageID, err)
	}
	return "", nil, notFound(fileSourceName, pageID, locale)
}

// writeTarget picks the file a read would resolve to, or pages/{id}.json for new pages.
func (s *FileSource) writeTarget(pageID string, locale content.Language) string {
	candidates := s.candidates(pageID, locale)
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return filepath.Join(s.root, "pages", pageID+".json")
}
