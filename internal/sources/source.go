// Package sources implements the interchangeable backends that load and persist ContentPage
// documents. Sources are stateless: caching belongs to the pages service.
package sources

import (
	"context"
	"errors"

	"github.com/goliatone/go-sitecontent/content"
	"github.com/goliatone/go-sitecontent/internal/logging"
	"github.com/goliatone/go-sitecontent/internal/validation"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

// Source is the contract shared by the file and store backends.
type Source interface {
	// Name identifies the backend in logs and errors.
	Name() string
	// Get loads and validates a page. Unknown ids return *content.NotFoundError.
	Get(ctx context.Context, pageID string, locale content.Language) (*content.ContentPage, error)
	// Save validates and persists page, replacing the stored document.
	Save(ctx context.Context, page *content.ContentPage, locale content.Language) error
}

// Option configures a source.
type Option func(*options)

type options struct {
	logger interfaces.Logger
}

// WithLogger sets the logger used for backend diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func applyOptions(opts []Option) options {
	cfg := options{logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func checkPageID(pageID string) error {
	if err := validation.ValidatePageID(pageID); err != nil {
		return err
	}
	return nil
}

// validateRaw runs the schema validator and stamps the page id onto validation failures.
func validateRaw(pageID string, raw map[string]any) (*content.ContentPage, error) {
	page, err := validation.Validate(raw)
	if err != nil {
		var validationErr *content.ValidationError
		if errors.As(err, &validationErr) && validationErr.PageID == "" {
			validationErr.PageID = pageID
		}
		return nil, err
	}
	return page, nil
}

func unavailable(source, pageID string, err error) error {
	return &content.SourceUnavailableError{PageID: pageID, Source: source, Err: err}
}

func notFound(source, pageID string, locale content.Language) error {
	return &content.NotFoundError{PageID: pageID, Locale: locale, Source: source}
}
