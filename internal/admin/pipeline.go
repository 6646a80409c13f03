// Package admin is the only writer of page content. It patches fields, bumps metadata, persists
// through the active source and appends to version history.
package admin

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-sitecontent/content"
	"github.com/goliatone/go-sitecontent/internal/links"
	"github.com/goliatone/go-sitecontent/internal/logging"
	"github.com/goliatone/go-sitecontent/internal/pages"
	"github.com/goliatone/go-sitecontent/internal/util"
	sitevalidation "github.com/goliatone/go-sitecontent/internal/validation"
	"github.com/goliatone/go-sitecontent/internal/versions"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

// SaveRequest patches one field of a page.
type SaveRequest struct {
	PageID  string
	Field   string
	Value   any
	Locale  content.Language
	Author  string
	Comment string
}

// FieldPatch is one entry of a multi-field save.
type FieldPatch struct {
	Field string
	Value any
}

// SaveFieldsRequest applies several patches under a single version bump.
type SaveFieldsRequest struct {
	PageID  string
	Locale  content.Language
	Fields  []FieldPatch
	Author  string
	Comment string
}

// SaveResult carries the persisted page, its history entry and any link warnings found in it.
type SaveResult struct {
	Page         *content.ContentPage
	Entry        *content.VersionEntry
	LinkWarnings []content.LinkIntegrityWarning
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithClock overrides the time source used for lastUpdated.
func WithClock(clock func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		if clock != nil {
			p.now = clock
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger interfaces.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithLinkValidator audits links in every saved page. Findings are reported, never fatal.
func WithLinkValidator(validator *links.Validator) PipelineOption {
	return func(p *Pipeline) {
		p.links = validator
	}
}

// WithLinkLogger routes link integrity warnings to a dedicated logger.
func WithLinkLogger(logger interfaces.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.linkLogger = logger
		}
	}
}

// Pipeline runs the admin save sequence: load, patch, bump, validate, persist, record history.
// Saves to the same page run one at a time from load to record. Persist and record are separate
// steps with no transaction spanning them.
type Pipeline struct {
	content  pages.Service
	versions versions.Service
	links    *links.Validator
	now      func() time.Time
	logger   interfaces.Logger
	writers  *util.KeyedMutex

	linkLogger interfaces.Logger
}

// NewPipeline wires the pipeline to the content and version services.
func NewPipeline(contentSvc pages.Service, versionSvc versions.Service, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		content:  contentSvc,
		versions: versionSvc,
		now:      time.Now,
		logger:   logging.NoOp(),
		writers:  util.NewKeyedMutex(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Save patches a single field.
func (p *Pipeline) Save(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	return p.SaveFields(ctx, SaveFieldsRequest{
		PageID:  req.PageID,
		Locale:  req.Locale,
		Fields:  []FieldPatch{{Field: req.Field, Value: req.Value}},
		Author:  req.Author,
		Comment: req.Comment,
	})
}

// SaveFields applies every patch to one fresh copy of the page and records a single version.
func (p *Pipeline) SaveFields(ctx context.Context, req SaveFieldsRequest) (*SaveResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logger := logging.WithPageContext(p.logger, req.PageID, string(req.Locale), p.content.SourceName())

	unlock := p.writers.Lock(req.PageID)
	defer unlock()

	page, err := p.content.GetFresh(ctx, req.PageID, req.Locale)
	if err != nil {
		return nil, err
	}
	if page.Content == nil {
		page.Content = map[string]any{}
	}
	for _, patch := range req.Fields {
		if err := PatchField(page.Content, patch.Field, patch.Value, req.Locale); err != nil {
			return nil, err
		}
	}

	page.Meta.PageID = req.PageID
	page.Meta.Version++
	page.Meta.LastUpdated = content.FormatTimestamp(p.now())

	if err := sitevalidation.ValidatePage(page); err != nil {
		return nil, err
	}
	if err := p.content.Save(ctx, page, req.Locale); err != nil {
		return nil, err
	}

	result := &SaveResult{Page: page}
	if p.links != nil {
		result.LinkWarnings = links.Warnings(req.PageID, p.links.ValidatePage(page))
		linkLogger := logger
		if p.linkLogger != nil {
			linkLogger = logging.WithPageContext(p.linkLogger, req.PageID, string(req.Locale), p.content.SourceName())
		}
		for _, warning := range result.LinkWarnings {
			linkLogger.Warn("link integrity warning", "path", warning.Path, "link", warning.Link, "reason", warning.Reason)
		}
	}

	entry, err := p.versions.SaveVersion(ctx, page, req.Author, req.Comment)
	if err != nil {
		partial := &PartialSaveError{PageID: req.PageID, Version: page.Meta.Version, Err: err}
		logger.Error("version history not recorded after save", "version", page.Meta.Version, "error", err)
		return result, partial
	}
	result.Entry = entry

	logger.Info("content field saved", "version", page.Meta.Version, "fields", len(req.Fields))
	return result, nil
}

// Validate checks the request shape before any I/O happens.
func (r SaveFieldsRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.PageID, validation.Required, validation.By(func(value any) error {
			return sitevalidation.ValidatePageID(value.(string))
		})),
		validation.Field(&r.Locale, validation.Required, validation.By(func(value any) error {
			if lang, _ := value.(content.Language); !lang.Valid() {
				return content.ErrUnknownLanguage
			}
			return nil
		})),
	)
	if err != nil {
		return err
	}
	if len(r.Fields) == 0 {
		return ErrNoChanges
	}
	for _, patch := range r.Fields {
		if _, err := SplitField(patch.Field); err != nil {
			return err
		}
	}
	return nil
}

// IsPartialSave reports whether err is a persisted-but-unrecorded save.
func IsPartialSave(err error) bool {
	return errors.Is(err, ErrHistoryNotRecorded)
}
