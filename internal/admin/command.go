package admin

import (
	"context"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-sitecontent/content"
	"github.com/goliatone/go-sitecontent/internal/commands"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

const saveContentFieldMessageType = "site.admin.content.save_field"

var fieldPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+)*$`)

// SaveContentFieldCommand requests a single localized field update through the admin pipeline.
type SaveContentFieldCommand struct {
	PageID  string `json:"page_id"`
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Locale  string `json:"locale"`
	Author  string `json:"author,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// Type implements command.Message.
func (SaveContentFieldCommand) Type() string { return saveContentFieldMessageType }

// Validate implements command.Message.
func (m SaveContentFieldCommand) Validate() error {
	errs := validation.Errors{}
	if !content.IsValidPageID(m.PageID) {
		errs["page_id"] = validation.NewError("site.admin.save.page_id_invalid", "page_id is required and must be a slug")
	}
	if !fieldPattern.MatchString(strings.TrimSpace(m.Field)) {
		errs["field"] = validation.NewError("site.admin.save.field_invalid", "field must be a dotted path such as hero.headline")
	}
	if _, ok := content.ParseLanguage(m.Locale); !ok {
		errs["locale"] = validation.NewError("site.admin.save.locale_invalid", "locale must be en or es")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SaveContentFieldHandler executes SaveContentFieldCommand via the pipeline.
type SaveContentFieldHandler struct {
	inner *commands.Handler[SaveContentFieldCommand]
}

// NewSaveContentFieldHandler wraps pipeline in the shared command handler.
func NewSaveContentFieldHandler(pipeline *Pipeline, logger interfaces.Logger, opts ...commands.HandlerOption[SaveContentFieldCommand]) *SaveContentFieldHandler {
	exec := func(ctx context.Context, msg SaveContentFieldCommand) error {
		locale, _ := content.ParseLanguage(msg.Locale)
		_, err := pipeline.Save(ctx, SaveRequest{
			PageID:  msg.PageID,
			Field:   strings.TrimSpace(msg.Field),
			Value:   msg.Value,
			Locale:  locale,
			Author:  msg.Author,
			Comment: msg.Comment,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[SaveContentFieldCommand]{
		commands.WithLogger[SaveContentFieldCommand](logger),
		commands.WithOperation[SaveContentFieldCommand]("admin.save_field"),
		commands.WithMessageFields(func(msg SaveContentFieldCommand) map[string]any {
			return map[string]any{
				"page_id": msg.PageID,
				"field":   msg.Field,
				"locale":  msg.Locale,
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SaveContentFieldCommand](logger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SaveContentFieldHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SaveContentFieldCommand].
func (h *SaveContentFieldHandler) Execute(ctx context.Context, msg SaveContentFieldCommand) error {
	return h.inner.Execute(ctx, msg)
}
