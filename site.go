package sitecontent

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecontent/content"
	"github.com/goliatone/go-sitecontent/internal/admin"
	"github.com/goliatone/go-sitecontent/internal/di"
	"github.com/goliatone/go-sitecontent/internal/links"
	"github.com/goliatone/go-sitecontent/internal/pages"
	"github.com/goliatone/go-sitecontent/internal/sources"
	"github.com/goliatone/go-sitecontent/internal/validation"
	"github.com/goliatone/go-sitecontent/internal/versions"
	"github.com/goliatone/go-sitecontent/internal/watch"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

// ContentService exports the content service contract.
type ContentService = pages.Service

// VersionService exports the version history contract.
type VersionService = versions.Service

// Source exports the content source contract.
type Source = sources.Source

// VersionStore exports the history persistence contract.
type VersionStore = versions.Store

// SaveRequest exports the single-field admin save request.
type SaveRequest = admin.SaveRequest

// SaveFieldsRequest exports the multi-field admin save request.
type SaveFieldsRequest = admin.SaveFieldsRequest

// FieldPatch exports one entry of a multi-field save.
type FieldPatch = admin.FieldPatch

// SaveResult exports the admin save result.
type SaveResult = admin.SaveResult

// SaveContentFieldCommand exports the go-command message for single-field saves.
type SaveContentFieldCommand = admin.SaveContentFieldCommand

// ValidationResult exports the non-throwing schema validation result.
type ValidationResult = validation.Result

// Option customises module wiring.
type Option = di.Option

var (
	WithLoggerProvider = di.WithLoggerProvider
	WithBunDB          = di.WithBunDB
	WithSource         = di.WithSource
	WithVersionStore   = di.WithVersionStore
	WithClock          = di.WithClock
)

// WithEmbeddedMigrations applies the bundled SQL migrations during startup.
func WithEmbeddedMigrations() Option {
	return di.WithMigrations(migrationsFS, migrationsDir)
}

// Module is the site content runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module from cfg. The content source is selected once here.
func New(cfg Config, opts ...Option) (*Module, error) {
	if cfg.Database.AutoMigrate {
		opts = append([]Option{WithEmbeddedMigrations()}, opts...)
	}
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// NewFromEnv builds a module from SITE_* environment variables.
func NewFromEnv(opts ...Option) (*Module, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Content returns the content service.
func (m *Module) Content() ContentService {
	return m.container.ContentService()
}

// Versions returns the version history service.
func (m *Module) Versions() VersionService {
	return m.container.VersionService()
}

// GetContent returns the page for (pageID, locale). The result is shared and must not be mutated.
func (m *Module) GetContent(ctx context.Context, pageID string, locale content.Language) (*content.ContentPage, error) {
	return m.container.ContentService().Get(ctx, pageID, locale)
}

// SaveField patches one field through the admin pipeline.
func (m *Module) SaveField(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	return m.container.Pipeline().Save(ctx, req)
}

// SaveFields patches several fields under one version bump.
func (m *Module) SaveFields(ctx context.Context, req SaveFieldsRequest) (*SaveResult, error) {
	return m.container.Pipeline().SaveFields(ctx, req)
}

// ExecuteSaveField runs a save through the go-command handler with its timeout and telemetry.
func (m *Module) ExecuteSaveField(ctx context.Context, cmd SaveContentFieldCommand) error {
	return m.container.SaveFieldHandler().Execute(ctx, cmd)
}

// ClearPageCache drops every cached locale of pageID.
func (m *Module) ClearPageCache(pageID string) {
	m.container.ContentService().ClearPageCache(pageID)
}

// ClearAllCaches drops the whole page cache.
func (m *Module) ClearAllCaches() {
	m.container.ContentService().ClearAll()
}

// ValidateLinks audits every link found in tree against the configured routes.
func (m *Module) ValidateLinks(tree any) content.LinkValidationResult {
	return m.container.LinkValidator().Validate(tree)
}

// SafeValidate runs the page schema validator without returning an error.
func SafeValidate(raw map[string]any) ValidationResult {
	return validation.SafeValidate(raw)
}

// ValidateLinks audits tree against the default marketing site routes.
func ValidateLinks(tree any) content.LinkValidationResult {
	return links.ValidateLinks(tree)
}

// Handler returns a mux serving the public and admin HTTP APIs.
func (m *Module) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	if err := m.container.RegisterRoutes(mux); err != nil {
		return nil, err
	}
	return mux, nil
}

// WatchContent clears cached pages when files under the content directory change. It blocks until
// ctx is done and is a no-op for the database source.
func (m *Module) WatchContent(ctx context.Context) error {
	cfg := m.container.Config
	if cfg.Content.UseDatabase {
		return nil
	}
	w, err := watch.New(cfg.Content.Dir, m.container.ContentService(),
		watch.WithLogger(m.container.Logger("site.content.watch")))
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

// Logger returns a module-scoped logger.
func (m *Module) Logger(module string) interfaces.Logger {
	return m.container.Logger(module)
}

// Close releases resources the module opened.
func (m *Module) Close() error {
	return m.container.Close()
}

// OpenDB opens a pooled bun handle for the configured driver, for hosts that share one connection.
func OpenDB(ctx context.Context, cfg Config) (*bun.DB, error) {
	return sources.OpenDB(ctx, cfg.Database.Driver, cfg.Database.DSN)
}

// DefaultShutdownTimeout bounds graceful HTTP shutdown in Serve.
const DefaultShutdownTimeout = 10 * time.Second

// Serve runs the HTTP APIs on cfg.HTTP.Addr until ctx is done.
func (m *Module) Serve(ctx context.Context) error {
	handler, err := m.Handler()
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              m.container.Config.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger := m.container.Logger("site.http")

	errCh := make(chan error, 1)
	go func() {
		logger.Info("content api listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
