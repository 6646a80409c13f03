package di

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/goliatone/go-sitecontent/internal/admin"
	"github.com/goliatone/go-sitecontent/internal/cache"
	"github.com/goliatone/go-sitecontent/internal/commands"
	sitehttp "github.com/goliatone/go-sitecontent/internal/http"
	"github.com/goliatone/go-sitecontent/internal/links"
	"github.com/goliatone/go-sitecontent/internal/logging"
	"github.com/goliatone/go-sitecontent/internal/logging/gologger"
	"github.com/goliatone/go-sitecontent/internal/pages"
	"github.com/goliatone/go-sitecontent/internal/runtimeconfig"
	"github.com/goliatone/go-sitecontent/internal/sources"
	"github.com/goliatone/go-sitecontent/internal/versions"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

// Container wires the content layer once per process. The content source is chosen here and
// never per request.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	bunDB          *bun.DB
	ownsDB         bool
	migrations     fs.FS
	migrationsDir  string
	clock          func() time.Time

	source       sources.Source
	pageCache    *cache.PageCache
	versionStore versions.Store

	contentSvc    pages.Service
	versionSvc    versions.Service
	linkValidator *links.Validator
	pipeline      *admin.Pipeline
	saveHandler   *admin.SaveContentFieldHandler
	contentAPI    *sitehttp.ContentAPI
	adminAPI      *sitehttp.AdminAPI
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB shares an existing database handle with the store source and database history.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithSource overrides the configured content source.
func WithSource(src sources.Source) Option {
	return func(c *Container) {
		c.source = src
	}
}

// WithVersionStore overrides the configured history backend.
func WithVersionStore(store versions.Store) Option {
	return func(c *Container) {
		c.versionStore = store
	}
}

// WithMigrations applies the SQL files under dir to the configured database during startup.
func WithMigrations(fsys fs.FS, dir string) Option {
	return func(c *Container) {
		c.migrations = fsys
		c.migrationsDir = dir
	}
}

// WithClock overrides the time source used for lastUpdated and history timestamps.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewContainer validates cfg and wires every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureDatabase(context.Background()); err != nil {
		return nil, err
	}
	if err := c.configureSource(); err != nil {
		return nil, err
	}
	if err := c.configureVersionStore(); err != nil {
		return nil, err
	}
	c.configureServices()
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "", "noop":
		return nil
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
		return nil
	default:
		return fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, c.Config.Logging.Provider)
	}
}

func (c *Container) needsLongLivedDB() bool {
	return c.versionStore == nil &&
		runtimeconfig.NormalizeBackend(c.Config.Versions.Backend) == runtimeconfig.VersionsBackendDatabase
}

func (c *Container) configureDatabase(ctx context.Context) error {
	if c.bunDB == nil && c.needsLongLivedDB() {
		db, err := sources.OpenDB(ctx, c.Config.Database.Driver, c.Config.Database.DSN)
		if err != nil {
			return fmt.Errorf("open version database: %w", err)
		}
		c.bunDB = db
		c.ownsDB = true
		if c.Config.Database.Debug {
			db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
		}
	}
	if c.migrations == nil {
		return nil
	}
	if c.bunDB != nil {
		return sources.ApplyMigrations(ctx, c.bunDB, c.migrations, c.migrationsDir)
	}
	if !c.Config.Content.UseDatabase {
		return nil
	}
	db, release, err := sources.DSNOpener{Driver: c.Config.Database.Driver, DSN: c.Config.Database.DSN}.Open(ctx)
	if err != nil {
		return fmt.Errorf("open database for migrations: %w", err)
	}
	defer release()
	return sources.ApplyMigrations(ctx, db, c.migrations, c.migrationsDir)
}

func (c *Container) configureSource() error {
	if c.source != nil {
		return nil
	}
	sourceOpts := []sources.Option{sources.WithLogger(logging.ContentLogger(c.loggerProvider))}
	if !c.Config.Content.UseDatabase {
		c.source = sources.NewFileSource(c.Config.Content.Dir, sourceOpts...)
		return nil
	}

	// The pooled handle opened for database history is never handed to the store source. Only
	// a caller supplied handle is shared.
	var opener sources.Opener
	if c.bunDB != nil && !c.ownsDB {
		opener = sources.SharedOpener{DB: c.bunDB}
	} else {
		if _, err := sources.NormalizeDriver(c.Config.Database.Driver); err != nil {
			return err
		}
		opener = sources.DSNOpener{Driver: c.Config.Database.Driver, DSN: c.Config.Database.DSN}
		if c.Config.Database.Debug {
			opener = withQueryDebug(opener)
		}
	}
	c.source = sources.NewStoreSource(opener, sourceOpts...)
	return nil
}

func withQueryDebug(base sources.Opener) sources.Opener {
	return sources.OpenerFunc(func(ctx context.Context) (*bun.DB, func() error, error) {
		db, release, err := base.Open(ctx)
		if err != nil {
			return nil, nil, err
		}
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
		return db, release, nil
	})
}

func (c *Container) configureVersionStore() error {
	if c.versionStore != nil {
		return nil
	}
	switch runtimeconfig.NormalizeBackend(c.Config.Versions.Backend) {
	case runtimeconfig.VersionsBackendMemory:
		c.versionStore = versions.NewMemoryStore()
	case runtimeconfig.VersionsBackendDatabase:
		if c.bunDB == nil {
			return fmt.Errorf("%w: database history needs a connection", runtimeconfig.ErrDatabaseDSNRequired)
		}
		c.versionStore = versions.NewBunStore(c.bunDB)
	default:
		c.versionStore = versions.NewFileStore(c.Config.Versions.Dir)
	}
	return nil
}

func (c *Container) configureServices() {
	development := c.Config.Development()

	c.pageCache = cache.New(cache.Options{Bypass: development || c.Config.Content.BypassCache})
	c.contentSvc = pages.NewService(c.source,
		pages.WithLogger(logging.ContentLogger(c.loggerProvider)),
		pages.WithDevelopment(development),
		pages.WithCache(c.pageCache),
	)

	versionOpts := []versions.ServiceOption{
		versions.WithClock(c.clock),
		versions.WithLogger(logging.VersionsLogger(c.loggerProvider)),
	}
	if c.Config.Versions.Retention > 0 {
		versionOpts = append(versionOpts, versions.WithRetention(c.Config.Versions.Retention))
	}
	c.versionSvc = versions.NewService(c.versionStore, versionOpts...)

	linkOpts := []links.Option{}
	if len(c.Config.Links.KnownRoutes) > 0 {
		linkOpts = append(linkOpts, links.WithKnownRoutes(c.Config.Links.KnownRoutes...))
	}
	c.linkValidator = links.NewValidator(linkOpts...)

	adminLogger := logging.AdminLogger(c.loggerProvider)
	c.pipeline = admin.NewPipeline(c.contentSvc, c.versionSvc,
		admin.WithClock(c.clock),
		admin.WithLogger(adminLogger),
		admin.WithLinkValidator(c.linkValidator),
		admin.WithLinkLogger(logging.LinksLogger(c.loggerProvider)),
	)
	c.saveHandler = admin.NewSaveContentFieldHandler(c.pipeline, commands.CommandLogger(c.loggerProvider, "admin"))

	httpLogger := logging.HTTPLogger(c.loggerProvider)
	c.contentAPI = sitehttp.NewContentAPI(c.contentSvc, sitehttp.WithContentLogger(httpLogger))
	c.adminAPI = sitehttp.NewAdminAPI(
		sitehttp.WithContentService(c.contentSvc),
		sitehttp.WithPipeline(c.pipeline),
		sitehttp.WithVersionService(c.versionSvc),
		sitehttp.WithLinkValidator(c.linkValidator),
		sitehttp.WithLogger(httpLogger),
	)
}

// RegisterRoutes attaches the public and admin APIs to mux.
func (c *Container) RegisterRoutes(mux *http.ServeMux) error {
	if err := c.contentAPI.Register(mux); err != nil {
		return err
	}
	return c.adminAPI.Register(mux)
}

// Close releases the database handle when the container opened it.
func (c *Container) Close() error {
	if c == nil || !c.ownsDB || c.bunDB == nil {
		return nil
	}
	return c.bunDB.Close()
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Logger returns a module logger, or a no-op logger when logging is disabled.
func (c *Container) Logger(module string) interfaces.Logger {
	return logging.ModuleLogger(c.loggerProvider, module)
}

func (c *Container) Source() sources.Source {
	return c.source
}

func (c *Container) PageCache() *cache.PageCache {
	return c.pageCache
}

func (c *Container) ContentService() pages.Service {
	return c.contentSvc
}

func (c *Container) VersionService() versions.Service {
	return c.versionSvc
}

func (c *Container) LinkValidator() *links.Validator {
	return c.linkValidator
}

func (c *Container) Pipeline() *admin.Pipeline {
	return c.pipeline
}

func (c *Container) SaveFieldHandler() *admin.SaveContentFieldHandler {
	return c.saveHandler
}

func (c *Container) ContentAPI() *sitehttp.ContentAPI {
	return c.contentAPI
}

func (c *Container) AdminAPI() *sitehttp.AdminAPI {
	return c.adminAPI
}
