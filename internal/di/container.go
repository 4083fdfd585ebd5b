package di

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/admin"
	"github.com/goliatone/go-folio/internal/audit"
	"github.com/goliatone/go-folio/internal/auth"
	"github.com/goliatone/go-folio/internal/blog"
	"github.com/goliatone/go-folio/internal/experience"
	folioapi "github.com/goliatone/go-folio/internal/http"
	"github.com/goliatone/go-folio/internal/i18n"
	"github.com/goliatone/go-folio/internal/jobs"
	"github.com/goliatone/go-folio/internal/locales"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/logging/console"
	"github.com/goliatone/go-folio/internal/logging/gologger"
	"github.com/goliatone/go-folio/internal/media"
	"github.com/goliatone/go-folio/internal/profile"
	"github.com/goliatone/go-folio/internal/projects"
	"github.com/goliatone/go-folio/internal/runtimeconfig"
	"github.com/goliatone/go-folio/internal/site"
	"github.com/goliatone/go-folio/internal/skills"
	"github.com/goliatone/go-folio/internal/storage"
	"github.com/goliatone/go-folio/internal/testimonials"
	"github.com/goliatone/go-folio/internal/users"
	"github.com/goliatone/go-folio/pkg/activity"
	"github.com/goliatone/go-folio/pkg/activity/usersink"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// Container wires every folio module from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	bunDB  *bun.DB
	ownsDB bool

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	activitySink interfaces.ActivitySink
	hooks        activity.Hooks
	clock        func() time.Time
	bcryptCost   int

	localeRepo *locales.BunLocaleRepository

	services admin.Services
	recorder audit.Recorder
	actions  *admin.Actions
	tokens   *auth.TokenIssuer
	auth     *auth.Manager
	site     *site.Service
	catalog  *i18n.Catalog
	worker   *jobs.Worker
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB injects an open database. The container will not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithLoggerProvider overrides the provider selected by Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithCache overrides the repository cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithActivitySink forwards every audit entry to a go-users activity sink.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(c *Container) {
		c.activitySink = sink
	}
}

// WithActivityHooks registers extra hooks notified after each audit entry.
func WithActivityHooks(hooks ...activity.Hook) Option {
	return func(c *Container) {
		c.hooks = append(c.hooks, hooks...)
	}
}

func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithBcryptCost lowers the password hashing cost, mostly for tests.
func WithBcryptCost(cost int) Option {
	return func(c *Container) {
		c.bcryptCost = cost
	}
}

// NewContainer validates cfg and builds every service. The database is
// opened lazily from cfg.Storage unless WithBunDB is supplied; migrations
// and seeding happen in Bootstrap.
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
	if err := c.configureDatabase(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	if err := c.configureServices(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider == nil {
		cfg := c.Config.Logging
		switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
		case "gologger":
			provider, err := gologger.NewProvider(gologger.Config{
				Level:     cfg.Level,
				Format:    cfg.Format,
				AddSource: cfg.AddSource,
				Focus:     cfg.Focus,
			})
			if err != nil {
				return err
			}
			c.loggerProvider = provider
		case "none":
		default:
			level := console.ParseLevel(cfg.Level)
			c.loggerProvider = console.NewProvider(console.Options{MinLevel: &level})
		}
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "")
	return nil
}

func (c *Container) configureDatabase() error {
	if c.bunDB != nil {
		return nil
	}
	db, err := storage.Open(storage.Options{
		Driver: c.Config.StorageDriver(),
		DSN:    c.Config.Storage.DSN,
		Debug:  c.Config.Storage.Debug,
	})
	if err != nil {
		return err
	}
	c.bunDB = db
	c.ownsDB = true
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}
	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.DefaultTTL > 0 {
			cfg.TTL = c.Config.Cache.DefaultTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			c.logger.Warn("di.cache.disabled", "error", err)
			return
		}
		c.cacheService = service
	}
	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureServices() error {
	provider := c.loggerProvider
	db := c.bunDB

	c.localeRepo = locales.NewBunLocaleRepositoryWithCache(db, c.cacheService, c.keySerializer)

	userOpts := []users.ServiceOption{users.WithClock(c.clock), users.WithLogger(logging.AuthLogger(provider))}
	if c.bcryptCost > 0 {
		userOpts = append(userOpts, users.WithBcryptCost(c.bcryptCost))
	}

	c.services = admin.Services{
		Locales: locales.NewService(c.localeRepo,
			locales.WithClock(c.clock),
			locales.WithLogger(logging.ModuleLogger(provider, "folio.locales")),
			locales.WithSeedLocales(SeedLocales(c.Config.DefaultLocale, c.Config.Locales)),
		),
		Profile: profile.NewService(profile.NewBunProfileRepository(db), c.localeRepo,
			profile.WithClock(c.clock), profile.WithLogger(logging.ModuleLogger(provider, "folio.profile"))),
		Skills: skills.NewService(skills.NewBunSkillRepository(db), c.localeRepo,
			skills.WithClock(c.clock), skills.WithLogger(logging.ModuleLogger(provider, "folio.skills"))),
		Experience: experience.NewService(experience.NewBunExperienceRepository(db), c.localeRepo,
			experience.WithClock(c.clock), experience.WithLogger(logging.ModuleLogger(provider, "folio.experience"))),
		Projects: projects.NewService(projects.NewBunProjectRepositoryWithCache(db, c.cacheService, c.keySerializer), c.localeRepo,
			projects.WithClock(c.clock), projects.WithLogger(logging.ModuleLogger(provider, "folio.projects"))),
		Blog: blog.NewService(blog.NewBunPostRepositoryWithCache(db, c.cacheService, c.keySerializer), c.localeRepo,
			blog.WithClock(c.clock), blog.WithLogger(logging.ModuleLogger(provider, "folio.blog"))),
		Testimonials: testimonials.NewService(testimonials.NewBunTestimonialRepository(db), c.localeRepo,
			testimonials.WithClock(c.clock), testimonials.WithLogger(logging.ModuleLogger(provider, "folio.testimonials"))),
		Media: media.NewService(media.NewBunAssetRepository(db), media.NewFSStore(c.Config.Media.Dir),
			media.WithMaxSize(c.Config.Media.MaxBytes),
			media.WithAllowedTypes(AllowedMediaTypes(c.Config.Media.AllowedTypes)),
			media.WithBaseURL(c.Config.Media.URLPrefix),
			media.WithClock(c.clock),
			media.WithLogger(logging.MediaLogger(provider)),
		),
		Users: users.NewService(users.NewBunUserRepository(db), userOpts...),
	}

	hooks := append(activity.Hooks{}, c.hooks...)
	if c.activitySink != nil {
		hooks = append(hooks, usersink.Hook{Sink: c.activitySink})
	}
	c.recorder = audit.NewRecorder(audit.NewBunEntryRepository(db),
		audit.WithClock(c.clock),
		audit.WithLogger(logging.ModuleLogger(provider, "folio.audit")),
		audit.WithHooks(hooks...),
	)

	c.actions = admin.NewActions(c.services, admin.Config{
		Recorder: c.recorder,
		Logger:   logging.ActionsLogger(provider),
		Timeout:  c.Config.Actions.Timeout,
	})

	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{
		Secret:   c.Config.Auth.Secret,
		Issuer:   c.Config.Auth.Issuer,
		Audience: c.Config.Auth.Audience,
		TTL:      c.Config.Auth.TokenTTL,
		Now:      c.clock,
	})
	if err != nil {
		return fmt.Errorf("di: token issuer: %w", err)
	}
	c.tokens = tokens
	c.auth = auth.NewManager(c.services.Users, tokens, auth.WithLogger(logging.AuthLogger(provider)))

	c.site = site.NewService(site.Services{
		Locales:      c.services.Locales,
		Profile:      c.services.Profile,
		Skills:       c.services.Skills,
		Experience:   c.services.Experience,
		Projects:     c.services.Projects,
		Blog:         c.services.Blog,
		Testimonials: c.services.Testimonials,
	},
		site.WithBaseURL(c.Config.HTTP.BaseURL),
		site.WithLogger(logging.ModuleLogger(provider, "folio.site")),
	)

	catalog, err := i18n.Load(c.Config.DefaultLocale, c.Config.I18N.Dir)
	if err != nil {
		return fmt.Errorf("di: load message catalog: %w", err)
	}
	c.catalog = catalog

	c.worker = jobs.NewWorker(c.services.Blog,
		jobs.WithRecorder(c.recorder),
		jobs.WithRetention(c.Config.Audit.Retention),
		jobs.WithInterval(c.Config.Jobs.Interval),
		jobs.WithClock(c.clock),
		jobs.WithLogger(logging.JobsLogger(provider)),
	)
	return nil
}

// Bootstrap migrates the schema when auto migration is on, seeds the
// configured locales and creates the bootstrap admin when none exists.
func (c *Container) Bootstrap(ctx context.Context) error {
	if c.Config.Storage.AutoMigrate {
		if _, err := storage.Migrate(ctx, c.bunDB, logging.StorageLogger(c.loggerProvider)); err != nil {
			return err
		}
	}
	created, err := c.services.Locales.Seed(ctx)
	if err != nil {
		return fmt.Errorf("di: seed locales: %w", err)
	}
	if len(created) > 0 {
		c.logger.Info("di.locales.seeded", "count", len(created))
	}

	email := strings.TrimSpace(c.Config.Bootstrap.Email)
	if email == "" {
		return nil
	}
	user, createdAdmin, err := c.services.Users.EnsureAdmin(ctx, email, c.Config.Bootstrap.Password)
	if err != nil {
		return fmt.Errorf("di: bootstrap admin: %w", err)
	}
	if createdAdmin {
		c.logger.Info("di.admin.bootstrapped", "user_id", user.ID.String(), "email", user.Email)
	}
	return nil
}

// Handler builds the root HTTP handler serving the admin and public APIs.
func (c *Container) Handler() (http.Handler, error) {
	httpLogger := logging.HTTPLogger(c.loggerProvider)
	adminAPI := folioapi.NewAdminAPI(
		folioapi.WithActions(c.actions),
		folioapi.WithServices(c.services),
		folioapi.WithAuth(c.auth),
		folioapi.WithRecorder(c.recorder),
		folioapi.WithSecureCookies(c.Config.HTTP.SecureCookies),
		folioapi.WithMaxUpload(c.Config.Media.MaxBytes),
		folioapi.WithAdminLogger(httpLogger),
	)
	publicAPI := folioapi.NewPublicAPI(c.site, c.services.Locales,
		folioapi.WithCatalog(c.catalog),
		folioapi.WithMediaFiles(c.Config.Media.Dir, c.Config.Media.URLPrefix),
		folioapi.WithHealthCheck(func(ctx context.Context) error { return storage.Ping(ctx, c.bunDB) }),
		folioapi.WithLanguageCookieSecure(c.Config.HTTP.SecureCookies),
		folioapi.WithPublicLogger(httpLogger),
	)
	return folioapi.NewHandler(folioapi.HandlerConfig{
		Admin:      adminAPI,
		Public:     publicAPI,
		TrustProxy: c.Config.HTTP.TrustProxy,
		Logger:     httpLogger,
	})
}

// Close releases the database when the container opened it.
func (c *Container) Close() error {
	if c == nil || c.bunDB == nil || !c.ownsDB {
		return nil
	}
	err := c.bunDB.Close()
	c.bunDB = nil
	return err
}

func (c *Container) DB() *bun.DB                               { return c.bunDB }
func (c *Container) Logger() interfaces.Logger                 { return c.logger }
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }
func (c *Container) Services() admin.Services                  { return c.services }
func (c *Container) Actions() *admin.Actions                   { return c.actions }
func (c *Container) Recorder() audit.Recorder                  { return c.recorder }
func (c *Container) Auth() *auth.Manager                       { return c.auth }
func (c *Container) Site() *site.Service                       { return c.site }
func (c *Container) Catalog() *i18n.Catalog                    { return c.catalog }
func (c *Container) Worker() *jobs.Worker                      { return c.worker }

// SeedLocales turns the configured locale codes into seed requests. Known
// codes keep their display names and direction; the default code is marked.
func SeedLocales(defaultLocale string, codes []string) []locales.CreateLocaleRequest {
	known := map[string]locales.CreateLocaleRequest{}
	for _, req := range locales.DefaultSeed() {
		known[req.Code] = req
	}
	if len(codes) == 0 {
		codes = []string{defaultLocale}
	}
	def := strings.ToLower(strings.TrimSpace(defaultLocale))

	seed := make([]locales.CreateLocaleRequest, 0, len(codes))
	seen := map[string]bool{}
	for i, raw := range codes {
		code := strings.ToLower(strings.TrimSpace(raw))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		req, ok := known[code]
		if !ok {
			req = locales.CreateLocaleRequest{Code: code, Name: code, NativeName: code, Direction: locales.DirectionFor(code)}
		}
		req.IsActive = true
		req.IsDefault = code == def
		req.Position = i
		seed = append(seed, req)
	}
	return seed
}

// AllowedMediaTypes maps configured mime types to stored file extensions.
// Unknown types without a registered extension are skipped.
func AllowedMediaTypes(types []string) map[string]string {
	allowed := map[string]string{}
	for _, raw := range types {
		mimeType := strings.ToLower(strings.TrimSpace(raw))
		if mimeType == "" {
			continue
		}
		if ext, ok := media.DefaultAllowedTypes[mimeType]; ok {
			allowed[mimeType] = ext
			continue
		}
		if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
			allowed[mimeType] = exts[0]
		}
	}
	return allowed
}

// ErrContainerClosed reports use after Close.
var ErrContainerClosed = errors.New("di: container is closed")

// Migrate applies pending migrations regardless of Storage.AutoMigrate.
func (c *Container) Migrate(ctx context.Context) ([]string, error) {
	if c.bunDB == nil {
		return nil, ErrContainerClosed
	}
	return storage.Migrate(ctx, c.bunDB, logging.StorageLogger(c.loggerProvider))
}

// Rollback reverts the last migration group.
func (c *Container) Rollback(ctx context.Context) ([]string, error) {
	if c.bunDB == nil {
		return nil, ErrContainerClosed
	}
	return storage.Rollback(ctx, c.bunDB, logging.StorageLogger(c.loggerProvider))
}
