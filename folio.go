// Package folio is the public entry point of the bilingual portfolio CMS.
// It wires storage, services, secure admin actions and the HTTP APIs from a
// single Config.
package folio

import (
	"context"
	"net/http"

	"github.com/goliatone/go-folio/internal/admin"
	"github.com/goliatone/go-folio/internal/blog"
	"github.com/goliatone/go-folio/internal/di"
	"github.com/goliatone/go-folio/internal/experience"
	"github.com/goliatone/go-folio/internal/jobs"
	"github.com/goliatone/go-folio/internal/locales"
	"github.com/goliatone/go-folio/internal/media"
	"github.com/goliatone/go-folio/internal/profile"
	"github.com/goliatone/go-folio/internal/projects"
	"github.com/goliatone/go-folio/internal/site"
	"github.com/goliatone/go-folio/internal/skills"
	"github.com/goliatone/go-folio/internal/testimonials"
	"github.com/goliatone/go-folio/internal/users"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

type (
	LocaleService      = locales.Service
	ProfileService     = profile.Service
	SkillService       = skills.Service
	ExperienceService  = experience.Service
	ProjectService     = projects.Service
	BlogService        = blog.Service
	TestimonialService = testimonials.Service
	MediaService       = media.Service
	UserService        = users.Service
	SiteService        = *site.Service
	Actions            = *admin.Actions
	Option             = di.Option
)

var (
	WithBunDB          = di.WithBunDB
	WithLoggerProvider = di.WithLoggerProvider
	WithCache          = di.WithCache
	WithActivitySink   = di.WithActivitySink
	WithActivityHooks  = di.WithActivityHooks
	WithClock          = di.WithClock
)

// Module is the assembled portfolio runtime.
type Module struct {
	container *di.Container
}

// New validates cfg and wires every module. Call Bootstrap before serving.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Bootstrap migrates (when enabled), seeds locales and the bootstrap admin.
func (m *Module) Bootstrap(ctx context.Context) error {
	return m.container.Bootstrap(ctx)
}

// Migrate applies pending schema migrations.
func (m *Module) Migrate(ctx context.Context) ([]string, error) {
	return m.container.Migrate(ctx)
}

// Rollback reverts the last migration group.
func (m *Module) Rollback(ctx context.Context) ([]string, error) {
	return m.container.Rollback(ctx)
}

// Handler returns the combined admin and public HTTP handler.
func (m *Module) Handler() (http.Handler, error) {
	return m.container.Handler()
}

// Worker returns the background job worker.
func (m *Module) Worker() *jobs.Worker {
	return m.container.Worker()
}

func (m *Module) Close() error {
	return m.container.Close()
}

func (m *Module) Logger() interfaces.Logger { return m.container.Logger() }

func (m *Module) Locales() LocaleService           { return m.container.Services().Locales }
func (m *Module) Profile() ProfileService          { return m.container.Services().Profile }
func (m *Module) Skills() SkillService             { return m.container.Services().Skills }
func (m *Module) Experience() ExperienceService    { return m.container.Services().Experience }
func (m *Module) Projects() ProjectService         { return m.container.Services().Projects }
func (m *Module) Blog() BlogService                { return m.container.Services().Blog }
func (m *Module) Testimonials() TestimonialService { return m.container.Services().Testimonials }
func (m *Module) Media() MediaService              { return m.container.Services().Media }
func (m *Module) Users() UserService               { return m.container.Services().Users }
func (m *Module) Site() SiteService                { return m.container.Site() }
func (m *Module) Actions() Actions                 { return m.container.Actions() }
