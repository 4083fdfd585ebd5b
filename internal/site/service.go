package site

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-folio/internal/blog"
	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/experience"
	"github.com/goliatone/go-folio/internal/locales"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/profile"
	"github.com/goliatone/go-folio/internal/projects"
	"github.com/goliatone/go-folio/internal/skills"
	"github.com/goliatone/go-folio/internal/testimonials"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

const (
	DefaultBaseURL      = "http://localhost:8080"
	DefaultPageSize     = 10
	MaxPageSize         = 50
	DefaultHomeProjects = 6
	DefaultHomePosts    = 3
)

// Services groups the content services read by the public site.
type Services struct {
	Locales      locales.Service
	Profile      profile.Service
	Skills       skills.Service
	Experience   experience.Service
	Projects     projects.Service
	Blog         blog.Service
	Testimonials testimonials.Service
}

// Option configures the site service.
type Option func(*Service)

// WithBaseURL sets the absolute origin used for sitemap and alternate links.
func WithBaseURL(baseURL string) Option {
	return func(s *Service) {
		if baseURL != "" {
			s.baseURL = baseURL
		}
	}
}

// WithPageSize sets the blog page size.
func WithPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 && size <= MaxPageSize {
			s.pageSize = size
		}
	}
}

// WithHomeLimits caps the featured projects and latest posts on the home page.
func WithHomeLimits(projects, posts int) Option {
	return func(s *Service) {
		if projects > 0 {
			s.homeProjects = projects
		}
		if posts > 0 {
			s.homePosts = posts
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service assembles the published, localized read model consumed by the
// public API.
type Service struct {
	svc          Services
	baseURL      string
	pageSize     int
	homeProjects int
	homePosts    int
	logger       interfaces.Logger
}

func NewService(svc Services, opts ...Option) *Service {
	s := &Service{
		svc:          svc,
		baseURL:      DefaultBaseURL,
		pageSize:     DefaultPageSize,
		homeProjects: DefaultHomeProjects,
		homePosts:    DefaultHomePosts,
		logger:       logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Locales lists the active locales with their direction.
func (s *Service) Locales(ctx context.Context) ([]LocaleInfo, error) {
	active, err := s.svc.Locales.Active(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]LocaleInfo, 0, len(active))
	for _, loc := range active {
		out = append(out, localeInfo(loc))
	}
	return out, nil
}

// Home gathers every section of the landing page for locale.
func (s *Service) Home(ctx context.Context, locale string) (*Home, error) {
	loc, all, err := s.locale(ctx, locale)
	if err != nil {
		return nil, err
	}
	code := loc.Code
	home := &Home{Locale: loc, Locales: all}

	home.Profile, err = s.svc.Profile.Localized(ctx, code)
	if err != nil {
		var notFound *domain.NotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, profile.ErrTranslationAbsent) {
			return nil, err
		}
		home.Profile = nil
	}

	localizedSkills, err := s.svc.Skills.Localized(ctx, code)
	if err != nil {
		return nil, err
	}
	home.Skills = groupSkills(localizedSkills)

	if home.Experience, err = s.svc.Experience.Localized(ctx, code); err != nil {
		return nil, err
	}
	if home.Projects, _, err = s.svc.Projects.Localized(ctx, code, projects.ListOptions{
		Status:       domain.StatusPublished,
		FeaturedOnly: true,
		Limit:        s.homeProjects,
	}); err != nil {
		return nil, err
	}
	if home.Posts, _, err = s.svc.Blog.Localized(ctx, code, blog.ListOptions{
		Status: domain.StatusPublished,
		Limit:  s.homePosts,
	}); err != nil {
		return nil, err
	}
	if home.Testimonials, err = s.svc.Testimonials.Localized(ctx, code); err != nil {
		return nil, err
	}
	return home, nil
}

// Projects lists published projects for locale.
func (s *Service) Projects(ctx context.Context, locale string) (*ProjectList, error) {
	loc, _, err := s.locale(ctx, locale)
	if err != nil {
		return nil, err
	}
	items, total, err := s.svc.Projects.Localized(ctx, loc.Code, projects.ListOptions{Status: domain.StatusPublished})
	if err != nil {
		return nil, err
	}
	return &ProjectList{Locale: loc, Items: items, Total: total}, nil
}

// Project returns one published project. Drafts are reported as not found.
func (s *Service) Project(ctx context.Context, locale, slug string) (*ProjectDetail, error) {
	loc, all, err := s.locale(ctx, locale)
	if err != nil {
		return nil, err
	}
	item, err := s.svc.Projects.LocalizedBySlug(ctx, slug, loc.Code)
	if err != nil {
		return nil, err
	}
	if item.Status != domain.StatusPublished {
		return nil, domain.NewNotFound("project", slug)
	}
	alternates, err := s.router(all).Alternates(RouteProject, item.Slug)
	if err != nil {
		return nil, err
	}
	return &ProjectDetail{Locale: loc, Project: item, Alternates: alternates}, nil
}

// Posts returns one page of published posts, optionally filtered by tag.
// Pages start at 1.
func (s *Service) Posts(ctx context.Context, locale, tag string, page int) (*PostList, error) {
	loc, _, err := s.locale(ctx, locale)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	items, total, err := s.svc.Blog.Localized(ctx, loc.Code, blog.ListOptions{
		Status: domain.StatusPublished,
		Tag:    tag,
		Limit:  s.pageSize,
		Offset: (page - 1) * s.pageSize,
	})
	if err != nil {
		return nil, err
	}
	tags, err := s.svc.Blog.Tags(ctx, domain.StatusPublished)
	if err != nil {
		return nil, err
	}
	return &PostList{
		Locale:     loc,
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   s.pageSize,
		TotalPages: (total + s.pageSize - 1) / s.pageSize,
		Tag:        tag,
		Tags:       tags,
	}, nil
}

// Post returns one published post. Drafts and scheduled posts are reported
// as not found.
func (s *Service) Post(ctx context.Context, locale, slug string) (*PostDetail, error) {
	loc, all, err := s.locale(ctx, locale)
	if err != nil {
		return nil, err
	}
	item, err := s.svc.Blog.LocalizedBySlug(ctx, slug, loc.Code)
	if err != nil {
		return nil, err
	}
	if item.Status != domain.StatusPublished {
		return nil, domain.NewNotFound("post", slug)
	}
	alternates, err := s.router(all).Alternates(RoutePost, item.Slug)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Locale: loc, Post: item, Alternates: alternates}, nil
}

// Sitemap lists every public URL for each active locale with its
// alternates.
func (s *Service) Sitemap(ctx context.Context) ([]SitemapURL, error) {
	all, err := s.Locales(ctx)
	if err != nil {
		return nil, err
	}
	router := s.router(all)

	var out []SitemapURL
	add := func(route, slug string, modified *time.Time) error {
		alternates, err := router.Alternates(route, slug)
		if err != nil {
			return err
		}
		for _, alt := range alternates {
			out = append(out, SitemapURL{Loc: alt.URL, LastMod: modified, Alternates: alternates})
		}
		return nil
	}

	for _, route := range []string{RouteHome, RouteProjects, RoutePosts} {
		if err := add(route, "", nil); err != nil {
			return nil, err
		}
	}

	published, _, err := s.svc.Projects.List(ctx, projects.ListOptions{Status: domain.StatusPublished})
	if err != nil {
		return nil, err
	}
	for _, project := range published {
		modified := project.UpdatedAt
		if err := add(RouteProject, project.Slug, &modified); err != nil {
			return nil, err
		}
	}

	posts, _, err := s.svc.Blog.List(ctx, blog.ListOptions{Status: domain.StatusPublished})
	if err != nil {
		return nil, err
	}
	for _, post := range posts {
		modified := post.UpdatedAt
		if err := add(RoutePost, post.Slug, &modified); err != nil {
			return nil, err
		}
	}
	s.logger.Debug("site.sitemap.built", "urls", len(out))
	return out, nil
}

func (s *Service) locale(ctx context.Context, code string) (LocaleInfo, []LocaleInfo, error) {
	resolved, err := s.svc.Locales.Resolve(ctx, code)
	if err != nil {
		return LocaleInfo{}, nil, err
	}
	all, err := s.Locales(ctx)
	if err != nil {
		return LocaleInfo{}, nil, err
	}
	return localeInfo(resolved), all, nil
}

func (s *Service) router(all []LocaleInfo) *Router {
	codes := make([]string, 0, len(all))
	for _, loc := range all {
		codes = append(codes, loc.Code)
	}
	return NewRouter(s.baseURL, codes)
}

func localeInfo(loc *locales.Locale) LocaleInfo {
	return LocaleInfo{
		Code:       loc.Code,
		Name:       loc.Name,
		NativeName: loc.NativeName,
		Direction:  loc.Direction,
		IsDefault:  loc.IsDefault,
	}
}

func groupSkills(items []skills.LocalizedSkill) []SkillGroup {
	var groups []SkillGroup
	index := map[string]int{}
	for _, item := range items {
		i, ok := index[item.Category]
		if !ok {
			i = len(groups)
			index[item.Category] = i
			groups = append(groups, SkillGroup{Category: item.Category})
		}
		groups[i].Skills = append(groups[i].Skills, item)
	}
	return groups
}
