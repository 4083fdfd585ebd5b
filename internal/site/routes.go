package site

import (
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

// Route names registered for every locale group.
const (
	RouteHome     = "home"
	RouteProjects = "projects"
	RouteProject  = "project"
	RoutePosts    = "posts"
	RoutePost     = "post"
)

const rootGroup = "site"

var publicPaths = map[string]string{
	RouteHome:     "/",
	RouteProjects: "/projects",
	RouteProject:  "/projects/:slug",
	RoutePosts:    "/blog",
	RoutePost:     "/blog/:slug",
}

// Router builds absolute public URLs with one route group per locale
// (/en/..., /ar/...).
type Router struct {
	manager *urlkit.RouteManager
	codes   []string
}

// NewRouter registers a locale group for each code under baseURL.
func NewRouter(baseURL string, codes []string) *Router {
	children := make([]urlkit.GroupConfig, 0, len(codes))
	kept := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		kept = append(kept, code)
		children = append(children, urlkit.GroupConfig{
			Name:  code,
			Path:  "/" + code,
			Paths: clonePaths(),
		})
	}
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{{
			Name:    rootGroup,
			BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
			Paths:   clonePaths(),
			Groups:  children,
		}},
	})
	return &Router{manager: manager, codes: kept}
}

// Locales lists the locale codes with a registered group.
func (r *Router) Locales() []string {
	return append([]string(nil), r.codes...)
}

// URL builds the route for locale. slug is ignored by routes without a slug.
func (r *Router) URL(locale, route, slug string) (string, error) {
	group, err := r.group(locale)
	if err != nil {
		return "", err
	}
	builder, err := safeBuilder(group, route)
	if err != nil {
		return "", err
	}
	if slug != "" {
		builder.WithParam("slug", slug)
	}
	return builder.Build()
}

// Alternates returns the URL of route in every registered locale.
func (r *Router) Alternates(route, slug string) ([]Alternate, error) {
	out := make([]Alternate, 0, len(r.codes))
	for _, code := range r.codes {
		href, err := r.URL(code, route, slug)
		if err != nil {
			return nil, err
		}
		out = append(out, Alternate{Locale: code, URL: href})
	}
	return out, nil
}

func (r *Router) group(locale string) (*urlkit.Group, error) {
	root, err := lookupGroup(r.manager, rootGroup)
	if err != nil {
		return nil, err
	}
	return lookupChildGroup(root, strings.ToLower(strings.TrimSpace(locale)))
}

func clonePaths() map[string]string {
	out := make(map[string]string, len(publicPaths))
	for k, v := range publicPaths {
		out[k] = v
	}
	return out
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			builder, err = nil, fmt.Errorf("site: route %q not registered", route)
		}
	}()
	return group.Builder(route), nil
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, fmt.Errorf("site: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			group, err = nil, fmt.Errorf("site: route group %q not found", name)
		}
	}()
	return manager.Group(name), nil
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			group, err = nil, fmt.Errorf("site: locale group %q not found", name)
		}
	}()
	if group = parent.Group(name); group == nil {
		return nil, fmt.Errorf("site: locale group %q not found", name)
	}
	return group, nil
}
