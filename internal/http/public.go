package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-folio/internal/i18n"
	"github.com/goliatone/go-folio/internal/locales"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/site"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// PublicAPI serves the published site read model.
type PublicAPI struct {
	site          *site.Service
	locales       locales.Service
	catalog       *i18n.Catalog
	mediaDir      string
	mediaPrefix   string
	health        func(ctx context.Context) error
	secureCookies bool
	logger        interfaces.Logger
}

type PublicOption func(*PublicAPI)

func NewPublicAPI(siteSvc *site.Service, localeSvc locales.Service, opts ...PublicOption) *PublicAPI {
	api := &PublicAPI{
		site:        siteSvc,
		locales:     localeSvc,
		mediaPrefix: "/media/",
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithCatalog serves UI strings under /api/{locale}/messages.
func WithCatalog(catalog *i18n.Catalog) PublicOption {
	return func(api *PublicAPI) {
		api.catalog = catalog
	}
}

// WithMediaFiles serves uploaded files from dir under prefix.
func WithMediaFiles(dir, prefix string) PublicOption {
	return func(api *PublicAPI) {
		api.mediaDir = strings.TrimSpace(dir)
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			api.mediaPrefix = "/" + strings.Trim(prefix, "/") + "/"
		}
	}
}

// WithHealthCheck runs check on /healthz.
func WithHealthCheck(check func(ctx context.Context) error) PublicOption {
	return func(api *PublicAPI) {
		api.health = check
	}
}

func WithLanguageCookieSecure(secure bool) PublicOption {
	return func(api *PublicAPI) {
		api.secureCookies = secure
	}
}

func WithPublicLogger(logger interfaces.Logger) PublicOption {
	return func(api *PublicAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches the public endpoints to mux.
func (api *PublicAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil || api.site == nil || api.locales == nil {
		return fmt.Errorf("http: public api requires site and locale services")
	}

	mux.HandleFunc("GET /healthz", api.handleHealth)
	mux.HandleFunc("GET /sitemap.xml", api.handleSitemap)
	mux.HandleFunc("GET /api/locales", func(w http.ResponseWriter, r *http.Request) {
		all, err := api.site.Locales(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, all)
	})
	mux.HandleFunc("GET /api/locale", func(w http.ResponseWriter, r *http.Request) {
		code, err := api.negotiate(w, r)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"locale": code})
	})

	mux.HandleFunc("GET /api/{locale}/home", api.localized(func(ctx context.Context, code string, _ *http.Request) (any, error) {
		return api.site.Home(ctx, code)
	}))
	mux.HandleFunc("GET /api/{locale}/projects", api.localized(func(ctx context.Context, code string, _ *http.Request) (any, error) {
		return api.site.Projects(ctx, code)
	}))
	mux.HandleFunc("GET /api/{locale}/projects/{slug}", api.localized(func(ctx context.Context, code string, r *http.Request) (any, error) {
		return api.site.Project(ctx, code, r.PathValue("slug"))
	}))
	mux.HandleFunc("GET /api/{locale}/posts", api.localized(func(ctx context.Context, code string, r *http.Request) (any, error) {
		return api.site.Posts(ctx, code, r.URL.Query().Get("tag"), parseIntQuery(r, "page", 1))
	}))
	mux.HandleFunc("GET /api/{locale}/posts/{slug}", api.localized(func(ctx context.Context, code string, r *http.Request) (any, error) {
		return api.site.Post(ctx, code, r.PathValue("slug"))
	}))
	mux.HandleFunc("GET /api/{locale}/messages", api.localized(func(_ context.Context, code string, _ *http.Request) (any, error) {
		if api.catalog == nil {
			return map[string]string{}, nil
		}
		return api.catalog.Messages(code), nil
	}))

	if api.mediaDir != "" {
		files := http.StripPrefix(api.mediaPrefix, http.FileServer(http.Dir(api.mediaDir)))
		mux.Handle("GET "+api.mediaPrefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("X-Content-Type-Options", "nosniff")
			files.ServeHTTP(w, r)
		}))
	}
	return nil
}

// localized negotiates the locale before fetch runs.
func (api *PublicAPI) localized(fetch func(ctx context.Context, code string, r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := api.negotiate(w, r)
		if err != nil {
			writeError(w, err)
			return
		}
		payload, err := fetch(r.Context(), code, r)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Language", code)
		w.Header().Add("Vary", "Accept-Language, Cookie")
		writeJSON(w, http.StatusOK, payload)
	}
}

func (api *PublicAPI) negotiate(w http.ResponseWriter, r *http.Request) (string, error) {
	active, err := api.locales.Active(r.Context())
	if err != nil {
		return "", err
	}
	code, persist := locales.NegotiatorFor(active).Negotiate(r, r.PathValue("locale"))
	if persist {
		locales.SetCookie(w, code, api.secureCookies)
	}
	return code, nil
}

func (api *PublicAPI) handleSitemap(w http.ResponseWriter, r *http.Request) {
	urls, err := api.site.Sitemap(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if err := site.WriteSitemap(w, urls); err != nil {
		api.logger.WithContext(r.Context()).Error("http.sitemap.write_failed", "error", err)
	}
}

func (api *PublicAPI) handleHealth(w http.ResponseWriter, r *http.Request) {
	if api.health != nil {
		if err := api.health(r.Context()); err != nil {
			api.logger.WithContext(r.Context()).Warn("http.health.failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
