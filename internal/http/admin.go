package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/actions"
	"github.com/goliatone/go-folio/internal/admin"
	"github.com/goliatone/go-folio/internal/audit"
	"github.com/goliatone/go-folio/internal/auth"
	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// AdminAPI registers the authenticated console endpoints.
type AdminAPI struct {
	basePath      string
	actions       *admin.Actions
	services      admin.Services
	auth          *auth.Manager
	recorder      audit.Recorder
	secureCookies bool
	maxUpload     int64
	logger        interfaces.Logger
}

// AdminOption mutates the AdminAPI configuration.
type AdminOption func(*AdminAPI)

// NewAdminAPI constructs an AdminAPI instance.
func NewAdminAPI(opts ...AdminOption) *AdminAPI {
	api := &AdminAPI{
		basePath:  "/admin/api",
		maxUpload: 10 << 20,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/admin/api").
func WithBasePath(path string) AdminOption {
	return func(api *AdminAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithActions wires the secure actions behind every mutation.
func WithActions(a *admin.Actions) AdminOption {
	return func(api *AdminAPI) {
		api.actions = a
	}
}

// WithServices wires the services used by read endpoints.
func WithServices(svc admin.Services) AdminOption {
	return func(api *AdminAPI) {
		api.services = svc
	}
}

// WithAuth wires the session manager used by login and the auth middleware.
func WithAuth(manager *auth.Manager) AdminOption {
	return func(api *AdminAPI) {
		api.auth = manager
	}
}

// WithRecorder wires the audit log used by login events and /audit.
func WithRecorder(recorder audit.Recorder) AdminOption {
	return func(api *AdminAPI) {
		api.recorder = recorder
	}
}

func WithSecureCookies(secure bool) AdminOption {
	return func(api *AdminAPI) {
		api.secureCookies = secure
	}
}

// WithMaxUpload caps multipart upload bodies.
func WithMaxUpload(size int64) AdminOption {
	return func(api *AdminAPI) {
		if size > 0 {
			api.maxUpload = size
		}
	}
}

func WithAdminLogger(logger interfaces.Logger) AdminOption {
	return func(api *AdminAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches the admin endpoints to the provided mux.
func (api *AdminAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: admin api is nil")
	}
	if api.actions == nil {
		return fmt.Errorf("http: admin actions are required")
	}
	if api.auth == nil {
		return fmt.Errorf("http: auth manager is required")
	}

	base := joinPath(api.basePath, "")
	inner := http.NewServeMux()

	api.registerAuthRoutes(inner, base)
	api.registerProfileRoutes(inner, base)
	api.registerSkillRoutes(inner, base)
	api.registerExperienceRoutes(inner, base)
	api.registerProjectRoutes(inner, base)
	api.registerPostRoutes(inner, base)
	api.registerTestimonialRoutes(inner, base)
	api.registerMediaRoutes(inner, base)
	api.registerUserRoutes(inner, base)
	api.registerLocaleRoutes(inner, base)
	api.registerAuditRoutes(inner, base)
	api.registerPreviewRoutes(inner, base)

	mux.Handle(base+"/", api.auth.Middleware(inner))
	return nil
}

// authorize guards read endpoints that have no secure action.
func (api *AdminAPI) authorize(w http.ResponseWriter, r *http.Request, roles ...domain.Role) (auth.Session, bool) {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, actions.ErrUnauthenticated)
		return auth.Session{}, false
	}
	if !session.IsActive() {
		writeError(w, actions.ErrInactiveAccount)
		return auth.Session{}, false
	}
	if len(roles) > 0 && !session.HasRole(roles...) {
		writeError(w, actions.ErrForbidden)
		return auth.Session{}, false
	}
	return session, true
}

// read wraps a GET handler with session checks.
func (api *AdminAPI) read(fetch func(ctx context.Context, r *http.Request) (any, error), roles ...domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := api.authorize(w, r, roles...); !ok {
			return
		}
		payload, err := fetch(r.Context(), r)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
	}
}

// run decodes the JSON body into the action message, lets prepare fill path
// values and executes the action. Done results answer 204.
func run[M actions.Message, R any](action *actions.SecureAction[M, R], status int, prepare func(r *http.Request, msg *M) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg M
		if err := decodeJSON(w, r, &msg); err != nil {
			badRequest(w, "invalid json body")
			return
		}
		if prepare != nil {
			if err := prepare(r, &msg); err != nil {
				badRequest(w, err.Error())
				return
			}
		}
		result, err := action.Run(r.Context(), msg)
		if err != nil {
			writeError(w, err)
			return
		}
		if _, empty := any(result).(admin.Done); empty {
			writeJSON(w, http.StatusNoContent, nil)
			return
		}
		writeJSON(w, status, result)
	}
}

// pathID fills the message id from the {id} path segment.
func pathID[M any](set func(msg *M, id uuid.UUID)) func(r *http.Request, msg *M) error {
	return func(r *http.Request, msg *M) error {
		id, err := requestID(r)
		if err != nil {
			return err
		}
		set(msg, id)
		return nil
	}
}

func deleteOf(resource string) func(r *http.Request, msg *admin.DeleteMessage) error {
	return pathID(func(msg *admin.DeleteMessage, id uuid.UUID) {
		msg.Resource = resource
		msg.ID = id
	})
}

func transition(kind string) func(r *http.Request, msg *admin.IDMessage) error {
	return pathID(func(msg *admin.IDMessage, id uuid.UUID) {
		msg.Kind = kind
		msg.ID = id
	})
}
