package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/admin"
	"github.com/goliatone/go-folio/internal/audit"
	"github.com/goliatone/go-folio/internal/auth"
	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/media"
	"github.com/goliatone/go-folio/internal/richtext"
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string       `json:"token"`
	Session auth.Session `json:"session"`
}

type previewPayload struct {
	Document json.RawMessage `json:"document,omitempty"`
	Markdown string          `json:"markdown,omitempty"`
}

type previewResponse struct {
	HTML           string            `json:"html"`
	Document       richtext.Document `json:"document"`
	Words          int               `json:"words"`
	ReadingMinutes int               `json:"reading_minutes"`
	Excerpt        string            `json:"excerpt"`
}

var contentRoles = []domain.Role{domain.RoleAdmin, domain.RoleEditor}

func (api *AdminAPI) registerAuthRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "auth")
	mux.HandleFunc("POST "+root+"/login", api.handleLogin)
	mux.HandleFunc("POST "+root+"/logout", api.handleLogout)
	mux.HandleFunc("GET "+root+"/me", func(w http.ResponseWriter, r *http.Request) {
		session, ok := auth.FromContext(r.Context())
		if !ok {
			writeError(w, auth.ErrTokenInvalid)
			return
		}
		writeJSON(w, http.StatusOK, session)
	})
}

func (api *AdminAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		badRequest(w, "invalid json body")
		return
	}
	token, session, err := api.auth.Login(r.Context(), payload.Email, payload.Password)
	entry := audit.Entry{
		Action:   "auth.login",
		Resource: "session",
		Metadata: map[string]any{"email": strings.ToLower(strings.TrimSpace(payload.Email))},
	}
	if err != nil {
		entry.Outcome = audit.OutcomeDenied
		entry.Message = err.Error()
		api.audit(r.Context(), entry)
		writeError(w, err)
		return
	}
	entry.Outcome = audit.OutcomeSuccess
	entry.ActorID = &session.UserID
	entry.ActorEmail = session.Email
	entry.ResourceID = session.UserID.String()
	api.audit(r.Context(), entry)

	auth.SetCookie(w, token, session.ExpiresAt, api.secureCookies)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, Session: session})
}

func (api *AdminAPI) handleLogout(w http.ResponseWriter, r *http.Request) {
	if session, ok := auth.FromContext(r.Context()); ok {
		api.audit(r.Context(), audit.Entry{
			Action:     "auth.logout",
			Resource:   "session",
			ResourceID: session.UserID.String(),
			ActorID:    &session.UserID,
			ActorEmail: session.Email,
			Outcome:    audit.OutcomeSuccess,
		})
	}
	auth.ClearCookie(w, api.secureCookies)
	writeJSON(w, http.StatusNoContent, nil)
}

func (api *AdminAPI) audit(ctx context.Context, entry audit.Entry) {
	if api.recorder == nil {
		return
	}
	if _, err := api.recorder.Record(ctx, entry); err != nil {
		api.logger.WithContext(ctx).Warn("http.audit.failed", "action", entry.Action, "error", err)
	}
}

func (api *AdminAPI) registerMediaRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "media")
	mux.HandleFunc("GET "+root, api.read(func(ctx context.Context, r *http.Request) (any, error) {
		items, total, err := api.services.Media.List(ctx, media.ListOptions{
			Limit:  parseIntQuery(r, "limit", 0),
			Offset: parseIntQuery(r, "offset", 0),
		})
		if err != nil {
			return nil, err
		}
		return listResponse[*media.Asset]{Items: items, Total: total}, nil
	}))
	mux.HandleFunc("GET "+root+"/{id}", api.read(func(ctx context.Context, r *http.Request) (any, error) {
		id, err := requestID(r)
		if err != nil {
			return nil, err
		}
		return api.services.Media.Get(ctx, id)
	}))
	mux.HandleFunc("POST "+root, api.handleUpload)
	mux.HandleFunc("PATCH "+root+"/{id}", run(api.actions.UpdateMediaAlt, http.StatusOK,
		pathID(func(msg *admin.UpdateMediaAltMessage, id uuid.UUID) { msg.ID = id })))
	mux.HandleFunc("DELETE "+root+"/{id}", run(api.actions.DeleteMedia, http.StatusNoContent, deleteOf("media")))
}

// handleUpload reads the "file" part of a multipart form.
func (api *AdminAPI) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, api.maxUpload+(1<<20))
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, media.ErrFileTooLarge)
			return
		}
		badRequest(w, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	asset, err := api.actions.UploadMedia.Run(r.Context(), admin.UploadMediaMessage{
		Filename: header.Filename,
		AltText:  r.FormValue("alt_text"),
		Content:  file,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

func (api *AdminAPI) registerUserRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "users")
	mux.HandleFunc("GET "+root, api.read(func(ctx context.Context, _ *http.Request) (any, error) {
		return api.services.Users.List(ctx)
	}, domain.RoleAdmin))
	mux.HandleFunc("GET "+root+"/{id}", api.read(func(ctx context.Context, r *http.Request) (any, error) {
		id, err := requestID(r)
		if err != nil {
			return nil, err
		}
		return api.services.Users.Get(ctx, id)
	}, domain.RoleAdmin))
	mux.HandleFunc("POST "+root, run(api.actions.CreateUser, http.StatusCreated, nil))
	mux.HandleFunc("PATCH "+root+"/{id}/role", run(api.actions.UpdateUserRole, http.StatusOK,
		pathID(func(msg *admin.UpdateUserRoleMessage, id uuid.UUID) { msg.ID = id })))
	mux.HandleFunc("PATCH "+root+"/{id}/status", run(api.actions.UpdateUserStatus, http.StatusOK,
		pathID(func(msg *admin.UpdateUserStatusMessage, id uuid.UUID) { msg.ID = id })))
	mux.HandleFunc("PUT "+root+"/{id}/password", run(api.actions.ChangePassword, http.StatusNoContent,
		pathID(func(msg *admin.ChangePasswordMessage, id uuid.UUID) { msg.ID = id })))
	mux.HandleFunc("DELETE "+root+"/{id}", run(api.actions.DeleteUser, http.StatusNoContent, deleteOf("user")))
}

func (api *AdminAPI) registerLocaleRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "locales")
	mux.HandleFunc("GET "+root, api.read(func(ctx context.Context, _ *http.Request) (any, error) {
		return api.services.Locales.List(ctx)
	}))
	mux.HandleFunc("POST "+root, run(api.actions.CreateLocale, http.StatusCreated, nil))
	mux.HandleFunc("PUT "+root+"/{id}", run(api.actions.UpdateLocale, http.StatusOK,
		pathID(func(msg *admin.UpdateLocaleMessage, id uuid.UUID) { msg.ID = id })))
}

func (api *AdminAPI) registerAuditRoutes(mux *http.ServeMux, base string) {
	mux.HandleFunc("GET "+joinPath(base, "audit"), api.read(func(ctx context.Context, r *http.Request) (any, error) {
		if api.recorder == nil {
			return listResponse[*audit.Entry]{Items: []*audit.Entry{}}, nil
		}
		query := r.URL.Query()
		filter := audit.Filter{
			Action:   query.Get("action"),
			Resource: query.Get("resource"),
			Outcome:  audit.Outcome(query.Get("outcome")),
			Limit:    parseIntQuery(r, "limit", 0),
			Offset:   parseIntQuery(r, "offset", 0),
		}
		if raw := query.Get("actor_id"); raw != "" {
			actor, err := parseUUID(raw)
			if err != nil {
				return nil, errInvalidID
			}
			filter.ActorID = &actor
		}
		if raw := query.Get("since"); raw != "" {
			since, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return nil, errInvalidQuery
			}
			filter.Since = &since
		}
		items, total, err := api.recorder.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		return listResponse[*audit.Entry]{Items: items, Total: total}, nil
	}, domain.RoleAdmin))
}

// registerPreviewRoutes renders editor documents or markdown without saving.
func (api *AdminAPI) registerPreviewRoutes(mux *http.ServeMux, base string) {
	mux.HandleFunc("POST "+joinPath(base, "preview"), func(w http.ResponseWriter, r *http.Request) {
		if _, ok := api.authorize(w, r, contentRoles...); !ok {
			return
		}
		var payload previewPayload
		if err := decodeJSON(w, r, &payload); err != nil {
			badRequest(w, "invalid json body")
			return
		}
		var (
			doc richtext.Document
			err error
		)
		switch {
		case len(payload.Document) > 0:
			doc, err = richtext.Parse(payload.Document)
		case payload.Markdown != "":
			doc, err = richtext.FromMarkdown([]byte(payload.Markdown))
		default:
			badRequest(w, "document or markdown is required")
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		text := richtext.PlainText(doc)
		words := richtext.WordCount(text)
		writeJSON(w, http.StatusOK, previewResponse{
			HTML:           richtext.RenderHTML(doc),
			Document:       doc,
			Words:          words,
			ReadingMinutes: richtext.ReadingMinutes(words),
			Excerpt:        richtext.Excerpt(text, 200),
		})
	})
}
