package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/actions"
	"github.com/goliatone/go-folio/internal/admin"
	"github.com/goliatone/go-folio/internal/audit"
	"github.com/goliatone/go-folio/internal/auth"
	"github.com/goliatone/go-folio/internal/blog"
	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/experience"
	"github.com/goliatone/go-folio/internal/locales"
	"github.com/goliatone/go-folio/internal/media"
	"github.com/goliatone/go-folio/internal/profile"
	"github.com/goliatone/go-folio/internal/projects"
	"github.com/goliatone/go-folio/internal/richtext"
	"github.com/goliatone/go-folio/internal/skills"
	"github.com/goliatone/go-folio/internal/testimonials"
	"github.com/goliatone/go-folio/internal/translations"
	"github.com/goliatone/go-folio/internal/users"
	"github.com/goliatone/go-folio/internal/validation"
)

const maxJSONBody = 2 << 20

var (
	errInvalidID    = errors.New("http: invalid id")
	errInvalidQuery = errors.New("http: invalid query parameter")
)

type errorResponse struct {
	Error   string                       `json:"error"`
	Code    string                       `json:"code,omitempty"`
	Message string                       `json:"message,omitempty"`
	Fields  goerrors.ValidationErrors    `json:"fields,omitempty"`
	Issues  []validation.ValidationIssue `json:"issues,omitempty"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

// decodeJSON reads the request body into target. An empty body leaves
// target untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := decoder.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}
	resp := errorResponse{Message: err.Error()}
	var wrapped *goerrors.Error
	if errors.As(err, &wrapped) {
		resp.Code = wrapped.TextCode
		resp.Message = wrapped.Message
		if wrapped.Source != nil {
			resp.Message = wrapped.Source.Error()
		}
	}

	if errors.Is(err, errInvalidID) || errors.Is(err, errInvalidQuery) {
		resp.Error = "bad_request"
		return http.StatusBadRequest, resp
	}

	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		resp.Error, resp.Message = "not_found", notFound.Error()
		return http.StatusNotFound, resp
	}

	switch {
	case errors.Is(err, users.ErrInvalidCredentials),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrSessionRevoked),
		errors.Is(err, actions.ErrUnauthenticated):
		resp.Error = "unauthenticated"
		return http.StatusUnauthorized, resp

	case errors.Is(err, users.ErrAccountInactive),
		errors.Is(err, actions.ErrInactiveAccount),
		errors.Is(err, actions.ErrForbidden),
		errors.Is(err, admin.ErrSelfDelete):
		resp.Error = "forbidden"
		return http.StatusForbidden, resp

	case errors.Is(err, blog.ErrSlugExists),
		errors.Is(err, projects.ErrSlugExists),
		errors.Is(err, users.ErrEmailExists),
		errors.Is(err, users.ErrLastAdmin),
		errors.Is(err, locales.ErrLocaleExists),
		errors.Is(err, locales.ErrDefaultLocaleRequired),
		errors.Is(err, locales.ErrDefaultLocaleInactive),
		errors.Is(err, blog.ErrAlreadyPublished),
		errors.Is(err, blog.ErrNotPublished):
		resp.Error = "conflict"
		return http.StatusConflict, resp

	case errors.Is(err, media.ErrFileTooLarge):
		resp.Error = "payload_too_large"
		return http.StatusRequestEntityTooLarge, resp

	case errors.Is(err, media.ErrTypeNotAllowed):
		resp.Error = "unsupported_media_type"
		return http.StatusUnsupportedMediaType, resp

	case errors.Is(err, richtext.ErrInvalidDocument):
		resp.Error = "validation_failed"
		resp.Issues = validation.Issues(err)
		return http.StatusUnprocessableEntity, resp

	case goerrors.IsCategory(err, goerrors.CategoryValidation), isInputError(err):
		resp.Error = "validation_failed"
		if fields, ok := goerrors.GetValidationErrors(err); ok {
			resp.Fields = fields
		}
		resp.Issues = validation.Issues(err)
		return http.StatusUnprocessableEntity, resp

	case goerrors.IsCategory(err, goerrors.CategoryAuth):
		resp.Error = "unauthenticated"
		return http.StatusUnauthorized, resp

	case goerrors.IsCategory(err, goerrors.CategoryAuthz):
		resp.Error = "forbidden"
		return http.StatusForbidden, resp

	case goerrors.IsCategory(err, goerrors.CategoryCommand) && resp.Code == "ACTION_CONTEXT_TIMEOUT":
		resp.Error = "timeout"
		return http.StatusGatewayTimeout, resp
	}

	resp.Error = "internal_error"
	return http.StatusInternalServerError, resp
}

// inputErrors are service sentinels describing bad client input.
var inputErrors = []error{
	translations.ErrNoTranslations,
	translations.ErrLocaleRequired,
	translations.ErrDuplicateLocale,
	translations.ErrUnknownLocale,
	translations.ErrDefaultLocaleMissing,
	domain.ErrSlugRequired,
	domain.ErrSlugInvalid,
	profile.ErrFullNameRequired,
	profile.ErrEmailInvalid,
	profile.ErrURLInvalid,
	profile.ErrSocialInvalid,
	profile.ErrYearsInvalid,
	skills.ErrCategoryRequired,
	skills.ErrLevelOutOfRange,
	skills.ErrNameRequired,
	skills.ErrReorderMismatch,
	experience.ErrCompanyRequired,
	experience.ErrStartDateRequired,
	experience.ErrEndBeforeStart,
	experience.ErrEmploymentTypeInvalid,
	experience.ErrURLInvalid,
	experience.ErrRoleRequired,
	projects.ErrStatusInvalid,
	projects.ErrTitleRequired,
	projects.ErrURLInvalid,
	blog.ErrStatusInvalid,
	blog.ErrTitleRequired,
	blog.ErrPublishAtRequired,
	blog.ErrPublishAtInPast,
	blog.ErrURLInvalid,
	blog.ErrMetaDescriptionSize,
	testimonials.ErrAuthorRequired,
	testimonials.ErrRatingOutOfRange,
	testimonials.ErrQuoteRequired,
	testimonials.ErrURLInvalid,
	media.ErrContentRequired,
	media.ErrFileEmpty,
	media.ErrAltTooLong,
	users.ErrEmailInvalid,
	users.ErrPasswordTooShort,
	users.ErrPasswordTooLong,
	users.ErrRoleInvalid,
	users.ErrStatusInvalid,
	locales.ErrCodeRequired,
	locales.ErrCodeInvalid,
	locales.ErrNameRequired,
	audit.ErrActionRequired,
}

func isInputError(err error) bool {
	for _, target := range inputErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func requestID(r *http.Request) (uuid.UUID, error) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("uuid required")
	}
	return uuid.Parse(trimmed)
}

func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return defaultValue
	}
	return parsed
}

func parseBoolQuery(value string, defaultValue bool) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return defaultValue
	}
	return parsed
}
