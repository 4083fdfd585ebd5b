// Package actions runs admin mutations behind validation, session, role and
// audit checks.
package actions

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/audit"
	"github.com/goliatone/go-folio/internal/auth"
	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

const defaultTimeout = 30 * time.Second

// Message is the contract for action inputs. Messages that also implement
// Validate() error are validated before anything else runs.
type Message interface {
	command.Message
}

// Func executes the action for an authenticated, authorised session.
type Func[M Message, R any] func(ctx context.Context, session auth.Session, msg M) (R, error)

type Option[M Message, R any] func(*SecureAction[M, R])

// WithRoles replaces the allowed roles. The default allows admins only.
func WithRoles[M Message, R any](roles ...domain.Role) Option[M, R] {
	return func(a *SecureAction[M, R]) {
		a.roles = append([]domain.Role(nil), roles...)
	}
}

func WithTimeout[M Message, R any](timeout time.Duration) Option[M, R] {
	return func(a *SecureAction[M, R]) {
		a.timeout = max(timeout, 0)
	}
}

func WithRecorder[M Message, R any](recorder audit.Recorder) Option[M, R] {
	return func(a *SecureAction[M, R]) {
		a.recorder = recorder
	}
}

func WithLogger[M Message, R any](logger interfaces.Logger) Option[M, R] {
	return func(a *SecureAction[M, R]) {
		if logger == nil {
			logger = logging.NoOp()
		}
		a.logger = logger
	}
}

// WithResource names the audited resource type and derives the resource id
// from the message or, on success, the result.
func WithResource[M Message, R any](resource string, id func(msg M, result R) string) Option[M, R] {
	return func(a *SecureAction[M, R]) {
		a.resource = resource
		a.resourceID = id
	}
}

// SecureAction wraps a Func with the checks every admin mutation shares.
type SecureAction[M Message, R any] struct {
	name       string
	exec       Func[M, R]
	roles      []domain.Role
	timeout    time.Duration
	recorder   audit.Recorder
	logger     interfaces.Logger
	resource   string
	resourceID func(M, R) string
}

func New[M Message, R any](name string, exec Func[M, R], opts ...Option[M, R]) *SecureAction[M, R] {
	if exec == nil {
		panic("actions: exec function cannot be nil")
	}
	a := &SecureAction[M, R]{
		name:    name,
		exec:    exec,
		roles:   []domain.Role{domain.RoleAdmin},
		timeout: defaultTimeout,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *SecureAction[M, R]) Name() string { return a.name }

func (a *SecureAction[M, R]) Roles() []domain.Role {
	return append([]domain.Role(nil), a.roles...)
}

// Run validates msg, checks the session from ctx, executes under the timeout
// and records the outcome. Audit write failures are logged only.
func (a *SecureAction[M, R]) Run(ctx context.Context, msg M) (R, error) {
	var zero R
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithFields(a.logger, map[string]any{"action": a.name})
	session, hasSession := auth.FromContext(ctx)

	if err := command.ValidateMessage(msg); err != nil {
		a.record(ctx, session, msg, zero, audit.OutcomeInvalid, err)
		return zero, wrapValidationError(err)
	}
	if !hasSession {
		a.record(ctx, session, msg, zero, audit.OutcomeDenied, ErrUnauthenticated)
		return zero, unauthenticated()
	}
	if !session.IsActive() {
		a.record(ctx, session, msg, zero, audit.OutcomeDenied, ErrInactiveAccount)
		return zero, inactive()
	}
	if !session.HasRole(a.roles...) {
		a.record(ctx, session, msg, zero, audit.OutcomeDenied, ErrForbidden)
		logger.Warn("action.denied", "user_id", session.UserID.String(), "role", session.Role.String())
		return zero, forbidden(a.name)
	}

	runCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	logger.Debug("action.execute.start")
	result, err := a.exec(runCtx, session, msg)
	if err == nil {
		err = runCtx.Err()
	}
	if err != nil {
		logger.Error("action.execute.failed", "error", err)
		a.record(ctx, session, msg, zero, audit.OutcomeFailure, err)
		return zero, wrapExecuteError(err)
	}

	a.record(ctx, session, msg, result, audit.OutcomeSuccess, nil)
	logger.Info("action.execute.success")
	return result, nil
}

func (a *SecureAction[M, R]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

func (a *SecureAction[M, R]) record(ctx context.Context, session auth.Session, msg M, result R, outcome audit.Outcome, cause error) {
	if a.recorder == nil {
		return
	}
	entry := audit.Entry{
		Action:   a.name,
		Resource: a.resource,
		Outcome:  outcome,
		Metadata: map[string]any{"input": Snapshot(msg)},
	}
	if session.UserID != uuid.Nil {
		id := session.UserID
		entry.ActorID = &id
		entry.ActorEmail = session.Email
	}
	if a.resourceID != nil {
		entry.ResourceID = a.resourceID(msg, result)
	}
	if cause != nil {
		entry.Message = cause.Error()
	}
	// the caller's deadline may already be spent
	if _, err := a.recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
		a.logger.Error("action.audit.failed", "action", a.name, "error", err)
	}
}

var redactedKeys = []string{"password", "secret", "token", "hash"}

const redacted = "[redacted]"

// Snapshot renders msg as a JSON-shaped map with credential-like keys
// replaced. Messages that do not marshal to an object yield nil.
func Snapshot(msg any) map[string]any {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	redact(out)
	return out
}

func redact(value any) {
	switch v := value.(type) {
	case map[string]any:
		for key, inner := range v {
			if sensitive(key) {
				v[key] = redacted
				continue
			}
			redact(inner)
		}
	case []any:
		for _, inner := range v {
			redact(inner)
		}
	}
}

func sensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, marker := range redactedKeys {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
