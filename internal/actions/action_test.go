package actions_test

import (
	"context"
	"errors"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/actions"
	"github.com/goliatone/go-folio/internal/audit"
	"github.com/goliatone/go-folio/internal/auth"
	"github.com/goliatone/go-folio/internal/domain"
)

type renameMessage struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Password string `json:"password,omitempty"`
}

func (renameMessage) Type() string { return "folio.test.rename" }

func (m renameMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Title, validation.Required),
	)
}

func sessionCtx(role domain.Role, status domain.UserStatus) context.Context {
	return auth.WithSession(context.Background(), auth.Session{
		UserID: uuid.New(),
		Email:  "editor@example.com",
		Role:   role,
		Status: status,
	})
}

func newAction(rec audit.Recorder, exec actions.Func[renameMessage, string], roles ...domain.Role) *actions.SecureAction[renameMessage, string] {
	opts := []actions.Option[renameMessage, string]{
		actions.WithRecorder[renameMessage, string](rec),
		actions.WithResource[renameMessage, string]("project", func(m renameMessage, _ string) string { return m.ID }),
	}
	if len(roles) > 0 {
		opts = append(opts, actions.WithRoles[renameMessage, string](roles...))
	}
	return actions.New("project.rename", exec, opts...)
}

func lastEntry(t *testing.T, rec audit.Recorder) *audit.Entry {
	t.Helper()
	entries, _, err := rec.List(context.Background(), audit.Filter{Limit: 1})
	if err != nil || len(entries) == 0 {
		t.Fatalf("expected an audit entry, got %v (%v)", entries, err)
	}
	return entries[0]
}

func okExec(_ context.Context, _ auth.Session, msg renameMessage) (string, error) {
	return "renamed:" + msg.Title, nil
}

func TestRunSuccessRecordsRedactedSnapshot(t *testing.T) {
	rec := audit.NewRecorder(audit.NewMemoryEntryRepository())
	action := newAction(rec, okExec, domain.RoleAdmin, domain.RoleEditor)

	out, err := action.Run(sessionCtx(domain.RoleEditor, domain.UserStatusActive), renameMessage{ID: "p-1", Title: "Folio", Password: "hunter22"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "renamed:Folio" {
		t.Fatalf("unexpected result %q", out)
	}
	entry := lastEntry(t, rec)
	if entry.Outcome != audit.OutcomeSuccess || entry.ResourceID != "p-1" || entry.Resource != "project" || entry.ActorEmail != "editor@example.com" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	input, _ := entry.Metadata["input"].(map[string]any)
	if input["password"] != "[redacted]" || input["title"] != "Folio" {
		t.Fatalf("expected redacted snapshot, got %v", input)
	}
}

func TestRunValidationFailsFirst(t *testing.T) {
	rec := audit.NewRecorder(audit.NewMemoryEntryRepository())
	called := false
	action := newAction(rec, func(context.Context, auth.Session, renameMessage) (string, error) {
		called = true
		return "", nil
	})

	_, err := action.Run(context.Background(), renameMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("exec must not run on invalid input")
	}
	if entry := lastEntry(t, rec); entry.Outcome != audit.OutcomeInvalid {
		t.Fatalf("expected invalid outcome, got %s", entry.Outcome)
	}
}

func TestRunAuthorisation(t *testing.T) {
	cases := []struct {
		name     string
		ctx      context.Context
		category goerrors.Category
		sentinel error
	}{
		{"anonymous", context.Background(), goerrors.CategoryAuth, actions.ErrUnauthenticated},
		{"suspended", sessionCtx(domain.RoleAdmin, domain.UserStatusSuspended), goerrors.CategoryAuthz, actions.ErrInactiveAccount},
		{"editor on admin action", sessionCtx(domain.RoleEditor, domain.UserStatusActive), goerrors.CategoryAuthz, actions.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := audit.NewRecorder(audit.NewMemoryEntryRepository())
			action := newAction(rec, okExec)
			_, err := action.Run(tc.ctx, renameMessage{ID: "p-1", Title: "x"})
			if !goerrors.IsCategory(err, tc.category) {
				t.Fatalf("expected category %v, got %v", tc.category, err)
			}
			if !errors.Is(err, tc.sentinel) {
				t.Fatalf("expected %v, got %v", tc.sentinel, err)
			}
			if entry := lastEntry(t, rec); entry.Outcome != audit.OutcomeDenied {
				t.Fatalf("expected denied outcome, got %s", entry.Outcome)
			}
		})
	}
}

func TestRunFailureAndTimeout(t *testing.T) {
	rec := audit.NewRecorder(audit.NewMemoryEntryRepository())
	boom := errors.New("boom")
	failing := newAction(rec, func(context.Context, auth.Session, renameMessage) (string, error) {
		return "", boom
	})
	_, err := failing.Run(sessionCtx(domain.RoleAdmin, domain.UserStatusActive), renameMessage{Title: "x"})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) || !errors.Is(err, boom) {
		t.Fatalf("expected command category wrapping boom, got %v", err)
	}
	if entry := lastEntry(t, rec); entry.Outcome != audit.OutcomeFailure || entry.Message != "boom" {
		t.Fatalf("unexpected failure entry %+v", entry)
	}

	slow := actions.New("project.slow", func(ctx context.Context, _ auth.Session, _ renameMessage) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Second):
			return "late", nil
		}
	}, actions.WithTimeout[renameMessage, string](10*time.Millisecond))
	_, err = slow.Run(sessionCtx(domain.RoleAdmin, domain.UserStatusActive), renameMessage{Title: "x"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

type failingRecorder struct{ audit.Recorder }

func (failingRecorder) Record(context.Context, audit.Entry) (*audit.Entry, error) {
	return nil, errors.New("audit store down")
}

func TestAuditFailureDoesNotMaskResult(t *testing.T) {
	action := newAction(failingRecorder{}, okExec)
	out, err := action.Run(sessionCtx(domain.RoleAdmin, domain.UserStatusActive), renameMessage{Title: "kept"})
	if err != nil || out != "renamed:kept" {
		t.Fatalf("expected success despite audit failure, got %q %v", out, err)
	}
}
