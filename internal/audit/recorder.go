package audit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/activity"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
	channel          = "folio.admin"
)

var ErrActionRequired = errors.New("audit: action is required")

type Recorder interface {
	Record(ctx context.Context, entry Entry) (*Entry, error)
	List(ctx context.Context, filter Filter) ([]*Entry, int, error)
	// Prune deletes entries older than the retention window and reports how
	// many were removed. A non-positive window keeps everything.
	Prune(ctx context.Context, olderThan time.Duration) (int, error)
}

type RecorderOption func(*recorder)

func WithClock(clock func() time.Time) RecorderOption {
	return func(r *recorder) {
		if clock != nil {
			r.now = clock
		}
	}
}

func WithLogger(logger interfaces.Logger) RecorderOption {
	return func(r *recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithHooks forwards every recorded entry to hooks as an activity event.
func WithHooks(hooks ...activity.Hook) RecorderOption {
	return func(r *recorder) {
		r.hooks = append(r.hooks, hooks...)
	}
}

type recorder struct {
	repo   EntryRepository
	now    func() time.Time
	logger interfaces.Logger
	hooks  activity.Hooks
}

func NewRecorder(repo EntryRepository, opts ...RecorderOption) Recorder {
	r := &recorder{repo: repo, now: time.Now, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *recorder) Record(ctx context.Context, entry Entry) (*Entry, error) {
	entry.Action = strings.TrimSpace(entry.Action)
	if entry.Action == "" {
		return nil, ErrActionRequired
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	if entry.Outcome == "" {
		entry.Outcome = OutcomeSuccess
	}
	meta := RequestMetaFrom(ctx)
	if entry.IP == "" {
		entry.IP = meta.IP
	}
	if entry.UserAgent == "" {
		entry.UserAgent = meta.UserAgent
	}
	if meta.RequestID != "" {
		if entry.Metadata == nil {
			entry.Metadata = map[string]any{}
		}
		if _, ok := entry.Metadata["request_id"]; !ok {
			entry.Metadata["request_id"] = meta.RequestID
		}
	}

	stored, err := r.repo.Create(ctx, &entry)
	if err != nil {
		return nil, err
	}
	if len(r.hooks) > 0 {
		if err := r.hooks.Notify(ctx, toEvent(stored)); err != nil {
			r.logger.Warn("audit.hook.failed", "action", stored.Action, "error", err)
		}
	}
	return stored, nil
}

func (r *recorder) List(ctx context.Context, filter Filter) ([]*Entry, int, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultListLimit
	case filter.Limit > MaxListLimit:
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Resource = strings.TrimSpace(filter.Resource)
	filter.Action = strings.TrimSpace(filter.Action)
	return r.repo.List(ctx, filter)
}

func (r *recorder) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, nil
	}
	cutoff := r.now().UTC().Add(-olderThan)
	removed, err := r.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		r.logger.Info("audit.pruned", "removed", removed, "cutoff", cutoff)
	}
	return removed, nil
}

func toEvent(entry *Entry) activity.Event {
	event := activity.Event{
		Verb:           entry.Action,
		ObjectType:     entry.Resource,
		ObjectID:       entry.ResourceID,
		Channel:        channel,
		DefinitionCode: entry.Resource + ":" + string(entry.Outcome),
		OccurredAt:     entry.CreatedAt,
		Metadata: map[string]any{
			"outcome": string(entry.Outcome),
		},
	}
	if entry.ActorID != nil {
		event.ActorID = entry.ActorID.String()
		event.UserID = entry.ActorID.String()
	}
	if entry.Message != "" {
		event.Metadata["message"] = entry.Message
	}
	return event
}
