// Package jobs runs the periodic maintenance work: promoting scheduled posts
// and pruning the audit log.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/audit"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

const (
	DefaultInterval = time.Minute

	ActionScheduledPublish = "post.publish.scheduled"
)

// Publisher promotes scheduled posts whose publish time has passed.
type Publisher interface {
	PublishDue(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

type Worker struct {
	posts     Publisher
	recorder  audit.Recorder
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	logger    interfaces.Logger
}

type Option func(*Worker)

func WithRecorder(recorder audit.Recorder) Option {
	return func(w *Worker) {
		w.recorder = recorder
	}
}

// WithRetention prunes audit entries older than retention on every run.
// Zero keeps everything.
func WithRetention(retention time.Duration) Option {
	return func(w *Worker) {
		if retention >= 0 {
			w.retention = retention
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(w *Worker) {
		if clock != nil {
			w.now = clock
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func NewWorker(posts Publisher, opts ...Option) *Worker {
	w := &Worker{
		posts:    posts,
		interval: DefaultInterval,
		now:      time.Now,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Result summarises one Process pass.
type Result struct {
	Published []uuid.UUID
	Pruned    int
}

// Process runs every task once. A failing task does not stop the others;
// their errors are joined.
func (w *Worker) Process(ctx context.Context) (Result, error) {
	var (
		result Result
		errs   []error
	)
	now := w.now()

	if w.posts != nil {
		ids, err := w.posts.PublishDue(ctx, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("jobs: publish due posts: %w", err))
		}
		result.Published = ids
		for _, id := range ids {
			w.recordPublish(ctx, id, now)
		}
	}

	if w.recorder != nil && w.retention > 0 {
		removed, err := w.recorder.Prune(ctx, w.retention)
		if err != nil {
			errs = append(errs, fmt.Errorf("jobs: prune audit log: %w", err))
		}
		result.Pruned = removed
	}

	return result, errors.Join(errs...)
}

// Run calls Process immediately and then on every tick until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("jobs.worker.started", "interval", w.interval, "retention", w.retention)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.Process(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("jobs.worker.failed", "error", err)
		}
		select {
		case <-ctx.Done():
			w.logger.Info("jobs.worker.stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (w *Worker) recordPublish(ctx context.Context, id uuid.UUID, now time.Time) {
	if w.recorder == nil {
		return
	}
	_, err := w.recorder.Record(ctx, audit.Entry{
		Action:     ActionScheduledPublish,
		Resource:   "post",
		ResourceID: id.String(),
		Outcome:    audit.OutcomeSuccess,
		Metadata:   map[string]any{"published_at": now.UTC().Format(time.RFC3339)},
	})
	if err != nil {
		w.logger.Warn("jobs.audit.failed", "post_id", id, "error", err)
	}
}
