package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/audit"
	"github.com/goliatone/go-folio/pkg/activity"
	"github.com/goliatone/go-folio/pkg/testsupport"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type captureHook struct {
	events []activity.Event
	err    error
}

func (h *captureHook) Notify(_ context.Context, event activity.Event) error {
	h.events = append(h.events, event)
	return h.err
}

func recorders(t *testing.T, c *clock, hook activity.Hook) map[string]audit.Recorder {
	t.Helper()
	opts := []audit.RecorderOption{audit.WithClock(c.Now), audit.WithHooks(hook)}
	return map[string]audit.Recorder{
		"memory": audit.NewRecorder(audit.NewMemoryEntryRepository(), opts...),
		"bun":    audit.NewRecorder(audit.NewBunEntryRepository(testsupport.NewBunDB(t)), opts...),
	}
}

func TestRecordCapturesRequestMetaAndNotifies(t *testing.T) {
	c := &clock{now: time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)}
	for name := range recorders(t, c, nil) {
		t.Run(name, func(t *testing.T) {
			hook := &captureHook{err: errors.New("sink down")}
			rec := recorders(t, c, hook)[name]
			actor := uuid.New()
			ctx := audit.WithRequestMeta(context.Background(), audit.RequestMeta{IP: "203.0.113.9", UserAgent: "curl/8", RequestID: "req-1"})

			entry, err := rec.Record(ctx, audit.Entry{
				ActorID:    &actor,
				ActorEmail: "admin@example.com",
				Action:     "project.create",
				Resource:   "project",
				ResourceID: "p-1",
				Metadata:   map[string]any{"title": "Folio"},
			})
			if err != nil {
				t.Fatalf("record should ignore hook failures: %v", err)
			}
			if entry.Outcome != audit.OutcomeSuccess || entry.IP != "203.0.113.9" || entry.UserAgent != "curl/8" {
				t.Fatalf("unexpected entry %+v", entry)
			}
			if entry.Metadata["request_id"] != "req-1" {
				t.Fatalf("expected request id metadata, got %v", entry.Metadata)
			}
			if len(hook.events) != 1 || hook.events[0].Verb != "project.create" || hook.events[0].ActorID != actor.String() {
				t.Fatalf("unexpected events %+v", hook.events)
			}

			if _, err := rec.Record(ctx, audit.Entry{}); !errors.Is(err, audit.ErrActionRequired) {
				t.Fatalf("expected ErrActionRequired, got %v", err)
			}
		})
	}
}

func TestListFiltersAndPrune(t *testing.T) {
	c := &clock{now: time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)}
	for name, rec := range recorders(t, c, nil) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			actor := uuid.New()
			old := c.now.Add(-40 * 24 * time.Hour)
			seed := []audit.Entry{
				{Action: "post.publish", Resource: "post", Outcome: audit.OutcomeSuccess, ActorID: &actor, CreatedAt: old},
				{Action: "post.delete", Resource: "post", Outcome: audit.OutcomeDenied, CreatedAt: c.now.Add(-time.Hour)},
				{Action: "user.create", Resource: "user", Outcome: audit.OutcomeSuccess, ActorID: &actor, CreatedAt: c.now},
			}
			for _, entry := range seed {
				if _, err := rec.Record(ctx, entry); err != nil {
					t.Fatalf("record: %v", err)
				}
			}

			posts, total, err := rec.List(ctx, audit.Filter{Resource: "post"})
			if err != nil || total != 2 || len(posts) != 2 {
				t.Fatalf("expected two post entries, got %d/%d (%v)", len(posts), total, err)
			}
			if posts[0].Action != "post.delete" {
				t.Fatalf("expected newest first, got %s", posts[0].Action)
			}

			byActor, _, err := rec.List(ctx, audit.Filter{ActorID: &actor, Outcome: audit.OutcomeSuccess})
			if err != nil || len(byActor) != 2 {
				t.Fatalf("expected two entries for actor, got %d (%v)", len(byActor), err)
			}

			since := c.now.Add(-2 * time.Hour)
			recent, _, err := rec.List(ctx, audit.Filter{Since: &since, Limit: 1})
			if err != nil || len(recent) != 1 || recent[0].Action != "user.create" {
				t.Fatalf("unexpected recent page %+v (%v)", recent, err)
			}

			removed, err := rec.Prune(ctx, 30*24*time.Hour)
			if err != nil || removed != 1 {
				t.Fatalf("expected one pruned entry, got %d (%v)", removed, err)
			}
			if _, total, _ := rec.List(ctx, audit.Filter{}); total != 2 {
				t.Fatalf("expected two entries after prune, got %d", total)
			}
		})
	}
}
