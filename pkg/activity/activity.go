// Package activity defines the event shape folio emits for recorded admin
// actions and the hook contract used to forward them.
package activity

import (
	"context"
	"errors"
	"time"
)

// Event describes one recorded action.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Hook receives events after they are recorded.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// Hooks fans an event out to every hook and joins their errors.
type Hooks []Hook

func (h Hooks) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
