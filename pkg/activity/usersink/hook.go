// Package usersink forwards activity events to a go-users activity sink.
package usersink

import (
	"context"
	"maps"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-folio/pkg/activity"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// Hook maps events onto go-users activity records.
type Hook struct {
	Sink interfaces.ActivitySink
}

func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil || strings.TrimSpace(event.Verb) == "" {
		return nil
	}
	data := make(map[string]any, len(event.Metadata)+2)
	maps.Copy(data, event.Metadata)
	if event.DefinitionCode != "" {
		data["definition_code"] = event.DefinitionCode
	}
	if len(event.Recipients) > 0 {
		data["recipients"] = append([]string(nil), event.Recipients...)
	}
	return h.Sink.Log(ctx, interfaces.ActivityRecord{
		UserID:     parseID(event.UserID),
		ActorID:    parseID(event.ActorID),
		TenantID:   parseID(event.TenantID),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		Data:       data,
		OccurredAt: event.OccurredAt,
	})
}

func parseID(value string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return id
}
