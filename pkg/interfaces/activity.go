package interfaces

import (
	"context"

	usertypes "github.com/goliatone/go-users/pkg/types"
)

// ActivityRecord aliases the go-users activity record so audit fan-out can
// feed user activity feeds without an extra mapping type.
type ActivityRecord = usertypes.ActivityRecord

// ActivitySink receives activity records; go-users sinks satisfy it.
type ActivitySink interface {
	Log(ctx context.Context, record ActivityRecord) error
}
