package venuesync

import (
	"context"
	"time"

	"nightlife-navigator/pkg/events"
)

// EventRecorder appends each outcome to an events store.
type EventRecorder struct {
	Store events.Store
	now   func() time.Time
}

func NewEventRecorder(store events.Store) *EventRecorder {
	return &EventRecorder{Store: store, now: time.Now}
}

func (r *EventRecorder) RecordOutcome(ctx context.Context, runID string, o Outcome) error {
	return r.Store.Append(ctx, OutcomeEvent(runID, o, r.now().UTC()))
}

// OutcomeEvent converts an outcome into its audit event.
func OutcomeEvent(runID string, o Outcome, at time.Time) events.VenueSyncOutcome {
	ev := events.VenueSyncOutcome{
		Base:    events.Base{Ts: at, VID: o.VenueID, Run: runID},
		Status:  string(o.Status),
		Reason:  string(o.Reason),
		PlaceID: o.PlaceID,
		Error:   o.Error,
	}
	if ev.Error == "" && o.Err != nil {
		ev.Error = o.Err.Error()
	}
	return ev
}
