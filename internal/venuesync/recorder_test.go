package venuesync

import (
	"context"
	"errors"
	"testing"
	"time"

	"nightlife-navigator/pkg/events"
)

type memEvents struct {
	appended []events.Event
}

func (m *memEvents) Append(ctx context.Context, ev ...events.Event) error {
	m.appended = append(m.appended, ev...)
	return nil
}

func (m *memEvents) ListByVenue(ctx context.Context, venueID string, limit int) ([]events.StoredEvent, error) {
	return nil, nil
}

func TestEventRecorder_MapsOutcome(t *testing.T) {
	store := &memEvents{}
	rec := NewEventRecorder(store)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return at }

	err := rec.RecordOutcome(context.Background(), "run-1", Outcome{
		VenueID: "v1", Status: StatusErrored, Reason: ReasonStoreWrite, PlaceID: "p1", Err: errors.New("deadlock"),
	})
	if err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if len(store.appended) != 1 {
		t.Fatalf("expected one event, got %d", len(store.appended))
	}
	ev := store.appended[0].(events.VenueSyncOutcome)
	if ev.Type() != events.TypeSyncErrored || ev.VenueID() != "v1" || ev.RunID() != "run-1" || !ev.Timestamp().Equal(at) {
		t.Fatalf("unexpected event metadata: %+v", ev)
	}
	if ev.Reason != "store_write" || ev.PlaceID != "p1" || ev.Error != "deadlock" {
		t.Fatalf("unexpected event payload: %+v", ev)
	}
}
