package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event is the base interface for venue sync audit events.
// Keep payloads small, use JSON-friendly fields.
type Event interface {
	Type() string
	VenueID() string
	RunID() string
	Timestamp() time.Time
	MarshalData() ([]byte, error)
}

// Base contains common event metadata.
type Base struct {
	Ts  time.Time `json:"ts"`
	VID string    `json:"venue_id"`
	Run string    `json:"run_id"`
}

func (b Base) Timestamp() time.Time { return b.Ts }
func (b Base) VenueID() string      { return b.VID }
func (b Base) RunID() string        { return b.Run }

const (
	TypeSyncUpdated = "venue.sync.updated"
	TypeSyncSkipped = "venue.sync.skipped"
	TypeSyncErrored = "venue.sync.errored"
)

// VenueSyncOutcome records how one venue fared in one sync run.
type VenueSyncOutcome struct {
	Base
	Status  string `json:"status"` // updated|skipped|errored
	Reason  string `json:"reason,omitempty"`
	PlaceID string `json:"place_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (e VenueSyncOutcome) Type() string {
	switch e.Status {
	case "updated":
		return TypeSyncUpdated
	case "skipped":
		return TypeSyncSkipped
	default:
		return TypeSyncErrored
	}
}

func (e VenueSyncOutcome) MarshalData() ([]byte, error) { return json.Marshal(e) }

// Store defines persistence and replay.
// Implementations must guarantee ordering per venue.
type Store interface {
	Append(ctx context.Context, ev ...Event) error
	ListByVenue(ctx context.Context, venueID string, limit int) ([]StoredEvent, error)
}

// StoredEvent is a durable representation.
// Seq is a monotonic order within the DB (BIGINT AUTO_INCREMENT/BIGSERIAL).
type StoredEvent struct {
	Seq     int64           `json:"seq"`
	RunID   string          `json:"run_id"`
	VenueID string          `json:"venue_id"`
	Type    string          `json:"type"`
	Ts      time.Time       `json:"ts"`
	Payload json.RawMessage `json:"payload"`
}

// SyncState is the sync history of one venue folded into its latest facts.
type SyncState struct {
	VenueID     string     `json:"venue_id"`
	Runs        int        `json:"runs"`
	LastStatus  string     `json:"last_status"`
	LastReason  string     `json:"last_reason,omitempty"`
	LastPlaceID string     `json:"last_place_id,omitempty"`
	LastSynced  time.Time  `json:"last_synced"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// Replay applies events in order and rebuilds state.
func Replay(events []StoredEvent) *SyncState {
	st := &SyncState{}
	for _, se := range events {
		var ev VenueSyncOutcome
		if err := json.Unmarshal(se.Payload, &ev); err != nil {
			continue
		}
		st.VenueID = se.VenueID
		st.Runs++
		st.LastStatus = ev.Status
		st.LastReason = ev.Reason
		st.LastSynced = se.Ts
		if ev.PlaceID != "" {
			st.LastPlaceID = ev.PlaceID
		}
		if se.Type == TypeSyncUpdated {
			ts := se.Ts
			st.LastUpdated = &ts
		}
	}
	return st
}
