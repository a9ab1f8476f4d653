package events

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nightlife-navigator/pkg/database"
)

const defaultListLimit = 50

// SQLEventStore stores events in the venue_sync_events table, created by the
// migrate command:
//
//	id       BIGINT AUTO_INCREMENT / BIGSERIAL PRIMARY KEY
//	run_id   VARCHAR(36)
//	venue_id VARCHAR(64)
//	type     VARCHAR(64)
//	at       DATETIME(6) / TIMESTAMPTZ
//	data     JSON / JSONB
type SQLEventStore struct {
	db *database.DB
}

func NewSQLEventStore(db *database.DB) *SQLEventStore {
	return &SQLEventStore{db: db}
}

func (s *SQLEventStore) Append(ctx context.Context, ev ...Event) error {
	if len(ev) == 0 {
		return nil
	}
	ctx, cancel := s.db.WithWriteTimeout(ctx)
	defer cancel()

	tx, err := s.db.Conn().BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.db.Rebind(`INSERT INTO venue_sync_events (run_id, venue_id, type, at, data) VALUES (?,?,?,?,?)`))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range ev {
		b, err := e.MarshalData()
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		at := e.Timestamp()
		if at.IsZero() {
			at = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx, e.RunID(), e.VenueID(), e.Type(), at, string(b)); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ListByVenue returns the latest events of a venue, oldest first.
func (s *SQLEventStore) ListByVenue(ctx context.Context, venueID string, limit int) ([]StoredEvent, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	ctx, cancel := s.db.WithReadTimeout(ctx)
	defer cancel()

	rows, err := s.db.Conn().QueryContext(ctx,
		s.db.Rebind(`SELECT id, run_id, venue_id, type, at, data FROM venue_sync_events WHERE venue_id = ? ORDER BY id DESC LIMIT ?`),
		venueID, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	out := make([]StoredEvent, 0)
	for rows.Next() {
		var se StoredEvent
		var data []byte
		if err := rows.Scan(&se.Seq, &se.RunID, &se.VenueID, &se.Type, &se.Ts, &data); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		se.Payload = append([]byte(nil), data...)
		out = append(out, se)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Replay lists a venue's events and folds them into a SyncState.
func (s *SQLEventStore) Replay(ctx context.Context, venueID string) (*SyncState, error) {
	events, err := s.ListByVenue(ctx, venueID, 0)
	if err != nil {
		return nil, err
	}
	return Replay(events), nil
}
