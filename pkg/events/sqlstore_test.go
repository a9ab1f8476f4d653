package events

import (
	"context"
	"testing"
	"time"

	"nightlife-navigator/pkg/database"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockEventStore(t *testing.T) (*SQLEventStore, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewSQLEventStore(database.NewFromConn(conn, database.DriverMySQL, time.Second, time.Second)), mock
}

func TestAppend_InsertsInOneTransaction(t *testing.T) {
	s, mock := newMockEventStore(t)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO venue_sync_events`)
	prep.ExpectExec().WithArgs("run-1", "v1", TypeSyncUpdated, at, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("run-1", "v2", TypeSyncSkipped, at, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := s.Append(context.Background(),
		VenueSyncOutcome{Base: Base{Ts: at, VID: "v1", Run: "run-1"}, Status: "updated", PlaceID: "p1"},
		VenueSyncOutcome{Base: Base{Ts: at, VID: "v2", Run: "run-1"}, Status: "skipped", Reason: "no_match"},
	)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAppend_NoEventsIsNoop(t *testing.T) {
	s, mock := newMockEventStore(t)
	if err := s.Append(context.Background()); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no statements expected: %v", err)
	}
}

func TestListByVenue_OldestFirstAndReplay(t *testing.T) {
	s, mock := newMockEventStore(t)
	t1 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	rows := sqlmock.NewRows([]string{"id", "run_id", "venue_id", "type", "at", "data"}).
		AddRow(int64(7), "run-2", "v1", TypeSyncErrored, t2, []byte(`{"status":"errored","reason":"lookup_unavailable","place_id":"p1"}`)).
		AddRow(int64(3), "run-1", "v1", TypeSyncUpdated, t1, []byte(`{"status":"updated","place_id":"p1"}`))
	mock.ExpectQuery(`SELECT id, run_id, venue_id, type, at, data FROM venue_sync_events WHERE venue_id = \? ORDER BY id DESC LIMIT \?`).
		WithArgs("v1", defaultListLimit).WillReturnRows(rows)

	st, err := s.Replay(context.Background(), "v1")
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if st.Runs != 2 || st.LastStatus != "errored" || st.LastReason != "lookup_unavailable" || st.LastPlaceID != "p1" {
		t.Fatalf("unexpected state: %+v", st)
	}
	if st.LastUpdated == nil || !st.LastUpdated.Equal(t1) || !st.LastSynced.Equal(t2) {
		t.Fatalf("unexpected timestamps: %+v", st)
	}
}

func TestVenueSyncOutcome_Type(t *testing.T) {
	cases := map[string]string{"updated": TypeSyncUpdated, "skipped": TypeSyncSkipped, "errored": TypeSyncErrored}
	for status, want := range cases {
		if got := (VenueSyncOutcome{Status: status}).Type(); got != want {
			t.Errorf("Type(%s)=%s want %s", status, got, want)
		}
	}
}
