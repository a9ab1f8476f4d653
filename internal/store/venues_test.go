package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"nightlife-navigator/internal/models"
	"nightlife-navigator/pkg/database"
	errs "nightlife-navigator/pkg/errors"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T, driver string) (*VenueStore, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewVenueStore(database.NewFromConn(conn, driver, time.Second, time.Second)), mock
}

func TestListVenues_NaturalOrder(t *testing.T) {
	s, mock := newMockStore(t, database.DriverMySQL)
	rows := sqlmock.NewRows([]string{"id", "name", "address"}).
		AddRow("b1", "Sudwerk", "2001 2nd St").
		AddRow("b2", "de Vere's Irish Pub", nil)
	mock.ExpectQuery(`SELECT id, name, address\s+FROM bars\s+ORDER BY created_at ASC, id ASC`).WillReturnRows(rows)

	venues, err := s.ListVenues(context.Background())
	if err != nil {
		t.Fatalf("ListVenues: %v", err)
	}
	if len(venues) != 2 || venues[0].ID != "b1" || venues[1].ID != "b2" {
		t.Fatalf("unexpected venues: %+v", venues)
	}
	if venues[1].Address != "" {
		t.Fatalf("NULL address should scan as empty, got %q", venues[1].Address)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListVenues_EmptyTable(t *testing.T) {
	s, mock := newMockStore(t, database.DriverMySQL)
	mock.ExpectQuery(`SELECT id, name, address`).WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address"}))

	venues, err := s.ListVenues(context.Background())
	if err != nil {
		t.Fatalf("ListVenues: %v", err)
	}
	if venues == nil || len(venues) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", venues)
	}
}

func TestListVenues_QueryFailureIsUnavailable(t *testing.T) {
	s, mock := newMockStore(t, database.DriverMySQL)
	mock.ExpectQuery(`SELECT id, name, address`).WillReturnError(errors.New("connection refused"))

	_, err := s.ListVenues(context.Background())
	if !errs.IsStoreUnavailable(err) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
}

func TestListVenues_RowErrorIsUnavailable(t *testing.T) {
	s, mock := newMockStore(t, database.DriverMySQL)
	rows := sqlmock.NewRows([]string{"id", "name", "address"}).
		AddRow("b1", "Sudwerk", "2001 2nd St").
		RowError(0, errors.New("broken pipe"))
	mock.ExpectQuery(`SELECT id, name, address`).WillReturnRows(rows)

	if _, err := s.ListVenues(context.Background()); !errs.IsStoreUnavailable(err) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
}

func TestUpdateVenue_WritesAllFields(t *testing.T) {
	s, mock := newMockStore(t, database.DriverMySQL)
	placeID, rating, total, price := "ChIJ123", 4.4, 210, 2
	mock.ExpectExec(`UPDATE bars SET\s+place_id = \?,\s+google_rating = \?`).
		WithArgs("ChIJ123", 4.4, int64(210), int64(2), "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpdateVenue(context.Background(), "b1", models.EnrichmentFields{
		ExternalPlaceID: &placeID, Rating: &rating, RatingCount: &total, PriceLevel: &price,
	})
	if err != nil {
		t.Fatalf("UpdateVenue: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateVenue_AbsentFieldsWriteNull(t *testing.T) {
	s, mock := newMockStore(t, database.DriverPostgres)
	placeID, rating := "ChIJ9", 3.9
	mock.ExpectExec(`place_id = \$1,\s+google_rating = \$2,\s+google_user_ratings_total = \$3,\s+price_level = \$4,.*WHERE id = \$5`).
		WithArgs("ChIJ9", 3.9, nil, nil, "b9").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpdateVenue(context.Background(), "b9", models.EnrichmentFields{ExternalPlaceID: &placeID, Rating: &rating})
	if err != nil {
		t.Fatalf("UpdateVenue: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateVenue_ZeroRowsIsNotAnError(t *testing.T) {
	s, mock := newMockStore(t, database.DriverMySQL)
	mock.ExpectExec(`UPDATE bars SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.UpdateVenue(context.Background(), "b1", models.EnrichmentFields{}); err != nil {
		t.Fatalf("unchanged row must not fail: %v", err)
	}
}

func TestUpdateVenue_FailureNamesVenue(t *testing.T) {
	s, mock := newMockStore(t, database.DriverMySQL)
	mock.ExpectExec(`UPDATE bars SET`).WillReturnError(errors.New("constraint violation"))

	err := s.UpdateVenue(context.Background(), "b7", models.EnrichmentFields{})
	if !errs.IsStoreWrite(err) {
		t.Fatalf("expected store write error, got %v", err)
	}
	var dbErr *errs.DBError
	if !errors.As(err, &dbErr) || dbErr.VenueID != "b7" {
		t.Fatalf("expected venue id b7 on error, got %v", err)
	}
}

func TestGetVenue(t *testing.T) {
	s, mock := newMockStore(t, database.DriverMySQL)
	now := time.Now()
	cols := []string{"id", "name", "address", "place_id", "google_rating", "google_user_ratings_total", "price_level", "created_at", "updated_at"}
	mock.ExpectQuery(`FROM bars\s+WHERE id = \?`).WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("b1", "Sudwerk", "2001 2nd St", "ChIJ123", 4.4, 210, nil, now, now))

	v, err := s.GetVenue(context.Background(), "b1")
	if err != nil {
		t.Fatalf("GetVenue: %v", err)
	}
	if v == nil || *v.ExternalPlaceID != "ChIJ123" || *v.Rating != 4.4 || *v.RatingCount != 210 {
		t.Fatalf("unexpected venue: %+v", v)
	}
	if v.PriceLevel != nil {
		t.Fatalf("NULL price level should stay nil")
	}

	mock.ExpectQuery(`FROM bars\s+WHERE id = \?`).WithArgs("nope").WillReturnRows(sqlmock.NewRows(cols))
	if v, err := s.GetVenue(context.Background(), "nope"); err != nil || v != nil {
		t.Fatalf("unknown id should be (nil, nil), got %v, %v", v, err)
	}
}
