// Package store reads and enriches rows of the bars table.
package store

import (
	"context"
	"database/sql"

	"nightlife-navigator/internal/models"
	"nightlife-navigator/pkg/database"
	errs "nightlife-navigator/pkg/errors"
)

const (
	listVenuesQuery = `SELECT id, name, address
        FROM bars
        ORDER BY created_at ASC, id ASC`

	updateVenueQuery = `UPDATE bars SET
        place_id = ?,
        google_rating = ?,
        google_user_ratings_total = ?,
        price_level = ?,
        updated_at = CURRENT_TIMESTAMP
        WHERE id = ?`

	getVenueQuery = `SELECT id, name, address, place_id, google_rating,
        google_user_ratings_total, price_level, created_at, updated_at
        FROM bars
        WHERE id = ?`
)

// VenueStore is the venue directory backed by a SQL database.
type VenueStore struct {
	db *database.DB
}

func NewVenueStore(db *database.DB) *VenueStore {
	return &VenueStore{db: db}
}

// ListVenues returns every venue in the store's natural order. Any failure
// is a store unavailable error.
func (s *VenueStore) ListVenues(ctx context.Context) ([]models.Venue, error) {
	ctx, cancel := s.db.WithReadTimeout(ctx)
	defer cancel()

	rows, err := s.db.Conn().QueryContext(ctx, s.db.Rebind(listVenuesQuery))
	if err != nil {
		return nil, errs.NewStoreUnavailable("store.ListVenues", "failed to query venues", err)
	}
	defer rows.Close()

	venues := make([]models.Venue, 0)
	for rows.Next() {
		var v models.Venue
		var address sql.NullString
		if err := rows.Scan(&v.ID, &v.Name, &address); err != nil {
			return nil, errs.NewStoreUnavailable("store.ListVenues", "failed to scan venue row", err)
		}
		v.Address = address.String
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewStoreUnavailable("store.ListVenues", "row iteration error", err)
	}
	return venues, nil
}

// UpdateVenue writes all four enrichment columns in one statement. Nil
// fields become NULL. Rows affected is not checked: MySQL reports 0 for an
// update that changes nothing.
func (s *VenueStore) UpdateVenue(ctx context.Context, venueID string, f models.EnrichmentFields) error {
	ctx, cancel := s.db.WithWriteTimeout(ctx)
	defer cancel()

	_, err := s.db.Conn().ExecContext(ctx, s.db.Rebind(updateVenueQuery),
		nullString(f.ExternalPlaceID),
		nullFloat(f.Rating),
		nullInt(f.RatingCount),
		nullInt(f.PriceLevel),
		venueID,
	)
	if err != nil {
		return errs.NewStoreWrite("store.UpdateVenue", venueID, "failed to update enrichment fields", err)
	}
	return nil
}

// GetVenue loads one venue with its enrichment columns. It returns (nil, nil)
// when the id is unknown.
func (s *VenueStore) GetVenue(ctx context.Context, venueID string) (*models.Venue, error) {
	ctx, cancel := s.db.WithReadTimeout(ctx)
	defer cancel()

	var (
		v           models.Venue
		address     sql.NullString
		placeID     sql.NullString
		rating      sql.NullFloat64
		ratingCount sql.NullInt64
		priceLevel  sql.NullInt64
		createdAt   sql.NullTime
		updatedAt   sql.NullTime
	)
	err := s.db.Conn().QueryRowContext(ctx, s.db.Rebind(getVenueQuery), venueID).Scan(
		&v.ID, &v.Name, &address, &placeID, &rating, &ratingCount, &priceLevel, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewStoreUnavailable("store.GetVenue", "failed to load venue", err)
	}

	v.Address = address.String
	if placeID.Valid {
		v.ExternalPlaceID = &placeID.String
	}
	if rating.Valid {
		v.Rating = &rating.Float64
	}
	if ratingCount.Valid {
		n := int(ratingCount.Int64)
		v.RatingCount = &n
	}
	if priceLevel.Valid {
		n := int(priceLevel.Int64)
		v.PriceLevel = &n
	}
	if createdAt.Valid {
		v.CreatedAt = &createdAt.Time
	}
	if updatedAt.Valid {
		v.UpdatedAt = &updatedAt.Time
	}
	return &v, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
