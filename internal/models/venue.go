package models

import "time"

// Venue is a row of the bars table. The enrichment columns are nullable and
// only populated after a successful sync.
type Venue struct {
	ID              string     `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	Address         string     `json:"address" db:"address"`
	ExternalPlaceID *string    `json:"place_id,omitempty" db:"place_id"`
	Rating          *float64   `json:"google_rating,omitempty" db:"google_rating"`
	RatingCount     *int       `json:"google_user_ratings_total,omitempty" db:"google_user_ratings_total"`
	PriceLevel      *int       `json:"price_level,omitempty" db:"price_level"`
	CreatedAt       *time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// EnrichmentFields is the set of columns a sync writes for one venue.
// A nil field means the provider did not return it and is stored as NULL.
type EnrichmentFields struct {
	ExternalPlaceID *string  `json:"place_id"`
	Rating          *float64 `json:"google_rating"`
	RatingCount     *int     `json:"google_user_ratings_total"`
	PriceLevel      *int     `json:"price_level"`
}

// EnrichmentFromDetails projects provider details onto the stored columns
// verbatim. Rating stays on the provider's 1.0-5.0 scale, price level 0-4.
func EnrichmentFromDetails(d *PlaceDetails) EnrichmentFields {
	if d == nil {
		return EnrichmentFields{}
	}
	var placeID *string
	if d.PlaceID != "" {
		id := d.PlaceID
		placeID = &id
	}
	return EnrichmentFields{
		ExternalPlaceID: placeID,
		Rating:          d.Rating,
		RatingCount:     d.UserRatingsTotal,
		PriceLevel:      d.PriceLevel,
	}
}
