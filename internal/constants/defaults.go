package constants

import "time"

// Centralized default values for timeouts, intervals, and related settings.
// These provide sane defaults; environment/config may override where supported.

const (
	// Database
	DBReadTimeoutDefault  = 8 * time.Second
	DBWriteTimeoutDefault = 6 * time.Second

	// Google Places
	PlacesRequestTimeout    = 12 * time.Second
	PlacesOperationTimeout  = 10 * time.Second
	PlacesOpenFor           = 30 * time.Second
	PlacesMaxConsecFailures = 5
	PlacesRPSDefault        = 10

	// Sync
	RegionHintDefault = "Davis, CA"
	PlaceTypeDefault  = "bar"

	// Health
	HealthTimeoutDefault = 5 * time.Second

	// App shutdown
	GracefulShutdownTimeoutDefault = 10 * time.Second
)

// PlaceDetailsFields is the field mask requested from Place Details.
var PlaceDetailsFields = []string{
	"name",
	"place_id",
	"rating",
	"user_ratings_total",
	"opening_hours",
	"formatted_address",
	"geometry",
	"price_level",
}
