// Package places looks venues up in Google Places.
package places

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"nightlife-navigator/internal/constants"
	"nightlife-navigator/pkg/circuit"
	"nightlife-navigator/pkg/config"
	errs "nightlife-navigator/pkg/errors"
	"nightlife-navigator/pkg/logging"

	"golang.org/x/time/rate"
	"googlemaps.github.io/maps"
)

const (
	system         = "google"
	defaultBaseURL = "https://maps.googleapis.com"
)

// Client wraps the Places Text Search and Place Details endpoints with a
// client-side rate limit and a circuit breaker. A Client built without an
// API key is disabled and every call fails with a lookup unavailable error.
type Client struct {
	maps      *maps.Client
	http      *http.Client
	apiKey    string
	baseURL   string
	placeType maps.PlaceType

	limiter *rate.Limiter
	breaker *circuit.Breaker
	log     *logging.ComponentLogger
	enabled bool
}

// New builds a client from config. A missing API key is not an error: the
// returned client reports Enabled() == false.
func New(cfg config.PlacesConfig, log *logging.Logger) (*Client, error) {
	c := &Client{log: log.WithComponent("places")}
	if !cfg.Enabled() {
		c.log.Warn("GOOGLE_MAPS_API_KEY not set; places lookups disabled")
		return c, nil
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.PlacesRequestTimeout
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = constants.PlacesRPSDefault
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := &http.Client{Timeout: timeout}
	opts := []maps.ClientOption{
		maps.WithAPIKey(cfg.APIKey),
		maps.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(baseURL))
	}
	mc, err := maps.NewClient(opts...)
	if err != nil {
		return nil, errs.NewValidation("places.New", "failed to create maps client", err)
	}

	placeType := maps.PlaceTypeBar
	if cfg.PlaceType != "" {
		pt, err := maps.ParsePlaceType(cfg.PlaceType)
		if err != nil {
			return nil, errs.NewValidation("places.New", "unknown place type "+cfg.PlaceType, err)
		}
		placeType = pt
	}

	c.maps = mc
	c.http = httpClient
	c.apiKey = cfg.APIKey
	c.baseURL = baseURL
	c.placeType = placeType
	c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	c.breaker = circuit.New(circuit.Config{
		Name:              "places",
		OperationTimeout:  constants.PlacesOperationTimeout,
		OpenFor:           constants.PlacesOpenFor,
		MaxConsecFailures: constants.PlacesMaxConsecFailures,
	}, log)
	c.enabled = true
	return c, nil
}

// Enabled reports whether an API key was configured.
func (c *Client) Enabled() bool { return c != nil && c.enabled }

// BreakerState exposes the circuit state for health reporting.
func (c *Client) BreakerState() circuit.State {
	if !c.Enabled() {
		return circuit.Open
	}
	return c.breaker.State()
}

// call applies the rate limit and the breaker around op and maps every
// failure to a lookup unavailable error.
func (c *Client) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if !c.Enabled() {
		return errs.NewLookupUnavailable(op, system, "places lookup disabled: GOOGLE_MAPS_API_KEY not set", nil)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return errs.NewLookupUnavailable(op, system, "rate limiter wait aborted", err)
	}

	start := time.Now()
	err := c.breaker.Do(ctx, fn)
	if err == nil {
		return nil
	}
	if errors.Is(err, circuit.ErrOpen) {
		return errs.NewLookupUnavailable(op, system, "circuit open", err)
	}
	c.log.Warn("places request failed", logging.String("op", op), logging.Duration("elapsed", time.Since(start)), logging.String("error", err.Error()))
	return errs.NewLookupUnavailable(op, system, "request failed", err)
}
