// Package venuesync enriches stored venues with Google Places metadata.
package venuesync

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"nightlife-navigator/internal/constants"
	"nightlife-navigator/internal/models"
	"nightlife-navigator/pkg/logging"
	"nightlife-navigator/pkg/metrics"

	"github.com/google/uuid"
)

// VenueStore is the directory being enriched.
type VenueStore interface {
	ListVenues(ctx context.Context) ([]models.Venue, error)
	UpdateVenue(ctx context.Context, venueID string, fields models.EnrichmentFields) error
}

// PlacesLookup searches the places provider.
type PlacesLookup interface {
	SearchText(ctx context.Context, query string) ([]models.PlaceCandidate, error)
	FetchDetails(ctx context.Context, placeID string) (*models.PlaceDetails, error)
}

// Recorder receives every outcome after it is decided.
type Recorder interface {
	RecordOutcome(ctx context.Context, runID string, o Outcome) error
}

// ErrRunInProgress is returned when Run is called while another run is active.
var ErrRunInProgress = errors.New("venue sync already running")

type Config struct {
	// RegionHint is appended to every venue name to build the search query.
	RegionHint string
}

func DefaultConfig() Config {
	return Config{RegionHint: constants.RegionHintDefault}
}

type Orchestrator struct {
	store    VenueStore
	lookup   PlacesLookup
	recorder Recorder
	cfg      Config
	log      *logging.ComponentLogger
	running  atomic.Bool

	mOutcomes *metrics.CounterVec
	mRuns     *metrics.Counter
	mDuration *metrics.Histogram
	mRunning  *metrics.Gauge
}

func New(store VenueStore, lookup PlacesLookup, cfg Config, log *logging.Logger) *Orchestrator {
	return &Orchestrator{
		store:     store,
		lookup:    lookup,
		cfg:       cfg,
		log:       log.WithComponent("venuesync"),
		mOutcomes: metrics.Default.CounterVec("venuesync_outcomes_total", "Venue sync outcomes by status", "status"),
		mRuns:     metrics.Default.Counter("venuesync_runs_total", "Completed venue sync runs"),
		mDuration: metrics.Default.Histogram("venuesync_run_duration_seconds", "Duration of venue sync runs", []float64{1, 5, 15, 30, 60, 120, 300, 600}),
		mRunning:  metrics.Default.Gauge("venuesync_running", "1 while a venue sync run is in progress"),
	}
}

// SetRecorder attaches an outcome recorder. Recorder failures are logged and
// never change an outcome.
func (o *Orchestrator) SetRecorder(r Recorder) { o.recorder = r }

// Running reports whether a run is in progress.
func (o *Orchestrator) Running() bool { return o.running.Load() }

// Run processes every venue once, in list order, one at a time. The only
// error that aborts a run is a failure to list venues, in which case no
// lookups or writes happen and the report is nil.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer o.running.Store(false)
	o.mRunning.Set(1)
	defer o.mRunning.Set(0)

	report := &Report{RunID: uuid.NewString(), StartedAt: time.Now().UTC(), Outcomes: []Outcome{}}

	venues, err := o.store.ListVenues(ctx)
	if err != nil {
		o.log.Error("failed to list venues", err, logging.String("run_id", report.RunID))
		return nil, err
	}
	o.log.Info("sync started", logging.String("run_id", report.RunID), logging.Int("venues", len(venues)), logging.String("region_hint", o.cfg.RegionHint))

	for _, v := range venues {
		out := o.syncVenue(ctx, v)
		report.add(out)
		o.mOutcomes.With(string(out.Status)).Inc(1)
		o.record(ctx, report.RunID, out)
	}

	report.FinishedAt = time.Now().UTC()
	o.mRuns.Inc(1)
	o.mDuration.Observe(report.Duration().Seconds())
	o.log.Info("sync finished",
		logging.String("run_id", report.RunID),
		logging.Int("total", report.Total()),
		logging.Int("updated", report.Updated),
		logging.Int("skipped", report.Skipped),
		logging.Int("errored", report.Errored),
		logging.Duration("duration", report.Duration()),
	)
	return report, nil
}

// syncVenue runs search, first match, details, projection and write for one
// venue. It stops at the first step that does not succeed.
func (o *Orchestrator) syncVenue(ctx context.Context, v models.Venue) Outcome {
	out := Outcome{VenueID: v.ID, VenueName: v.Name}
	query := o.Query(v)
	o.log.Info("searching", logging.String("venue_id", v.ID), logging.String("query", query))

	candidates, err := o.lookup.SearchText(ctx, query)
	if err != nil {
		o.log.Error("search failed", err, logging.String("venue_id", v.ID))
		return errored(out, ReasonLookupUnavailable, err)
	}
	if len(candidates) == 0 {
		o.log.Info("no match found", logging.String("venue_id", v.ID), logging.String("name", v.Name))
		out.Status, out.Reason = StatusSkipped, ReasonNoMatch
		return out
	}

	out.PlaceID = candidates[0].PlaceID
	o.log.Info("match found",
		logging.String("venue_id", v.ID),
		logging.String("place_id", out.PlaceID),
		logging.String("match_name", candidates[0].Name),
		logging.String("match_address", candidates[0].FormattedAddress),
	)

	details, err := o.lookup.FetchDetails(ctx, out.PlaceID)
	if err != nil {
		o.log.Error("details failed", err, logging.String("venue_id", v.ID), logging.String("place_id", out.PlaceID))
		return errored(out, ReasonLookupUnavailable, err)
	}
	if details == nil {
		o.log.Info("details absent", logging.String("venue_id", v.ID), logging.String("place_id", out.PlaceID))
		out.Status, out.Reason = StatusSkipped, ReasonDetailsAbsent
		return out
	}

	fields := models.EnrichmentFromDetails(details)
	if err := o.store.UpdateVenue(ctx, v.ID, fields); err != nil {
		o.log.Error("update failed", err, logging.String("venue_id", v.ID))
		return errored(out, ReasonStoreWrite, err)
	}
	if fields.ExternalPlaceID != nil {
		out.PlaceID = *fields.ExternalPlaceID
	}
	o.log.Info("updated", logging.String("venue_id", v.ID), logging.String("name", v.Name))
	out.Status = StatusUpdated
	return out
}

// Query is the text search query for a venue.
func (o *Orchestrator) Query(v models.Venue) string {
	return strings.TrimSpace(strings.TrimSpace(v.Name) + " " + strings.TrimSpace(o.cfg.RegionHint))
}

func (o *Orchestrator) record(ctx context.Context, runID string, out Outcome) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.RecordOutcome(ctx, runID, out); err != nil {
		o.log.Warn("failed to record outcome", logging.String("run_id", runID), logging.String("venue_id", out.VenueID), logging.String("error", err.Error()))
	}
}

func errored(out Outcome, reason Reason, err error) Outcome {
	out.Status, out.Reason, out.Err = StatusErrored, reason, err
	return out
}
