package cmd

import (
	"context"
	"time"

	"nightlife-navigator/internal/places"
	"nightlife-navigator/internal/store"
	"nightlife-navigator/internal/venuesync"
	"nightlife-navigator/pkg/config"
	"nightlife-navigator/pkg/database"
	"nightlife-navigator/pkg/events"
	"nightlife-navigator/pkg/logging"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// connectStore opens the venue store, retrying transient failures. The
// caller decides whether a missing store is fatal.
func connectStore(ctx context.Context, cfg *config.Config, log *logging.Logger, attempts int) (*database.DB, error) {
	var db *database.DB
	err := withRetry(ctx, log, "database connection", attempts, connectBackoff, func() error {
		d, err := database.Open(ctx, cfg.Store())
		if err != nil {
			return err
		}
		db = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("database connection established", logging.String("dialect", db.Dialect()))
	return db, nil
}

// newOrchestrator wires the sync over a live store and places client.
// Outcomes are recorded to the event log unless record is false.
func newOrchestrator(cfg *config.Config, db *database.DB, pc *places.Client, log *logging.Logger, record bool) *venuesync.Orchestrator {
	orch := venuesync.New(store.NewVenueStore(db), pc, venuesync.Config{RegionHint: cfg.RegionHint}, log)
	if record {
		orch.SetRecorder(venuesync.NewEventRecorder(events.NewSQLEventStore(db)))
	}
	return orch
}
