package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"nightlife-navigator/internal/models"
	"nightlife-navigator/internal/venuesync"
	errs "nightlife-navigator/pkg/errors"
	"nightlife-navigator/pkg/events"
	"nightlife-navigator/pkg/health"
	"nightlife-navigator/pkg/logging"

	"github.com/gorilla/mux"
)

const maxHistoryLimit = 500

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":     "Welcome to the Nightlife Navigator Backend",
		"status":      "online",
		"environment": s.deps.Config.Env,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sh := s.deps.Health.CheckAll(r.Context())
	code := http.StatusOK
	if sh.Status == health.HealthStatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, sh)
}

// handleSync runs a sync to completion and returns its report. The run is
// detached from the request context so a dropped client does not cut the
// batch short.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.deps.Syncer == nil {
		writeError(w, http.StatusServiceUnavailable, "sync unavailable: store or places lookup disabled")
		return
	}

	report, err := s.deps.Syncer.Run(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, venuesync.ErrRunInProgress):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errs.IsStoreUnavailable(err):
		s.log.Error("sync aborted", err)
		writeError(w, http.StatusServiceUnavailable, "venue store unavailable")
		return
	case err != nil:
		s.log.Error("sync failed", err)
		writeError(w, http.StatusInternalServerError, "sync failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type historyResponse struct {
	VenueID string               `json:"venue_id"`
	Venue   *models.Venue        `json:"venue,omitempty"`
	State   *events.SyncState    `json:"state"`
	Events  []events.StoredEvent `json:"events"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeError(w, http.StatusServiceUnavailable, "sync history unavailable: store disabled")
		return
	}
	venueID := mux.Vars(r)["venueID"]

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	resp := historyResponse{VenueID: venueID, Events: []events.StoredEvent{}}
	if s.deps.Venues != nil {
		v, err := s.deps.Venues.GetVenue(r.Context(), venueID)
		if err != nil {
			s.log.Error("venue lookup failed", err, logging.String("venue_id", venueID))
			writeError(w, http.StatusServiceUnavailable, "venue store unavailable")
			return
		}
		if v == nil {
			writeError(w, http.StatusNotFound, "venue not found")
			return
		}
		resp.Venue = v
	}

	evs, err := s.deps.History.ListByVenue(r.Context(), venueID, limit)
	if err != nil {
		s.log.Error("history lookup failed", err, logging.String("venue_id", venueID))
		writeError(w, http.StatusServiceUnavailable, "sync history unavailable")
		return
	}
	// A known venue that was never synced has an empty history.
	if len(evs) == 0 && resp.Venue == nil {
		writeError(w, http.StatusNotFound, "no sync history for venue")
		return
	}
	if len(evs) > 0 {
		resp.State = events.Replay(evs)
		resp.Events = evs
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
