package venuesync

import "time"

// Status is the terminal result of processing one venue.
type Status string

const (
	StatusUpdated Status = "updated"
	StatusSkipped Status = "skipped"
	StatusErrored Status = "errored"
)

// Reason explains a skipped or errored outcome.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonNoMatch           Reason = "no_match"
	ReasonDetailsAbsent     Reason = "details_absent"
	ReasonLookupUnavailable Reason = "lookup_unavailable"
	ReasonStoreWrite        Reason = "store_write"
)

// Outcome is the per-venue result of a run.
type Outcome struct {
	VenueID   string `json:"venue_id"`
	VenueName string `json:"venue_name"`
	Status    Status `json:"status"`
	Reason    Reason `json:"reason,omitempty"`
	PlaceID   string `json:"place_id,omitempty"`
	Err       error  `json:"-"`
	Error     string `json:"error,omitempty"`
}

// Report aggregates the outcomes of one run in list order.
type Report struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcomes   []Outcome `json:"outcomes"`
	Updated    int       `json:"updated"`
	Skipped    int       `json:"skipped"`
	Errored    int       `json:"errored"`
}

func (r *Report) add(o Outcome) {
	if o.Err != nil {
		o.Error = o.Err.Error()
	}
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusUpdated:
		r.Updated++
	case StatusSkipped:
		r.Skipped++
	case StatusErrored:
		r.Errored++
	}
}

// Total is the number of venues processed.
func (r *Report) Total() int { return len(r.Outcomes) }

// Duration of the run.
func (r *Report) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }
