package circuit

import (
	"context"
	"errors"
	"sync"
	"time"

	"nightlife-navigator/pkg/logging"
	"nightlife-navigator/pkg/metrics"
)

// State represents the circuit breaker state
// Closed: normal operation; HalfOpen: one probe allowed; Open: fail fast
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// Config tunes a circuit breaker instance.
type Config struct {
	Name string

	OperationTimeout  time.Duration // per-call timeout, 0 = none
	OpenFor           time.Duration // how long to stay open before probing
	MaxConsecFailures int           // consecutive failures to open, 0 = disabled
	WindowSize        int           // sliding window of recent calls
	FailureRate       float64       // 0..1 fraction in a full window to open, 0 = disabled
}

// ErrOpen indicates the breaker is open and calls are short-circuited.
var ErrOpen = errors.New("circuit open")

type Breaker struct {
	cfg Config
	now func() time.Time

	mu         sync.Mutex
	st         State
	nextProbe  time.Time
	probing    bool
	consecFail int

	win  []bool // true = failure
	idx  int
	used int

	log *logging.ComponentLogger

	mState   *metrics.Gauge
	mOpens   *metrics.Counter
	mCalls   *metrics.CounterVec
	mLatency *metrics.Histogram
}

func New(cfg Config, log *logging.Logger) *Breaker {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 20
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	prefix := "circuit_" + cfg.Name
	return &Breaker{
		cfg:      cfg,
		now:      time.Now,
		st:       Closed,
		win:      make([]bool, cfg.WindowSize),
		log:      log.WithComponent("circuit"),
		mState:   metrics.Default.Gauge(prefix+"_state", "Circuit breaker state (0=closed,1=open,2=half-open)"),
		mOpens:   metrics.Default.Counter(prefix+"_opens_total", "Circuit opened events"),
		mCalls:   metrics.Default.CounterVec(prefix+"_calls_total", "Calls through the circuit by result", "result"),
		mLatency: metrics.Default.Histogram(prefix+"_latency_seconds", "Latency of calls through the circuit", []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}),
	}
}

// State returns the current state, moving Open to HalfOpen once the probe
// time has passed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.st == Open && !b.now().Before(b.nextProbe) {
		return HalfOpen
	}
	return b.st
}

func (b *Breaker) setStateLocked(st State) {
	if b.st == st {
		return
	}
	b.st = st
	b.mState.Set(float64(st))
	switch st {
	case Open:
		b.mOpens.Inc(1)
		b.nextProbe = b.now().Add(b.cfg.OpenFor)
	case Closed:
		b.consecFail = 0
		b.used, b.idx = 0, 0
	}
	b.log.Info("breaker state change", logging.String("name", b.cfg.Name), logging.String("state", st.String()))
}

// allow decides whether a call may run.
func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.st {
	case Open:
		if b.now().Before(b.nextProbe) {
			return false
		}
		b.setStateLocked(HalfOpen)
		b.probing = true
		return true
	case HalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	}
	return true
}

func (b *Breaker) record(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.st == HalfOpen {
		b.probing = false
		if failed {
			b.setStateLocked(Open)
		} else {
			b.setStateLocked(Closed)
		}
		return
	}

	b.win[b.idx] = failed
	b.idx = (b.idx + 1) % len(b.win)
	if b.used < len(b.win) {
		b.used++
	}
	if !failed {
		b.consecFail = 0
		return
	}
	b.consecFail++

	if b.cfg.MaxConsecFailures > 0 && b.consecFail >= b.cfg.MaxConsecFailures {
		b.setStateLocked(Open)
		return
	}
	if b.cfg.FailureRate > 0 && b.used == len(b.win) {
		n := 0
		for _, f := range b.win {
			if f {
				n++
			}
		}
		if float64(n)/float64(b.used) >= b.cfg.FailureRate {
			b.setStateLocked(Open)
		}
	}
}

// Do runs op under the breaker. When the circuit is open op is not called
// and ErrOpen is returned. Context cancellation by the caller is not counted
// as a failure.
func (b *Breaker) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if !b.allow() {
		b.mCalls.With("rejected").Inc(1)
		return ErrOpen
	}

	if b.cfg.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.OperationTimeout)
		defer cancel()
	}

	start := time.Now()
	err := op(ctx)
	b.mLatency.ObserveSince(start)

	if err != nil && errors.Is(err, context.Canceled) {
		b.mu.Lock()
		b.probing = false
		b.mu.Unlock()
		b.mCalls.With("canceled").Inc(1)
		return err
	}

	if err != nil {
		b.mCalls.With("failure").Inc(1)
	} else {
		b.mCalls.With("success").Inc(1)
	}
	b.record(err != nil)
	return err
}
