package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/octobees/leadform/internal/entity"
)

// Poll defaults: 15 lookups spaced 2s apart.
const (
	DefaultMaxAttempts  = 15
	DefaultPollInterval = 2 * time.Second
)

var (
	// ErrTimeout is returned when the record did not appear within the attempt budget.
	ErrTimeout = errors.New("company data not found after timeout; check that the enrichment workflow is active and writing data")
	// ErrCancelled is returned when the caller abandoned the poll.
	ErrCancelled = errors.New("company lookup cancelled")
)

// State is a step of a poll run.
type State int

const (
	StateIdle State = iota
	StatePolling
	StateFound
	StateTimedOut
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateFound:
		return "found"
	case StateTimedOut:
		return "timed_out"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result classifies a single lookup attempt.
type Result int

const (
	ResultFound Result = iota
	ResultNotFound
	ResultTransient
	ResultFatal
)

// Classify maps a lookup error to the poller's retry decision.
// Missing records and temporary failures are retried; anything the API rejected outright is fatal.
func Classify(err error) Result {
	if err == nil {
		return ResultFound
	}
	if errors.Is(err, ErrNotFound) {
		return ResultNotFound
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Temporary() {
			return ResultTransient
		}
		return ResultFatal
	}
	return ResultTransient
}

// Fetcher looks up a company record by name.
type Fetcher interface {
	GetCompany(ctx context.Context, name string) (entity.CompanyRecord, error)
}

// Outcome is the final state of a poll run.
type Outcome struct {
	State    State
	Record   entity.CompanyRecord
	Attempts int
}

// PollOption configures polling behavior.
type PollOption func(*Poller)

// WithMaxAttempts overrides the number of lookups before giving up.
func WithMaxAttempts(n int) PollOption {
	return func(p *Poller) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithPollInterval overrides the fixed wait between lookups.
func WithPollInterval(d time.Duration) PollOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithStateHook registers a callback invoked on every state change.
func WithStateHook(fn func(State)) PollOption {
	return func(p *Poller) {
		p.onState = fn
	}
}

// Poller repeatedly looks up a company until the enrichment workflow has written it.
// It keeps no state between runs.
type Poller struct {
	fetcher     Fetcher
	maxAttempts int
	interval    time.Duration
	onState     func(State)
	after       func(time.Duration) <-chan time.Time
}

// NewPoller builds a poller with 15 attempts spaced 2s apart unless overridden.
func NewPoller(fetcher Fetcher, opts ...PollOption) *Poller {
	p := &Poller{
		fetcher:     fetcher,
		maxAttempts: DefaultMaxAttempts,
		interval:    DefaultPollInterval,
		after:       time.After,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll looks up name until it is found, the attempt budget runs out, a fatal error
// occurs or ctx is cancelled. There is no wait after the last attempt.
func (p *Poller) Poll(ctx context.Context, name string) (Outcome, error) {
	p.transition(StatePolling)

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return p.cancelled(ctx, attempt-1)
		}

		record, err := p.fetcher.GetCompany(ctx, name)
		switch Classify(err) {
		case ResultFound:
			p.transition(StateFound)
			return Outcome{State: StateFound, Record: record, Attempts: attempt}, nil
		case ResultFatal:
			p.transition(StateFailed)
			return Outcome{State: StateFailed, Attempts: attempt}, eris.Wrapf(err, "poll company %q", name)
		}
		if ctx.Err() != nil {
			return p.cancelled(ctx, attempt)
		}

		if attempt == p.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return p.cancelled(ctx, attempt)
		case <-p.after(p.interval):
		}
	}

	p.transition(StateTimedOut)
	return Outcome{State: StateTimedOut, Attempts: p.maxAttempts}, ErrTimeout
}

func (p *Poller) cancelled(ctx context.Context, attempts int) (Outcome, error) {
	p.transition(StateCancelled)
	return Outcome{State: StateCancelled, Attempts: attempts}, fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
}

func (p *Poller) transition(s State) {
	if p.onState != nil {
		p.onState(s)
	}
}
