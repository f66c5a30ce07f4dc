package client

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/octobees/leadform/internal/dto"
)

// Submitter sends a lead form to the API.
type Submitter interface {
	Submit(ctx context.Context, req dto.SubmissionRequest) error
}

// API is the part of APIClient a Session needs.
type API interface {
	Submitter
	Fetcher
}

// Session runs the submit then poll flow for one user. At most one poll is
// outstanding: a new submission cancels the previous one.
type Session struct {
	api  API
	opts []PollOption

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewSession builds a session whose polls use opts.
func NewSession(api API, opts ...PollOption) *Session {
	return &Session{api: api, opts: opts}
}

// Submit relays req and, once acknowledged, polls for the company record.
// A failed relay returns StateIdle without polling.
func (s *Session) Submit(ctx context.Context, req dto.SubmissionRequest) (Outcome, error) {
	ctx, gen := s.begin(ctx)
	defer s.end(gen)

	if err := s.api.Submit(ctx, req); err != nil {
		return Outcome{State: StateIdle}, eris.Wrap(err, "submit lead")
	}
	return NewPoller(s.api, s.opts...).Poll(ctx, req.CompanyName)
}

// Clear abandons the outstanding poll, if any.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) begin(parent context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.gen++
	s.cancel = cancel
	return ctx, s.gen
}

func (s *Session) end(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen == gen && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
