package player

import (
	"context"
	"errors"
	"slices"
	"sync"

	"werewolf-toolbox/internal/models"
)

var (
	ErrNoPendingAction = errors.New("no action is pending for a human player")
	ErrInvalidTarget   = errors.New("target is not in the valid target set")
	ErrSeatBusy        = errors.New("a human action is already pending")
	ErrWrongSeat       = errors.New("the pending action belongs to another player")
)

// Seat is the single-slot rendezvous between the engine and the human at the table.
// The engine opens it, the host fills it exactly once, and the engine collects the answer.
type Seat struct {
	mu       sync.Mutex
	pending  chan models.Decision
	valid    []int
	playerID int
}

// NewSeat creates an empty seat.
func NewSeat() *Seat {
	return &Seat{}
}

// Open installs a pending request for playerID. Only one request may be outstanding.
func (s *Seat) Open(playerID int, valid []int) (<-chan models.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		return nil, ErrSeatBusy
	}
	s.pending = make(chan models.Decision, 1)
	s.valid = slices.Clone(valid)
	s.playerID = playerID
	return s.pending, nil
}

// Pending returns the player the seat is waiting on, or 0.
func (s *Seat) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return 0
	}
	return s.playerID
}

// SubmitFor fulfils the pending request on behalf of playerID. A second submit,
// or a submit with nothing pending, returns ErrNoPendingAction. A submit from
// any other seat returns ErrWrongSeat, and an out-of-range action returns
// ErrInvalidTarget; both leave the request pending.
func (s *Seat) SubmitFor(playerID int, d models.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return ErrNoPendingAction
	}
	if playerID != s.playerID {
		return ErrWrongSeat
	}
	if !Allowed(d.Action, s.valid) {
		return ErrInvalidTarget
	}
	d.Thought = ""
	s.pending <- d
	s.pending = nil
	s.valid = nil
	s.playerID = 0
	return nil
}

// Await blocks until the request opened on ch is fulfilled. There is no timeout;
// only ctx cancellation (host shutdown) ends the wait early, in which case the
// request is withdrawn.
func (s *Seat) Await(ctx context.Context, ch <-chan models.Decision) (models.Decision, error) {
	select {
	case d := <-ch:
		return d, nil
	case <-ctx.Done():
		s.mu.Lock()
		if s.pending == ch {
			s.pending = nil
			s.valid = nil
			s.playerID = 0
		}
		s.mu.Unlock()
		return models.Decision{}, ctx.Err()
	}
}
