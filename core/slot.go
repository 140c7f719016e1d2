package orchestration

import (
	"errors"
	"sync"
)

var ErrExchangeActive = errors.New("a debate is already in progress")

// Slot holds the single active exchange of a process. Every exchange keeps
// its own Cancellation, the slot only arbitrates which one is active.
type Slot struct {
	mu     sync.Mutex
	active *Exchange
}

// Acquire makes exchange the active one. It fails with ErrExchangeActive
// while another exchange holds the slot.
func (s *Slot) Acquire(exchange *Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil && s.active != exchange {
		return ErrExchangeActive
	}
	s.active = exchange
	return nil
}

// Release frees the slot if exchange still holds it.
func (s *Slot) Release(exchange *Exchange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == exchange {
		s.active = nil
	}
}

func (s *Slot) Active() *Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Stop requests cancellation of the active exchange. It reports false when
// there is none, when it has already finished, or when its cancellation was
// already requested.
func (s *Slot) Stop() bool {
	active := s.Active()
	if active == nil || active.State() == StateFinished {
		return false
	}
	return active.Cancel()
}
