// ABOUTME: Expiry scheduler arming a single one-shot timer from a credential's exp claim
// ABOUTME: States are Idle, Armed and Fired; at most one timer is outstanding

package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/fuelwise/fuelwise-cli/internal/credential"
)

// State is the scheduler state
type State int

const (
	Idle State = iota
	Armed
	Fired
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Fired:
		return "fired"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Scheduler tracks the expiry deadline of the current credential
type Scheduler struct {
	mu       sync.Mutex
	clock    Clock
	state    State
	timer    Timer
	gen      uint64
	deadline time.Time
	onFire   func()
}

// NewScheduler creates an idle scheduler; onFire runs when an armed timer elapses
func NewScheduler(clock Clock, onFire func()) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}
	return &Scheduler{clock: clock, onFire: onFire}
}

// Arm cancels any pending timer and schedules a new one from the credential's exp.
// It returns Fired without scheduling when exp is missing, unreadable or already past;
// the caller must then terminate the session.
func (s *Scheduler) Arm(raw string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()

	delay, err := credential.UntilExpiry(raw, s.clock.Now())
	if err != nil {
		s.state = Fired
		return s.state, err
	}
	if delay <= 0 {
		s.state = Fired
		return s.state, nil
	}

	gen := s.gen
	s.deadline = s.clock.Now().Add(delay)
	s.timer = s.clock.AfterFunc(delay, func() { s.fire(gen) })
	s.state = Armed
	return s.state, nil
}

// Disarm cancels a pending timer and returns to Idle
func (s *Scheduler) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.state = Idle
}

// State returns the current state
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Deadline returns the armed expiry time, zero when not armed
func (s *Scheduler) Deadline() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Armed {
		return time.Time{}
	}
	return s.deadline
}

// cancelLocked stops the timer and bumps the generation so a callback
// already in flight is ignored
func (s *Scheduler) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.deadline = time.Time{}
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.state != Armed {
		s.mu.Unlock()
		return
	}
	s.state = Fired
	s.timer = nil
	s.mu.Unlock()

	if s.onFire != nil {
		s.onFire()
	}
}
