// ABOUTME: Mirrors credential and profile changes made by other clients into this session
// ABOUTME: Never writes back; each client derives its own expiry timer from the shared store

package session

import (
	"context"
	"sync"

	"github.com/fuelwise/fuelwise-cli/internal/kvstore"
	"go.uber.org/zap"
)

// Synchronizer observes the token and user keys of the durable store
type Synchronizer struct {
	m      *Manager
	mu     sync.Mutex
	unsubs []func()
}

func newSynchronizer(m *Manager) *Synchronizer {
	return &Synchronizer{m: m}
}

func (s *Synchronizer) start(store kvstore.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.unsubs) > 0 {
		return
	}
	s.unsubs = append(s.unsubs,
		store.OnChange(kvstore.KeyToken, s.onToken),
		store.OnChange(kvstore.KeyUser, s.onUser),
	)
}

func (s *Synchronizer) stop() {
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

func (s *Synchronizer) onToken(c kvstore.Change) {
	m := s.m
	if !c.Present || c.Value == "" {
		m.mu.Lock()
		m.cred = ""
		m.profile = nil
		m.mu.Unlock()
		m.sched.Disarm()
		m.log.Info("credential removed by another client")
		m.notify()
		return
	}

	m.mu.Lock()
	m.cred = c.Value
	m.mu.Unlock()

	state, err := m.sched.Arm(c.Value)
	if state == Fired {
		m.log.Info("credential from another client is not usable", zap.Error(err))
		if err := m.Logout(context.Background()); err != nil {
			m.log.Error("logout after sync failed", zap.Error(err))
		}
		return
	}
	m.log.Debug("credential replaced by another client")
	m.notify()
}

func (s *Synchronizer) onUser(c kvstore.Change) {
	m := s.m
	var p *Profile
	if c.Present {
		p = parseProfile(c.Value)
	}
	m.mu.Lock()
	m.profile = p
	m.mu.Unlock()
	m.notify()
}
