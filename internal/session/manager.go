// ABOUTME: Session store owning the credential and profile for one client
// ABOUTME: Persists to the durable store, arms the expiry scheduler and forces sign-in on logout

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fuelwise/fuelwise-cli/internal/credential"
	"github.com/fuelwise/fuelwise-cli/internal/kvstore"
	"go.uber.org/zap"
)

// SignInRoute is where logout sends the user
const SignInRoute = "/login"

// Navigator performs forced navigation on logout
type Navigator interface {
	Current() string
	Replace(route string)
}

// Listener observes session changes
type Listener func(Session)

// Manager is the single source of truth for the current session
type Manager struct {
	mu      sync.RWMutex
	store   kvstore.Store
	nav     Navigator
	clock   Clock
	log     *zap.Logger
	sched   *Scheduler
	syncer  *Synchronizer
	cred    string
	profile *Profile

	listenersMu sync.Mutex
	nextID      int
	listeners   map[int]Listener
}

// Option configures a Manager
type Option func(*Manager)

// WithNavigator sets the navigator used on logout
func WithNavigator(nav Navigator) Option {
	return func(m *Manager) { m.nav = nav }
}

// WithClock sets the clock used by the expiry scheduler
func WithClock(c Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// New creates a manager over store. Call Init before use and Teardown when done.
func New(store kvstore.Store, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		clock:     SystemClock(),
		log:       zap.NewNop(),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.Named("session")
	m.sched = NewScheduler(m.clock, m.expire)
	m.syncer = newSynchronizer(m)
	return m
}

// Init hydrates the session from the durable store, validates the persisted
// credential and starts mirroring changes made by other clients.
func (m *Manager) Init(ctx context.Context) error {
	token, hasToken, err := m.store.Get(ctx, kvstore.KeyToken)
	if err != nil {
		return fmt.Errorf("read persisted credential: %w", err)
	}
	rawUser, _, err := m.store.Get(ctx, kvstore.KeyUser)
	if err != nil {
		return fmt.Errorf("read persisted profile: %w", err)
	}

	m.mu.Lock()
	m.profile = parseProfile(rawUser)
	if hasToken {
		m.cred = token
	}
	m.mu.Unlock()

	m.syncer.start(m.store)

	if !hasToken || token == "" {
		return nil
	}

	state, armErr := m.sched.Arm(token)
	if state == Fired {
		m.log.Info("persisted credential rejected at startup", zap.Error(armErr))
		return m.Logout(ctx)
	}

	m.mu.Lock()
	if m.profile == nil {
		if claims, err := credential.Parse(token); err == nil {
			m.profile = ProfileFromClaims(claims)
		}
	}
	m.mu.Unlock()

	m.log.Debug("session restored", zap.Time("expires", m.sched.Deadline()))
	m.notify()
	return nil
}

// Teardown stops mirroring external changes and disarms the scheduler
func (m *Manager) Teardown() {
	m.syncer.stop()
	m.sched.Disarm()
}

// Get returns the current session
func (m *Manager) Get() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// Credential returns the raw credential, empty when signed out
func (m *Manager) Credential() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cred
}

// ExpiryState returns the scheduler state
func (m *Manager) ExpiryState() State {
	return m.sched.State()
}

// Login persists the credential and optional profile and arms the scheduler.
// Without a profile any persisted one is dropped and the profile is decoded
// from the credential. A credential that is expired or has no exp ends the
// session immediately.
func (m *Manager) Login(ctx context.Context, cred string, profile *Profile) error {
	if err := m.store.Set(ctx, kvstore.KeyToken, cred); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}

	var current *Profile
	if profile != nil {
		raw, err := json.Marshal(profile)
		if err != nil {
			return fmt.Errorf("encode profile: %w", err)
		}
		if err := m.store.Set(ctx, kvstore.KeyUser, string(raw)); err != nil {
			return fmt.Errorf("persist profile: %w", err)
		}
		p := *profile
		current = &p
	} else {
		if err := m.store.Delete(ctx, kvstore.KeyUser); err != nil {
			return fmt.Errorf("clear persisted profile: %w", err)
		}
		if claims, err := credential.Parse(cred); err == nil {
			current = ProfileFromClaims(claims)
		}
	}

	m.mu.Lock()
	m.cred = cred
	m.profile = current
	m.mu.Unlock()

	state, err := m.sched.Arm(cred)
	if state == Fired {
		m.log.Warn("credential rejected at login", zap.Error(err))
		if logoutErr := m.Logout(ctx); logoutErr != nil {
			return logoutErr
		}
		if err == nil {
			err = ErrExpired
		}
		return err
	}

	m.log.Info("signed in", zap.Time("expires", m.sched.Deadline()))
	m.notify()
	return nil
}

// ErrExpired is returned by Login when the credential is already past its exp
var ErrExpired = errors.New("credential already expired")

// Logout clears durable and in-memory state, disarms the scheduler and
// navigates to the sign-in route unless already there.
func (m *Manager) Logout(ctx context.Context) error {
	m.sched.Disarm()

	err := errors.Join(
		m.store.Delete(ctx, kvstore.KeyToken),
		m.store.Delete(ctx, kvstore.KeyUser),
	)

	m.mu.Lock()
	m.cred = ""
	m.profile = nil
	m.mu.Unlock()

	m.notify()
	m.forceSignIn()

	if err != nil {
		return fmt.Errorf("clear persisted session: %w", err)
	}
	return nil
}

// Subscribe registers a listener for session changes
func (m *Manager) Subscribe(fn Listener) func() {
	m.listenersMu.Lock()
	m.nextID++
	id := m.nextID
	m.listeners[id] = fn
	m.listenersMu.Unlock()

	return func() {
		m.listenersMu.Lock()
		delete(m.listeners, id)
		m.listenersMu.Unlock()
	}
}

func (m *Manager) expire() {
	m.log.Info("credential expired, signing out")
	if err := m.Logout(context.Background()); err != nil {
		m.log.Error("logout after expiry failed", zap.Error(err))
	}
}

func (m *Manager) forceSignIn() {
	if m.nav == nil {
		return
	}
	if m.nav.Current() == SignInRoute {
		return
	}
	m.nav.Replace(SignInRoute)
}

func (m *Manager) snapshotLocked() Session {
	var profile *Profile
	if m.profile != nil {
		p := *m.profile
		profile = &p
	}
	return Session{
		Credential:      m.cred,
		Profile:         profile,
		IsAuthenticated: m.cred != "",
	}
}

func (m *Manager) notify() {
	s := m.Get()

	m.listenersMu.Lock()
	fns := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.listenersMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
