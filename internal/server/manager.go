package server

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"werewolf-toolbox/internal/config"
	"werewolf-toolbox/internal/game"
)

var ErrMatchNotFound = errors.New("match not found")

// Match is one running engine plus the sockets watching it.
type Match struct {
	ID     string
	Engine *game.Engine
	hub    *Hub
	cancel context.CancelFunc
	done   chan struct{}
}

// Done is closed when the engine has stopped.
func (m *Match) Done() <-chan struct{} { return m.done }

// Manager owns every match the server is hosting.
type Manager struct {
	ctx     context.Context
	cfg     *config.GameConfig
	log     *logrus.Logger
	mu      sync.RWMutex
	rand    *rand.Rand
	matches map[string]*Match
}

// NewManager creates a manager. Matches run until they end or ctx is cancelled.
func NewManager(ctx context.Context, cfg *config.GameConfig, log *logrus.Logger, seed int64) *Manager {
	return &Manager{
		ctx:     ctx,
		cfg:     cfg,
		log:     log,
		rand:    rand.New(rand.NewSource(seed)),
		matches: make(map[string]*Match),
	}
}

// Create seats the given roster (or the default one when empty) and starts the match.
func (m *Manager) Create(seats []config.Seat) (*Match, error) {
	if len(seats) == 0 {
		seats = m.cfg.DefaultRoster()
	} else {
		seats = m.cfg.FillRoster(seats)
	}

	m.mu.Lock()
	matchRand := rand.New(rand.NewSource(m.rand.Int63()))
	m.mu.Unlock()

	hub := NewHub(m.log)
	builder := game.NewBuilder(m.cfg.DeepCopy(), m.log, matchRand).WithRoster(seats)
	builder.EventManager().Subscribe(hub)
	engine, err := builder.Build()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(m.ctx)
	match := &Match{
		ID:     uuid.NewString(),
		Engine: engine,
		hub:    hub,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	m.mu.Lock()
	m.matches[match.ID] = match
	m.mu.Unlock()

	log := m.log.WithField("match", match.ID)
	go func() {
		defer close(match.done)
		defer cancel()
		if err := engine.Run(ctx); err != nil {
			log.WithError(err).Warn("Match stopped")
		}
	}()
	log.Info("Match created")
	return match, nil
}

// Get retrieves a match by id.
func (m *Manager) Get(id string) (*Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	match, ok := m.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return match, nil
}

// Shutdown stops every match and waits for the engines to return.
func (m *Manager) Shutdown() {
	m.mu.RLock()
	matches := make([]*Match, 0, len(m.matches))
	for _, match := range m.matches {
		matches = append(matches, match)
	}
	m.mu.RUnlock()

	for _, match := range matches {
		match.cancel()
		<-match.done
		match.hub.Close()
	}
}
