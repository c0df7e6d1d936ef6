package events

import (
	"sync"

	"werewolf-toolbox/internal/models"
)

// Event is a marker interface for all event types.
type Event interface{}

// Listener defines an interface for any component that wants to react to events.
// Publish does not wait on listeners for anything but the call itself, so
// HandleEvent must return quickly and hand slow work to its own goroutine.
type Listener interface {
	HandleEvent(e Event)
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc func(e Event)

func (f ListenerFunc) HandleEvent(e Event) { f(e) }

// Manager (or Event Bus) manages listeners and dispatches events.
type Manager struct {
	mu        sync.RWMutex
	listeners []Listener
}

func NewManager() *Manager {
	return &Manager{}
}

func (em *Manager) Subscribe(l Listener) {
	em.mu.Lock()
	defer em.mu.Unlock()
	em.listeners = append(em.listeners, l)
}

func (em *Manager) Publish(e Event) {
	em.mu.RLock()
	listeners := make([]Listener, len(em.listeners))
	copy(listeners, em.listeners)
	em.mu.RUnlock()

	for _, l := range listeners {
		l.HandleEvent(e)
	}
}

// --- Event Types ---

// GameReadyEvent is published once roles are dealt, before the first night.
type GameReadyEvent struct {
	State *models.GameState
}

// StateChangedEvent carries a deep copy of the state after a mutation.
// Receivers must treat State as read-only.
type StateChangedEvent struct {
	State *models.GameState
}

// GameOverEvent is published once, when the match reaches its terminal phase.
type GameOverEvent struct {
	Winner models.Team
	State  *models.GameState
}
