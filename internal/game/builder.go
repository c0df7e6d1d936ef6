package game

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"

	"werewolf-toolbox/internal/ai"
	"werewolf-toolbox/internal/config"
	"werewolf-toolbox/internal/events"
	"werewolf-toolbox/internal/models"
	"werewolf-toolbox/internal/player"
)

var ErrInvalidRoster = errors.New("invalid roster")

// GameBuilder provides a step-by-step API for constructing an Engine.
type GameBuilder struct {
	cfg          *config.GameConfig
	eventManager *events.Manager
	log          *logrus.Logger
	rand         *rand.Rand
	seats        []config.Seat
	decider      player.Decider
	chooser      Chooser
}

// NewBuilder creates a new GameBuilder with its required dependencies.
func NewBuilder(cfg *config.GameConfig, logger *logrus.Logger, rand *rand.Rand) *GameBuilder {
	return &GameBuilder{
		cfg:          cfg,
		log:          logger,
		rand:         rand,
		eventManager: events.NewManager(),
	}
}

// EventManager is a public getter for the unexported field.
func (b *GameBuilder) EventManager() *events.Manager {
	return b.eventManager
}

// WithRoster seats the given players. Without it the configured default roster is used.
func (b *GameBuilder) WithRoster(seats []config.Seat) *GameBuilder {
	b.seats = seats
	return b
}

// WithDecider replaces the AI adapter, mostly for tests.
func (b *GameBuilder) WithDecider(d player.Decider) *GameBuilder {
	b.decider = d
	return b
}

func (b *GameBuilder) WithChooser(c Chooser) *GameBuilder {
	b.chooser = c
	return b
}

// Build validates the roster, deals the shuffled deck and returns an engine ready to Run.
func (b *GameBuilder) Build() (*Engine, error) {
	seats := b.seats
	if seats == nil {
		seats = b.cfg.DefaultRoster()
	}
	if err := validateRoster(seats, len(b.cfg.Deck)); err != nil {
		return nil, err
	}

	// 1. Shuffle a copy of the deck
	deck := append([]models.Role(nil), b.cfg.Deck...)
	b.rand.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	// 2. Seat players in id order and deal one role each
	ordered := append([]config.Seat(nil), seats...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	players := make([]*models.Player, len(ordered))
	for i, s := range ordered {
		p := &models.Player{ID: s.ID, Name: s.Name, Kind: s.Kind, Role: deck[i], IsAlive: true}
		if s.AI != nil {
			cfg := *s.AI
			p.AI = &cfg
		}
		players[i] = p
		b.log.Debugf("Player %s is %s", p.Label(), p.Role)
	}

	// 3. Inject dependencies
	decider := b.decider
	if decider == nil {
		decider = ai.NewAdapter(ai.NewClient(b.cfg.AI.Timeout), b.log)
	}
	chooser := b.chooser
	if chooser == nil {
		chooser = NewRandomChooser(rand.New(rand.NewSource(b.rand.Int63())))
	}

	state := models.NewGameState(players)
	engine := newEngine(state, b.eventManager, decider, chooser, b.log, b.cfg.DeepCopy())

	b.eventManager.Publish(events.GameReadyEvent{State: engine.Snapshot()})

	return engine, nil
}

func validateRoster(seats []config.Seat, deckSize int) error {
	if len(seats) != deckSize {
		return fmt.Errorf("%w: %d players for a %d-card deck", ErrInvalidRoster, len(seats), deckSize)
	}
	seen := make(map[int]bool, len(seats))
	for _, s := range seats {
		if s.ID < 1 || s.ID > deckSize || seen[s.ID] {
			return fmt.Errorf("%w: bad or duplicate id %d", ErrInvalidRoster, s.ID)
		}
		seen[s.ID] = true
		if s.Kind != models.KindHuman && s.Kind != models.KindAI {
			return fmt.Errorf("%w: seat %d has unknown kind %q", ErrInvalidRoster, s.ID, s.Kind)
		}
	}
	return nil
}
