package game

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"werewolf-toolbox/internal/config"
	"werewolf-toolbox/internal/events"
	"werewolf-toolbox/internal/models"
	"werewolf-toolbox/internal/player"
)

var ErrAlreadyRunning = errors.New("match is already running")

// Engine is the phase controller. It is the only writer of its GameState and
// runs on a single goroutine; observers only ever see deep copies.
type Engine struct {
	state       *models.GameState
	events      *events.Manager
	seat        *player.Seat
	decider     player.Decider
	chooser     Chooser
	log         logrus.FieldLogger
	pacing      config.Pacing
	parallelism int
	maxDays     int

	latest  atomic.Pointer[models.GameState]
	started atomic.Bool
}

func newEngine(state *models.GameState, em *events.Manager, decider player.Decider, chooser Chooser, logger logrus.FieldLogger, cfg *config.GameConfig) *Engine {
	e := &Engine{
		state:       state,
		events:      em,
		seat:        player.NewSeat(),
		decider:     decider,
		chooser:     chooser,
		log:         logger,
		pacing:      cfg.Pacing,
		parallelism: max(cfg.Parallelism, 1),
		maxDays:     cfg.MaxDays,
	}
	e.latest.Store(state.Clone())
	return e
}

// Events is the bus snapshots are published on.
func (e *Engine) Events() *events.Manager { return e.events }

// Snapshot returns the most recently published copy of the state.
func (e *Engine) Snapshot() *models.GameState { return e.latest.Load() }

// PendingHuman returns the id of the human the engine is waiting on, or 0.
func (e *Engine) PendingHuman() int { return e.seat.Pending() }

// Submit hands the decision of human playerID to the engine. See
// player.Seat.SubmitFor for the errors it returns; none of them change the match.
func (e *Engine) Submit(playerID int, d models.Decision) error {
	return e.seat.SubmitFor(playerID, d)
}

// Run plays the match to the end. It returns early only if ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	e.log.WithField("players", len(e.state.Players)).Info("Match started")
	e.announce("The game has started. Night falls...")

	for !e.state.IsOver() {
		if e.maxDays > 0 && e.state.Day > e.maxDays {
			e.endWithoutWinner()
			break
		}
		var err error
		switch e.state.Phase {
		case models.PhaseNight:
			err = e.runNight(ctx)
		case models.PhaseDay:
			err = e.runDay(ctx)
		}
		if err != nil {
			e.log.WithError(err).Warn("Match aborted")
			return err
		}
	}

	e.log.WithField("winner", e.state.Winner).Info("Match over")
	e.events.Publish(events.GameOverEvent{Winner: e.state.Winner, State: e.Snapshot()})
	return nil
}

// notify publishes a copy of the current state. It is called after every mutation.
func (e *Engine) notify() {
	snap := e.state.Clone()
	e.latest.Store(snap)
	e.events.Publish(events.StateChangedEvent{State: snap})
}

func (e *Engine) logger() logrus.FieldLogger {
	return e.log.WithFields(logrus.Fields{
		"day":       e.state.Day,
		"phase":     e.state.Phase,
		"sub_phase": e.state.SubPhase,
	})
}

func (e *Engine) setSubPhase(sp models.SubPhase) {
	e.state.SubPhase = sp
	e.clearPrompt()
	e.notify()
	e.logger().Debug("Sub-phase started")
}

func (e *Engine) clearPrompt() {
	e.state.CurrentPlayerID = 0
	e.state.ActionPrompt = ""
	e.state.ValidTargets = nil
	e.state.IsSpeech = false
}

func (e *Engine) record(entry models.Entry) {
	entry.Day = e.state.Day
	e.state.History.Append(entry)
	e.notify()
}

func (e *Engine) announce(format string, args ...any) {
	e.record(models.Entry{Category: models.CategorySystem, Message: fmt.Sprintf(format, args...)})
}

func (e *Engine) secret(scope *models.Scope, format string, args ...any) {
	e.record(models.Entry{Category: models.CategoryAction, Message: fmt.Sprintf(format, args...), Scope: scope})
}

func (e *Engine) say(p *models.Player, speech string, scope *models.Scope) {
	e.record(models.Entry{Category: models.CategorySpeech, Message: fmt.Sprintf("Player %d: %s", p.ID, speech), PlayerID: p.ID, Scope: scope})
}

func (e *Engine) think(p *models.Player, thought string) {
	if thought == "" {
		return
	}
	e.record(models.Entry{Category: models.CategoryThought, Message: fmt.Sprintf("Player %d thinks: %s", p.ID, thought), PlayerID: p.ID, Scope: models.ScopePlayer(p.ID)})
}

func (e *Engine) kill(p *models.Player, reason models.DeathReason) {
	if p.Kill(reason, e.state.Day) {
		e.logger().WithFields(logrus.Fields{"player": p.ID, "reason": reason}).Info("Player died")
		e.notify()
	}
}

// checkWin ends the match if a side has won. Callers must stop the current
// cycle when it returns true.
func (e *Engine) checkWin() bool {
	team, ok := CheckWinner(e.state.Players)
	if !ok {
		return false
	}
	e.state.Winner = team
	e.state.Phase = models.PhaseGameOver
	e.clearPrompt()
	e.announce("Game over. The %s win!", team)
	return true
}

func (e *Engine) endWithoutWinner() {
	e.state.Phase = models.PhaseGameOver
	e.clearPrompt()
	e.announce("The village gave up after %d days. Nobody wins.", e.maxDays)
}

// pause is a narrative delay between beats.
func (e *Engine) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// targets prefixes ids with the skip sentinel.
func targets(ps []*models.Player, exclude func(*models.Player) bool) []int {
	out := []int{0}
	for _, p := range ps {
		if exclude != nil && exclude(p) {
			continue
		}
		out = append(out, p.ID)
	}
	return out
}
