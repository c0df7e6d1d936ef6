package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"slices"

	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"

	"werewolf-toolbox/internal/config"
	"werewolf-toolbox/internal/game"
	"werewolf-toolbox/internal/models"
	"werewolf-toolbox/internal/player"
)

// CLI manages all command-line interactions.
type CLI struct {
	log  *logrus.Logger
	line *liner.State
	out  io.Writer
}

// NewCLI creates a new command-line interface manager.
func NewCLI(log *logrus.Logger) *CLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return &CLI{
		log:  log,
		line: line,
		out:  os.Stdout,
	}
}

// Close restores the terminal.
func (c *CLI) Close() error {
	return c.line.Close()
}

// Play runs one match in the terminal. The first human seat is driven from the
// prompt; everyone else is an AI.
func (c *CLI) Play(ctx context.Context, cfg *config.GameConfig, seats []config.Seat, rand *rand.Rand, god bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	humanID := 0
	for _, s := range seats {
		if s.Kind == models.KindHuman {
			humanID = s.ID
			break
		}
	}

	builder := game.NewBuilder(cfg, c.log, rand).WithRoster(seats)
	renderer := NewRenderer(c.out, humanID, god)
	builder.EventManager().Subscribe(renderer)

	engine, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build match: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	for {
		select {
		case err := <-done:
			return err
		case s := <-renderer.Prompts():
			if err := c.answer(engine, s); err != nil {
				if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
					C.Info.Fprintln(c.out, "\nGoodbye!")
					cancel()
					<-done
					return nil
				}
				return err
			}
		}
	}
}

// answer prompts the human for the pending action and submits it.
func (c *CLI) answer(engine *game.Engine, s *models.GameState) error {
	C.Header.Fprintf(c.out, "\n> %s\n", s.ActionPrompt)

	var d models.Decision
	var err error
	if s.IsSpeech {
		if d.Speech, err = c.promptForString("Say something (empty to stay silent): "); err != nil {
			return err
		}
	}
	if slices.ContainsFunc(s.ValidTargets, func(id int) bool { return id != 0 }) {
		prompt := fmt.Sprintf("Target [%s] (0 to skip): ", joinTargets(s.ValidTargets))
		if d.Action, err = c.promptForTarget(prompt, s.ValidTargets); err != nil {
			return err
		}
	}

	switch err := engine.Submit(s.CurrentPlayerID, d); {
	case err == nil:
	case errors.Is(err, player.ErrNoPendingAction):
		c.log.WithError(err).Debug("Answer arrived after the request was withdrawn")
	default:
		return err
	}
	return nil
}
