package cli

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"werewolf-toolbox/internal/config"
	"werewolf-toolbox/internal/events"
	"werewolf-toolbox/internal/models"
)

func setupTestState() *models.GameState {
	var players []*models.Player
	for i, r := range config.StandardDeck {
		players = append(players, &models.Player{ID: i + 1, Name: config.DefaultNames[i], Kind: models.KindAI, Role: r, IsAlive: true})
	}
	players[8].Kind = models.KindHuman
	return models.NewGameState(players)
}

func TestRendererFollowsHumanView(t *testing.T) {
	color.NoColor = true

	// GIVEN a renderer for the human seer at seat 9
	var out bytes.Buffer
	r := NewRenderer(&out, 9, false)
	s := setupTestState()
	r.HandleEvent(events.GameReadyEvent{State: s.Clone()})

	// WHEN public, wolf-only and seer-only entries are published
	s.SubPhase = models.SubGuard
	s.History.Append(models.Entry{Day: 1, Category: models.CategorySystem, Message: "Night falls"})
	s.History.Append(models.Entry{Day: 1, Category: models.CategoryAction, Message: "wolves chose 5", Scope: models.ScopeRole(models.RoleWerewolf)})
	s.History.Append(models.Entry{Day: 1, Category: models.CategoryAction, Message: "Seer checked Player 1", Scope: models.ScopeRole(models.RoleSeer)})
	r.HandleEvent(events.StateChangedEvent{State: s.Clone()})
	r.HandleEvent(events.StateChangedEvent{State: s.Clone()})

	// THEN only what the seer may see is printed, once
	text := out.String()
	assert.Contains(t, text, "You are Player 9, the Seer.")
	assert.Contains(t, text, "=== Night 1 ===")
	assert.Contains(t, text, "[Day 1] Night falls")
	assert.Contains(t, text, "[Day 1] Seer checked Player 1 (private)")
	assert.NotContains(t, text, "wolves chose 5")
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("Night falls")))
}

func TestRendererHandsOffHumanPrompts(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	r := NewRenderer(&out, 9, false)
	s := setupTestState()
	r.HandleEvent(events.GameReadyEvent{State: s.Clone()})

	t.Run("another seat's turn is ignored", func(t *testing.T) {
		s.WaitingForHuman, s.CurrentPlayerID = true, 3
		r.HandleEvent(events.StateChangedEvent{State: s.Clone()})
		assert.Empty(t, r.Prompts())
	})

	t.Run("the human's turn is delivered without blocking", func(t *testing.T) {
		s.CurrentPlayerID = 9
		s.ActionPrompt = "Choose a player to check their identity."
		r.HandleEvent(events.StateChangedEvent{State: s.Clone()})
		r.HandleEvent(events.StateChangedEvent{State: s.Clone()})
		require.Len(t, r.Prompts(), 1)
		got := <-r.Prompts()
		assert.Equal(t, "Choose a player to check their identity.", got.ActionPrompt)
	})
}

func TestRendererGameOver(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	r := NewRenderer(&out, 0, false)
	s := setupTestState()
	s.Phase = models.PhaseGameOver
	s.Winner = models.TeamVillagers
	s.History.Append(models.Entry{Day: 3, Category: models.CategoryThought, Message: "Player 2 thinks: oops", Scope: models.ScopePlayer(2)})

	r.HandleEvent(events.GameOverEvent{Winner: s.Winner, State: s})

	text := out.String()
	assert.Contains(t, text, "The Villagers win!")
	assert.Contains(t, text, "Player 2 thinks: oops")
	assert.Contains(t, text, "Final roles")
	select {
	case <-r.Finished():
	default:
		t.Fatal("renderer did not signal the end of the match")
	}
}

func TestRenderRoles(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	RenderRoles(&out, config.StandardDeck)
	text := out.String()
	assert.Contains(t, text, "Deck (12 seats)")
	assert.Contains(t, text, "Werewolf")
	assert.NotContains(t, text, "fellow werewolves")
}
