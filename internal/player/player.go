package player

import (
	"context"
	"slices"

	"werewolf-toolbox/internal/models"
)

// Decider is anything that can answer an action request for an AI seat.
// Implementations must never fail: errors are folded into a fallback Decision.
type Decider interface {
	Decide(ctx context.Context, req Request) models.Decision
}

// Request describes one pending action for one player. State is read-only for
// the duration of the call.
type Request struct {
	Player       *models.Player
	State        *models.GameState
	Prompt       string
	ValidTargets []int
	IsSpeech     bool
}

// Allowed reports whether action is the skip sentinel or one of valid.
func Allowed(action int, valid []int) bool {
	return action == 0 || slices.Contains(valid, action)
}

// Fallback is the decision used when an actor's answer cannot be used.
func Fallback(valid []int, speech string) models.Decision {
	action := 0
	if len(valid) > 0 {
		action = valid[0]
	}
	return models.Decision{Action: action, Speech: speech}
}
