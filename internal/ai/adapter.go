package ai

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"werewolf-toolbox/internal/models"
	"werewolf-toolbox/internal/player"
)

// ErrorSpeech is what a seat "says" when its answer could not be used.
const ErrorSpeech = "I encountered an error."

// Adapter implements player.Decider on top of a chat-completion endpoint.
type Adapter struct {
	client *Client
	log    logrus.FieldLogger
}

// NewAdapter creates an adapter that sends requests through client.
func NewAdapter(client *Client, logger logrus.FieldLogger) *Adapter {
	return &Adapter{client: client, log: logger}
}

// Decide asks the seat's endpoint for a decision. It never fails: every error
// becomes the fallback decision.
func (a *Adapter) Decide(ctx context.Context, req player.Request) models.Decision {
	log := a.log.WithFields(logrus.Fields{"player": req.Player.ID, "sub_phase": req.State.SubPhase})
	fallback := player.Fallback(req.ValidTargets, ErrorSpeech)

	content, err := a.client.Complete(ctx, req.Player.AI, BuildPrompt(req))
	if err != nil {
		log.WithError(err).Warn("AI call failed, using fallback")
		return fallback
	}

	r, action, err := parseReply(content)
	if err != nil {
		log.WithError(err).Warnf("Unusable AI reply %q, using fallback", truncate(content, 120))
		return fallback
	}

	if !player.Allowed(action, req.ValidTargets) {
		log.Warnf("AI chose %d outside %v, using fallback", action, req.ValidTargets)
		fallback.Thought = r.Thought
		return fallback
	}

	d := models.Decision{Action: action, Thought: r.Thought}
	if req.IsSpeech {
		d.Speech = r.Speech
	}
	log.Debugf("AI decided %d", d.Action)
	return d
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
