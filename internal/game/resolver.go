package game

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"werewolf-toolbox/internal/models"
	"werewolf-toolbox/internal/player"
)

// ask is an action request before it is bound to a player.
type ask struct {
	prompt string
	valid  []int
	speech bool
	// allowDead lets a dead player act: last words and the hunter's shot.
	allowDead bool
}

func (e *Engine) request(p *models.Player, a ask) player.Request {
	return player.Request{Player: p, State: e.state, Prompt: a.prompt, ValidTargets: a.valid, IsSpeech: a.speech}
}

// publishPrompt exposes the pending request to observers before it is resolved.
func (e *Engine) publishPrompt(p *models.Player, a ask) {
	e.state.CurrentPlayerID = p.ID
	e.state.ActionPrompt = a.prompt
	e.state.ValidTargets = append([]int(nil), a.valid...)
	e.state.IsSpeech = a.speech
	e.notify()
}

// resolve asks one player to act. Dead players answer with a no-op unless the
// request allows the dead.
func (e *Engine) resolve(ctx context.Context, p *models.Player, a ask) (models.Decision, error) {
	if !p.IsAlive && !a.allowDead {
		return models.Decision{}, nil
	}
	e.publishPrompt(p, a)
	if err := e.pause(ctx, e.pacing.Beat); err != nil {
		return models.Decision{}, err
	}

	if p.IsHuman() {
		return e.awaitHuman(ctx, p, a)
	}
	d := e.decider.Decide(ctx, e.request(p, a))
	e.think(p, d.Thought)
	e.logDecision(p, d)
	return d, ctx.Err()
}

func (e *Engine) awaitHuman(ctx context.Context, p *models.Player, a ask) (models.Decision, error) {
	ch, err := e.seat.Open(p.ID, a.valid)
	if err != nil {
		return models.Decision{}, err
	}
	e.state.WaitingForHuman = true
	e.notify()

	d, err := e.seat.Await(ctx, ch)
	e.state.WaitingForHuman = false
	e.notify()
	if err != nil {
		return models.Decision{}, err
	}
	e.logDecision(p, d)
	return d, nil
}

// resolveCohort asks every member of a cohort to act. Humans go first, one at a
// time; then all AI members are asked concurrently and joined. Results are
// indexed like cohort, and thoughts are logged in cohort order.
func (e *Engine) resolveCohort(ctx context.Context, cohort []*models.Player, waiting string, build func(*models.Player) ask) ([]models.Decision, error) {
	results := make([]models.Decision, len(cohort))
	var ais []int
	for i, p := range cohort {
		if !p.IsAlive {
			continue
		}
		if !p.IsHuman() {
			ais = append(ais, i)
			continue
		}
		d, err := e.resolve(ctx, p, build(p))
		if err != nil {
			return nil, err
		}
		results[i] = d
	}
	if len(ais) == 0 {
		return results, nil
	}

	e.clearPrompt()
	e.state.ActionPrompt = waiting
	e.notify()

	requests := make([]player.Request, len(cohort))
	for _, i := range ais {
		requests[i] = e.request(cohort[i], build(cohort[i]))
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for _, i := range ais {
		i := i
		g.Go(func() error {
			results[i] = e.decider.Decide(gctx, requests[i])
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, i := range ais {
		e.think(cohort[i], results[i].Thought)
		e.logDecision(cohort[i], results[i])
	}
	return results, nil
}

func (e *Engine) logDecision(p *models.Player, d models.Decision) {
	e.logger().WithFields(logrus.Fields{"player": p.ID, "action": d.Action}).Debug("Decision resolved")
}
