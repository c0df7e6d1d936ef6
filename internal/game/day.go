package game

import (
	"context"
	"strconv"
	"strings"

	"werewolf-toolbox/internal/models"
)

const (
	promptHunter        = "You are dying. Choose a player to shoot, or 0 to hold your fire."
	promptRunSheriff    = "Do you want to run for Sheriff? Choose your own id to run, or 0 to stay out."
	promptSheriffSpeech = "Give your campaign speech for Sheriff."
	promptVoteSheriff   = "Vote for a Sheriff candidate."
	promptDaySpeech     = "Share your thoughts with the village."
	promptVoteExile     = "Vote for a player to exile."
	promptLastWords     = "You have been exiled. Any last words?"
	waitingSheriffVote  = "The village is electing a Sheriff..."
	waitingVote         = "The village is voting..."
)

func (e *Engine) runDay(ctx context.Context) error {
	steps := []func(context.Context) error{
		e.announceNight,
		e.sheriffElection,
		e.daySpeeches,
		e.exileVote,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
		if e.state.IsOver() {
			return nil
		}
	}

	e.state.Day++
	e.state.Phase = models.PhaseNight
	e.notify()
	return nil
}

func (e *Engine) announceNight(ctx context.Context) error {
	e.setSubPhase(models.SubAnnounce)
	if len(e.state.DiedTonight) == 0 {
		e.announce("It was a peaceful night. No one died.")
	} else {
		ids := make([]string, len(e.state.DiedTonight))
		for i, id := range e.state.DiedTonight {
			ids[i] = strconv.Itoa(id)
		}
		e.announce("Last night, Player(s) %s died.", strings.Join(ids, ", "))
	}
	if err := e.pause(ctx, e.pacing.Announce); err != nil {
		return err
	}
	if e.checkWin() {
		return nil
	}

	for _, id := range e.state.DiedTonight {
		p := e.state.Player(id)
		if p.Role != models.RoleHunter || p.DeathReason == models.DeathPoisoned {
			continue
		}
		if err := e.hunterTurn(ctx, p); err != nil {
			return err
		}
		if e.state.IsOver() {
			return nil
		}
	}
	return nil
}

// hunterTurn gives a dead hunter their shot. A hunter who is shot shoots in turn.
func (e *Engine) hunterTurn(ctx context.Context, hunter *models.Player) error {
	for hunter != nil {
		e.setSubPhase(models.SubHunterShoot)
		d, err := e.resolve(ctx, hunter, ask{prompt: promptHunter, valid: targets(e.state.Alive(), nil), allowDead: true})
		if err != nil {
			return err
		}
		target := e.state.Player(d.Action)
		if d.Action <= 0 || target == nil || !target.IsAlive {
			e.announce("Hunter (Player %d) chose not to shoot.", hunter.ID)
			return nil
		}
		e.announce("Hunter (Player %d) shot Player %d!", hunter.ID, target.ID)
		e.kill(target, models.DeathShot)
		if e.checkWin() {
			return nil
		}
		hunter = nil
		if target.Role == models.RoleHunter {
			hunter = target
		}
	}
	return nil
}

func (e *Engine) sheriffElection(ctx context.Context) error {
	if e.state.Day != 1 {
		return nil
	}

	e.setSubPhase(models.SubSheriffRun)
	var candidates []*models.Player
	for _, p := range e.state.Alive() {
		d, err := e.resolve(ctx, p, ask{prompt: promptRunSheriff, valid: []int{0, p.ID}})
		if err != nil {
			return err
		}
		if d.Action == p.ID {
			p.SheriffCandidate = true
			candidates = append(candidates, p)
			e.announce("Player %d is running for Sheriff.", p.ID)
		}
	}
	if len(candidates) == 0 {
		e.announce("No one ran for Sheriff.")
		return nil
	}

	e.setSubPhase(models.SubSheriffSpeech)
	for _, p := range candidates {
		if err := e.speak(ctx, p, promptSheriffSpeech); err != nil {
			return err
		}
	}

	e.setSubPhase(models.SubSheriffVote)
	var voters []*models.Player
	for _, p := range e.state.Alive() {
		if !p.SheriffCandidate {
			voters = append(voters, p)
		}
	}
	valid := append([]int{0}, models.IDs(candidates)...)
	results, err := e.resolveCohort(ctx, voters, waitingSheriffVote, func(*models.Player) ask {
		return ask{prompt: promptVoteSheriff, valid: valid}
	})
	if err != nil {
		return err
	}

	var votes []int
	for i, d := range results {
		if d.Action > 0 {
			votes = append(votes, d.Action)
			e.announce("Player %d voted for Player %d as Sheriff.", voters[i].ID, d.Action)
		}
	}
	if len(votes) == 0 {
		e.announce("No votes were cast. No Sheriff was elected.")
		return nil
	}
	id := Majority(votes, TieBreakNone, e.chooser)
	if id == 0 {
		e.announce("The Sheriff vote was tied. No Sheriff was elected.")
		return nil
	}
	e.state.Player(id).IsSheriff = true
	e.announce("Player %d was elected Sheriff!", id)
	return nil
}

func (e *Engine) daySpeeches(ctx context.Context) error {
	e.setSubPhase(models.SubSpeech)
	for _, p := range e.state.Alive() {
		if err := e.speak(ctx, p, promptDaySpeech); err != nil {
			return err
		}
	}
	return nil
}

// speak asks p for a public speech and logs it.
func (e *Engine) speak(ctx context.Context, p *models.Player, prompt string) error {
	d, err := e.resolve(ctx, p, ask{prompt: prompt, valid: []int{0}, speech: true, allowDead: true})
	if err != nil {
		return err
	}
	if d.Speech == "" {
		return nil
	}
	e.say(p, d.Speech, nil)
	return e.pause(ctx, e.pacing.Speech)
}

func (e *Engine) exileVote(ctx context.Context) error {
	e.setSubPhase(models.SubVote)
	voters := e.state.Alive()
	valid := targets(voters, nil)
	results, err := e.resolveCohort(ctx, voters, waitingVote, func(*models.Player) ask {
		return ask{prompt: promptVoteExile, valid: valid}
	})
	if err != nil {
		return err
	}

	var votes []int
	for i, d := range results {
		if d.Action > 0 {
			votes = append(votes, d.Action)
			e.announce("Player %d voted for Player %d.", voters[i].ID, d.Action)
		} else {
			e.announce("Player %d abstained.", voters[i].ID)
		}
	}
	if len(votes) == 0 {
		e.announce("No one was exiled.")
		return nil
	}
	id := Majority(votes, TieBreakNone, e.chooser)
	if id == 0 {
		e.announce("The vote was tied. No one was exiled.")
		return nil
	}

	exiled := e.state.Player(id)
	e.announce("Player %d was exiled.", id)
	e.kill(exiled, models.DeathExiled)
	if e.checkWin() {
		return nil
	}

	e.setSubPhase(models.SubLastWords)
	if err := e.speak(ctx, exiled, promptLastWords); err != nil {
		return err
	}
	if exiled.Role == models.RoleHunter {
		return e.hunterTurn(ctx, exiled)
	}
	return nil
}
