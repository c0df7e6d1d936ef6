package game

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"werewolf-toolbox/internal/models"
)

const (
	promptGuard        = "Choose a player to protect tonight. You cannot protect the same player two nights in a row."
	promptWolfDiscuss  = "Discuss with your fellow werewolves who to kill tonight."
	promptWolfKill     = "Vote for a player to kill tonight."
	promptWitchSave    = "Player %d was attacked tonight. Use your healing potion on them?"
	promptWitchPoison  = "Use your poison on a player?"
	promptSeer         = "Choose a player to check their identity."
	waitingWolfDiscuss = "The werewolves are discussing..."
	waitingWolfVote    = "The werewolves are choosing a target..."
)

func (e *Engine) runNight(ctx context.Context) error {
	e.state.Phase = models.PhaseNight
	e.state.Night = models.NightActions{LastProtected: e.state.Night.GuardProtect}
	e.state.DiedTonight = nil

	steps := []func(context.Context) error{
		e.guardTurn,
		e.werewolfDiscussion,
		e.werewolfKill,
		e.witchTurn,
		e.seerTurn,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	e.resolveNight()
	return nil
}

func (e *Engine) guardTurn(ctx context.Context) error {
	e.setSubPhase(models.SubGuard)
	guards := e.state.AliveWithRole(models.RoleGuard)
	if len(guards) == 0 {
		return nil
	}
	last := e.state.Night.LastProtected
	valid := targets(e.state.Alive(), func(p *models.Player) bool { return p.ID == last })

	d, err := e.resolve(ctx, guards[0], ask{prompt: promptGuard, valid: valid})
	if err != nil {
		return err
	}
	if d.Action > 0 {
		e.state.Night.GuardProtect = d.Action
		e.secret(models.ScopeRole(models.RoleGuard), "Guard protected Player %d.", d.Action)
	}
	return nil
}

func (e *Engine) werewolfDiscussion(ctx context.Context) error {
	e.setSubPhase(models.SubWerewolfDiscuss)
	pack := e.state.AliveWithRole(models.RoleWerewolf)
	results, err := e.resolveCohort(ctx, pack, waitingWolfDiscuss, func(*models.Player) ask {
		return ask{prompt: promptWolfDiscuss, valid: []int{0}, speech: true}
	})
	if err != nil {
		return err
	}
	for i, d := range results {
		if d.Speech != "" {
			e.say(pack[i], d.Speech, models.ScopeRole(models.RoleWerewolf))
		}
	}
	return nil
}

func (e *Engine) werewolfKill(ctx context.Context) error {
	e.setSubPhase(models.SubWerewolf)
	pack := e.state.AliveWithRole(models.RoleWerewolf)
	valid := targets(e.state.Alive(), func(p *models.Player) bool { return p.Role == models.RoleWerewolf })
	results, err := e.resolveCohort(ctx, pack, waitingWolfVote, func(*models.Player) ask {
		return ask{prompt: promptWolfKill, valid: valid}
	})
	if err != nil {
		return err
	}

	var votes []int
	wolves := models.ScopeRole(models.RoleWerewolf)
	for i, d := range results {
		if d.Action > 0 {
			votes = append(votes, d.Action)
			e.secret(wolves, "Werewolf %d wants to kill Player %d.", pack[i].ID, d.Action)
		}
	}
	if len(votes) == 0 {
		return nil
	}
	target := Majority(votes, TieBreakRandom, e.chooser)
	e.state.Night.WerewolfKillTarget = target
	e.secret(wolves, "Werewolves decided to kill Player %d.", target)
	return nil
}

func (e *Engine) witchTurn(ctx context.Context) error {
	e.setSubPhase(models.SubWitch)
	witches := e.state.AliveWithRole(models.RoleWitch)
	if len(witches) == 0 {
		return nil
	}
	witch := witches[0]
	kill := e.state.Night.WerewolfKillTarget
	scope := models.ScopeRole(models.RoleWitch)

	if !witch.Potions.HealUsed && kill != 0 {
		d, err := e.resolve(ctx, witch, ask{prompt: fmt.Sprintf(promptWitchSave, kill), valid: []int{0, kill}})
		if err != nil {
			return err
		}
		if d.Action == kill && witch.UseHeal() {
			e.state.Night.WitchSave = true
			e.secret(scope, "Witch saved Player %d.", kill)
		}
	}

	if !witch.Potions.PoisonUsed {
		valid := targets(e.state.Alive(), func(p *models.Player) bool { return p.ID == kill })
		d, err := e.resolve(ctx, witch, ask{prompt: promptWitchPoison, valid: valid})
		if err != nil {
			return err
		}
		if d.Action > 0 && witch.UsePoison() {
			e.state.Night.WitchPoison = d.Action
			e.secret(scope, "Witch poisoned Player %d.", d.Action)
		}
	}
	return nil
}

func (e *Engine) seerTurn(ctx context.Context) error {
	e.setSubPhase(models.SubSeer)
	seers := e.state.AliveWithRole(models.RoleSeer)
	if len(seers) == 0 {
		return nil
	}
	seer := seers[0]
	valid := targets(e.state.Alive(), func(p *models.Player) bool { return p.ID == seer.ID })

	d, err := e.resolve(ctx, seer, ask{prompt: promptSeer, valid: valid})
	if err != nil {
		return err
	}
	target := e.state.Player(d.Action)
	if d.Action <= 0 || target == nil {
		return nil
	}
	e.state.Night.SeerCheck = d.Action
	result := "a good person"
	if target.Role == models.RoleWerewolf {
		result = "a Werewolf"
	}
	e.secret(models.ScopeRole(models.RoleSeer), "Seer checked Player %d: %s.", d.Action, result)
	return nil
}

// resolveNight applies the night's outcome. The attack kills its target unless
// the guard protected them or the witch healed them; poison always kills.
func (e *Engine) resolveNight() {
	n := e.state.Night
	var died []int
	if n.WerewolfKillTarget > 0 {
		protected := n.GuardProtect == n.WerewolfKillTarget
		if !protected && !n.WitchSave {
			if p := e.state.Player(n.WerewolfKillTarget); p != nil && p.IsAlive {
				p.Kill(models.DeathKilled, e.state.Day)
				died = append(died, p.ID)
			}
		}
	}
	if n.WitchPoison > 0 {
		if p := e.state.Player(n.WitchPoison); p != nil && p.IsAlive {
			p.Kill(models.DeathPoisoned, e.state.Day)
			died = append(died, p.ID)
		}
	}

	e.state.DiedTonight = died
	e.state.Phase = models.PhaseDay
	e.clearPrompt()
	e.logger().WithFields(logrus.Fields{"died": died, "night": n}).Info("Night resolved")
	e.notify()
}
