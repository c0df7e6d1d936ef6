package models

import "strconv"

// Role represents a player's secret role.
type Role string

const (
	RoleVillager Role = "Villager"
	RoleWerewolf Role = "Werewolf"
	RoleSeer     Role = "Seer"
	RoleWitch    Role = "Witch"
	RoleHunter   Role = "Hunter"
	RoleGuard    Role = "Guard"
)

// IsPowered reports whether the role is one of the good roles with a night or death ability.
func (r Role) IsPowered() bool {
	switch r {
	case RoleSeer, RoleWitch, RoleHunter, RoleGuard:
		return true
	}
	return false
}

// ActorKind says who makes decisions for a seat.
type ActorKind string

const (
	KindHuman ActorKind = "Human"
	KindAI    ActorKind = "AI"
)

// DeathReason records how a player left the game.
type DeathReason string

const (
	DeathExiled   DeathReason = "Exiled"
	DeathKilled   DeathReason = "Killed"
	DeathPoisoned DeathReason = "Poisoned"
	DeathShot     DeathReason = "Shot"
)

// AIConfig is the chat-completion endpoint an AI seat talks to.
type AIConfig struct {
	BaseURL     string  `json:"baseURL" yaml:"base_url" mapstructure:"base_url"`
	APIKey      string  `json:"-" yaml:"api_key" mapstructure:"api_key"`
	Model       string  `json:"model" yaml:"model" mapstructure:"model"`
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
}

// Potions tracks the Witch's one-shot potions.
type Potions struct {
	HealUsed   bool `json:"healUsed"`
	PoisonUsed bool `json:"poisonUsed"`
}

// Player is one seat at the table.
type Player struct {
	ID               int         `json:"id"`
	Name             string      `json:"name"`
	Kind             ActorKind   `json:"kind"`
	AI               *AIConfig   `json:"ai,omitempty"`
	Role             Role        `json:"role,omitempty"`
	IsAlive          bool        `json:"isAlive"`
	IsSheriff        bool        `json:"isSheriff"`
	SheriffCandidate bool        `json:"sheriffCandidate"`
	DeathReason      DeathReason `json:"deathReason,omitempty"`
	DeathDay         int         `json:"deathDay,omitempty"`
	Potions          Potions     `json:"potions"`
}

// IsHuman reports whether the seat is driven by a person.
func (p *Player) IsHuman() bool { return p.Kind == KindHuman }

// Kill marks the player dead. The first reason and day stick; later calls are ignored.
func (p *Player) Kill(reason DeathReason, day int) bool {
	if !p.IsAlive {
		return false
	}
	p.IsAlive = false
	if p.DeathReason == "" {
		p.DeathReason = reason
		p.DeathDay = day
	}
	return true
}

// UseHeal spends the heal potion. It returns false if it was already spent.
func (p *Player) UseHeal() bool {
	if p.Potions.HealUsed {
		return false
	}
	p.Potions.HealUsed = true
	return true
}

// UsePoison spends the poison potion. It returns false if it was already spent.
func (p *Player) UsePoison() bool {
	if p.Potions.PoisonUsed {
		return false
	}
	p.Potions.PoisonUsed = true
	return true
}

// Label renders the player as "3(Charlie)", the form used in prompts and logs.
func (p *Player) Label() string {
	return strconv.Itoa(p.ID) + "(" + p.Name + ")"
}

// Decision is what an actor answers when asked to act.
// Action 0 means skip, abstain or no target.
type Decision struct {
	Action  int    `json:"action"`
	Speech  string `json:"speech,omitempty"`
	Thought string `json:"thought,omitempty"`
}
