package models

// Phase represents the current phase of the game.
type Phase string

const (
	PhaseNight    Phase = "Night"
	PhaseDay      Phase = "Day"
	PhaseGameOver Phase = "GameOver"
)

// SubPhase is the step inside a phase.
type SubPhase string

// Night sub-phases, in play order.
const (
	SubGuard           SubPhase = "Guard"
	SubWerewolfDiscuss SubPhase = "WerewolfDiscuss"
	SubWerewolf        SubPhase = "Werewolf"
	SubWitch           SubPhase = "Witch"
	SubSeer            SubPhase = "Seer"
)

// Day sub-phases.
const (
	SubAnnounce      SubPhase = "Announce"
	SubHunterShoot   SubPhase = "HunterShoot"
	SubSheriffRun    SubPhase = "SheriffRun"
	SubSheriffSpeech SubPhase = "SheriffSpeech"
	SubSheriffVote   SubPhase = "SheriffVote"
	SubSpeech        SubPhase = "Speech"
	SubVote          SubPhase = "Vote"
	SubLastWords     SubPhase = "LastWords"
)

// Team is a winning side.
type Team string

const (
	TeamVillagers  Team = "Villagers"
	TeamWerewolves Team = "Werewolves"
)

// NightActions is the per-night scratch record.
type NightActions struct {
	LastProtected      int  `json:"lastProtected,omitempty"`
	GuardProtect       int  `json:"guardProtect,omitempty"`
	WerewolfKillTarget int  `json:"werewolfKillTarget,omitempty"`
	WitchSave          bool `json:"witchSave,omitempty"`
	WitchPoison        int  `json:"witchPoison,omitempty"`
	SeerCheck          int  `json:"seerCheck,omitempty"`
}

// GameState is the single mutable record of a match.
type GameState struct {
	Phase    Phase     `json:"phase"`
	SubPhase SubPhase  `json:"subPhase,omitempty"`
	Day      int       `json:"day"`
	Players  []*Player `json:"players"`
	History  History   `json:"history"`

	CurrentPlayerID int    `json:"currentPlayerId,omitempty"`
	WaitingForHuman bool   `json:"waitingForHuman"`
	ActionPrompt    string `json:"actionPrompt"`
	ValidTargets    []int  `json:"validTargets"`
	IsSpeech        bool   `json:"isSpeech"`

	Night       NightActions `json:"nightActions"`
	DiedTonight []int        `json:"diedTonight"`
	Winner      Team         `json:"winner,omitempty"`
}

// NewGameState creates the state for a fresh match starting on night 1.
func NewGameState(players []*Player) *GameState {
	return &GameState{
		Phase:   PhaseNight,
		Day:     1,
		Players: players,
	}
}

// Player finds a seat by id.
func (s *GameState) Player(id int) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Alive returns the living players in seating order.
func (s *GameState) Alive() []*Player {
	var out []*Player
	for _, p := range s.Players {
		if p.IsAlive {
			out = append(out, p)
		}
	}
	return out
}

// AliveWithRole returns the living players holding role r.
func (s *GameState) AliveWithRole(r Role) []*Player {
	var out []*Player
	for _, p := range s.Players {
		if p.IsAlive && p.Role == r {
			out = append(out, p)
		}
	}
	return out
}

// WithRole returns every player holding role r, dead or alive.
func (s *GameState) WithRole(r Role) []*Player {
	var out []*Player
	for _, p := range s.Players {
		if p.Role == r {
			out = append(out, p)
		}
	}
	return out
}

// IDs lists the ids of ps in order.
func IDs(ps []*Player) []int {
	out := make([]int, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

// IsOver reports whether the match has reached its terminal phase.
func (s *GameState) IsOver() bool { return s.Phase == PhaseGameOver }

// Clone returns a deep copy, safe to hand to observers.
func (s *GameState) Clone() *GameState {
	c := *s
	c.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		cp := *p
		if p.AI != nil {
			ai := *p.AI
			cp.AI = &ai
		}
		c.Players[i] = &cp
	}
	c.History = History{entries: s.History.Entries()}
	if s.ValidTargets != nil {
		c.ValidTargets = append([]int(nil), s.ValidTargets...)
	}
	if s.DiedTonight != nil {
		c.DiedTonight = append([]int(nil), s.DiedTonight...)
	}
	return &c
}
