package models

// PlayerView is a seat as one observer is allowed to see it.
type PlayerView struct {
	ID               int         `json:"id"`
	Name             string      `json:"name"`
	Kind             ActorKind   `json:"kind"`
	Role             Role        `json:"role,omitempty"`
	IsAlive          bool        `json:"isAlive"`
	IsSheriff        bool        `json:"isSheriff"`
	SheriffCandidate bool        `json:"sheriffCandidate"`
	DeathReason      DeathReason `json:"deathReason,omitempty"`
	DeathDay         int         `json:"deathDay,omitempty"`
}

// View is a privacy-filtered projection of a snapshot.
type View struct {
	Phase           Phase         `json:"phase"`
	SubPhase        SubPhase      `json:"subPhase,omitempty"`
	Day             int           `json:"day"`
	Players         []PlayerView  `json:"players"`
	History         []Entry       `json:"history"`
	CurrentPlayerID int           `json:"currentPlayerId,omitempty"`
	WaitingForHuman bool          `json:"waitingForHuman"`
	ActionPrompt    string        `json:"actionPrompt"`
	ValidTargets    []int         `json:"validTargets"`
	IsSpeech        bool          `json:"isSpeech"`
	DiedTonight     []int         `json:"diedTonight"`
	Winner          Team          `json:"winner,omitempty"`
	Night           *NightActions `json:"nightActions,omitempty"`
}

// ViewFor projects s for the given viewer. Roles are revealed to god view, to the
// player themself, between werewolves, for dead players, and to everyone once the match is over.
func (s *GameState) ViewFor(v Viewer) View {
	view := View{
		Phase:       s.Phase,
		SubPhase:    s.SubPhase,
		Day:         s.Day,
		History:     s.History.VisibleTo(v),
		DiedTonight: append([]int(nil), s.DiedTonight...),
		Winner:      s.Winner,
	}
	switch {
	case pendingVisible(s, v):
		view.CurrentPlayerID = s.CurrentPlayerID
		view.WaitingForHuman = s.WaitingForHuman
		view.ActionPrompt = s.ActionPrompt
		view.ValidTargets = append([]int(nil), s.ValidTargets...)
		view.IsSpeech = s.IsSpeech
	case s.CurrentPlayerID == 0:
		// cohort waiting line
		view.ActionPrompt = s.ActionPrompt
	}
	if view.History == nil {
		view.History = []Entry{}
	}
	if v.God {
		night := s.Night
		view.Night = &night
	}
	for _, p := range s.Players {
		pv := PlayerView{
			ID:               p.ID,
			Name:             p.Name,
			Kind:             p.Kind,
			IsAlive:          p.IsAlive,
			IsSheriff:        p.IsSheriff,
			SheriffCandidate: p.SheriffCandidate,
			DeathReason:      p.DeathReason,
			DeathDay:         p.DeathDay,
		}
		if roleVisible(s, p, v) {
			pv.Role = p.Role
		}
		view.Players = append(view.Players, pv)
	}
	return view
}

func roleVisible(s *GameState, p *Player, v Viewer) bool {
	switch {
	case v.God, s.IsOver(), !p.IsAlive:
		return true
	case p.ID == v.PlayerID:
		return true
	case v.Role == RoleWerewolf && p.Role == RoleWerewolf:
		return true
	}
	return false
}

// publicSteps are the sub-phases the whole table watches.
var publicSteps = map[SubPhase]bool{
	"":               true,
	SubAnnounce:      true,
	SubHunterShoot:   true,
	SubSheriffRun:    true,
	SubSheriffSpeech: true,
	SubSheriffVote:   true,
	SubSpeech:        true,
	SubVote:          true,
	SubLastWords:     true,
}

// pendingVisible reports whether v may see who is being asked and with which
// targets. Night requests would otherwise give away the role being asked.
func pendingVisible(s *GameState, v Viewer) bool {
	switch {
	case v.God, s.IsOver(), publicSteps[s.SubPhase]:
		return true
	case s.CurrentPlayerID == 0:
		return false
	case s.CurrentPlayerID == v.PlayerID:
		return true
	case v.Role == RoleWerewolf && (s.SubPhase == SubWerewolfDiscuss || s.SubPhase == SubWerewolf):
		return true
	}
	return false
}
