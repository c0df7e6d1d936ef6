package game

import "werewolf-toolbox/internal/models"

// CheckWinner evaluates the terminal conditions in order: no werewolves left
// means the villagers win; otherwise no plain villagers, or no powered good
// roles, means the werewolves win.
func CheckWinner(players []*models.Player) (models.Team, bool) {
	var wolves, villagers, powered int
	for _, p := range players {
		if !p.IsAlive {
			continue
		}
		switch {
		case p.Role == models.RoleWerewolf:
			wolves++
		case p.Role == models.RoleVillager:
			villagers++
		case p.Role.IsPowered():
			powered++
		}
	}

	if wolves == 0 {
		return models.TeamVillagers, true
	}
	if villagers == 0 || powered == 0 {
		return models.TeamWerewolves, true
	}
	return "", false
}
