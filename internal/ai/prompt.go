package ai

import (
	"fmt"
	"strings"

	"werewolf-toolbox/internal/models"
	"werewolf-toolbox/internal/player"
)

// RoleDescription returns the briefing for role. Werewolves get their pack
// spliced into the text.
func RoleDescription(role models.Role, pack []*models.Player) string {
	switch role {
	case models.RoleWerewolf:
		return fmt.Sprintf("You are a Werewolf. You wake up at night to kill a player. Try to blend in during the day. Your fellow werewolves are: %s", labels(pack))
	case models.RoleSeer:
		return "You are the Seer. Every night you can check one player to see if they are a Werewolf or Good."
	case models.RoleWitch:
		return "You are the Witch. You have one poison and one antidote. You will be told who was killed at night and can choose to save them, or you can poison someone."
	case models.RoleHunter:
		return "You are the Hunter. If you are killed or exiled, you can shoot one player to take them down with you."
	case models.RoleGuard:
		return "You are the Guard. Every night you can protect one player from being killed. You cannot protect the same player two nights in a row."
	default:
		return "You are a Villager. You have no special abilities. Find the werewolves and vote them out."
	}
}

// BuildPrompt renders the system prompt for one action request.
func BuildPrompt(req player.Request) string {
	p := req.Player
	s := req.State

	roleDesc := RoleDescription(p.Role, nil)
	if p.Role == models.RoleWerewolf {
		pack := s.WithRole(models.RoleWerewolf)
		roleDesc = RoleDescription(p.Role, pack)
		roleDesc += fmt.Sprintf("\n[SECRET] Your Werewolf teammates are: %s. Do not attack them!", labels(pack))
	}

	var history strings.Builder
	for _, e := range s.History.VisibleTo(models.ViewerFor(p)) {
		fmt.Fprintf(&history, "[Day %d] %s: %s\n", e.Day, e.Category, e.Message)
	}

	targets := "None"
	if len(req.ValidTargets) > 0 {
		targets = joinInts(req.ValidTargets)
	}
	speechField := ""
	if req.IsSpeech {
		speechField = "What you say aloud to the group"
	}
	actionField := "0"
	if len(req.ValidTargets) > 0 {
		actionField = "An integer from the valid targets list"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are playing a %d-player game of Werewolf.\n", len(s.Players))
	fmt.Fprintf(&b, "Your Player ID: %d\nYour Name: %s\nYour Role: %s\n\n", p.ID, p.Name, p.Role)
	fmt.Fprintf(&b, "Role Description:\n%s\n\n", roleDesc)
	fmt.Fprintf(&b, "Game State:\nPhase: %s - %s (Day %d)\n", s.Phase, s.SubPhase, s.Day)
	fmt.Fprintf(&b, "Alive Players: %s\n\n", labels(s.Alive()))
	fmt.Fprintf(&b, "History (What you know):\n%s\n", history.String())
	fmt.Fprintf(&b, "Instruction:\n%s\n", req.Prompt)
	fmt.Fprintf(&b, "Valid targets (Player IDs): %s (Use 0 to skip/abstain/no target).\n\n", targets)
	b.WriteString("CRITICAL INSTRUCTION:\nYou MUST respond with ONLY a valid JSON object.\n")
	b.WriteString("The JSON object must have exactly these keys:\n")
	fmt.Fprintf(&b, "{\n  \"thought\": \"Your internal reasoning for your action\",\n  \"speech\": %q,\n  \"action\": %s\n}", speechField, actionField)
	return b.String()
}

func labels(ps []*models.Player) string {
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		parts = append(parts, p.Label())
	}
	return strings.Join(parts, ", ")
}

func joinInts(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprint(id))
	}
	return strings.Join(parts, ", ")
}
