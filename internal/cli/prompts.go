package cli

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"werewolf-toolbox/internal/ai"
	"werewolf-toolbox/internal/models"
)

// C holds pre-configured color objects for printing to the console.
var C = struct {
	Good, Evil, Info, Warn, Header, Prompt, Speech, Secret, Thought *color.Color
}{
	Good:    color.New(color.FgGreen),
	Evil:    color.New(color.FgRed),
	Info:    color.New(color.FgCyan),
	Warn:    color.New(color.FgHiYellow),
	Header:  color.New(color.FgWhite, color.Bold),
	Prompt:  color.New(color.FgHiWhite),
	Speech:  color.New(color.FgWhite),
	Secret:  color.New(color.FgYellow),
	Thought: color.New(color.FgMagenta),
}

// CategoryColors maps history categories to their display color.
var CategoryColors = map[models.Category]*color.Color{
	models.CategorySystem:  C.Info,
	models.CategorySpeech:  C.Speech,
	models.CategoryAction:  C.Secret,
	models.CategoryThought: C.Thought,
}

// ColorizeRole returns a role name colored by team.
func ColorizeRole(r models.Role) string {
	switch r {
	case "":
		return "?"
	case models.RoleWerewolf:
		return C.Evil.Sprint(r)
	default:
		return C.Good.Sprint(r)
	}
}

// FormatEntry renders one history line.
func FormatEntry(e models.Entry) string {
	c, ok := CategoryColors[e.Category]
	if !ok {
		c = C.Info
	}
	line := fmt.Sprintf("[Day %d] %s", e.Day, e.Message)
	if e.Scope != nil {
		line += " (private)"
	}
	return c.Sprint(line)
}

// RenderRoster prints the seats as the viewer sees them.
func RenderRoster(w io.Writer, title string, v models.View) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"ID", "Name", "Kind", "Role", "Status"})
	for _, p := range v.Players {
		status := C.Good.Sprint("alive")
		if !p.IsAlive {
			status = C.Evil.Sprintf("%s (day %d)", p.DeathReason, p.DeathDay)
		}
		if p.IsSheriff {
			status += " ★"
		}
		t.AppendRow(table.Row{p.ID, p.Name, p.Kind, ColorizeRole(p.Role), status})
	}
	t.SetStyle(table.StyleRounded)
	t.Style().Title.Align = text.AlignCenter
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, Align: text.AlignRight}})
	t.Render()
}

// RenderRoles prints the deck with each role's briefing.
func RenderRoles(w io.Writer, deck []models.Role) {
	counts := make(map[models.Role]int)
	var order []models.Role
	for _, r := range deck {
		if counts[r] == 0 {
			order = append(order, r)
		}
		counts[r]++
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Deck (%d seats)", len(deck)))
	t.AppendHeader(table.Row{"Role", "Count", "Description"})
	t.AppendSeparator()
	for _, r := range order {
		desc := ai.RoleDescription(r, nil)
		if r == models.RoleWerewolf {
			desc, _, _ = strings.Cut(desc, " Your fellow")
		}
		t.AppendRow(table.Row{ColorizeRole(r), counts[r], text.WrapSoft(desc, 60)})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

// --- Prompting ---

func (c *CLI) promptForString(prompt string) (string, error) {
	C.Prompt.Fprint(c.out, prompt)
	input, err := c.line.Prompt("")
	if err != nil {
		return "", err
	}
	trimmed := strings.TrimSpace(input)
	if trimmed != "" {
		c.line.AppendHistory(trimmed)
	}
	return trimmed, nil
}

// promptForTarget reads a player id until it is 0 or one of valid.
func (c *CLI) promptForTarget(prompt string, valid []int) (int, error) {
	for {
		input, err := c.promptForString(prompt)
		if err != nil {
			return 0, err
		}
		if input == "" {
			return 0, nil
		}
		num, err := strconv.Atoi(input)
		if err == nil && (num == 0 || slices.Contains(valid, num)) {
			return num, nil
		}
		C.Warn.Fprintf(c.out, "Invalid target. Choose one of: %s\n", joinTargets(valid))
	}
}

func joinTargets(valid []int) string {
	parts := make([]string, len(valid))
	for i, id := range valid {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
