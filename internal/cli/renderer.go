package cli

import (
	"fmt"
	"io"
	"sync"

	"werewolf-toolbox/internal/events"
	"werewolf-toolbox/internal/models"
)

// Renderer implements events.Listener and prints the match from one seat's
// point of view. It runs on the engine goroutine, so it never blocks: prompts
// for the human seat are handed off on a one-slot channel.
type Renderer struct {
	out      io.Writer
	humanID  int
	god      bool
	mu       sync.Mutex
	viewer   models.Viewer
	seen     int
	lastSub  models.SubPhase
	prompts  chan *models.GameState
	finished chan struct{}
}

// NewRenderer creates a renderer for humanID, or for the god view when
// humanID is 0 or god is set.
func NewRenderer(out io.Writer, humanID int, god bool) *Renderer {
	r := &Renderer{
		out:      out,
		humanID:  humanID,
		god:      god || humanID == 0,
		prompts:  make(chan *models.GameState, 1),
		finished: make(chan struct{}),
	}
	if r.god {
		r.viewer = models.GodViewer
	}
	return r
}

// Prompts delivers snapshots in which the engine waits on the human seat.
func (r *Renderer) Prompts() <-chan *models.GameState { return r.prompts }

// Finished is closed once the match is over.
func (r *Renderer) Finished() <-chan struct{} { return r.finished }

// HandleEvent is the central dispatcher for rendering events.
func (r *Renderer) HandleEvent(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event := e.(type) {
	case events.GameReadyEvent:
		if !r.god {
			r.viewer = models.ViewerFor(event.State.Player(r.humanID))
		}
		C.Header.Fprintln(r.out, "--- A new match begins ---")
		RenderRoster(r.out, "Players", event.State.ViewFor(r.viewer))
		if !r.god {
			C.Info.Fprintf(r.out, "You are Player %d, the %s.\n", r.humanID, ColorizeRole(r.viewer.Role))
		}
	case events.StateChangedEvent:
		r.renderState(event.State)
	case events.GameOverEvent:
		r.renderState(event.State)
		r.renderGameResult(event)
		close(r.finished)
	}
}

func (r *Renderer) renderState(s *models.GameState) {
	if s.SubPhase != r.lastSub {
		switch s.SubPhase {
		case models.SubGuard:
			C.Header.Fprintf(r.out, "\n=== Night %d ===\n", s.Day)
		case models.SubAnnounce:
			C.Header.Fprintf(r.out, "\n=== Day %d ===\n", s.Day)
		}
		r.lastSub = s.SubPhase
	}

	visible := s.History.VisibleTo(r.viewer)
	for _, entry := range visible[min(r.seen, len(visible)):] {
		fmt.Fprintln(r.out, FormatEntry(entry))
	}
	r.seen = len(visible)

	if s.WaitingForHuman && s.CurrentPlayerID == r.humanID && r.humanID != 0 {
		select {
		case r.prompts <- s:
		default:
		}
	}
}

func (r *Renderer) renderGameResult(event events.GameOverEvent) {
	C.Header.Fprintln(r.out, "\n--- GAME OVER ---")
	switch event.Winner {
	case models.TeamWerewolves:
		C.Evil.Fprintln(r.out, "The Werewolves win!")
	case models.TeamVillagers:
		C.Good.Fprintln(r.out, "The Villagers win!")
	default:
		C.Warn.Fprintln(r.out, "The match ended without a winner.")
	}
	RenderRoster(r.out, "Final roles", event.State.ViewFor(models.GodViewer))
}
