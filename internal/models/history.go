package models

import "encoding/json"

// Category classifies a history entry.
type Category string

const (
	CategorySystem  Category = "System"
	CategorySpeech  Category = "Speech"
	CategoryAction  Category = "Action"
	CategoryThought Category = "Thought"
)

// Scope restricts an entry to one role or one player. A zero Scope is public.
type Scope struct {
	Role     Role `json:"role,omitempty"`
	PlayerID int  `json:"playerId,omitempty"`
}

// ScopeRole limits an entry to players holding role r.
func ScopeRole(r Role) *Scope { return &Scope{Role: r} }

// ScopePlayer limits an entry to a single player.
func ScopePlayer(id int) *Scope { return &Scope{PlayerID: id} }

// Entry is one line of the match history.
type Entry struct {
	Day      int      `json:"day"`
	Category Category `json:"category"`
	Message  string   `json:"message"`
	PlayerID int      `json:"playerId,omitempty"`
	Scope    *Scope   `json:"privateFor,omitempty"`
}

// Viewer is the observer a history read is evaluated for.
type Viewer struct {
	God      bool
	PlayerID int
	Role     Role
}

// GodViewer sees every entry.
var GodViewer = Viewer{God: true}

// ViewerFor builds the viewer for a seated player.
func ViewerFor(p *Player) Viewer {
	return Viewer{PlayerID: p.ID, Role: p.Role}
}

// VisibleTo reports whether v may read the entry.
func (e Entry) VisibleTo(v Viewer) bool {
	if v.God {
		return true
	}
	if e.Category == CategoryThought {
		return false
	}
	if e.Scope == nil {
		return true
	}
	if e.Scope.Role != "" && e.Scope.Role == v.Role {
		return true
	}
	return e.Scope.PlayerID != 0 && e.Scope.PlayerID == v.PlayerID
}

// History is the append-only match log. Entries are never edited once appended.
type History struct {
	entries []Entry
}

// Append adds an entry to the end of the log.
func (h *History) Append(e Entry) {
	if e.Scope != nil {
		sc := *e.Scope
		e.Scope = &sc
	}
	h.entries = append(h.entries, e)
}

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// Entries returns a copy of every entry.
func (h *History) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// VisibleTo returns the entries v may read, in log order.
func (h *History) VisibleTo(v Viewer) []Entry {
	var out []Entry
	for _, e := range h.entries {
		if e.VisibleTo(v) {
			out = append(out, e)
		}
	}
	return out
}

// MarshalJSON exposes the log as a plain array.
func (h History) MarshalJSON() ([]byte, error) {
	if h.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h.entries)
}
