package game

import (
	"math/rand"
	"sort"
)

// TieBreak decides what happens when several targets share the top count.
type TieBreak int

const (
	// TieBreakNone yields no winner on a tie.
	TieBreakNone TieBreak = iota
	// TieBreakRandom picks one of the tied targets.
	TieBreakRandom
)

// Chooser defines an interface for selecting one id from a set of tied ids.
// This allows us to swap out random and deterministic selection strategies.
type Chooser interface {
	Choose(ids []int) int
}

// RandomChooser picks uniformly at random.
type RandomChooser struct {
	rand *rand.Rand
}

func NewRandomChooser(rand *rand.Rand) *RandomChooser {
	return &RandomChooser{rand: rand}
}

func (r *RandomChooser) Choose(ids []int) int {
	if len(ids) == 0 {
		return 0
	}
	return ids[r.rand.Intn(len(ids))]
}

// DeterministicChooser always picks the lowest id. This is used for predictable testing.
type DeterministicChooser struct{}

func (d *DeterministicChooser) Choose(ids []int) int {
	if len(ids) == 0 {
		return 0
	}
	return ids[0]
}

// Majority returns the id with the most votes. On a tie it returns 0 under
// TieBreakNone, or asks chooser to pick among the tied ids (sorted ascending)
// under TieBreakRandom. No votes means no winner.
func Majority(votes []int, tieBreak TieBreak, chooser Chooser) int {
	counts := make(map[int]int)
	for _, v := range votes {
		counts[v]++
	}

	top := 0
	var tied []int
	for id, c := range counts {
		switch {
		case c > top:
			top = c
			tied = []int{id}
		case c == top:
			tied = append(tied, id)
		}
	}

	switch {
	case len(tied) == 1:
		return tied[0]
	case len(tied) > 1 && tieBreak == TieBreakRandom:
		sort.Ints(tied)
		return chooser.Choose(tied)
	default:
		return 0
	}
}
