// Package history keeps the public record of suggestions made during a game.
package history

import (
	"fmt"

	"example.com/cluedo-mansion/internal/cards"
)

// NoRefuter marks a suggestion nobody could answer.
const NoRefuter = -1

// Suggestion is one entry in the log. Shown is only set on the copy handed to
// the suggester; the public record never carries the refuting card.
type Suggestion struct {
	Seq       int
	Turn      int
	Suggester int
	Triple    cards.Triple
	RefutedBy int
	Passed    []int
	Shown     string
}

// Refuted reports whether any player answered the suggestion.
func (s Suggestion) Refuted() bool { return s.RefutedBy != NoRefuter }

func (s Suggestion) String() string {
	if !s.Refuted() {
		return fmt.Sprintf("#%d P%d suggested %s: no refutation", s.Seq, s.Suggester, s.Triple)
	}
	return fmt.Sprintf("#%d P%d suggested %s: refuted by P%d", s.Seq, s.Suggester, s.Triple, s.RefutedBy)
}

// Public returns the entry with the refuting card stripped.
func (s Suggestion) Public() Suggestion {
	s.Shown = ""
	s.Passed = append([]int(nil), s.Passed...)
	return s
}

// Log is an append-only list of suggestions in the order they were made.
type Log struct {
	entries []Suggestion
}

// Add appends a suggestion and returns it with its sequence number set.
func (l *Log) Add(s Suggestion) Suggestion {
	s.Seq = len(l.entries) + 1
	l.entries = append(l.entries, s.Public())
	return s
}

// Len is the number of suggestions recorded.
func (l *Log) Len() int { return len(l.entries) }

// All returns a copy of every entry, oldest first.
func (l *Log) All() []Suggestion {
	out := make([]Suggestion, len(l.entries))
	for i, s := range l.entries {
		out[i] = s.Public()
	}
	return out
}

// ForPlayer returns the suggestions a seat made.
func (l *Log) ForPlayer(seat int) []Suggestion {
	return l.filter(func(s Suggestion) bool { return s.Suggester == seat })
}

// Involving returns the suggestions naming a card.
func (l *Log) Involving(card string) []Suggestion {
	return l.filter(func(s Suggestion) bool { return s.Triple.Contains(card) })
}

// RefutedBy returns the suggestions a seat answered.
func (l *Log) RefutedBy(seat int) []Suggestion {
	return l.filter(func(s Suggestion) bool { return s.RefutedBy == seat })
}

// Last returns the most recent entry.
func (l *Log) Last() (Suggestion, bool) {
	if len(l.entries) == 0 {
		return Suggestion{}, false
	}
	return l.entries[len(l.entries)-1], true
}

func (l *Log) filter(keep func(Suggestion) bool) []Suggestion {
	var out []Suggestion
	for _, s := range l.entries {
		if keep(s) {
			out = append(out, s.Public())
		}
	}
	return out
}
