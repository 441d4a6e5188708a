package ai

import (
	"math/rand"
	"sort"
)

// Chooser defines an interface for tie-breaking among equally valid options.
// This allows us to swap out random and deterministic selection strategies.
type Chooser interface {
	Choose(options []string) string
	// Index picks one of n positions.
	Index(n int) int
}

// --- Implementations ---

// RandomChooser implements the Chooser interface by picking an element randomly.
type RandomChooser struct {
	rand *rand.Rand
}

// NewRandomChooser creates a new random chooser.
func NewRandomChooser(rand *rand.Rand) *RandomChooser {
	return &RandomChooser{rand: rand}
}

func (r *RandomChooser) Choose(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[r.rand.Intn(len(options))]
}

func (r *RandomChooser) Index(n int) int {
	if n <= 0 {
		return 0
	}
	return r.rand.Intn(n)
}

// DeterministicChooser implements the Chooser interface by always picking the first
// option alphabetically. This is used for predictable testing.
type DeterministicChooser struct{}

func (d *DeterministicChooser) Choose(options []string) string {
	if len(options) == 0 {
		return ""
	}
	sorted := append([]string(nil), options...)
	sort.Strings(sorted)
	return sorted[0]
}

func (d *DeterministicChooser) Index(int) int { return 0 }
