package cli

import (
	"errors"
	"fmt"
	"slices"

	"example.com/cluedo-mansion/internal/ai"
	"example.com/cluedo-mansion/internal/cards"
	"example.com/cluedo-mansion/internal/config"
	"example.com/cluedo-mansion/internal/deduction"
	"example.com/cluedo-mansion/internal/history"

	"github.com/sirupsen/logrus"
)

// ErrInconsistent is returned when a logged event disagrees with what is
// already known. The notes are left as they were before the event.
var ErrInconsistent = errors.New("event contradicts the notes")

// Detective keeps one possibility matrix for a player at a physical table.
type Detective struct {
	cfg     *config.GameConfig
	names   []string
	self    int
	hand    []string
	matrix  *deduction.Matrix
	history history.Log
	log     logrus.FieldLogger
}

// NewDetective starts the notes for seat self, holding hand, at a table of
// the named players listed in turn order. firstDealt is the seat that
// received the first card; it decides who holds the odd cards.
func NewDetective(cfg *config.GameConfig, names []string, self, firstDealt int, hand []string, log logrus.FieldLogger) (*Detective, error) {
	if len(names) < 2 {
		return nil, fmt.Errorf("need at least 2 players, got %d", len(names))
	}
	if firstDealt < 0 || firstDealt >= len(names) {
		return nil, fmt.Errorf("unknown seat %d was dealt first", firstDealt)
	}
	sizes := config.HandSizesFrom(len(cfg.AllCards), len(names), firstDealt)
	if self >= 0 && self < len(sizes) && len(hand) != sizes[self] {
		return nil, fmt.Errorf("%s should hold %d cards, got %d", names[self], sizes[self], len(hand))
	}
	m, err := deduction.NewWithHandSizes(cfg, sizes, self, hand, log)
	if err != nil {
		return nil, err
	}
	return &Detective{
		cfg:    cfg,
		names:  slices.Clone(names),
		self:   self,
		hand:   slices.Clone(hand),
		matrix: m,
		log:    log,
	}, nil
}

func (d *Detective) Names() []string            { return d.names }
func (d *Detective) Self() int                  { return d.self }
func (d *Detective) Hand() []string             { return d.hand }
func (d *Detective) Config() *config.GameConfig { return d.cfg }
func (d *Detective) Matrix() deduction.Reader   { return d.matrix }

// History returns the logged suggestions, oldest first.
func (d *Detective) History() []history.Suggestion { return d.history.All() }

// passers lists the seats asked before refuter, going clockwise from the
// suggester. With no refuter every other seat passed.
func (d *Detective) passers(suggester, refuter int) []int {
	var out []int
	for i := 1; i < len(d.names); i++ {
		seat := (suggester + i) % len(d.names)
		if seat == refuter {
			break
		}
		out = append(out, seat)
	}
	return out
}

// LogSuggestion records a suggestion made at the table. refuter is
// history.NoRefuter when nobody answered. shown is the card handed to this
// player, and only matters when this player made the suggestion.
func (d *Detective) LogSuggestion(suggester int, t cards.Triple, refuter int, shown string) error {
	if !d.cfg.ValidTriple(t) {
		return fmt.Errorf("%s is not one card of each category", t)
	}
	if suggester < 0 || suggester >= len(d.names) {
		return fmt.Errorf("unknown seat %d", suggester)
	}
	if refuter == suggester || refuter < history.NoRefuter || refuter >= len(d.names) {
		return fmt.Errorf("seat %d cannot answer this suggestion", refuter)
	}
	if shown != "" && !t.Contains(shown) {
		return fmt.Errorf("%q was not part of the suggestion", shown)
	}
	passed := d.passers(suggester, refuter)

	for _, seat := range passed {
		if seat == d.self {
			for _, card := range t.Cards() {
				if slices.Contains(d.hand, card) {
					return fmt.Errorf("%w: you hold %s and could not have passed", ErrInconsistent, card)
				}
			}
			continue
		}
		for _, card := range t.Cards() {
			if owner, ok := d.matrix.CardOwner(card); ok && owner == cards.Player(seat) {
				return fmt.Errorf("%w: %s holds %s and could not have passed", ErrInconsistent, d.names[seat], card)
			}
		}
	}
	if shown != "" && suggester == d.self && !d.matrix.Possible(shown, cards.Player(refuter)) {
		return fmt.Errorf("%w: %s cannot hold %s", ErrInconsistent, d.names[refuter], shown)
	}

	err := d.apply(func() error {
		for _, seat := range passed {
			if seat == d.self {
				continue
			}
			for _, card := range t.Cards() {
				if err := d.matrix.Eliminate(card, cards.Player(seat)); err != nil {
					return err
				}
			}
		}
		switch {
		case refuter == history.NoRefuter || refuter == d.self:
		case suggester == d.self && shown != "":
			return d.matrix.SetHolder(shown, cards.Player(refuter))
		default:
			return d.matrix.RecordRefutation(cards.Player(refuter), t.Cards())
		}
		return nil
	})
	if err != nil {
		return err
	}

	entry := history.Suggestion{Turn: d.history.Len() + 1, Suggester: suggester, Triple: t, RefutedBy: refuter, Passed: passed}
	if suggester == d.self {
		entry.Shown = shown
	}
	entry = d.history.Add(entry)
	d.log.Infof("Logged %s.", entry)
	return nil
}

// Reveal records that seat holds card, however it came to light.
func (d *Detective) Reveal(seat int, card string) error {
	if seat < 0 || seat >= len(d.names) {
		return fmt.Errorf("unknown seat %d", seat)
	}
	if _, ok := d.cfg.Category(card); !ok {
		return fmt.Errorf("unknown card %q", card)
	}
	if !d.matrix.Possible(card, cards.Player(seat)) {
		return fmt.Errorf("%w: %s cannot hold %s", ErrInconsistent, d.names[seat], card)
	}
	return d.apply(func() error { return d.matrix.SetHolder(card, cards.Player(seat)) })
}

// apply runs a matrix update and turns a contradiction into an error,
// restoring the previous notes.
func (d *Detective) apply(update func() error) (err error) {
	backup := d.matrix.Clone()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if ce, ok := r.(*deduction.ContradictionError); ok {
			d.matrix = backup
			d.log.Warnf("Rejected event: %v", ce)
			err = fmt.Errorf("%w: %v", ErrInconsistent, ce)
			return
		}
		panic(r)
	}()
	return update()
}

// Advice proposes a suggestion made of cards that could still be in the
// envelope, with ties broken by the chooser.
func (d *Detective) Advice(chooser ai.Chooser) cards.Triple {
	var t cards.Triple
	for _, cat := range cards.Categories {
		candidates := d.matrix.EnvelopeCandidates(cat)
		if len(candidates) == 0 {
			candidates = d.cfg.CardListForCategory(cat)
		}
		t = t.With(cat, chooser.Choose(candidates))
	}
	return t
}

// Solved returns the envelope once every category is pinned down.
func (d *Detective) Solved() (cards.Triple, bool) { return d.matrix.EnvelopeComplete() }
