package deduction

import (
	"errors"
	"fmt"
	"slices"

	"example.com/cluedo-mansion/internal/cards"
	"example.com/cluedo-mansion/internal/config"

	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownCard   = errors.New("unknown card")
	ErrUnknownHolder = errors.New("unknown holder")
)

// ContradictionError reports that the facts fed to a matrix left a card with
// no possible holder, or otherwise disagree. It is raised with panic: a
// contradiction means the engine or its input is broken, not that the game
// took an unusual turn.
type ContradictionError struct {
	Card   string
	Holder cards.Holder
	Reason string
}

func (e *ContradictionError) Error() string {
	return fmt.Sprintf("matrix contradiction on %q (%s): %s", e.Card, e.Holder, e.Reason)
}

// Reader is the read-only face of a matrix handed to strategies and renderers.
type Reader interface {
	Self() cards.Holder
	Players() int
	Cards() []string
	Holders() []cards.Holder
	Possible(card string, h cards.Holder) bool
	CardOwner(card string) (cards.Holder, bool)
	PossibleHolders(card string) []cards.Holder
	EnvelopeCandidates(cat cards.Category) []string
	EnvelopeComplete() (cards.Triple, bool)
	HandSize(seat int) int
	Snapshot() Snapshot
}

// Refutation records that a holder showed one of several cards to someone
// else, without saying which.
type Refutation struct {
	Holder cards.Holder
	Cards  []string
}

// Matrix tracks, for one player, which holders could still have each card.
// poss[card][col] is true while the card could be with that holder; the last
// column is the envelope. Cells only ever go from true to false.
//
// Propagation runs three rules to a fixed point: a card with one possible
// holder is owned by it; an opponent whose possible cards equal their hand
// size (with at least one confirmed) owns them all, and one whose confirmed
// cards fill their hand owns nothing else; a category with one envelope
// candidate puts it in the envelope, and a confirmed envelope card rules out
// the rest of its category. Unresolved refutations are pruned alongside.
type Matrix struct {
	cfg       *config.GameConfig
	players   int
	self      cards.Holder
	handSizes []int
	index     map[string]int
	poss      [][]bool
	pending   []Refutation
	log       logrus.FieldLogger
}

// New builds the matrix for seat self, who holds hand, in a game of players seats.
func New(cfg *config.GameConfig, players, self int, hand []string, log logrus.FieldLogger) (*Matrix, error) {
	return NewWithHandSizes(cfg, config.HandSizes(len(cfg.AllCards), players), self, hand, log)
}

// NewWithHandSizes is New for a deal where seat i was given sizes[i] cards.
func NewWithHandSizes(cfg *config.GameConfig, sizes []int, self int, hand []string, log logrus.FieldLogger) (*Matrix, error) {
	players := len(sizes)
	if self < 0 || self >= players {
		return nil, fmt.Errorf("seat %d of %d: %w", self, players, ErrUnknownHolder)
	}
	total := 0
	for seat, n := range sizes {
		if n < 0 {
			return nil, fmt.Errorf("seat %d has %d cards", seat, n)
		}
		total += n
	}
	if total != len(cfg.AllCards)-3 {
		return nil, fmt.Errorf("hand sizes add up to %d, but %d cards are dealt", total, len(cfg.AllCards)-3)
	}
	m := &Matrix{
		cfg:       cfg,
		players:   players,
		self:      cards.Player(self),
		handSizes: slices.Clone(sizes),
		index:     make(map[string]int, len(cfg.AllCards)),
		poss:      make([][]bool, len(cfg.AllCards)),
		log:       log,
	}
	for i, card := range cfg.AllCards {
		m.index[card] = i
		row := make([]bool, players+1)
		for j := range row {
			row[j] = true
		}
		m.poss[i] = row
	}

	inHand := make(map[string]bool, len(hand))
	for _, card := range hand {
		if _, ok := m.index[card]; !ok {
			return nil, fmt.Errorf("hand card %q: %w", card, ErrUnknownCard)
		}
		inHand[card] = true
	}
	me := m.col(m.self)
	for i, card := range cfg.AllCards {
		if inHand[card] {
			m.assign(i, me)
		} else {
			m.clear(i, me)
		}
	}
	m.Propagate()
	m.log.Debugf("Deduction matrix initialized for %s with %d cards in hand.", m.self, len(hand))
	return m, nil
}

func (m *Matrix) col(h cards.Holder) int {
	if h == cards.Envelope {
		return m.players
	}
	return int(h)
}

func (m *Matrix) holder(col int) cards.Holder {
	if col == m.players {
		return cards.Envelope
	}
	return cards.Player(col)
}

func (m *Matrix) lookup(card string, h cards.Holder) (int, int, error) {
	i, ok := m.index[card]
	if !ok {
		return 0, 0, fmt.Errorf("%q: %w", card, ErrUnknownCard)
	}
	if h != cards.Envelope && (int(h) < 0 || int(h) >= m.players) {
		return 0, 0, fmt.Errorf("%s: %w", h, ErrUnknownHolder)
	}
	return i, m.col(h), nil
}

// SetHolder asserts that card is with h. Asserting a holder already ruled out
// panics with a ContradictionError.
func (m *Matrix) SetHolder(card string, h cards.Holder) error {
	i, c, err := m.lookup(card, h)
	if err != nil {
		return err
	}
	if m.assign(i, c) {
		m.log.Debugf("Learned that '%s' is with %s.", card, h)
	}
	m.Propagate()
	return nil
}

// Eliminate asserts that card is not with h.
func (m *Matrix) Eliminate(card string, h cards.Holder) error {
	i, c, err := m.lookup(card, h)
	if err != nil {
		return err
	}
	if m.poss[i][c] {
		m.clear(i, c)
		m.Propagate()
	}
	return nil
}

// RecordRefutation notes that h holds at least one of the given cards.
func (m *Matrix) RecordRefutation(h cards.Holder, shown []string) error {
	r := Refutation{Holder: h}
	for _, card := range shown {
		if _, _, err := m.lookup(card, h); err != nil {
			return err
		}
		r.Cards = append(r.Cards, card)
	}
	m.pending = append(m.pending, r)
	m.log.Debugf("Noted that %s holds one of %v.", h, r.Cards)
	m.Propagate()
	return nil
}

// Pending returns the refutations not yet resolved to a single card.
func (m *Matrix) Pending() []Refutation {
	out := make([]Refutation, len(m.pending))
	copy(out, m.pending)
	return out
}

// assign makes col the sole possible holder of card i.
func (m *Matrix) assign(i, col int) bool {
	if !m.poss[i][col] {
		panic(&ContradictionError{Card: m.cfg.AllCards[i], Holder: m.holder(col), Reason: "holder was already ruled out"})
	}
	changed := false
	for j := range m.poss[i] {
		if j != col && m.poss[i][j] {
			m.poss[i][j] = false
			changed = true
		}
	}
	return changed
}

// clear rules col out for card i.
func (m *Matrix) clear(i, col int) bool {
	if !m.poss[i][col] {
		return false
	}
	m.poss[i][col] = false
	if m.count(i) == 0 {
		panic(&ContradictionError{Card: m.cfg.AllCards[i], Holder: m.holder(col), Reason: "no holder left"})
	}
	return true
}

func (m *Matrix) count(i int) int {
	n := 0
	for _, ok := range m.poss[i] {
		if ok {
			n++
		}
	}
	return n
}

func (m *Matrix) owner(i int) (int, bool) {
	found := -1
	for j, ok := range m.poss[i] {
		if !ok {
			continue
		}
		if found >= 0 {
			return -1, false
		}
		found = j
	}
	return found, found >= 0
}

// Propagate applies the deduction rules until a full pass changes nothing.
func (m *Matrix) Propagate() {
	for {
		changed := m.singletons()
		changed = m.cardinality() || changed
		changed = m.envelopeByCategory() || changed
		changed = m.resolveRefutations() || changed
		if !changed {
			return
		}
	}
}

// singletons guards the no-empty-row invariant. A row with one true cell is
// already exclusive, so this rule never changes anything by itself.
func (m *Matrix) singletons() bool {
	for i := range m.poss {
		if m.count(i) == 0 {
			panic(&ContradictionError{Card: m.cfg.AllCards[i], Holder: cards.Envelope, Reason: "no holder left"})
		}
	}
	return false
}

func (m *Matrix) cardinality() bool {
	changed := false
	for seat := 0; seat < m.players; seat++ {
		if cards.Player(seat) == m.self {
			continue
		}
		size := m.handSizes[seat]
		var possible, confirmed []int
		for i := range m.poss {
			if !m.poss[i][seat] {
				continue
			}
			possible = append(possible, i)
			if m.count(i) == 1 {
				confirmed = append(confirmed, i)
			}
		}

		if len(possible) == size && len(confirmed) > 0 && len(confirmed) < size {
			for _, i := range possible {
				if m.assign(i, seat) {
					m.log.Debugf("Hand of %s is full: '%s' must be theirs.", cards.Player(seat), m.cfg.AllCards[i])
					changed = true
				}
			}
			continue
		}
		if len(confirmed) == size {
			for _, i := range possible {
				if m.count(i) > 1 && m.clear(i, seat) {
					m.log.Debugf("Hand of %s is known: '%s' is not theirs.", cards.Player(seat), m.cfg.AllCards[i])
					changed = true
				}
			}
		}
	}
	return changed
}

func (m *Matrix) envelopeByCategory() bool {
	changed := false
	env := m.players
	for _, cat := range cards.Categories {
		var candidates []int
		solved := -1
		for _, card := range m.cfg.CardListForCategory(cat) {
			i := m.index[card]
			if !m.poss[i][env] {
				continue
			}
			candidates = append(candidates, i)
			if m.count(i) == 1 {
				solved = i
			}
		}
		switch {
		case len(candidates) == 0:
			panic(&ContradictionError{Card: cat.String(), Holder: cards.Envelope, Reason: "no envelope candidate left in category"})
		case solved >= 0:
			for _, i := range candidates {
				if i != solved && m.clear(i, env) {
					changed = true
				}
			}
		case len(candidates) == 1:
			if m.assign(candidates[0], env) {
				m.log.Debugf("Only '%s' is left for the envelope in %s.", m.cfg.AllCards[candidates[0]], cat)
				changed = true
			}
		}
	}
	return changed
}

func (m *Matrix) resolveRefutations() bool {
	changed := false
	remaining := m.pending[:0]
	for _, r := range m.pending {
		col := m.col(r.Holder)
		var left []string
		satisfied := false
		for _, card := range r.Cards {
			i := m.index[card]
			if !m.poss[i][col] {
				continue
			}
			if m.count(i) == 1 {
				satisfied = true
			}
			left = append(left, card)
		}
		switch {
		case satisfied:
			changed = true
		case len(left) == 0:
			panic(&ContradictionError{Card: fmt.Sprint(r.Cards), Holder: r.Holder, Reason: "refutation has no card left"})
		case len(left) == 1:
			m.log.Debugf("Solved a refutation: %s must have shown '%s'.", r.Holder, left[0])
			m.assign(m.index[left[0]], col)
			changed = true
		default:
			if len(left) < len(r.Cards) {
				changed = true
			}
			remaining = append(remaining, Refutation{Holder: r.Holder, Cards: left})
		}
	}
	m.pending = remaining
	return changed
}

func (m *Matrix) Self() cards.Holder { return m.self }
func (m *Matrix) Players() int       { return m.players }
func (m *Matrix) Cards() []string    { return m.cfg.AllCards }

// Holders lists the seats followed by the envelope.
func (m *Matrix) Holders() []cards.Holder {
	hs := make([]cards.Holder, 0, m.players+1)
	for seat := 0; seat < m.players; seat++ {
		hs = append(hs, cards.Player(seat))
	}
	return append(hs, cards.Envelope)
}

// HandSize returns the number of cards dealt to a seat.
func (m *Matrix) HandSize(seat int) int { return m.handSizes[seat] }

// Possible reports whether card could be with h. Unknown names are never possible.
func (m *Matrix) Possible(card string, h cards.Holder) bool {
	i, c, err := m.lookup(card, h)
	if err != nil {
		return false
	}
	return m.poss[i][c]
}

// CardOwner returns the holder when exactly one is possible.
func (m *Matrix) CardOwner(card string) (cards.Holder, bool) {
	i, ok := m.index[card]
	if !ok {
		return 0, false
	}
	col, ok := m.owner(i)
	if !ok {
		return 0, false
	}
	return m.holder(col), true
}

// PossibleHolders lists every holder card could still be with.
func (m *Matrix) PossibleHolders(card string) []cards.Holder {
	i, ok := m.index[card]
	if !ok {
		return nil
	}
	var hs []cards.Holder
	for j, ok := range m.poss[i] {
		if ok {
			hs = append(hs, m.holder(j))
		}
	}
	return hs
}

// EnvelopeCandidates lists the cards of a category that could still be in the envelope.
func (m *Matrix) EnvelopeCandidates(cat cards.Category) []string {
	var out []string
	for _, card := range m.cfg.CardListForCategory(cat) {
		if m.poss[m.index[card]][m.players] {
			out = append(out, card)
		}
	}
	return out
}

// EnvelopeComplete returns the solution once every category has exactly one
// card confirmed in the envelope.
func (m *Matrix) EnvelopeComplete() (cards.Triple, bool) {
	var found [3]string
	for _, cat := range cards.Categories {
		n := 0
		for _, card := range m.cfg.CardListForCategory(cat) {
			if h, ok := m.CardOwner(card); ok && h == cards.Envelope {
				found[cat] = card
				n++
			}
		}
		if n != 1 {
			return cards.Triple{}, false
		}
	}
	return cards.Triple{Suspect: found[cards.CategorySuspect], Weapon: found[cards.CategoryWeapon], Room: found[cards.CategoryRoom]}, true
}

// Clone returns an independent copy sharing only the catalogue and logger.
func (m *Matrix) Clone() *Matrix {
	c := *m
	c.handSizes = append([]int(nil), m.handSizes...)
	c.poss = make([][]bool, len(m.poss))
	for i, row := range m.poss {
		c.poss[i] = append([]bool(nil), row...)
	}
	c.pending = make([]Refutation, len(m.pending))
	for i, r := range m.pending {
		c.pending[i] = Refutation{Holder: r.Holder, Cards: append([]string(nil), r.Cards...)}
	}
	return &c
}

// Snapshot copies the full card-by-holder table.
func (m *Matrix) Snapshot() Snapshot {
	s := Snapshot{
		Cards:   append([]string(nil), m.cfg.AllCards...),
		Holders: m.Holders(),
		Cells:   make([][]bool, len(m.poss)),
	}
	for i, row := range m.poss {
		s.Cells[i] = append([]bool(nil), row...)
	}
	return s
}
