package game

import (
	"fmt"
	"slices"

	"example.com/cluedo-mansion/internal/board"
	"example.com/cluedo-mansion/internal/cards"
	"example.com/cluedo-mansion/internal/events"
	"example.com/cluedo-mansion/internal/history"
	"example.com/cluedo-mansion/internal/player"
)

// suggestFromPolicy asks the seat's policy for a suggestion, re-asking when it
// names something illegal.
func (g *Game) suggestFromPolicy(seat *Seat, room board.Room, view player.View) error {
	for attempt := 1; ; attempt++ {
		t, ok := seat.Player.ChooseSuggestion(room, view)
		if !ok {
			return nil
		}
		_, err := g.Suggest(seat.Index, t)
		if err == nil {
			return nil
		}
		if attempt == maxDecisionAttempts {
			return err
		}
		g.log.WithField("seat", seat.Index).Warnf("Rejected suggestion (attempt %d): %v", attempt, err)
	}
}

// Suggest resolves a suggestion by seat: the named suspect and weapon are
// brought into the room, then the other active seats are asked in turn order
// until one shows a card. The suggester's matrix learns the shown card and
// that every seat asked before the refuter holds none of the three. The
// returned entry carries the shown card; the public history does not.
func (g *Game) Suggest(seat int, t cards.Triple) (history.Suggestion, error) {
	if g.over {
		return history.Suggestion{}, ErrGameOver
	}
	s := g.seats[seat]
	room, in := g.occ.RoomOf(s.Token)
	switch {
	case !in:
		return history.Suggestion{}, fmt.Errorf("%s is not in a room: %w", s.Player.Name(), ErrIllegalSuggestion)
	case room.Hub:
		return history.Suggestion{}, fmt.Errorf("no suggestions in the %s: %w", room.Name, ErrIllegalSuggestion)
	case t.Room != room.Name:
		return history.Suggestion{}, fmt.Errorf("suggested the %s while in the %s: %w", t.Room, room.Name, ErrIllegalSuggestion)
	case !g.Config.ValidTriple(t):
		return history.Suggestion{}, fmt.Errorf("%s: %w", t, ErrIllegalSuggestion)
	}

	g.phase = PhaseRefute
	g.summon(t, room)
	s.MustExit = true

	entry := history.Suggestion{Turn: g.turn + 1, Suggester: seat, Triple: t, RefutedBy: history.NoRefuter}
	n := len(g.seats)
	for i := 1; i < n; i++ {
		idx := (seat + i) % n
		other := g.seats[idx]
		if other.Eliminated {
			continue
		}
		matching := matchingCards(other.Hand, t)
		if len(matching) == 0 {
			entry.Passed = append(entry.Passed, idx)
			for _, card := range t.Cards() {
				g.must(s.Matrix.Eliminate(card, cards.Player(idx)))
			}
			continue
		}
		shown := other.Player.ChooseCardToShow(t, matching)
		if !slices.Contains(matching, shown) {
			g.log.WithField("seat", idx).Warnf("Tried to show %q, which does not answer %s; showing %s.", shown, t, matching[0])
			shown = matching[0]
		}
		entry.RefutedBy = idx
		entry.Shown = shown
		g.must(s.Matrix.SetHolder(shown, cards.Player(idx)))
		s.Player.ObserveCard(shown)
		break
	}

	entry = g.history.Add(entry)
	if g.Config.ShareRefutations {
		g.shareWithObservers(entry)
	}

	g.log.WithField("seat", seat).Infof("Suggested %s.", t)
	g.EventManager.Publish(events.SuggestionMadeEvent{Seq: entry.Seq, Seat: seat, PlayerName: s.Player.Name(), Suggestion: t})
	if entry.Refuted() {
		g.log.WithField("seat", seat).Debugf("P%d showed %s.", entry.RefutedBy, entry.Shown)
		g.EventManager.Publish(events.RefutedEvent{Seq: entry.Seq, Suggester: seat, Refuter: entry.RefutedBy, Passed: entry.Passed, RevealedCard: entry.Shown})
	} else {
		g.EventManager.Publish(events.NoRefutationEvent{Seq: entry.Seq, Suggester: seat, Passed: entry.Passed})
	}
	return entry, nil
}

// summon pulls the suggested suspect's token and the weapon into the room.
func (g *Game) summon(t cards.Triple, room board.Room) {
	tok := board.Token(t.Suspect)
	if cur, ok := g.occ.RoomOf(tok); !ok || cur.ID != room.ID {
		if _, placed := g.occ.Position(tok); placed {
			if _, err := g.occ.PlaceInRoom(tok, room.ID); err != nil {
				g.log.Warnf("Could not bring %s into the %s: %v", t.Suspect, room.Name, err)
			} else {
				g.markMoved(tok)
				g.EventManager.Publish(events.TokenSummonedEvent{Token: t.Suspect, Room: room.Name})
			}
		}
	}
	if g.weapons[t.Weapon] != room.Name {
		g.weapons[t.Weapon] = room.Name
		g.EventManager.Publish(events.TokenSummonedEvent{Token: t.Weapon, Room: room.Name})
	}
}

// markMoved ends the first-move rule for the seat playing tok, if any.
func (g *Game) markMoved(tok board.Token) {
	for _, s := range g.seats {
		if s.Token == tok {
			s.Moved = true
		}
	}
}

// shareWithObservers lets every seat other than the suggester learn the
// public part of a suggestion: who passed and who answered.
func (g *Game) shareWithObservers(entry history.Suggestion) {
	for _, obs := range g.seats {
		if obs.Index == entry.Suggester {
			continue
		}
		for _, p := range entry.Passed {
			if p == obs.Index {
				continue
			}
			for _, card := range entry.Triple.Cards() {
				g.must(obs.Matrix.Eliminate(card, cards.Player(p)))
			}
		}
		if entry.Refuted() && entry.RefutedBy != obs.Index {
			g.must(obs.Matrix.RecordRefutation(cards.Player(entry.RefutedBy), entry.Triple.Cards()))
		}
	}
}

// must reports matrix lookup failures, which can only come from names the
// game itself validated.
func (g *Game) must(err error) {
	if err != nil {
		panic(fmt.Sprintf("matrix update on validated input: %v", err))
	}
}

func matchingCards(hand []string, t cards.Triple) []string {
	var out []string
	for _, card := range t.Cards() {
		if slices.Contains(hand, card) {
			out = append(out, card)
		}
	}
	return out
}
