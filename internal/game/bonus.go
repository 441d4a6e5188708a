package game

import (
	"example.com/cluedo-mansion/internal/cards"
	"example.com/cluedo-mansion/internal/events"
	"example.com/cluedo-mansion/internal/player"

	"github.com/sirupsen/logrus"
)

// Bonus card names understood by the game.
const (
	BonusExtraTurn      = "Extra Turn"
	BonusSeeACard       = "See A Card"
	BonusPeekAtEnvelope = "Peek At Envelope"
	BonusTeleport       = "Teleport"
)

// drawBonus draws a random bonus card for a seat that landed on a bonus space
// and applies it at once.
func (g *Game) drawBonus(seat *Seat, view player.View, log logrus.FieldLogger) {
	if len(g.Config.BonusCards) == 0 {
		return
	}
	card := g.Config.BonusCards[g.rand.Intn(len(g.Config.BonusCards))]
	detail := g.ApplyBonus(seat.Index, card, view)
	log.Infof("Drew bonus card %q: %s", card, detail)
	g.EventManager.Publish(events.BonusDrawnEvent{Seat: seat.Index, Card: card, Detail: detail})
}

// ApplyBonus applies one bonus card's state change for seat and describes it.
func (g *Game) ApplyBonus(seat int, card string, view player.View) string {
	s := g.seats[seat]
	switch card {
	case BonusExtraTurn:
		s.ExtraTurn = true
		return "extra turn granted"

	case BonusSeeACard:
		var others []*Seat
		for _, o := range g.seats {
			if o.Index != seat && !o.Eliminated && len(o.Hand) > 0 {
				others = append(others, o)
			}
		}
		if len(others) == 0 {
			return "no other player has cards"
		}
		target := others[g.rand.Intn(len(others))]
		seen := target.Hand[g.rand.Intn(len(target.Hand))]
		g.must(s.Matrix.SetHolder(seen, cards.Player(target.Index)))
		s.Player.ObserveCard(seen)
		return "saw a card from " + target.Player.Name()

	case BonusPeekAtEnvelope:
		cat := cards.Categories[g.rand.Intn(len(cards.Categories))]
		g.must(s.Matrix.SetHolder(g.solution.Get(cat), cards.Envelope))
		return "peeked at the " + cat.String() + " in the envelope"

	case BonusTeleport:
		room := s.Player.ChooseTeleportRoom(view)
		if room.Name == "" || room.Hub {
			return "teleport declined"
		}
		if _, err := g.occ.PlaceInRoom(s.Token, room.ID); err != nil {
			g.log.WithField("seat", seat).Warnf("Teleport to the %s failed: %v", room.Name, err)
			return "teleport failed"
		}
		s.Moved = true
		return "teleported to the " + room.Name

	default:
		g.log.Warnf("Unknown bonus card %q ignored.", card)
		return "no effect"
	}
}
