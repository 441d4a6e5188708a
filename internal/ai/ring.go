package ai

import (
	"sort"

	"example.com/cluedo-mansion/internal/board"
	"example.com/cluedo-mansion/internal/cards"
	"example.com/cluedo-mansion/internal/config"
	"example.com/cluedo-mansion/internal/player"

	"github.com/sirupsen/logrus"
)

// RingBot visits rooms in a fixed cyclic order and crosses off every card it
// sees. It gives up waiting for a full deduction after a set number of
// complete cycles, so it always ends the game eventually.
type RingBot struct {
	name      string
	seat      int
	config    *config.GameConfig
	hand      map[string]struct{}
	ring      []string
	ptr       int
	unknown   [3][]string
	visited   map[string]bool
	cycles    int
	maxCycles int
	recent    *PosDeque
	log       logrus.FieldLogger
	chooser   Chooser
}

// NewRingBot creates a fixed-ring player.
func NewRingBot(logger logrus.FieldLogger, chooser Chooser) *RingBot {
	return &RingBot{log: logger, chooser: chooser}
}

func (ai *RingBot) Name() string     { return ai.name }
func (ai *RingBot) IsHuman() bool    { return false }
func (ai *RingBot) Strategy() string { return "ring" }
func (ai *RingBot) Hand() []string {
	var cards []string
	for card := range ai.hand {
		cards = append(cards, card)
	}
	sort.Strings(cards)
	return cards
}

// Target is the next room on the ring.
func (ai *RingBot) Target() string { return ai.ring[ai.ptr] }

// Cycles is the number of complete room cycles so far.
func (ai *RingBot) Cycles() int { return ai.cycles }

// Unknown lists the cards of a category the bot has not seen, in catalogue order.
func (ai *RingBot) Unknown(cat cards.Category) []string {
	return append([]string(nil), ai.unknown[cat]...)
}

func (ai *RingBot) Setup(cfg *config.GameConfig, seat int, name string) {
	ai.name = name
	ai.seat = seat
	ai.config = cfg
	ai.hand = make(map[string]struct{})
	ai.ring = cfg.Ring
	ai.ptr = 0
	for _, cat := range cards.Categories {
		ai.unknown[cat] = append([]string(nil), cfg.CardListForCategory(cat)...)
	}
	ai.visited = make(map[string]bool)
	ai.cycles = 0
	ai.maxCycles = cfg.RingMaxCycles
	ai.recent = NewPosDeque(3)
}

func (ai *RingBot) ReceiveHand(hand []string) {
	for _, card := range hand {
		ai.hand[card] = struct{}{}
	}
}

func (ai *RingBot) ObserveCard(card string) {
	if cat, ok := ai.config.Category(card); ok {
		ai.unknown[cat] = without(ai.unknown[cat], card)
	}
}

func (ai *RingBot) UseSecretPassage(_ player.View, to board.Room) bool {
	return to.Name == ai.Target()
}

func (ai *RingBot) StayInRoom(_ player.View, room board.Room) bool {
	return !room.Hub && room.Name == ai.Target()
}

func (ai *RingBot) ChooseMove(moves []board.Pos, v player.View) board.Pos {
	if len(moves) == 0 {
		return board.Pos{}
	}
	topo := v.Topology()
	if v.MustExit() {
		if doors := doorMoves(topo, moves); len(doors) > 0 {
			return doors[0]
		}
	}

	var candidates []board.Pos
	for _, m := range moves {
		if !ai.recent.RecentContains(m, 2) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		candidates = moves
	}
	room, err := topo.RoomByName(ai.Target())
	if err != nil {
		ai.log.Warnf("Ring room %q is not on the board: %v", ai.Target(), err)
		return candidates[0]
	}
	best := closestTo(topo, candidates, room)
	ai.recent.Push(best)
	return best
}

func (ai *RingBot) ChooseSuggestion(room board.Room, _ player.View) (cards.Triple, bool) {
	if !ai.visited[room.Name] {
		ai.visited[room.Name] = true
		if len(ai.visited) == len(ai.config.Rooms) {
			ai.visited = make(map[string]bool)
			ai.cycles++
			ai.log.Debugf("Completed room cycle %d.", ai.cycles)
		}
	}
	ai.ptr = (ai.ptr + 1) % len(ai.ring)

	return cards.Triple{
		Suspect: ai.firstUnknown(cards.CategorySuspect),
		Weapon:  ai.firstUnknown(cards.CategoryWeapon),
		Room:    room.Name,
	}, true
}

func (ai *RingBot) ChooseCardToShow(_ cards.Triple, matching []string) string {
	return ai.chooser.Choose(matching)
}

func (ai *RingBot) ShouldMakeAccusation(v player.View) bool {
	if _, ok := v.Matrix().EnvelopeComplete(); ok {
		return true
	}
	if len(ai.unknown[cards.CategorySuspect]) == 1 &&
		len(ai.unknown[cards.CategoryWeapon]) == 1 &&
		len(ai.unknown[cards.CategoryRoom]) == 1 {
		return true
	}
	return ai.cycles >= ai.maxCycles
}

func (ai *RingBot) ChooseAccusation(v player.View) cards.Triple {
	if t, ok := v.Matrix().EnvelopeComplete(); ok {
		return t
	}
	return cards.Triple{
		Suspect: ai.firstUnknown(cards.CategorySuspect),
		Weapon:  ai.firstUnknown(cards.CategoryWeapon),
		Room:    ai.firstUnknown(cards.CategoryRoom),
	}
}

func (ai *RingBot) ChooseTeleportRoom(v player.View) board.Room {
	room, _ := v.Topology().RoomByName(ai.Target())
	return room
}

// firstUnknown returns the first card of a category the bot has not seen.
func (ai *RingBot) firstUnknown(cat cards.Category) string {
	if len(ai.unknown[cat]) > 0 {
		return ai.unknown[cat][0]
	}
	return ai.config.CardListForCategory(cat)[0]
}
