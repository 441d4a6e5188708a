package ai

import (
	"sort"

	"example.com/cluedo-mansion/internal/board"
	"example.com/cluedo-mansion/internal/cards"
	"example.com/cluedo-mansion/internal/config"
	"example.com/cluedo-mansion/internal/player"

	"github.com/sirupsen/logrus"
)

// Explorer is the deduction-driven strategy. It walks toward a room it has not
// suggested in yet, suggests cards that could still be in the envelope and
// accuses as soon as its matrix pins down all three.
type Explorer struct {
	name    string
	seat    int
	config  *config.GameConfig
	hand    map[string]struct{}
	target  string
	visited map[string]bool
	log     logrus.FieldLogger
	chooser Chooser
}

// NewExplorer is the constructor for the explorer player. It injects dependencies.
func NewExplorer(logger logrus.FieldLogger, chooser Chooser) *Explorer {
	return &Explorer{
		log:     logger,
		chooser: chooser,
	}
}

func (ai *Explorer) Name() string     { return ai.name }
func (ai *Explorer) IsHuman() bool    { return false }
func (ai *Explorer) Strategy() string { return "explorer" }
func (ai *Explorer) Hand() []string {
	var cards []string
	for card := range ai.hand {
		cards = append(cards, card)
	}
	sort.Strings(cards)
	return cards
}

// Target is the room the explorer is currently heading for, empty when unset.
func (ai *Explorer) Target() string { return ai.target }

func (ai *Explorer) Setup(cfg *config.GameConfig, seat int, name string) {
	ai.name = name
	ai.seat = seat
	ai.config = cfg
	ai.hand = make(map[string]struct{})
	ai.visited = make(map[string]bool)
	ai.target = ""
}

func (ai *Explorer) ReceiveHand(hand []string) {
	for _, card := range hand {
		ai.hand[card] = struct{}{}
	}
}

// ObserveCard is a no-op: everything the explorer learns is read from its matrix.
func (ai *Explorer) ObserveCard(string) {}

func (ai *Explorer) UseSecretPassage(v player.View, to board.Room) bool {
	return to.Name == ai.ensureTarget(v)
}

func (ai *Explorer) StayInRoom(_ player.View, room board.Room) bool {
	return !room.Hub && (ai.target == "" || room.Name == ai.target)
}

func (ai *Explorer) ChooseMove(moves []board.Pos, v player.View) board.Pos {
	if len(moves) == 0 {
		return board.Pos{}
	}
	topo := v.Topology()
	if v.MustExit() {
		if doors := doorMoves(topo, moves); len(doors) > 0 {
			return doors[ai.chooser.Index(len(doors))]
		}
	}
	room, err := topo.RoomByName(ai.ensureTarget(v))
	if err != nil {
		ai.log.Warnf("Target room %q is not on the board: %v", ai.target, err)
		return moves[0]
	}
	return closestTo(topo, moves, room)
}

// ensureTarget picks a fresh target when none is set: the hub once the
// envelope is solved, else a room not yet suggested in.
func (ai *Explorer) ensureTarget(v player.View) string {
	if ai.target != "" {
		return ai.target
	}
	if _, ok := v.Matrix().EnvelopeComplete(); ok {
		ai.target = ai.config.HubRoom
	} else {
		var unseen []string
		for _, r := range ai.config.Rooms {
			if !ai.visited[r] {
				unseen = append(unseen, r)
			}
		}
		if len(unseen) == 0 {
			unseen = ai.config.Rooms
		}
		ai.target = ai.chooser.Choose(unseen)
	}
	ai.log.Debugf("New target room: %s.", ai.target)
	return ai.target
}

func (ai *Explorer) ChooseSuggestion(room board.Room, v player.View) (cards.Triple, bool) {
	m := v.Matrix()
	pick := func(cat cards.Category) string {
		if unknown := m.EnvelopeCandidates(cat); len(unknown) > 0 {
			return ai.chooser.Choose(unknown)
		}
		return ai.chooser.Choose(ai.config.CardListForCategory(cat))
	}
	ai.visited[room.Name] = true
	ai.target = ""
	return cards.Triple{
		Suspect: pick(cards.CategorySuspect),
		Weapon:  pick(cards.CategoryWeapon),
		Room:    room.Name,
	}, true
}

func (ai *Explorer) ChooseCardToShow(_ cards.Triple, matching []string) string {
	return ai.chooser.Choose(matching)
}

func (ai *Explorer) ShouldMakeAccusation(v player.View) bool {
	_, ok := v.Matrix().EnvelopeComplete()
	return ok
}

func (ai *Explorer) ChooseAccusation(v player.View) cards.Triple {
	m := v.Matrix()
	if t, ok := m.EnvelopeComplete(); ok {
		return t
	}
	ai.log.Warnf("Accusing without a solved envelope.")
	var t cards.Triple
	for _, cat := range cards.Categories {
		options := m.EnvelopeCandidates(cat)
		if len(options) == 0 {
			options = ai.config.CardListForCategory(cat)
		}
		t = t.With(cat, ai.chooser.Choose(options))
	}
	return t
}

func (ai *Explorer) ChooseTeleportRoom(v player.View) board.Room {
	topo := v.Topology()
	if room, err := topo.RoomByName(ai.ensureTarget(v)); err == nil && !room.Hub {
		return room
	}
	room, _ := topo.RoomByName(ai.chooser.Choose(ai.config.Rooms))
	return room
}
