package player

import (
	"fmt"
	"sort"

	"example.com/cluedo-mansion/internal/board"
	"example.com/cluedo-mansion/internal/cards"
	"example.com/cluedo-mansion/internal/config"
)

// Prompter is the input side of a human seat. The CLI backs it with a line
// editor; tests back it with a script.
type Prompter interface {
	Confirm(question string) bool
	// Select returns the index of the chosen option.
	Select(question string, options []string) int
	Notify(message string)
}

// HumanPlayer represents a player controlled by a person.
type HumanPlayer struct {
	name   string
	seat   int
	cfg    *config.GameConfig
	hand   map[string]struct{}
	prompt Prompter
}

// NewHumanPlayer creates a human seat that asks its prompter for every decision.
func NewHumanPlayer(p Prompter) *HumanPlayer {
	return &HumanPlayer{
		hand:   make(map[string]struct{}),
		prompt: p,
	}
}

func (h *HumanPlayer) Name() string     { return h.name }
func (h *HumanPlayer) IsHuman() bool    { return true }
func (h *HumanPlayer) Strategy() string { return "human" }
func (h *HumanPlayer) Hand() []string {
	var cards []string
	for card := range h.hand {
		cards = append(cards, card)
	}
	sort.Strings(cards)
	return cards
}

func (h *HumanPlayer) Setup(cfg *config.GameConfig, seat int, name string) {
	h.name = name
	h.seat = seat
	h.cfg = cfg
}

func (h *HumanPlayer) ReceiveHand(hand []string) {
	for _, card := range hand {
		h.hand[card] = struct{}{}
	}
}

func (h *HumanPlayer) ObserveCard(card string) {
	if _, mine := h.hand[card]; mine {
		return
	}
	h.prompt.Notify(fmt.Sprintf("You saw %s.", card))
}

func (h *HumanPlayer) UseSecretPassage(_ View, to board.Room) bool {
	return h.prompt.Confirm(fmt.Sprintf("Use the secret passage to the %s?", to.Name))
}

func (h *HumanPlayer) StayInRoom(_ View, room board.Room) bool {
	return h.prompt.Confirm(fmt.Sprintf("Stay in the %s and make a suggestion?", room.Name))
}

func (h *HumanPlayer) ChooseMove(moves []board.Pos, v View) board.Pos {
	if len(moves) == 0 {
		return board.Pos{}
	}
	topo := v.Topology()
	options := make([]string, len(moves))
	for i, m := range moves {
		options[i] = describeCell(topo, m)
	}
	return moves[h.prompt.Select("Where do you want to move?", options)]
}

func (h *HumanPlayer) ChooseSuggestion(room board.Room, _ View) (cards.Triple, bool) {
	if !h.prompt.Confirm(fmt.Sprintf("Make a suggestion in the %s?", room.Name)) {
		return cards.Triple{}, false
	}
	suspect := h.pick("Which suspect?", h.cfg.Suspects)
	weapon := h.pick("Which weapon?", h.cfg.Weapons)
	return cards.Triple{Suspect: suspect, Weapon: weapon, Room: room.Name}, true
}

func (h *HumanPlayer) ChooseCardToShow(suggestion cards.Triple, matching []string) string {
	if len(matching) == 1 {
		h.prompt.Notify(fmt.Sprintf("You show %s.", matching[0]))
		return matching[0]
	}
	return h.pick(fmt.Sprintf("Which card do you show against %s?", suggestion), matching)
}

func (h *HumanPlayer) ShouldMakeAccusation(_ View) bool {
	return h.prompt.Confirm("Make an accusation? A wrong one puts you out of the game.")
}

func (h *HumanPlayer) ChooseAccusation(_ View) cards.Triple {
	return cards.Triple{
		Suspect: h.pick("Accuse which suspect?", h.cfg.Suspects),
		Weapon:  h.pick("With which weapon?", h.cfg.Weapons),
		Room:    h.pick("In which room?", h.cfg.Rooms),
	}
}

func (h *HumanPlayer) ChooseTeleportRoom(v View) board.Room {
	var rooms []board.Room
	var names []string
	for _, r := range v.Topology().Rooms() {
		if !r.Hub {
			rooms = append(rooms, r)
			names = append(names, r.Name)
		}
	}
	return rooms[h.prompt.Select("Teleport to which room?", names)]
}

func (h *HumanPlayer) pick(question string, options []string) string {
	return options[h.prompt.Select(question, options)]
}

func describeCell(topo *board.Topology, p board.Pos) string {
	cell := topo.Cell(p)
	switch cell.Kind {
	case board.KindRoomEntrance:
		return fmt.Sprintf("%s: enter the %s", p, topo.Room(cell.Room).Name)
	case board.KindBonus:
		return fmt.Sprintf("%s: bonus space", p)
	default:
		return p.String()
	}
}
