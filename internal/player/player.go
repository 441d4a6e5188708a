package player

import (
	"example.com/cluedo-mansion/internal/board"
	"example.com/cluedo-mansion/internal/cards"
	"example.com/cluedo-mansion/internal/config"
	"example.com/cluedo-mansion/internal/deduction"
	"example.com/cluedo-mansion/internal/history"
)

// Player is the interface that all player types (human or AI) must implement.
// Every decision method is synchronous and must not mutate the view.
type Player interface {
	Name() string
	IsHuman() bool
	Strategy() string
	Setup(cfg *config.GameConfig, seat int, name string)
	ReceiveHand(hand []string)
	// ObserveCard is called for every card that becomes known to this player:
	// each dealt card, each card shown to them, each card seen via a bonus.
	ObserveCard(card string)

	UseSecretPassage(v View, to board.Room) bool
	StayInRoom(v View, room board.Room) bool
	ChooseMove(moves []board.Pos, v View) board.Pos
	ChooseSuggestion(room board.Room, v View) (cards.Triple, bool)
	ChooseCardToShow(suggestion cards.Triple, matching []string) string
	ShouldMakeAccusation(v View) bool
	ChooseAccusation(v View) cards.Triple
	ChooseTeleportRoom(v View) board.Room
}

// View is what one seat may see of a running game: the static board, its own
// matrix and hand, and public state. Other players' hands are never exposed.
type View interface {
	Seat() int
	Seats() int
	SeatName(seat int) string
	Config() *config.GameConfig
	Topology() *board.Topology
	Matrix() deduction.Reader
	Hand() []string
	Position(seat int) (board.Pos, bool)
	CurrentRoom() (board.Room, bool)
	MustExit() bool
	FirstMove() bool
	Eliminated(seat int) bool
	WeaponRoom(weapon string) string
	History() []history.Suggestion
}
