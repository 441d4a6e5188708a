package events

import (
	"example.com/cluedo-mansion/internal/board"
	"example.com/cluedo-mansion/internal/cards"
)

// Event is a marker interface for all event types.
type Event interface{}

// Listener defines an interface for any component that wants to react to events.
type Listener interface {
	HandleEvent(e Event)
}

// ListenerFunc adapts a function to a Listener.
type ListenerFunc func(e Event)

func (f ListenerFunc) HandleEvent(e Event) { f(e) }

// Manager (or Event Bus) manages listeners and dispatches events synchronously
// in subscription order.
type Manager struct {
	listeners []Listener
}

func NewManager() *Manager {
	return &Manager{}
}
func (em *Manager) Subscribe(l Listener) {
	em.listeners = append(em.listeners, l)
}
func (em *Manager) Publish(e Event) {
	for _, l := range em.listeners {
		l.HandleEvent(e)
	}
}

// --- Event Types for Rendering ---

// GameReadyEvent is published once the game is built, cards are dealt and
// tokens are on their staging cells.
type GameReadyEvent struct {
	GameID  string
	Players []string
}

type TurnStartEvent struct {
	TurnNumber int
	Seat       int
	PlayerName string
}

type DiceRolledEvent struct {
	Seat  int
	Steps int
}

type MovedEvent struct {
	Seat int
	From board.Pos
	To   board.Pos
	Room string // set when the move ended inside a room
}

type SecretPassageEvent struct {
	Seat     int
	FromRoom string
	ToRoom   string
}

type StayedInRoomEvent struct {
	Seat int
	Room string
}

type SuggestionMadeEvent struct {
	Seq        int
	Seat       int
	PlayerName string
	Suggestion cards.Triple
}

// TokenSummonedEvent reports a suspect token or weapon pulled into the
// suggester's room.
type TokenSummonedEvent struct {
	Token string
	Room  string
}

// RefutedEvent is public: the card itself is only given to the suggester's
// policy and, for logging, to listeners that ask for ground truth.
type RefutedEvent struct {
	Seq          int
	Suggester    int
	Refuter      int
	Passed       []int
	RevealedCard string // Ground truth, for logging
}

type NoRefutationEvent struct {
	Seq       int
	Suggester int
	Passed    []int
}

type BonusDrawnEvent struct {
	Seat   int
	Card   string
	Detail string
}

type AccusationEvent struct {
	Seat       int
	PlayerName string
	Accusation cards.Triple
	Correct    bool
}

type PlayerEliminatedEvent struct {
	Seat       int
	PlayerName string
}

type GameOverEvent struct {
	Winner     string // empty when nobody won
	WinnerSeat int
	Solution   cards.Triple
	Turns      int
	TurnCapHit bool
}

type HumanHandRevealedEvent struct {
	PlayerName string
	Hand       []string
}
