package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"example.com/cluedo-mansion/internal/board"
	"example.com/cluedo-mansion/internal/cards"
	"example.com/cluedo-mansion/internal/config"
	"example.com/cluedo-mansion/internal/deduction"
	"example.com/cluedo-mansion/internal/events"
	"example.com/cluedo-mansion/internal/history"
	"example.com/cluedo-mansion/internal/player"

	"github.com/sirupsen/logrus"
)

var (
	// ErrIllegalMove is returned when a destination is not in the legal-move set.
	ErrIllegalMove = errors.New("illegal move")
	// ErrIllegalSuggestion is returned for suggestions outside a qualifying room
	// or naming a room other than the one occupied.
	ErrIllegalSuggestion = errors.New("illegal suggestion")
	// ErrGameOver is returned when an action is attempted after the game ended.
	ErrGameOver = errors.New("game is over")
)

// maxDecisionAttempts bounds how often an illegal decision is re-requested.
const maxDecisionAttempts = 3

// NoWinner is the winner seat of a game nobody won.
const NoWinner = -1

// Seat is one player's place at the table together with the state the game
// keeps for it.
type Seat struct {
	Index      int
	Player     player.Player
	Token      board.Token
	Hand       []string
	Matrix     *deduction.Matrix
	Eliminated bool
	MustExit   bool
	Moved      bool
	ExtraTurn  bool
}

// Status is the public turn, elimination and winner state.
type Status struct {
	Turn       int
	Current    int
	Phase      Phase
	Eliminated []bool
	Winner     int
	Over       bool
	TurnCapHit bool
}

// Result summarises a finished game.
type Result struct {
	GameID         string
	Winner         int
	WinnerName     string
	WinnerStrategy string
	Turns          int
	TurnCapHit     bool
	Solution       cards.Triple
	Strategies     []string
}

// Game represents the state and logic of a single Cluedo game on the mansion board.
type Game struct {
	ID           string
	Config       *config.GameConfig
	EventManager *events.Manager

	topo     *board.Topology
	occ      *board.Occupancy
	engine   *board.Engine
	seats    []*Seat
	solution cards.Triple
	weapons  map[string]string
	history  history.Log
	log      logrus.FieldLogger
	rand     *rand.Rand

	turn       int
	current    int
	phase      Phase
	winner     int
	over       bool
	turnCapHit bool
}

// Run plays turns until somebody wins, everybody is eliminated or the turn cap
// is reached. Cancelling ctx stops the game between turns.
func (g *Game) Run(ctx context.Context) (Result, error) {
	for !g.over {
		if err := ctx.Err(); err != nil {
			return g.Result(), err
		}
		if g.turn >= g.Config.MaxTurns {
			g.endOnTurnCap()
			break
		}
		if err := g.PlayTurn(); err != nil {
			return g.Result(), fmt.Errorf("turn %d: %w", g.turn+1, err)
		}
	}
	return g.Result(), nil
}

func (g *Game) endOnTurnCap() {
	g.over = true
	g.turnCapHit = true
	g.log.Infof("Turn cap of %d reached without a winner.", g.Config.MaxTurns)
	g.EventManager.Publish(events.GameOverEvent{
		WinnerSeat: NoWinner,
		Solution:   g.solution,
		Turns:      g.turn,
		TurnCapHit: true,
	})
}

// Result reports the outcome so far.
func (g *Game) Result() Result {
	r := Result{
		GameID:     g.ID,
		Winner:     g.winner,
		Turns:      g.turn,
		TurnCapHit: g.turnCapHit,
		Solution:   g.solution,
	}
	for _, s := range g.seats {
		r.Strategies = append(r.Strategies, s.Player.Strategy())
	}
	if g.winner != NoWinner {
		r.WinnerName = g.seats[g.winner].Player.Name()
		r.WinnerStrategy = g.seats[g.winner].Player.Strategy()
	}
	return r
}

// --- Read-only views for collaborators ---

func (g *Game) Topology() *board.Topology { return g.topo }

// Occupant returns the token on a cell, if any.
func (g *Game) Occupant(p board.Pos) (board.Token, bool) { return g.occ.Occupant(p) }

// Position returns where a seat's token stands.
func (g *Game) Position(seat int) (board.Pos, bool) {
	if seat < 0 || seat >= len(g.seats) {
		return board.Pos{}, false
	}
	return g.occ.Position(g.seats[seat].Token)
}

// TokenPosition returns where any suspect token stands, played or not.
func (g *Game) TokenPosition(suspect string) (board.Pos, bool) {
	return g.occ.Position(board.Token(suspect))
}

// WeaponRoom returns the room a weapon currently lies in.
func (g *Game) WeaponRoom(weapon string) string { return g.weapons[weapon] }

// MatrixSnapshot copies a seat's possibility matrix.
func (g *Game) MatrixSnapshot(seat int) deduction.Snapshot { return g.seats[seat].Matrix.Snapshot() }

// Matrix returns a read-only view of a seat's possibility matrix.
func (g *Game) Matrix(seat int) deduction.Reader { return g.seats[seat].Matrix }

// History returns the public suggestion record, oldest first.
func (g *Game) History() []history.Suggestion { return g.history.All() }

// Solution reveals the envelope. Callers should only show it once the game is over.
func (g *Game) Solution() cards.Triple { return g.solution }

// Seats returns the seats in turn order.
func (g *Game) Seats() []*Seat { return g.seats }

// Status returns a copy of the public game status.
func (g *Game) Status() Status {
	s := Status{
		Turn:       g.turn,
		Current:    g.current,
		Phase:      g.phase,
		Winner:     g.winner,
		Over:       g.over,
		TurnCapHit: g.turnCapHit,
	}
	for _, seat := range g.seats {
		s.Eliminated = append(s.Eliminated, seat.Eliminated)
	}
	return s
}

// View returns what a seat is allowed to see.
func (g *Game) View(seat int) player.View { return &seatView{g: g, seat: seat} }

type seatView struct {
	g    *Game
	seat int
}

func (v *seatView) Seat() int                  { return v.seat }
func (v *seatView) Seats() int                 { return len(v.g.seats) }
func (v *seatView) SeatName(seat int) string   { return v.g.seats[seat].Player.Name() }
func (v *seatView) Config() *config.GameConfig { return v.g.Config }
func (v *seatView) Topology() *board.Topology  { return v.g.topo }
func (v *seatView) Matrix() deduction.Reader   { return v.g.seats[v.seat].Matrix }
func (v *seatView) Hand() []string             { return append([]string(nil), v.g.seats[v.seat].Hand...) }

func (v *seatView) MustExit() bool           { return v.g.seats[v.seat].MustExit }
func (v *seatView) FirstMove() bool          { return !v.g.seats[v.seat].Moved }
func (v *seatView) Eliminated(seat int) bool { return v.g.seats[seat].Eliminated }

func (v *seatView) Position(seat int) (board.Pos, bool) {
	return v.g.Position(seat)
}

func (v *seatView) CurrentRoom() (board.Room, bool) {
	return v.g.occ.RoomOf(v.g.seats[v.seat].Token)
}

func (v *seatView) WeaponRoom(weapon string) string {
	return v.g.weapons[weapon]
}

func (v *seatView) History() []history.Suggestion {
	return v.g.history.All()
}
