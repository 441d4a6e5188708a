package game

import (
	"fmt"
	"slices"

	"example.com/cluedo-mansion/internal/board"
	"example.com/cluedo-mansion/internal/events"
	"example.com/cluedo-mansion/internal/player"

	"github.com/sirupsen/logrus"
)

// Phase is a step of the per-turn state machine.
type Phase int

const (
	PhaseStartTurn Phase = iota
	PhaseSecretPassage
	PhaseMove
	PhaseSuggest
	PhaseRefute
	PhaseBonus
	PhaseAccuse
	PhaseEndTurn
)

func (p Phase) String() string {
	switch p {
	case PhaseStartTurn:
		return "start"
	case PhaseSecretPassage:
		return "secret passage"
	case PhaseMove:
		return "move"
	case PhaseSuggest:
		return "suggest"
	case PhaseRefute:
		return "refute"
	case PhaseBonus:
		return "bonus"
	case PhaseAccuse:
		return "accuse"
	default:
		return "end"
	}
}

// PlayTurn runs one full turn for the current seat.
func (g *Game) PlayTurn() error {
	if g.over {
		return ErrGameOver
	}
	seat := g.seats[g.current]
	view := g.View(seat.Index)
	log := g.log.WithFields(logrus.Fields{"seat": seat.Index, "player": seat.Player.Name()})

	g.phase = PhaseStartTurn
	g.EventManager.Publish(events.TurnStartEvent{TurnNumber: g.turn + 1, Seat: seat.Index, PlayerName: seat.Player.Name()})

	g.phase = PhaseSecretPassage
	if room, in := g.occ.RoomOf(seat.Token); in && !room.Hub {
		if to, ok := g.engine.PassageFrom(seat.Token); ok && seat.Player.UseSecretPassage(view, to) {
			if _, _, err := g.engine.TakePassage(seat.Token); err != nil {
				log.Warnf("Secret passage to the %s is blocked: %v", to.Name, err)
			} else {
				seat.MustExit = false
				log.Infof("Took the secret passage from the %s to the %s.", room.Name, to.Name)
				g.EventManager.Publish(events.SecretPassageEvent{Seat: seat.Index, FromRoom: room.Name, ToRoom: to.Name})
			}
		}
	}

	g.phase = PhaseMove
	moved, err := g.moveOrStay(seat, view, log)
	if err != nil {
		return err
	}
	seat.MustExit = false

	g.phase = PhaseSuggest
	if room, in := g.occ.RoomOf(seat.Token); in && !room.Hub && moved != outcomeBlocked {
		if err := g.suggestFromPolicy(seat, room, view); err != nil {
			return err
		}
	}

	g.phase = PhaseBonus
	if moved == outcomeMoved && g.topo.IsBonus(g.mustPosition(seat)) {
		g.drawBonus(seat, view, log)
	}

	g.phase = PhaseAccuse
	if !g.over && !seat.Eliminated && seat.Player.ShouldMakeAccusation(view) {
		if _, err := g.Accuse(seat.Index, seat.Player.ChooseAccusation(view)); err != nil {
			return err
		}
	}

	g.phase = PhaseEndTurn
	g.turn++
	if !g.over {
		if seat.ExtraTurn && !seat.Eliminated {
			seat.ExtraTurn = false
			log.Infof("Takes an extra turn.")
		} else {
			g.current = g.nextSeat(g.current)
		}
	}
	return nil
}

type moveOutcome int

const (
	outcomeMoved moveOutcome = iota
	outcomeStayed
	outcomeBlocked
)

// moveOrStay resolves the movement phase: stay in the room, or roll and move.
func (g *Game) moveOrStay(seat *Seat, view player.View, log logrus.FieldLogger) (moveOutcome, error) {
	if room, in := g.occ.RoomOf(seat.Token); in && !room.Hub && !seat.MustExit && seat.Player.StayInRoom(view, room) {
		log.Debugf("Stays in the %s.", room.Name)
		g.EventManager.Publish(events.StayedInRoomEvent{Seat: seat.Index, Room: room.Name})
		return outcomeStayed, nil
	}

	steps := g.rand.Intn(6) + 1
	g.EventManager.Publish(events.DiceRolledEvent{Seat: seat.Index, Steps: steps})
	moves, err := g.LegalMoves(seat.Index, steps)
	if err != nil {
		return outcomeBlocked, err
	}
	if len(moves) == 0 {
		log.Infof("Rolled %d but every exit is blocked.", steps)
		return outcomeBlocked, nil
	}

	for attempt := 1; ; attempt++ {
		dest := seat.Player.ChooseMove(moves, view)
		err := g.MoveTo(seat.Index, steps, dest, moves)
		if err == nil {
			return outcomeMoved, nil
		}
		if attempt == maxDecisionAttempts {
			return outcomeBlocked, err
		}
		log.Warnf("Rejected move (attempt %d): %v", attempt, err)
	}
}

// LegalMoves lists the cells a seat may reach with the given roll.
func (g *Game) LegalMoves(seat, steps int) ([]board.Pos, error) {
	s := g.seats[seat]
	return g.engine.LegalMoves(s.Token, steps, !s.Moved)
}

// MoveTo moves a seat's token to dest, which must be one of the legal moves
// for the roll. When moves is nil the legal set is recomputed.
func (g *Game) MoveTo(seat, steps int, dest board.Pos, moves []board.Pos) error {
	if g.over {
		return ErrGameOver
	}
	s := g.seats[seat]
	if moves == nil {
		var err error
		if moves, err = g.LegalMoves(seat, steps); err != nil {
			return err
		}
	}
	if !slices.Contains(moves, dest) {
		return fmt.Errorf("%s to %s with %d steps: %w", s.Token, dest, steps, ErrIllegalMove)
	}
	from := g.mustPosition(s)
	final, err := g.engine.Apply(s.Token, dest)
	if err != nil {
		return err
	}
	s.Moved = true
	ev := events.MovedEvent{Seat: seat, From: from, To: final}
	if room, in := g.topo.RoomAt(final); in {
		ev.Room = room.Name
	}
	g.log.WithField("seat", seat).Debugf("Moved from %s to %s.", from, final)
	g.EventManager.Publish(ev)
	return nil
}

func (g *Game) mustPosition(s *Seat) board.Pos {
	p, _ := g.occ.Position(s.Token)
	return p
}

// nextSeat returns the next seat after from that is still in the game.
func (g *Game) nextSeat(from int) int {
	n := len(g.seats)
	for i := 1; i <= n; i++ {
		idx := (from + i) % n
		if !g.seats[idx].Eliminated {
			return idx
		}
	}
	return from
}
