package game

import (
	"example.com/cluedo-mansion/internal/board"
	"example.com/cluedo-mansion/internal/cards"
	"example.com/cluedo-mansion/internal/events"
)

// Accuse resolves an accusation by seat. The token is first walked to the
// accusation cell. A correct triple ends the game with seat as winner; a wrong
// one eliminates the seat for good, and the game ends without a winner once
// nobody is left. Only calling it after the game ended is an error.
func (g *Game) Accuse(seat int, t cards.Triple) (bool, error) {
	if g.over {
		return false, ErrGameOver
	}
	g.phase = PhaseAccuse
	s := g.seats[seat]
	log := g.log.WithField("seat", seat)
	g.relocateForAccusation(s)

	correct := t == g.solution
	g.EventManager.Publish(events.AccusationEvent{Seat: seat, PlayerName: s.Player.Name(), Accusation: t, Correct: correct})

	if correct {
		log.Infof("Accused %s correctly and wins.", t)
		g.over = true
		g.winner = seat
		g.EventManager.Publish(events.GameOverEvent{Winner: s.Player.Name(), WinnerSeat: seat, Solution: g.solution, Turns: g.turn + 1})
		return true, nil
	}

	log.Infof("Accused %s wrongly and is out of the game.", t)
	s.Eliminated = true
	s.ExtraTurn = false
	g.vacateAccusationCell(s)
	g.EventManager.Publish(events.PlayerEliminatedEvent{Seat: seat, PlayerName: s.Player.Name()})

	for _, other := range g.seats {
		if !other.Eliminated {
			return false, nil
		}
	}
	log.Infof("Every player has been eliminated.")
	g.over = true
	g.EventManager.Publish(events.GameOverEvent{WinnerSeat: NoWinner, Solution: g.solution, Turns: g.turn + 1})
	return false, nil
}

func (g *Game) accusationCell() board.Pos {
	return board.Pos{Row: g.Config.AccusationCell.Row, Col: g.Config.AccusationCell.Col}
}

// relocateForAccusation moves the accuser onto the accusation cell, first
// shifting any other token standing there elsewhere in the hub.
func (g *Game) relocateForAccusation(s *Seat) {
	cell := g.accusationCell()
	if occupant, ok := g.occ.Occupant(cell); ok && occupant != s.Token {
		if !g.moveAside(occupant) {
			return
		}
	}
	if err := g.occ.Place(s.Token, cell); err != nil {
		g.log.Warnf("Could not move %s to the accusation cell: %v", s.Token, err)
		return
	}
	s.Moved = true
}

// vacateAccusationCell moves an eliminated token off the accusation cell to
// the first free hub cell.
func (g *Game) vacateAccusationCell(s *Seat) {
	cell := g.accusationCell()
	if p, _ := g.occ.Position(s.Token); p == cell {
		g.moveAside(s.Token)
	}
}

// moveAside puts a token on the first free hub cell other than the
// accusation cell.
func (g *Game) moveAside(tok board.Token) bool {
	cell := g.accusationCell()
	for _, p := range g.topo.Interior(g.topo.Hub().ID) {
		if p != cell && !g.occ.Occupied(p) {
			if err := g.occ.Place(tok, p); err != nil {
				g.log.Warnf("Could not move %s off the accusation cell: %v", tok, err)
				return false
			}
			return true
		}
	}
	g.log.Warnf("No free hub cell for %s.", tok)
	return false
}
