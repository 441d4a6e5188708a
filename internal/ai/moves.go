package ai

import (
	"example.com/cluedo-mansion/internal/board"
)

// closestTo returns the first move with the smallest Manhattan distance to
// any entrance of the room.
func closestTo(topo *board.Topology, moves []board.Pos, room board.Room) board.Pos {
	best, bestDist := moves[0], -1
	for _, m := range moves {
		if d := topo.NearestEntranceDistance(m, room.ID); bestDist < 0 || d < bestDist {
			best, bestDist = m, d
		}
	}
	return best
}

// doorMoves filters the moves that land on a room entrance.
func doorMoves(topo *board.Topology, moves []board.Pos) []board.Pos {
	var doors []board.Pos
	for _, m := range moves {
		if topo.Cell(m).Kind == board.KindRoomEntrance {
			doors = append(doors, m)
		}
	}
	return doors
}

// PosDeque keeps the most recent positions up to a fixed size.
type PosDeque struct {
	elements []board.Pos
	maxSize  int
}

func NewPosDeque(maxSize int) *PosDeque {
	return &PosDeque{maxSize: maxSize}
}

func (d *PosDeque) Push(p board.Pos) {
	d.elements = append(d.elements, p)
	if len(d.elements) > d.maxSize {
		d.elements = d.elements[1:]
	}
}

// RecentContains reports whether p is among the last n pushed positions.
func (d *PosDeque) RecentContains(p board.Pos, n int) bool {
	start := len(d.elements) - n
	if start < 0 {
		start = 0
	}
	for _, e := range d.elements[start:] {
		if e == p {
			return true
		}
	}
	return false
}

func without(list []string, card string) []string {
	out := list[:0]
	for _, c := range list {
		if c != card {
			out = append(out, c)
		}
	}
	return out
}
