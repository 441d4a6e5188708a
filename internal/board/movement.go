package board

import (
	"fmt"
	"slices"
	"sort"
)

var directions = []Pos{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}

// Engine computes legal destinations from the topology and the current occupancy.
// It never mutates occupancy except through Apply and TakePassage.
type Engine struct {
	topo *Topology
	occ  *Occupancy
}

// NewEngine wires a movement engine to a board.
func NewEngine(t *Topology, o *Occupancy) *Engine {
	return &Engine{topo: t, occ: o}
}

// LegalMoves returns the distinct cells a token may end its move on with the
// given step budget, ordered row-major.
//
// A token on a corridor, entrance or bonus space walks exactly steps squares,
// or stops early on any entrance it can reach. A token inside a room leaves
// through any free entrance of that room and walks the full budget from there;
// from the hub with a budget of at least two it may also jump to any other
// room's entrance within Manhattan reach of a hub entrance. A first move is
// treated as leaving every room through its own entrances; neither the doors
// of the room left nor those of the hub are destinations. A walk from a
// corridor or entrance ends back on its start only for a zero-step move.
func (e *Engine) LegalMoves(tok Token, steps int, firstMove bool) ([]Pos, error) {
	start, ok := e.occ.Position(tok)
	if !ok {
		return nil, fmt.Errorf("legal moves for %s: %w", tok, ErrUnknownToken)
	}
	dest := make(map[Pos]struct{})
	cell := e.topo.Cell(start)

	switch {
	case firstMove:
		hub := e.topo.Hub()
		for _, room := range e.topo.rooms {
			e.exitRoom(room, []int{room.ID, hub.ID}, start, steps, dest)
		}
	case cell.Kind == KindRoomInterior:
		room := e.topo.rooms[cell.Room]
		e.exitRoom(room, []int{room.ID}, start, steps, dest)
		if room.Hub && steps >= 2 {
			e.hubShortcuts(room, start, steps, dest)
		}
	default:
		e.walk(start, start, steps, nil, dest)
	}

	moves := make([]Pos, 0, len(dest))
	for p := range dest {
		moves = append(moves, p)
	}
	sort.Slice(moves, func(i, j int) bool { return moves[i].Less(moves[j]) })
	return moves, nil
}

// exitRoom walks outward from each free entrance of room. Entrances of the
// excluded rooms are never destinations.
func (e *Engine) exitRoom(room Room, exclude []int, self Pos, steps int, dest map[Pos]struct{}) {
	for _, entrance := range room.Entrances {
		if !e.free(entrance, self) {
			continue
		}
		e.walk(entrance, self, steps, exclude, dest)
	}
}

func (e *Engine) hubShortcuts(hub Room, self Pos, steps int, dest map[Pos]struct{}) {
	for _, room := range e.topo.rooms {
		if room.ID == hub.ID {
			continue
		}
		for _, entrance := range room.Entrances {
			if !e.free(entrance, self) {
				continue
			}
			for _, h := range hub.Entrances {
				if entrance.Manhattan(h) <= steps {
					dest[entrance] = struct{}{}
					break
				}
			}
		}
	}
}

// walk is a breadth-first search from origin. A cell is a destination when its
// shortest walkable distance equals steps, or when it is an entrance (not of
// an excluded room) within steps. The walk never steps back onto origin.
func (e *Engine) walk(origin, self Pos, steps int, exclude []int, dest map[Pos]struct{}) {
	dist := map[Pos]int{origin: 0}
	queue := []Pos{origin}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		d := dist[p]
		if d == steps {
			if e.landable(p, self, exclude) {
				dest[p] = struct{}{}
			}
			continue
		}
		for _, dir := range directions {
			next := p.add(dir)
			cell := e.topo.Cell(next)
			if !cell.Kind.Walkable() {
				continue
			}
			if next == origin {
				continue
			}
			if cell.Kind == KindRoomEntrance && !slices.Contains(exclude, cell.Room) && e.free(next, self) {
				dest[next] = struct{}{}
			}
			if _, seen := dist[next]; seen {
				continue
			}
			if cell.Kind != KindRoomEntrance && !e.free(next, self) {
				continue
			}
			dist[next] = d + 1
			queue = append(queue, next)
		}
	}
}

func (e *Engine) landable(p, self Pos, exclude []int) bool {
	cell := e.topo.Cell(p)
	if !cell.Kind.Walkable() && p != self {
		return false
	}
	if cell.Kind == KindRoomEntrance && slices.Contains(exclude, cell.Room) {
		return false
	}
	return e.free(p, self)
}

func (e *Engine) free(p, self Pos) bool {
	return p == self || !e.occ.Occupied(p)
}

// Apply moves a token to a destination already validated as legal. Landing on
// an entrance carries the token into the room's first free interior cell; if
// the room is full it stays on the entrance. The final cell is returned.
func (e *Engine) Apply(tok Token, dest Pos) (Pos, error) {
	cell := e.topo.Cell(dest)
	if cell.Kind == KindRoomEntrance {
		if inside, ok := e.occ.FreeInterior(cell.Room); ok {
			return inside, e.occ.Move(tok, inside)
		}
	}
	if err := e.occ.Move(tok, dest); err != nil {
		return Pos{}, err
	}
	return dest, nil
}

// PassageFrom returns the secret-passage destination of the room the token occupies.
func (e *Engine) PassageFrom(tok Token) (Room, bool) {
	room, ok := e.occ.RoomOf(tok)
	if !ok || !room.HasPassage() {
		return Room{}, false
	}
	return e.topo.rooms[room.Passage], true
}

// TakePassage relocates the token through its room's secret passage to the
// destination's first entrance, then into that room. No steps are consumed.
func (e *Engine) TakePassage(tok Token) (Room, Pos, error) {
	to, ok := e.PassageFrom(tok)
	if !ok {
		return Room{}, Pos{}, fmt.Errorf("%s has no secret passage: %w", tok, ErrNoPassage)
	}
	first := to.Entrances[0]
	if inside, ok := e.occ.FreeInterior(to.ID); ok {
		return to, inside, e.occ.Move(tok, inside)
	}
	if err := e.occ.Move(tok, first); err != nil {
		return Room{}, Pos{}, err
	}
	return to, first, nil
}
