package board

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrOccupiedCell is returned when a token would land on another token's cell.
	ErrOccupiedCell = errors.New("cell is occupied")
	// ErrOutOfBounds is returned for placements off the grid.
	ErrOutOfBounds = errors.New("position is out of bounds")
	// ErrBlockedCell is returned for placements onto a wall.
	ErrBlockedCell = errors.New("cell is a wall")
	// ErrUnknownToken is returned when a token has never been placed.
	ErrUnknownToken = errors.New("unknown token")
	// ErrNoPassage is returned when a token is not in a room with a secret passage.
	ErrNoPassage = errors.New("no secret passage")
)

// Token identifies a character piece on the grid.
type Token string

// Occupancy is the single source of truth for which cell each token occupies.
// The cell index is row-major over the topology and always mirrors the token map.
type Occupancy struct {
	topo    *Topology
	byToken map[Token]Pos
	byCell  []Token
}

// NewOccupancy creates an empty occupancy index for the topology.
func NewOccupancy(t *Topology) *Occupancy {
	return &Occupancy{
		topo:    t,
		byToken: make(map[Token]Pos),
		byCell:  make([]Token, t.rows*t.cols),
	}
}

func (o *Occupancy) index(p Pos) int { return p.Row*o.topo.cols + p.Col }

// Place puts a token on p. A token that is already on the board is moved.
func (o *Occupancy) Place(tok Token, p Pos) error {
	if !o.topo.InBounds(p) {
		return fmt.Errorf("place %s at %s: %w", tok, p, ErrOutOfBounds)
	}
	if o.topo.Cell(p).Kind == KindWall {
		return fmt.Errorf("place %s at %s: %w", tok, p, ErrBlockedCell)
	}
	if occupant := o.byCell[o.index(p)]; occupant != "" && occupant != tok {
		return fmt.Errorf("place %s at %s held by %s: %w", tok, p, occupant, ErrOccupiedCell)
	}
	if old, ok := o.byToken[tok]; ok {
		o.byCell[o.index(old)] = ""
	}
	o.byToken[tok] = p
	o.byCell[o.index(p)] = tok
	return nil
}

// Move relocates a placed token. On error the token stays where it was.
func (o *Occupancy) Move(tok Token, p Pos) error {
	if _, ok := o.byToken[tok]; !ok {
		return fmt.Errorf("move %s: %w", tok, ErrUnknownToken)
	}
	return o.Place(tok, p)
}

// Position returns the cell a token occupies.
func (o *Occupancy) Position(tok Token) (Pos, bool) {
	p, ok := o.byToken[tok]
	return p, ok
}

// Occupant returns the token on p, if any.
func (o *Occupancy) Occupant(p Pos) (Token, bool) {
	if !o.topo.InBounds(p) {
		return "", false
	}
	tok := o.byCell[o.index(p)]
	return tok, tok != ""
}

// Occupied reports whether any token is on p.
func (o *Occupancy) Occupied(p Pos) bool {
	_, ok := o.Occupant(p)
	return ok
}

// Tokens lists placed tokens in name order.
func (o *Occupancy) Tokens() []Token {
	toks := make([]Token, 0, len(o.byToken))
	for tok := range o.byToken {
		toks = append(toks, tok)
	}
	sort.Slice(toks, func(i, j int) bool { return toks[i] < toks[j] })
	return toks
}

// RoomOf returns the room a token is inside or standing at the entrance of.
func (o *Occupancy) RoomOf(tok Token) (Room, bool) {
	p, ok := o.byToken[tok]
	if !ok {
		return Room{}, false
	}
	return o.topo.RoomAt(p)
}

// FreeInterior returns the first unoccupied interior cell of a room, row-major.
func (o *Occupancy) FreeInterior(roomID int) (Pos, bool) {
	for _, p := range o.topo.Interior(roomID) {
		if !o.Occupied(p) {
			return p, true
		}
	}
	return Pos{}, false
}

// PlaceInRoom moves a token into a room: the first free interior cell, else
// the first free entrance.
func (o *Occupancy) PlaceInRoom(tok Token, roomID int) (Pos, error) {
	if cur, ok := o.byToken[tok]; ok {
		if cell := o.topo.Cell(cur); cell.Kind == KindRoomInterior && cell.Room == roomID {
			return cur, nil
		}
	}
	if p, ok := o.FreeInterior(roomID); ok {
		return p, o.Place(tok, p)
	}
	for _, e := range o.topo.rooms[roomID].Entrances {
		if !o.Occupied(e) {
			return e, o.Place(tok, e)
		}
	}
	return Pos{}, fmt.Errorf("room %s is full: %w", o.topo.rooms[roomID].Name, ErrOccupiedCell)
}
