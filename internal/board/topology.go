package board

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"example.com/cluedo-mansion/internal/config"
)

var (
	// ErrInvalidLayout is returned when a layout cannot describe a playable board.
	ErrInvalidLayout = errors.New("invalid layout")
	// ErrUnknownRoom is returned when a room name is not on the board.
	ErrUnknownRoom = errors.New("unknown room")
)

// Pos is a grid coordinate.
type Pos struct {
	Row, Col int
}

// Manhattan returns the orthogonal distance between two positions.
func (p Pos) Manhattan(q Pos) int {
	return abs(p.Row-q.Row) + abs(p.Col-q.Col)
}

func (p Pos) add(d Pos) Pos { return Pos{p.Row + d.Row, p.Col + d.Col} }

func (p Pos) String() string { return fmt.Sprintf("(%d,%d)", p.Row, p.Col) }

// Less orders positions row-major.
func (p Pos) Less(q Pos) bool {
	if p.Row != q.Row {
		return p.Row < q.Row
	}
	return p.Col < q.Col
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// CellKind is the closed set of things a grid cell can be.
type CellKind int

const (
	KindOutOfBounds CellKind = iota
	KindWall
	KindCorridor
	KindRoomInterior
	KindRoomEntrance
	KindBonus
)

func (k CellKind) String() string {
	switch k {
	case KindOutOfBounds:
		return "out_of_bounds"
	case KindWall:
		return "wall"
	case KindCorridor:
		return "corridor"
	case KindRoomInterior:
		return "room"
	case KindRoomEntrance:
		return "entrance"
	case KindBonus:
		return "bonus"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Walkable reports whether a token may step onto a cell of this kind during movement.
func (k CellKind) Walkable() bool {
	switch k {
	case KindCorridor, KindRoomEntrance, KindBonus:
		return true
	default:
		return false
	}
}

// Cell is one grid square. Room is the owning room's ID for interior and
// entrance cells and -1 otherwise.
type Cell struct {
	Kind CellKind
	Room int
}

// Room is a named area of the board reached through its entrances.
type Room struct {
	ID        int
	Name      string
	Entrances []Pos
	// Passage is the ID of the secret-passage destination, or -1.
	Passage int
	Hub     bool
}

// HasPassage reports whether the room declares a secret passage.
func (r Room) HasPassage() bool { return r.Passage >= 0 }

// Topology is the static description of the mansion: a row-major grid of
// cells plus the room table. It is read-only once built.
type Topology struct {
	rows, cols int
	cells      []Cell
	rooms      []Room
	roomIndex  map[string]int
	hub        int
	bonus      []Pos
}

// LoadLayout reads the CSV layout named by the config.
func LoadLayout(cfg *config.GameConfig) (*Topology, error) {
	f, err := os.Open(cfg.Layout)
	if err != nil {
		return nil, fmt.Errorf("open layout: %w", err)
	}
	defer f.Close()
	return ParseCSV(f, cfg)
}

// ParseCSV reads one cell value per grid coordinate. Rows may be ragged; any
// cell beyond a row's end is a wall.
func ParseCSV(r io.Reader, cfg *config.GameConfig) (*Topology, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	return New(records, cfg)
}

// New builds a topology from raw cell values.
//
//	""              corridor
//	"<Room>"        room interior
//	"<Room>_e"      room entrance
//	"?"             bonus space
//	anything else   wall
func New(grid [][]string, cfg *config.GameConfig) (*Topology, error) {
	if len(grid) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrInvalidLayout)
	}
	t := &Topology{
		rows:      len(grid),
		roomIndex: make(map[string]int),
	}
	for _, row := range grid {
		if len(row) > t.cols {
			t.cols = len(row)
		}
	}

	for i, name := range cfg.BoardRooms() {
		t.rooms = append(t.rooms, Room{ID: i, Name: name, Passage: -1, Hub: name == cfg.HubRoom})
		t.roomIndex[name] = i
	}
	t.hub = t.roomIndex[cfg.HubRoom]
	for from, to := range cfg.SecretPassages {
		t.rooms[t.roomIndex[from]].Passage = t.roomIndex[to]
	}

	t.cells = make([]Cell, t.rows*t.cols)
	seen := make([]bool, len(t.rooms))
	for r := 0; r < t.rows; r++ {
		for c := 0; c < t.cols; c++ {
			val := ""
			if c < len(grid[r]) {
				val = strings.TrimSpace(grid[r][c])
			} else {
				val = "#"
			}
			cell := t.classify(val)
			if cell.Room >= 0 {
				seen[cell.Room] = true
			}
			switch cell.Kind {
			case KindRoomEntrance:
				t.rooms[cell.Room].Entrances = append(t.rooms[cell.Room].Entrances, Pos{r, c})
			case KindBonus:
				t.bonus = append(t.bonus, Pos{r, c})
			}
			t.cells[r*t.cols+c] = cell
		}
	}

	for i, room := range t.rooms {
		if !seen[i] {
			return nil, fmt.Errorf("%w: room %q does not appear on the grid", ErrInvalidLayout, room.Name)
		}
		if len(room.Entrances) == 0 {
			return nil, fmt.Errorf("%w: room %q has no entrance", ErrInvalidLayout, room.Name)
		}
	}
	return t, nil
}

func (t *Topology) classify(val string) Cell {
	switch {
	case val == "":
		return Cell{Kind: KindCorridor, Room: -1}
	case val == "?":
		return Cell{Kind: KindBonus, Room: -1}
	}
	if id, ok := t.roomIndex[val]; ok {
		return Cell{Kind: KindRoomInterior, Room: id}
	}
	if name, ok := strings.CutSuffix(val, "_e"); ok {
		if id, ok := t.roomIndex[name]; ok {
			return Cell{Kind: KindRoomEntrance, Room: id}
		}
	}
	return Cell{Kind: KindWall, Room: -1}
}

func (t *Topology) Rows() int { return t.rows }
func (t *Topology) Cols() int { return t.cols }

// InBounds reports whether p lies on the grid.
func (t *Topology) InBounds(p Pos) bool {
	return p.Row >= 0 && p.Row < t.rows && p.Col >= 0 && p.Col < t.cols
}

// Cell returns the cell at p; coordinates off the grid are KindOutOfBounds.
func (t *Topology) Cell(p Pos) Cell {
	if !t.InBounds(p) {
		return Cell{Kind: KindOutOfBounds, Room: -1}
	}
	return t.cells[p.Row*t.cols+p.Col]
}

// Rooms returns every room, hub last.
func (t *Topology) Rooms() []Room { return t.rooms }

// Room returns the room with the given ID.
func (t *Topology) Room(id int) Room { return t.rooms[id] }

// RoomByName looks a room up by name.
func (t *Topology) RoomByName(name string) (Room, error) {
	id, ok := t.roomIndex[name]
	if !ok {
		return Room{}, fmt.Errorf("%w: %q", ErrUnknownRoom, name)
	}
	return t.rooms[id], nil
}

// Hub returns the central hub room.
func (t *Topology) Hub() Room { return t.rooms[t.hub] }

// RoomAt returns the room whose interior or entrance contains p.
func (t *Topology) RoomAt(p Pos) (Room, bool) {
	cell := t.Cell(p)
	if cell.Kind != KindRoomInterior && cell.Kind != KindRoomEntrance {
		return Room{}, false
	}
	return t.rooms[cell.Room], true
}

// Interior lists a room's interior cells row-major.
func (t *Topology) Interior(roomID int) []Pos {
	var cells []Pos
	for r := 0; r < t.rows; r++ {
		for c := 0; c < t.cols; c++ {
			cell := t.cells[r*t.cols+c]
			if cell.Kind == KindRoomInterior && cell.Room == roomID {
				cells = append(cells, Pos{r, c})
			}
		}
	}
	return cells
}

// BonusSpaces lists the bonus-card spaces row-major.
func (t *Topology) BonusSpaces() []Pos { return t.bonus }

// IsBonus reports whether p is a bonus-card space.
func (t *Topology) IsBonus(p Pos) bool { return t.Cell(p).Kind == KindBonus }

// NearestEntranceDistance returns the smallest Manhattan distance from p to any
// entrance of the room.
func (t *Topology) NearestEntranceDistance(p Pos, roomID int) int {
	best := -1
	for _, e := range t.rooms[roomID].Entrances {
		if d := p.Manhattan(e); best < 0 || d < best {
			best = d
		}
	}
	return best
}
