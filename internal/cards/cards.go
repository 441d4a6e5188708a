package cards

import "fmt"

// Category defines the type of a card using a typed enum.
type Category int

const (
	CategorySuspect Category = iota
	CategoryWeapon
	CategoryRoom
)

// Categories lists every category in catalogue order.
var Categories = []Category{CategorySuspect, CategoryWeapon, CategoryRoom}

func (c Category) String() string {
	switch c {
	case CategorySuspect:
		return "suspects"
	case CategoryWeapon:
		return "weapons"
	case CategoryRoom:
		return "rooms"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Holder is a seat index (0..N-1) or the Envelope sentinel.
type Holder int

// Envelope holds the hidden solution.
const Envelope Holder = -1

// Player returns the holder for a seat.
func Player(seat int) Holder { return Holder(seat) }

func (h Holder) IsEnvelope() bool { return h == Envelope }

func (h Holder) String() string {
	if h == Envelope {
		return "Envelope"
	}
	return fmt.Sprintf("P%d", int(h))
}

// Triple is a (suspect, weapon, room) claim: a suggestion, an accusation or the solution.
type Triple struct {
	Suspect string
	Weapon  string
	Room    string
}

// Cards returns the triple in category order.
func (t Triple) Cards() []string {
	return []string{t.Suspect, t.Weapon, t.Room}
}

// Get returns the card of the given category.
func (t Triple) Get(cat Category) string {
	switch cat {
	case CategorySuspect:
		return t.Suspect
	case CategoryWeapon:
		return t.Weapon
	default:
		return t.Room
	}
}

// With returns a copy of t with the card of the given category replaced.
func (t Triple) With(cat Category, card string) Triple {
	switch cat {
	case CategorySuspect:
		t.Suspect = card
	case CategoryWeapon:
		t.Weapon = card
	default:
		t.Room = card
	}
	return t
}

// Contains reports whether card is one of the three.
func (t Triple) Contains(card string) bool {
	return t.Suspect == card || t.Weapon == card || t.Room == card
}

func (t Triple) String() string {
	return fmt.Sprintf("%s with the %s in the %s", t.Suspect, t.Weapon, t.Room)
}
