package deduction

import "example.com/cluedo-mansion/internal/cards"

// Snapshot is a detached copy of a matrix for renderers and logs.
type Snapshot struct {
	Cards   []string
	Holders []cards.Holder
	Cells   [][]bool
}

// Status is how a single cell reads to a human.
type Status int

const (
	StatusMaybe Status = iota
	StatusYes
	StatusNo
)

// Status returns Yes for a confirmed owner, No for a ruled-out holder and
// Maybe otherwise.
func (s Snapshot) Status(card int, holder int) Status {
	row := s.Cells[card]
	if !row[holder] {
		return StatusNo
	}
	n := 0
	for _, ok := range row {
		if ok {
			n++
		}
	}
	if n == 1 {
		return StatusYes
	}
	return StatusMaybe
}

// Equal reports whether two snapshots hold the same table.
func (s Snapshot) Equal(o Snapshot) bool {
	if len(s.Cells) != len(o.Cells) {
		return false
	}
	for i := range s.Cells {
		if len(s.Cells[i]) != len(o.Cells[i]) {
			return false
		}
		for j := range s.Cells[i] {
			if s.Cells[i][j] != o.Cells[i][j] {
				return false
			}
		}
	}
	return true
}
