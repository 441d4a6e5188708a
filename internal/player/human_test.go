package player

import (
	"testing"

	"example.com/cluedo-mansion/internal/board"
	"example.com/cluedo-mansion/internal/cards"
	"example.com/cluedo-mansion/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPrompter answers from queues and records every question.
type scriptedPrompter struct {
	confirms  []bool
	selects   []int
	questions []string
	notes     []string
}

func (p *scriptedPrompter) Confirm(q string) bool {
	p.questions = append(p.questions, q)
	a := p.confirms[0]
	p.confirms = p.confirms[1:]
	return a
}

func (p *scriptedPrompter) Select(q string, _ []string) int {
	p.questions = append(p.questions, q)
	a := p.selects[0]
	p.selects = p.selects[1:]
	return a
}

func (p *scriptedPrompter) Notify(msg string) { p.notes = append(p.notes, msg) }

// boardView is a View that only knows the board.
type boardView struct {
	View
	topo *board.Topology
}

func (v boardView) Topology() *board.Topology { return v.topo }

func setupHuman(t *testing.T, p *scriptedPrompter) (*HumanPlayer, boardView) {
	t.Helper()
	cfg := &config.GameConfig{
		Suspects: []string{"Scarlet", "Mustard", "White"},
		Weapons:  []string{"Rope", "Knife"},
		Rooms:    []string{"A", "B"},
		HubRoom:  "H",
	}
	require.NoError(t, cfg.Prepare())
	topo, err := board.New([][]string{
		{"A", "A_e", "", "B_e", "B"},
		{"", "", "?", "", ""},
		{"", "H_e", "H", "", ""},
	}, cfg)
	require.NoError(t, err)

	h := NewHumanPlayer(p)
	h.Setup(cfg, 0, "Scarlet")
	h.ReceiveHand([]string{"Rope", "A", "Mustard"})
	return h, boardView{topo: topo}
}

func TestHumanIdentity(t *testing.T) {
	h, _ := setupHuman(t, &scriptedPrompter{})
	assert.Equal(t, "Scarlet", h.Name())
	assert.True(t, h.IsHuman())
	assert.Equal(t, "human", h.Strategy())
	assert.Equal(t, []string{"A", "Mustard", "Rope"}, h.Hand())
}

func TestHumanObservesOnlyNewCards(t *testing.T) {
	p := &scriptedPrompter{}
	h, _ := setupHuman(t, p)

	h.ObserveCard("Rope")
	h.ObserveCard("Knife")
	assert.Equal(t, []string{"You saw Knife."}, p.notes)
}

func TestHumanChoosesMove(t *testing.T) {
	p := &scriptedPrompter{selects: []int{1}}
	h, v := setupHuman(t, p)

	moves := []board.Pos{{Row: 0, Col: 1}, {Row: 1, Col: 2}}
	assert.Equal(t, board.Pos{Row: 1, Col: 2}, h.ChooseMove(moves, v))
	assert.Equal(t, "(0,1): enter the A", describeCell(v.topo, moves[0]))
	assert.Equal(t, "(1,2): bonus space", describeCell(v.topo, moves[1]))
	assert.Equal(t, "(1,0)", describeCell(v.topo, board.Pos{Row: 1, Col: 0}))
}

func TestHumanSuggestion(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		h, v := setupHuman(t, &scriptedPrompter{confirms: []bool{false}})
		_, ok := h.ChooseSuggestion(board.Room{Name: "A"}, v)
		assert.False(t, ok)
	})

	t.Run("made", func(t *testing.T) {
		p := &scriptedPrompter{confirms: []bool{true}, selects: []int{2, 1}}
		h, v := setupHuman(t, p)
		got, ok := h.ChooseSuggestion(board.Room{Name: "B"}, v)
		require.True(t, ok)
		assert.Equal(t, cards.Triple{Suspect: "White", Weapon: "Knife", Room: "B"}, got)
		assert.Len(t, p.questions, 3)
	})
}

func TestHumanShowsACard(t *testing.T) {
	suggestion := cards.Triple{Suspect: "Mustard", Weapon: "Rope", Room: "B"}

	t.Run("single match is shown without asking", func(t *testing.T) {
		p := &scriptedPrompter{}
		h, _ := setupHuman(t, p)
		assert.Equal(t, "Rope", h.ChooseCardToShow(suggestion, []string{"Rope"}))
		assert.Empty(t, p.questions)
		assert.Equal(t, []string{"You show Rope."}, p.notes)
	})

	t.Run("several matches are offered", func(t *testing.T) {
		p := &scriptedPrompter{selects: []int{1}}
		h, _ := setupHuman(t, p)
		assert.Equal(t, "Rope", h.ChooseCardToShow(suggestion, []string{"Mustard", "Rope"}))
		assert.Len(t, p.questions, 1)
	})
}

func TestHumanAccusation(t *testing.T) {
	p := &scriptedPrompter{confirms: []bool{true}, selects: []int{1, 0, 1}}
	h, v := setupHuman(t, p)

	require.True(t, h.ShouldMakeAccusation(v))
	assert.Equal(t, cards.Triple{Suspect: "Mustard", Weapon: "Rope", Room: "B"}, h.ChooseAccusation(v))
}

func TestHumanTeleportSkipsTheHub(t *testing.T) {
	p := &scriptedPrompter{selects: []int{1}}
	h, v := setupHuman(t, p)
	assert.Equal(t, "B", h.ChooseTeleportRoom(v).Name)
}

func TestHumanRoomQuestions(t *testing.T) {
	p := &scriptedPrompter{confirms: []bool{true, false}}
	h, v := setupHuman(t, p)

	assert.True(t, h.UseSecretPassage(v, board.Room{Name: "B"}))
	assert.False(t, h.StayInRoom(v, board.Room{Name: "A"}))
	assert.Equal(t, []string{
		"Use the secret passage to the B?",
		"Stay in the A and make a suggestion?",
	}, p.questions)
}

var _ Player = (*HumanPlayer)(nil)
