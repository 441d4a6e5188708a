package game

import (
	"io"
	"math/rand"
	"testing"

	"example.com/cluedo-mansion/internal/board"
	"example.com/cluedo-mansion/internal/cards"
	"example.com/cluedo-mansion/internal/config"
	"example.com/cluedo-mansion/internal/events"
	"example.com/cluedo-mansion/internal/player"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSolution = cards.Triple{Suspect: "Miss Scarlet", Weapon: "Candlestick", Room: "Study"}

var testHands = [][]string{
	{"Colonel Mustard", "Mrs White", "Lead Pipe", "Wrench", "Hall", "Lounge"},
	{"Reverend Green", "Mrs Peacock", "Knife", "Revolver", "Dining Room", "Kitchen"},
	{"Professor Plum", "Rope", "Ball Room", "Conservatory", "Billiard Room", "Library"},
}

// scriptedPlayer does exactly what a test tells it to and records what it was asked.
type scriptedPlayer struct {
	name       string
	seat       int
	hand       []string
	observed   []string
	stay       bool
	stayAsked  int
	suggestion *cards.Triple
	accusation *cards.Triple
	teleport   string
	show       func(matching []string) string
}

func (p *scriptedPlayer) Name() string     { return p.name }
func (p *scriptedPlayer) IsHuman() bool    { return false }
func (p *scriptedPlayer) Strategy() string { return "scripted" }

func (p *scriptedPlayer) Setup(_ *config.GameConfig, seat int, name string) {
	p.seat, p.name = seat, name
}

func (p *scriptedPlayer) ReceiveHand(hand []string) { p.hand = hand }
func (p *scriptedPlayer) ObserveCard(card string)   { p.observed = append(p.observed, card) }

func (p *scriptedPlayer) UseSecretPassage(player.View, board.Room) bool { return false }

func (p *scriptedPlayer) StayInRoom(player.View, board.Room) bool {
	p.stayAsked++
	return p.stay
}

func (p *scriptedPlayer) ChooseMove(moves []board.Pos, _ player.View) board.Pos { return moves[0] }

func (p *scriptedPlayer) ChooseSuggestion(room board.Room, _ player.View) (cards.Triple, bool) {
	if p.suggestion == nil {
		return cards.Triple{}, false
	}
	return p.suggestion.With(cards.CategoryRoom, room.Name), true
}

func (p *scriptedPlayer) ChooseCardToShow(_ cards.Triple, matching []string) string {
	if p.show != nil {
		return p.show(matching)
	}
	return matching[0]
}

func (p *scriptedPlayer) ShouldMakeAccusation(player.View) bool     { return p.accusation != nil }
func (p *scriptedPlayer) ChooseAccusation(player.View) cards.Triple { return *p.accusation }

func (p *scriptedPlayer) ChooseTeleportRoom(v player.View) board.Room {
	room, err := v.Topology().RoomByName(p.teleport)
	if err != nil {
		return board.Room{}
	}
	return room
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func loadTestBoard(t *testing.T) (*config.GameConfig, *board.Topology) {
	t.Helper()
	cfg, err := config.Load("../../default_config.yaml")
	require.NoError(t, err)
	topo, err := board.LoadLayout(cfg)
	require.NoError(t, err)
	return cfg, topo
}

// setupGame seats three scripted players with a known solution and hands.
func setupGame(t *testing.T, opts ...func(*GameBuilder)) (*Game, []*scriptedPlayer) {
	t.Helper()
	cfg, topo := loadTestBoard(t)
	ps := []*scriptedPlayer{{}, {}, {}}
	b := NewBuilder(cfg, topo, quietLogger(), rand.New(rand.NewSource(1))).
		WithPlayers(ps[0], ps[1], ps[2]).
		WithSolution(testSolution).
		WithHands(testHands)
	for _, opt := range opts {
		opt(b)
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g, ps
}

func enterRoom(t *testing.T, g *Game, seat int, name string) {
	t.Helper()
	room, err := g.topo.RoomByName(name)
	require.NoError(t, err)
	_, err = g.occ.PlaceInRoom(g.seats[seat].Token, room.ID)
	require.NoError(t, err)
	g.seats[seat].Moved = true
}

func TestBuildDeal(t *testing.T) {
	cfg, topo := loadTestBoard(t)

	for players := 2; players <= len(cfg.Suspects); players++ {
		g, err := NewBuilder(cfg, topo, quietLogger(), rand.New(rand.NewSource(int64(players)))).
			WithAIPlayers(AIExplorer, players).
			Build()
		require.NoError(t, err)

		solution := g.Solution()
		assert.True(t, cfg.ValidTriple(solution), "solution %s", solution)

		sizes := config.HandSizes(len(cfg.AllCards), players)
		seen := make(map[string]bool)
		for _, card := range solution.Cards() {
			seen[card] = true
		}
		for i, s := range g.Seats() {
			assert.Len(t, s.Hand, sizes[i], "seat %d", i)
			assert.Equal(t, cfg.Suspects[i], s.Player.Name())
			for _, card := range s.Hand {
				assert.False(t, seen[card], "%s dealt twice", card)
				seen[card] = true
			}
		}
		assert.Len(t, seen, len(cfg.AllCards), "every card is accounted for with %d players", players)
	}
}

func TestBuildRejects(t *testing.T) {
	cfg, topo := loadTestBoard(t)
	newBuilder := func() *GameBuilder {
		return NewBuilder(cfg, topo, quietLogger(), rand.New(rand.NewSource(1)))
	}

	t.Run("too few players", func(t *testing.T) {
		_, err := newBuilder().WithAIPlayers(AIRing, 1).Build()
		assert.Error(t, err)
	})
	t.Run("too many players", func(t *testing.T) {
		_, err := newBuilder().WithAIPlayers(AIRing, len(cfg.Suspects)+1).Build()
		assert.Error(t, err)
	})
	t.Run("solution outside the catalogue", func(t *testing.T) {
		_, err := newBuilder().WithAIPlayers(AIRing, 3).
			WithSolution(cards.Triple{Suspect: "Miss Scarlet", Weapon: "Spoon", Room: "Study"}).
			Build()
		assert.ErrorIs(t, err, config.ErrInvalidCatalogue)
	})
	t.Run("hands of the wrong size", func(t *testing.T) {
		short := [][]string{testHands[0][:5], testHands[1], append(testHands[2], testHands[0][5])}
		_, err := newBuilder().WithAIPlayers(AIRing, 3).WithSolution(testSolution).WithHands(short).Build()
		assert.Error(t, err)
	})
	t.Run("hands without a solution", func(t *testing.T) {
		_, err := newBuilder().WithAIPlayers(AIRing, 3).WithHands(testHands).Build()
		assert.Error(t, err)
	})
}

func TestParseAIKind(t *testing.T) {
	k, err := ParseAIKind("ring")
	require.NoError(t, err)
	assert.Equal(t, AIRing, k)

	_, err = ParseAIKind("oracle")
	assert.Error(t, err)
}

func TestInitialPlacement(t *testing.T) {
	g, _ := setupGame(t)
	hub := g.topo.Hub()

	for _, suspect := range g.Config.Suspects {
		room, ok := g.occ.RoomOf(board.Token(suspect))
		require.True(t, ok, "%s is on the board", suspect)
		assert.Equal(t, hub.ID, room.ID, "%s starts in the %s", suspect, hub.Name)
	}
	for _, w := range g.Config.Weapons {
		assert.Equal(t, hub.Name, g.WeaponRoom(w))
	}
	assert.Equal(t, NoWinner, g.Status().Winner)
}

func TestOwnHandKnownAfterDeal(t *testing.T) {
	g, ps := setupGame(t)

	for i, s := range g.Seats() {
		assert.ElementsMatch(t, testHands[i], ps[i].hand)
		assert.ElementsMatch(t, testHands[i], ps[i].observed, "every dealt card is observed")
		for _, card := range s.Hand {
			owner, ok := s.Matrix.CardOwner(card)
			require.True(t, ok, "seat %d knows who holds %s", i, card)
			assert.Equal(t, cards.Player(i), owner)
			assert.False(t, s.Matrix.Possible(card, cards.Envelope))
		}
	}
}

func TestSuggestionIsRefutedByTheFirstHolder(t *testing.T) {
	g, ps := setupGame(t)
	var got []events.Event
	g.EventManager.Subscribe(events.ListenerFunc(func(e events.Event) { got = append(got, e) }))

	enterRoom(t, g, 0, "Hall")
	entry, err := g.Suggest(0, cards.Triple{Suspect: "Professor Plum", Weapon: "Lead Pipe", Room: "Hall"})
	require.NoError(t, err)

	assert.Equal(t, 2, entry.RefutedBy)
	assert.Equal(t, "Professor Plum", entry.Shown)
	assert.Equal(t, []int{1}, entry.Passed)

	m := g.Seats()[0].Matrix
	owner, ok := m.CardOwner("Professor Plum")
	require.True(t, ok)
	assert.Equal(t, cards.Player(2), owner)
	for _, card := range []string{"Professor Plum", "Lead Pipe", "Hall"} {
		assert.False(t, m.Possible(card, cards.Player(1)), "seat 1 passed on %s", card)
	}
	assert.Contains(t, ps[0].observed, "Professor Plum")

	t.Run("history hides the shown card", func(t *testing.T) {
		h := g.History()
		require.Len(t, h, 1)
		assert.Empty(t, h[0].Shown)
		assert.Equal(t, 2, h[0].RefutedBy)
	})

	t.Run("suggested pieces are brought into the room", func(t *testing.T) {
		assert.Equal(t, "Hall", g.WeaponRoom("Lead Pipe"))
		room, ok := g.occ.RoomOf(board.Token("Professor Plum"))
		require.True(t, ok)
		assert.Equal(t, "Hall", room.Name)
	})

	t.Run("events", func(t *testing.T) {
		var refuted *events.RefutedEvent
		for _, e := range got {
			if r, ok := e.(events.RefutedEvent); ok {
				refuted = &r
			}
		}
		require.NotNil(t, refuted)
		assert.Equal(t, 2, refuted.Refuter)
		assert.Equal(t, "Professor Plum", refuted.RevealedCard)
	})

	assert.True(t, g.Seats()[0].MustExit)
}

func TestUnrefutedSuggestion(t *testing.T) {
	g, _ := setupGame(t)
	m := g.Seats()[0].Matrix
	before := m.Snapshot()

	enterRoom(t, g, 0, "Study")
	entry, err := g.Suggest(0, cards.Triple{Suspect: "Colonel Mustard", Weapon: "Candlestick", Room: "Study"})
	require.NoError(t, err)
	assert.False(t, entry.Refuted())
	assert.Equal(t, []int{1, 2}, entry.Passed)

	for _, card := range []string{"Colonel Mustard", "Candlestick", "Study"} {
		assert.False(t, m.Possible(card, cards.Player(1)), card)
		assert.False(t, m.Possible(card, cards.Player(2)), card)
	}

	// Seat 0's own card stays with seat 0 and is not pushed into the envelope.
	owner, ok := m.CardOwner("Colonel Mustard")
	require.True(t, ok)
	assert.Equal(t, cards.Player(0), owner)
	mustard := indexOf(before.Cards, "Colonel Mustard")
	assert.Equal(t, before.Cells[mustard], m.Snapshot().Cells[mustard])

	t.Run("summoned seat loses its first move", func(t *testing.T) {
		assert.True(t, g.Seats()[1].Moved)
		room, ok := g.occ.RoomOf(g.Seats()[1].Token)
		require.True(t, ok)
		assert.Equal(t, "Study", room.Name)
	})
}

func TestRefuterChoosesTheCard(t *testing.T) {
	g, ps := setupGame(t)
	ps[2].show = func(matching []string) string { return matching[len(matching)-1] }

	enterRoom(t, g, 0, "Ball Room")
	entry, err := g.Suggest(0, cards.Triple{Suspect: "Professor Plum", Weapon: "Rope", Room: "Ball Room"})
	require.NoError(t, err)
	assert.Equal(t, "Ball Room", entry.Shown)

	t.Run("invalid choice falls back to the first match", func(t *testing.T) {
		ps[2].show = func([]string) string { return "Kitchen" }
		enterRoom(t, g, 1, "Library")
		entry, err := g.Suggest(1, cards.Triple{Suspect: "Professor Plum", Weapon: "Rope", Room: "Library"})
		require.NoError(t, err)
		assert.Equal(t, 2, entry.RefutedBy)
		assert.Equal(t, "Professor Plum", entry.Shown)
	})
}

func TestIllegalSuggestions(t *testing.T) {
	g, _ := setupGame(t)
	t.Run("in the hub", func(t *testing.T) {
		_, err := g.Suggest(0, cards.Triple{Suspect: "Mrs White", Weapon: "Rope", Room: "Study"})
		assert.ErrorIs(t, err, ErrIllegalSuggestion)
	})
	t.Run("in a corridor", func(t *testing.T) {
		require.NoError(t, g.occ.Place(g.seats[0].Token, board.Pos{Row: 5, Col: 5}))
		_, err := g.Suggest(0, cards.Triple{Suspect: "Mrs White", Weapon: "Rope", Room: "Study"})
		assert.ErrorIs(t, err, ErrIllegalSuggestion)
	})
	t.Run("naming another room", func(t *testing.T) {
		enterRoom(t, g, 0, "Lounge")
		_, err := g.Suggest(0, cards.Triple{Suspect: "Mrs White", Weapon: "Rope", Room: "Study"})
		assert.ErrorIs(t, err, ErrIllegalSuggestion)
	})
	t.Run("unknown card", func(t *testing.T) {
		_, err := g.Suggest(0, cards.Triple{Suspect: "Mrs White", Weapon: "Spoon", Room: "Lounge"})
		assert.ErrorIs(t, err, ErrIllegalSuggestion)
	})
	assert.Empty(t, g.History())
}

func TestIllegalMove(t *testing.T) {
	g, _ := setupGame(t)
	err := g.MoveTo(0, 3, board.Pos{Row: 0, Col: 0}, nil)
	assert.ErrorIs(t, err, ErrIllegalMove)

	moves, err := g.LegalMoves(0, 3)
	require.NoError(t, err)
	dest := -1
	for i, m := range moves {
		if g.topo.Cell(m).Kind != board.KindRoomEntrance {
			dest = i
			break
		}
	}
	require.NotEqual(t, -1, dest, "some move ends outside a doorway")
	require.NoError(t, g.MoveTo(0, 3, moves[dest], moves))
	p, _ := g.Position(0)
	assert.Equal(t, moves[dest], p)
	assert.True(t, g.Seats()[0].Moved)
}

func TestWrongAccusationsEliminate(t *testing.T) {
	g, _ := setupGame(t)
	wrong := cards.Triple{Suspect: "Mrs White", Weapon: "Candlestick", Room: "Study"}
	cell := g.accusationCell()

	// A token already standing on the accusation cell is moved aside.
	require.NoError(t, g.occ.Place(g.seats[2].Token, cell))

	correct, err := g.Accuse(0, wrong)
	require.NoError(t, err)
	assert.False(t, correct)

	st := g.Status()
	assert.Equal(t, []bool{true, false, false}, st.Eliminated)
	assert.False(t, st.Over)
	assert.False(t, g.occ.Occupied(cell), "eliminated token leaves the accusation cell")
	for _, s := range g.Seats() {
		room, ok := g.occ.RoomOf(s.Token)
		require.True(t, ok)
		assert.True(t, room.Hub, "%s stays in the hub", s.Token)
	}

	assert.Equal(t, 1, g.nextSeat(2), "eliminated seats are skipped")

	_, err = g.Accuse(1, wrong)
	require.NoError(t, err)
	assert.False(t, g.Status().Over)

	_, err = g.Accuse(2, wrong)
	require.NoError(t, err)
	st = g.Status()
	assert.True(t, st.Over)
	assert.Equal(t, NoWinner, st.Winner)
	assert.Empty(t, g.Result().WinnerName)
}

func TestCorrectAccusationEndsTheGame(t *testing.T) {
	g, _ := setupGame(t)
	var over *events.GameOverEvent
	g.EventManager.Subscribe(events.ListenerFunc(func(e events.Event) {
		if ev, ok := e.(events.GameOverEvent); ok {
			over = &ev
		}
	}))

	correct, err := g.Accuse(1, testSolution)
	require.NoError(t, err)
	assert.True(t, correct)

	require.NotNil(t, over)
	assert.Equal(t, 1, over.WinnerSeat)
	res := g.Result()
	assert.Equal(t, 1, res.Winner)
	assert.Equal(t, "Colonel Mustard", res.WinnerName)
	assert.Equal(t, "scripted", res.WinnerStrategy)

	t.Run("no actions after the end", func(t *testing.T) {
		assert.ErrorIs(t, g.PlayTurn(), ErrGameOver)
		_, err := g.Accuse(0, testSolution)
		assert.ErrorIs(t, err, ErrGameOver)
		_, err = g.Suggest(0, testSolution)
		assert.ErrorIs(t, err, ErrGameOver)
		assert.ErrorIs(t, g.MoveTo(0, 1, board.Pos{}, nil), ErrGameOver)
	})
}

func TestMustExitAfterSuggestion(t *testing.T) {
	g, ps := setupGame(t)
	ps[0].stay = true

	enterRoom(t, g, 0, "Hall")
	_, err := g.Suggest(0, cards.Triple{Suspect: "Mrs White", Weapon: "Rope", Room: "Hall"})
	require.NoError(t, err)
	require.True(t, g.Seats()[0].MustExit)

	require.NoError(t, g.PlayTurn())
	assert.Zero(t, ps[0].stayAsked, "staying is not offered")
	assert.False(t, g.Seats()[0].MustExit)
	room, in := g.occ.RoomOf(g.seats[0].Token)
	assert.False(t, in && room.Name == "Hall", "left the Hall")

	t.Run("staying is offered again next time", func(t *testing.T) {
		enterRoom(t, g, 1, "Kitchen")
		ps[1].stay = true
		g.current = 1
		require.NoError(t, g.PlayTurn())
		assert.Equal(t, 1, ps[1].stayAsked)
		room, ok := g.occ.RoomOf(g.seats[1].Token)
		require.True(t, ok)
		assert.Equal(t, "Kitchen", room.Name)
	})
}

func TestPlayTurnSuggestsAfterEnteringARoom(t *testing.T) {
	g, ps := setupGame(t)
	ps[0].stay = true
	ps[0].suggestion = &cards.Triple{Suspect: "Reverend Green", Weapon: "Knife"}
	enterRoom(t, g, 0, "Lounge")

	require.NoError(t, g.PlayTurn())
	h := g.History()
	require.Len(t, h, 1)
	assert.Equal(t, "Lounge", h[0].Triple.Room)
	assert.Equal(t, 1, h[0].RefutedBy)
	assert.Equal(t, 1, g.Status().Current)
}

func TestExtraTurnKeepsTheSeat(t *testing.T) {
	g, _ := setupGame(t)
	g.seats[0].ExtraTurn = true

	require.NoError(t, g.PlayTurn())
	st := g.Status()
	assert.Equal(t, 0, st.Current)
	assert.Equal(t, 1, st.Turn)
	assert.False(t, g.seats[0].ExtraTurn)
}

func TestBonusCards(t *testing.T) {
	t.Run("extra turn", func(t *testing.T) {
		g, _ := setupGame(t)
		g.ApplyBonus(0, BonusExtraTurn, g.View(0))
		assert.True(t, g.seats[0].ExtraTurn)
	})

	t.Run("see a card", func(t *testing.T) {
		g, ps := setupGame(t)
		g.ApplyBonus(0, BonusSeeACard, g.View(0))
		require.Len(t, ps[0].observed, len(testHands[0])+1)
		seen := ps[0].observed[len(ps[0].observed)-1]
		owner, ok := g.seats[0].Matrix.CardOwner(seen)
		require.True(t, ok)
		assert.NotEqual(t, cards.Player(0), owner)
		assert.Contains(t, g.seats[int(owner)].Hand, seen)
	})

	t.Run("peek at the envelope", func(t *testing.T) {
		g, ps := setupGame(t)
		g.ApplyBonus(0, BonusPeekAtEnvelope, g.View(0))
		known := 0
		for _, card := range testSolution.Cards() {
			if owner, ok := g.seats[0].Matrix.CardOwner(card); ok && owner == cards.Envelope {
				known++
			}
		}
		assert.GreaterOrEqual(t, known, 1)
		assert.Len(t, ps[0].observed, len(testHands[0]), "envelope cards are not observed")
	})

	t.Run("teleport", func(t *testing.T) {
		g, ps := setupGame(t)
		ps[0].teleport = "Kitchen"
		detail := g.ApplyBonus(0, BonusTeleport, g.View(0))
		assert.Equal(t, "teleported to the Kitchen", detail)
		room, ok := g.occ.RoomOf(g.seats[0].Token)
		require.True(t, ok)
		assert.Equal(t, "Kitchen", room.Name)
	})

	t.Run("teleport declined", func(t *testing.T) {
		g, _ := setupGame(t)
		assert.Equal(t, "teleport declined", g.ApplyBonus(0, BonusTeleport, g.View(0)))
	})

	t.Run("unknown card", func(t *testing.T) {
		g, _ := setupGame(t)
		assert.Equal(t, "no effect", g.ApplyBonus(0, "Free Parking", g.View(0)))
	})
}

func TestShareRefutations(t *testing.T) {
	suggest := func(g *Game) {
		enterRoom(t, g, 0, "Hall")
		_, err := g.Suggest(0, cards.Triple{Suspect: "Professor Plum", Weapon: "Lead Pipe", Room: "Hall"})
		require.NoError(t, err)
	}

	t.Run("off", func(t *testing.T) {
		g, _ := setupGame(t)
		suggest(g)
		assert.True(t, g.seats[2].Matrix.Possible("Lead Pipe", cards.Player(1)))
		assert.Empty(t, g.seats[1].Matrix.Pending())
	})

	t.Run("on", func(t *testing.T) {
		g, _ := setupGame(t, func(b *GameBuilder) { b.cfg.ShareRefutations = true })
		suggest(g)
		assert.False(t, g.seats[2].Matrix.Possible("Lead Pipe", cards.Player(1)), "seat 2 saw seat 1 pass")
		pending := g.seats[1].Matrix.Pending()
		require.Len(t, pending, 1)
		assert.Equal(t, cards.Player(2), pending[0].Holder)
	})
}

func TestViewHidesOtherHands(t *testing.T) {
	g, _ := setupGame(t)
	v := g.View(1)
	assert.Equal(t, 1, v.Seat())
	assert.Equal(t, 3, v.Seats())
	assert.ElementsMatch(t, testHands[1], v.Hand())
	assert.Equal(t, cards.Player(1), v.Matrix().Self())
	assert.True(t, v.FirstMove())

	h := v.Hand()
	h[0] = "tampered"
	assert.Equal(t, testHands[1][0], g.seats[1].Hand[0])
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
