package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"example.com/cluedo-mansion/internal/cards"
	"example.com/cluedo-mansion/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trueHolder maps every card to the seat holding it, or the envelope.
func trueHolder(g *Game) map[string]cards.Holder {
	out := make(map[string]cards.Holder)
	for _, card := range g.Solution().Cards() {
		out[card] = cards.Envelope
	}
	for _, s := range g.Seats() {
		for _, card := range s.Hand {
			out[card] = cards.Player(s.Index)
		}
	}
	return out
}

func TestFullSimulation(t *testing.T) {
	cfg, topo := loadTestBoard(t)

	for _, kind := range []AIKind{AIExplorer, AIRing} {
		for _, players := range []int{3, 6} {
			for seed := int64(1); seed <= 3; seed++ {
				t.Run(fmt.Sprintf("%s/%d players/seed %d", kind, players, seed), func(t *testing.T) {
					g, err := NewBuilder(cfg, topo, quietLogger(), rand.New(rand.NewSource(seed))).
						WithAIPlayers(kind, players).
						Build()
					require.NoError(t, err)

					var accusations int
					g.EventManager.Subscribe(events.ListenerFunc(func(e events.Event) {
						if _, ok := e.(events.AccusationEvent); ok {
							accusations++
						}
					}))

					res, err := g.Run(context.Background())
					require.NoError(t, err)
					assert.True(t, g.Status().Over)
					assert.LessOrEqual(t, res.Turns, cfg.MaxTurns)

					if res.Winner != NoWinner {
						assert.False(t, res.TurnCapHit)
						assert.Equal(t, string(kind), res.WinnerStrategy)
						assert.Positive(t, accusations)
					}

					// Every matrix still allows the true holder of every card.
					truth := trueHolder(g)
					for _, s := range g.Seats() {
						for card, h := range truth {
							assert.True(t, s.Matrix.Possible(card, h), "seat %d ruled out %s for %s", s.Index, h, card)
						}
					}
				})
			}
		}
	}
}

func TestMixedTableIsDeterministic(t *testing.T) {
	cfg, topo := loadTestBoard(t)
	play := func() Result {
		g, err := NewBuilder(cfg, topo, quietLogger(), rand.New(rand.NewSource(42))).
			WithAIPlayers(AIExplorer, 2).
			WithAIPlayers(AIRing, 2).
			Build()
		require.NoError(t, err)
		res, err := g.Run(context.Background())
		require.NoError(t, err)
		return res
	}

	first, second := play(), play()
	assert.Equal(t, []string{"explorer", "explorer", "ring", "ring"}, first.Strategies)
	assert.Equal(t, first.Winner, second.Winner)
	assert.Equal(t, first.Turns, second.Turns)
	assert.Equal(t, first.Solution, second.Solution)
}

func TestTurnCap(t *testing.T) {
	g, _ := setupGame(t, func(b *GameBuilder) { b.WithMaxTurns(5) })
	var over *events.GameOverEvent
	g.EventManager.Subscribe(events.ListenerFunc(func(e events.Event) {
		if ev, ok := e.(events.GameOverEvent); ok {
			over = &ev
		}
	}))

	res, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.TurnCapHit)
	assert.Equal(t, NoWinner, res.Winner)
	assert.Equal(t, 5, res.Turns)
	require.NotNil(t, over)
	assert.True(t, over.TurnCapHit)
}

func TestRunStopsOnCancel(t *testing.T) {
	g, _ := setupGame(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, g.Status().Turn)
}

func TestRunBatch(t *testing.T) {
	cfg, topo := loadTestBoard(t)
	newGame := func(i int) (*Game, error) {
		return NewBuilder(cfg, topo, quietLogger(), rand.New(rand.NewSource(int64(i)))).
			WithAIPlayers(AIExplorer, 2).
			WithAIPlayers(AIRing, 2).
			Build()
	}

	report, err := RunBatch(context.Background(), 8, 4, newGame)
	require.NoError(t, err)
	assert.Equal(t, 8, report.Games)
	assert.Len(t, report.Results, 8)
	assert.ElementsMatch(t, []string{"explorer", "ring"}, report.Strategies())

	wins := report.NoWinner
	for _, n := range report.WinsByStrategy {
		wins += n
	}
	assert.Equal(t, 8, wins)
	assert.LessOrEqual(t, float64(report.MinTurns), report.MeanTurns)
	assert.LessOrEqual(t, report.MeanTurns, float64(report.MaxTurns))

	t.Run("build errors abort the batch", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := RunBatch(context.Background(), 4, 2, func(i int) (*Game, error) {
			if i == 2 {
				return nil, boom
			}
			return newGame(i)
		})
		assert.ErrorIs(t, err, boom)
	})
}

func TestSummarize(t *testing.T) {
	r := Summarize([]Result{
		{Winner: 0, WinnerStrategy: "ring", Turns: 10, Strategies: []string{"ring", "explorer"}},
		{Winner: 1, WinnerStrategy: "explorer", Turns: 30, Strategies: []string{"ring", "explorer"}},
		{Winner: NoWinner, Turns: 400, TurnCapHit: true, Strategies: []string{"ring", "explorer"}},
		{Winner: 0, WinnerStrategy: "ring", Turns: 20, Strategies: []string{"ring", "explorer"}},
	})

	assert.Equal(t, 4, r.Games)
	assert.Equal(t, 1, r.NoWinner)
	assert.Equal(t, 1, r.TurnCapHits)
	assert.Equal(t, map[string]int{"ring": 2, "explorer": 1}, r.WinsByStrategy)
	assert.Equal(t, []int{0, 1}, r.Seats())
	assert.Equal(t, 10, r.MinTurns)
	assert.Equal(t, 400, r.MaxTurns)
	assert.InDelta(t, 115.0, r.MeanTurns, 1e-9)
	assert.InDelta(t, 0.5, r.WinRate("ring"), 1e-9)
	assert.Equal(t, []string{"ring", "explorer"}, r.Strategies())
}
