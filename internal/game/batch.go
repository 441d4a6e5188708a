package game

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// BatchReport aggregates the outcomes of many simulated games.
type BatchReport struct {
	Games           int
	NoWinner        int
	TurnCapHits     int
	WinsByStrategy  map[string]int
	WinsBySeat      map[int]int
	MeanTurns       float64
	MinTurns        int
	MaxTurns        int
	Results         []Result
	strategiesOrder []string
}

// Strategies lists every strategy that took part, in first-seen order.
func (r BatchReport) Strategies() []string { return r.strategiesOrder }

// WinRate is the share of games won by a strategy.
func (r BatchReport) WinRate(strategy string) float64 {
	if r.Games == 0 {
		return 0
	}
	return float64(r.WinsByStrategy[strategy]) / float64(r.Games)
}

// RunBatch plays n games built by newGame, at most parallel at a time. Games
// share nothing, so each runs on its own goroutine. The first build or play
// error cancels the rest.
func RunBatch(ctx context.Context, n, parallel int, newGame func(i int) (*Game, error)) (BatchReport, error) {
	if n <= 0 {
		return BatchReport{}, errors.New("batch needs at least one game")
	}
	if parallel <= 0 {
		parallel = 1
	}

	results := make([]Result, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			game, err := newGame(i)
			if err != nil {
				return fmt.Errorf("build game %d: %w", i, err)
			}
			res, err := game.Run(ctx)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchReport{}, err
	}
	return Summarize(results), nil
}

// Summarize folds finished game results into a report.
func Summarize(results []Result) BatchReport {
	r := BatchReport{
		Games:          len(results),
		WinsByStrategy: make(map[string]int),
		WinsBySeat:     make(map[int]int),
		Results:        results,
	}
	seen := make(map[string]bool)
	total := 0
	for i, res := range results {
		for _, s := range res.Strategies {
			if !seen[s] {
				seen[s] = true
				r.strategiesOrder = append(r.strategiesOrder, s)
			}
		}
		total += res.Turns
		if i == 0 || res.Turns < r.MinTurns {
			r.MinTurns = res.Turns
		}
		if res.Turns > r.MaxTurns {
			r.MaxTurns = res.Turns
		}
		if res.TurnCapHit {
			r.TurnCapHits++
		}
		if res.Winner == NoWinner {
			r.NoWinner++
			continue
		}
		r.WinsByStrategy[res.WinnerStrategy]++
		r.WinsBySeat[res.Winner]++
	}
	if len(results) > 0 {
		r.MeanTurns = float64(total) / float64(len(results))
	}
	return r
}

// Seats returns the seats that won at least once, in order.
func (r BatchReport) Seats() []int {
	seats := make([]int, 0, len(r.WinsBySeat))
	for s := range r.WinsBySeat {
		seats = append(seats, s)
	}
	sort.Ints(seats)
	return seats
}
