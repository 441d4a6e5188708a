package game

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"example.com/cluedo-mansion/internal/ai"
	"example.com/cluedo-mansion/internal/board"
	"example.com/cluedo-mansion/internal/cards"
	"example.com/cluedo-mansion/internal/config"
	"example.com/cluedo-mansion/internal/deduction"
	"example.com/cluedo-mansion/internal/events"
	"example.com/cluedo-mansion/internal/player"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AIKind selects an AI strategy.
type AIKind string

const (
	AIExplorer AIKind = "explorer"
	AIRing     AIKind = "ring"
)

// ParseAIKind maps a strategy name to its kind.
func ParseAIKind(s string) (AIKind, error) {
	switch k := AIKind(s); k {
	case AIExplorer, AIRing:
		return k, nil
	}
	return "", fmt.Errorf("unknown AI strategy %q (want %s or %s)", s, AIExplorer, AIRing)
}

type seatSpec struct {
	kind     AIKind
	prompter player.Prompter
	custom   player.Player
}

// GameBuilder provides a step-by-step API for constructing a Game object.
type GameBuilder struct {
	cfg           *config.GameConfig
	topo          *board.Topology
	eventManager  *events.Manager
	log           logrus.FieldLogger
	rand          *rand.Rand
	specs         []seatSpec
	solution      *cards.Triple
	hands         [][]string
	maxTurns      int
	deterministic bool
}

// NewBuilder creates a new GameBuilder with its required dependencies. The
// topology is shared read-only between every game built from it.
func NewBuilder(cfg *config.GameConfig, topo *board.Topology, logger logrus.FieldLogger, rand *rand.Rand) *GameBuilder {
	return &GameBuilder{
		cfg:          cfg,
		topo:         topo,
		log:          logger,
		rand:         rand,
		eventManager: events.NewManager(),
	}
}

// EventManager is a public getter for the unexported field.
func (b *GameBuilder) EventManager() *events.Manager {
	return b.eventManager
}

// WithHumanPlayers seats n humans, all answering through the same prompter.
func (b *GameBuilder) WithHumanPlayers(n int, p player.Prompter) *GameBuilder {
	for i := 0; i < n; i++ {
		b.specs = append(b.specs, seatSpec{prompter: p})
	}
	return b
}

func (b *GameBuilder) WithAIPlayers(kind AIKind, n int) *GameBuilder {
	for i := 0; i < n; i++ {
		b.specs = append(b.specs, seatSpec{kind: kind})
	}
	return b
}

// WithPlayers seats ready-made policies.
func (b *GameBuilder) WithPlayers(ps ...player.Player) *GameBuilder {
	for _, p := range ps {
		b.specs = append(b.specs, seatSpec{custom: p})
	}
	return b
}

// WithSolution fixes the envelope instead of drawing it.
func (b *GameBuilder) WithSolution(t cards.Triple) *GameBuilder {
	b.solution = &t
	return b
}

// WithHands fixes every seat's hand. It requires WithSolution.
func (b *GameBuilder) WithHands(hands [][]string) *GameBuilder {
	b.hands = hands
	return b
}

func (b *GameBuilder) WithMaxTurns(n int) *GameBuilder {
	b.maxTurns = n
	return b
}

// WithDeterministicChoices makes every AI break ties by catalogue order
// instead of at random.
func (b *GameBuilder) WithDeterministicChoices() *GameBuilder {
	b.deterministic = true
	return b
}

// Build constructs the Game object after all options have been configured.
func (b *GameBuilder) Build() (*Game, error) {
	totalPlayers := len(b.specs)
	if totalPlayers < 2 || totalPlayers > len(b.cfg.Suspects) {
		return nil, errors.New("invalid number of players")
	}
	cfg := b.cfg.DeepCopy()
	if b.maxTurns > 0 {
		cfg.MaxTurns = b.maxTurns
	}

	// 1. Create the Game object
	id := uuid.NewString()
	log := b.log.WithField("game", id)
	occ := board.NewOccupancy(b.topo)
	game := &Game{
		ID:           id,
		Config:       cfg,
		EventManager: b.eventManager,
		topo:         b.topo,
		occ:          occ,
		engine:       board.NewEngine(b.topo, occ),
		weapons:      make(map[string]string),
		log:          log,
		rand:         b.rand,
		winner:       NoWinner,
	}

	// 2. Create players and inject dependencies; seat i plays suspect i
	for i, spec := range b.specs {
		name := cfg.Suspects[i]
		p := spec.custom
		switch {
		case p != nil:
		case spec.prompter != nil:
			p = player.NewHumanPlayer(spec.prompter)
		default:
			p = b.newAI(spec.kind, log.WithField("player", name))
		}
		p.Setup(cfg, i, name)
		game.seats = append(game.seats, &Seat{Index: i, Player: p, Token: board.Token(name)})
	}

	// 3. Deal the cards and build each seat's matrix
	hands, err := game.deal(b.solution, b.hands)
	if err != nil {
		return nil, err
	}
	for i, s := range game.seats {
		s.Hand = hands[i]
		m, err := deduction.New(cfg, totalPlayers, i, s.Hand, log.WithField("seat", i))
		if err != nil {
			return nil, fmt.Errorf("matrix for seat %d: %w", i, err)
		}
		s.Matrix = m
		s.Player.ReceiveHand(s.Hand)
		for _, card := range s.Hand {
			s.Player.ObserveCard(card)
		}
		if s.Player.IsHuman() {
			b.eventManager.Publish(events.HumanHandRevealedEvent{PlayerName: s.Player.Name(), Hand: s.Hand})
		}
		log.Debugf("%s Hand: %v", s.Player.Name(), s.Hand)
	}

	// 4. Place every suspect token and weapon
	if err := game.placePieces(); err != nil {
		return nil, err
	}

	names := make([]string, len(game.seats))
	for i, s := range game.seats {
		names[i] = s.Player.Name()
	}
	b.eventManager.Publish(events.GameReadyEvent{GameID: id, Players: names})
	return game, nil
}

func (b *GameBuilder) newAI(kind AIKind, log logrus.FieldLogger) player.Player {
	// Each AI gets its own random source so seats do not perturb each other.
	var chooser ai.Chooser = &ai.DeterministicChooser{}
	if !b.deterministic {
		chooser = ai.NewRandomChooser(rand.New(rand.NewSource(b.rand.Int63())))
	}
	if kind == AIRing {
		return ai.NewRingBot(log, chooser)
	}
	return ai.NewExplorer(log, chooser)
}

// deal initializes the solution and deals the remaining cards round-robin
// from seat 0.
func (g *Game) deal(fixed *cards.Triple, fixedHands [][]string) ([][]string, error) {
	n := len(g.seats)
	if fixed != nil {
		if !g.Config.ValidTriple(*fixed) {
			return nil, fmt.Errorf("solution %s: %w", *fixed, config.ErrInvalidCatalogue)
		}
		g.solution = *fixed
	}
	if fixedHands != nil {
		if fixed == nil {
			return nil, errors.New("fixed hands need a fixed solution")
		}
		if err := g.checkHands(fixedHands); err != nil {
			return nil, err
		}
		return fixedHands, nil
	}

	deck := make([]string, len(g.Config.AllCards))
	copy(deck, g.Config.AllCards)
	g.rand.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	if fixed == nil {
		dealtCategories := make(map[cards.Category]bool)
		for i := len(deck) - 1; i >= 0; i-- {
			card := deck[i]
			category := g.Config.CardToType[card]
			if !dealtCategories[category] {
				g.solution = g.solution.With(category, card)
				dealtCategories[category] = true
			}
		}
	}

	hands := make([][]string, n)
	dealt := 0
	for _, card := range deck {
		if g.solution.Contains(card) {
			continue
		}
		hands[dealt%n] = append(hands[dealt%n], card)
		dealt++
	}
	g.log.Debugf("Ground Truth Initialized. Solution: %s", g.solution)
	return hands, nil
}

// checkHands verifies that fixed hands and the solution partition the deck
// with the sizes a round-robin deal would give.
func (g *Game) checkHands(hands [][]string) error {
	if len(hands) != len(g.seats) {
		return fmt.Errorf("%d hands for %d seats", len(hands), len(g.seats))
	}
	sizes := config.HandSizes(len(g.Config.AllCards), len(g.seats))
	seen := make(map[string]bool)
	for _, card := range g.solution.Cards() {
		seen[card] = true
	}
	for i, hand := range hands {
		if len(hand) != sizes[i] {
			return fmt.Errorf("seat %d holds %d cards, want %d", i, len(hand), sizes[i])
		}
		for _, card := range hand {
			if _, ok := g.Config.Category(card); !ok || seen[card] {
				return fmt.Errorf("card %q is unknown or dealt twice", card)
			}
			seen[card] = true
		}
	}
	return nil
}

// placePieces puts suspect tokens on the staging cells, spilling into the hub
// when there are more suspects than cells, and lays every weapon in the hub.
func (g *Game) placePieces() error {
	hub := g.topo.Hub()
	for i, suspect := range g.Config.Suspects {
		tok := board.Token(suspect)
		if i < len(g.Config.Staging) {
			c := g.Config.Staging[i]
			if err := g.occ.Place(tok, board.Pos{Row: c.Row, Col: c.Col}); err != nil {
				return fmt.Errorf("staging %s: %w", suspect, err)
			}
			continue
		}
		if _, err := g.occ.PlaceInRoom(tok, hub.ID); err != nil {
			return fmt.Errorf("staging %s: %w", suspect, err)
		}
	}
	for _, w := range g.Config.Weapons {
		g.weapons[w] = hub.Name
	}
	return nil
}

// Weapons lists weapon locations in catalogue order.
func (g *Game) Weapons() []string {
	out := slices.Clone(g.Config.Weapons)
	for i, w := range out {
		out[i] = w + " (" + g.weapons[w] + ")"
	}
	return out
}
