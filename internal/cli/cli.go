package cli

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"example.com/cluedo-mansion/internal/ai"
	"example.com/cluedo-mansion/internal/board"
	"example.com/cluedo-mansion/internal/cards"
	"example.com/cluedo-mansion/internal/config"
	"example.com/cluedo-mansion/internal/game"
	"example.com/cluedo-mansion/internal/history"

	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CLI manages all command-line interactions.
type CLI struct {
	log  *logrus.Logger
	line *liner.State
	out  io.Writer

	configPath string
	logLevel   string
	seed       int64

	cfg  *config.GameConfig
	rand *rand.Rand
}

// NewRootCommand builds the command tree around a shared logger.
func NewRootCommand(log *logrus.Logger) *cobra.Command {
	c := &CLI{log: log}

	root := &cobra.Command{
		Use:   "cluedo",
		Short: "Cluedo on the mansion board: simulations, benchmarks and a detective co-pilot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.prepare(cmd)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&c.logLevel, "loglevel", "info", "logging level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&c.configPath, "config", "default_config.yaml", "game configuration file (.yaml or .json)")
	root.PersistentFlags().Int64Var(&c.seed, "seed", 0, "random seed (0 picks one from the clock)")

	root.AddCommand(c.startCommand(), c.benchCommand(), c.boardCommand(), c.detectiveCommand())
	return root
}

// prepare resolves flags, environment overrides and the configuration before
// any subcommand runs.
func (c *CLI) prepare(cmd *cobra.Command) error {
	c.out = cmd.OutOrStdout()

	overrides, err := config.LoadOverrides()
	if err != nil {
		return err
	}

	level := c.logLevel
	if !cmd.Flags().Changed("loglevel") && overrides.LogLevel != "" {
		level = overrides.LogLevel
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	c.log.SetLevel(parsed)

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.Apply(overrides)
	c.cfg = cfg

	if !cmd.Flags().Changed("seed") && overrides.Seed != 0 {
		c.seed = overrides.Seed
	}
	if c.seed == 0 {
		c.seed = time.Now().UnixNano()
	}
	c.rand = rand.New(rand.NewSource(c.seed))
	c.log.Debugf("Using seed %d.", c.seed)
	return nil
}

func (c *CLI) openLine() {
	c.line = liner.NewLiner()
	c.line.SetCtrlCAborts(true)
}

func (c *CLI) closeLine() {
	if c.line != nil {
		c.line.Close()
		c.line = nil
	}
}

func (c *CLI) startCommand() *cobra.Command {
	var (
		humans, ais, maxTurns int
		kind                  string
	)
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Play a game on the mansion board with human and AI seats",
		RunE: func(cmd *cobra.Command, args []string) error {
			aiKind, err := game.ParseAIKind(kind)
			if err != nil {
				return err
			}
			return c.runSimulationMode(cmd, humans, ais, aiKind, maxTurns)
		},
	}
	cmd.Flags().IntVar(&humans, "humans", 1, "number of human seats")
	cmd.Flags().IntVar(&ais, "ai", 2, "number of AI seats")
	cmd.Flags().StringVar(&kind, "kind", string(game.AIExplorer), "AI strategy (explorer or ring)")
	cmd.Flags().IntVar(&maxTurns, "max-turns", 0, "turn cap (0 keeps the configured one)")
	return cmd
}

func (c *CLI) runSimulationMode(cmd *cobra.Command, numHumans, numAI int, kind game.AIKind, maxTurns int) error {
	topo, err := board.LoadLayout(c.cfg)
	if err != nil {
		return err
	}
	if numHumans > 0 {
		c.openLine()
		defer c.closeLine()
	}
	C.Header.Fprintln(c.out, "--- Running Simulation ---")

	builder := game.NewBuilder(c.cfg, topo, c.log, c.rand)
	builder.EventManager().Subscribe(NewSimulationRenderer(c.out))
	g, err := builder.
		WithHumanPlayers(numHumans, linePrompter{c: c}).
		WithAIPlayers(kind, numAI).
		WithMaxTurns(maxTurns).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build game: %w", err)
	}

	res, err := g.Run(cmd.Context())
	if err != nil {
		return err
	}

	names := seatNames(g)
	if res.Winner != game.NoWinner {
		RenderMatrix(c.out, fmt.Sprintf("%s's notes", res.WinnerName), g.Config, names, g.MatrixSnapshot(res.Winner))
	}
	RenderBoard(c.out, g.Topology(), g.Config, func(p board.Pos) (string, bool) {
		tok, ok := g.Occupant(p)
		return string(tok), ok
	})
	C.Info.Fprintf(c.out, "Weapons: %s\n", strings.Join(g.Weapons(), ", "))
	return nil
}

func seatNames(g *game.Game) []string {
	var names []string
	for _, s := range g.Seats() {
		names = append(names, s.Player.Name())
	}
	return names
}

func (c *CLI) benchCommand() *cobra.Command {
	var (
		games, parallel, players int
		kinds                    []string
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run many AI-only games concurrently and compare strategies",
		RunE: func(cmd *cobra.Command, args []string) error {
			seats := make([]game.AIKind, players)
			for i := range seats {
				k, err := game.ParseAIKind(kinds[i%len(kinds)])
				if err != nil {
					return err
				}
				seats[i] = k
			}
			return c.runBench(cmd, games, parallel, seats)
		},
	}
	cmd.Flags().IntVar(&games, "games", 100, "number of games")
	cmd.Flags().IntVar(&parallel, "parallel", 4, "games run at once")
	cmd.Flags().IntVar(&players, "players", 4, "seats per game")
	cmd.Flags().StringSliceVar(&kinds, "kinds", []string{string(game.AIExplorer), string(game.AIRing)}, "strategies assigned to seats in rotation")
	return cmd
}

func (c *CLI) runBench(cmd *cobra.Command, games, parallel int, seats []game.AIKind) error {
	if games <= 0 {
		return errors.New("--games must be positive")
	}
	topo, err := board.LoadLayout(c.cfg)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("loglevel") && c.log.GetLevel() > logrus.WarnLevel {
		c.log.SetLevel(logrus.WarnLevel)
	}
	base := c.seed
	newGame := func(i int) (*game.Game, error) {
		b := game.NewBuilder(c.cfg, topo, c.log, rand.New(rand.NewSource(base+int64(i))))
		for _, k := range seats {
			b.WithAIPlayers(k, 1)
		}
		return b.Build()
	}

	C.Header.Fprintf(c.out, "--- Benchmarking %d games, %d at a time ---\n", games, parallel)
	report, err := game.RunBatch(cmd.Context(), games, parallel, newGame)
	if err != nil {
		return err
	}
	RenderBatchReport(c.out, report)
	return nil
}

func (c *CLI) boardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Draw the board with every token on its starting cell",
		RunE: func(cmd *cobra.Command, args []string) error {
			topo, err := board.LoadLayout(c.cfg)
			if err != nil {
				return err
			}
			staged := make(map[board.Pos]string)
			for i, cell := range c.cfg.Staging {
				if i < len(c.cfg.Suspects) {
					staged[board.Pos{Row: cell.Row, Col: cell.Col}] = c.cfg.Suspects[i]
				}
			}
			RenderBoard(c.out, topo, c.cfg, func(p board.Pos) (string, bool) {
				s, ok := staged[p]
				return s, ok
			})
			return nil
		},
	}
}

func (c *CLI) detectiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "detective",
		Short: "Keep deduction notes for a game played at a real table",
		RunE: func(cmd *cobra.Command, args []string) error {
			c.openLine()
			defer c.closeLine()
			return c.runDetectiveMode()
		},
	}
}

func (c *CLI) runDetectiveMode() error {
	cfg := c.cfg
	C.Info.Fprintln(c.out, "\n--- Starting Detective Mode Co-Pilot ---")
	numPlayers := c.promptForInt(fmt.Sprintf("How many players are in the real game? (2-%d): ", len(cfg.Suspects)), 2, len(cfg.Suspects))
	var playerNames []string
	for i := 0; i < numPlayers; i++ {
		playerNames = append(playerNames, c.promptForString(fmt.Sprintf("Enter name for Player %d (in turn order): ", i+1)))
	}
	self := c.promptForIndex("Which player are you?", playerNames)
	firstDealt := 0
	if (len(cfg.AllCards)-3)%numPlayers != 0 {
		firstDealt = c.promptForIndex("Who was dealt the first card?", playerNames)
	}
	sizes := config.HandSizesFrom(len(cfg.AllCards), numPlayers, firstDealt)
	C.Info.Fprintf(c.out, "\nSelect the %d cards in your hand.\n", sizes[self])
	myHand := c.promptForCards(cfg, true, sizes[self])

	d, err := NewDetective(cfg, playerNames, self, firstDealt, myHand, c.log)
	if err != nil {
		return err
	}
	chooser := ai.NewRandomChooser(c.rand)

	C.Info.Fprintln(c.out, "\nDetective Mode is active! Your co-pilot is ready.")
	c.handleNotesCommand(d)
	c.printDetectiveHelp()

	for {
		input, err := c.line.Prompt("(detective) ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				C.Info.Fprintln(c.out, "\nGoodbye!")
				return nil
			}
			return fmt.Errorf("error reading line: %w", err)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		c.line.AppendHistory(input)
		cmd := strings.ToLower(strings.Fields(input)[0])

		switch cmd {
		case "log", "l":
			c.handleLogCommand(d)
		case "reveal", "r":
			c.handleRevealCommand(d)
		case "suggest", "s":
			c.handleSuggestCommand(d, chooser)
		case "notes", "n":
			c.handleNotesCommand(d)
		case "history", "hi":
			RenderHistory(c.out, d.History(), d.Names())
		case "hand", "ha":
			c.handleHandCommand(d)
		case "help", "h":
			c.printDetectiveHelp()
		case "quit", "q":
			C.Info.Fprintln(c.out, "Exiting detective mode.")
			return nil
		default:
			C.Warn.Fprintf(c.out, "Unknown command '%s'. Type 'help' for a list of commands.\n", cmd)
		}
	}
}

func (c *CLI) handleNotesCommand(d *Detective) {
	RenderMatrix(c.out, d.Names()[d.Self()]+"'s notes", d.Config(), d.Names(), d.Matrix().Snapshot())
	if t, ok := d.Solved(); ok {
		C.Yes.Fprintf(c.out, "Solved! Accuse: %s\n", colorizeTriple(t))
	}
}

func (c *CLI) handleLogCommand(d *Detective) {
	C.Info.Fprintln(c.out, "\n--- Log a Suggestion ---")
	names := d.Names()
	suggester := c.promptForIndex("Who made the suggestion?", names)

	var t cards.Triple
	for _, cat := range cards.Categories {
		t = t.With(cat, c.promptForSelection(fmt.Sprintf("Which of the %s was suggested?", cat), d.Config().CardListForCategory(cat)))
	}

	var seats []int
	var options []string
	for i := 1; i < len(names); i++ {
		seat := (suggester + i) % len(names)
		seats = append(seats, seat)
		options = append(options, names[seat])
	}
	options = append(options, "No One")
	refuter := history.NoRefuter
	if pick := c.promptForIndex("Who disproved the suggestion?", options); pick < len(seats) {
		refuter = seats[pick]
	}

	var shown string
	if refuter != history.NoRefuter && suggester == d.Self() {
		shown = c.promptForSelection("What card were you shown?", t.Cards())
	}

	if err := d.LogSuggestion(suggester, t, refuter, shown); err != nil {
		C.Warn.Fprintf(c.out, "Not logged: %v\n", err)
		return
	}
	C.Info.Fprintln(c.out, "Suggestion logged. Here are your updated notes:")
	c.handleNotesCommand(d)
}

func (c *CLI) handleRevealCommand(d *Detective) {
	C.Info.Fprintln(c.out, "\n--- Log a Revealed Card ---")
	seat := c.promptForIndex("Which player revealed a card?", d.Names())
	C.Info.Fprintln(c.out, "Which card did they reveal?")
	revealed := c.promptForCards(d.Config(), true, 1)
	if len(revealed) == 0 {
		return
	}
	if err := d.Reveal(seat, revealed[0]); err != nil {
		C.Warn.Fprintf(c.out, "Not logged: %v\n", err)
		return
	}
	C.Info.Fprintln(c.out, "Revealed card logged.")
	c.handleNotesCommand(d)
}

func (c *CLI) handleSuggestCommand(d *Detective, chooser ai.Chooser) {
	C.Header.Fprintln(c.out, "\n--- AI Co-Pilot Suggestion ---")
	C.Info.Fprintf(c.out, "The AI suggests you propose: %s\n", colorizeTriple(d.Advice(chooser)))
}

func (c *CLI) handleHandCommand(d *Detective) {
	C.Header.Fprintln(c.out, "\n--- Your Hand ---")
	for _, card := range d.Hand() {
		C.Info.Fprintln(c.out, " - "+ColorizeCard(card))
	}
}
