package cli

import (
	"fmt"
	"io"
	"strings"

	"example.com/cluedo-mansion/internal/board"
	"example.com/cluedo-mansion/internal/cards"
	"example.com/cluedo-mansion/internal/config"
	"example.com/cluedo-mansion/internal/deduction"
	"example.com/cluedo-mansion/internal/events"
	"example.com/cluedo-mansion/internal/game"
	"example.com/cluedo-mansion/internal/history"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// C holds pre-configured color objects for printing to the console.
var C = struct {
	Yes, No, Maybe, Info, Warn, Header, Prompt, Debug, Wall, Bonus *color.Color
}{
	Yes:    color.New(color.FgGreen),
	No:     color.New(color.FgRed),
	Maybe:  color.New(color.FgYellow),
	Info:   color.New(color.FgCyan),
	Warn:   color.New(color.FgHiYellow),
	Header: color.New(color.FgWhite, color.Bold),
	Prompt: color.New(color.FgHiWhite),
	Debug:  color.New(color.FgMagenta),
	Wall:   color.New(color.FgHiBlack),
	Bonus:  color.New(color.FgHiYellow, color.Bold),
}

// SuspectColors maps suspect names to specific colors for display.
var SuspectColors = map[string]*color.Color{
	"Miss Scarlet":    color.New(color.FgRed),
	"Colonel Mustard": color.New(color.FgYellow),
	"Mrs White":       color.New(color.FgWhite),
	"Reverend Green":  color.New(color.FgGreen),
	"Mrs Peacock":     color.New(color.FgBlue),
	"Professor Plum":  color.New(color.FgMagenta),
}

// ColorizeCard returns a card name as a colored string if it's a suspect.
func ColorizeCard(name string) string {
	if c, ok := SuspectColors[name]; ok {
		return c.Sprint(name)
	}
	return name
}

func colorizeTriple(t cards.Triple) string {
	return fmt.Sprintf("%s, %s, %s", ColorizeCard(t.Suspect), t.Weapon, t.Room)
}

// RenderMatrix displays a possibility matrix in a formatted table, one column
// per seat followed by the envelope.
func RenderMatrix(w io.Writer, title string, cfg *config.GameConfig, seatNames []string, snap deduction.Snapshot) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	header := table.Row{"ID", "Card", "Type"}
	for _, h := range snap.Holders {
		if h.IsEnvelope() {
			header = append(header, "Envelope")
		} else {
			header = append(header, ColorizeCard(seatNames[int(h)]))
		}
	}
	t.AppendHeader(header)

	for i, card := range snap.Cards {
		if i > 0 && cfg.CardToType[card] != cfg.CardToType[snap.Cards[i-1]] {
			t.AppendSeparator()
		}
		row := table.Row{i + 1, ColorizeCard(card), cfg.CardToType[card].String()}
		for j := range snap.Holders {
			row = append(row, statusToSymbol(snap.Status(i, j)))
		}
		t.AppendRow(row)
	}
	t.SetStyle(table.StyleRounded)
	t.Style().Options.SeparateRows = false
	t.Style().Title.Align = text.AlignCenter
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, Align: text.AlignRight}})
	t.Render()
}

func statusToSymbol(status deduction.Status) string {
	switch status {
	case deduction.StatusYes:
		return C.Yes.Sprint("✔")
	case deduction.StatusNo:
		return C.No.Sprint("✖")
	default:
		return C.Maybe.Sprint("?")
	}
}

// RenderHistory lists suggestions with who passed and who answered.
func RenderHistory(w io.Writer, entries []history.Suggestion, seatNames []string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Turn", "Suggester", "Suggestion", "Passed", "Refuted By"})
	for _, e := range entries {
		var passed []string
		for _, p := range e.Passed {
			passed = append(passed, seatNames[p])
		}
		refuter := C.Maybe.Sprint("nobody")
		if e.Refuted() {
			refuter = ColorizeCard(seatNames[e.RefutedBy])
		}
		t.AppendRow(table.Row{e.Seq, e.Turn, ColorizeCard(seatNames[e.Suggester]), colorizeTriple(e.Triple), strings.Join(passed, ", "), refuter})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

// RenderBatchReport prints win rates per strategy and the turn statistics.
func RenderBatchReport(w io.Writer, r game.BatchReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%d simulated games", r.Games))
	t.AppendHeader(table.Row{"Strategy", "Wins", "Win Rate"})
	for _, s := range r.Strategies() {
		t.AppendRow(table.Row{s, r.WinsByStrategy[s], fmt.Sprintf("%.1f%%", 100*r.WinRate(s))})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"no winner", r.NoWinner, ""})
	t.AppendFooter(table.Row{"turns", fmt.Sprintf("min %d / max %d", r.MinTurns, r.MaxTurns), fmt.Sprintf("mean %.1f", r.MeanTurns)})
	t.SetStyle(table.StyleRounded)
	t.Style().Title.Align = text.AlignCenter
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}, {Number: 3, Align: text.AlignRight}})
	t.Render()

	if r.TurnCapHits > 0 {
		C.Warn.Fprintf(w, "%d game(s) hit the turn cap.\n", r.TurnCapHits)
	}
}

// RenderBoard draws the grid. Rooms show their initial (upper case on an
// entrance), corridors a dot, bonus spaces a question mark, and tokens the
// 1-based index of their suspect in the catalogue.
func RenderBoard(w io.Writer, topo *board.Topology, cfg *config.GameConfig, tokenAt func(board.Pos) (string, bool)) {
	index := make(map[string]int, len(cfg.Suspects))
	for i, s := range cfg.Suspects {
		index[s] = i + 1
	}
	for r := 0; r < topo.Rows(); r++ {
		var sb strings.Builder
		for c := 0; c < topo.Cols(); c++ {
			p := board.Pos{Row: r, Col: c}
			if tok, ok := tokenAt(p); ok {
				sb.WriteString(tokenColor(tok).Sprintf("%d", index[tok]))
				continue
			}
			sb.WriteString(cellGlyph(topo, p))
		}
		fmt.Fprintln(w, sb.String())
	}

	var legend []string
	for i, s := range cfg.Suspects {
		legend = append(legend, fmt.Sprintf("%d=%s", i+1, ColorizeCard(s)))
	}
	fmt.Fprintln(w, strings.Join(legend, "  "))
}

func tokenColor(name string) *color.Color {
	if c, ok := SuspectColors[name]; ok {
		return c
	}
	return C.Header
}

func cellGlyph(topo *board.Topology, p board.Pos) string {
	cell := topo.Cell(p)
	switch cell.Kind {
	case board.KindCorridor:
		return "·"
	case board.KindBonus:
		return C.Bonus.Sprint("?")
	case board.KindRoomInterior:
		room := topo.Room(cell.Room)
		if room.Hub {
			return C.Info.Sprint("+")
		}
		return strings.ToLower(room.Name[:1])
	case board.KindRoomEntrance:
		return C.Header.Sprint(strings.ToUpper(topo.Room(cell.Room).Name[:1]))
	default:
		return C.Wall.Sprint("#")
	}
}

// SimulationRenderer implements the events.Listener interface to print game state to the console.
type SimulationRenderer struct {
	w     io.Writer
	names []string
}

// NewSimulationRenderer creates a renderer that writes to w.
func NewSimulationRenderer(w io.Writer) *SimulationRenderer {
	return &SimulationRenderer{w: w}
}

func (r *SimulationRenderer) name(seat int) string {
	if seat < 0 || seat >= len(r.names) {
		return fmt.Sprintf("P%d", seat)
	}
	return ColorizeCard(r.names[seat])
}

// HandleEvent is the central dispatcher for rendering events.
func (r *SimulationRenderer) HandleEvent(e events.Event) {
	switch event := e.(type) {
	case events.GameReadyEvent:
		r.names = event.Players
		C.Header.Fprintf(r.w, "--- Starting Game %s ---\n", event.GameID)
		var parts []string
		for _, n := range event.Players {
			parts = append(parts, ColorizeCard(n))
		}
		C.Info.Fprintf(r.w, "Seats: %s\n", strings.Join(parts, ", "))
	case events.HumanHandRevealedEvent:
		var cardParts []string
		for _, card := range event.Hand {
			cardParts = append(cardParts, ColorizeCard(card))
		}
		C.Info.Fprintf(r.w, "\n%s's hand: %s\n", ColorizeCard(event.PlayerName), strings.Join(cardParts, ", "))
	case events.TurnStartEvent:
		C.Header.Fprintf(r.w, "\n--- Turn %d: %s ---\n", event.TurnNumber, ColorizeCard(event.PlayerName))
	case events.DiceRolledEvent:
		fmt.Fprintf(r.w, "Rolled %d.\n", event.Steps)
	case events.MovedEvent:
		if event.Room != "" {
			fmt.Fprintf(r.w, "Moves %s -> %s, entering the %s.\n", event.From, event.To, event.Room)
		} else {
			fmt.Fprintf(r.w, "Moves %s -> %s.\n", event.From, event.To)
		}
	case events.SecretPassageEvent:
		C.Info.Fprintf(r.w, "Takes the secret passage from the %s to the %s.\n", event.FromRoom, event.ToRoom)
	case events.StayedInRoomEvent:
		fmt.Fprintf(r.w, "Stays in the %s.\n", event.Room)
	case events.SuggestionMadeEvent:
		C.Info.Fprintf(r.w, "%s suggests: %s\n", ColorizeCard(event.PlayerName), colorizeTriple(event.Suggestion))
	case events.TokenSummonedEvent:
		fmt.Fprintf(r.w, "%s is brought to the %s.\n", ColorizeCard(event.Token), event.Room)
	case events.RefutedEvent:
		C.Info.Fprintf(r.w, "-> %s shows a card to %s.\n", r.name(event.Refuter), r.name(event.Suggester))
	case events.NoRefutationEvent:
		C.Info.Fprintln(r.w, "-> No player could show a card.")
	case events.BonusDrawnEvent:
		C.Bonus.Fprintf(r.w, "%s draws %q: %s.\n", r.name(event.Seat), event.Card, event.Detail)
	case events.AccusationEvent:
		C.Info.Fprintf(r.w, "%s ACCUSES: %s\n", ColorizeCard(event.PlayerName), colorizeTriple(event.Accusation))
		if event.Correct {
			C.Yes.Fprintf(r.w, "The accusation is CORRECT! %s wins!\n", ColorizeCard(event.PlayerName))
		} else {
			C.No.Fprintln(r.w, "The accusation is INCORRECT!")
		}
	case events.PlayerEliminatedEvent:
		C.No.Fprintf(r.w, "%s is out of the game.\n", ColorizeCard(event.PlayerName))
	case events.GameOverEvent:
		r.renderGameResult(event)
	}
}

func (r *SimulationRenderer) renderGameResult(event events.GameOverEvent) {
	C.Header.Fprintln(r.w, "\n--- GAME OVER ---")
	switch {
	case event.Winner != "":
		C.Yes.Fprintf(r.w, "%s wins after %d turns.\n", ColorizeCard(event.Winner), event.Turns)
	case event.TurnCapHit:
		C.Warn.Fprintf(r.w, "Turn cap reached after %d turns without a correct accusation.\n", event.Turns)
	default:
		C.Warn.Fprintln(r.w, "Every player was eliminated.")
	}
	C.Info.Fprintf(r.w, "The correct solution was: %s\n", colorizeTriple(event.Solution))
}
