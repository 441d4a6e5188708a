package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"example.com/cluedo-mansion/internal/config"

	"github.com/jedib0t/go-pretty/v6/table"
)

// --- Prompting and Usage ---

func (c *CLI) printDetectiveHelp() {
	C.Header.Fprintln(c.out, "\n--- Detective Mode Help ---")
	fmt.Fprintln(c.out, "Log events from your real-life game, and the deduction matrix will track everything for you.")

	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.AppendHeader(table.Row{"Command", "Alias", "Description"})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"log", "l", "Log a full suggestion: who asked, who passed, who answered."},
		{"reveal", "r", "Log a single card shown to you outside a suggestion."},
		{"suggest", "s", "Ask the co-pilot which cards to suggest next."},
		{"notes", "n", "Display the current possibility matrix."},
		{"history", "hi", "Display every suggestion logged so far."},
		{"hand", "ha", "Display the cards currently in your hand."},
		{"help", "h", "Show this help message."},
		{"quit", "q", "Exit detective mode."},
	})
	t.SetStyle(table.StyleLight)
	t.Render()
}

func (c *CLI) promptForString(prompt string) string {
	for {
		C.Prompt.Fprint(c.out, prompt)
		input, err := c.line.Prompt("")
		if err != nil {
			C.Info.Fprintln(c.out, "\nGoodbye!")
			os.Exit(0)
		}
		trimmed := strings.TrimSpace(input)
		if trimmed != "" {
			c.line.AppendHistory(trimmed)
			return trimmed
		}
	}
}

func (c *CLI) promptForInt(prompt string, min, max int) int {
	for {
		input := c.promptForString(prompt)
		num, err := strconv.Atoi(input)
		if err != nil || num < min || num > max {
			C.Warn.Fprintf(c.out, "Invalid input. Please enter a number between %d and %d.\n", min, max)
			continue
		}
		return num
	}
}

// promptForIndex lists the options and returns the chosen position.
func (c *CLI) promptForIndex(prompt string, options []string) int {
	for {
		C.Header.Fprintln(c.out, "\n"+prompt)
		for i, opt := range options {
			fmt.Fprintf(c.out, " %2d: %s\n", i+1, ColorizeCard(opt))
		}
		input := c.promptForString("Enter number or name: ")
		if num, err := strconv.Atoi(input); err == nil && num >= 1 && num <= len(options) {
			return num - 1
		}
		for i, opt := range options {
			if strings.EqualFold(opt, input) {
				return i
			}
		}
		C.Warn.Fprintln(c.out, "Invalid selection.")
	}
}

func (c *CLI) promptForSelection(prompt string, options []string) string {
	return options[c.promptForIndex(prompt, options)]
}

func (c *CLI) promptForYesNo(prompt string) bool {
	for {
		switch strings.ToLower(c.promptForString(prompt + " [y/n]: ")) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		C.Warn.Fprintln(c.out, "Please answer y or n.")
	}
}

func (c *CLI) promptForCards(cfg *config.GameConfig, requireAtLeastOne bool, exactCount int) []string {
	var cards []string
	cardSet := make(map[string]struct{})
	C.Header.Fprintln(c.out, "\n--- Card List ---")
	for i, card := range cfg.AllCards {
		fmt.Fprintf(c.out, "%2d: %-18s", i+1, card)
		if (i+1)%3 == 0 {
			fmt.Fprintln(c.out)
		}
	}
	fmt.Fprintln(c.out)

	for {
		if exactCount > 0 && len(cards) == exactCount {
			break
		}
		prompt := "Enter card name/number"
		if exactCount > 0 {
			prompt = fmt.Sprintf("Enter card %d of %d", len(cards)+1, exactCount)
		} else {
			prompt += " (or 'done')"
		}
		input := c.promptForString(prompt + ": ")
		if exactCount == 0 && strings.ToLower(input) == "done" {
			if requireAtLeastOne && len(cards) == 0 {
				C.Warn.Fprintln(c.out, "Please enter at least one card.")
				continue
			}
			break
		}
		foundCard := lookupCard(cfg, input)
		if foundCard == "" {
			C.Warn.Fprintf(c.out, "Error: Card '%s' not found.\n", input)
		} else if _, exists := cardSet[foundCard]; exists {
			C.Warn.Fprintf(c.out, "You have already entered '%s'.\n", foundCard)
		} else {
			cards = append(cards, foundCard)
			cardSet[foundCard] = struct{}{}
			C.Info.Fprintf(c.out, " -> Added: %s\n", ColorizeCard(foundCard))
		}
	}
	return cards
}

// lookupCard resolves a 1-based card number or a case-insensitive name.
func lookupCard(cfg *config.GameConfig, input string) string {
	if num, err := strconv.Atoi(input); err == nil && num >= 1 && num <= len(cfg.AllCards) {
		return cfg.AllCards[num-1]
	}
	for _, card := range cfg.AllCards {
		if strings.EqualFold(card, input) {
			return card
		}
	}
	return ""
}

// linePrompter lets a human seat answer through the line editor.
type linePrompter struct {
	c *CLI
}

func (p linePrompter) Confirm(question string) bool { return p.c.promptForYesNo(question) }

func (p linePrompter) Select(question string, options []string) int {
	return p.c.promptForIndex(question, options)
}

func (p linePrompter) Notify(message string) { C.Info.Fprintln(p.c.out, message) }
