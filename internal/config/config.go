package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"example.com/cluedo-mansion/internal/cards"

	"gopkg.in/yaml.v3"
)

// ErrInvalidCatalogue is returned when a configuration fails validation.
var ErrInvalidCatalogue = errors.New("invalid catalogue")

const (
	DefaultMaxTurns      = 400
	DefaultRingMaxCycles = 4
)

// Cell is a raw grid coordinate as written in the config file.
type Cell struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// GameConfig holds the static definitions for a game of Cluedo on the mansion board.
type GameConfig struct {
	Suspects         []string          `json:"suspects" yaml:"suspects"`
	Weapons          []string          `json:"weapons" yaml:"weapons"`
	Rooms            []string          `json:"rooms" yaml:"rooms"`
	HubRoom          string            `json:"hub_room" yaml:"hub_room"`
	SecretPassages   map[string]string `json:"secret_passages" yaml:"secret_passages"`
	Layout           string            `json:"layout" yaml:"layout"`
	Staging          []Cell            `json:"staging" yaml:"staging"`
	AccusationCell   Cell              `json:"accusation_cell" yaml:"accusation_cell"`
	Ring             []string          `json:"ring" yaml:"ring"`
	MaxTurns         int               `json:"max_turns" yaml:"max_turns"`
	RingMaxCycles    int               `json:"ring_max_cycles" yaml:"ring_max_cycles"`
	ShareRefutations bool              `json:"share_refutations" yaml:"share_refutations"`
	BonusCards       []string          `json:"bonus_cards" yaml:"bonus_cards"`

	AllCards   []string                  `json:"-" yaml:"-"`
	CardToType map[string]cards.Category `json:"-" yaml:"-"`
}

// Load reads, parses, and prepares the game configuration from a JSON or YAML file.
// A relative layout path is resolved against the config file's directory.
func Load(path string) (*GameConfig, error) {
	var cfg GameConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
	if cfg.Layout != "" && !filepath.IsAbs(cfg.Layout) {
		cfg.Layout = filepath.Join(filepath.Dir(path), cfg.Layout)
	}
	if err := cfg.Prepare(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Prepare validates the catalogue, fills defaults and builds the card index.
// Catalogue order is kept as written: it is both identity and iteration order.
func (c *GameConfig) Prepare() error {
	if err := c.validate(); err != nil {
		return err
	}
	if c.MaxTurns <= 0 {
		c.MaxTurns = DefaultMaxTurns
	}
	if c.RingMaxCycles <= 0 {
		c.RingMaxCycles = DefaultRingMaxCycles
	}
	if len(c.Ring) == 0 {
		c.Ring = append([]string(nil), c.Rooms...)
	}

	c.AllCards = nil
	c.CardToType = make(map[string]cards.Category)
	for _, cat := range cards.Categories {
		for _, card := range c.CardListForCategory(cat) {
			c.AllCards = append(c.AllCards, card)
			c.CardToType[card] = cat
		}
	}
	return nil
}

func (c *GameConfig) validate() error {
	if len(c.Suspects) == 0 || len(c.Weapons) == 0 || len(c.Rooms) == 0 {
		return fmt.Errorf("%w: every category needs at least one card", ErrInvalidCatalogue)
	}
	seen := make(map[string]bool)
	for _, list := range [][]string{c.Suspects, c.Weapons, c.Rooms} {
		for _, name := range list {
			if name == "" {
				return fmt.Errorf("%w: empty card name", ErrInvalidCatalogue)
			}
			if seen[name] {
				return fmt.Errorf("%w: duplicate card %q", ErrInvalidCatalogue, name)
			}
			seen[name] = true
		}
	}
	if c.HubRoom == "" {
		return fmt.Errorf("%w: hub_room is required", ErrInvalidCatalogue)
	}
	if seen[c.HubRoom] {
		return fmt.Errorf("%w: hub room %q cannot be a card", ErrInvalidCatalogue, c.HubRoom)
	}
	for from, to := range c.SecretPassages {
		if !c.IsRoom(from) || !c.IsRoom(to) {
			return fmt.Errorf("%w: secret passage %s -> %s names an unknown room", ErrInvalidCatalogue, from, to)
		}
	}
	for _, r := range c.Ring {
		if !c.IsRoom(r) {
			return fmt.Errorf("%w: ring room %q is not a room card", ErrInvalidCatalogue, r)
		}
	}
	return nil
}

// DeepCopy creates a new GameConfig with all slices copied to prevent shared state.
func (c *GameConfig) DeepCopy() *GameConfig {
	newCfg := *c
	newCfg.Suspects = append([]string(nil), c.Suspects...)
	newCfg.Weapons = append([]string(nil), c.Weapons...)
	newCfg.Rooms = append([]string(nil), c.Rooms...)
	newCfg.Staging = append([]Cell(nil), c.Staging...)
	newCfg.Ring = append([]string(nil), c.Ring...)
	newCfg.BonusCards = append([]string(nil), c.BonusCards...)
	newCfg.AllCards = append([]string(nil), c.AllCards...)
	newCfg.SecretPassages = make(map[string]string, len(c.SecretPassages))
	for k, v := range c.SecretPassages {
		newCfg.SecretPassages[k] = v
	}
	newCfg.CardToType = make(map[string]cards.Category, len(c.CardToType))
	for k, v := range c.CardToType {
		newCfg.CardToType[k] = v
	}
	return &newCfg
}

// CardListForCategory is a helper to get the correct card list from the config.
func (c *GameConfig) CardListForCategory(cat cards.Category) []string {
	switch cat {
	case cards.CategorySuspect:
		return c.Suspects
	case cards.CategoryWeapon:
		return c.Weapons
	case cards.CategoryRoom:
		return c.Rooms
	default:
		return nil
	}
}

// Category returns the category of a card.
func (c *GameConfig) Category(card string) (cards.Category, bool) {
	cat, ok := c.CardToType[card]
	return cat, ok
}

// IsRoom reports whether name is a room card. The hub room is not a card.
func (c *GameConfig) IsRoom(name string) bool {
	for _, r := range c.Rooms {
		if r == name {
			return true
		}
	}
	return false
}

// BoardRooms lists every room on the board: the room cards followed by the hub.
func (c *GameConfig) BoardRooms() []string {
	return append(append([]string(nil), c.Rooms...), c.HubRoom)
}

// ValidTriple reports whether t names one card of each category.
func (c *GameConfig) ValidTriple(t cards.Triple) bool {
	for _, cat := range cards.Categories {
		got, ok := c.CardToType[t.Get(cat)]
		if !ok || got != cat {
			return false
		}
	}
	return true
}

// HandSizes returns how many cards each seat receives when the cards left after
// the three envelope cards are dealt round-robin from seat 0.
func HandSizes(totalCards, players int) []int {
	return HandSizesFrom(totalCards, players, 0)
}

// HandSizesFrom is HandSizes for a deal that starts at seat first. The seats
// from first onward, wrapping around, take the odd cards.
func HandSizesFrom(totalCards, players, first int) []int {
	sizes := make([]int, players)
	if players <= 0 {
		return sizes
	}
	dealt := totalCards - 3
	for i := range sizes {
		sizes[i] = dealt / players
		if (i-first%players+players)%players < dealt%players {
			sizes[i]++
		}
	}
	return sizes
}
