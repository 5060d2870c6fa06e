package fish

import (
	"fmt"
	"strings"
)

type Rarity int

const (
	Common Rarity = iota
	Rare
	Legendary
)

// Rarities lists every rarity from most to least common.
var Rarities = []Rarity{Common, Rare, Legendary}

func (r Rarity) String() string {
	switch r {
	case Legendary:
		return "legendary"
	case Rare:
		return "rare"
	default:
		return "common"
	}
}

func (r Rarity) Valid() bool { return r >= Common && r <= Legendary }

func ParseRarity(s string) (Rarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "common":
		return Common, nil
	case "rare":
		return Rare, nil
	case "legendary":
		return Legendary, nil
	}
	return Common, fmt.Errorf("unknown rarity %q", s)
}

func (r Rarity) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Rarity) UnmarshalText(b []byte) error {
	v, err := ParseRarity(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Table holds the integer weights used by RollRarity. Weights are compared
// cumulatively against a draw in [1,100] and need not sum to 100.
type Table struct {
	Common    int `yaml:"common" json:"common"`
	Rare      int `yaml:"rare" json:"rare"`
	Legendary int `yaml:"legendary" json:"legendary"`
}

// DefaultTable applies when no bait is active.
var DefaultTable = Table{Common: 70, Rare: 25, Legendary: 5}

func (t Table) Weight(r Rarity) int {
	switch r {
	case Legendary:
		return t.Legendary
	case Rare:
		return t.Rare
	default:
		return t.Common
	}
}

func (t Table) IsZero() bool { return t == Table{} }

func ColorForRarity(r Rarity) int {
	switch r {
	case Legendary:
		return 0xF1C40F // gold
	case Rare:
		return 0x3498DB // blue
	default:
		return 0x95A5A6 // gray
	}
}
