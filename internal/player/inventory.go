package player

import (
	"fmt"
	"math"
	"sort"

	apperrors "github.com/faideww/reelquest/internal/errors"
	"github.com/faideww/reelquest/internal/fish"
)

// Unidentified counts catches not yet identified, per rarity.
type Unidentified struct {
	Common    int `json:"common"`
	Rare      int `json:"rare"`
	Legendary int `json:"legendary"`
}

func (u *Unidentified) Add(r fish.Rarity) {
	switch r {
	case fish.Legendary:
		u.Legendary++
	case fish.Rare:
		u.Rare++
	default:
		u.Common++
	}
}

func (u Unidentified) Count(r fish.Rarity) int {
	switch r {
	case fish.Legendary:
		return u.Legendary
	case fish.Rare:
		return u.Rare
	default:
		return u.Common
	}
}

func (u Unidentified) Total() int { return u.Common + u.Rare + u.Legendary }

// Inventory maps identified fish to a positive quantity. Entries that reach
// zero are removed.
type Inventory map[fish.Fish]int

type Entry struct {
	fish.Fish
	Quantity int `json:"quantity"`
}

func (inv Inventory) Add(f fish.Fish, n int) {
	if n <= 0 {
		return
	}
	inv[f] += n
}

// Remove takes n of f out. Taking more than is held is a consistency
// violation and leaves the inventory untouched.
func (inv Inventory) Remove(f fish.Fish, n int) error {
	have := inv[f]
	if n > have {
		return apperrors.New(apperrors.CodeNegativeQuantity,
			fmt.Sprintf("remove %d of %q (%d kg, %s): only %d held", n, f.Name, f.Weight, f.Rarity, have))
	}
	if have-n == 0 {
		delete(inv, f)
		return nil
	}
	inv[f] = have - n
	return nil
}

func (inv Inventory) Empty() bool { return len(inv) == 0 }

// TotalWeight sums weight × quantity.
func (inv Inventory) TotalWeight() int64 {
	var total int64
	for f, qty := range inv {
		total += int64(f.Weight) * int64(qty)
	}
	return total
}

// Entries lists the inventory by rarity, then name, then weight.
func (inv Inventory) Entries() []Entry {
	out := make([]Entry, 0, len(inv))
	for f, qty := range inv {
		out = append(out, Entry{Fish: f, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Rarity != b.Rarity {
			return a.Rarity < b.Rarity
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Weight < b.Weight
	})
	return out
}

// Lightest returns the lowest-weight fish accepted by match, breaking ties by
// name so the choice is stable.
func (inv Inventory) Lightest(match func(fish.Fish) bool) (fish.Fish, bool) {
	var (
		best  fish.Fish
		found bool
	)
	for f := range inv {
		if match != nil && !match(f) {
			continue
		}
		if !found || f.Weight < best.Weight || (f.Weight == best.Weight && f.Name < best.Name) {
			best, found = f, true
		}
	}
	return best, found
}

// SaleValue is what a haul of totalWeight kg sells for: floor(w·π/4).
func SaleValue(totalWeight int64) int64 {
	return int64(math.Floor(float64(totalWeight) * math.Pi / 4))
}
