package fish

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
	"sync"
	"time"
)

// Source is the randomness the picker draws from. *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

type lockedSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// NewSource returns a goroutine-safe source seeded from crypto/rand.
func NewSource() Source {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		now := uint64(time.Now().UnixNano())
		binary.LittleEndian.PutUint64(b[:8], now)
		binary.LittleEndian.PutUint64(b[8:], now>>1)
	}
	pcg := mrand.NewPCG(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:]))
	return &lockedSource{rng: mrand.New(pcg)}
}

// NewSeededSource returns a deterministic goroutine-safe source.
func NewSeededSource(seed uint64) Source {
	return &lockedSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

type Picker struct {
	reg *Registry
	rng Source
}

func NewPicker(reg *Registry, rng Source) *Picker {
	if rng == nil {
		rng = NewSource()
	}
	return &Picker{reg: reg, rng: rng}
}

// Between draws uniformly from the inclusive range [lo, hi].
func (p *Picker) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + p.rng.IntN(hi-lo+1)
}

// RollRarity draws r in [1,100] and walks the table cumulatively. A table
// summing below 100 leaves the remainder to legendary; one summing above 100
// starves the rarities checked last.
func (p *Picker) RollRarity(t Table) Rarity {
	roll := p.Between(1, 100)
	if roll <= t.Common {
		return Common
	}
	if roll <= t.Common+t.Rare {
		return Rare
	}
	return Legendary
}

// RollXP draws the experience granted for pulling a fish of rarity r.
func (p *Picker) RollXP(r Rarity) int {
	sp := p.reg.Get(r)
	return p.Between(sp.MinXP, sp.MaxXP)
}

// Catch rolls rarity then experience.
func (p *Picker) Catch(t Table) Catch {
	r := p.RollRarity(t)
	return Catch{Rarity: r, XP: p.RollXP(r)}
}

// Identify turns an unidentified catch of rarity r into a named fish.
func (p *Picker) Identify(r Rarity) Fish {
	sp := p.reg.Get(r)
	prefix := sp.Prefixes[p.rng.IntN(len(sp.Prefixes))]
	name := sp.Names[p.rng.IntN(len(sp.Names))]
	return Fish{
		Name:   prefix + " " + name,
		Weight: p.Between(sp.MinWeight, sp.MaxWeight),
		Rarity: r,
	}
}

// Pick chooses one element of choices uniformly. It panics on an empty slice.
func (p *Picker) Pick(choices []string) string {
	return choices[p.rng.IntN(len(choices))]
}

// PickRarity chooses a rarity uniformly.
func (p *Picker) PickRarity() Rarity {
	return Rarities[p.rng.IntN(len(Rarities))]
}

func (p *Picker) Registry() *Registry { return p.reg }
