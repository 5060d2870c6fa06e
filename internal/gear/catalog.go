package gear

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/faideww/reelquest/internal/fish"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// RodOffer is a rod for sale.
type RodOffer struct {
	Name          string `yaml:"name" json:"name"`
	Price         int64  `yaml:"price" json:"price"`
	BonusPercent  int    `yaml:"bonus_percent" json:"bonus_percent"`
	RequiredLevel int    `yaml:"required_level" json:"required_level,omitempty"`
}

// BaitOffer is a bait for sale.
type BaitOffer struct {
	Name          string        `yaml:"name" json:"name"`
	Price         int64         `yaml:"price" json:"price"`
	Duration      time.Duration `yaml:"duration" json:"duration"`
	Table         fish.Table    `yaml:"table" json:"table"`
	RequiredLevel int           `yaml:"required_level" json:"required_level,omitempty"`
}

// Equip turns the offer into an active bait starting at now.
func (o BaitOffer) Equip(now time.Time) Bait {
	return Bait{Name: o.Name, EndsAt: now.Add(o.Duration), Table: o.Table}
}

type Catalog struct {
	DefaultRod Rod         `yaml:"-"`
	Rods       []RodOffer  `yaml:"rods"`
	Baits      []BaitOffer `yaml:"baits"`
	GuildRods  []RodOffer  `yaml:"guild_rods"`
	GuildBaits []BaitOffer `yaml:"guild_baits"`
}

type catalogYAML struct {
	Catalog    `yaml:",inline"`
	DefaultRod RodOffer `yaml:"default_rod"`
}

// DefaultCatalog returns the catalog built into the binary.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded gear catalog: %v", err))
	}
	return c
}

func LoadCatalogFromYAML(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(raw)
}

func ParseCatalog(raw []byte) (*Catalog, error) {
	var doc catalogYAML
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse gear catalog: %w", err)
	}
	c := doc.Catalog
	if strings.TrimSpace(doc.DefaultRod.Name) == "" {
		return nil, fmt.Errorf("default rod is required")
	}
	c.DefaultRod = Rod{Name: doc.DefaultRod.Name, BonusPercent: doc.DefaultRod.BonusPercent}

	seen := map[string]bool{}
	check := func(name string, price int64) error {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return fmt.Errorf("item without name")
		}
		if seen[key] {
			return fmt.Errorf("duplicate item %q", name)
		}
		if price < 0 {
			return fmt.Errorf("%s: negative price", name)
		}
		seen[key] = true
		return nil
	}
	for _, rods := range [][]RodOffer{c.Rods, c.GuildRods} {
		for _, r := range rods {
			if err := check(r.Name, r.Price); err != nil {
				return nil, err
			}
			if r.BonusPercent < 0 || r.BonusPercent > 100 {
				return nil, fmt.Errorf("%s: bonus %d out of range", r.Name, r.BonusPercent)
			}
		}
	}
	for _, baits := range [][]BaitOffer{c.Baits, c.GuildBaits} {
		for _, b := range baits {
			if err := check(b.Name, b.Price); err != nil {
				return nil, err
			}
			if b.Duration <= 0 {
				return nil, fmt.Errorf("%s: duration is required", b.Name)
			}
			if b.Table.IsZero() {
				return nil, fmt.Errorf("%s: rarity table is required", b.Name)
			}
		}
	}
	return &c, nil
}

func (c *Catalog) Rod(name string) (RodOffer, bool) {
	return findRod(c.Rods, name)
}

func (c *Catalog) Bait(name string) (BaitOffer, bool) {
	return findBait(c.Baits, name)
}

func (c *Catalog) GuildRod(name string) (RodOffer, bool) {
	return findRod(c.GuildRods, name)
}

func (c *Catalog) GuildBait(name string) (BaitOffer, bool) {
	return findBait(c.GuildBaits, name)
}

// GuildOffers lists the guild shop items unlocked at level.
func (c *Catalog) GuildOffers(level int) ([]RodOffer, []BaitOffer) {
	var rods []RodOffer
	for _, r := range c.GuildRods {
		if level >= r.RequiredLevel {
			rods = append(rods, r)
		}
	}
	var baits []BaitOffer
	for _, b := range c.GuildBaits {
		if level >= b.RequiredLevel {
			baits = append(baits, b)
		}
	}
	return rods, baits
}

func findRod(rods []RodOffer, name string) (RodOffer, bool) {
	for _, r := range rods {
		if sameName(r.Name, name) {
			return r, true
		}
	}
	return RodOffer{}, false
}

func findBait(baits []BaitOffer, name string) (BaitOffer, bool) {
	for _, b := range baits {
		if sameName(b.Name, name) {
			return b, true
		}
	}
	return BaitOffer{}, false
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Suggest returns the candidate closest to input, or "" when nothing is close
// enough to be a plausible typo.
func Suggest(input string, candidates []string) string {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return ""
	}
	type scored struct {
		name string
		dist int
	}
	var best []scored
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(in, strings.ToLower(c))
		if d > suggestLimit(len(c)) {
			continue
		}
		best = append(best, scored{c, d})
	}
	if len(best) == 0 {
		return ""
	}
	sort.SliceStable(best, func(i, j int) bool { return best[i].dist < best[j].dist })
	return best[0].name
}

func suggestLimit(n int) int {
	switch {
	case n <= 4:
		return 1
	case n <= 8:
		return 2
	default:
		return 3
	}
}

// RodNames lists every regular rod name.
func (c *Catalog) RodNames() []string {
	out := make([]string, 0, len(c.Rods))
	for _, r := range c.Rods {
		out = append(out, r.Name)
	}
	return out
}

// BaitNames lists every regular bait name.
func (c *Catalog) BaitNames() []string {
	out := make([]string, 0, len(c.Baits))
	for _, b := range c.Baits {
		out = append(out, b.Name)
	}
	return out
}

// GuildItemNames lists every guild shop item name.
func (c *Catalog) GuildItemNames() []string {
	var out []string
	for _, r := range c.GuildRods {
		out = append(out, r.Name)
	}
	for _, b := range c.GuildBaits {
		out = append(out, b.Name)
	}
	return out
}
