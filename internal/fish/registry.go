package fish

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed species.yaml
var defaultSpecies []byte

// Species describes everything a rarity bucket can turn into.
type Species struct {
	Rarity    Rarity
	Prefixes  []string
	Names     []string // base names; fetch quests target these
	MinWeight int      // kg, inclusive
	MaxWeight int
	MinXP     int
	MaxXP     int
}

type SpeciesYAML struct {
	Prefixes  []string `yaml:"prefixes"`
	Names     []string `yaml:"names"`
	MinWeight int      `yaml:"min_weight"`
	MaxWeight int      `yaml:"max_weight"`
	MinXP     int      `yaml:"min_xp"`
	MaxXP     int      `yaml:"max_xp"`
}

type Registry struct {
	byRarity [3]Species
}

// DefaultRegistry returns the registry built into the binary.
func DefaultRegistry() *Registry {
	reg, err := ParseRegistry(defaultSpecies)
	if err != nil {
		panic(fmt.Sprintf("embedded species table: %v", err))
	}
	return reg
}

func LoadRegistryFromYAML(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRegistry(raw)
}

func ParseRegistry(raw []byte) (*Registry, error) {
	var doc map[string]SpeciesYAML
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse species: %w", err)
	}

	reg := &Registry{}
	seen := map[Rarity]bool{}
	for key, sy := range doc {
		r, err := ParseRarity(key)
		if err != nil {
			return nil, err
		}
		if len(sy.Prefixes) == 0 || len(sy.Names) == 0 {
			return nil, fmt.Errorf("%s: prefixes and names are required", r)
		}
		if sy.MinWeight < 1 || sy.MaxWeight < sy.MinWeight {
			return nil, fmt.Errorf("%s: bad weight range %d..%d", r, sy.MinWeight, sy.MaxWeight)
		}
		if sy.MinXP < 0 || sy.MaxXP < sy.MinXP {
			return nil, fmt.Errorf("%s: bad xp range %d..%d", r, sy.MinXP, sy.MaxXP)
		}
		seen[r] = true
		reg.byRarity[r] = Species{
			Rarity:    r,
			Prefixes:  sy.Prefixes,
			Names:     sy.Names,
			MinWeight: sy.MinWeight,
			MaxWeight: sy.MaxWeight,
			MinXP:     sy.MinXP,
			MaxXP:     sy.MaxXP,
		}
	}
	for _, r := range Rarities {
		if !seen[r] {
			return nil, fmt.Errorf("missing rarity %s", r)
		}
	}

	return reg, nil
}

func (r *Registry) Get(rarity Rarity) Species {
	if !rarity.Valid() {
		rarity = Common
	}
	return r.byRarity[rarity]
}
