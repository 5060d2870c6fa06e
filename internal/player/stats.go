package player

import "sort"

// Stats count catches per rod name and per bait name.
type Stats struct {
	Rods  map[string]int `json:"rods"`
	Baits map[string]int `json:"baits"`
}

func NewStats() Stats {
	return Stats{Rods: map[string]int{}, Baits: map[string]int{}}
}

func (s *Stats) Record(rod, bait string) {
	if s.Rods == nil {
		s.Rods = map[string]int{}
	}
	if s.Baits == nil {
		s.Baits = map[string]int{}
	}
	s.Rods[rod]++
	s.Baits[bait]++
}

func (s Stats) FavoriteRod() string  { return favorite(s.Rods) }
func (s Stats) FavoriteBait() string { return favorite(s.Baits) }

// favorite returns the most used name, alphabetical on ties, or "".
func favorite(m map[string]int) string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	best, count := "", 0
	for _, name := range names {
		if m[name] > count {
			best, count = name, m[name]
		}
	}
	return best
}
