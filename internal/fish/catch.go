package fish

// Catch is what a successful pull yields: an unidentified fish of a known
// rarity and the experience it granted.
type Catch struct {
	Rarity Rarity
	XP     int
}

// Fish is an identified catch. The triple is also the inventory key, so two
// fish with the same name, weight and rarity stack.
type Fish struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"` // kg
	Rarity Rarity `json:"rarity"`
}
