// Package progression maps experience to levels and ranks.
//
// Thresholds are totals: a player at level L advances once their lifetime
// experience reaches RequiredXP(L). Experience is never spent.
package progression

import "math"

// MaxLevel is the highest level reachable through play.
const MaxLevel = 75

var baseThresholds = []int64{10, 38, 89, 169, 477, 1008, 1809, 2940, 4470, 6471}

// thresholds[i] is the requirement to leave level i+1.
var thresholds = buildThresholds()

func buildThresholds() []int64 {
	out := make([]int64, 0, MaxLevel)
	out = append(out, baseThresholds...)
	for len(out) < MaxLevel {
		prev := out[len(out)-1]
		out = append(out, int64(math.Round(float64(prev)*1.5)))
	}
	return out
}

// RequiredXP returns the lifetime experience needed to leave level.
// Levels past MaxLevel extrapolate by 1.5 per level; play never reaches them.
func RequiredXP(level int) int64 {
	if level < 1 {
		return thresholds[0]
	}
	if level <= MaxLevel {
		return thresholds[level-1]
	}
	last := float64(thresholds[MaxLevel-1])
	return int64(math.Round(last * math.Pow(1.5, float64(level-MaxLevel))))
}

type rankBand struct {
	upTo int
	name string
}

var ranks = []rankBand{
	{3, "Young Angler"},
	{6, "Novice Catcher"},
	{9, "Minnow Hunter"},
	{12, "Seasoned Caster"},
	{15, "Bite Enthusiast"},
	{20, "Hook Connoisseur"},
	{25, "Bait Master"},
	{30, "Skilled Fisher"},
	{35, "Catch Hunter"},
	{40, "True Angler"},
	{45, "Fishing Virtuoso"},
	{50, "River Tamer"},
	{55, "Sea Harvester"},
	{60, "Pond Legend"},
	{65, "Lord of Lakes"},
	{70, "Fishing Master"},
	{MaxLevel, "Epic Angler"},
}

// Rank names the band level falls into. Levels outside 1..MaxLevel clamp.
func Rank(level int) string {
	return ranks[RankIndex(level)].name
}

// RankIndex orders ranks; higher is more senior.
func RankIndex(level int) int {
	for i, b := range ranks {
		if level <= b.upTo {
			return i
		}
	}
	return len(ranks) - 1
}

// LevelFor returns the level implied by a lifetime experience total.
func LevelFor(xp int64) int {
	level := 1
	for level < MaxLevel && xp >= RequiredXP(level) {
		level++
	}
	return level
}

// Result describes what one experience gain did.
type Result struct {
	LeveledUp bool
	From      int
	To        int
	Reward    int64 // currency granted across every level gained
	Rank      string
}

// LevelUp advances level while experience clears the current threshold,
// granting 2×(new level) currency per step. The loop re-reads the threshold
// of the new level each step and never runs more than MaxLevel times.
func LevelUp(level int, xp int64) Result {
	if level < 1 {
		level = 1
	}
	res := Result{From: level, To: level}
	for i := 0; i < MaxLevel && res.To < MaxLevel && xp >= RequiredXP(res.To); i++ {
		res.To++
		res.Reward += int64(res.To) * 2
		res.LeveledUp = true
	}
	res.Rank = Rank(res.To)
	return res
}
