// Package guild models guild experience, levels, perks and membership ranks.
package guild

import (
	"sort"
	"time"
)

// MaxLevel is the top guild level.
const MaxLevel = 7

// thresholds[L] is the lifetime experience a guild needs to reach level L.
var thresholds = [MaxLevel + 1]int64{0, 27000, 108000, 324000, 810000, 1890000, 4050000, 8100000}

// bonuses[L] is the (xp%, currency%) pair granted to members at level L.
var bonuses = [MaxLevel + 1][2]int{{0, 0}, {5, 5}, {10, 10}, {15, 15}, {20, 20}, {25, 25}, {30, 30}, {33, 33}}

type Guild struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"` // empty once dissolved
	Level      int       `json:"level"`
	Experience int64     `json:"experience"`
	LeaderID   int64     `json:"leader_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Dissolved reports whether the last member left.
func (g *Guild) Dissolved() bool { return g.Name == "" }

// Threshold returns the experience needed to reach level, or -1 past MaxLevel.
func Threshold(level int) int64 {
	if level < 0 {
		return 0
	}
	if level > MaxLevel {
		return -1
	}
	return thresholds[level]
}

// Bonus returns the member (xp%, currency%) perk pair for level.
func Bonus(level int) (xpPercent, goldPercent int) {
	if level < 0 {
		level = 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return bonuses[level][0], bonuses[level][1]
}

// Contribution is the guild experience earned from rawXP gained by one of
// memberCount members. It shrinks as the guild grows.
func Contribution(rawXP int64, memberCount int) int64 {
	if rawXP <= 0 {
		return 0
	}
	if memberCount < 0 {
		memberCount = 0
	}
	return rawXP * 100 / int64(memberCount+10)
}

// AddExperience credits exp and advances levels one at a time while the next
// threshold is met. It returns the number of levels gained.
func (g *Guild) AddExperience(exp int64) int {
	if exp > 0 {
		g.Experience += exp
	}
	gained := 0
	for i := 0; i < MaxLevel && g.Level < MaxLevel && g.Experience >= thresholds[g.Level+1]; i++ {
		g.Level++
		gained++
	}
	return gained
}

// ToNextLevel is the experience still missing for the next level, 0 at max.
func (g *Guild) ToNextLevel() int64 {
	if g.Level >= MaxLevel {
		return 0
	}
	left := thresholds[g.Level+1] - g.Experience
	if left < 0 {
		return 0
	}
	return left
}

// Member is the slice of a player record guild views need.
type Member struct {
	PlayerID       int64     `json:"player_id"`
	Nickname       string    `json:"nickname"`
	Level          int       `json:"level"`
	Experience     int64     `json:"experience"`
	CurrencyEarned int64     `json:"currency_earned"`
	MassCaught     int64     `json:"mass_caught"`
	JoinedAt       time.Time `json:"joined_at"`
}

// Rating is a display score: member totals scaled by 1 + level/10.
func Rating(level int, members []Member) int64 {
	var total int64
	for _, m := range members {
		total += m.CurrencyEarned + m.MassCaught + m.Experience
	}
	return RatingOf(level, total)
}

// RatingOf scales precomputed member totals.
func RatingOf(level int, total int64) int64 {
	return int64(float64(total) * (1 + float64(level)*0.1))
}

// NextLeader picks who leads after leaderID leaves: the longest-standing
// remaining member, or 0 when nobody is left.
func NextLeader(leaderID int64, members []Member) int64 {
	var (
		best  Member
		found bool
	)
	for _, m := range members {
		if m.PlayerID == leaderID {
			continue
		}
		if !found || m.JoinedAt.Before(best.JoinedAt) || (m.JoinedAt.Equal(best.JoinedAt) && m.PlayerID < best.PlayerID) {
			best, found = m, true
		}
	}
	if !found {
		return 0
	}
	return best.PlayerID
}

// Roster orders members leader first, then by join time.
func Roster(leaderID int64, members []Member) []Member {
	out := append([]Member(nil), members...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.PlayerID == leaderID) != (b.PlayerID == leaderID) {
			return a.PlayerID == leaderID
		}
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.PlayerID < b.PlayerID
	})
	return out
}
