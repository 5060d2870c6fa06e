// Package gear resolves what equipment and timed effects do to a cast: how long
// the wait is, which rarity table applies and how rewards are scaled.
package gear

import (
	"math"
	"time"

	"github.com/faideww/reelquest/internal/clock"
	"github.com/faideww/reelquest/internal/fish"
)

// NoBaitLabel is the usage-counter key for catches made without active bait.
const NoBaitLabel = "No bait"

// Rod is the equipped rod. BonusPercent shortens the cast delay.
type Rod struct {
	Name         string `json:"name"`
	BonusPercent int    `json:"bonus_percent"`
}

// Bait is an active bait. Its table overrides the default while unexpired.
type Bait struct {
	Name   string     `json:"name"`
	EndsAt time.Time  `json:"ends_at"`
	Table  fish.Table `json:"table"`
}

// Buff is a timed bonus independent of gear.
type Buff struct {
	Name         string    `json:"name"`
	EndsAt       time.Time `json:"ends_at"`
	SpeedPercent int       `json:"speed_percent"`
	GoldPercent  int       `json:"gold_percent"`
	XPPercent    int       `json:"xp_percent"`
}

// ActiveBait returns b when it is present and unexpired.
func ActiveBait(b *Bait, now time.Time) *Bait {
	if b == nil || !clock.Active(b.EndsAt, now) {
		return nil
	}
	return b
}

// ActiveBuff returns b when it is present and unexpired.
func ActiveBuff(b *Buff, now time.Time) *Buff {
	if b == nil || !clock.Active(b.EndsAt, now) {
		return nil
	}
	return b
}

// BaitLabel names the bait a catch is credited to.
func BaitLabel(b *Bait, now time.Time) string {
	if b = ActiveBait(b, now); b != nil {
		return b.Name
	}
	return NoBaitLabel
}

// EffectiveTable is the active bait's table, else the default.
func EffectiveTable(b *Bait, now time.Time) fish.Table {
	if b = ActiveBait(b, now); b != nil {
		return b.Table
	}
	return fish.DefaultTable
}

// MinDelay is the shortest possible wait.
const MinDelay = time.Second

// CastDelay shortens a base wait of baseSeconds by the rod bonus, then by the
// active buff's speed percent (rounded up), and floors the result at MinDelay.
func CastDelay(baseSeconds int, rod Rod, buff *Buff, now time.Time) time.Duration {
	delay := baseSeconds * (100 - rod.BonusPercent) / 100
	if b := ActiveBuff(buff, now); b != nil && b.SpeedPercent > 0 {
		delay -= int(math.Ceil(float64(delay) * float64(b.SpeedPercent) / 100))
	}
	if delay < 1 {
		delay = 1
	}
	return time.Duration(delay) * time.Second
}

// ApplyPercent returns base plus ceil(base*percent/100), adding at least 1
// whenever percent and base are positive.
func ApplyPercent(base int64, percent int) int64 {
	if base <= 0 || percent <= 0 {
		return base
	}
	inc := int64(math.Ceil(float64(base) * float64(percent) / 100))
	if inc < 1 {
		inc = 1
	}
	return base + inc
}

// Modifiers are the percent bonuses stacked on a reward.
type Modifiers struct {
	BuffGold  int
	BuffXP    int
	GuildGold int
	GuildXP   int
}

// ModifiersFor collects the bonuses of an active buff and a guild level pair.
func ModifiersFor(buff *Buff, now time.Time, guildXP, guildGold int) Modifiers {
	m := Modifiers{GuildGold: guildGold, GuildXP: guildXP}
	if b := ActiveBuff(buff, now); b != nil {
		m.BuffGold = b.GoldPercent
		m.BuffXP = b.XPPercent
	}
	return m
}

// Gold scales a currency reward by the buff, then the guild bonus.
func (m Modifiers) Gold(base int64) int64 {
	return ApplyPercent(ApplyPercent(base, m.BuffGold), m.GuildGold)
}

// XP scales an experience reward by the buff, then the guild bonus.
func (m Modifiers) XP(base int64) int64 {
	return ApplyPercent(ApplyPercent(base, m.BuffXP), m.GuildXP)
}
