// Package player holds the durable per-player record and the mutations the
// engine is allowed to make to it.
package player

import (
	"fmt"
	"time"

	apperrors "github.com/faideww/reelquest/internal/errors"
	"github.com/faideww/reelquest/internal/fish"
	"github.com/faideww/reelquest/internal/gear"
	"github.com/faideww/reelquest/internal/progression"
)

// Membership is present iff the player belongs to a guild.
type Membership struct {
	GuildID  int64     `json:"guild_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// CatQuest is the feeding quest state.
type CatQuest struct {
	NextAt time.Time `json:"next_at"` // cooldown; zero means available
	Color  string    `json:"color,omitempty"`
}

// FetchQuest is the one fetch quest a player may hold.
type FetchQuest struct {
	Fish     string      `json:"fish"` // base species name, e.g. "Catfish"
	Rarity   fish.Rarity `json:"rarity"`
	Gold     int64       `json:"gold"`
	XP       int64       `json:"xp"`
	Accepted bool        `json:"accepted"`
}

type Player struct {
	ID             int64
	Nickname       string
	Currency       int64
	Experience     int64
	Level          int
	Rank           string
	RegisteredAt   time.Time
	Rod            gear.Rod
	Bait           *gear.Bait
	Buff           *gear.Buff
	CurrencyEarned int64
	MassCaught     int64
	Guild          *Membership
	Unidentified   Unidentified
	Inventory      Inventory
	Stats          Stats
	Cat            CatQuest
	Fetch          *FetchQuest
}

// New returns the record a player starts with on first interaction.
func New(id int64, now time.Time, rod gear.Rod) *Player {
	return &Player{
		ID:           id,
		Level:        1,
		Rank:         progression.Rank(1),
		RegisteredAt: now,
		Rod:          rod,
		Inventory:    Inventory{},
		Stats:        NewStats(),
	}
}

// UnknownName stands in for players without a nickname.
const UnknownName = "Unknown angler"

// DisplayName is the nickname, or UnknownName.
func (p *Player) DisplayName() string {
	if p.Nickname == "" {
		return UnknownName
	}
	return p.Nickname
}

// GainXP adds experience, runs the level-up loop and pays its reward.
func (p *Player) GainXP(xp int64) progression.Result {
	if xp > 0 {
		p.Experience += xp
	}
	res := progression.LevelUp(p.Level, p.Experience)
	p.Level = res.To
	p.Rank = res.Rank
	p.Currency += res.Reward
	return res
}

// Spend debits amount or fails with INSUFFICIENT_FUNDS.
func (p *Player) Spend(amount int64) error {
	if amount > p.Currency {
		return apperrors.WithMetadata(apperrors.CodeInsufficientFunds,
			fmt.Sprintf("player %d has %d, needs %d", p.ID, p.Currency, amount),
			map[string]string{
				"price":   fmt.Sprint(amount),
				"missing": fmt.Sprint(amount - p.Currency),
			})
	}
	p.Currency -= amount
	return nil
}

// Earn credits currency that counts toward the lifetime total.
func (p *Player) Earn(amount int64) {
	if amount <= 0 {
		return
	}
	p.Currency += amount
	p.CurrencyEarned += amount
}

// Expire drops an expired bait or buff. It reports whether anything changed.
func (p *Player) Expire(now time.Time) bool {
	changed := false
	if p.Bait != nil && gear.ActiveBait(p.Bait, now) == nil {
		p.Bait = nil
		changed = true
	}
	if p.Buff != nil && gear.ActiveBuff(p.Buff, now) == nil {
		p.Buff = nil
		changed = true
	}
	return changed
}

// Summary is the slice of the record every action reports back.
type Summary struct {
	Currency   int64  `json:"currency"`
	Experience int64  `json:"experience"`
	Level      int    `json:"level"`
	Rank       string `json:"rank"`
}

func (p *Player) Summary() Summary {
	return Summary{Currency: p.Currency, Experience: p.Experience, Level: p.Level, Rank: p.Rank}
}

// Patch enumerates the fields that may change without rewriting the whole
// record. Nil fields are left alone.
type Patch struct {
	Nickname   *string
	Membership *Membership
	LeaveGuild bool
}

func (pt Patch) Empty() bool {
	return pt.Nickname == nil && pt.Membership == nil && !pt.LeaveGuild
}

// Apply mirrors the patch onto an in-memory record.
func (pt Patch) Apply(p *Player) {
	if pt.Nickname != nil {
		p.Nickname = *pt.Nickname
	}
	if pt.LeaveGuild {
		p.Guild = nil
	}
	if pt.Membership != nil {
		m := *pt.Membership
		p.Guild = &m
	}
}
