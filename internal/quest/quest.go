// Package quest holds the side quests: feeding the cat for a timed buff and
// fetching a fish for the sailor.
package quest

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/faideww/reelquest/internal/errors"
	"github.com/faideww/reelquest/internal/fish"
	"github.com/faideww/reelquest/internal/gear"
	"github.com/faideww/reelquest/internal/player"
)

const (
	CatCooldown  = 6 * time.Hour
	CatBuffName  = "Friend of Animals"
	CatBuffTime  = 120 * time.Minute
	catBuffBonus = 1
)

var CatColors = []string{"Gray", "Striped", "Ginger", "Purring", "Sad", "Fluffy", "Mischievous"}

// Rand is the randomness quests need.
type Rand interface {
	Between(lo, hi int) int
	Pick(choices []string) string
	PickRarity() fish.Rarity
	Registry() *fish.Registry
}

// VisitCat shows the cat, choosing its color on the first visit after a
// cooldown. It fails while the cat is still full.
func VisitCat(p *player.Player, rng Rand, now time.Time) (string, error) {
	if err := catReady(p, now); err != nil {
		return "", err
	}
	if p.Cat.Color == "" {
		p.Cat.Color = rng.Pick(CatColors)
	}
	return p.Cat.Color, nil
}

// FeedCat gives the cat the lightest fish in the inventory and grants the
// buff. The color is forgotten so the next visit meets a new cat.
func FeedCat(p *player.Player, rng Rand, now time.Time) (fish.Fish, gear.Buff, error) {
	if err := catReady(p, now); err != nil {
		return fish.Fish{}, gear.Buff{}, err
	}
	f, ok := p.Inventory.Lightest(func(fish.Fish) bool { return true })
	if !ok {
		return fish.Fish{}, gear.Buff{}, apperrors.New(apperrors.CodeNoIdentifiedFish, "no fish to feed the cat")
	}
	if err := p.Inventory.Remove(f, 1); err != nil {
		return fish.Fish{}, gear.Buff{}, err
	}
	buff := gear.Buff{
		Name:         CatBuffName,
		EndsAt:       now.Add(CatBuffTime),
		SpeedPercent: catBuffBonus,
		GoldPercent:  catBuffBonus,
		XPPercent:    catBuffBonus,
	}
	p.Buff = &buff
	p.Cat = player.CatQuest{NextAt: now.Add(CatCooldown)}
	return f, buff, nil
}

func catReady(p *player.Player, now time.Time) error {
	if !p.Cat.NextAt.IsZero() && now.Before(p.Cat.NextAt) {
		return apperrors.WithMetadata(apperrors.CodeCatCooldown, "the cat is not hungry",
			map[string]string{"next_at": p.Cat.NextAt.UTC().Format(time.RFC3339)})
	}
	return nil
}

type rewardRange struct{ minXP, maxXP, minGold, maxGold int }

var sailorRewards = map[fish.Rarity]rewardRange{
	fish.Common:    {15, 35, 10, 15},
	fish.Rare:      {40, 100, 25, 50},
	fish.Legendary: {250, 500, 50, 100},
}

// VisitSailor returns the player's fetch quest, offering a new one when none
// is held.
func VisitSailor(p *player.Player, rng Rand) *player.FetchQuest {
	if p.Fetch != nil {
		return p.Fetch
	}
	r := rng.PickRarity()
	rw := sailorRewards[r]
	p.Fetch = &player.FetchQuest{
		Fish:   rng.Pick(rng.Registry().Get(r).Names),
		Rarity: r,
		XP:     int64(rng.Between(rw.minXP, rw.maxXP)),
		Gold:   int64(rng.Between(rw.minGold, rw.maxGold)),
	}
	return p.Fetch
}

func Accept(p *player.Player) error {
	if p.Fetch == nil {
		return apperrors.New(apperrors.CodeNoQuest, "no quest offered")
	}
	if p.Fetch.Accepted {
		return apperrors.New(apperrors.CodeQuestAlreadyAccepted, "quest already accepted")
	}
	p.Fetch.Accepted = true
	return nil
}

// Decline drops an offer that has not been accepted yet.
func Decline(p *player.Player) error {
	if p.Fetch == nil {
		return apperrors.New(apperrors.CodeNoQuest, "no quest offered")
	}
	if p.Fetch.Accepted {
		return apperrors.New(apperrors.CodeQuestAlreadyAccepted, "an accepted quest cannot be declined")
	}
	p.Fetch = nil
	return nil
}

// Matches reports whether f satisfies q: same rarity and the species name is
// the target or ends with it.
func Matches(q *player.FetchQuest, f fish.Fish) bool {
	if q == nil || f.Rarity != q.Rarity {
		return false
	}
	return f.Name == q.Fish || strings.HasSuffix(f.Name, " "+q.Fish)
}

// Deliver hands over the lightest matching fish and clears the quest. The
// caller pays the returned quest rewards.
func Deliver(p *player.Player) (fish.Fish, player.FetchQuest, error) {
	q := p.Fetch
	if q == nil {
		return fish.Fish{}, player.FetchQuest{}, apperrors.New(apperrors.CodeNoQuest, "no quest offered")
	}
	if !q.Accepted {
		return fish.Fish{}, player.FetchQuest{}, apperrors.New(apperrors.CodeQuestNotAccepted, "quest not accepted")
	}
	f, ok := p.Inventory.Lightest(func(f fish.Fish) bool { return Matches(q, f) })
	if !ok {
		return fish.Fish{}, player.FetchQuest{}, apperrors.WithMetadata(apperrors.CodeNoMatchingFish,
			fmt.Sprintf("no %s %s in inventory", q.Rarity, q.Fish),
			map[string]string{"fish": q.Fish, "rarity": q.Rarity.String()})
	}
	if err := p.Inventory.Remove(f, 1); err != nil {
		return fish.Fish{}, player.FetchQuest{}, err
	}
	done := *q
	p.Fetch = nil
	return f, done, nil
}
