package game

import (
	"context"
	"log"
	"time"

	"github.com/faideww/reelquest/internal/fish"
	"github.com/faideww/reelquest/internal/gear"
	"github.com/faideww/reelquest/internal/player"
	"github.com/faideww/reelquest/internal/progression"
	"github.com/faideww/reelquest/internal/quest"
)

type CatView struct {
	player.Summary
	Color string
}

// VisitCat meets the cat, fixing its color until it is fed.
func (e *Engine) VisitCat(ctx context.Context, playerID int64) (CatView, error) {
	var v CatView
	err := e.mutate(ctx, playerID, func(t *turn) error {
		color, err := quest.VisitCat(t.p, e.rng, t.now)
		if err != nil {
			return err
		}
		v = CatView{Summary: t.p.Summary(), Color: color}
		return nil
	})
	return v, err
}

type FeedResult struct {
	player.Summary
	Fed    fish.Fish
	Buff   gear.Buff
	NextAt time.Time
}

func (e *Engine) FeedCat(ctx context.Context, playerID int64) (FeedResult, error) {
	var res FeedResult
	err := e.mutate(ctx, playerID, func(t *turn) error {
		fed, buff, err := quest.FeedCat(t.p, e.rng, t.now)
		if err != nil {
			return err
		}
		res = FeedResult{Summary: t.p.Summary(), Fed: fed, Buff: buff, NextAt: t.p.Cat.NextAt}
		return nil
	})
	return res, err
}

type SailorView struct {
	player.Summary
	Quest player.FetchQuest
	// HasMatch reports whether the inventory already holds a deliverable fish.
	HasMatch bool
}

// VisitSailor shows the held fetch quest or offers a new one.
func (e *Engine) VisitSailor(ctx context.Context, playerID int64) (SailorView, error) {
	var v SailorView
	err := e.mutate(ctx, playerID, func(t *turn) error {
		q := quest.VisitSailor(t.p, e.rng)
		_, has := t.p.Inventory.Lightest(func(f fish.Fish) bool { return quest.Matches(q, f) })
		v = SailorView{Summary: t.p.Summary(), Quest: *q, HasMatch: has}
		return nil
	})
	return v, err
}

func (e *Engine) AcceptFetchQuest(ctx context.Context, playerID int64) (SailorView, error) {
	var v SailorView
	err := e.mutate(ctx, playerID, func(t *turn) error {
		if err := quest.Accept(t.p); err != nil {
			return err
		}
		_, has := t.p.Inventory.Lightest(func(f fish.Fish) bool { return quest.Matches(t.p.Fetch, f) })
		v = SailorView{Summary: t.p.Summary(), Quest: *t.p.Fetch, HasMatch: has}
		return nil
	})
	return v, err
}

func (e *Engine) DeclineFetchQuest(ctx context.Context, playerID int64) (player.Summary, error) {
	var s player.Summary
	err := e.mutate(ctx, playerID, func(t *turn) error {
		if err := quest.Decline(t.p); err != nil {
			return err
		}
		s = t.p.Summary()
		return nil
	})
	return s, err
}

type DeliveryResult struct {
	player.Summary
	Delivered fish.Fish
	XP        int64
	Gold      int64
	LevelUp   progression.Result
}

// DeliverFetchQuest hands the lightest matching fish to the sailor and pays
// the quest rewards through the buff and guild bonuses.
func (e *Engine) DeliverFetchQuest(ctx context.Context, playerID int64) (DeliveryResult, error) {
	var res DeliveryResult
	err := e.mutate(ctx, playerID, func(t *turn) error {
		f, q, err := quest.Deliver(t.p)
		if err != nil {
			return err
		}
		mods := t.modifiers()
		res.Delivered = f
		res.Gold = mods.Gold(q.Gold)
		res.XP = mods.XP(q.XP)
		t.p.Earn(res.Gold)
		res.LevelUp = t.p.GainXP(res.XP)
		if res.LevelUp.LeveledUp {
			log.Printf("player %d reached level %d (%s), reward %d", playerID, res.LevelUp.To, res.LevelUp.Rank, res.LevelUp.Reward)
		}
		res.Summary = t.p.Summary()
		return nil
	})
	return res, err
}
