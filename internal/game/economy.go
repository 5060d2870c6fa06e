package game

import (
	"context"
	"fmt"
	"time"

	"github.com/faideww/reelquest/internal/clock"
	apperrors "github.com/faideww/reelquest/internal/errors"
	"github.com/faideww/reelquest/internal/fish"
	"github.com/faideww/reelquest/internal/gear"
	"github.com/faideww/reelquest/internal/player"
)

type IdentifiedFish struct {
	fish.Fish
	Class fish.WeightClass
}

type IdentifyResult struct {
	player.Summary
	Fish []IdentifiedFish
	Mass int64
}

// IdentifyAll opens every unidentified catch into named fish.
func (e *Engine) IdentifyAll(ctx context.Context, playerID int64) (IdentifyResult, error) {
	var res IdentifyResult
	err := e.mutate(ctx, playerID, func(t *turn) error {
		if t.p.Unidentified.Total() == 0 {
			return apperrors.New(apperrors.CodeNothingToIdentify, "no unidentified fish")
		}
		reg := e.rng.Registry()
		for _, r := range fish.Rarities {
			for i := 0; i < t.p.Unidentified.Count(r); i++ {
				f := e.rng.Identify(r)
				t.p.Inventory.Add(f, 1)
				t.p.MassCaught += int64(f.Weight)
				res.Mass += int64(f.Weight)
				res.Fish = append(res.Fish, IdentifiedFish{Fish: f, Class: reg.ClassOf(f)})
			}
		}
		t.p.Unidentified = player.Unidentified{}
		res.Summary = t.p.Summary()
		return nil
	})
	return res, err
}

type SellResult struct {
	player.Summary
	Sold        []player.Entry
	TotalWeight int64
	Base        int64 // before bonuses
	Payout      int64
}

// SellAll sells the whole inventory for floor(weight·π/4), scaled by the
// buff and guild currency perks.
func (e *Engine) SellAll(ctx context.Context, playerID int64) (SellResult, error) {
	var res SellResult
	err := e.mutate(ctx, playerID, func(t *turn) error {
		if t.p.Inventory.Empty() {
			return apperrors.New(apperrors.CodeNothingToSell, "inventory is empty")
		}
		res.Sold = t.p.Inventory.Entries()
		res.TotalWeight = t.p.Inventory.TotalWeight()
		res.Base = player.SaleValue(res.TotalWeight)
		res.Payout = t.modifiers().Gold(res.Base)
		for _, entry := range res.Sold {
			if err := t.p.Inventory.Remove(entry.Fish, entry.Quantity); err != nil {
				return err
			}
		}
		t.p.Earn(res.Payout)
		res.Summary = t.p.Summary()
		return nil
	})
	return res, err
}

type InventoryView struct {
	player.Summary
	Rod          gear.Rod
	Bait         *gear.Bait
	BaitLeft     time.Duration
	Unidentified player.Unidentified
	Entries      []player.Entry
	TotalWeight  int64
}

func (e *Engine) Inventory(ctx context.Context, playerID int64) (InventoryView, error) {
	var v InventoryView
	err := e.view(ctx, playerID, func(t *turn) error {
		v = InventoryView{
			Summary:      t.p.Summary(),
			Rod:          t.p.Rod,
			Bait:         t.p.Bait,
			Unidentified: t.p.Unidentified,
			Entries:      t.p.Inventory.Entries(),
			TotalWeight:  t.p.Inventory.TotalWeight(),
		}
		if t.p.Bait != nil {
			v.BaitLeft = clock.Remaining(t.p.Bait.EndsAt, t.now)
		}
		return nil
	})
	return v, err
}

type ShopView struct {
	Rods  []gear.RodOffer
	Baits []gear.BaitOffer
}

func (e *Engine) Shop() ShopView {
	return ShopView{Rods: e.catalog.Rods, Baits: e.catalog.Baits}
}

type PurchaseResult struct {
	player.Summary
	Item  string
	Price int64
	Rod   *gear.Rod
	Bait  *gear.Bait
}

func (e *Engine) BuyRod(ctx context.Context, playerID int64, name string) (PurchaseResult, error) {
	offer, ok := e.catalog.Rod(name)
	if !ok {
		return PurchaseResult{}, unknownItem(name, e.catalog.RodNames())
	}
	var res PurchaseResult
	err := e.mutate(ctx, playerID, func(t *turn) error {
		if offer.RequiredLevel > t.p.Level {
			return locked(offer.Name, offer.RequiredLevel)
		}
		if err := t.p.Spend(offer.Price); err != nil {
			return err
		}
		t.p.Rod = gear.Rod{Name: offer.Name, BonusPercent: offer.BonusPercent}
		rod := t.p.Rod
		res = PurchaseResult{Summary: t.p.Summary(), Item: offer.Name, Price: offer.Price, Rod: &rod}
		return nil
	})
	return res, err
}

// BuyBait replaces the active bait with a fresh one.
func (e *Engine) BuyBait(ctx context.Context, playerID int64, name string) (PurchaseResult, error) {
	offer, ok := e.catalog.Bait(name)
	if !ok {
		return PurchaseResult{}, unknownItem(name, e.catalog.BaitNames())
	}
	var res PurchaseResult
	err := e.mutate(ctx, playerID, func(t *turn) error {
		if offer.RequiredLevel > t.p.Level {
			return locked(offer.Name, offer.RequiredLevel)
		}
		if err := t.p.Spend(offer.Price); err != nil {
			return err
		}
		b := offer.Equip(t.now)
		t.p.Bait = &b
		res = PurchaseResult{Summary: t.p.Summary(), Item: offer.Name, Price: offer.Price, Bait: &b}
		return nil
	})
	return res, err
}

func unknownItem(name string, candidates []string) error {
	md := map[string]string{"item": name}
	if s := gear.Suggest(name, candidates); s != "" {
		md["suggestion"] = s
	}
	return apperrors.WithMetadata(apperrors.CodeUnknownItem, fmt.Sprintf("no item named %q", name), md)
}

func locked(name string, level int) error {
	return apperrors.WithMetadata(apperrors.CodeItemLocked, fmt.Sprintf("%s needs level %d", name, level),
		map[string]string{"item": name, "required_level": fmt.Sprint(level)})
}
