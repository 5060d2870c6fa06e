package game

import (
	"context"
	"log"
	"time"

	"github.com/faideww/reelquest/internal/clock"
	"github.com/faideww/reelquest/internal/fish"
	"github.com/faideww/reelquest/internal/gear"
	"github.com/faideww/reelquest/internal/player"
	"github.com/faideww/reelquest/internal/progression"
	"github.com/faideww/reelquest/internal/session"
)

type CastResult struct {
	player.Summary
	Delay  time.Duration
	EndsAt time.Time
	Rod    string
	Bait   string
}

// Cast throws the line. The wait is a uniform base delay shortened by the
// rod and any speed buff.
func (e *Engine) Cast(ctx context.Context, playerID int64) (CastResult, error) {
	var (
		res     CastResult
		started bool
	)
	err := e.view(ctx, playerID, func(t *turn) error {
		base := e.rng.Between(MinBaseDelay, MaxBaseDelay)
		delay := gear.CastDelay(base, t.p.Rod, t.p.Buff, t.now)
		end, err := e.sessions.Cast(playerID, t.now, delay)
		if err != nil {
			return err
		}
		started = true
		res = CastResult{
			Summary: t.p.Summary(),
			Delay:   delay,
			EndsAt:  end,
			Rod:     t.p.Rod.Name,
			Bait:    gear.BaitLabel(t.p.Bait, t.now),
		}
		return nil
	})
	if err != nil && started {
		e.sessions.Cancel(playerID, res.EndsAt)
		return CastResult{}, err
	}
	return res, err
}

// ActiveCasts counts lines currently in the water.
func (e *Engine) ActiveCasts() int { return e.sessions.Active() }

type PollResult struct {
	State     session.State
	Remaining time.Duration
	Seconds   int // remaining, rounded up
}

// Poll checks the line. It never touches the player record.
func (e *Engine) Poll(ctx context.Context, playerID int64) (PollResult, error) {
	state, left, err := e.sessions.Poll(playerID, e.clk.Now())
	if err != nil {
		return PollResult{}, err
	}
	return PollResult{State: state, Remaining: left, Seconds: clock.CeilSeconds(left)}, nil
}

type PullResult struct {
	player.Summary
	// Lost is set when the line was pulled before the fish was ready.
	Lost          bool
	Rarity        fish.Rarity
	XP            int64
	LevelUp       progression.Result
	GuildLevelUps int
}

// Pull reels the line in. A ready session yields an unidentified catch; a
// premature pull loses it without error.
func (e *Engine) Pull(ctx context.Context, playerID int64) (PullResult, error) {
	var (
		res    PullResult
		hooked bool
		end    time.Time
	)
	err := e.mutate(ctx, playerID, func(t *turn) error {
		var err error
		if hooked, end, err = e.sessions.Pull(playerID, t.now); err != nil {
			return err
		}
		if !hooked {
			log.Printf("player %d pulled too early, catch lost", playerID)
			res = PullResult{Summary: t.p.Summary(), Lost: true}
			return nil
		}

		c := e.rng.Catch(gear.EffectiveTable(t.p.Bait, t.now))
		t.p.Unidentified.Add(c.Rarity)
		raw := int64(c.XP)
		xp := gear.ApplyPercent(raw, t.modifiers().GuildXP)
		lvl := t.p.GainXP(xp)
		t.p.Stats.Record(t.p.Rod.Name, gear.BaitLabel(t.p.Bait, t.now))
		if lvl.LeveledUp {
			log.Printf("player %d reached level %d (%s), reward %d", playerID, lvl.To, lvl.Rank, lvl.Reward)
		}

		gained, err := t.contribute(raw)
		if err != nil {
			return err
		}
		res = PullResult{
			Summary:       t.p.Summary(),
			Rarity:        c.Rarity,
			XP:            xp,
			LevelUp:       lvl,
			GuildLevelUps: gained,
		}
		return nil
	})
	if err != nil && hooked {
		e.sessions.Restore(playerID, end)
	}
	return res, err
}
