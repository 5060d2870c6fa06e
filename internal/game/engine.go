// Package game is the engine behind every player action: it loads the
// player, applies one turn of game rules and persists the outcome atomically.
package game

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/faideww/reelquest/internal/clock"
	apperrors "github.com/faideww/reelquest/internal/errors"
	"github.com/faideww/reelquest/internal/fish"
	"github.com/faideww/reelquest/internal/gear"
	"github.com/faideww/reelquest/internal/guild"
	"github.com/faideww/reelquest/internal/player"
	"github.com/faideww/reelquest/internal/session"
	"github.com/faideww/reelquest/internal/store"
)

// Base cast wait bounds, in seconds.
const (
	MinBaseDelay = 5
	MaxBaseDelay = 33
)

type Deps struct {
	Store   store.Store
	Clock   clock.Clock
	Picker  *fish.Picker
	Catalog *gear.Catalog
}

type Engine struct {
	store    store.Store
	clk      clock.Clock
	rng      *fish.Picker
	catalog  *gear.Catalog
	sessions *session.Tracker
	locks    *keyedLocks
}

func NewEngine(d Deps) *Engine {
	e := &Engine{
		store:    d.Store,
		clk:      clock.OrReal(d.Clock),
		rng:      d.Picker,
		catalog:  d.Catalog,
		sessions: session.NewTracker(),
		locks:    newKeyedLocks(),
	}
	if e.rng == nil {
		e.rng = fish.NewPicker(fish.DefaultRegistry(), fish.NewSource())
	}
	if e.catalog == nil {
		e.catalog = gear.DefaultCatalog()
	}
	return e
}

func (e *Engine) Catalog() *gear.Catalog { return e.catalog }

// turn is one player's read-modify-write section.
type turn struct {
	ctx   context.Context
	tx    store.Tx
	p     *player.Player
	now   time.Time
	guild *guild.Guild // nil when guildless
}

// modifiers stacks the active buff and the guild level perks.
func (t *turn) modifiers() gear.Modifiers {
	var xp, gold int
	if t.guild != nil {
		xp, gold = guild.Bonus(t.guild.Level)
	}
	return gear.ModifiersFor(t.p.Buff, t.now, xp, gold)
}

// contribute forwards raw experience to the player's guild and returns the
// number of guild levels gained.
func (t *turn) contribute(rawXP int64) (int, error) {
	if t.guild == nil || rawXP <= 0 {
		return 0, nil
	}
	members, err := t.tx.GuildMembers(t.ctx, t.guild.ID)
	if err != nil {
		return 0, err
	}
	gained := t.guild.AddExperience(guild.Contribution(rawXP, len(members)))
	if err := t.tx.PutGuild(t.ctx, t.guild); err != nil {
		return 0, err
	}
	if gained > 0 {
		log.Printf("guild %d %q reached level %d", t.guild.ID, t.guild.Name, t.guild.Level)
	}
	return gained, nil
}

// mutate runs fn on the player's record and saves the whole record after.
func (e *Engine) mutate(ctx context.Context, playerID int64, fn func(*turn) error) error {
	return e.withPlayer(ctx, playerID, true, fn)
}

// view runs fn without rewriting the record. Creation and expiry purges are
// still persisted; fn may issue its own partial updates.
func (e *Engine) view(ctx context.Context, playerID int64, fn func(*turn) error) error {
	return e.withPlayer(ctx, playerID, false, fn)
}

func (e *Engine) withPlayer(ctx context.Context, playerID int64, save bool, fn func(*turn) error) error {
	unlock := e.locks.lock(playerID)
	defer unlock()

	now := e.clk.Now()
	return e.store.Atomic(ctx, func(tx store.Tx) error {
		p, err := tx.FindPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		fresh := p == nil
		if fresh {
			p = player.New(playerID, now, e.catalog.DefaultRod)
		}
		if expired := p.Expire(now); (expired || fresh) && !save {
			if err := tx.PutPlayer(ctx, p); err != nil {
				return err
			}
		}

		t := &turn{ctx: ctx, tx: tx, p: p, now: now}
		if p.Guild != nil {
			g, err := tx.Guild(ctx, p.Guild.GuildID)
			if apperrors.CodeOf(err) == apperrors.CodeGuildNotFound {
				return apperrors.Wrap(apperrors.CodeOrphanedMembership,
					fmt.Sprintf("player %d belongs to missing guild %d", playerID, p.Guild.GuildID), err)
			}
			if err != nil {
				return err
			}
			t.guild = g
		}

		if err := fn(t); err != nil {
			return err
		}
		if save {
			return tx.PutPlayer(ctx, p)
		}
		return nil
	})
}
