package game

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	apperrors "github.com/faideww/reelquest/internal/errors"
	"github.com/faideww/reelquest/internal/gear"
	"github.com/faideww/reelquest/internal/guild"
	"github.com/faideww/reelquest/internal/player"
	"github.com/faideww/reelquest/internal/store"
)

// GuildPrice is what founding a guild costs.
const GuildPrice = 1

type GuildView struct {
	guild.Guild
	ToNextLevel int64         `json:"to_next_level"`
	Rating      int64         `json:"rating"`
	XPBonus     int           `json:"xp_bonus"`
	GoldBonus   int           `json:"gold_bonus"`
	MemberCount int           `json:"member_count"`
	LeaderName  string        `json:"leader_name"`
	Age         time.Duration `json:"-"`
}

type MemberView struct {
	guild.Member
	Rank     guild.MemberRank `json:"-"`
	RankName string           `json:"rank"`
	IsLeader bool             `json:"is_leader"`
}

func notInGuild() error {
	return apperrors.New(apperrors.CodeNotInGuild, "not in a guild")
}

func alreadyInGuild(g *guild.Guild) error {
	return apperrors.WithMetadata(apperrors.CodeAlreadyInGuild, "already in a guild",
		map[string]string{"guild": g.Name})
}

func guildView(g *guild.Guild, members []guild.Member, now time.Time) GuildView {
	xp, gold := guild.Bonus(g.Level)
	v := GuildView{
		Guild:       *g,
		ToNextLevel: g.ToNextLevel(),
		Rating:      guild.Rating(g.Level, members),
		XPBonus:     xp,
		GoldBonus:   gold,
		MemberCount: len(members),
		LeaderName:  player.UnknownName,
		Age:         now.Sub(g.CreatedAt),
	}
	for _, m := range members {
		if m.PlayerID == g.LeaderID && m.Nickname != "" {
			v.LeaderName = m.Nickname
		}
	}
	return v
}

type GuildResult struct {
	player.Summary
	Guild guild.Guild
}

// CreateGuild founds a guild led by the player.
func (e *Engine) CreateGuild(ctx context.Context, playerID int64, rawName string) (GuildResult, error) {
	name, err := player.ValidateName(rawName)
	if err != nil {
		return GuildResult{}, err
	}
	var res GuildResult
	err = e.mutate(ctx, playerID, func(t *turn) error {
		if t.guild != nil {
			return alreadyInGuild(t.guild)
		}
		if err := t.p.Spend(GuildPrice); err != nil {
			return err
		}
		g := &guild.Guild{Name: name, LeaderID: playerID, CreatedAt: t.now}
		if err := t.tx.InsertGuild(t.ctx, g); err != nil {
			return err
		}
		t.p.Guild = &player.Membership{GuildID: g.ID, JoinedAt: t.now}
		log.Printf("player %d founded guild %d %q", playerID, g.ID, g.Name)
		res = GuildResult{Summary: t.p.Summary(), Guild: *g}
		return nil
	})
	return res, err
}

// JoinGuild adds the player to the guild with the given name.
func (e *Engine) JoinGuild(ctx context.Context, playerID int64, name string) (GuildResult, error) {
	var res GuildResult
	err := e.view(ctx, playerID, func(t *turn) error {
		if t.guild != nil {
			return alreadyInGuild(t.guild)
		}
		g, err := t.tx.GuildByName(t.ctx, player.NameKey(name))
		if err != nil {
			return err
		}
		patch := player.Patch{Membership: &player.Membership{GuildID: g.ID, JoinedAt: t.now}}
		if err := t.tx.PatchPlayer(t.ctx, playerID, patch); err != nil {
			return err
		}
		patch.Apply(t.p)
		res = GuildResult{Summary: t.p.Summary(), Guild: *g}
		return nil
	})
	return res, err
}

type LeaveResult struct {
	player.Summary
	Guild     guild.Guild
	Dissolved bool
	NewLeader int64
}

// LeaveGuild removes the player. The last member out dissolves the guild; a
// departing leader hands over to the longest-standing member.
func (e *Engine) LeaveGuild(ctx context.Context, playerID int64) (LeaveResult, error) {
	var res LeaveResult
	err := e.view(ctx, playerID, func(t *turn) error {
		if t.guild == nil {
			return notInGuild()
		}
		g := t.guild
		members, err := t.tx.GuildMembers(t.ctx, g.ID)
		if err != nil {
			return err
		}
		patch := player.Patch{LeaveGuild: true}
		if err := t.tx.PatchPlayer(t.ctx, playerID, patch); err != nil {
			return err
		}
		patch.Apply(t.p)

		res.Guild = *g
		switch next := guild.NextLeader(playerID, members); {
		case next == 0:
			g.Name = ""
			res.Dissolved = true
			log.Printf("guild %d %q dissolved", g.ID, res.Guild.Name)
		case g.LeaderID == playerID:
			g.LeaderID = next
			res.NewLeader = next
		default:
			res.Summary = t.p.Summary()
			return nil
		}
		if err := t.tx.PutGuild(t.ctx, g); err != nil {
			return err
		}
		res.Summary = t.p.Summary()
		return nil
	})
	return res, err
}

func (e *Engine) GuildInfo(ctx context.Context, playerID int64) (GuildView, error) {
	var v GuildView
	err := e.view(ctx, playerID, func(t *turn) error {
		if t.guild == nil {
			return notInGuild()
		}
		members, err := t.tx.GuildMembers(t.ctx, t.guild.ID)
		if err != nil {
			return err
		}
		v = guildView(t.guild, members, t.now)
		return nil
	})
	return v, err
}

// GuildByID is the read-only guild card. Unknown or dissolved guilds fail
// with GUILD_NOT_FOUND.
func (e *Engine) GuildByID(ctx context.Context, guildID int64) (GuildView, error) {
	var v GuildView
	now := e.clk.Now()
	err := e.store.Atomic(ctx, func(tx store.Tx) error {
		g, err := tx.Guild(ctx, guildID)
		if err != nil {
			return err
		}
		members, err := tx.GuildMembers(ctx, guildID)
		if err != nil {
			return err
		}
		v = guildView(g, members, now)
		return nil
	})
	return v, err
}

// GuildMembers lists the roster leader first, then by join time.
func (e *Engine) GuildMembers(ctx context.Context, playerID int64) ([]MemberView, error) {
	var out []MemberView
	err := e.view(ctx, playerID, func(t *turn) error {
		if t.guild == nil {
			return notInGuild()
		}
		members, err := t.tx.GuildMembers(t.ctx, t.guild.ID)
		if err != nil {
			return err
		}
		for _, m := range guild.Roster(t.guild.LeaderID, members) {
			isLeader := m.PlayerID == t.guild.LeaderID
			rank := guild.MembershipRank(isLeader, m.JoinedAt, t.now)
			if m.Nickname == "" {
				m.Nickname = player.UnknownName
			}
			out = append(out, MemberView{Member: m, Rank: rank, RankName: rank.String(), IsLeader: isLeader})
		}
		return nil
	})
	return out, err
}

// GuildLeaderboard ranks the player's guildmates by metric.
func (e *Engine) GuildLeaderboard(ctx context.Context, playerID int64, metric store.Metric, limit int) ([]Standing, error) {
	if limit <= 0 {
		limit = DefaultBoardSize
	}
	var g guild.Guild
	err := e.view(ctx, playerID, func(t *turn) error {
		if t.guild == nil {
			return notInGuild()
		}
		g = *t.guild
		return nil
	})
	if err != nil {
		return nil, err
	}
	members, err := e.store.Leaderboard(ctx, metric, g.ID, limit)
	if err != nil {
		return nil, err
	}
	rows := standings(metric, members)
	now := e.clk.Now()
	for i, m := range members {
		rows[i].Rank = guild.MembershipRank(m.PlayerID == g.LeaderID, m.JoinedAt, now)
	}
	return rows, nil
}

type GuildShopView struct {
	Level int
	Rods  []gear.RodOffer
	Baits []gear.BaitOffer
}

// GuildShop lists the guild items unlocked at the player's guild level.
func (e *Engine) GuildShop(ctx context.Context, playerID int64) (GuildShopView, error) {
	var v GuildShopView
	err := e.view(ctx, playerID, func(t *turn) error {
		if t.guild == nil {
			return notInGuild()
		}
		v.Level = t.guild.Level
		v.Rods, v.Baits = e.catalog.GuildOffers(t.guild.Level)
		return nil
	})
	return v, err
}

// BuyGuildItem buys a guild rod or bait. Guild rods carry the guild's name.
func (e *Engine) BuyGuildItem(ctx context.Context, playerID int64, name string) (PurchaseResult, error) {
	rod, isRod := e.catalog.GuildRod(name)
	bait, isBait := e.catalog.GuildBait(name)
	if !isRod && !isBait {
		return PurchaseResult{}, unknownItem(name, e.catalog.GuildItemNames())
	}
	var res PurchaseResult
	err := e.mutate(ctx, playerID, func(t *turn) error {
		if t.guild == nil {
			return notInGuild()
		}
		switch {
		case isRod:
			if rod.RequiredLevel > t.guild.Level {
				return locked(rod.Name, rod.RequiredLevel)
			}
			if err := t.p.Spend(rod.Price); err != nil {
				return err
			}
			t.p.Rod = gear.Rod{Name: fmt.Sprintf("%s %s", rod.Name, t.guild.Name), BonusPercent: rod.BonusPercent}
			r := t.p.Rod
			res = PurchaseResult{Item: rod.Name, Price: rod.Price, Rod: &r}
		default:
			if bait.RequiredLevel > t.guild.Level {
				return locked(bait.Name, bait.RequiredLevel)
			}
			if err := t.p.Spend(bait.Price); err != nil {
				return err
			}
			b := bait.Equip(t.now)
			t.p.Bait = &b
			res = PurchaseResult{Item: bait.Name, Price: bait.Price, Bait: &b}
		}
		res.Summary = t.p.Summary()
		return nil
	})
	return res, err
}

type GuildStanding struct {
	Position int    `json:"position"`
	GuildID  int64  `json:"guild_id"`
	Name     string `json:"name"`
	Level    int    `json:"level"`
	Members  int    `json:"members"`
	Rating   int64  `json:"rating"`
}

// GuildTop ranks active guilds by rating.
func (e *Engine) GuildTop(ctx context.Context, limit int) ([]GuildStanding, error) {
	if limit <= 0 {
		limit = DefaultBoardSize
	}
	totals, err := e.store.GuildTotals(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(totals, func(i, j int) bool {
		ri, rj := totals[i].Rating(), totals[j].Rating()
		if ri != rj {
			return ri > rj
		}
		return totals[i].Guild.ID < totals[j].Guild.ID
	})
	if len(totals) > limit {
		totals = totals[:limit]
	}
	out := make([]GuildStanding, 0, len(totals))
	for i, t := range totals {
		out = append(out, GuildStanding{
			Position: i + 1,
			GuildID:  t.Guild.ID,
			Name:     t.Guild.Name,
			Level:    t.Guild.Level,
			Members:  t.Members,
			Rating:   t.Rating(),
		})
	}
	return out, nil
}
