package game

import (
	"context"
	"time"

	"github.com/faideww/reelquest/internal/clock"
	apperrors "github.com/faideww/reelquest/internal/errors"
	"github.com/faideww/reelquest/internal/gear"
	"github.com/faideww/reelquest/internal/guild"
	"github.com/faideww/reelquest/internal/player"
	"github.com/faideww/reelquest/internal/progression"
	"github.com/faideww/reelquest/internal/store"
)

// NoneLabel is shown for empty favorites.
const NoneLabel = "none"

type ProfileView struct {
	player.Summary
	PlayerID       int64         `json:"player_id"`
	Nickname       string        `json:"nickname"`
	RequiredXP     int64         `json:"required_xp"`
	RegisteredAt   time.Time     `json:"registered_at"`
	Age            time.Duration `json:"-"`
	FavoriteRod    string        `json:"favorite_rod"`
	FavoriteBait   string        `json:"favorite_bait"`
	Rod            gear.Rod      `json:"rod"`
	GuildID        int64         `json:"guild_id,omitempty"`
	GuildName      string        `json:"guild_name,omitempty"`
	Bait           *gear.Bait    `json:"bait,omitempty"`
	BaitLeft       time.Duration `json:"-"`
	Buff           *gear.Buff    `json:"buff,omitempty"`
	BuffLeft       time.Duration `json:"-"`
	CurrencyEarned int64         `json:"currency_earned"`
	MassCaught     int64         `json:"mass_caught"`
}

func profileOf(p *player.Player, g *guild.Guild, now time.Time) ProfileView {
	v := ProfileView{
		Summary:        p.Summary(),
		PlayerID:       p.ID,
		Nickname:       p.DisplayName(),
		RequiredXP:     progression.RequiredXP(p.Level),
		RegisteredAt:   p.RegisteredAt,
		Age:            now.Sub(p.RegisteredAt),
		FavoriteRod:    orNone(p.Stats.FavoriteRod()),
		FavoriteBait:   orNone(p.Stats.FavoriteBait()),
		Rod:            p.Rod,
		Bait:           gear.ActiveBait(p.Bait, now),
		Buff:           gear.ActiveBuff(p.Buff, now),
		CurrencyEarned: p.CurrencyEarned,
		MassCaught:     p.MassCaught,
	}
	if g != nil {
		v.GuildID, v.GuildName = g.ID, g.Name
	}
	if v.Bait != nil {
		v.BaitLeft = clock.Remaining(v.Bait.EndsAt, now)
	}
	if v.Buff != nil {
		v.BuffLeft = clock.Remaining(v.Buff.EndsAt, now)
	}
	return v
}

func orNone(s string) string {
	if s == "" {
		return NoneLabel
	}
	return s
}

func (e *Engine) Profile(ctx context.Context, playerID int64) (ProfileView, error) {
	var v ProfileView
	err := e.view(ctx, playerID, func(t *turn) error {
		v = profileOf(t.p, t.guild, t.now)
		return nil
	})
	return v, err
}

// PlayerCard is the read-only profile of an existing player. It returns nil
// for players that never interacted and creates nothing.
func (e *Engine) PlayerCard(ctx context.Context, playerID int64) (*ProfileView, error) {
	var v *ProfileView
	now := e.clk.Now()
	err := e.store.Atomic(ctx, func(tx store.Tx) error {
		p, err := tx.FindPlayer(ctx, playerID)
		if err != nil || p == nil {
			return err
		}
		var g *guild.Guild
		if p.Guild != nil {
			if g, err = tx.Guild(ctx, p.Guild.GuildID); err != nil {
				return err
			}
		}
		pv := profileOf(p, g, now)
		v = &pv
		return nil
	})
	return v, err
}

type NicknameResult struct {
	player.Summary
	Nickname string
}

// SetNickname validates and claims a unique display name.
func (e *Engine) SetNickname(ctx context.Context, playerID int64, raw string) (NicknameResult, error) {
	name, err := player.ValidateName(raw)
	if err != nil {
		return NicknameResult{}, err
	}
	var res NicknameResult
	err = e.view(ctx, playerID, func(t *turn) error {
		taken, err := t.tx.NicknameTaken(t.ctx, player.NameKey(name), playerID)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.WithMetadata(apperrors.CodeNicknameTaken, "nickname already taken",
				map[string]string{"name": name})
		}
		patch := player.Patch{Nickname: &name}
		if err := t.tx.PatchPlayer(t.ctx, playerID, patch); err != nil {
			return err
		}
		patch.Apply(t.p)
		res = NicknameResult{Summary: t.p.Summary(), Nickname: name}
		return nil
	})
	return res, err
}

type Standing struct {
	Position int              `json:"position"`
	PlayerID int64            `json:"player_id"`
	Nickname string           `json:"nickname"`
	Level    int              `json:"level"`
	Value    int64            `json:"value"`
	Rank     guild.MemberRank `json:"-"`
}

const DefaultBoardSize = 10

// Leaderboard ranks all players by metric.
func (e *Engine) Leaderboard(ctx context.Context, metric store.Metric, limit int) ([]Standing, error) {
	if limit <= 0 {
		limit = DefaultBoardSize
	}
	members, err := e.store.Leaderboard(ctx, metric, 0, limit)
	if err != nil {
		return nil, err
	}
	return standings(metric, members), nil
}

func standings(metric store.Metric, members []guild.Member) []Standing {
	out := make([]Standing, 0, len(members))
	for i, m := range members {
		name := m.Nickname
		if name == "" {
			name = player.UnknownName
		}
		out = append(out, Standing{
			Position: i + 1,
			PlayerID: m.PlayerID,
			Nickname: name,
			Level:    m.Level,
			Value:    metric.Value(m),
		})
	}
	return out
}
