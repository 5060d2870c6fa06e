package store

import (
	"context"
	"fmt"

	"github.com/faideww/reelquest/internal/guild"
	"github.com/faideww/reelquest/internal/player"
)

// Tx is the read-modify-write view of the store. Every method runs inside
// the transaction opened by Store.Atomic.
type Tx interface {
	// FindPlayer returns nil when the player has never interacted.
	FindPlayer(ctx context.Context, id int64) (*player.Player, error)
	PutPlayer(ctx context.Context, p *player.Player) error
	PatchPlayer(ctx context.Context, id int64, patch player.Patch) error
	NicknameTaken(ctx context.Context, key string, except int64) (bool, error)

	// Guild fails with GUILD_NOT_FOUND for unknown or dissolved guilds.
	Guild(ctx context.Context, id int64) (*guild.Guild, error)
	GuildByName(ctx context.Context, key string) (*guild.Guild, error)
	InsertGuild(ctx context.Context, g *guild.Guild) error
	PutGuild(ctx context.Context, g *guild.Guild) error
	GuildMembers(ctx context.Context, guildID int64) ([]guild.Member, error)
}

type Store interface {
	// Atomic runs fn in one transaction. Domain errors from fn pass through
	// unchanged and roll the transaction back.
	Atomic(ctx context.Context, fn func(Tx) error) error
	// Leaderboard lists the top players by metric, restricted to one guild
	// when guildID is non-zero.
	Leaderboard(ctx context.Context, metric Metric, guildID int64, limit int) ([]guild.Member, error)
	GuildTotals(ctx context.Context) ([]GuildTotal, error)
	Maintain(ctx context.Context) error
	Close() error
}

type Metric string

const (
	MetricGold Metric = "gold"
	MetricMass Metric = "mass"
	MetricXP   Metric = "xp"
)

var Metrics = []Metric{MetricGold, MetricMass, MetricXP}

func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown leaderboard metric %q", s)
}

// Value picks the member total the metric ranks by.
func (m Metric) Value(mem guild.Member) int64 {
	switch m {
	case MetricMass:
		return mem.MassCaught
	case MetricXP:
		return mem.Experience
	default:
		return mem.CurrencyEarned
	}
}

// GuildTotal is an active guild with its summed member totals.
type GuildTotal struct {
	Guild   guild.Guild
	Members int
	Total   int64
}

func (t GuildTotal) Rating() int64 {
	return guild.RatingOf(t.Guild.Level, t.Total)
}
