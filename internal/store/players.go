package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/faideww/reelquest/internal/errors"
	"github.com/faideww/reelquest/internal/fish"
	"github.com/faideww/reelquest/internal/guild"
	"github.com/faideww/reelquest/internal/player"
)

type sqlTx struct {
	tx *sql.Tx
}

const playerColumns = `id, nickname, currency, experience, level, rank, registered_at,
	rod_name, rod_bonus, bait, buff, currency_earned, mass_caught, guild_id, guild_joined_at,
	unid_common, unid_rare, unid_legendary, cat_next_at, cat_color, fetch_quest`

const memberColumns = `id, nickname, level, experience, currency_earned, mass_caught, COALESCE(guild_joined_at, 0)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (guild.Member, error) {
	var (
		m        guild.Member
		joinedAt int64
	)
	if err := row.Scan(&m.PlayerID, &m.Nickname, &m.Level, &m.Experience,
		&m.CurrencyEarned, &m.MassCaught, &joinedAt); err != nil {
		return guild.Member{}, err
	}
	m.JoinedAt = fromMillis(joinedAt)
	return m, nil
}

func (t *sqlTx) FindPlayer(ctx context.Context, id int64) (*player.Player, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id)

	var (
		p                       player.Player
		registeredAt, catNextAt int64
		bait, buff, fetch       sql.NullString
		guildID, guildJoinedAt  sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.Nickname, &p.Currency, &p.Experience, &p.Level, &p.Rank, &registeredAt,
		&p.Rod.Name, &p.Rod.BonusPercent, &bait, &buff, &p.CurrencyEarned, &p.MassCaught, &guildID, &guildJoinedAt,
		&p.Unidentified.Common, &p.Unidentified.Rare, &p.Unidentified.Legendary, &catNextAt, &p.Cat.Color, &fetch)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage(fmt.Sprintf("load player %d", id), err)
	}

	p.RegisteredAt = fromMillis(registeredAt)
	p.Cat.NextAt = fromMillis(catNextAt)
	if guildID.Valid {
		p.Guild = &player.Membership{GuildID: guildID.Int64, JoinedAt: fromMillis(guildJoinedAt.Int64)}
	}
	if err := decodeJSON(bait, &p.Bait); err != nil {
		return nil, apperrors.Storage("decode bait", err)
	}
	if err := decodeJSON(buff, &p.Buff); err != nil {
		return nil, apperrors.Storage("decode buff", err)
	}
	if err := decodeJSON(fetch, &p.Fetch); err != nil {
		return nil, apperrors.Storage("decode fetch quest", err)
	}

	if p.Inventory, err = t.loadInventory(ctx, id); err != nil {
		return nil, err
	}
	if p.Stats, err = t.loadStats(ctx, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *sqlTx) loadInventory(ctx context.Context, id int64) (player.Inventory, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT name, weight, rarity, quantity FROM inventory WHERE player_id = ?`, id)
	if err != nil {
		return nil, apperrors.Storage("query inventory", err)
	}
	defer rows.Close()

	inv := player.Inventory{}
	for rows.Next() {
		var (
			f      fish.Fish
			rarity string
			qty    int
		)
		if err := rows.Scan(&f.Name, &f.Weight, &rarity, &qty); err != nil {
			return nil, apperrors.Storage("scan inventory", err)
		}
		if f.Rarity, err = fish.ParseRarity(rarity); err != nil {
			return nil, apperrors.Storage("scan inventory", err)
		}
		inv[f] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("read inventory", err)
	}
	return inv, nil
}

func (t *sqlTx) loadStats(ctx context.Context, id int64) (player.Stats, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT kind, name, catches FROM catch_stats WHERE player_id = ?`, id)
	if err != nil {
		return player.Stats{}, apperrors.Storage("query catch stats", err)
	}
	defer rows.Close()

	stats := player.NewStats()
	for rows.Next() {
		var (
			kind, name string
			n          int
		)
		if err := rows.Scan(&kind, &name, &n); err != nil {
			return player.Stats{}, apperrors.Storage("scan catch stats", err)
		}
		if kind == "rod" {
			stats.Rods[name] = n
		} else {
			stats.Baits[name] = n
		}
	}
	if err := rows.Err(); err != nil {
		return player.Stats{}, apperrors.Storage("read catch stats", err)
	}
	return stats, nil
}

// PutPlayer writes the whole record, replacing inventory and usage counters.
func (t *sqlTx) PutPlayer(ctx context.Context, p *player.Player) error {
	for f, qty := range p.Inventory {
		if qty <= 0 {
			return apperrors.WithMetadata(apperrors.CodeNegativeQuantity,
				fmt.Sprintf("player %d holds %d of %q", p.ID, qty, f.Name),
				map[string]string{"fish": f.Name})
		}
	}
	if err := t.checkMembership(ctx, p.ID, p.Guild); err != nil {
		return err
	}

	bait, err := encodeJSON(p.Bait)
	if err != nil {
		return apperrors.Storage("encode bait", err)
	}
	buff, err := encodeJSON(p.Buff)
	if err != nil {
		return apperrors.Storage("encode buff", err)
	}
	fetch, err := encodeJSON(p.Fetch)
	if err != nil {
		return apperrors.Storage("encode fetch quest", err)
	}
	var guildID, joinedAt sql.NullInt64
	if p.Guild != nil {
		guildID = sql.NullInt64{Int64: p.Guild.GuildID, Valid: true}
		joinedAt = sql.NullInt64{Int64: toMillis(p.Guild.JoinedAt), Valid: true}
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO players (`+playerColumns+`, nickname_key)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (id) DO UPDATE SET
			nickname = excluded.nickname,
			nickname_key = excluded.nickname_key,
			currency = excluded.currency,
			experience = excluded.experience,
			level = excluded.level,
			rank = excluded.rank,
			rod_name = excluded.rod_name,
			rod_bonus = excluded.rod_bonus,
			bait = excluded.bait,
			buff = excluded.buff,
			currency_earned = excluded.currency_earned,
			mass_caught = excluded.mass_caught,
			guild_id = excluded.guild_id,
			guild_joined_at = excluded.guild_joined_at,
			unid_common = excluded.unid_common,
			unid_rare = excluded.unid_rare,
			unid_legendary = excluded.unid_legendary,
			cat_next_at = excluded.cat_next_at,
			cat_color = excluded.cat_color,
			fetch_quest = excluded.fetch_quest
	`,
		p.ID, p.Nickname, p.Currency, p.Experience, p.Level, p.Rank, toMillis(p.RegisteredAt),
		p.Rod.Name, p.Rod.BonusPercent, bait, buff, p.CurrencyEarned, p.MassCaught, guildID, joinedAt,
		p.Unidentified.Common, p.Unidentified.Rare, p.Unidentified.Legendary, toMillis(p.Cat.NextAt), p.Cat.Color, fetch,
		nicknameKey(p.Nickname),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.New(apperrors.CodeNicknameTaken, "nickname already taken")
		}
		return apperrors.Storage(fmt.Sprintf("save player %d", p.ID), err)
	}

	if _, err := t.tx.ExecContext(ctx, `DELETE FROM inventory WHERE player_id = ?`, p.ID); err != nil {
		return apperrors.Storage("clear inventory", err)
	}
	for f, qty := range p.Inventory {
		if _, err := t.tx.ExecContext(ctx,
			`INSERT INTO inventory (player_id, name, weight, rarity, quantity) VALUES (?,?,?,?,?)`,
			p.ID, f.Name, f.Weight, f.Rarity.String(), qty,
		); err != nil {
			return apperrors.Storage("save inventory", err)
		}
	}

	if _, err := t.tx.ExecContext(ctx, `DELETE FROM catch_stats WHERE player_id = ?`, p.ID); err != nil {
		return apperrors.Storage("clear catch stats", err)
	}
	for kind, counters := range map[string]map[string]int{"rod": p.Stats.Rods, "bait": p.Stats.Baits} {
		for name, n := range counters {
			if _, err := t.tx.ExecContext(ctx,
				`INSERT INTO catch_stats (player_id, kind, name, catches) VALUES (?,?,?,?)`,
				p.ID, kind, name, n,
			); err != nil {
				return apperrors.Storage("save catch stats", err)
			}
		}
	}
	return nil
}

// PatchPlayer updates only the fields named by patch.
func (t *sqlTx) PatchPlayer(ctx context.Context, id int64, patch player.Patch) error {
	if patch.Empty() {
		return nil
	}
	if err := t.checkMembership(ctx, id, patch.Membership); err != nil {
		return err
	}

	var (
		sets []string
		args []any
	)
	if patch.Nickname != nil {
		sets = append(sets, "nickname = ?", "nickname_key = ?")
		args = append(args, *patch.Nickname, nicknameKey(*patch.Nickname))
	}
	switch {
	case patch.Membership != nil:
		sets = append(sets, "guild_id = ?", "guild_joined_at = ?")
		args = append(args, patch.Membership.GuildID, toMillis(patch.Membership.JoinedAt))
	case patch.LeaveGuild:
		sets = append(sets, "guild_id = NULL", "guild_joined_at = NULL")
	}
	args = append(args, id)

	res, err := t.tx.ExecContext(ctx, `UPDATE players SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.New(apperrors.CodeNicknameTaken, "nickname already taken")
		}
		return apperrors.Storage(fmt.Sprintf("patch player %d", id), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.Storage(fmt.Sprintf("patch player %d", id), sql.ErrNoRows)
	}
	return nil
}

func (t *sqlTx) NicknameTaken(ctx context.Context, key string, except int64) (bool, error) {
	var found int
	err := t.tx.QueryRowContext(ctx,
		`SELECT 1 FROM players WHERE nickname_key = ? AND id <> ?`, key, except,
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.Storage("check nickname", err)
	}
	return true, nil
}

// checkMembership refuses to attach a player to a guild that does not exist.
func (t *sqlTx) checkMembership(ctx context.Context, playerID int64, m *player.Membership) error {
	if m == nil {
		return nil
	}
	var name string
	err := t.tx.QueryRowContext(ctx, `SELECT name FROM guilds WHERE id = ?`, m.GuildID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && name == "") {
		return apperrors.WithMetadata(apperrors.CodeOrphanedMembership,
			fmt.Sprintf("player %d references missing guild %d", playerID, m.GuildID),
			map[string]string{"guild_id": fmt.Sprint(m.GuildID)})
	}
	if err != nil {
		return apperrors.Storage("check membership", err)
	}
	return nil
}

func nicknameKey(name string) sql.NullString {
	if name == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: player.NameKey(name), Valid: true}
}

func encodeJSON[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeJSON[T any](s sql.NullString, dst **T) error {
	if !s.Valid || s.String == "" {
		*dst = nil
		return nil
	}
	v := new(T)
	if err := json.Unmarshal([]byte(s.String), v); err != nil {
		return err
	}
	*dst = v
	return nil
}
