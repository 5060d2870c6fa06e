package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/faideww/reelquest/internal/errors"
	"github.com/faideww/reelquest/internal/guild"
	"github.com/faideww/reelquest/internal/player"
)

const guildColumns = `id, name, level, experience, leader_id, created_at`

func (t *sqlTx) scanGuild(row *sql.Row, what string) (*guild.Guild, error) {
	var (
		g         guild.Guild
		createdAt int64
	)
	err := row.Scan(&g.ID, &g.Name, &g.Level, &g.Experience, &g.LeaderID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && g.Dissolved()) {
		return nil, apperrors.WithMetadata(apperrors.CodeGuildNotFound, "guild not found",
			map[string]string{"guild": what})
	}
	if err != nil {
		return nil, apperrors.Storage("load guild", err)
	}
	g.CreatedAt = fromMillis(createdAt)
	return &g, nil
}

func (t *sqlTx) Guild(ctx context.Context, id int64) (*guild.Guild, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+guildColumns+` FROM guilds WHERE id = ?`, id)
	return t.scanGuild(row, fmt.Sprint(id))
}

// GuildByName looks a guild up by its folded name key.
func (t *sqlTx) GuildByName(ctx context.Context, key string) (*guild.Guild, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+guildColumns+` FROM guilds WHERE name_key = ?`, key)
	return t.scanGuild(row, key)
}

func (t *sqlTx) InsertGuild(ctx context.Context, g *guild.Guild) error {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO guilds (name, name_key, level, experience, leader_id, created_at)
		VALUES (?,?,?,?,?,?)
	`, g.Name, guildKey(g), g.Level, g.Experience, g.LeaderID, toMillis(g.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.WithMetadata(apperrors.CodeGuildNameTaken, "guild name already taken",
				map[string]string{"name": g.Name})
		}
		return apperrors.Storage("insert guild", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperrors.Storage("insert guild", err)
	}
	g.ID = id
	return nil
}

// PutGuild saves level, experience and leader. A dissolved guild releases its
// name key.
func (t *sqlTx) PutGuild(ctx context.Context, g *guild.Guild) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE guilds
		SET name = ?, name_key = ?, level = ?, experience = ?, leader_id = ?
		WHERE id = ?
	`, g.Name, guildKey(g), g.Level, g.Experience, g.LeaderID, g.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.New(apperrors.CodeGuildNameTaken, "guild name already taken")
		}
		return apperrors.Storage(fmt.Sprintf("save guild %d", g.ID), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.New(apperrors.CodeGuildNotFound, "guild not found")
	}
	return nil
}

// GuildMembers lists the players whose membership points at guildID, in join
// order.
func (t *sqlTx) GuildMembers(ctx context.Context, guildID int64) ([]guild.Member, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT `+memberColumns+`
		FROM players
		WHERE guild_id = ?
		ORDER BY guild_joined_at ASC, id ASC
	`, guildID)
	if err != nil {
		return nil, apperrors.Storage("query guild members", err)
	}
	defer rows.Close()

	var out []guild.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, apperrors.Storage("scan guild members", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("read guild members", err)
	}
	return out, nil
}

func guildKey(g *guild.Guild) sql.NullString {
	if g.Dissolved() {
		return sql.NullString{}
	}
	return sql.NullString{String: player.NameKey(g.Name), Valid: true}
}
