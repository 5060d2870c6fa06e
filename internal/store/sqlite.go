package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/faideww/reelquest/internal/errors"
	"github.com/faideww/reelquest/internal/guild"
	"github.com/faideww/reelquest/internal/store/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const defaultLimit = 10

type SQLiteStore struct {
	db       *sql.DB
	topStmts map[Metric]*sql.Stmt
	totals   *sql.Stmt
}

var _ Store = (*SQLiteStore)(nil)

func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db path: %w", err)
	}

	// DSN notes:
	// - _pragma=busy_timeout sets a lock wait
	// - _pragma=journal_mode(WAL) enables the write-ahead log
	// - _pragma=synchronous(NORMAL) is safe with WAL enabled
	// - _pragma=foreign_keys(1) rejects memberships of unknown guilds
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)", filepath.Clean(dbPath))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// One connection serializes transactions, which makes every Atomic call
	// a per-player and per-guild critical section.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := applyMigrations(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &SQLiteStore{db: db, topStmts: make(map[Metric]*sql.Stmt, len(Metrics))}
	if err := s.prepare(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

var metricColumn = map[Metric]string{
	MetricGold: "currency_earned",
	MetricMass: "mass_caught",
	MetricXP:   "experience",
}

func (s *SQLiteStore) prepare() error {
	for _, m := range Metrics {
		col := metricColumn[m]
		stmt, err := s.db.Prepare(`
			SELECT ` + memberColumns + `
			FROM players
			WHERE (? = 0 OR guild_id = ?)
			ORDER BY ` + col + ` DESC, id ASC
			LIMIT ?
		`)
		if err != nil {
			return fmt.Errorf("prepare %s leaderboard: %w", m, err)
		}
		s.topStmts[m] = stmt
	}

	totals, err := s.db.Prepare(`
		SELECT g.id, g.name, g.level, g.experience, g.leader_id, g.created_at,
		       COUNT(p.id),
		       COALESCE(SUM(p.currency_earned + p.mass_caught + p.experience), 0)
		FROM guilds g
		JOIN players p ON p.guild_id = g.id
		WHERE g.name_key IS NOT NULL
		GROUP BY g.id
	`)
	if err != nil {
		return fmt.Errorf("prepare guild totals: %w", err)
	}
	s.totals = totals
	return nil
}

func (s *SQLiteStore) Close() error {
	for _, stmt := range s.topStmts {
		_ = stmt.Close()
	}
	if s.totals != nil {
		_ = s.totals.Close()
	}
	return s.db.Close()
}

func (s *SQLiteStore) Atomic(ctx context.Context, fn func(Tx) error) error {
	if s == nil || s.db == nil {
		return apperrors.Storage("store not initialized", nil)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Storage("begin transaction", err)
	}
	if err := fn(&sqlTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return storageError("transaction", err)
	}
	if err := tx.Commit(); err != nil {
		return apperrors.Storage("commit transaction", err)
	}
	return nil
}

func (s *SQLiteStore) Leaderboard(ctx context.Context, metric Metric, guildID int64, limit int) ([]guild.Member, error) {
	stmt, ok := s.topStmts[metric]
	if !ok {
		return nil, fmt.Errorf("unknown leaderboard metric %q", metric)
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := stmt.QueryContext(ctx, guildID, guildID, limit)
	if err != nil {
		return nil, apperrors.Storage("query leaderboard", err)
	}
	defer rows.Close()

	out := make([]guild.Member, 0, limit)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, apperrors.Storage("scan leaderboard", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("read leaderboard", err)
	}
	return out, nil
}

func (s *SQLiteStore) GuildTotals(ctx context.Context) ([]GuildTotal, error) {
	rows, err := s.totals.QueryContext(ctx)
	if err != nil {
		return nil, apperrors.Storage("query guild totals", err)
	}
	defer rows.Close()

	var out []GuildTotal
	for rows.Next() {
		var (
			t         GuildTotal
			createdAt int64
		)
		if err := rows.Scan(&t.Guild.ID, &t.Guild.Name, &t.Guild.Level, &t.Guild.Experience,
			&t.Guild.LeaderID, &createdAt, &t.Members, &t.Total); err != nil {
			return nil, apperrors.Storage("scan guild totals", err)
		}
		t.Guild.CreatedAt = fromMillis(createdAt)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("read guild totals", err)
	}
	return out, nil
}

// Maintain folds the WAL back into the database and refreshes planner stats.
func (s *SQLiteStore) Maintain(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return apperrors.Storage("wal checkpoint", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize"); err != nil {
		return apperrors.Storage("optimize", err)
	}
	return nil
}

// storageError passes domain errors through and wraps the rest.
func storageError(msg string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.Storage(msg, err)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMilli(v).UTC()
}
