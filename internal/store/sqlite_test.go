package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/faideww/reelquest/internal/errors"
	"github.com/faideww/reelquest/internal/fish"
	"github.com/faideww/reelquest/internal/gear"
	"github.com/faideww/reelquest/internal/guild"
	"github.com/faideww/reelquest/internal/player"
)

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "reelquest.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func put(t *testing.T, s *SQLiteStore, p *player.Player) {
	t.Helper()
	if err := s.Atomic(context.Background(), func(tx Tx) error {
		return tx.PutPlayer(context.Background(), p)
	}); err != nil {
		t.Fatalf("put player %d: %v", p.ID, err)
	}
}

func find(t *testing.T, s *SQLiteStore, id int64) *player.Player {
	t.Helper()
	var p *player.Player
	if err := s.Atomic(context.Background(), func(tx Tx) error {
		var err error
		p, err = tx.FindPlayer(context.Background(), id)
		return err
	}); err != nil {
		t.Fatalf("find player %d: %v", id, err)
	}
	return p
}

func insertGuild(t *testing.T, s *SQLiteStore, name string, leader int64) *guild.Guild {
	t.Helper()
	g := &guild.Guild{Name: name, LeaderID: leader, CreatedAt: now}
	if err := s.Atomic(context.Background(), func(tx Tx) error {
		return tx.InsertGuild(context.Background(), g)
	}); err != nil {
		t.Fatalf("insert guild: %v", err)
	}
	return g
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reelquest.db")
	for i := 0; i < 2; i++ {
		s, err := OpenSQLite(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		_ = s.Close()
	}
}

func TestUpSection(t *testing.T) {
	got := upSection("-- +migrate Up\nCREATE TABLE x (a);\n-- +migrate Down\nDROP TABLE x;")
	if got != "\nCREATE TABLE x (a);\n" {
		t.Fatalf("unexpected up section %q", got)
	}
}

func TestFindMissingPlayer(t *testing.T) {
	s := openTestStore(t)
	if p := find(t, s, 404); p != nil {
		t.Fatalf("expected nil, got %+v", p)
	}
}

func TestPlayerRoundTrip(t *testing.T) {
	s := openTestStore(t)
	g := insertGuild(t, s, "Pike Lovers", 7)

	p := player.New(7, now, gear.Rod{Name: "PRO Rod", BonusPercent: 25})
	p.Nickname = "Marina"
	p.GainXP(100)
	p.Earn(40)
	p.MassCaught = 33
	p.Bait = &gear.Bait{Name: "Worm", EndsAt: now.Add(time.Hour), Table: fish.Table{Common: 60, Rare: 35, Legendary: 5}}
	p.Buff = &gear.Buff{Name: "Friend of Animals", EndsAt: now.Add(2 * time.Hour), SpeedPercent: 1, GoldPercent: 1, XPPercent: 1}
	p.Guild = &player.Membership{GuildID: g.ID, JoinedAt: now}
	p.Unidentified = player.Unidentified{Common: 3, Rare: 1}
	p.Inventory.Add(fish.Fish{Name: "Huge Eel", Weight: 30, Rarity: fish.Legendary}, 2)
	p.Stats.Record("PRO Rod", "Worm")
	p.Cat = player.CatQuest{NextAt: now.Add(6 * time.Hour)}
	p.Fetch = &player.FetchQuest{Fish: "Eel", Rarity: fish.Legendary, Gold: 60, XP: 300, Accepted: true}
	put(t, s, p)

	got := find(t, s, 7)
	if got == nil {
		t.Fatal("expected a stored player")
	}
	if got.Summary() != p.Summary() || got.Nickname != "Marina" || got.Rod != p.Rod {
		t.Fatalf("summary mismatch: %+v vs %+v", got.Summary(), p.Summary())
	}
	if got.CurrencyEarned != 40 || got.MassCaught != 33 || !got.RegisteredAt.Equal(now) {
		t.Fatalf("totals mismatch: %+v", got)
	}
	if got.Bait == nil || got.Bait.Table != p.Bait.Table || !got.Bait.EndsAt.Equal(p.Bait.EndsAt) {
		t.Fatalf("bait mismatch: %+v", got.Bait)
	}
	if got.Buff == nil || got.Buff.XPPercent != 1 {
		t.Fatalf("buff mismatch: %+v", got.Buff)
	}
	if got.Guild == nil || got.Guild.GuildID != g.ID || !got.Guild.JoinedAt.Equal(now) {
		t.Fatalf("membership mismatch: %+v", got.Guild)
	}
	if got.Unidentified != p.Unidentified {
		t.Fatalf("unidentified mismatch: %+v", got.Unidentified)
	}
	if got.Inventory[fish.Fish{Name: "Huge Eel", Weight: 30, Rarity: fish.Legendary}] != 2 {
		t.Fatalf("inventory mismatch: %v", got.Inventory)
	}
	if got.Stats.FavoriteRod() != "PRO Rod" || got.Stats.FavoriteBait() != "Worm" {
		t.Fatalf("stats mismatch: %+v", got.Stats)
	}
	if got.Fetch == nil || *got.Fetch != *p.Fetch {
		t.Fatalf("fetch quest mismatch: %+v", got.Fetch)
	}
	if !got.Cat.NextAt.Equal(p.Cat.NextAt) {
		t.Fatalf("cat mismatch: %+v", got.Cat)
	}

	// A sold-out inventory must leave no rows behind.
	got.Inventory = player.Inventory{}
	got.Bait = nil
	put(t, s, got)
	again := find(t, s, 7)
	if !again.Inventory.Empty() || again.Bait != nil {
		t.Fatalf("expected cleared inventory and bait, got %v %+v", again.Inventory, again.Bait)
	}
}

func TestPutPlayerRejectsOrphanedMembership(t *testing.T) {
	s := openTestStore(t)
	p := player.New(1, now, gear.Rod{})
	p.Guild = &player.Membership{GuildID: 99, JoinedAt: now}
	err := s.Atomic(context.Background(), func(tx Tx) error { return tx.PutPlayer(context.Background(), p) })
	if apperrors.CodeOf(err) != apperrors.CodeOrphanedMembership {
		t.Fatalf("expected ORPHANED_MEMBERSHIP, got %v", err)
	}
	if apperrors.KindOf(err) != apperrors.KindConsistency {
		t.Fatalf("expected a consistency error, got %s", apperrors.KindOf(err))
	}
}

func TestPutPlayerRejectsNonPositiveQuantity(t *testing.T) {
	s := openTestStore(t)
	p := player.New(1, now, gear.Rod{})
	p.Inventory[fish.Fish{Name: "Old Chub", Weight: 2, Rarity: fish.Common}] = 0
	err := s.Atomic(context.Background(), func(tx Tx) error { return tx.PutPlayer(context.Background(), p) })
	if apperrors.CodeOf(err) != apperrors.CodeNegativeQuantity {
		t.Fatalf("expected NEGATIVE_QUANTITY, got %v", err)
	}
}

func TestNicknameUniqueness(t *testing.T) {
	s := openTestStore(t)
	a := player.New(1, now, gear.Rod{})
	a.Nickname = "Marina"
	put(t, s, a)
	put(t, s, player.New(2, now, gear.Rod{}))

	ctx := context.Background()
	err := s.Atomic(ctx, func(tx Tx) error {
		taken, err := tx.NicknameTaken(ctx, player.NameKey("MARINA"), 2)
		if err != nil {
			return err
		}
		if !taken {
			t.Fatal("expected nickname to be taken")
		}
		if taken, _ := tx.NicknameTaken(ctx, player.NameKey("marina"), 1); taken {
			t.Fatal("own nickname must not count")
		}
		name := "mArInA"
		return tx.PatchPlayer(ctx, 2, player.Patch{Nickname: &name})
	})
	if apperrors.CodeOf(err) != apperrors.CodeNicknameTaken {
		t.Fatalf("expected NICKNAME_TAKEN, got %v", err)
	}
}

func TestAtomicRollsBackOnError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	want := apperrors.New(apperrors.CodeInsufficientFunds, "no")
	err := s.Atomic(ctx, func(tx Tx) error {
		if err := tx.PutPlayer(ctx, player.New(5, now, gear.Rod{})); err != nil {
			return err
		}
		return want
	})
	if err != want {
		t.Fatalf("expected the domain error unchanged, got %v", err)
	}
	if p := find(t, s, 5); p != nil {
		t.Fatal("expected rollback")
	}
}

func TestGuildLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	g := insertGuild(t, s, "Pike Lovers", 1)

	err := s.Atomic(ctx, func(tx Tx) error {
		return tx.InsertGuild(ctx, &guild.Guild{Name: "PIKE lovers", LeaderID: 2, CreatedAt: now})
	})
	if apperrors.CodeOf(err) != apperrors.CodeGuildNameTaken {
		t.Fatalf("expected GUILD_NAME_TAKEN, got %v", err)
	}

	for i, id := range []int64{1, 2} {
		p := player.New(id, now, gear.Rod{})
		p.Guild = &player.Membership{GuildID: g.ID, JoinedAt: now.Add(time.Duration(i) * time.Hour)}
		put(t, s, p)
	}

	err = s.Atomic(ctx, func(tx Tx) error {
		found, err := tx.GuildByName(ctx, player.NameKey("pike LOVERS"))
		if err != nil {
			return err
		}
		members, err := tx.GuildMembers(ctx, found.ID)
		if err != nil {
			return err
		}
		if len(members) != 2 || members[0].PlayerID != 1 {
			t.Fatalf("unexpected members %+v", members)
		}
		found.AddExperience(30000)
		return tx.PutGuild(ctx, found)
	})
	if err != nil {
		t.Fatal(err)
	}

	err = s.Atomic(ctx, func(tx Tx) error {
		got, err := tx.Guild(ctx, g.ID)
		if err != nil {
			return err
		}
		if got.Level != 1 || got.Experience != 30000 {
			t.Fatalf("unexpected guild %+v", got)
		}
		for _, id := range []int64{1, 2} {
			if err := tx.PatchPlayer(ctx, id, player.Patch{LeaveGuild: true}); err != nil {
				return err
			}
		}
		got.Name = ""
		return tx.PutGuild(ctx, got)
	})
	if err != nil {
		t.Fatal(err)
	}

	err = s.Atomic(ctx, func(tx Tx) error {
		_, err := tx.Guild(ctx, g.ID)
		return err
	})
	if apperrors.CodeOf(err) != apperrors.CodeGuildNotFound {
		t.Fatalf("expected dissolved guild to be gone, got %v", err)
	}
	// The name is free again.
	insertGuild(t, s, "Pike Lovers", 3)
}

func TestLeaderboardAndTotals(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	g := insertGuild(t, s, "Carp Club", 1)

	for i, id := range []int64{1, 2, 3} {
		p := player.New(id, now, gear.Rod{})
		p.CurrencyEarned = int64(10 * (i + 1))
		p.MassCaught = int64(100 - 10*i)
		p.Experience = 5
		if id != 3 {
			p.Guild = &player.Membership{GuildID: g.ID, JoinedAt: now}
		}
		put(t, s, p)
	}

	gold, err := s.Leaderboard(ctx, MetricGold, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(gold) != 2 || gold[0].PlayerID != 3 || gold[1].PlayerID != 2 {
		t.Fatalf("unexpected gold board %+v", gold)
	}
	mass, err := s.Leaderboard(ctx, MetricMass, g.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(mass) != 2 || mass[0].PlayerID != 1 {
		t.Fatalf("unexpected guild mass board %+v", mass)
	}
	if MetricMass.Value(mass[0]) != 100 {
		t.Fatalf("unexpected metric value %d", MetricMass.Value(mass[0]))
	}

	totals, err := s.GuildTotals(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(totals) != 1 || totals[0].Members != 2 || totals[0].Total != (10+100+5)+(20+90+5) {
		t.Fatalf("unexpected totals %+v", totals)
	}
	if totals[0].Rating() != 230 {
		t.Fatalf("unexpected rating %d", totals[0].Rating())
	}

	if err := s.Maintain(ctx); err != nil {
		t.Fatalf("maintain: %v", err)
	}
}

func TestParseMetric(t *testing.T) {
	if m, err := ParseMetric("xp"); err != nil || m != MetricXP {
		t.Fatalf("expected xp, got %v %v", m, err)
	}
	if _, err := ParseMetric("size"); err == nil {
		t.Fatal("expected an error")
	}
}
