package player

import (
	"testing"
	"time"

	apperrors "github.com/faideww/reelquest/internal/errors"
	"github.com/faideww/reelquest/internal/fish"
	"github.com/faideww/reelquest/internal/gear"
	"github.com/faideww/reelquest/internal/progression"
)

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestNewDefaults(t *testing.T) {
	p := New(42, now, gear.Rod{Name: "Bamboo Rod"})
	if p.Level != 1 || p.Experience != 0 || p.Currency != 0 {
		t.Fatalf("unexpected defaults %+v", p.Summary())
	}
	if p.Rank != progression.Rank(1) {
		t.Fatalf("unexpected rank %q", p.Rank)
	}
	if p.Guild != nil || p.Bait != nil || p.Buff != nil || p.Fetch != nil {
		t.Fatal("expected empty equipment and memberships")
	}
	if p.DisplayName() != "Unknown angler" {
		t.Fatalf("unexpected display name %q", p.DisplayName())
	}
}

func TestGainXPPaysLevelReward(t *testing.T) {
	p := New(1, now, gear.Rod{})
	res := p.GainXP(40)
	if res.To != 3 || p.Level != 3 {
		t.Fatalf("expected level 3, got %d", p.Level)
	}
	if p.Currency != 4+6 {
		t.Fatalf("expected reward 10, got %d", p.Currency)
	}
	if p.CurrencyEarned != 0 {
		t.Fatalf("level rewards do not count as earnings, got %d", p.CurrencyEarned)
	}
}

func TestSpend(t *testing.T) {
	p := New(1, now, gear.Rod{})
	p.Currency = 5
	err := p.Spend(10)
	if apperrors.CodeOf(err) != apperrors.CodeInsufficientFunds {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if e, _ := apperrors.As(err); e.Metadata["missing"] != "5" {
		t.Fatalf("expected missing=5, got %v", e.Metadata)
	}
	if p.Currency != 5 {
		t.Fatalf("failed spend must not debit, got %d", p.Currency)
	}
	if err := p.Spend(5); err != nil || p.Currency != 0 {
		t.Fatalf("expected exact spend to succeed, got %v / %d", err, p.Currency)
	}
}

func TestExpirePurgesOnlyExpired(t *testing.T) {
	p := New(1, now, gear.Rod{})
	p.Bait = &gear.Bait{Name: "Worm", EndsAt: now.Add(time.Minute)}
	p.Buff = &gear.Buff{Name: "Friend of Animals", EndsAt: now.Add(-time.Minute)}
	if !p.Expire(now) {
		t.Fatal("expected expired buff to be purged")
	}
	if p.Buff != nil || p.Bait == nil {
		t.Fatalf("expected only the buff to go, bait=%v buff=%v", p.Bait, p.Buff)
	}
	if p.Expire(now) {
		t.Fatal("expected second pass to be a no-op")
	}
}

func TestInventoryRemove(t *testing.T) {
	inv := Inventory{}
	f := fish.Fish{Name: "Old Chub", Weight: 3, Rarity: fish.Common}
	inv.Add(f, 2)
	if err := inv.Remove(f, 1); err != nil || inv[f] != 1 {
		t.Fatalf("expected 1 left, got %d (%v)", inv[f], err)
	}
	if err := inv.Remove(f, 1); err != nil {
		t.Fatalf("remove last: %v", err)
	}
	if _, ok := inv[f]; ok {
		t.Fatal("expected zero-quantity entry to be deleted")
	}
	err := inv.Remove(f, 1)
	if apperrors.KindOf(err) != apperrors.KindConsistency {
		t.Fatalf("expected consistency violation, got %v", err)
	}
}

func TestInventoryLightestAndWeight(t *testing.T) {
	inv := Inventory{}
	inv.Add(fish.Fish{Name: "Big Goby", Weight: 4, Rarity: fish.Common}, 2)
	inv.Add(fish.Fish{Name: "Shiny Eel", Weight: 9, Rarity: fish.Rare}, 1)
	inv.Add(fish.Fish{Name: "Old Chub", Weight: 2, Rarity: fish.Common}, 1)
	if got := inv.TotalWeight(); got != 8+9+2 {
		t.Fatalf("expected 19 kg, got %d", got)
	}
	f, ok := inv.Lightest(nil)
	if !ok || f.Name != "Old Chub" {
		t.Fatalf("expected Old Chub, got %+v", f)
	}
	f, ok = inv.Lightest(func(f fish.Fish) bool { return f.Rarity == fish.Rare })
	if !ok || f.Name != "Shiny Eel" {
		t.Fatalf("expected Shiny Eel, got %+v", f)
	}
	entries := inv.Entries()
	if entries[0].Name != "Big Goby" || entries[2].Rarity != fish.Rare {
		t.Fatalf("unexpected order %+v", entries)
	}
}

func TestSaleValue(t *testing.T) {
	tests := map[int64]int64{0: 0, 1: 0, 2: 1, 10: 7, 100: 78}
	for w, want := range tests {
		if got := SaleValue(w); got != want {
			t.Fatalf("SaleValue(%d): expected %d, got %d", w, want, got)
		}
	}
}

func TestStatsFavorite(t *testing.T) {
	s := NewStats()
	if s.FavoriteRod() != "" {
		t.Fatal("expected no favorite yet")
	}
	s.Record("Bamboo Rod", gear.NoBaitLabel)
	s.Record("PRO Rod", "Worm")
	s.Record("PRO Rod", "Worm")
	if s.FavoriteRod() != "PRO Rod" || s.FavoriteBait() != "Worm" {
		t.Fatalf("unexpected favorites %q / %q", s.FavoriteRod(), s.FavoriteBait())
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"  Old   Salt ", "Old Salt", true},
		{"Рыбак Иван", "Рыбак Иван", true},
		{"", "", false},
		{"R2D2", "", false},
		{"abcdefghijklmnopqrstuvwxyz", "", false},
	}
	for _, tt := range tests {
		got, err := ValidateName(tt.in)
		if tt.ok != (err == nil) {
			t.Fatalf("%q: unexpected error %v", tt.in, err)
		}
		if tt.ok && got != tt.want {
			t.Fatalf("%q: expected %q, got %q", tt.in, tt.want, got)
		}
		if !tt.ok && apperrors.CodeOf(err) != apperrors.CodeInvalidName {
			t.Fatalf("%q: expected INVALID_NAME, got %v", tt.in, err)
		}
	}
	if NameKey("Old Salt") != NameKey("OLD SALT") {
		t.Fatal("expected case-insensitive keys")
	}
}

func TestPatchApply(t *testing.T) {
	p := New(1, now, gear.Rod{})
	nick := "Marlin"
	Patch{Nickname: &nick, Membership: &Membership{GuildID: 3, JoinedAt: now}}.Apply(p)
	if p.Nickname != "Marlin" || p.Guild == nil || p.Guild.GuildID != 3 {
		t.Fatalf("unexpected record %+v", p)
	}
	Patch{LeaveGuild: true}.Apply(p)
	if p.Guild != nil {
		t.Fatal("expected membership to be cleared")
	}
	if !(Patch{}).Empty() {
		t.Fatal("expected zero patch to be empty")
	}
}
