package guild

import (
	"testing"
	"time"
)

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestContribution(t *testing.T) {
	if got := Contribution(100, 1); got != 909 {
		t.Fatalf("expected 909, got %d", got)
	}
	if got := Contribution(100, 40); got != 200 {
		t.Fatalf("expected 200, got %d", got)
	}
	if Contribution(100, 10) >= Contribution(100, 2) {
		t.Fatal("expected contribution to shrink with membership")
	}
	if got := Contribution(0, 1); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestAddExperienceCascades(t *testing.T) {
	g := &Guild{Name: "Pike"}
	if gained := g.AddExperience(26999); gained != 0 || g.Level != 0 {
		t.Fatalf("expected level 0, got %d", g.Level)
	}
	if gained := g.AddExperience(1); gained != 1 || g.Level != 1 {
		t.Fatalf("expected level 1, got %d", g.Level)
	}
	if gained := g.AddExperience(400000); gained != 2 || g.Level != 3 {
		t.Fatalf("expected cascade to level 3, got %d (+%d)", g.Level, gained)
	}
	g.AddExperience(1 << 40)
	if g.Level != MaxLevel || g.ToNextLevel() != 0 {
		t.Fatalf("expected cap at %d, got %d", MaxLevel, g.Level)
	}
}

func TestToNextLevel(t *testing.T) {
	g := &Guild{Level: 1, Experience: 30000}
	if got := g.ToNextLevel(); got != 78000 {
		t.Fatalf("expected 78000, got %d", got)
	}
}

func TestBonus(t *testing.T) {
	if xp, gold := Bonus(0); xp != 0 || gold != 0 {
		t.Fatalf("expected no bonus at 0, got %d/%d", xp, gold)
	}
	if xp, gold := Bonus(7); xp != 33 || gold != 33 {
		t.Fatalf("expected 33/33 at 7, got %d/%d", xp, gold)
	}
	prev := -1
	for level := 0; level <= MaxLevel; level++ {
		xp, _ := Bonus(level)
		if xp <= prev {
			t.Fatalf("bonus not rising at level %d", level)
		}
		prev = xp
	}
}

func TestRating(t *testing.T) {
	members := []Member{
		{CurrencyEarned: 100, MassCaught: 50, Experience: 50},
		{CurrencyEarned: 0, MassCaught: 0, Experience: 800},
	}
	if got := Rating(0, members); got != 1000 {
		t.Fatalf("expected 1000, got %d", got)
	}
	if got := Rating(3, members); got != 1300 {
		t.Fatalf("expected 1300, got %d", got)
	}
}

func TestNextLeaderAndRoster(t *testing.T) {
	members := []Member{
		{PlayerID: 1, JoinedAt: now},
		{PlayerID: 2, JoinedAt: now.Add(2 * time.Hour)},
		{PlayerID: 3, JoinedAt: now.Add(time.Hour)},
	}
	if got := NextLeader(1, members); got != 3 {
		t.Fatalf("expected 3 to lead, got %d", got)
	}
	if got := NextLeader(1, members[:1]); got != 0 {
		t.Fatalf("expected nobody left, got %d", got)
	}
	roster := Roster(2, members)
	if roster[0].PlayerID != 2 || roster[1].PlayerID != 1 || roster[2].PlayerID != 3 {
		t.Fatalf("unexpected roster %+v", roster)
	}
}

func TestMembershipRank(t *testing.T) {
	tests := []struct {
		since time.Duration
		want  MemberRank
	}{
		{0, RankNewcomer},
		{59 * time.Minute, RankNewcomer},
		{time.Hour, RankMember},
		{24 * time.Hour, RankHookKeeper},
		{48 * time.Hour, RankPondWarden},
		{72 * time.Hour, RankEstuaryGuard},
		{10 * 24 * time.Hour, RankEstuaryGuard},
		{30 * 24 * time.Hour, RankVeteran},
	}
	for _, tt := range tests {
		if got := MembershipRank(false, now.Add(-tt.since), now); got != tt.want {
			t.Fatalf("%s: expected %s, got %s", tt.since, tt.want, got)
		}
	}
	if got := MembershipRank(true, now, now); got != RankLeader {
		t.Fatalf("expected leader, got %s", got)
	}
}
