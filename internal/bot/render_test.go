package bot

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	apperrors "github.com/faideww/reelquest/internal/errors"
	"github.com/faideww/reelquest/internal/fish"
	"github.com/faideww/reelquest/internal/game"
	"github.com/faideww/reelquest/internal/gear"
	"github.com/faideww/reelquest/internal/player"
	"github.com/faideww/reelquest/internal/progression"
	"github.com/faideww/reelquest/internal/session"
	"github.com/faideww/reelquest/internal/store"
)

func TestEveryCommandHasARoute(t *testing.T) {
	routes := (&module{}).routes()
	seen := map[string]bool{}
	for _, cmd := range commandDefs(gear.DefaultCatalog()) {
		leaves := []string{cmd.Name}
		if len(cmd.Options) > 0 && cmd.Options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
			leaves = leaves[:0]
			for _, o := range cmd.Options {
				leaves = append(leaves, cmd.Name+" "+o.Name)
			}
		}
		for _, l := range leaves {
			if _, ok := routes[l]; !ok {
				t.Fatalf("command %q has no route", l)
			}
			seen[l] = true
		}
		for _, o := range cmd.Options {
			if len(o.Choices) > 25 {
				t.Fatalf("option %s has too many choices", o.Name)
			}
		}
	}
	for r := range routes {
		if !seen[r] {
			t.Fatalf("route %q is not registered as a command", r)
		}
	}
}

func TestResolveSubcommand(t *testing.T) {
	data := discordgo.ApplicationCommandInteractionData{
		Name: "guild",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{{
			Name: "buy",
			Type: discordgo.ApplicationCommandOptionSubCommand,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "item", Type: discordgo.ApplicationCommandOptionString, Value: "Wooden Rod"},
			},
		}},
	}
	route, opts := resolve(data)
	if route != "guild buy" || opts.str("item") != "Wooden Rod" {
		t.Fatalf("unexpected resolution %q %v", route, opts)
	}

	route, opts = resolve(discordgo.ApplicationCommandInteractionData{
		Name: "leaderboard",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "guild", Type: discordgo.ApplicationCommandOptionBoolean, Value: true},
		},
	})
	if route != "leaderboard" || !opts.boolean("guild") || opts.str("metric") != "" {
		t.Fatalf("unexpected resolution %q", route)
	}
}

func TestErrorReply(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{apperrors.New(apperrors.CodeAlreadyFishing, "x"), "already in the water"},
		{apperrors.WithMetadata(apperrors.CodeInsufficientFunds, "x", map[string]string{"missing": "7"}), "need 7 more"},
		{apperrors.WithMetadata(apperrors.CodeUnknownItem, "x", map[string]string{"item": "wrom", "suggestion": "Worm"}), "Did you mean **Worm**"},
		{apperrors.WithMetadata(apperrors.CodeNoMatchingFish, "x", map[string]string{"fish": "Eel", "rarity": "legendary"}), "no legendary Eel"},
		{apperrors.New(apperrors.CodeNegativeQuantity, "x"), "unexpected state"},
		{apperrors.Storage("db", errors.New("locked")), "try again"},
		{errors.New("boom"), "try again"},
	}
	for _, tt := range tests {
		r := errorReply(tt.err)
		if !r.ephemeral || !strings.Contains(r.content, tt.want) {
			t.Fatalf("%v: expected %q in %q", tt.err, tt.want, r.content)
		}
	}
}

func TestRenderPull(t *testing.T) {
	lost := renderPull(game.PullResult{Lost: true})
	if lost.embed == nil || !strings.Contains(lost.embed.Title, "got away") {
		t.Fatalf("unexpected lost render %+v", lost.embed)
	}
	caught := renderPull(game.PullResult{
		Summary: player.Summary{Level: 2, Rank: "Young Angler", Currency: 4},
		Rarity:  fish.Legendary,
		XP:      30,
		LevelUp: progression.Result{LeveledUp: true, From: 1, To: 2, Reward: 4, Rank: "Young Angler"},
	})
	if caught.embed.Color != fish.ColorForRarity(fish.Legendary) {
		t.Fatal("expected the rarity color")
	}
	if !strings.Contains(caught.embed.Description, "Level up! **1 → 2**") {
		t.Fatalf("missing level up line: %q", caught.embed.Description)
	}
}

func TestRenderPoll(t *testing.T) {
	if r := renderPoll(game.PollResult{State: session.Ready}); r.ephemeral {
		t.Fatal("a bite should be announced publicly")
	}
	r := renderPoll(game.PollResult{State: session.Waiting, Seconds: 75})
	if !strings.Contains(r.content, "1:15") {
		t.Fatalf("unexpected wait text %q", r.content)
	}
}

func TestRenderLeaderboard(t *testing.T) {
	if r := renderLeaderboard("t", store.MetricGold, nil, false); r.embed != nil {
		t.Fatal("expected plain text for an empty board")
	}
	r := renderLeaderboard("🏆", store.MetricMass, []game.Standing{
		{Position: 1, Nickname: "Marina", Level: 4, Value: 120},
	}, false)
	if !strings.Contains(r.embed.Description, "**#1** Marina · lvl 4 · **120** kg caught") {
		t.Fatalf("unexpected board %q", r.embed.Description)
	}
}

func TestRenderInventory(t *testing.T) {
	r := renderInventory(game.InventoryView{
		Rod:      gear.Rod{Name: "Bamboo Rod"},
		Bait:     &gear.Bait{Name: "Worm"},
		BaitLeft: 30 * time.Minute,
		Entries: []player.Entry{
			{Fish: fish.Fish{Name: "Small Goby", Weight: 2, Rarity: fish.Common}, Quantity: 3},
		},
		TotalWeight: 6,
	})
	desc := r.embed.Description
	for _, want := range []string{"Worm** (30:00 left)", "Small Goby · 2 kg · common ×3", "worth about 4"} {
		if !strings.Contains(desc, want) {
			t.Fatalf("expected %q in %q", want, desc)
		}
	}
}

func TestPretty(t *testing.T) {
	if got := pretty(-time.Second); got != "0:00" {
		t.Fatalf("got %q", got)
	}
	if got := pretty(61 * time.Second); got != "1:01" {
		t.Fatalf("got %q", got)
	}
}

// snowflake encodes at as a Discord id with zeroed worker and sequence bits.
func snowflake(at time.Time) string {
	const discordEpoch = 1420070400000
	return strconv.FormatInt((at.UnixMilli()-discordEpoch)<<22, 10)
}

func TestActionDeadlineFitsAckWindow(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		id   string
		want time.Time
	}{
		{"fresh interaction", snowflake(now), now.Add(actionTimeout)},
		{"delivered late", snowflake(now.Add(-2 * time.Second)), now.Add(actionTimeout - 2*time.Second)},
		{"unparseable id", "not-a-snowflake", now.Add(actionTimeout)},
		{"clock skew", snowflake(now.Add(time.Second)), now.Add(actionTimeout)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := actionDeadline(tt.id, now)
			if !got.Equal(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			if got.Sub(now) >= ackWindow {
				t.Fatalf("deadline %v leaves no time to reply", got.Sub(now))
			}
		})
	}
}
