package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/faideww/reelquest/internal/gear"
	"github.com/faideww/reelquest/internal/store"
)

func sub(name, desc string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: desc,
		Options:     opts,
	}
}

func textOpt(name, desc string, required bool, choices ...string) *discordgo.ApplicationCommandOption {
	opt := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: desc,
		Required:    required,
	}
	for _, c := range choices {
		if len(opt.Choices) == 25 {
			break
		}
		opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{Name: c, Value: c})
	}
	return opt
}

func metricNames() []string {
	out := make([]string, 0, len(store.Metrics))
	for _, m := range store.Metrics {
		out = append(out, string(m))
	}
	return out
}

func commandDefs(cat *gear.Catalog) []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "fish",
			Description: "Cast, check and pull your line",
			Options: []*discordgo.ApplicationCommandOption{
				sub("cast", "Cast a line"),
				sub("status", "Check whether something is biting"),
				sub("pull", "Reel in your line"),
			},
		},
		{Name: "identify", Description: "Identify every unidentified catch"},
		{Name: "sell", Description: "Sell your whole inventory"},
		{Name: "inventory", Description: "Show your gear and fish"},
		{Name: "profile", Description: "Show your angler profile"},
		{
			Name:        "nickname",
			Description: "Choose your angler name",
			Options: []*discordgo.ApplicationCommandOption{
				textOpt("name", "Letters and spaces, up to 25 characters", true),
			},
		},
		{Name: "shop", Description: "Browse rods and bait"},
		{
			Name:        "buy",
			Description: "Buy a rod or bait",
			Options: []*discordgo.ApplicationCommandOption{
				sub("rod", "Buy a rod", textOpt("name", "Rod name", true, cat.RodNames()...)),
				sub("bait", "Buy bait", textOpt("name", "Bait name", true, cat.BaitNames()...)),
			},
		},
		{
			Name:        "leaderboard",
			Description: "Show the best anglers",
			Options: []*discordgo.ApplicationCommandOption{
				textOpt("metric", "What to rank by", false, metricNames()...),
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "guild",
					Description: "Only rank your guildmates",
					Required:    false,
				},
			},
		},
		{
			Name:        "guild",
			Description: "Guild actions",
			Options: []*discordgo.ApplicationCommandOption{
				sub("create", "Found a guild", textOpt("name", "Guild name", true)),
				sub("join", "Join a guild", textOpt("name", "Guild name", true)),
				sub("leave", "Leave your guild"),
				sub("info", "Show your guild"),
				sub("members", "List your guildmates"),
				sub("shop", "Browse the guild shop"),
				sub("buy", "Buy from the guild shop", textOpt("item", "Item name", true, cat.GuildItemNames()...)),
				sub("top", "Show the top guilds"),
			},
		},
		{
			Name:        "quest",
			Description: "Side quests",
			Options: []*discordgo.ApplicationCommandOption{
				sub("cat", "Visit the cat"),
				sub("feed", "Feed the cat your smallest fish"),
				sub("sailor", "Visit the sailor"),
				sub("accept", "Accept the sailor's request"),
				sub("decline", "Decline the sailor's request"),
				sub("deliver", "Deliver the requested fish"),
			},
		},
	}
}
