package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	apperrors "github.com/faideww/reelquest/internal/errors"
	"github.com/faideww/reelquest/internal/fish"
	"github.com/faideww/reelquest/internal/game"
	"github.com/faideww/reelquest/internal/gear"
	"github.com/faideww/reelquest/internal/guild"
	"github.com/faideww/reelquest/internal/player"
	"github.com/faideww/reelquest/internal/progression"
	"github.com/faideww/reelquest/internal/quest"
	"github.com/faideww/reelquest/internal/session"
	"github.com/faideww/reelquest/internal/store"
)

const (
	colorInfo  = 0x3498db
	colorGold  = 0xf1c40f
	colorGuild = 0x9b59b6
	colorLost  = 0x95a5a6
)

// reply is one interaction response.
type reply struct {
	content   string
	embed     *discordgo.MessageEmbed
	ephemeral bool
}

func text(format string, args ...any) reply {
	return reply{content: fmt.Sprintf(format, args...)}
}

func private(format string, args ...any) reply {
	return reply{content: fmt.Sprintf(format, args...), ephemeral: true}
}

func summaryFooter(s player.Summary) *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Level %d · %s · %d XP · %d 🪙", s.Level, s.Rank, s.Experience, s.Currency),
	}
}

func levelUpLine(r progression.Result) string {
	if !r.LeveledUp {
		return ""
	}
	return fmt.Sprintf("\n🎉 Level up! **%d → %d** (%s), +%d 🪙", r.From, r.To, r.Rank, r.Reward)
}

func renderCast(r game.CastResult) reply {
	return reply{embed: &discordgo.MessageEmbed{
		Title:       "🎣 Line cast!",
		Description: fmt.Sprintf("Rod: **%s** · Bait: **%s**\nCheck back in **%s** with `/fish status`.", r.Rod, r.Bait, pretty(r.Delay)),
		Color:       colorInfo,
		Footer:      summaryFooter(r.Summary),
	}}
}

func renderPoll(r game.PollResult) reply {
	if r.State == session.Ready {
		return text("🐟 Something is biting! `/fish pull` now!")
	}
	return private("⏳ Nothing yet... %s left.", pretty(time.Duration(r.Seconds)*time.Second))
}

func renderPull(r game.PullResult) reply {
	if r.Lost {
		return reply{embed: &discordgo.MessageEmbed{
			Title:       "💨 It got away!",
			Description: "You pulled too early and the fish slipped off the hook.",
			Color:       colorLost,
			Footer:      summaryFooter(r.Summary),
		}}
	}
	desc := fmt.Sprintf("You caught an unidentified **%s** fish! +%d XP", r.Rarity, r.XP)
	desc += levelUpLine(r.LevelUp)
	if r.GuildLevelUps > 0 {
		desc += "\n🏰 Your guild leveled up!"
	}
	return reply{embed: &discordgo.MessageEmbed{
		Title:       "🐟 Catch!",
		Description: desc,
		Color:       fish.ColorForRarity(r.Rarity),
		Footer:      summaryFooter(r.Summary),
	}}
}

func renderIdentify(r game.IdentifyResult) reply {
	var b strings.Builder
	for _, f := range r.Fish {
		fmt.Fprintf(&b, "• **%s** · %d kg · %s · %s\n", f.Name, f.Weight, f.Class, f.Rarity)
	}
	fmt.Fprintf(&b, "\nTotal: **%d kg**", r.Mass)
	return reply{embed: &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🔍 Identified %d fish", len(r.Fish)),
		Description: b.String(),
		Color:       colorInfo,
		Footer:      summaryFooter(r.Summary),
	}}
}

func renderSell(r game.SellResult) reply {
	desc := fmt.Sprintf("Sold **%d kg** of fish for **%d 🪙**", r.TotalWeight, r.Payout)
	if r.Payout != r.Base {
		desc += fmt.Sprintf(" (base %d, bonuses +%d)", r.Base, r.Payout-r.Base)
	}
	return reply{embed: &discordgo.MessageEmbed{
		Title:       "💰 Sold!",
		Description: desc,
		Color:       colorGold,
		Footer:      summaryFooter(r.Summary),
	}}
}

func renderInventory(v game.InventoryView) reply {
	var b strings.Builder
	fmt.Fprintf(&b, "Rod: **%s** (-%d%% wait)\n", v.Rod.Name, v.Rod.BonusPercent)
	if v.Bait != nil {
		fmt.Fprintf(&b, "Bait: **%s** (%s left)\n", v.Bait.Name, pretty(v.BaitLeft))
	} else {
		b.WriteString("Bait: none\n")
	}
	u := v.Unidentified
	fmt.Fprintf(&b, "Unidentified: %d common · %d rare · %d legendary\n\n", u.Common, u.Rare, u.Legendary)
	if len(v.Entries) == 0 {
		b.WriteString("No identified fish.")
	}
	for _, e := range v.Entries {
		fmt.Fprintf(&b, "• %s · %d kg · %s ×%d\n", e.Name, e.Weight, e.Rarity, e.Quantity)
	}
	if v.TotalWeight > 0 {
		fmt.Fprintf(&b, "\nTotal: **%d kg**, worth about %d 🪙", v.TotalWeight, player.SaleValue(v.TotalWeight))
	}
	return reply{ephemeral: true, embed: &discordgo.MessageEmbed{
		Title:       "🎒 Inventory",
		Description: b.String(),
		Color:       colorInfo,
		Footer:      summaryFooter(v.Summary),
	}}
}

func renderProfile(v game.ProfileView) reply {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Level", Value: fmt.Sprintf("%d (%s)", v.Level, v.Rank), Inline: true},
		{Name: "Experience", Value: fmt.Sprintf("%d / %d", v.Experience, v.RequiredXP), Inline: true},
		{Name: "Coins", Value: fmt.Sprint(v.Currency), Inline: true},
		{Name: "Favorite rod", Value: v.FavoriteRod, Inline: true},
		{Name: "Favorite bait", Value: v.FavoriteBait, Inline: true},
		{Name: "Angling for", Value: days(v.Age), Inline: true},
	}
	if v.GuildName != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Guild", Value: v.GuildName, Inline: true})
	}
	if v.Bait != nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Bait", Value: fmt.Sprintf("%s (%s)", v.Bait.Name, pretty(v.BaitLeft)), Inline: true})
	}
	if v.Buff != nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Bonus", Value: fmt.Sprintf("%s (%s)", v.Buff.Name, pretty(v.BuffLeft)), Inline: true})
	}
	return reply{embed: &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("🎣 %s", v.Nickname),
		Color:  colorInfo,
		Fields: fields,
	}}
}

func renderShop(v game.ShopView) reply {
	var b strings.Builder
	b.WriteString("**Rods**\n")
	for _, r := range v.Rods {
		fmt.Fprintf(&b, "• %s · %d 🪙 · -%d%% wait\n", r.Name, r.Price, r.BonusPercent)
	}
	b.WriteString("\n**Bait**\n")
	writeBaits(&b, v.Baits)
	return reply{ephemeral: true, embed: &discordgo.MessageEmbed{
		Title:       "🛒 Shop",
		Description: b.String(),
		Color:       colorGold,
	}}
}

func writeBaits(b *strings.Builder, baits []gear.BaitOffer) {
	for _, o := range baits {
		fmt.Fprintf(b, "• %s · %d 🪙 · %s · %d/%d/%d\n", o.Name, o.Price, o.Duration,
			o.Table.Common, o.Table.Rare, o.Table.Legendary)
	}
}

func renderPurchase(r game.PurchaseResult) reply {
	switch {
	case r.Rod != nil:
		return text("🎣 You bought **%s** for %d 🪙. Your wait is now %d%% shorter.", r.Rod.Name, r.Price, r.Rod.BonusPercent)
	case r.Bait != nil:
		return text("🪱 **%s** is on the hook until %s.", r.Bait.Name, r.Bait.EndsAt.UTC().Format("15:04 MST"))
	}
	return text("You bought **%s**.", r.Item)
}

func renderNickname(r game.NicknameResult) reply {
	return text("✏️ You are now known as **%s**.", r.Nickname)
}

func metricLabel(m store.Metric) string {
	switch m {
	case store.MetricMass:
		return "kg caught"
	case store.MetricXP:
		return "XP"
	default:
		return "🪙 earned"
	}
}

func renderLeaderboard(title string, metric store.Metric, rows []game.Standing, showRank bool) reply {
	if len(rows) == 0 {
		return text("No anglers yet - type `/fish cast` to be the first!")
	}
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "**#%d** %s · lvl %d · **%d** %s", r.Position, r.Nickname, r.Level, r.Value, metricLabel(metric))
		if showRank {
			fmt.Fprintf(&b, " · %s", r.Rank)
		}
		b.WriteByte('\n')
	}
	return reply{embed: &discordgo.MessageEmbed{
		Title:       title,
		Description: b.String(),
		Color:       colorGold,
	}}
}

func renderGuildCreated(r game.GuildResult) reply {
	return text("🏰 Guild **%s** founded!", r.Guild.Name)
}

func renderGuildJoined(r game.GuildResult) reply {
	return text("🏰 Welcome to **%s**!", r.Guild.Name)
}

func renderGuildLeft(r game.LeaveResult) reply {
	if r.Dissolved {
		return text("🚪 You left **%s**. It had no members left and was dissolved.", r.Guild.Name)
	}
	return text("🚪 You left **%s**.", r.Guild.Name)
}

func renderGuildInfo(v game.GuildView) reply {
	next := "max level"
	if v.Level < guild.MaxLevel {
		next = fmt.Sprintf("%d XP to go", v.ToNextLevel)
	}
	return reply{embed: &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🏰 %s", v.Name),
		Color: colorGuild,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Level", Value: fmt.Sprintf("%d (%s)", v.Level, next), Inline: true},
			{Name: "Experience", Value: fmt.Sprint(v.Experience), Inline: true},
			{Name: "Rating", Value: fmt.Sprint(v.Rating), Inline: true},
			{Name: "Bonuses", Value: fmt.Sprintf("+%d%% XP · +%d%% coins", v.XPBonus, v.GoldBonus), Inline: true},
			{Name: "Members", Value: fmt.Sprint(v.MemberCount), Inline: true},
			{Name: "Leader", Value: v.LeaderName, Inline: true},
			{Name: "Founded", Value: days(v.Age) + " ago", Inline: true},
		},
	}}
}

func renderMembers(members []game.MemberView) reply {
	var b strings.Builder
	for _, m := range members {
		fmt.Fprintf(&b, "• **%s** · lvl %d · %s\n", m.Nickname, m.Level, m.RankName)
	}
	return reply{embed: &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("👥 Members (%d)", len(members)),
		Description: b.String(),
		Color:       colorGuild,
	}}
}

func renderGuildShop(v game.GuildShopView) reply {
	var b strings.Builder
	if len(v.Rods) == 0 && len(v.Baits) == 0 {
		b.WriteString("Nothing unlocked yet.")
	}
	for _, r := range v.Rods {
		fmt.Fprintf(&b, "• %s · %d 🪙 · -%d%% wait\n", r.Name, r.Price, r.BonusPercent)
	}
	writeBaits(&b, v.Baits)
	return reply{ephemeral: true, embed: &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🏰 Guild shop (level %d)", v.Level),
		Description: b.String(),
		Color:       colorGuild,
	}}
}

func renderGuildTop(rows []game.GuildStanding) reply {
	if len(rows) == 0 {
		return text("No guilds yet - found one with `/guild create`!")
	}
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "**#%d** %s · lvl %d · %d members · rating **%d**\n", r.Position, r.Name, r.Level, r.Members, r.Rating)
	}
	return reply{embed: &discordgo.MessageEmbed{
		Title:       "🏆 Top guilds",
		Description: b.String(),
		Color:       colorGuild,
	}}
}

func renderCat(v game.CatView) reply {
	return text("🐈 A %s cat looks at you hungrily. Feed it with `/quest feed`.", strings.ToLower(v.Color))
}

func renderFeed(r game.FeedResult) reply {
	return text("🐈 The cat happily eats your %s (%d kg). You gain **%s** for %s!",
		r.Fed.Name, r.Fed.Weight, r.Buff.Name, pretty(quest.CatBuffTime))
}

func renderSailor(v game.SailorView) reply {
	q := v.Quest
	status := "Use `/quest accept` or `/quest decline`."
	if q.Accepted {
		status = "Quest accepted."
		if v.HasMatch {
			status += " You have a matching fish: `/quest deliver`!"
		}
	}
	return reply{embed: &discordgo.MessageEmbed{
		Title:       "⚓ The sailor",
		Description: fmt.Sprintf("Bring me a **%s** %s.\nReward: **%d XP** and **%d 🪙**\n\n%s", q.Rarity, q.Fish, q.XP, q.Gold, status),
		Color:       fish.ColorForRarity(q.Rarity),
		Footer:      summaryFooter(v.Summary),
	}}
}

func renderDeclined(player.Summary) reply {
	return text("⚓ The sailor shrugs and walks away.")
}

func renderDelivery(r game.DeliveryResult) reply {
	return reply{embed: &discordgo.MessageEmbed{
		Title:       "⚓ Delivered!",
		Description: fmt.Sprintf("You handed over %s (%d kg).\n+%d XP, +%d 🪙%s", r.Delivered.Name, r.Delivered.Weight, r.XP, r.Gold, levelUpLine(r.LevelUp)),
		Color:       colorGold,
		Footer:      summaryFooter(r.Summary),
	}}
}

// errorReply turns an action failure into what the player sees.
func errorReply(err error) reply {
	e, ok := apperrors.As(err)
	if !ok || e.Kind == apperrors.KindStorage {
		return private("⚠️ Something went wrong on our side. Please try again.")
	}
	if e.Kind == apperrors.KindConsistency {
		return private("⚠️ Your record is in an unexpected state; an admin has been notified.")
	}
	md := e.Metadata
	switch e.Code {
	case apperrors.CodeAlreadyFishing:
		return private("🎣 Your line is already in the water. Use `/fish status`.")
	case apperrors.CodeNoSession:
		return private("🎣 You have no line in the water. Use `/fish cast`.")
	case apperrors.CodeInsufficientFunds:
		return private("🪙 Not enough coins: you need %s more.", md["missing"])
	case apperrors.CodeNothingToIdentify:
		return private("🔍 You have nothing to identify. Go fishing!")
	case apperrors.CodeNothingToSell:
		return private("💰 Your inventory is empty.")
	case apperrors.CodeNoIdentifiedFish:
		return private("🐟 You need at least one identified fish.")
	case apperrors.CodeUnknownItem:
		if s := md["suggestion"]; s != "" {
			return private("❓ No item named %q. Did you mean **%s**?", md["item"], s)
		}
		return private("❓ No item named %q.", md["item"])
	case apperrors.CodeItemLocked:
		return private("🔒 %s unlocks at guild level %s.", md["item"], md["required_level"])
	case apperrors.CodeInvalidName:
		return private("✏️ Names must be 1-%d letters or spaces.", player.MaxNameLength)
	case apperrors.CodeNicknameTaken:
		return private("✏️ That name is already taken.")
	case apperrors.CodeGuildNameTaken:
		return private("🏰 A guild with that name already exists.")
	case apperrors.CodeGuildNotFound:
		return private("🏰 No such guild.")
	case apperrors.CodeAlreadyInGuild:
		return private("🏰 You are already in **%s**. Leave it first.", md["guild"])
	case apperrors.CodeNotInGuild:
		return private("🏰 You are not in a guild.")
	case apperrors.CodeCatCooldown:
		return private("🐈 The cat is napping. Come back later.")
	case apperrors.CodeNoQuest:
		return private("⚓ You have no quest. Visit the sailor with `/quest sailor`.")
	case apperrors.CodeQuestAlreadyAccepted:
		return private("⚓ You already accepted this quest.")
	case apperrors.CodeQuestNotAccepted:
		return private("⚓ Accept the quest first with `/quest accept`.")
	case apperrors.CodeNoMatchingFish:
		return private("⚓ You have no %s %s yet.", md["rarity"], md["fish"])
	}
	return private("⚠️ %s", e.Message)
}

func pretty(d time.Duration) string {
	// mm:ss
	if d < 0 {
		d = 0
	}
	m := int(d / time.Minute)
	s := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%d:%02d", m, s)
}

func days(d time.Duration) string {
	n := int(d / (24 * time.Hour))
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
