package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	apperrors "github.com/faideww/reelquest/internal/errors"
	"github.com/faideww/reelquest/internal/game"
	"github.com/faideww/reelquest/internal/ratelimit"
	"github.com/faideww/reelquest/internal/store"
	"github.com/google/uuid"
)

const (
	// Discord drops interactions not acknowledged within ackWindow.
	ackWindow     = 3 * time.Second
	replyMargin   = 500 * time.Millisecond
	actionTimeout = ackWindow - replyMargin
)

type action func(ctx context.Context, playerID int64, opts options) (reply, error)

type module struct {
	s          *discordgo.Session
	appId      string
	scopeGuild string
	engine     *game.Engine
	cmdLim     *ratelimit.Limiter
	lbLim      *ratelimit.Limiter
	actions    map[string]action
}

func Setup(
	session *discordgo.Session,
	appId, scopeGuild string,
	engine *game.Engine,
	cmdLim *ratelimit.Limiter,
	lbLim *ratelimit.Limiter,
) (func(), error) {

	m := &module{
		s:          session,
		appId:      appId,
		scopeGuild: scopeGuild,
		engine:     engine,
		cmdLim:     cmdLim,
		lbLim:      lbLim,
	}
	m.actions = m.routes()

	cmds := commandDefs(engine.Catalog())

	created, err := session.ApplicationCommandBulkOverwrite(appId, scopeGuild, cmds)
	if err != nil {
		return nil, fmt.Errorf("failed to register commands: %w", err)
	}

	for _, c := range created {
		log.Printf("command active: %s (%s)", c.Name, c.Description)
	}

	remove := session.AddHandler(m.onInteraction)

	return remove, nil
}

func (m *module) routes() map[string]action {
	e := m.engine
	return map[string]action{
		"fish cast": func(ctx context.Context, id int64, _ options) (reply, error) {
			r, err := e.Cast(ctx, id)
			return renderCast(r), err
		},
		"fish status": func(ctx context.Context, id int64, _ options) (reply, error) {
			r, err := e.Poll(ctx, id)
			return renderPoll(r), err
		},
		"fish pull": func(ctx context.Context, id int64, _ options) (reply, error) {
			r, err := e.Pull(ctx, id)
			return renderPull(r), err
		},
		"identify": func(ctx context.Context, id int64, _ options) (reply, error) {
			r, err := e.IdentifyAll(ctx, id)
			return renderIdentify(r), err
		},
		"sell": func(ctx context.Context, id int64, _ options) (reply, error) {
			r, err := e.SellAll(ctx, id)
			return renderSell(r), err
		},
		"inventory": func(ctx context.Context, id int64, _ options) (reply, error) {
			r, err := e.Inventory(ctx, id)
			return renderInventory(r), err
		},
		"profile": func(ctx context.Context, id int64, _ options) (reply, error) {
			r, err := e.Profile(ctx, id)
			return renderProfile(r), err
		},
		"nickname": func(ctx context.Context, id int64, o options) (reply, error) {
			r, err := e.SetNickname(ctx, id, o.str("name"))
			return renderNickname(r), err
		},
		"shop": func(ctx context.Context, id int64, _ options) (reply, error) {
			return renderShop(e.Shop()), nil
		},
		"buy rod": func(ctx context.Context, id int64, o options) (reply, error) {
			r, err := e.BuyRod(ctx, id, o.str("name"))
			return renderPurchase(r), err
		},
		"buy bait": func(ctx context.Context, id int64, o options) (reply, error) {
			r, err := e.BuyBait(ctx, id, o.str("name"))
			return renderPurchase(r), err
		},
		"leaderboard": m.leaderboard,
		"guild create": func(ctx context.Context, id int64, o options) (reply, error) {
			r, err := e.CreateGuild(ctx, id, o.str("name"))
			return renderGuildCreated(r), err
		},
		"guild join": func(ctx context.Context, id int64, o options) (reply, error) {
			r, err := e.JoinGuild(ctx, id, o.str("name"))
			return renderGuildJoined(r), err
		},
		"guild leave": func(ctx context.Context, id int64, _ options) (reply, error) {
			r, err := e.LeaveGuild(ctx, id)
			return renderGuildLeft(r), err
		},
		"guild info": func(ctx context.Context, id int64, _ options) (reply, error) {
			r, err := e.GuildInfo(ctx, id)
			return renderGuildInfo(r), err
		},
		"guild members": func(ctx context.Context, id int64, _ options) (reply, error) {
			r, err := e.GuildMembers(ctx, id)
			return renderMembers(r), err
		},
		"guild shop": func(ctx context.Context, id int64, _ options) (reply, error) {
			r, err := e.GuildShop(ctx, id)
			return renderGuildShop(r), err
		},
		"guild buy": func(ctx context.Context, id int64, o options) (reply, error) {
			r, err := e.BuyGuildItem(ctx, id, o.str("item"))
			return renderPurchase(r), err
		},
		"guild top": func(ctx context.Context, id int64, _ options) (reply, error) {
			if ok, rem := m.lbLim.TryBucket(id, "guild-top"); !ok {
				return private("⏳ Leaderboard refreshing... try again in %s.", pretty(rem)), nil
			}
			r, err := e.GuildTop(ctx, game.DefaultBoardSize)
			return renderGuildTop(r), err
		},
		"quest cat": func(ctx context.Context, id int64, _ options) (reply, error) {
			r, err := e.VisitCat(ctx, id)
			return renderCat(r), err
		},
		"quest feed": func(ctx context.Context, id int64, _ options) (reply, error) {
			r, err := e.FeedCat(ctx, id)
			return renderFeed(r), err
		},
		"quest sailor": func(ctx context.Context, id int64, _ options) (reply, error) {
			r, err := e.VisitSailor(ctx, id)
			return renderSailor(r), err
		},
		"quest accept": func(ctx context.Context, id int64, _ options) (reply, error) {
			r, err := e.AcceptFetchQuest(ctx, id)
			return renderSailor(r), err
		},
		"quest decline": func(ctx context.Context, id int64, _ options) (reply, error) {
			r, err := e.DeclineFetchQuest(ctx, id)
			return renderDeclined(r), err
		},
		"quest deliver": func(ctx context.Context, id int64, _ options) (reply, error) {
			r, err := e.DeliverFetchQuest(ctx, id)
			return renderDelivery(r), err
		},
	}
}

func (m *module) leaderboard(ctx context.Context, id int64, o options) (reply, error) {
	if ok, rem := m.lbLim.TryBucket(id, "leaderboard"); !ok {
		return private("⏳ Leaderboard refreshing... try again in %s.", pretty(rem)), nil
	}
	metric := store.MetricGold
	if raw := o.str("metric"); raw != "" {
		var err error
		if metric, err = store.ParseMetric(raw); err != nil {
			return private("Unknown leaderboard '%s'", raw), nil
		}
	}
	if o.boolean("guild") {
		rows, err := m.engine.GuildLeaderboard(ctx, id, metric, game.DefaultBoardSize)
		return renderLeaderboard("🏆 Guild leaderboard - "+metricLabel(metric), metric, rows, true), err
	}
	rows, err := m.engine.Leaderboard(ctx, metric, game.DefaultBoardSize)
	return renderLeaderboard("🏆 Leaderboard - "+metricLabel(metric), metric, rows, false), err
}

func (m *module) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	cid := uuid.NewString()
	data := i.ApplicationCommandData()
	route, opts := resolve(data)
	userId := interactionUser(i)
	playerID := toInt64(userId)

	act, ok := m.actions[route]
	if !ok || playerID == 0 {
		log.Printf("[%s] unhandled command %q from %q", cid, route, userId)
		return
	}

	// Rate limiting
	if ok, rem := m.cmdLim.Try(playerID); !ok {
		respond(s, i, private("⏳ Slow down... try again in %s.", pretty(rem)))
		return
	}

	start := time.Now()
	ctx, cancel := context.WithDeadline(context.Background(), actionDeadline(i.ID, start))
	defer cancel()

	r, err := act(ctx, playerID, opts)
	if err != nil {
		if !apperrors.IsUser(err) {
			log.Printf("[%s] /%s by %d failed (%s): %v", cid, route, playerID, apperrors.KindOf(err), err)
		}
		r = errorReply(err)
	}
	log.Printf("[%s] /%s by %d in %s", cid, route, playerID, time.Since(start))

	if err := respond(s, i, r); err != nil {
		logREST(fmt.Sprintf("[%s] respond failed", cid), err)
	}
}

// resolve flattens "/guild buy item:x" into the route "guild buy" and its
// leaf options.
func resolve(data discordgo.ApplicationCommandInteractionData) (string, options) {
	route := data.Name
	opts := data.Options
	if len(opts) == 1 && opts[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		route += " " + opts[0].Name
		opts = opts[0].Options
	}
	return route, newOptions(opts)
}

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func newOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	out := make(options, len(opts))
	for _, o := range opts {
		out[o.Name] = o
	}
	return out
}

func (o options) str(name string) string {
	if opt, ok := o[name]; ok && opt.Type == discordgo.ApplicationCommandOptionString {
		return opt.StringValue()
	}
	return ""
}

func (o options) boolean(name string) bool {
	if opt, ok := o[name]; ok && opt.Type == discordgo.ApplicationCommandOptionBoolean {
		return opt.BoolValue()
	}
	return false
}

func interactionUser(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, r reply) error {
	data := &discordgo.InteractionResponseData{Content: r.content}
	if r.embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{r.embed}
	}
	if r.ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func logREST(msg string, err error) {
	if rerr, ok := err.(*discordgo.RESTError); ok && rerr.Message != nil {
		log.Printf("%s: code=%d msg=%s", msg, rerr.Message.Code, rerr.Message.Message)
	} else {
		log.Printf("%s: %v", msg, err)
	}
}

// actionDeadline leaves room to reply inside the acknowledgement window,
// counted from when Discord created the interaction.
func actionDeadline(interactionID string, now time.Time) time.Time {
	deadline := now.Add(actionTimeout)
	created, err := discordgo.SnowflakeTimestamp(interactionID)
	if err != nil || created.After(now) {
		return deadline
	}
	if d := created.Add(actionTimeout); d.Before(deadline) {
		return d
	}
	return deadline
}

// toInt64 converts a snowflake to the numeric player id.
func toInt64(snowflake string) int64 {
	n, _ := strconv.ParseInt(snowflake, 10, 64)
	return n
}
