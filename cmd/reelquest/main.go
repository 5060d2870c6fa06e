package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/faideww/reelquest/internal/api"
	"github.com/faideww/reelquest/internal/bot"
	"github.com/faideww/reelquest/internal/clock"
	"github.com/faideww/reelquest/internal/fish"
	"github.com/faideww/reelquest/internal/game"
	"github.com/faideww/reelquest/internal/gear"
	"github.com/faideww/reelquest/internal/ratelimit"
	"github.com/faideww/reelquest/internal/store"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

func main() {
	config, err := LoadConfig()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	reg := fish.DefaultRegistry()
	if config.SpeciesPath != "" {
		if reg, err = fish.LoadRegistryFromYAML(config.SpeciesPath); err != nil {
			log.Fatal(err)
		}
	}
	catalog := gear.DefaultCatalog()
	if config.GearPath != "" {
		if catalog, err = gear.LoadCatalogFromYAML(config.GearPath); err != nil {
			log.Fatal(err)
		}
	}

	st, err := store.OpenSQLite(config.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	clk := clock.Real()
	engine := game.NewEngine(game.Deps{
		Store:   st,
		Clock:   clk,
		Picker:  fish.NewPicker(reg, fish.NewSource()),
		Catalog: catalog,
	})

	session, err := discordgo.New("Bot " + config.DiscordToken)
	if err != nil {
		log.Fatal("failed to start session: ", err)
	}

	session.ShardCount = config.ShardCount
	session.ShardID = config.ShardId

	if err := session.Open(); err != nil {
		log.Fatal("failed to open session connection: ", err)
	}
	defer session.Close()

	appId := session.State.User.ID

	cmdLim := ratelimit.NewLimiter(
		time.Duration(config.CooldownCommandMin)*time.Second,
		time.Duration(config.CooldownCommandMax)*time.Second,
		clk,
	)
	lbLim := ratelimit.NewLimiter(
		time.Duration(config.CooldownLeaderboardMin)*time.Second,
		time.Duration(config.CooldownLeaderboardMax)*time.Second,
		clk,
	)
	teardown, err := bot.Setup(session, appId, config.DevGuild, engine, cmdLim, lbLim)
	if err != nil {
		log.Fatal("failed to setup bot: ", err)
	}
	defer teardown()

	c := cron.New()
	_, err = c.AddFunc(config.MaintenanceSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := st.Maintain(ctx); err != nil {
			log.Println("maintenance failed:", err)
			return
		}
		log.Printf("maintenance done, %d lines in the water", engine.ActiveCasts())
	})
	if err != nil {
		log.Fatal("invalid maintenance schedule: ", err)
	}
	c.Start()
	defer c.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	if config.HTTPAddr != "" {
		srv := api.NewServer(config.HTTPAddr, engine)
		g.Go(func() error { return srv.Run(ctx) })
	}

	log.Println("Bot is running")
	g.Go(func() error {
		<-ctx.Done()
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Println("shutting down:", err)
	}
}
