package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"parrainage-bot/internal/announce"
	"parrainage-bot/internal/bot"
	"parrainage-bot/internal/cache"
	"parrainage-bot/internal/config"
	"parrainage-bot/internal/database"
	"parrainage-bot/internal/ledger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot with long polling",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Load Configuration
		cfg := config.LoadConfig()

		// Connect to Database
		db, err := database.Connect(cfg)
		if err != nil {
			return fmt.Errorf("could not connect to database: %w", err)
		}

		// Connect to Redis (optional)
		rdb := database.ConnectRedisOptional(ctx, cfg)
		if rdb != nil {
			defer rdb.Close()
		}

		l := ledger.New(db)
		ranking := cache.NewLeaderboard(l, rdb, cfg.LeaderboardCacheTTL)

		b, err := bot.NewBot(cfg, l, ranking)
		if err != nil {
			return err
		}
		announcer := announce.NewAnnouncer(b.Instance, rdb, cfg.ChannelID)
		b.Announcer = announcer
		go announcer.Start(ctx)

		log.Println("Service started successfully")
		return b.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
