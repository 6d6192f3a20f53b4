package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"parrainage-bot/internal/config"
	"parrainage-bot/internal/database"
	"parrainage-bot/internal/ledger"
)

var leaderboardLimit int

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Print the referral leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		db, err := database.Connect(cfg)
		if err != nil {
			return err
		}

		entries, err := ledger.New(db).Leaderboard(cmd.Context(), leaderboardLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i, e := range entries {
			fmt.Fprintf(out, "%3d. %-12d %-24s %-24s %d\n", i+1, e.UserID, e.Username, e.DisplayName, e.Score)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(leaderboardCmd)
	leaderboardCmd.Flags().IntVarP(&leaderboardLimit, "limit", "n", 10, "number of entries to print")
}
