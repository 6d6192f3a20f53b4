package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "parrainage-bot",
	Short: "Telegram referral bot",
	Long: `Telegram referral bot: users share a personal link, invite friends and
climb the referral leaderboard.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}
