package main

import (
	"log"

	"github.com/spf13/cobra"

	"parrainage-bot/internal/config"
	"parrainage-bot/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the users and referrals tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		// Connect also migrates.
		if _, err := database.Connect(cfg); err != nil {
			return err
		}
		log.Println("Schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
