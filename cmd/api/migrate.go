package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/aidetect/internal/config"
	"github.com/bryanwahyu/aidetect/internal/infra/db/migrations"
)

func runMigrations(direction string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}
	url := cfg.Database.MigrationURL()

	if direction == "up" {
		if err := migrations.Up(cfg.Database.Driver, url); err != nil {
			return err
		}
		fmt.Println("Applied migrations successfully.")
		return nil
	}
	if err := migrations.Down(cfg.Database.Driver, url); err != nil {
		return err
	}
	fmt.Println("Reverted last migration successfully.")
	return nil
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all available database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrations("up")
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert the last database migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrations("down")
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the detection_results schema",
}

func init() {
	migrateCmd.AddCommand(upCmd, downCmd)
}
