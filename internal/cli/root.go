// Package cli implements trackerctl, the operator tool for schema
// migrations, demo data and upload housekeeping.
package cli

import (
	"fmt"
	"os"

	"momentum/internal/config"
	"momentum/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "trackerctl",
	Short: "Operator commands for the Momentum tracker",
	Long: `trackerctl manages a Momentum deployment: it applies schema migrations,
seeds demo data, removes orphaned proof uploads and lists the API routes.
Configuration comes from config.yml and the environment, like the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(routesCmd)
}

func openDB(applySchema bool) (*gorm.DB, error) {
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: applySchema})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}
