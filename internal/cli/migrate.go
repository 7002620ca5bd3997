package cli

import (
	"fmt"
	"strconv"

	"momentum/internal/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the Postgres schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(false)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if cfg.DBDriver != "postgres" {
			if err := database.AutoMigrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "automigrations applied")
			return nil
		}
		if err := database.RunMigrations(db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "sql migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations, one step by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := parseSteps(args)
		if err != nil {
			return err
		}
		if err := requirePostgres(); err != nil {
			return err
		}
		db, err := openDB(false)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.RollbackMigrations(db, steps); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePostgres(); err != nil {
			return err
		}
		db, err := openDB(false)
		if err != nil {
			return err
		}
		defer database.Close(db)

		status, err := database.GetMigrationStatus(db)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatStatus(status))
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(args[0])
	if err != nil || steps <= 0 {
		return 0, fmt.Errorf("invalid steps %q: must be a positive integer", args[0])
	}
	return steps, nil
}

func requirePostgres() error {
	if cfg.DBDriver != "postgres" {
		return fmt.Errorf("versioned migrations require DB_DRIVER=postgres (got %q)", cfg.DBDriver)
	}
	return nil
}

func formatStatus(s database.MigrationStatus) string {
	if !s.Applied {
		return "no migrations applied"
	}
	if s.Dirty {
		return fmt.Sprintf("version=%d dirty=true (fix the failed migration, then force the version)", s.Version)
	}
	return fmt.Sprintf("version=%d", s.Version)
}
