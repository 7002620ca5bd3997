package cli

import (
	"fmt"
	"time"

	"momentum/internal/database"
	"momentum/internal/repository"
	"momentum/internal/storage"
	"momentum/internal/worker"

	"github.com/spf13/cobra"
)

var (
	sweepDryRun bool
	sweepGrace  time.Duration
)

var sweepCmd = &cobra.Command{
	Use:   "sweep-uploads",
	Short: "Delete uploaded files that no proof record references",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(false)
		if err != nil {
			return err
		}
		defer database.Close(db)

		files, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			return err
		}
		referenced, err := repository.NewStore(db).DailyEntries.ProofPaths(cmd.Context())
		if err != nil {
			return err
		}

		orphans, err := worker.Sweep(cmd.Context(), files, referenced, sweepGrace, sweepDryRun)
		out := cmd.OutOrStdout()
		for _, p := range orphans {
			fmt.Fprintln(out, p)
		}
		if err != nil {
			return err
		}
		verb := "removed"
		if sweepDryRun {
			verb = "would remove"
		}
		fmt.Fprintf(out, "%s %d orphaned file(s)\n", verb, len(orphans))
		return nil
	},
}

func init() {
	sweepCmd.Flags().BoolVar(&sweepDryRun, "dry-run", false, "List orphans without deleting them")
	sweepCmd.Flags().DurationVar(&sweepGrace, "grace", time.Hour, "Skip files newer than this")
}
