package cli

import (
	"fmt"

	"momentum/internal/database"
	"momentum/internal/repository"
	"momentum/internal/seed"

	"github.com/spf13/cobra"
)

var seedOpts = seed.DefaultOptions()

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with demo users and activity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.IsProduction() {
			return fmt.Errorf("refusing to seed a production database")
		}
		db, err := openDB(true)
		if err != nil {
			return err
		}
		defer database.Close(db)

		res, err := seed.NewSeeder(repository.NewStore(db), seedOpts).Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(),
			"seeded %d users, %d projects, %d daily entries, %d weekly reviews, %d jobs (%d activities)\n",
			res.Users, res.Projects, res.DailyEntries, res.WeeklyReviews, res.Jobs, res.Activities)
		fmt.Fprintf(cmd.OutOrStdout(), "every account uses the password %q\n", seed.DefaultPassword)
		return nil
	},
}

func init() {
	f := seedCmd.Flags()
	f.IntVar(&seedOpts.Users, "users", seedOpts.Users, "Number of demo accounts")
	f.IntVar(&seedOpts.ProjectsPerUser, "projects", seedOpts.ProjectsPerUser, "Projects per account")
	f.IntVar(&seedOpts.EntriesPerProject, "entries", seedOpts.EntriesPerProject, "Daily entries per project, one per day back from today")
	f.IntVar(&seedOpts.JobsPerUser, "jobs", seedOpts.JobsPerUser, "Job applications per account")
	f.Int64Var(&seedOpts.Seed, "seed", 0, "Random seed for reproducible data (0 picks one)")
}
