package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/0xAcousticbridge/GAID/internal/database"
	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/internal/seed"
	"github.com/0xAcousticbridge/GAID/pkg/config"
	"github.com/0xAcousticbridge/GAID/pkg/output"
)

var seedFlags struct {
	sizes seed.Sizes
	seed  int64
	clean bool
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the database of the self-hosted backend",
	Long:  "Manage the database at database.url, used when backend.driver is postgres or sqlite.",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(database.Options{URL: config.GetString("database.url"), Logger: logger.Log})
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			return err
		}
		output.PrintSuccess("Database migrated")
		return nil
	},
}

var dbSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with fake users, ideas and activity",
	Long: `Fill the database with fake users, ideas, comments, ratings, favorites,
dashboards and activity for development. Every account uses the password
` + seed.DevPassword + `.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(database.Options{URL: config.GetString("database.url"), Logger: logger.Log})
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			return err
		}

		seeder := seed.NewSeeder(db, seedFlags.seed, logger.Log)
		if seedFlags.clean {
			output.PrintWarning("Removing all existing rows")
			if err := seeder.Clean(); err != nil {
				return err
			}
		}
		if err := seeder.SeedDev(seedFlags.sizes); err != nil {
			return err
		}
		logger.Log.Info("Seeding finished", zap.Int("users", seedFlags.sizes.Users), zap.Int("ideas", seedFlags.sizes.Ideas))
		output.PrintSuccess("Seeded %d users and %d ideas (password %s)", seedFlags.sizes.Users, seedFlags.sizes.Ideas, seed.DevPassword)
		return nil
	},
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count the rows in every table",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(database.Options{URL: config.GetString("database.url"), Logger: logger.Log})
		if err != nil {
			return err
		}
		defer database.Close(db)

		counts, err := database.Counts(db)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(counts))
		for _, c := range counts {
			rows = append(rows, []string{c.Table, strconv.FormatInt(c.Rows, 10)})
		}
		return output.PrintTable([]string{"TABLE", "ROWS"}, rows, counts)
	},
}

func init() {
	d := seed.DefaultSizes()
	f := dbSeedCmd.Flags()
	f.IntVar(&seedFlags.sizes.Users, "users", d.Users, "Number of users")
	f.IntVar(&seedFlags.sizes.Ideas, "ideas", d.Ideas, "Number of ideas")
	f.IntVar(&seedFlags.sizes.Comments, "comments", d.Comments, "Number of comments")
	f.IntVar(&seedFlags.sizes.Ratings, "ratings", d.Ratings, "Number of ratings")
	f.Int64Var(&seedFlags.seed, "seed", 0, "Random seed for repeatable data (0 picks one)")
	f.BoolVar(&seedFlags.clean, "clean", false, "Delete all rows before seeding")

	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbSeedCmd)
	dbCmd.AddCommand(dbStatsCmd)
}
