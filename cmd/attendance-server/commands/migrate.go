package commands

import (
	"github.com/spf13/cobra"

	"github.com/ravantech1548/Face-recogn-attendance/internal/config"
	"github.com/ravantech1548/Face-recogn-attendance/internal/printer"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Long: `Apply pending schema migrations to the configured SQLite or Postgres
database and exit. In the dev environment the SQLite database is also
seeded with demo staff.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store == config.StoreMemory {
		return printer.Error(
			"nothing to migrate",
			"The memory store has no schema.",
			[]string{"Set ATTENDANCE_STORE to sqlite or postgres"},
		)
	}

	// Opening a database store applies every pending migration.
	st, err := openStack(cmd.Context(), cfg, newLogger(cfg))
	if err != nil {
		return printer.ErrorWithContext(
			"migration failed",
			err.Error(),
			map[string]string{"Store": cfg.Store},
			nil,
		)
	}
	st.Close()

	printer.Success("migrations applied (%s)\n", cfg.Store)
	return nil
}
