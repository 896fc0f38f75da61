package main

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/vancomm/edgematch-server/internal/config"
	"github.com/vancomm/edgematch-server/internal/database"
)

func init() {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply every pending migration to the database named by DATABASE_URL
or the POSTGRES_* variables, then print the schema version.`,
		RunE: runMigrate,
	}

	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	url, err := config.DbURL()
	if err != nil {
		return err
	}

	migrator, err := database.Migrate(url, migrations)
	if err != nil {
		return err
	}
	defer migrator.Close()

	version, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("unable to read schema version: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", version, dirty)
	return nil
}
