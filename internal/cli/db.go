package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/monorkin/lab-roster/internal/database"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect and manage the database schema",
	Long:  `Every command opens the database and applies pending migrations first.`,
}

var dbVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}

		db, err := openDatabase(settings)
		if err != nil {
			return err
		}
		defer database.Close(db)

		fmt.Fprintf(cmd.OutOrStdout(), "%d\n", database.CurrentSchemaVersion(db))
		return nil
	},
}

var dbRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Revert the most recent migration",
	Long:  `Revert the most recent migration. The next command that opens the database applies it again.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}

		db, err := openDatabase(settings)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Rollback(db); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Rolled back to schema version %d.\n", database.CurrentSchemaVersion(db))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbVersionCmd)
	dbCmd.AddCommand(dbRollbackCmd)
}
