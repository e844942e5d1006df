package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/monorkin/lab-roster/internal/auth"
	"github.com/monorkin/lab-roster/internal/config"
	"github.com/monorkin/lab-roster/internal/database"
	"github.com/monorkin/lab-roster/internal/seed"
	"github.com/monorkin/lab-roster/internal/store"
)

var (
	initUsers   int
	initDevices int
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create roles, the administrator account and sample data",
	Long: `Prepare a database for use. Creates the Student and Admin roles and the
administrator account (number 0, username "Admin") with the configured
password, then adds sample users and devices.

Writes a settings file with a random secret key if none exists yet. Safe to run
more than once: roles and the administrator are only created when missing.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultSettingsPath()
	}

	created, initial, err := config.LoadOrInitializeSettings(path)
	if err != nil {
		return err
	}
	if created {
		if err := initial.SaveTo(path); err != nil {
			return fmt.Errorf("failed to write settings file: %w", err)
		}
		logger.Info("Wrote settings file", "path", path)
	}

	settings, err := config.Load(path, logger)
	if err != nil {
		return err
	}

	db, err := openDatabase(settings)
	if err != nil {
		return err
	}
	defer database.Close(db)

	seeder := seed.New(store.New(db), auth.BcryptHasher{}, nil, logger)
	report, err := seeder.Run(cmd.Context(), seed.Options{
		AdminPassword: settings.AdminPassword,
		Users:         initUsers,
		Devices:       initDevices,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if report.AdminCreated {
		fmt.Fprintln(out, "Created the administrator account (number 0).")
	} else {
		fmt.Fprintln(out, "The administrator account already exists.")
	}
	fmt.Fprintf(out, "Added %d sample users and %d sample devices.\n", report.Users, report.Devices)
	return nil
}

func init() {
	initCmd.Flags().IntVar(&initUsers, "users", 10, "Number of sample users to generate")
	initCmd.Flags().IntVar(&initDevices, "devices", 10, "Number of sample devices to generate")
	rootCmd.AddCommand(initCmd)
}
