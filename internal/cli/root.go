package cli

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/monorkin/lab-roster/internal/config"
	"github.com/monorkin/lab-roster/internal/database"
	"github.com/monorkin/lab-roster/internal/version"
)

var (
	verbose    bool
	configPath string
	logger     *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lab-roster",
	Short: "Lab device roster",
	Long: `A small web application for keeping track of the devices in a lab.

Administrators log in to list, search, add and remove devices. Devices added
by an administrator are protected from removal. Run "lab-roster init" once to
create the roles and the administrator account, then "lab-roster serve".`,
	Version:       version.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the settings file (default "+config.DefaultSettingsPath()+")")
}

// setupLogger configures the logger based on the verbose flag
func setupLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	// Set as default logger
	slog.SetDefault(logger)
}

func loadSettings() (*config.Settings, error) {
	return config.Load(configPath, logger)
}

func openDatabase(settings *config.Settings) (*gorm.DB, error) {
	logger.Debug("Opening database", "url", redactURL(settings.DatabaseURL))
	return database.Open(settings.DatabaseURL, database.Options{Verbose: verbose})
}

// redactURL hides the password of a database URL before it is logged.
func redactURL(raw string) string {
	if !config.IsPostgresURL(raw) {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return "postgres (redacted)"
	}
	return u.Redacted()
}
