package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/monorkin/lab-roster/internal/database"
	"github.com/monorkin/lab-roster/internal/store"
)

// deviceCmd represents the device command
var deviceCmd = &cobra.Command{
	Use:     "device",
	Aliases: []string{"d", "devices"},
	Short:   "Inspect lab devices",
	Long:    `Commands for inspecting the devices registered in the roster.`,
}

// deviceListCmd represents the device list command
var deviceListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all devices",
	Long:    `List all devices with their ID, lab, name, the user who added them and when.`,
	Args:    cobra.NoArgs,
	RunE:    runDeviceList,
}

func runDeviceList(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	db, err := openDatabase(settings)
	if err != nil {
		return err
	}
	defer database.Close(db)

	logger.Debug("Fetching devices from database")

	devices, err := store.New(db).ListDevices(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch devices: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(devices) == 0 {
		fmt.Fprintln(out, "No devices found.")
		return nil
	}

	// Create tabwriter for aligned output
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tLAB\tNAME\tADDED BY\tPROTECTED\tADDED AT")
	fmt.Fprintln(w, "--\t---\t----\t--------\t---------\t--------")

	for _, device := range devices {
		protected := "no"
		if device.AdminOwned() {
			protected = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			device.ID,
			device.Lab,
			device.Name,
			device.Owner.Username,
			protected,
			device.Time.Format("2006-01-02T15:04:05Z07:00"),
		)
	}

	logger.Debug("Device list completed", "count", len(devices))
	return nil
}

func init() {
	// Add device command to root
	rootCmd.AddCommand(deviceCmd)

	// Add list subcommand to device
	deviceCmd.AddCommand(deviceListCmd)
}
