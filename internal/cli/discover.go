package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/monorkin/lab-roster/internal/discovery"
)

var discoverTimeout time.Duration

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find roster servers on the local network",
	Long:  `Browse mDNS for servers started with "lab-roster serve --advertise".`,
	Args:  cobra.NoArgs,
	RunE:  runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	logger.Debug("Browsing for roster servers", "timeout", discoverTimeout)

	instances, err := discovery.Browse(cmd.Context(), logger, discoverTimeout)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(instances) == 0 {
		fmt.Fprintln(out, "No servers found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "NAME\tURL\tVERSION\tADDRESSES")
	fmt.Fprintln(w, "----\t---\t-------\t---------")
	for _, instance := range instances {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			instance.Name,
			instance.URL(),
			instance.Version,
			strings.Join(instance.Addrs, ", "),
		)
	}
	return nil
}

func init() {
	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", discovery.BROWSE_TIMEOUT, "How long to wait for answers")
	rootCmd.AddCommand(discoverCmd)
}
