package cmd

import (
	"github.com/spf13/cobra"
)

// trackersCmd represents the trackers command
var trackersCmd = &cobra.Command{
	Use:   "trackers",
	Short: "List tracker domains and how many torrents use them",
	RunE:  runTrackers,
}

func init() {
	rootCmd.AddCommand(trackersCmd)
}

func runTrackers(cmd *cobra.Command, args []string) error {
	w, err := newReportWriter(cmd)
	if err != nil {
		return err
	}

	desc, err := cfg.Connection.Descriptor()
	if err != nil {
		return err
	}

	domains, err := operations.ListTrackerDomains(cmd.Context(), desc)
	if err != nil {
		return err
	}

	return w.WriteDomains(domains)
}
