package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the connection to the configured downloader",
	Long:  `Log in to the configured downloader and print the version it reports.`,
	RunE:  runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	desc, err := cfg.Connection.Descriptor()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Testing connection to %s at %s...\n", desc.Kind, desc.BaseURL())

	version, err := operations.TestConnection(cmd.Context(), desc)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Connected: %s\n", version)
	return nil
}
