package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appBuild   = "unknown"
)

// SetVersion records the build metadata injected by the linker
func SetVersion(version, buildTime string) {
	appVersion = version
	appBuild = buildTime
	rootCmd.Version = version
}

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "torrentdeck %s (built %s, %s)\n", appVersion, appBuild, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
