package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/starcalypse/torrentdeck/relocator"
	"github.com/starcalypse/torrentdeck/report"
	"github.com/starcalypse/torrentdeck/rules"
)

var (
	filterExpr string
	dryRun     bool
	noConfirm  bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Preview which trackers the rules would rewrite",
	Long: `Fetch every torrent from the downloader and list the tracker URLs that
the enabled rules would rewrite. Nothing is changed.`,
	RunE: runScan,
}

// executeCmd represents the execute command
var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Rewrite every tracker matched by the rules",
	Long: `Scan, show the planned replacements and, after confirmation, rewrite
each matching tracker. A failed replacement is reported and the remaining ones
are still attempted.`,
	RunE: runExecute,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(executeCmd)

	for _, c := range []*cobra.Command{scanCmd, executeCmd} {
		c.Flags().StringVarP(&filterExpr, "filter", "f", "", "only consider torrents matching this expression (overrides the config filter)")
	}
	executeCmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "print the planned replacements without applying them")
	executeCmd.Flags().BoolVar(&noConfirm, "no-confirm", false, "skip confirmation prompt")
}

// pipelineRequest builds the request from config and flags
func pipelineRequest(cmd *cobra.Command) (relocator.Request, error) {
	if cmd.Flags().Changed("filter") {
		cfg.Filter = filterExpr
	}

	req, err := cfg.Request()
	if err != nil {
		return relocator.Request{}, err
	}

	if rules.CountActive(cfg.Rules) == 0 {
		logger.Warn().Msg("No enabled rules, nothing will match")
	}
	return req, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	w, err := newReportWriter(cmd)
	if err != nil {
		return err
	}

	req, err := pipelineRequest(cmd)
	if err != nil {
		return err
	}

	result, err := operations.Scan(cmd.Context(), req)
	if err != nil {
		return err
	}

	return w.WriteScan(result)
}

func runExecute(cmd *cobra.Command, args []string) error {
	w, err := newReportWriter(cmd)
	if err != nil {
		return err
	}

	planOut, separate, err := planWriter(cmd, w)
	if err != nil {
		return err
	}

	req, err := pipelineRequest(cmd)
	if err != nil {
		return err
	}

	plan, err := operations.Scan(cmd.Context(), req)
	if err != nil {
		return err
	}

	if err := planOut.WriteScan(plan); err != nil {
		return err
	}

	// With the plan on stderr, stdout still gets its one outcomes document
	noOutcomes := func() error {
		if separate {
			return w.WriteOutcomes(nil)
		}
		return nil
	}

	if len(plan.Matches) == 0 {
		return noOutcomes()
	}

	if dryRun {
		logger.Info().Msg("DRY RUN MODE - No trackers will be replaced")
		return nil
	}

	if !noConfirm && !confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), len(plan.Matches), plan.MatchedTorrents) {
		logger.Info().Msg("Replacement cancelled by user")
		return noOutcomes()
	}

	// Execute refetches, so the outcomes reflect the state at apply time
	outcomes, err := operations.Execute(cmd.Context(), req)
	if err != nil {
		return err
	}

	if err := w.WriteOutcomes(outcomes); err != nil {
		return err
	}

	if _, failed := relocator.Summary(outcomes); failed > 0 {
		return fmt.Errorf("failed to replace %d of %d trackers", failed, len(outcomes))
	}
	return nil
}

// planWriter picks where execute prints its plan. JSON output carries a
// single document on stdout, so unless this is a dry run the plan goes to
// stderr and stdout is left for the outcomes.
func planWriter(cmd *cobra.Command, w report.Writer) (report.Writer, bool, error) {
	format, err := report.ParseFormat(outputFormat)
	if err != nil {
		return nil, false, err
	}
	if format != report.FormatJSON || dryRun {
		return w, false, nil
	}

	planOut, err := report.NewWriter(format, cmd.ErrOrStderr())
	if err != nil {
		return nil, false, err
	}
	return planOut, true, nil
}

// confirm prompts the user for confirmation
func confirm(in io.Reader, out io.Writer, trackers, torrents int) bool {
	fmt.Fprintf(out, "\nReplace %d tracker(s) in %d torrent(s)? [y/N]: ", trackers, torrents)

	response, _ := bufio.NewReader(in).ReadString('\n')
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
