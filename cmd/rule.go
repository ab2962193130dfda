package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/starcalypse/torrentdeck/rules"
)

var ruleDisabled bool

// ruleCmd groups the rule management subcommands
var ruleCmd = &cobra.Command{
	Use:   "rule",
	Short: "Manage domain replacement rules",
	Long: `Manage the ordered list of domain replacement rules. The first enabled
rule whose old domain appears in a tracker URL wins. Indices are 1-based as
shown by "rule list".`,
}

var ruleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules in evaluation order",
	Args:  cobra.NoArgs,
	RunE:  runRuleList,
}

var ruleAddCmd = &cobra.Command{
	Use:   "add <old-domain> <new-domain>",
	Short: "Append a rule",
	Args:  cobra.ExactArgs(2),
	RunE:  runRuleAdd,
}

var ruleRemoveCmd = &cobra.Command{
	Use:   "remove <index>",
	Short: "Remove a rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runRuleRemove,
}

var ruleEnableCmd = &cobra.Command{
	Use:   "enable <index>",
	Short: "Enable a rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRuleEnabled(cmd, args[0], true)
	},
}

var ruleDisableCmd = &cobra.Command{
	Use:   "disable <index>",
	Short: "Disable a rule without removing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRuleEnabled(cmd, args[0], false)
	},
}

func init() {
	rootCmd.AddCommand(ruleCmd)
	ruleCmd.AddCommand(ruleListCmd, ruleAddCmd, ruleRemoveCmd, ruleEnableCmd, ruleDisableCmd)

	ruleAddCmd.Flags().BoolVar(&ruleDisabled, "disabled", false, "add the rule disabled")
}

func runRuleList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(cfg.Rules) == 0 {
		fmt.Fprintln(out, "No rules configured")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tOLD DOMAIN\tNEW DOMAIN\tENABLED")
	for i, r := range cfg.Rules {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, r.OldDomain, r.NewDomain, yesNo(r.Enabled))
	}
	return tw.Flush()
}

func runRuleAdd(cmd *cobra.Command, args []string) error {
	oldDomain := strings.TrimSpace(args[0])
	newDomain := strings.TrimSpace(args[1])
	if oldDomain == "" || newDomain == "" {
		return fmt.Errorf("old and new domain must not be empty")
	}

	file, err := store.Read()
	if err != nil {
		return err
	}

	file.Rules = append(file.Rules, rules.Rule{
		OldDomain: oldDomain,
		NewDomain: newDomain,
		Enabled:   !ruleDisabled,
	})
	if err := store.Save(file); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added rule %d: %s → %s\n", len(file.Rules), oldDomain, newDomain)
	return nil
}

func runRuleRemove(cmd *cobra.Command, args []string) error {
	file, err := store.Read()
	if err != nil {
		return err
	}

	idx, err := parseRuleIndex(args[0], len(file.Rules))
	if err != nil {
		return err
	}

	removed := file.Rules[idx]
	file.Rules = append(file.Rules[:idx], file.Rules[idx+1:]...)
	if err := store.Save(file); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed rule %d: %s → %s\n", idx+1, removed.OldDomain, removed.NewDomain)
	return nil
}

// setRuleEnabled edits the file as stored. The env overlaid cfg is never
// saved so overrides stay out of the file.
func setRuleEnabled(cmd *cobra.Command, arg string, enabled bool) error {
	file, err := store.Read()
	if err != nil {
		return err
	}

	idx, err := parseRuleIndex(arg, len(file.Rules))
	if err != nil {
		return err
	}

	file.Rules[idx].Enabled = enabled
	if err := store.Save(file); err != nil {
		return err
	}

	state := "Disabled"
	if enabled {
		state = "Enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s rule %d: %s\n", state, idx+1, file.Rules[idx].OldDomain)
	return nil
}

// parseRuleIndex converts a 1-based CLI index into a slice index
func parseRuleIndex(arg string, count int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("invalid rule index %q", arg)
	}
	if count == 0 {
		return 0, fmt.Errorf("no rules configured")
	}
	if n < 1 || n > count {
		return 0, fmt.Errorf("rule index %d out of range (1-%d)", n, count)
	}
	return n - 1, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
