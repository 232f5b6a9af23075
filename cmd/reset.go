// File: cmd/reset.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/secwarden/rulelink-cli/internal/config"
	"github.com/secwarden/rulelink-cli/internal/observability"
	"github.com/secwarden/rulelink-cli/internal/syncer"
)

// newResetCmd creates and configures the `reset` command.
func newResetCmd() *cobra.Command {
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Clears the training references from every rule",
		Long: `Overwrites the reference list of every Assess policy rule with an empty
list, removing all links a previous sync wrote. Manually added references are
removed too; the platform stores only one reference list per rule.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			dryRun, _ := cmd.Flags().GetBool("dry-run")
			yes, _ := cmd.Flags().GetBool("yes")
			ruleName, _ := cmd.Flags().GetString("rule")

			if !dryRun && !yes {
				if !confirm(cmd, "This will ERASE the reference list of every rule it visits. Continue? [y/N]: ") {
					return fmt.Errorf("aborted by user")
				}
			}

			runner, err := buildRunner(cfg, logger, syncer.Options{
				ContinueOnError: cfg.Sync.ContinueOnError,
				DryRun:          dryRun,
				UsageAnalytics:  cfg.Sync.UsageAnalytics,
				Rule:            ruleName,
			})
			if err != nil {
				return err
			}

			summary, err := runner.Reset(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("\nReset complete: %d rules visited, %d cleared.\n", summary.Total, summary.Cleared)
			return nil
		},
	}

	resetCmd.Flags().String("rule", "", "Reset a single rule by name instead of the whole catalog")
	resetCmd.Flags().Bool("dry-run", false, "Log what would be cleared without writing anything back")
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the destructive-overwrite confirmation prompt")

	return resetCmd
}
