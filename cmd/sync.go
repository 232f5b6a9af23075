// File: cmd/sync.go
package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/secwarden/rulelink-cli/internal/config"
	"github.com/secwarden/rulelink-cli/internal/network"
	"github.com/secwarden/rulelink-cli/internal/observability"
	"github.com/secwarden/rulelink-cli/internal/scw"
	"github.com/secwarden/rulelink-cli/internal/syncer"
	"github.com/secwarden/rulelink-cli/internal/teamserver"
)

// newSyncCmd creates and configures the `sync` command.
func newSyncCmd() *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Rebuilds every rule's training references from the SCW catalog",
		Long: `Fetches all Assess policy rules for the configured organization, looks up
CWE-matched Secure Code Warrior content for each, and overwrites the rule's
reference list with a video link and per-language exercise deep links.

Rules that resolve to no content at all get their references CLEARED.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlag("sync.continue_on_error", cmd.Flags().Lookup("continue-on-error"))
		},
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
				if !confirm(cmd, "This will OVERWRITE the reference list of every rule it visits, including clearing rules with no matched content. Continue? [y/N]: ") {
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

			summary, err := runner.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("\nSync complete: %d rules visited, %d updated, %d cleared, %d without content.\n",
				summary.Total, summary.Updated, summary.Cleared, summary.Missing)
			return nil
		},
	}

	syncCmd.Flags().String("rule", "", "Sync a single rule by name instead of the whole catalog")
	syncCmd.Flags().Bool("dry-run", false, "Compute and log references without writing anything back")
	syncCmd.Flags().BoolP("yes", "y", false, "Skip the destructive-overwrite confirmation prompt")
	syncCmd.Flags().Bool("continue-on-error", true, "Keep going after a per-rule failure (overrides config)")

	return syncCmd
}

// buildRunner wires the HTTP clients and the syncer from a validated config.
func buildRunner(cfg *config.Config, logger *zap.Logger, opts syncer.Options) (*syncer.Runner, error) {
	netCfg := network.NewDefaultClientConfig()
	netCfg.RequestTimeout = cfg.Network.Timeout
	netCfg.Logger = logger
	httpc := network.NewClient(netCfg)

	platform, err := teamserver.New(teamserver.Config{
		BaseURL:    cfg.Platform.BaseURL,
		OrgID:      cfg.Platform.OrgID,
		APIKey:     cfg.Platform.APIKey,
		AuthHeader: cfg.Platform.AuthHeader,
	}, httpc, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize platform client: %w", err)
	}

	training, err := scw.New(scw.Config{
		BaseURL:       cfg.Training.BaseURL,
		IntegrationID: cfg.Training.IntegrationID,
		RateLimit:     cfg.Training.RateLimit,
	}, httpc, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize training client: %w", err)
	}

	return syncer.New(platform, training, logger, opts), nil
}

// confirm prompts on the command's input stream and accepts y/yes.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
