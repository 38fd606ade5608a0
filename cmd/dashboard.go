package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/rxslot-cli/internal/tui"
)

var dashboardFlags runFlags

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive terminal dashboard",
	Long: `Open the interactive terminal dashboard. Adjust minimum support with
←/→ and minimum confidence with -/+; rules are re-mined on every change.
Tab switches between the data preview, the rule table and the placement
suggestions.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pc, miner, msg, err := dashboardFlags.resolve(cmd)
		if err != nil {
			return err
		}
		return tui.Run(cmd.Context(), pc, miner, msg)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardFlags.register(dashboardCmd.Flags())
}
