package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/rxslot-cli/internal/sample"
	"github.com/KaramelBytes/rxslot-cli/internal/utils"
)

var sampleForce bool

var sampleCmd = &cobra.Command{
	Use:   "sample [path]",
	Short: "Write the bundled sample prescription table to disk",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := sample.Name
		if len(args) == 1 {
			path = args[0]
		}
		if utils.FileExists(path) && !sampleForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := utils.SafeWriteFile(path, sample.Bytes()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote sample prescriptions to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleCmd.Flags().BoolVar(&sampleForce, "force", false, "overwrite an existing file")
}
