package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/rxslot-cli/internal/basket"
	"github.com/KaramelBytes/rxslot-cli/internal/pipeline"
	"github.com/KaramelBytes/rxslot-cli/internal/utils"
)

var (
	previewFlags  runFlags
	previewRows   int
	previewOutput string
)

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Summarize a prescription table and show its head rows",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pc, _, _, err := previewFlags.resolve(cmd)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			pc.Source = pipeline.Source{Path: args[0]}
		}
		tbl, err := pipeline.Load(pc)
		if err != nil {
			return err
		}
		rows := pc.PreviewRows
		if cmd.Flags().Changed("rows") {
			rows = previewRows
		}

		var b strings.Builder
		b.WriteString(tbl.Markdown(rows))
		txns, err := pipeline.Transactions(tbl, pc.Column)
		var colErr *pipeline.ColumnError
		switch {
		case errors.As(err, &colErr):
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %v\n", err)
		case err != nil:
			return err
		default:
			m := basket.Encode(txns)
			b.WriteString("\n[PRESCRIPTIONS]\n")
			fmt.Fprintf(&b, "Column: %s\n", pc.Column)
			fmt.Fprintf(&b, "Transactions: %d\n", m.Len())
			fmt.Fprintf(&b, "Distinct items: %d\n", len(m.Columns))
			top := m.TopItems(pc.TopItems)
			if len(top) > 0 {
				parts := make([]string, len(top))
				for i, it := range top {
					parts[i] = fmt.Sprintf("%s (%d)", it.Item, it.Count)
				}
				fmt.Fprintf(&b, "Top items: %s\n", strings.Join(parts, ", "))
			}
		}

		if previewOutput != "" {
			if err := utils.SafeWriteFile(previewOutput, []byte(b.String())); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote preview to %s\n", previewOutput)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), b.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewFlags.register(previewCmd.Flags())
	previewCmd.Flags().IntVarP(&previewRows, "rows", "n", 10, "number of head rows to show")
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "optional path to write the preview (Markdown)")
}
