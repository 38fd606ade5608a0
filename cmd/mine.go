package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/rxslot-cli/internal/pipeline"
	"github.com/KaramelBytes/rxslot-cli/internal/report"
	"github.com/KaramelBytes/rxslot-cli/internal/tui"
	"github.com/KaramelBytes/rxslot-cli/internal/utils"
)

var (
	mineFlags    runFlags
	mineFormat   string
	mineOutput   string
	mineWidth    int
	mineProgress bool
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine association rules and print the dashboard as a report",
	Example: `  rxslot mine --sample
  rxslot mine -d rx.csv -s 0.05 -k 0.6 --format json -o rules.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pc, miner, msg, err := mineFlags.resolve(cmd)
		if err != nil {
			return err
		}
		if mineProgress {
			p := newLevelProgress(cmd.ErrOrStderr())
			miner.Progress = p.update
			defer p.finish()
		}

		res, err := pipeline.Run(cmd.Context(), pc, miner)
		if err != nil {
			return err
		}
		out, err := renderResult(res, msg, mineFormat, mineWidth)
		if err != nil {
			return err
		}

		if mineOutput != "" {
			if err := utils.SafeWriteFile(mineOutput, []byte(out)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d rules to %s\n", len(res.Rules), mineOutput)
			return nil
		}
		_, err = io.WriteString(cmd.OutOrStdout(), out)
		return err
	},
}

// renderResult formats a run for output.
func renderResult(res *pipeline.Result, msg report.Messages, format string, width int) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "markdown", "md", "":
		return report.Markdown(res, msg), nil
	case "json":
		b, err := report.JSON(res)
		if err != nil {
			return "", err
		}
		return string(b) + "\n", nil
	case "text", "txt":
		return tui.Render(res, msg, tui.DefaultTheme, width), nil
	}
	return "", fmt.Errorf("unsupported --format: %s (use markdown|json|text)", format)
}

// levelProgress shows Apriori levels on a spinner; the number of levels
// is not known up front.
type levelProgress struct {
	bar *progressbar.ProgressBar
}

func newLevelProgress(w io.Writer) *levelProgress {
	return &levelProgress{bar: progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("mining itemsets"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)}
}

func (p *levelProgress) update(level, candidates, frequent int) {
	p.bar.Describe(fmt.Sprintf("level %d: %d candidates, %d frequent", level, candidates, frequent))
	_ = p.bar.Add(1)
}

func (p *levelProgress) finish() {
	_ = p.bar.Finish()
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineFlags.register(mineCmd.Flags())
	mineCmd.Flags().StringVarP(&mineFormat, "format", "f", "markdown", "output format: markdown|json|text")
	mineCmd.Flags().StringVarP(&mineOutput, "output", "o", "", "write the report to this path instead of stdout")
	mineCmd.Flags().IntVar(&mineWidth, "width", 100, "text format: line width")
	mineCmd.Flags().BoolVar(&mineProgress, "progress", false, "show mining progress on stderr")
}
