package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/rxslot-cli/internal/mining"
	"github.com/KaramelBytes/rxslot-cli/internal/pipeline"
	"github.com/KaramelBytes/rxslot-cli/internal/report"
	"github.com/KaramelBytes/rxslot-cli/internal/sample"
)

// runFlags are the input and threshold flags shared by every command that
// runs the pipeline. They override config values only when set.
type runFlags struct {
	data          string
	column        string
	delimiter     string
	sheet         string
	locale        string
	minSupport    float64
	minConfidence float64
	maxLen        int
	maxRows       int
	useSample     bool
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.data, "data", "d", "", "prescription table (CSV/TSV/XLSX); default from config data_path")
	fs.StringVarP(&f.column, "column", "c", "", "column holding comma-separated drug names (default 處方內容)")
	fs.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (auto if omitted)")
	fs.StringVar(&f.sheet, "sheet", "", "XLSX: sheet name (default first sheet)")
	fs.StringVar(&f.locale, "locale", "", "output language: en | zh-TW")
	fs.Float64VarP(&f.minSupport, "min-support", "s", pipeline.SupportRange.Default, "minimum support (0.01-0.5)")
	fs.Float64VarP(&f.minConfidence, "min-confidence", "k", pipeline.ConfidenceRange.Default, "minimum confidence (0.1-1.0)")
	fs.IntVar(&f.maxLen, "max-len", 0, "maximum itemset size (0 = unlimited)")
	fs.IntVar(&f.maxRows, "max-rows", 0, "load and mine only the first N rows (0 = all rows)")
	fs.BoolVar(&f.useSample, "sample", false, "use the bundled sample prescriptions instead of a file")
}

// resolve merges config and changed flags into a run configuration.
func (f *runFlags) resolve(cmd *cobra.Command) (pipeline.Config, *mining.Apriori, report.Messages, error) {
	g := *currentConfig()
	fl := cmd.Flags()
	if fl.Changed("data") {
		g.DataPath = f.data
	}
	if fl.Changed("column") {
		g.Column = f.column
	}
	if fl.Changed("delimiter") {
		g.Delimiter = f.delimiter
	}
	if fl.Changed("locale") {
		g.Locale = f.locale
	}
	if fl.Changed("min-support") {
		g.MinSupport = f.minSupport
	}
	if fl.Changed("min-confidence") {
		g.MinConfidence = f.minConfidence
	}
	if fl.Changed("max-len") {
		g.MaxLen = f.maxLen
	}

	pc, err := g.Pipeline()
	if err != nil {
		return pc, nil, report.Messages{}, err
	}
	if err := pc.Validate(); err != nil {
		return pc, nil, report.Messages{}, err
	}
	if f.sheet != "" {
		pc.Table.Sheet = f.sheet
	}
	if f.maxRows > 0 {
		pc.Table.MaxRows = f.maxRows
	}
	if f.useSample {
		pc.Source = pipeline.Source{Name: sample.Name, Data: sample.Bytes()}
	}
	return pc, &mining.Apriori{MaxLen: g.MaxLen}, report.For(g.Locale), nil
}
