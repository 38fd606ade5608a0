// Package pipeline wires table loading, transaction encoding, mining and
// result shaping into one run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/rxslot-cli/internal/analysis"
	"github.com/KaramelBytes/rxslot-cli/internal/basket"
	"github.com/KaramelBytes/rxslot-cli/internal/mining"
	"github.com/KaramelBytes/rxslot-cli/internal/parser"
)

// Suggestion pairs two item groups that should be stored near each other.
type Suggestion struct {
	Antecedents []string `json:"antecedents"`
	Consequents []string `json:"consequents"`
}

// Result is everything the presentation layer shows for one run.
type Result struct {
	RunID         string             `json:"run_id"`
	Source        string             `json:"source"`
	Column        string             `json:"column"`
	MinSupport    float64            `json:"min_support"`
	MinConfidence float64            `json:"min_confidence"`
	Header        []string           `json:"header"`
	Preview       [][]string         `json:"preview"`
	TotalRows     int                `json:"total_rows"`
	Transactions  int                `json:"transactions"`
	Items         int                `json:"items"`
	Itemsets      []mining.Itemset   `json:"itemsets"`
	Rules         []mining.Rule      `json:"rules"`
	TopItems      []basket.ItemCount `json:"top_items"`
	Suggestions   []Suggestion       `json:"suggestions"`
	TopRules      int                `json:"-"`
	Warnings      []string           `json:"warnings,omitempty"`
	Elapsed       time.Duration      `json:"elapsed_ns"`
}

// Empty reports whether no rule met the thresholds.
func (r *Result) Empty() bool { return len(r.Rules) == 0 }

// HeadRules returns the rules shown in the rule table.
func (r *Result) HeadRules() []mining.Rule {
	if r.TopRules > 0 && r.TopRules < len(r.Rules) {
		return r.Rules[:r.TopRules]
	}
	return r.Rules
}

// Load runs the input stage: read the uploaded bytes or the file at Path.
func Load(cfg Config) (*analysis.Table, error) {
	src := cfg.Source
	if src.Data != nil {
		name := src.Name
		if name == "" {
			name = "upload.csv"
		}
		return parser.Parse(name, src.Data, cfg.Table)
	}
	if src.Path == "" {
		return nil, fmt.Errorf("%w: no upload and no default path", ErrInputNotFound)
	}
	t, err := parser.ParseFile(src.Path, cfg.Table)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, src.Path)
		}
		return nil, err
	}
	return t, nil
}

// Transactions extracts and splits the prescription column.
func Transactions(t *analysis.Table, column string) ([]basket.Transaction, error) {
	cells, ok := t.Column(column)
	if !ok {
		return nil, &ColumnError{Column: column, Available: t.Header}
	}
	return basket.ParseTransactions(cells), nil
}

// Run executes the full pipeline once. Thresholds are validated first;
// an empty rule set is not an error.
func Run(ctx context.Context, cfg Config, miner mining.Miner) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	runID := uuid.NewString()
	log := slog.With("run_id", runID)

	tbl, err := Load(cfg)
	if err != nil {
		return nil, err
	}
	log.Debug("table loaded", "source", cfg.Source.DisplayName(), "rows", tbl.Len(), "columns", len(tbl.Header))

	txns, err := Transactions(tbl, cfg.Column)
	if err != nil {
		return nil, err
	}
	matrix := basket.Encode(txns)
	log.Debug("transactions encoded", "transactions", matrix.Len(), "items", len(matrix.Columns))

	itemsets, err := miner.Mine(ctx, matrix, cfg.MinSupport)
	if err != nil {
		return nil, fmt.Errorf("mine itemsets: %w", err)
	}
	rules, err := miner.Rules(ctx, itemsets, cfg.MinConfidence)
	if err != nil {
		return nil, fmt.Errorf("generate rules: %w", err)
	}
	mining.SortByLift(rules)
	// empty results keep the same JSON shape as full ones
	if itemsets == nil {
		itemsets = []mining.Itemset{}
	}
	if rules == nil {
		rules = []mining.Rule{}
	}
	preview := tbl.Head(cfg.PreviewRows)
	if preview == nil {
		preview = [][]string{}
	}

	res := &Result{
		RunID:         runID,
		Source:        tbl.Name,
		Column:        cfg.Column,
		MinSupport:    cfg.MinSupport,
		MinConfidence: cfg.MinConfidence,
		Header:        tbl.Header,
		Preview:       preview,
		TotalRows:     tbl.Total,
		Transactions:  matrix.Len(),
		Items:         len(matrix.Columns),
		Itemsets:      itemsets,
		Rules:         rules,
		TopItems:      matrix.TopItems(cfg.TopItems),
		Suggestions:   suggest(rules, cfg.Suggestions),
		TopRules:      cfg.TopRules,
		Warnings:      tbl.Warnings,
		Elapsed:       time.Since(start),
	}
	log.Info("pipeline run",
		"transactions", res.Transactions,
		"itemsets", len(itemsets),
		"rules", len(rules),
		"min_support", cfg.MinSupport,
		"min_confidence", cfg.MinConfidence,
		"elapsed", res.Elapsed)
	return res, nil
}

func suggest(rules []mining.Rule, n int) []Suggestion {
	if n <= 0 || n > len(rules) {
		n = len(rules)
	}
	out := make([]Suggestion, 0, n)
	for _, r := range rules[:n] {
		out = append(out, Suggestion{Antecedents: r.Antecedents, Consequents: r.Consequents})
	}
	return out
}
