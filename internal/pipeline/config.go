package pipeline

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/rxslot-cli/internal/analysis"
)

// DefaultColumn is the prescription-content column ("處方內容").
const DefaultColumn = "處方內容"

// DefaultDataPath is read when no file is uploaded or given.
const DefaultDataPath = "模擬處方資料.csv"

// Range describes a threshold control: bounds, step and default.
type Range struct {
	Min, Max, Step, Default float64
}

var (
	// SupportRange bounds the minimum support control.
	SupportRange = Range{Min: 0.01, Max: 0.5, Step: 0.01, Default: 0.1}
	// ConfidenceRange bounds the minimum confidence control.
	ConfidenceRange = Range{Min: 0.1, Max: 1.0, Step: 0.05, Default: 0.5}
)

const rangeEps = 1e-9

// Contains reports whether v lies within the range bounds.
func (r Range) Contains(v float64) bool {
	return !math.IsNaN(v) && v >= r.Min-rangeEps && v <= r.Max+rangeEps
}

// Snap clamps v into the range and rounds it to the nearest step.
func (r Range) Snap(v float64) float64 {
	if math.IsNaN(v) {
		return r.Default
	}
	steps := math.Round((v - r.Min) / r.Step)
	v = r.Min + steps*r.Step
	v = math.Max(r.Min, math.Min(r.Max, v))
	// keep two decimals so repeated stepping does not drift
	return math.Round(v*100) / 100
}

// Inc moves v one step up, staying in range.
func (r Range) Inc(v float64) float64 { return r.Snap(v + r.Step) }

// Dec moves v one step down, staying in range.
func (r Range) Dec(v float64) float64 { return r.Snap(v - r.Step) }

// Source is where the prescription table comes from. Data, when set,
// takes precedence over Path.
type Source struct {
	Path string
	Name string
	Data []byte
}

// DisplayName is the name shown in reports.
func (s Source) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Path
}

// Config carries everything a run needs, including UI state.
type Config struct {
	Source        Source
	Column        string
	MinSupport    float64
	MinConfidence float64
	Table         analysis.Options
	PreviewRows   int
	TopRules      int
	TopItems      int
	Suggestions   int
}

// DefaultConfig mirrors the dashboard defaults.
func DefaultConfig() Config {
	opt := analysis.DefaultOptions()
	// support is a fraction of every transaction; only the preview is cut
	opt.MaxRows = 0
	return Config{
		Source:        Source{Path: DefaultDataPath},
		Column:        DefaultColumn,
		MinSupport:    SupportRange.Default,
		MinConfidence: ConfidenceRange.Default,
		Table:         opt,
		PreviewRows:   opt.PreviewRows,
		TopRules:      10,
		TopItems:      10,
		Suggestions:   5,
	}
}

// Validate checks both thresholds against their ranges.
func (c Config) Validate() error {
	if !SupportRange.Contains(c.MinSupport) {
		return fmt.Errorf("%w: min support %v not in [%v, %v]", ErrThresholdRange, c.MinSupport, SupportRange.Min, SupportRange.Max)
	}
	if !ConfidenceRange.Contains(c.MinConfidence) {
		return fmt.Errorf("%w: min confidence %v not in [%v, %v]", ErrThresholdRange, c.MinConfidence, ConfidenceRange.Min, ConfidenceRange.Max)
	}
	return nil
}
