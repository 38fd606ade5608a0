// Package mining finds frequent itemsets in a presence matrix and derives
// association rules from them.
package mining

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/rxslot-cli/internal/basket"
)

// Miner mines frequent itemsets and generates rules from them.
type Miner interface {
	Mine(ctx context.Context, m *basket.Matrix, minSupport float64) ([]Itemset, error)
	Rules(ctx context.Context, itemsets []Itemset, minConfidence float64) ([]Rule, error)
}

var (
	// ErrInvalidSupport is returned for a support threshold outside (0, 1].
	ErrInvalidSupport = errors.New("min support must be in (0, 1]")
	// ErrInvalidConfidence is returned for a confidence threshold outside [0, 1].
	ErrInvalidConfidence = errors.New("min confidence must be in [0, 1]")
	// ErrMissingSubset means the itemsets passed to Rules are not closed
	// under subsets, so a rule's antecedent or consequent support is unknown.
	ErrMissingSubset = errors.New("itemset support missing for rule side")
)

// Itemset is a set of items (in matrix column order) with its support.
type Itemset struct {
	Items   []string `json:"items"`
	Count   int      `json:"count"`
	Support float64  `json:"support"`
}

// Key identifies the itemset regardless of slice identity.
func (s Itemset) Key() string { return key(s.Items) }

func key(items []string) string { return strings.Join(items, "\x1f") }

// Rule is an association rule antecedents → consequents.
type Rule struct {
	Antecedents       []string `json:"antecedents"`
	Consequents       []string `json:"consequents"`
	AntecedentSupport float64  `json:"antecedent_support"`
	ConsequentSupport float64  `json:"consequent_support"`
	Support           float64  `json:"support"`
	Confidence        float64  `json:"confidence"`
	Lift              float64  `json:"lift"`
	Leverage          float64  `json:"leverage"`
	Conviction        Metric   `json:"conviction"`
}

// Metric is a float that may be infinite; it encodes non-finite values as
// JSON null.
type Metric float64

// MarshalJSON implements json.Marshaler.
func (m Metric) MarshalJSON() ([]byte, error) {
	f := float64(m)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// SortByLift orders rules by descending lift. Ties fall back to confidence,
// support, then item names so the order is deterministic.
func SortByLift(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if a.Lift != b.Lift {
			return a.Lift > b.Lift
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Support != b.Support {
			return a.Support > b.Support
		}
		if ka, kb := key(a.Antecedents), key(b.Antecedents); ka != kb {
			return ka < kb
		}
		return key(a.Consequents) < key(b.Consequents)
	})
}
