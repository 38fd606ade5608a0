package mining

import (
	"context"
	"fmt"
	"math"
)

// Rules generates every rule X → Y with X ∪ Y a frequent itemset, X and Y
// non-empty and disjoint, and confidence ≥ minConfidence. The result is
// sorted by descending lift.
func (a *Apriori) Rules(ctx context.Context, itemsets []Itemset, minConfidence float64) ([]Rule, error) {
	return GenerateRules(ctx, itemsets, minConfidence)
}

// GenerateRules is the rule generation step on its own, usable with
// itemsets from any miner as long as they are closed under subsets.
func GenerateRules(ctx context.Context, itemsets []Itemset, minConfidence float64) ([]Rule, error) {
	if minConfidence < 0 || minConfidence > 1 || math.IsNaN(minConfidence) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidConfidence, minConfidence)
	}
	bySet := make(map[string]Itemset, len(itemsets))
	for _, s := range itemsets {
		bySet[s.Key()] = s
	}
	var rules []Rule
	for _, s := range itemsets {
		if len(s.Items) < 2 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		k := len(s.Items)
		// every non-empty proper subset as antecedent
		for mask := 1; mask < (1<<k)-1; mask++ {
			ante := make([]string, 0, k)
			cons := make([]string, 0, k)
			for i, item := range s.Items {
				if mask&(1<<i) != 0 {
					ante = append(ante, item)
				} else {
					cons = append(cons, item)
				}
			}
			as, ok := bySet[key(ante)]
			if !ok {
				return nil, fmt.Errorf("%w: %v", ErrMissingSubset, ante)
			}
			cs, ok := bySet[key(cons)]
			if !ok {
				return nil, fmt.Errorf("%w: %v", ErrMissingSubset, cons)
			}
			r := score(ante, cons, as, cs, s)
			if r.Confidence >= minConfidence {
				rules = append(rules, r)
			}
		}
	}
	SortByLift(rules)
	return rules, nil
}

func score(ante, cons []string, as, cs, joint Itemset) Rule {
	conf := joint.Support / as.Support
	if joint.Count > 0 && as.Count > 0 {
		// counts keep the threshold comparison exact
		conf = float64(joint.Count) / float64(as.Count)
	}
	conviction := math.Inf(1)
	if conf < 1 {
		conviction = (1 - cs.Support) / (1 - conf)
	}
	return Rule{
		Antecedents:       ante,
		Consequents:       cons,
		AntecedentSupport: as.Support,
		ConsequentSupport: cs.Support,
		Support:           joint.Support,
		Confidence:        conf,
		Lift:              conf / cs.Support,
		Leverage:          joint.Support - as.Support*cs.Support,
		Conviction:        Metric(conviction),
	}
}
