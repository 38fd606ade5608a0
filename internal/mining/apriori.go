package mining

import (
	"context"
	"fmt"
	"math"
	"math/bits"

	"github.com/KaramelBytes/rxslot-cli/internal/basket"
)

// Apriori is a level-wise frequent itemset miner over column bitsets.
type Apriori struct {
	// MaxLen caps itemset size; 0 means unlimited.
	MaxLen int
	// Progress, if set, is called after each level with the itemset size,
	// the number of candidates counted and how many were frequent.
	Progress func(level, candidates, frequent int)
}

var _ Miner = (*Apriori)(nil)

type candidate struct {
	cols  []int
	bits  []uint64
	count int
}

// Mine returns every itemset whose support is at least minSupport, ordered
// by size and then by column order.
func (a *Apriori) Mine(ctx context.Context, m *basket.Matrix, minSupport float64) ([]Itemset, error) {
	if minSupport <= 0 || minSupport > 1 || math.IsNaN(minSupport) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidSupport, minSupport)
	}
	n := m.Len()
	if n == 0 || len(m.Columns) == 0 {
		return nil, nil
	}
	frequent := func(count int) bool {
		return float64(count)/float64(n) >= minSupport
	}

	words := (n + 63) / 64
	colBits := make([][]uint64, len(m.Columns))
	for j := range colBits {
		colBits[j] = make([]uint64, words)
	}
	for i, row := range m.Rows {
		for j, ok := range row {
			if ok {
				colBits[j][i/64] |= 1 << (uint(i) % 64)
			}
		}
	}

	var out []Itemset
	emit := func(level []candidate) {
		for _, c := range level {
			items := make([]string, len(c.cols))
			for i, col := range c.cols {
				items[i] = m.Columns[col]
			}
			out = append(out, Itemset{Items: items, Count: c.count, Support: float64(c.count) / float64(n)})
		}
	}

	var level []candidate
	for j, b := range colBits {
		if c := popcount(b); frequent(c) {
			level = append(level, candidate{cols: []int{j}, bits: b, count: c})
		}
	}
	emit(level)
	a.report(1, len(m.Columns), len(level))

	for k := 2; len(level) > 1 && (a.MaxLen <= 0 || k <= a.MaxLen); k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prev := make(map[string]struct{}, len(level))
		for _, c := range level {
			prev[colsKey(c.cols)] = struct{}{}
		}
		var next []candidate
		counted := 0
		for i := 0; i < len(level); i++ {
			for j := i + 1; j < len(level); j++ {
				// level is sorted, so candidates sharing a prefix are contiguous
				if !samePrefix(level[i].cols, level[j].cols) {
					break
				}
				cols := make([]int, k)
				copy(cols, level[i].cols)
				cols[k-1] = level[j].cols[k-2]
				if !subsetsFrequent(cols, prev) {
					continue
				}
				counted++
				b := and(level[i].bits, level[j].bits)
				if c := popcount(b); frequent(c) {
					next = append(next, candidate{cols: cols, bits: b, count: c})
				}
			}
		}
		emit(next)
		a.report(k, counted, len(next))
		level = next
	}
	return out, nil
}

func (a *Apriori) report(level, candidates, frequent int) {
	if a.Progress != nil {
		a.Progress(level, candidates, frequent)
	}
}

func popcount(b []uint64) int {
	n := 0
	for _, w := range b {
		n += bits.OnesCount64(w)
	}
	return n
}

func and(x, y []uint64) []uint64 {
	out := make([]uint64, len(x))
	for i := range x {
		out[i] = x[i] & y[i]
	}
	return out
}

func samePrefix(a, b []int) bool {
	for i := 0; i < len(a)-1; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// subsetsFrequent checks the (k-1)-subsets that were not used to build cols.
func subsetsFrequent(cols []int, prev map[string]struct{}) bool {
	if len(cols) <= 2 {
		return true
	}
	sub := make([]int, 0, len(cols)-1)
	for skip := 0; skip < len(cols)-2; skip++ {
		sub = sub[:0]
		for i, c := range cols {
			if i != skip {
				sub = append(sub, c)
			}
		}
		if _, ok := prev[colsKey(sub)]; !ok {
			return false
		}
	}
	return true
}

func colsKey(cols []int) string {
	b := make([]byte, 0, len(cols)*4)
	for _, c := range cols {
		b = fmt.Appendf(b, "%d,", c)
	}
	return string(b)
}
