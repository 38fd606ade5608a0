// Package basket turns prescription rows into transactions and a presence
// matrix suitable for frequent-itemset mining.
package basket

import (
	"sort"
	"strings"
)

// Transaction is one row's item names in input order.
type Transaction []string

// separators split a cell into items. The full-width comma is common in
// hand-typed Chinese data.
var separators = []string{",", "，"}

// Split parses one delimited cell into trimmed item names. Empty fragments
// are dropped.
func Split(cell string) Transaction {
	for _, sep := range separators[1:] {
		cell = strings.ReplaceAll(cell, sep, separators[0])
	}
	parts := strings.Split(cell, separators[0])
	out := make(Transaction, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ParseTransactions splits every non-blank row. Blank rows are skipped, so
// the result may be shorter than rows.
func ParseTransactions(rows []string) []Transaction {
	out := make([]Transaction, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row) == "" {
			continue
		}
		tx := Split(row)
		if len(tx) == 0 {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// Matrix is a boolean transaction × item table. Columns are the distinct
// item names in lexicographic order.
type Matrix struct {
	Columns []string
	Rows    [][]bool
	index   map[string]int
}

// Encode one-hot encodes transactions. Repeated items within a transaction
// count once.
func Encode(txns []Transaction) *Matrix {
	seen := map[string]struct{}{}
	for _, tx := range txns {
		for _, item := range tx {
			seen[item] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for item := range seen {
		cols = append(cols, item)
	}
	sort.Strings(cols)
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c] = i
	}
	rows := make([][]bool, len(txns))
	for i, tx := range txns {
		vec := make([]bool, len(cols))
		for _, item := range tx {
			vec[index[item]] = true
		}
		rows[i] = vec
	}
	return &Matrix{Columns: cols, Rows: rows, index: index}
}

// Len returns the number of transactions.
func (m *Matrix) Len() int { return len(m.Rows) }

// Index returns the column of item, or -1.
func (m *Matrix) Index(item string) int {
	if m.index == nil {
		m.index = make(map[string]int, len(m.Columns))
		for i, c := range m.Columns {
			m.index[c] = i
		}
	}
	if i, ok := m.index[item]; ok {
		return i
	}
	return -1
}

// Has reports whether transaction row contains the item in column col.
func (m *Matrix) Has(row, col int) bool { return m.Rows[row][col] }

// Counts returns per-column occurrence counts.
func (m *Matrix) Counts() []int {
	counts := make([]int, len(m.Columns))
	for _, row := range m.Rows {
		for j, ok := range row {
			if ok {
				counts[j]++
			}
		}
	}
	return counts
}

// ItemCount pairs an item with the number of transactions containing it.
type ItemCount struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// TopItems returns the n most frequent items, most frequent first; ties
// break by name. n <= 0 returns all items.
func (m *Matrix) TopItems(n int) []ItemCount {
	counts := m.Counts()
	out := make([]ItemCount, len(m.Columns))
	for j, c := range m.Columns {
		out[j] = ItemCount{Item: c, Count: counts[j]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Item < out[j].Item
		}
		return out[i].Count > out[j].Count
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
