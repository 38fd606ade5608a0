package basket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Transaction
	}{
		{"trims spaces", " A,  B ,C ", Transaction{"A", "B", "C"}},
		{"drops empty fragments", "A,,B,", Transaction{"A", "B"}},
		{"full-width comma", "普拿疼，胃藥, 眼藥水", Transaction{"普拿疼", "胃藥", "眼藥水"}},
		{"single item", "普拿疼", Transaction{"普拿疼"}},
		{"blank", "   ", Transaction{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.in))
		})
	}
}

func TestParseTransactionsSkipsBlankRows(t *testing.T) {
	txns := ParseTransactions([]string{"A, B", "", "  ", ",", "A"})
	require.Len(t, txns, 2)
	assert.Equal(t, Transaction{"A", "B"}, txns[0])
	assert.Equal(t, Transaction{"A"}, txns[1])
}

func TestEncode(t *testing.T) {
	txns := ParseTransactions([]string{"B, A", "A, B, C", "A, A"})
	m := Encode(txns)

	assert.Equal(t, []string{"A", "B", "C"}, m.Columns)
	require.Equal(t, 3, m.Len())
	assert.Equal(t, []bool{true, true, false}, m.Rows[0])
	assert.Equal(t, []bool{true, true, true}, m.Rows[1])
	assert.Equal(t, []bool{true, false, false}, m.Rows[2])
	assert.Equal(t, []int{3, 2, 1}, m.Counts())
	assert.Equal(t, 1, m.Index("B"))
	assert.Equal(t, -1, m.Index("Z"))
	assert.True(t, m.Has(1, 2))
}

func TestEncodeColumnsAreExactlyDistinctItems(t *testing.T) {
	txns := ParseTransactions([]string{"x, y", "y, z", "z"})
	m := Encode(txns)
	seen := map[string]bool{}
	for _, tx := range txns {
		for _, item := range tx {
			seen[item] = true
		}
	}
	require.Len(t, m.Columns, len(seen))
	for _, c := range m.Columns {
		assert.True(t, seen[c], "unexpected column %q", c)
	}
}

func TestEncodeEmpty(t *testing.T) {
	m := Encode(nil)
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Columns)
	assert.Empty(t, m.TopItems(10))
}

func TestTopItems(t *testing.T) {
	m := Encode(ParseTransactions([]string{"A, B", "B, C", "B, C", "D"}))
	top := m.TopItems(3)
	assert.Equal(t, []ItemCount{{"B", 3}, {"C", 2}, {"A", 1}}, top)
	assert.Len(t, m.TopItems(0), 4)
}

func TestIndexOnLiteralMatrix(t *testing.T) {
	m := &Matrix{Columns: []string{"A", "B"}, Rows: [][]bool{{true, false}}}
	assert.Equal(t, 1, m.Index("B"))
}
