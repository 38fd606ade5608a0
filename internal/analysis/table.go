package analysis

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Options controls how tabular input is read.
type Options struct {
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
	// PreviewRows determines how many head rows the preview shows.
	PreviewRows int
	// Delimiter for CSV. If 0, picked from the file name (',' or '\t').
	Delimiter rune
	// Sheet selects an XLSX sheet by name. Empty falls back to SheetIndex.
	Sheet string
	// SheetIndex is 1-based (Sheet1 == 1); <= 0 means the first sheet.
	SheetIndex int
}

// DefaultOptions returns reasonable defaults for prescription tables.
func DefaultOptions() Options {
	return Options{
		MaxRows:     100000,
		PreviewRows: 10,
	}
}

// Table is a header plus string rows, padded to the header width.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
	// Total counts every data row seen, including rows past MaxRows.
	Total    int
	Warnings []string
}

// ColumnSummary describes one column of a loaded table.
type ColumnSummary struct {
	Name    string
	NonNull int
	Missing int
	Unique  int
}

// LoadCSV opens a CSV/TSV file and reads it into a Table.
func LoadCSV(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, filepath.Base(path), opt)
}

// ReadCSV reads delimited text from r. name is used for display and
// delimiter sniffing only.
func ReadCSV(r io.Reader, name string, opt Options) (*Table, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(name)
	}
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && string(bom) == "\ufeff" {
		_, _ = br.Discard(3)
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Table{Name: name}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	t := newTable(name, header)
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", t.Total+1, err)
		}
		t.add(rec, maxRows)
	}
	t.finish()
	return t, nil
}

func newTable(name string, header []string) *Table {
	h := make([]string, len(header))
	for i, col := range header {
		col = strings.TrimPrefix(col, "\ufeff")
		h[i] = strings.TrimSpace(col)
	}
	return &Table{Name: name, Header: h}
}

func (t *Table) add(rec []string, maxRows int) {
	t.Total++
	if len(t.Rows) >= maxRows {
		return
	}
	row := make([]string, len(t.Header))
	copy(row, rec)
	t.Rows = append(t.Rows, row)
}

func (t *Table) finish() {
	if len(t.Rows) < t.Total {
		t.Warnings = append(t.Warnings, fmt.Sprintf("loaded only %d/%d rows due to MaxRows", len(t.Rows), t.Total))
	}
}

// Len returns the number of loaded rows.
func (t *Table) Len() int { return len(t.Rows) }

// ColumnIndex finds a column by name. Exact matches win over
// case-insensitive ones; -1 means not found.
func (t *Table) ColumnIndex(name string) int {
	name = strings.TrimSpace(name)
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	for i, h := range t.Header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]string, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// Head returns up to n leading rows.
func (t *Table) Head(n int) [][]string {
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}

// Summarize counts filled, empty and distinct cells per column.
func (t *Table) Summarize() []ColumnSummary {
	out := make([]ColumnSummary, len(t.Header))
	for j, h := range t.Header {
		seen := map[string]struct{}{}
		s := ColumnSummary{Name: h}
		for _, row := range t.Rows {
			v := strings.TrimSpace(row[j])
			if v == "" {
				s.Missing++
				continue
			}
			s.NonNull++
			seen[v] = struct{}{}
		}
		s.Unique = len(seen)
		out[j] = s
	}
	return out
}

// Markdown renders a compact preview with per-column counts and head rows.
func (t *Table) Markdown(previewRows int) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if t.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", t.Name))
	}
	if t.Total > len(t.Rows) {
		b.WriteString(fmt.Sprintf("Rows: ~%d (loaded %d)\n", t.Total, len(t.Rows)))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", len(t.Rows)))
	}
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(t.Header)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range t.Summarize() {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: non-null %d, missing %.1f%%, unique %d\n", safeVal(c.Name), c.NonNull, missPct, c.Unique))
	}

	head := t.Head(previewRows)
	if len(head) > 0 {
		b.WriteString("\n[HEAD ROWS]\n")
		b.WriteString(MarkdownTable(t.Header, head))
	}
	if len(t.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range t.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// MarkdownTable renders rows as a pipe table. Cells are flattened to one
// line and cut at 80 runes.
func MarkdownTable(header []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("| ")
	for i, h := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeVal(h))
	}
	b.WriteString(" |\n|")
	for range header {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString("| ")
		for i := range header {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) {
				val = Truncate(row[i], 80)
			}
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	if n <= 3 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func sniffDelimiter(name string) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	// Default to comma; filename heuristic only, the reader may be a one-shot upload.
	return ','
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
