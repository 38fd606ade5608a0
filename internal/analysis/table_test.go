package analysis

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var csvRows = []string{
	"\ufeff處方編號,處方內容,科別",
	`1,"普拿疼, 止咳糖漿",內科`,
	`2,"普拿疼, 止咳糖漿, 抗生素",內科`,
	`3,普拿疼,`,
	`4,,家醫科`,
}

func TestLoadCSVAndMarkdown(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "rx.csv")
	if err := os.WriteFile(p, []byte(strings.Join(csvRows, "\n")), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	tbl, err := LoadCSV(p, DefaultOptions())
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if tbl.Name != "rx.csv" {
		t.Fatalf("name = %q", tbl.Name)
	}
	if tbl.Header[0] != "處方編號" {
		t.Fatalf("BOM not stripped from header: %q", tbl.Header[0])
	}
	if tbl.Len() != 4 || tbl.Total != 4 {
		t.Fatalf("rows = %d total = %d, want 4/4", tbl.Len(), tbl.Total)
	}
	col, ok := tbl.Column("處方內容")
	if !ok {
		t.Fatalf("expected column to be found")
	}
	if col[1] != "普拿疼, 止咳糖漿, 抗生素" || col[3] != "" {
		t.Fatalf("unexpected column values: %#v", col)
	}
	// short row is padded to header width
	if len(tbl.Rows[2]) != 3 {
		t.Fatalf("row not padded: %#v", tbl.Rows[2])
	}

	md := tbl.Markdown(2)
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: rx.csv",
		"Rows: 4",
		"Columns: 3",
		"- 處方內容: non-null 3, missing 25.0%, unique 3",
		"[HEAD ROWS]",
		"| 處方編號 | 處方內容 | 科別 |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "家醫科") {
		t.Fatalf("preview should stop after 2 rows:\n%s", md)
	}
}

func TestReadCSVMaxRowsAndDelimiter(t *testing.T) {
	data := "id\titems\n1\ta,b\n2\tb\n3\tc\n"
	opt := DefaultOptions()
	opt.MaxRows = 2
	tbl, err := ReadCSV(strings.NewReader(data), "rx.tsv", opt)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.Len() != 2 || tbl.Total != 3 {
		t.Fatalf("rows = %d total = %d, want 2/3", tbl.Len(), tbl.Total)
	}
	if tbl.Rows[0][1] != "a,b" {
		t.Fatalf("tab delimiter not sniffed: %#v", tbl.Rows[0])
	}
	if len(tbl.Warnings) != 1 || tbl.Warnings[0] != "loaded only 2/3 rows due to MaxRows" {
		t.Fatalf("warnings = %#v", tbl.Warnings)
	}
	if !strings.Contains(tbl.Markdown(5), "Rows: ~3 (loaded 2)") {
		t.Fatalf("markdown missing truncated row note")
	}
}

func TestReadCSVEmpty(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(""), "empty.csv", DefaultOptions())
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.Len() != 0 || len(tbl.Header) != 0 {
		t.Fatalf("expected empty table, got %#v", tbl)
	}
	if _, ok := tbl.Column("處方內容"); ok {
		t.Fatalf("empty table should not expose columns")
	}
}

func TestColumnIndexCaseInsensitiveFallback(t *testing.T) {
	tbl := &Table{Header: []string{"Items", "items"}}
	if got := tbl.ColumnIndex("items"); got != 1 {
		t.Fatalf("exact match should win, got %d", got)
	}
	if got := tbl.ColumnIndex(" ITEMS "); got != 0 {
		t.Fatalf("case-insensitive fallback = %d, want 0", got)
	}
	if got := tbl.ColumnIndex("missing"); got != -1 {
		t.Fatalf("missing column = %d, want -1", got)
	}
}

func TestTruncateRuneSafe(t *testing.T) {
	if got := Truncate("普拿疼止咳糖漿抗生素", 6); got != "普拿疼..." {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("abc", 6); got != "abc" {
		t.Fatalf("Truncate short = %q", got)
	}
}

func TestLoadXLSXSheetSelection(t *testing.T) {
	p := writeXLSXFixture(t)

	first, err := LoadXLSX(p, DefaultOptions())
	if err != nil {
		t.Fatalf("LoadXLSX first sheet: %v", err)
	}
	if first.Len() != 2 {
		t.Fatalf("first sheet rows = %d, want 2", first.Len())
	}
	col, ok := first.Column("處方內容")
	if !ok || col[0] != "普拿疼, 胃藥" || col[1] != "胃藥" {
		t.Fatalf("first sheet column = %#v (ok=%v)", col, ok)
	}

	opt := DefaultOptions()
	opt.Sheet = "archive"
	second, err := LoadXLSX(p, opt)
	if err != nil {
		t.Fatalf("LoadXLSX by name: %v", err)
	}
	if second.Len() != 1 || second.Rows[0][0] != "眼藥水" {
		t.Fatalf("second sheet rows = %#v", second.Rows)
	}

	opt = DefaultOptions()
	opt.SheetIndex = 2
	byIndex, err := LoadXLSX(p, opt)
	if err != nil {
		t.Fatalf("LoadXLSX by index: %v", err)
	}
	if byIndex.Len() != 1 {
		t.Fatalf("sheet index 2 rows = %d, want 1", byIndex.Len())
	}

	opt = DefaultOptions()
	opt.Sheet = "nope"
	if _, err := LoadXLSX(p, opt); err == nil || !strings.Contains(err.Error(), "Rx, archive") {
		t.Fatalf("expected sheet-not-found error listing sheets, got %v", err)
	}
}

func TestNormalizeRelPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
	}
	for _, tt := range tests {
		if got := normalizeRelPath(tt.input); got != tt.expected {
			t.Errorf("normalizeRelPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestColIndexFromRef(t *testing.T) {
	cases := map[string]int{"A1": 0, "C12": 2, "Z3": 25, "AA7": 26, "ab2": 27}
	for ref, want := range cases {
		if got := colIndexFromRef(ref); got != want {
			t.Errorf("colIndexFromRef(%q) = %d, want %d", ref, got, want)
		}
	}
}

func writeXLSXFixture(t *testing.T) string {
	t.Helper()
	parts := map[string]string{
		"xl/workbook.xml": `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Rx" sheetId="1" r:id="rId1"/><sheet name="archive" sheetId="2" r:id="rId2"/></sheets>
</workbook>`,
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="worksheet" Target="worksheets/sheet1.xml"/>
<Relationship Id="rId2" Type="worksheet" Target="/xl/worksheets/sheet2.xml"/>
</Relationships>`,
		"xl/sharedStrings.xml": `<?xml version="1.0" encoding="UTF-8"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<si><t>處方編號</t></si><si><t>處方內容</t></si><si><t>普拿疼, 胃藥</t></si><si><t>胃藥</t></si>
</sst>`,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>
<row r="2"><c r="A2"><v>1</v></c><c r="B2" t="s"><v>2</v></c></row>
<row r="3"/>
<row r="4"><c r="A4"><v>2</v></c><c r="B4" t="s"><v>3</v></c></row>
</sheetData></worksheet>`,
		"xl/worksheets/sheet2.xml": `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="inlineStr"><is><t>處方內容</t></is></c></row>
<row r="2"><c r="A2" t="inlineStr"><is><t>眼藥水</t></is></c></row>
</sheetData></worksheet>`,
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	p := filepath.Join(t.TempDir(), "rx.xlsx")
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write xlsx fixture: %v", err)
	}
	return p
}
