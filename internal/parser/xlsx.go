package parser

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/rxslot-cli/internal/analysis"
)

type xlsxParser struct{}

func (xlsxParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxParser) ParseFile(path string, opt analysis.Options) (*analysis.Table, error) {
	t, err := analysis.LoadXLSX(path, opt)
	if err != nil {
		return nil, err
	}
	nameSheet(t, opt)
	return t, nil
}

func (xlsxParser) Parse(name string, content []byte, opt analysis.Options) (*analysis.Table, error) {
	t, err := analysis.ReadXLSX(content, name, opt)
	if err != nil {
		return nil, err
	}
	nameSheet(t, opt)
	return t, nil
}

// nameSheet appends an explicitly selected sheet to the table name.
func nameSheet(t *analysis.Table, opt analysis.Options) {
	if opt.Sheet != "" {
		t.Name = fmt.Sprintf("%s (sheet: %s)", t.Name, opt.Sheet)
	}
}
