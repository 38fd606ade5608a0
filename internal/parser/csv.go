package parser

import (
	"bytes"
	"strings"

	"github.com/KaramelBytes/rxslot-cli/internal/analysis"
)

type csvParser struct{}

func (csvParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (csvParser) ParseFile(path string, opt analysis.Options) (*analysis.Table, error) {
	return analysis.LoadCSV(path, opt)
}

func (csvParser) Parse(name string, content []byte, opt analysis.Options) (*analysis.Table, error) {
	return analysis.ReadCSV(bytes.NewReader(content), name, opt)
}
