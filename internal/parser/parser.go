package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/rxslot-cli/internal/analysis"
)

// Parser turns raw file content into a Table.
type Parser interface {
	CanParse(filename string) bool
	Parse(name string, content []byte, opt analysis.Options) (*analysis.Table, error)
}

// FileParser is implemented by parsers that read straight from disk
// instead of loading the whole file into memory first.
type FileParser interface {
	ParseFile(path string, opt analysis.Options) (*analysis.Table, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ParseFile selects a parser based on filename and returns the loaded table.
func ParseFile(path string, opt analysis.Options) (*analysis.Table, error) {
	p, err := lookup(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if fp, ok := p.(FileParser); ok {
		return fp.ParseFile(path, opt)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return p.Parse(filepath.Base(path), data, opt)
}

// Parse selects a parser for an in-memory file such as an upload.
func Parse(name string, content []byte, opt analysis.Options) (*analysis.Table, error) {
	p, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return p.Parse(name, content, opt)
}

// lookup finds the parser for name. Names without an extension are read
// as CSV.
func lookup(name string) (Parser, error) {
	for _, p := range registry {
		if p.CanParse(name) {
			return p, nil
		}
	}
	if filepath.Ext(name) == "" {
		return csvParser{}, nil
	}
	return nil, fmt.Errorf("%w: %s (supported: %s)", ErrUnsupported, strings.ToLower(filepath.Ext(name)), strings.Join(Supported(), ", "))
}

// Supported lists the extensions accepted by the registered parsers.
func Supported() []string {
	return []string{".csv", ".tsv", ".txt", ".xlsx"}
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported table format")
