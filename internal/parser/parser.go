package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Table is a header plus raw string rows read from a single flat source.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Options tunes how a source is read.
type Options struct {
	// Delimiter for CSV. If 0, picked from the file extension.
	Delimiter rune
	// SheetName selects an XLSX sheet; empty means the first sheet.
	SheetName string
}

// Source reads one tabular file format.
type Source interface {
	CanRead(filename string) bool
	Read(path string, opt Options) (*Table, error)
}

var registry []Source

// Register adds a source implementation to the registry.
func Register(s Source) {
	registry = append(registry, s)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported dataset format")

// ErrNotFound is returned when the dataset file does not exist.
var ErrNotFound = errors.New("dataset file not found")

// ReadFile selects a source based on filename and returns the parsed table.
func ReadFile(path string, opt Options) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat dataset: %w", err)
	}
	for _, s := range registry {
		if s.CanRead(path) {
			return s.Read(path, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

func init() {
	Register(csvSource{})
	Register(xlsxSource{})
}

func normalizeHeader(h []string) []string {
	out := make([]string, len(h))
	for i, v := range h {
		v = strings.TrimSpace(strings.TrimPrefix(v, "\ufeff"))
		out[i] = v
	}
	return out
}
