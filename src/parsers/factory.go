package parsers

import (
	"fmt"
	"path/filepath"
	"strings"
)

// GetParser selects a parser from the uploaded filename's extension.
func GetParser(filename string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return NewCSVParser(), nil
	case ".xlsx", ".xls":
		return NewXLSXParser(), nil
	default:
		return nil, fmt.Errorf("unsupported file type %q: expected .csv, .xlsx or .xls", filename)
	}
}
