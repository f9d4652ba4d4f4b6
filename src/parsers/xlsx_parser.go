package parsers

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/raymond0208/CashCatalyst/src/models"
)

type xlsxParser struct{}

// NewXLSXParser creates a parser for Excel uploads. Only the first sheet is
// read; rows follow the same header contract as CSV.
func NewXLSXParser() Parser {
	return &xlsxParser{}
}

func (p *xlsxParser) Parse(file io.Reader) ([]models.RawTransaction, error) {
	wb, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	allRows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(allRows) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	columns, err := mapColumns(allRows[0])
	if err != nil {
		return nil, err
	}

	var rows []models.RawTransaction
	for _, record := range allRows[1:] {
		row := rowFromRecord(record, columns)
		if row.Date == "" && row.Amount == "" && row.Description == "" && row.Type == "" {
			continue // trailing blank rows are common in spreadsheets
		}
		rows = append(rows, row)
	}
	return rows, nil
}
