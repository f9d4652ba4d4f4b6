package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/raymond0208/CashCatalyst/src/models"
)

type csvParser struct{}

// NewCSVParser creates a parser for comma-separated uploads.
func NewCSVParser() Parser {
	return &csvParser{}
}

func (p *csvParser) Parse(file io.Reader) ([]models.RawTransaction, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // ragged rows are handled per-row below
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header row: %w", err)
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []models.RawTransaction
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV record: %w", err)
		}
		rows = append(rows, rowFromRecord(record, columns))
	}
	return rows, nil
}

// columnIndexes holds the positions of the recognized columns; -1 when the
// column is absent.
type columnIndexes struct {
	date, amount, description, txType int
}

// mapColumns resolves header names (case-insensitive) to column positions.
// date and amount are required; description and type are optional.
func mapColumns(header []string) (columnIndexes, error) {
	cols := columnIndexes{date: -1, amount: -1, description: -1, txType: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			cols.date = i
		case "amount":
			cols.amount = i
		case "description":
			cols.description = i
		case "type":
			cols.txType = i
		}
	}
	if cols.date == -1 {
		return cols, fmt.Errorf("'date' column not found in the uploaded file")
	}
	if cols.amount == -1 {
		return cols, fmt.Errorf("'amount' column not found in the uploaded file")
	}
	return cols, nil
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func rowFromRecord(record []string, cols columnIndexes) models.RawTransaction {
	return models.RawTransaction{
		Date:        cell(record, cols.date),
		Amount:      cell(record, cols.amount),
		Description: cell(record, cols.description),
		Type:        cell(record, cols.txType),
	}
}
