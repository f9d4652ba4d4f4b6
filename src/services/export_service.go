package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/raymond0208/CashCatalyst/src/security/validation"
)

var exportHeader = []string{"Date", "Description", "Amount", "Type"}

type exportServiceImpl struct {
	transactions TransactionService
}

func NewExportService(transactions TransactionService) ExportService {
	return &exportServiceImpl{transactions: transactions}
}

// ExportCSV streams the user's transactions in chronological order. Text
// cells are sanitized against spreadsheet formula injection since CSV files
// routinely end up opened in Excel.
func (s *exportServiceImpl) ExportCSV(w io.Writer, userID int64) error {
	txs, err := s.transactions.ListAll(userID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("error writing export header: %w", err)
	}
	for _, tx := range txs {
		record := []string{
			tx.Date,
			validation.SanitizeForFormulaInjection(tx.Description),
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
			string(tx.Type),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("error writing export row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

const exportSheet = "Transactions"

func (s *exportServiceImpl) ExportExcel(userID int64) (*excelize.File, error) {
	txs, err := s.transactions.ListAll(userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("error naming export sheet: %w", err)
	}

	for col, name := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, name); err != nil {
			return nil, fmt.Errorf("error writing export header: %w", err)
		}
	}

	for i, tx := range txs {
		rowCells := []interface{}{
			tx.Date,
			validation.SanitizeForFormulaInjection(tx.Description),
			tx.Amount,
			string(tx.Type),
		}
		for col, value := range rowCells {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, fmt.Errorf("error writing export row %d: %w", i+1, err)
			}
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "D", 20); err != nil {
		return nil, fmt.Errorf("error sizing export columns: %w", err)
	}
	return f, nil
}
