package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVParser_Parse(t *testing.T) {
	input := "Date,Description,Amount,Type\n" +
		"2025-01-15,Client invoice,1000.00,Cash-customer\n" +
		"2025-01-20,Office rent,-450.50,\n"

	parser := NewCSVParser()
	rows, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2025-01-15", rows[0].Date)
	assert.Equal(t, "Client invoice", rows[0].Description)
	assert.Equal(t, "1000.00", rows[0].Amount)
	assert.Equal(t, "Cash-customer", rows[0].Type)
	assert.Empty(t, rows[1].Type)
}

func TestCSVParser_HeaderCaseInsensitive(t *testing.T) {
	input := "DATE,AMOUNT\n2025-02-01,12.34\n"

	rows, err := NewCSVParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "12.34", rows[0].Amount)
}

func TestCSVParser_MissingRequiredColumn(t *testing.T) {
	input := "Date,Description\n2025-02-01,something\n"

	_, err := NewCSVParser().Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'amount' column not found")
}

func TestCSVParser_RaggedRows(t *testing.T) {
	input := "Date,Description,Amount\n2025-03-01,short row\n"

	rows, err := NewCSVParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Amount)
}

func TestCSVParser_EmptyFile(t *testing.T) {
	_, err := NewCSVParser().Parse(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty file")
}

func TestGetParser(t *testing.T) {
	p, err := GetParser("statement.csv")
	require.NoError(t, err)
	assert.IsType(t, &csvParser{}, p)

	p, err = GetParser("statement.XLSX")
	require.NoError(t, err)
	assert.IsType(t, &xlsxParser{}, p)

	_, err = GetParser("statement.pdf")
	assert.Error(t, err)
}
