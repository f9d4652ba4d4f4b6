package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raymond0208/CashCatalyst/src/taxonomy"
)

func newTestUploadService() UploadService {
	return NewUploadService(taxonomy.NewClassifier(taxonomy.New(taxonomy.InterestPaidOperating)))
}

func TestUploadPreview(t *testing.T) {
	input := "Date,Description,Amount,Type\n" +
		"2025-01-15,Client invoice,\"$1,000.00\",Cash-customer\n" +
		"2025-01-20,Bank loan received,500,\n" +
		"bad-date,Broken row,100,\n" +
		"2025-01-25,Broken amount,abc,\n"

	preview, err := newTestUploadService().Preview(strings.NewReader(input), "import.csv", 1)
	require.NoError(t, err)

	assert.NotEmpty(t, preview.BatchID)
	assert.Equal(t, 2, preview.SkippedRows)
	require.Len(t, preview.Transactions, 2)

	first := preview.Transactions[0]
	assert.Equal(t, "2025-01-15", first.Date)
	assert.Equal(t, 1000.0, first.Amount)
	assert.Equal(t, taxonomy.LabelCashCustomer, first.Type)

	// Missing type falls back to classifying the description.
	assert.Equal(t, taxonomy.LabelBorrowings, preview.Transactions[1].Type)
}

func TestUploadPreview_UnsupportedExtension(t *testing.T) {
	_, err := newTestUploadService().Preview(strings.NewReader("x"), "import.pdf", 1)
	assert.ErrorIs(t, err, ErrParsingFailed)
}

func TestUploadPreview_NoValidRows(t *testing.T) {
	input := "Date,Amount\nnope,also-nope\n"

	_, err := newTestUploadService().Preview(strings.NewReader(input), "import.csv", 1)
	assert.ErrorIs(t, err, ErrNoValidRows)
}
