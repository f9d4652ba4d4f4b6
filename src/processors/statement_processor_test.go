package processors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raymond0208/CashCatalyst/src/models"
)

func TestParseStatementScenario(t *testing.T) {
	raw := "CFO: Cash from customers: 1000\n" +
		"CFI: Purchase of equipment: -2000\n" +
		"Total CFO: 1000\n" +
		"Ending Cash Balance: -1000"

	report, err := ParseStatement(raw)
	require.NoError(t, err)

	assert.Equal(t, []models.StatementLineItem{
		{Category: "CFO", Subcategory: "Cash from customers", Amount: 1000},
		{Category: "CFI", Subcategory: "Purchase of equipment", Amount: -2000},
	}, report.LineItems)

	assert.Equal(t, 1000.0, report.Totals["Total CFO"])
	assert.Equal(t, -1000.0, report.Totals[TotalEndingCashBalance])

	// Explicit ending balance wins over recomputation.
	assert.Equal(t, -1000.0, EndingBalance(report, 500))
}

func TestParseStatementCurrencyFormatting(t *testing.T) {
	report, err := ParseStatement("CFO: Receipts: $1,234.56")
	require.NoError(t, err)
	assert.Equal(t, 1234.56, report.LineItems[0].Amount)
}

func TestParseStatementMalformedLinesRecovered(t *testing.T) {
	raw := "Cash Flow Statement for Q1\n" +
		"CFO: Cash from customers: 1000\n" +
		"CFI: Note: extra colon: -500\n" +
		"CFF: Loan drawdown: 300\n" +
		"CFO: Bad amount: lots\n"

	report, err := ParseStatement(raw)
	require.NoError(t, err)

	// The three-colon line is dropped; the well-formed line after it still
	// parses. The heading and the bad amount are accounted for in Skipped.
	require.Len(t, report.LineItems, 3)
	assert.Equal(t, "Loan drawdown", report.LineItems[1].Subcategory)

	// A bad amount degrades to 0.0 but the line item is kept.
	assert.Equal(t, "Bad amount", report.LineItems[2].Subcategory)
	assert.Equal(t, 0.0, report.LineItems[2].Amount)

	reasons := map[SkipReason]int{}
	for _, s := range report.Skipped {
		reasons[s.Reason]++
	}
	assert.Equal(t, 1, reasons[SkipNoColon])
	assert.Equal(t, 1, reasons[SkipTooManyColons])
	assert.Equal(t, 1, reasons[SkipBadAmount])
}

func TestParseStatementEmptyRecovery(t *testing.T) {
	_, err := ParseStatement("The model apologizes and returns prose instead.\nNo structure here.")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyStatement))
	// Raw text travels with the error for diagnostics.
	assert.Contains(t, err.Error(), "No structure here")
}

func TestEndingBalanceRecomputedWhenAbsent(t *testing.T) {
	report, err := ParseStatement("CFO: Receipts: 100\nOverall Net Cash Flow: 250")
	require.NoError(t, err)
	assert.Equal(t, 1250.0, EndingBalance(report, 1000))

	// Neither total present: initial balance plus zero.
	report2, err := ParseStatement("CFO: Receipts: 100")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, EndingBalance(report2, 1000))
}
