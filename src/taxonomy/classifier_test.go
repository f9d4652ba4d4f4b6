package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyKeywordMatching(t *testing.T) {
	c := NewClassifier(New(InterestPaidOperating))

	tests := []struct {
		name string
		in   string
		want Label
	}{
		{"customer receipt", "Cash receipt from customer", LabelCashCustomer},
		{"salary run", "Monthly SALARY run", LabelSalarySuppliers},
		{"interest", "interest on overdraft", LabelInterestPaid},
		{"tax", "corporation tax", LabelIncomeTax},
		{"equipment purchase", "purchase of equipment", LabelBuyProperty},
		{"loan drawdown", "loan drawdown", LabelBorrowings},
		{"dividend", "pay dividend", LabelPayDividends},
		{"share issue", "issue of ordinary shares", LabelIssueShares},
		{"spreadsheet junk", "misc column value", LabelOtherCFO},
		{"empty input", "", LabelOtherCFO},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Classify(tc.in))
		})
	}
}

func TestClassifyAmbiguousInputFirstEntryWins(t *testing.T) {
	c := NewClassifier(New(InterestPaidOperating))

	// "sell investment" matches both Sell-property-equipments ("sell") and
	// Sell-investment ("sell", "investment"). Declaration order decides, so
	// the earlier Sell-property-equipments entry wins. Order-dependent on
	// purpose; changing entry order changes stored data.
	assert.Equal(t, LabelSellProperty, c.Classify("sell investment"))

	// "payment" hits Salary-suppliers before Pay-dividends sees "pay".
	assert.Equal(t, LabelSalarySuppliers, c.Classify("dividend payment"))
}

func TestClassifyIsTotal(t *testing.T) {
	tax := New(InterestPaidOperating)
	c := NewClassifier(tax)

	inputs := []string{"", " ", "1234", "!!@#", "completely unrelated text", "über-category"}
	for _, in := range inputs {
		label := c.Classify(in)
		assert.NotEqual(t, CategoryUnknown, tax.CategoryOf(label),
			"Classify(%q) returned a label outside the taxonomy", in)
	}
}

func TestCategoryOfFreeText(t *testing.T) {
	c := NewClassifier(New(InterestPaidOperating))
	assert.Equal(t, CFO, c.CategoryOf("customer cash"))
	assert.Equal(t, CFF, c.CategoryOf("repay bank borrowing"))
	assert.Equal(t, CFO, c.CategoryOf("anything else at all"))
}
