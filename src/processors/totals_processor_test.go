package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raymond0208/CashCatalyst/src/models"
	"github.com/raymond0208/CashCatalyst/src/taxonomy"
)

func newTotals() TotalsProcessor {
	return NewTotalsProcessor(taxonomy.New(taxonomy.InterestPaidOperating))
}

func TestTotalsScenario(t *testing.T) {
	p := newTotals()
	txs := []models.Transaction{
		{ID: 1, Date: "2025-01-10", Type: taxonomy.LabelCashCustomer, Amount: 1000},
		{ID: 2, Date: "2025-01-15", Type: taxonomy.LabelBuyInvest, Amount: -200},
		{ID: 3, Date: "2025-01-20", Type: taxonomy.LabelBorrowings, Amount: 500},
	}

	cfo, cfi, cff := p.Totals(txs)
	assert.Equal(t, 1000.0, cfo)
	assert.Equal(t, -200.0, cfi)
	assert.Equal(t, 500.0, cff)

	totals := p.Balance(0, txs)
	assert.Equal(t, 1300.0, totals.Balance)
}

func TestTotalsUnknownTypeExcluded(t *testing.T) {
	p := newTotals()
	txs := []models.Transaction{
		{ID: 1, Date: "2025-02-01", Type: taxonomy.LabelCashCustomer, Amount: 100},
		{ID: 2, Date: "2025-02-02", Type: "Mystery-label", Amount: 9999},
		{ID: 3, Date: "2025-02-03", Type: "Mystery-label", Amount: -9999},
	}

	cfo, cfi, cff := p.Totals(txs)
	// Unknown labels contribute nothing, whatever their sign. Silent
	// exclusion is the contract, not a bug.
	assert.Equal(t, 100.0, cfo)
	assert.Equal(t, 0.0, cfi)
	assert.Equal(t, 0.0, cff)
}

func TestTotalsOrderIndependent(t *testing.T) {
	p := newTotals()
	a := []models.Transaction{
		{ID: 1, Date: "2025-03-01", Type: taxonomy.LabelCashCustomer, Amount: 0.1},
		{ID: 2, Date: "2025-03-02", Type: taxonomy.LabelCashCustomer, Amount: 0.2},
		{ID: 3, Date: "2025-03-03", Type: taxonomy.LabelCashCustomer, Amount: 0.3},
	}
	b := []models.Transaction{a[2], a[0], a[1]}

	cfoA, _, _ := p.Totals(a)
	cfoB, _, _ := p.Totals(b)
	assert.Equal(t, cfoA, cfoB)
	assert.Equal(t, 0.6, cfoA)
}

func TestTotalsSignPreservedPerBucket(t *testing.T) {
	p := newTotals()
	txs := []models.Transaction{
		{ID: 1, Date: "2025-04-01", Type: taxonomy.LabelSalarySuppliers, Amount: -400},
		{ID: 2, Date: "2025-04-02", Type: taxonomy.LabelSellInvest, Amount: 250},
		{ID: 3, Date: "2025-04-03", Type: taxonomy.LabelRepayBorrowings, Amount: -150},
	}
	cfo, cfi, cff := p.Totals(txs)
	assert.Equal(t, -400.0, cfo)
	assert.Equal(t, 250.0, cfi)
	assert.Equal(t, -150.0, cff)
}

func TestInterestPaidFollowsPolicy(t *testing.T) {
	txs := []models.Transaction{
		{ID: 1, Date: "2025-05-01", Type: taxonomy.LabelInterestPaid, Amount: -75},
	}

	cfo, _, cff := NewTotalsProcessor(taxonomy.New(taxonomy.InterestPaidOperating)).Totals(txs)
	assert.Equal(t, -75.0, cfo)
	assert.Equal(t, 0.0, cff)

	cfo, _, cff = NewTotalsProcessor(taxonomy.New(taxonomy.InterestPaidFinancing)).Totals(txs)
	assert.Equal(t, 0.0, cfo)
	assert.Equal(t, -75.0, cff)
}

func TestMonthlyBalances(t *testing.T) {
	p := newTotals()
	txs := []models.Transaction{
		{ID: 2, Date: "2025-01-20", Type: taxonomy.LabelCashCustomer, Amount: 50},
		{ID: 1, Date: "2025-01-05", Type: taxonomy.LabelCashCustomer, Amount: 100},
		{ID: 3, Date: "2025-03-02", Type: taxonomy.LabelSalarySuppliers, Amount: -30},
	}

	series := p.MonthlyBalances(1000, txs)
	assert.Equal(t, []models.MonthlyBalance{
		{Date: "2025-01-31", Balance: 1150},
		{Date: "2025-03-31", Balance: 1120},
	}, series)

	assert.Empty(t, p.MonthlyBalances(1000, nil))
}
