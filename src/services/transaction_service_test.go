package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raymond0208/CashCatalyst/src/database"
	"github.com/raymond0208/CashCatalyst/src/models"
	"github.com/raymond0208/CashCatalyst/src/processors"
	"github.com/raymond0208/CashCatalyst/src/taxonomy"
)

func newTestTransactionService(t *testing.T) TransactionService {
	t.Helper()
	database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { database.DB.Close() })

	tax := taxonomy.New(taxonomy.InterestPaidOperating)
	return NewTransactionService(
		processors.NewTotalsProcessor(tax),
		taxonomy.NewClassifier(tax),
		cache.New(time.Minute, time.Minute),
	)
}

func TestTransactionService_CreateNormalizesType(t *testing.T) {
	svc := newTestTransactionService(t)

	created, err := svc.Create(1, models.Transaction{
		Date:        "2025-01-15",
		Description: "Client invoice",
		Amount:      1000,
		Type:        "payment from customer",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, taxonomy.LabelCashCustomer, created.Type)
}

func TestTransactionService_CreateRejectsBadDate(t *testing.T) {
	svc := newTestTransactionService(t)

	_, err := svc.Create(1, models.Transaction{Date: "15/01/2025", Amount: 10})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestTransactionService_BalanceSummary(t *testing.T) {
	svc := newTestTransactionService(t)

	require.NoError(t, svc.SetInitialBalance(1, 500, false))
	_, err := svc.Create(1, models.Transaction{Date: "2025-01-01", Description: "sale", Amount: 1000, Type: "Cash-customer"})
	require.NoError(t, err)
	_, err = svc.Create(1, models.Transaction{Date: "2025-01-02", Description: "equipment", Amount: -200, Type: "Buy-property-equipments"})
	require.NoError(t, err)

	summary, err := svc.BalanceSummary(1)
	require.NoError(t, err)
	assert.Equal(t, 500.0, summary.InitialBalance)
	assert.Equal(t, 1000.0, summary.Totals.TotalCFO)
	assert.Equal(t, -200.0, summary.Totals.TotalCFI)
	assert.Equal(t, 0.0, summary.Totals.TotalCFF)
	assert.Equal(t, 1300.0, summary.Totals.Balance)
}

func TestTransactionService_BalanceSummaryScopedByUser(t *testing.T) {
	svc := newTestTransactionService(t)

	_, err := svc.Create(1, models.Transaction{Date: "2025-01-01", Description: "sale", Amount: 100, Type: "Cash-customer"})
	require.NoError(t, err)
	_, err = svc.Create(2, models.Transaction{Date: "2025-01-01", Description: "sale", Amount: 999, Type: "Cash-customer"})
	require.NoError(t, err)

	summary, err := svc.BalanceSummary(1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, summary.Totals.Balance)
}

func TestTransactionService_InitialBalanceLazyCreate(t *testing.T) {
	svc := newTestTransactionService(t)

	balance, err := svc.InitialBalance(7)
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance)

	// Overwrites, never accumulates.
	require.NoError(t, svc.SetInitialBalance(7, 100, false))
	require.NoError(t, svc.SetInitialBalance(7, 250, false))
	balance, err = svc.InitialBalance(7)
	require.NoError(t, err)
	assert.Equal(t, 250.0, balance)
}

func TestTransactionService_SetInitialBalanceClearsTransactions(t *testing.T) {
	svc := newTestTransactionService(t)

	_, err := svc.Create(1, models.Transaction{Date: "2025-01-01", Description: "old", Amount: 50, Type: "Cash-customer"})
	require.NoError(t, err)

	require.NoError(t, svc.SetInitialBalance(1, 1000, true))

	txs, err := svc.ListAll(1)
	require.NoError(t, err)
	assert.Empty(t, txs)

	summary, err := svc.BalanceSummary(1)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, summary.Totals.Balance)
}

func TestTransactionService_UpdateAndDeleteScoped(t *testing.T) {
	svc := newTestTransactionService(t)

	created, err := svc.Create(1, models.Transaction{Date: "2025-01-01", Description: "sale", Amount: 100, Type: "Cash-customer"})
	require.NoError(t, err)

	// Another user cannot touch the row.
	_, err = svc.Update(2, created.ID, models.Transaction{Date: "2025-01-02", Description: "x", Amount: 1})
	assert.ErrorIs(t, err, ErrTransactionNotFound)
	assert.ErrorIs(t, svc.Delete(2, created.ID), ErrTransactionNotFound)

	updated, err := svc.Update(1, created.ID, models.Transaction{Date: "2025-01-03", Description: "sale adj", Amount: 150, Type: "Cash-customer"})
	require.NoError(t, err)
	assert.Equal(t, 150.0, updated.Amount)

	require.NoError(t, svc.Delete(1, created.ID))
	txs, err := svc.ListAll(1)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestTransactionService_ListOrderAndPagination(t *testing.T) {
	svc := newTestTransactionService(t)

	dates := []string{"2025-01-01", "2025-03-01", "2025-02-01"}
	for _, d := range dates {
		_, err := svc.Create(1, models.Transaction{Date: d, Description: "tx", Amount: 10, Type: "Cash-customer"})
		require.NoError(t, err)
	}

	page, err := svc.List(1, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "2025-03-01", page[0].Date)
	assert.Equal(t, "2025-02-01", page[1].Date)

	all, err := svc.ListAll(1)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2025-01-01", all[0].Date)
}

func TestTransactionService_BulkCreateSkipsBadRows(t *testing.T) {
	svc := newTestTransactionService(t)

	inserted, err := svc.BulkCreate(1, []models.Transaction{
		{Date: "2025-01-01", Description: "ok", Amount: 10, Type: "Cash-customer"},
		{Date: "not-a-date", Description: "bad", Amount: 20},
		{Date: "2025-01-02", Description: "ok too", Amount: 30, Type: "Borrowings"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
}

func TestTransactionService_BalanceAsOf(t *testing.T) {
	svc := newTestTransactionService(t)

	_, err := svc.Create(1, models.Transaction{Date: "2025-01-10", Description: "early", Amount: 100, Type: "Cash-customer"})
	require.NoError(t, err)
	_, err = svc.Create(1, models.Transaction{Date: "2025-02-10", Description: "late", Amount: 900, Type: "Cash-customer"})
	require.NoError(t, err)

	summary, err := svc.BalanceAsOf(1, "2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, 100.0, summary.Totals.Balance)
}

func TestTransactionService_MonthlyBalances(t *testing.T) {
	svc := newTestTransactionService(t)

	require.NoError(t, svc.SetInitialBalance(1, 100, false))
	_, err := svc.Create(1, models.Transaction{Date: "2025-01-15", Description: "jan", Amount: 50, Type: "Cash-customer"})
	require.NoError(t, err)
	_, err = svc.Create(1, models.Transaction{Date: "2025-02-15", Description: "feb", Amount: -30, Type: "Salary-suppliers"})
	require.NoError(t, err)

	monthly, err := svc.MonthlyBalances(1)
	require.NoError(t, err)
	require.Len(t, monthly, 2)
	assert.Equal(t, "2025-01-31", monthly[0].Date)
	assert.Equal(t, 150.0, monthly[0].Balance)
	assert.Equal(t, "2025-02-28", monthly[1].Date)
	assert.Equal(t, 120.0, monthly[1].Balance)
}
