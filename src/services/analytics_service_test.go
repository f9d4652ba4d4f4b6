package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raymond0208/CashCatalyst/src/llm"
	"github.com/raymond0208/CashCatalyst/src/models"
	"github.com/raymond0208/CashCatalyst/src/processors"
)

// stubTransactionService serves canned data; only the read methods the
// analytics flow touches are implemented.
type stubTransactionService struct {
	TransactionService
	txs     []models.Transaction
	initial float64
	summary BalanceSummary
}

func (s *stubTransactionService) ListAll(userID int64) ([]models.Transaction, error) {
	return s.txs, nil
}

func (s *stubTransactionService) InitialBalance(userID int64) (float64, error) {
	return s.initial, nil
}

func (s *stubTransactionService) BalanceSummary(userID int64) (*BalanceSummary, error) {
	summary := s.summary
	return &summary, nil
}

type fakeNarrativeClient struct {
	text       string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeNarrativeClient) GenerateNarrative(ctx context.Context, prompt string, maxTokens int) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func testTransactions(n int) []models.Transaction {
	txs := make([]models.Transaction, n)
	for i := range txs {
		txs[i] = models.Transaction{
			ID:          int64(i + 1),
			UserID:      1,
			Date:        fmt.Sprintf("2025-01-%02d", i%28+1),
			Description: "tx",
			Amount:      float64(100 - 10*i),
			Type:        "Cash-customer",
		}
	}
	return txs
}

func newTestAnalyticsService(store TransactionService, narrative llm.NarrativeClient) AnalyticsService {
	return NewAnalyticsService(
		store,
		processors.NewMetricsProcessor(),
		processors.NewForecastProcessor(),
		narrative,
		cache.New(time.Minute, time.Minute),
		500,
		processors.DefaultBurnRateMonths,
		5*time.Second,
	)
}

func TestGenerateAnalysis(t *testing.T) {
	store := &stubTransactionService{
		txs:     testTransactions(5),
		initial: 1000,
		summary: BalanceSummary{
			InitialBalance: 1000,
			Totals:         models.CashflowTotals{TotalCFO: 300, Balance: 1300},
		},
	}
	narrative := &fakeNarrativeClient{text: "Cash position is stable."}
	svc := newTestAnalyticsService(store, narrative)

	result, err := svc.GenerateAnalysis(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "Cash position is stable.", result.Narrative)
	assert.Equal(t, 5, result.Patterns.DataPoints)
	assert.Len(t, result.Forecast30, 30)
	assert.Len(t, result.Forecast60, 60)
	assert.Len(t, result.Forecast90, 90)
	// Shorter windows are prefixes of the 90 day series.
	assert.Equal(t, result.Forecast90[:30], result.Forecast30)
	assert.Equal(t, result.Forecast90[:60], result.Forecast60)

	// The prompt carries the numbers the narrative must be grounded on.
	assert.Contains(t, narrative.lastPrompt, "Current balance: 1300.00")
	assert.Contains(t, narrative.lastPrompt, "Most recent transactions")
}

func TestGenerateAnalysis_CachesResult(t *testing.T) {
	store := &stubTransactionService{txs: testTransactions(3)}
	narrative := &fakeNarrativeClient{text: "fine"}
	svc := newTestAnalyticsService(store, narrative)

	_, err := svc.GenerateAnalysis(context.Background(), 1)
	require.NoError(t, err)
	_, err = svc.GenerateAnalysis(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, narrative.calls, "second call should be served from cache")
}

func TestGenerateAnalysis_NoTransactions(t *testing.T) {
	svc := newTestAnalyticsService(&stubTransactionService{}, &fakeNarrativeClient{text: "x"})

	_, err := svc.GenerateAnalysis(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoTransactions)
}

func TestGenerateAnalysis_NarrativeFailureKinds(t *testing.T) {
	store := &stubTransactionService{txs: testTransactions(3)}

	// Transient or unknown model failure.
	svc := newTestAnalyticsService(store, &fakeNarrativeClient{err: fmt.Errorf("%w: boom", llm.ErrNarrativeFailed)})
	_, err := svc.GenerateAnalysis(context.Background(), 1)
	assert.ErrorIs(t, err, llm.ErrNarrativeFailed)

	// Configuration failure stays distinguishable.
	svc = newTestAnalyticsService(store, &fakeNarrativeClient{err: llm.ErrMissingAPIKey})
	_, err = svc.GenerateAnalysis(context.Background(), 1)
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
	assert.NotErrorIs(t, err, llm.ErrNarrativeFailed)
}

func TestGenerateAnalysis_PromptTailCapped(t *testing.T) {
	store := &stubTransactionService{txs: testTransactions(promptTransactionLimit + 20)}
	narrative := &fakeNarrativeClient{text: "ok"}
	svc := newTestAnalyticsService(store, narrative)

	_, err := svc.GenerateAnalysis(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, narrative.lastPrompt,
		fmt.Sprintf("Most recent transactions (%d of %d)", promptTransactionLimit, promptTransactionLimit+20))
}

func TestGenerateCashflowStatement(t *testing.T) {
	store := &stubTransactionService{txs: testTransactions(3), initial: 500}
	narrative := &fakeNarrativeClient{text: "CFO: Customer receipts: 1000\n" +
		"CFO: Supplier payments: -200\n" +
		"CFF: Bank loan: 300\n" +
		"Overall Net Cash Flow: 1100\n" +
		"Ending Cash Balance: 1600\n"}
	svc := newTestAnalyticsService(store, narrative)

	f, err := svc.GenerateCashflowStatement(context.Background(), 1)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Cash Flow Statement")
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	var labels []string
	for _, row := range rows {
		if len(row) > 0 {
			labels = append(labels, row[0])
		}
	}
	assert.Contains(t, labels, "Beginning Cash Balance")
	assert.Contains(t, labels, "Operating Activities")
	assert.Contains(t, labels, "  Customer receipts")
	assert.Contains(t, labels, "Financing Activities")
	assert.Contains(t, labels, "Total Net Cash Flow")
	assert.Contains(t, labels, "Ending Cash Balance")
}

func TestGenerateCashflowStatement_UnstructuredText(t *testing.T) {
	store := &stubTransactionService{txs: testTransactions(3)}
	narrative := &fakeNarrativeClient{text: "I could not produce a statement today."}
	svc := newTestAnalyticsService(store, narrative)

	_, err := svc.GenerateCashflowStatement(context.Background(), 1)
	assert.ErrorIs(t, err, processors.ErrEmptyStatement)
}
