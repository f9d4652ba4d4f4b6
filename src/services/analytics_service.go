package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/xuri/excelize/v2"

	"github.com/raymond0208/CashCatalyst/src/llm"
	"github.com/raymond0208/CashCatalyst/src/logger"
	"github.com/raymond0208/CashCatalyst/src/models"
	"github.com/raymond0208/CashCatalyst/src/processors"
	"github.com/raymond0208/CashCatalyst/src/security/validation"
)

const (
	ckAnalysis = "analysis_user_%d"

	// promptTransactionLimit caps how many recent transactions travel in the
	// model prompt so prompt size stays bounded regardless of history length.
	promptTransactionLimit = 50
)

type analyticsServiceImpl struct {
	transactions   TransactionService
	metrics        processors.MetricsProcessor
	forecasts      processors.ForecastProcessor
	narrative      llm.NarrativeClient
	reportCache    *cache.Cache
	maxTokens      int
	burnRateMonths int
	timeout        time.Duration
}

func NewAnalyticsService(
	transactions TransactionService,
	metrics processors.MetricsProcessor,
	forecasts processors.ForecastProcessor,
	narrative llm.NarrativeClient,
	reportCache *cache.Cache,
	maxTokens int,
	burnRateMonths int,
	timeout time.Duration,
) AnalyticsService {
	return &analyticsServiceImpl{
		transactions:   transactions,
		metrics:        metrics,
		forecasts:      forecasts,
		narrative:      narrative,
		reportCache:    reportCache,
		maxTokens:      maxTokens,
		burnRateMonths: burnRateMonths,
		timeout:        timeout,
	}
}

// GenerateAnalysis builds the full forecast: pattern statistics and risk
// metrics computed locally, one bounded model call for the narrative, then
// the 30/60/90 day projections. No database transaction is held across the
// model call; all data is loaded up front.
func (s *analyticsServiceImpl) GenerateAnalysis(ctx context.Context, userID int64) (*AnalysisResult, error) {
	cacheKey := fmt.Sprintf(ckAnalysis, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for analysis", "userID", userID)
		result := cached.(AnalysisResult)
		return &result, nil
	}

	txs, err := s.transactions.ListAll(userID)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, ErrNoTransactions
	}
	summary, err := s.transactions.BalanceSummary(userID)
	if err != nil {
		return nil, err
	}

	amounts := make([]float64, len(txs))
	for i, tx := range txs {
		amounts[i] = tx.Amount
	}

	patterns := s.forecasts.Patterns(amounts)

	burnRate := s.metrics.BurnRate(txs, s.burnRateMonths)
	metrics := RiskMetrics{
		BurnRate: burnRate,
		Runway:   s.metrics.Runway(summary.Totals.Balance, burnRate),
		// Average monthly outflow stands in for short-term liabilities;
		// the ledger has no liability accounts to draw on.
		LiquidityRatio: s.metrics.LiquidityRatio(summary.Totals.Balance, burnRate),
		Volatility:     s.metrics.Volatility(amounts),
	}

	prompt := buildAnalysisPrompt(summary, patterns, metrics, txs)
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	narrative, err := s.narrative.GenerateNarrative(callCtx, prompt, s.maxTokens)
	if err != nil {
		return nil, err
	}

	forecast90 := s.forecasts.Project(patterns, 90)
	result := AnalysisResult{
		Narrative:  narrative,
		Patterns:   patterns,
		Metrics:    metrics,
		Forecast30: forecast90[:30],
		Forecast60: forecast90[:60],
		Forecast90: forecast90,
	}

	s.reportCache.Set(cacheKey, result, DefaultCacheExpiration)
	logger.L.Info("Analysis generated", "userID", userID, "dataPoints", patterns.DataPoints)
	return &result, nil
}

func buildAnalysisPrompt(summary *BalanceSummary, patterns processors.PatternSummary, metrics RiskMetrics, txs []models.Transaction) string {
	var b strings.Builder
	b.WriteString("You are a financial analyst. Analyze this company's cash flow and give a concise assessment with concrete recommendations.\n\n")
	fmt.Fprintf(&b, "Initial balance: %.2f\n", summary.InitialBalance)
	fmt.Fprintf(&b, "Current balance: %.2f\n", summary.Totals.Balance)
	fmt.Fprintf(&b, "Operating cash flow (CFO): %.2f\n", summary.Totals.TotalCFO)
	fmt.Fprintf(&b, "Investing cash flow (CFI): %.2f\n", summary.Totals.TotalCFI)
	fmt.Fprintf(&b, "Financing cash flow (CFF): %.2f\n", summary.Totals.TotalCFF)
	fmt.Fprintf(&b, "Monthly burn rate: %.2f\n", metrics.BurnRate)
	if math.IsInf(metrics.Runway, 1) {
		b.WriteString("Runway: unlimited (no net burn)\n")
	} else {
		fmt.Fprintf(&b, "Runway: %.1f months\n", metrics.Runway)
	}
	fmt.Fprintf(&b, "Liquidity ratio: %.2f\n", metrics.LiquidityRatio)
	fmt.Fprintf(&b, "Cash flow volatility: %.2f\n", metrics.Volatility)
	fmt.Fprintf(&b, "Trend: slope %.4f per transaction, intercept %.2f over %d transactions\n",
		patterns.Trend.Slope, patterns.Trend.Intercept, patterns.DataPoints)

	tail := txs
	if len(tail) > promptTransactionLimit {
		tail = tail[len(tail)-promptTransactionLimit:]
	}
	fmt.Fprintf(&b, "\nMost recent transactions (%d of %d):\n", len(tail), len(txs))
	for _, tx := range tail {
		fmt.Fprintf(&b, "%s | %s | %.2f | %s\n", tx.Date, tx.Description, tx.Amount, tx.Type)
	}
	return b.String()
}

// GenerateCashflowStatement asks the model for a formatted statement over the
// user's data, recovers the structure with the statement parser and renders
// it as a spreadsheet.
func (s *analyticsServiceImpl) GenerateCashflowStatement(ctx context.Context, userID int64) (*excelize.File, error) {
	txs, err := s.transactions.ListAll(userID)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, ErrNoTransactions
	}
	initial, err := s.transactions.InitialBalance(userID)
	if err != nil {
		return nil, err
	}

	prompt := buildStatementPrompt(initial, txs)
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	text, err := s.narrative.GenerateNarrative(callCtx, prompt, s.maxTokens)
	if err != nil {
		return nil, err
	}

	report, err := processors.ParseStatement(text)
	if err != nil {
		return nil, err
	}

	logger.L.Info("Statement generated", "userID", userID,
		"lineItems", len(report.LineItems), "skippedLines", len(report.Skipped))
	return s.renderStatementWorkbook(report, initial)
}

func buildStatementPrompt(initial float64, txs []models.Transaction) string {
	var b strings.Builder
	b.WriteString("Produce a cash flow statement from the transactions below.\n")
	b.WriteString("Output one line per item in exactly this form:\n")
	b.WriteString("Category: Subcategory: Amount\n")
	b.WriteString("where Category is one of CFO, CFI, CFF. After the items, output these total lines:\n")
	fmt.Fprintf(&b, "%s: Amount\n", processors.TotalOverallNetCashFlow)
	fmt.Fprintf(&b, "%s: Amount\n", processors.TotalEndingCashBalance)
	b.WriteString("Amounts are plain numbers, negative for outflows. No other text.\n\n")
	fmt.Fprintf(&b, "Beginning cash balance: %.2f\n\nTransactions:\n", initial)

	tail := txs
	if len(tail) > promptTransactionLimit {
		tail = tail[len(tail)-promptTransactionLimit:]
	}
	for _, tx := range tail {
		fmt.Fprintf(&b, "%s | %s | %.2f | %s\n", tx.Date, tx.Description, tx.Amount, tx.Type)
	}
	return b.String()
}

// statementSheet is the single sheet name of the rendered workbook.
const statementSheet = "Cash Flow Statement"

func (s *analyticsServiceImpl) renderStatementWorkbook(report processors.StatementReport, initial float64) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", statementSheet); err != nil {
		return nil, fmt.Errorf("error naming statement sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("error creating cell style: %w", err)
	}

	row := 1
	writeRow := func(label string, amount *float64, styled bool) error {
		cell := fmt.Sprintf("A%d", row)
		if err := f.SetCellValue(statementSheet, cell, validation.SanitizeForFormulaInjection(label)); err != nil {
			return err
		}
		if amount != nil {
			if err := f.SetCellValue(statementSheet, fmt.Sprintf("B%d", row), *amount); err != nil {
				return err
			}
		}
		if styled {
			if err := f.SetCellStyle(statementSheet, cell, fmt.Sprintf("B%d", row), bold); err != nil {
				return err
			}
		}
		row++
		return nil
	}

	if err := writeRow("Beginning Cash Balance", &initial, true); err != nil {
		return nil, err
	}
	row++

	sectionTitles := map[string]string{
		"CFO": "Operating Activities",
		"CFI": "Investing Activities",
		"CFF": "Financing Activities",
	}
	for _, category := range []string{"CFO", "CFI", "CFF"} {
		items := itemsForCategory(report.LineItems, category)
		if len(items) == 0 {
			continue
		}
		if err := writeRow(sectionTitles[category], nil, true); err != nil {
			return nil, err
		}
		subtotal := 0.0
		for _, item := range items {
			amount := item.Amount
			if err := writeRow("  "+item.Subcategory, &amount, false); err != nil {
				return nil, err
			}
			subtotal += item.Amount
		}
		if err := writeRow("Net cash from "+strings.ToLower(sectionTitles[category]), &subtotal, true); err != nil {
			return nil, err
		}
		row++
	}

	if net, ok := report.Totals[processors.TotalOverallNetCashFlow]; ok {
		if err := writeRow("Total Net Cash Flow", &net, true); err != nil {
			return nil, err
		}
	}
	ending := processors.EndingBalance(report, initial)
	if err := writeRow("Ending Cash Balance", &ending, true); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(statementSheet, "A", "A", 40); err != nil {
		return nil, fmt.Errorf("error sizing statement columns: %w", err)
	}
	return f, nil
}

func itemsForCategory(items []models.StatementLineItem, category string) []models.StatementLineItem {
	var out []models.StatementLineItem
	for _, item := range items {
		if strings.EqualFold(item.Category, category) {
			out = append(out, item)
		}
	}
	return out
}
