package processors

import (
	"github.com/raymond0208/CashCatalyst/src/models"
)

// TotalsProcessor sums signed transaction amounts into the three cash-flow
// buckets and derives the running balance from an initial balance.
type TotalsProcessor interface {
	Totals(transactions []models.Transaction) (totalCFO, totalCFI, totalCFF float64)
	Balance(initialBalance float64, transactions []models.Transaction) models.CashflowTotals
	MonthlyBalances(initialBalance float64, transactions []models.Transaction) []models.MonthlyBalance
}

// MetricsProcessor computes the derived risk metrics (burn rate, runway,
// liquidity ratio, volatility) over a transaction set.
type MetricsProcessor interface {
	BurnRate(transactions []models.Transaction, months int) float64
	Runway(balance, burnRate float64) float64
	LiquidityRatio(currentAssets, currentLiabilities float64) float64
	Volatility(amounts []float64) float64
}

// ForecastProcessor fits trend and seasonality to the amount sequence and
// projects day-level point forecasts forward.
type ForecastProcessor interface {
	Patterns(amounts []float64) PatternSummary
	Project(patterns PatternSummary, days int) []float64
}
