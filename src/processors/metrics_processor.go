package processors

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/raymond0208/CashCatalyst/src/models"
	"github.com/raymond0208/CashCatalyst/src/utils"
)

const (
	// DefaultBurnRateMonths is the trailing window used when callers do not
	// ask for a specific one.
	DefaultBurnRateMonths = 3

	// LiquidityUnconstrained is the sentinel returned by LiquidityRatio when
	// current liabilities are zero or negative. It signals "effectively
	// unconstrained" and must not be fed into downstream ratio math as a
	// real value.
	LiquidityUnconstrained = 9999.99
)

// RunwayUnlimited is the sentinel returned by Runway when there is no burn.
// It is +Inf rather than a large finite number so callers can detect it with
// math.IsInf instead of a magic-value comparison.
var RunwayUnlimited = math.Inf(1)

type metricsProcessor struct{}

// NewMetricsProcessor creates a new instance of MetricsProcessor.
func NewMetricsProcessor() MetricsProcessor {
	return &metricsProcessor{}
}

// BurnRate averages the monthly net cash outflow over the trailing window.
// The window is months*30 days ending at the most recent transaction date
// (not "now", so historical data sets keep a meaningful burn rate). Only
// negative amounts count; the result is the positive monthly average, or 0
// when the set is empty or has no outflows.
func (p *metricsProcessor) BurnRate(transactions []models.Transaction, months int) float64 {
	if len(transactions) == 0 || months <= 0 {
		return 0
	}

	var mostRecent time.Time
	for _, tx := range transactions {
		if d := utils.ParseDate(tx.Date); d.After(mostRecent) {
			mostRecent = d
		}
	}
	if mostRecent.IsZero() {
		return 0
	}
	cutoff := mostRecent.AddDate(0, 0, -months*30)

	outflow := decimal.Zero
	found := false
	for _, tx := range transactions {
		d := utils.ParseDate(tx.Date)
		if d.IsZero() || d.Before(cutoff) {
			continue
		}
		if tx.Amount < 0 {
			outflow = outflow.Add(decimal.NewFromFloat(tx.Amount))
			found = true
		}
	}
	if !found {
		return 0
	}

	rate := outflow.Abs().Div(decimal.NewFromInt(int64(months)))
	f, _ := rate.Float64()
	return f
}

// Runway returns the months of operation left at the given burn rate, or
// RunwayUnlimited when burnRate is zero or negative. Check the sentinel with
// math.IsInf before using the value in further arithmetic.
func (p *metricsProcessor) Runway(balance, burnRate float64) float64 {
	if burnRate <= 0 {
		return RunwayUnlimited
	}
	return balance / burnRate
}

// LiquidityRatio divides current assets by current liabilities. When
// liabilities are zero or negative the division is undefined and the
// LiquidityUnconstrained sentinel is returned instead.
func (p *metricsProcessor) LiquidityRatio(currentAssets, currentLiabilities float64) float64 {
	if currentLiabilities <= 0 {
		return LiquidityUnconstrained
	}
	return currentAssets / currentLiabilities
}

// Volatility is the population standard deviation of the amount sequence.
// Zero for fewer than two points.
func (p *metricsProcessor) Volatility(amounts []float64) float64 {
	n := len(amounts)
	if n < 2 {
		return 0
	}
	mean := utils.SumAmounts(amounts) / float64(n)
	var ss float64
	for _, a := range amounts {
		d := a - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n))
}
