package processors

// seasonalPeriod is the length of the repeating monthly pattern.
const seasonalPeriod = 12

// minSeasonalPoints is the smallest sequence (two full periods) for which a
// seasonal decomposition is attempted. Below it Seasonal stays empty.
const minSeasonalPoints = 2 * seasonalPeriod

// Trend is a least-squares line fitted over the amount sequence, indexed by
// observation position.
type Trend struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// At evaluates the trend line at observation index x.
func (t Trend) At(x float64) float64 {
	return t.Intercept + t.Slope*x
}

// PatternSummary captures the trend and seasonality of an amount sequence.
// Seasonal holds one mean detrended residual per period slot and is empty
// when the sequence is too short to decompose.
type PatternSummary struct {
	Trend      Trend     `json:"trend"`
	Seasonal   []float64 `json:"seasonal,omitempty"`
	DataPoints int       `json:"data_points"`
}

type forecastProcessor struct{}

// NewForecastProcessor creates a new instance of ForecastProcessor.
func NewForecastProcessor() ForecastProcessor {
	return &forecastProcessor{}
}

// Patterns fits a least-squares linear trend over the amounts and, when at
// least two full periods of data exist, a monthly seasonal component of the
// detrended residuals. Shorter sequences get an empty seasonal component,
// never a partial one.
func (p *forecastProcessor) Patterns(amounts []float64) PatternSummary {
	n := len(amounts)
	summary := PatternSummary{DataPoints: n}
	if n == 0 {
		return summary
	}
	if n == 1 {
		summary.Trend = Trend{Slope: 0, Intercept: amounts[0]}
		return summary
	}

	// Least squares over x = 0..n-1.
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range amounts {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom != 0 {
		summary.Trend.Slope = (fn*sumXY - sumX*sumY) / denom
	}
	summary.Trend.Intercept = (sumY - summary.Trend.Slope*sumX) / fn

	if n >= minSeasonalPoints {
		sums := make([]float64, seasonalPeriod)
		counts := make([]int, seasonalPeriod)
		for i, y := range amounts {
			residual := y - summary.Trend.At(float64(i))
			slot := i % seasonalPeriod
			sums[slot] += residual
			counts[slot]++
		}
		summary.Seasonal = make([]float64, seasonalPeriod)
		for i := range summary.Seasonal {
			if counts[i] > 0 {
				summary.Seasonal[i] = sums[i] / float64(counts[i])
			}
		}
	}
	return summary
}

// Project produces day-level point forecasts for the given horizon by
// extending the trend past the observed sequence and overlaying the seasonal
// pattern cyclically (forecast day d uses seasonal slot d mod period). A
// request for 30 days is always a prefix of the same request for 90.
func (p *forecastProcessor) Project(patterns PatternSummary, days int) []float64 {
	if days <= 0 {
		return nil
	}
	out := make([]float64, days)
	for d := 0; d < days; d++ {
		value := patterns.Trend.At(float64(patterns.DataPoints + d))
		if len(patterns.Seasonal) > 0 {
			value += patterns.Seasonal[d%len(patterns.Seasonal)]
		}
		out[d] = value
	}
	return out
}
