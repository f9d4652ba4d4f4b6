package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternsLinearTrend(t *testing.T) {
	p := NewForecastProcessor()

	// Perfectly linear sequence: y = 10 + 5x.
	amounts := []float64{10, 15, 20, 25, 30}
	summary := p.Patterns(amounts)

	assert.InDelta(t, 5.0, summary.Trend.Slope, 1e-9)
	assert.InDelta(t, 10.0, summary.Trend.Intercept, 1e-9)
	assert.Equal(t, 5, summary.DataPoints)
	assert.Empty(t, summary.Seasonal, "short sequences get no seasonal component")
}

func TestPatternsDegenerateInputs(t *testing.T) {
	p := NewForecastProcessor()

	assert.Equal(t, PatternSummary{}, p.Patterns(nil))

	one := p.Patterns([]float64{7})
	assert.Equal(t, 7.0, one.Trend.Intercept)
	assert.Equal(t, 0.0, one.Trend.Slope)
}

func TestPatternsSeasonalNeedsTwoPeriods(t *testing.T) {
	p := NewForecastProcessor()

	short := make([]float64, minSeasonalPoints-1)
	assert.Empty(t, p.Patterns(short).Seasonal)

	// Flat series with a spike every 12th point: trend is flat-ish and the
	// seasonal component concentrates in slot 0.
	long := make([]float64, 36)
	for i := range long {
		long[i] = 100
		if i%12 == 0 {
			long[i] = 220
		}
	}
	summary := p.Patterns(long)
	require.Len(t, summary.Seasonal, seasonalPeriod)
	maxSlot := 0
	for i, v := range summary.Seasonal {
		if v > summary.Seasonal[maxSlot] {
			maxSlot = i
		}
	}
	assert.Equal(t, 0, maxSlot)
}

func TestProjectPrefixesAndSeasonality(t *testing.T) {
	p := NewForecastProcessor()
	summary := PatternSummary{
		Trend:      Trend{Slope: 1, Intercept: 0},
		Seasonal:   []float64{10, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		DataPoints: 24,
	}

	ninety := p.Project(summary, 90)
	sixty := p.Project(summary, 60)
	thirty := p.Project(summary, 30)

	require.Len(t, ninety, 90)
	assert.Equal(t, ninety[:60], sixty)
	assert.Equal(t, ninety[:30], thirty)

	// Day 0 sits at trend(24) plus the slot-0 seasonal bump.
	assert.Equal(t, 34.0, ninety[0])
	// Day 12 wraps back onto slot 0.
	assert.Equal(t, 46.0, ninety[12])
	// Day 1 has no seasonal contribution.
	assert.Equal(t, 25.0, ninety[1])

	assert.Nil(t, p.Project(summary, 0))
}
