package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmountFloat(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    float64
		wantErr bool
	}{
		{"plain", "1234.56", 1234.56, false},
		{"currency and thousands", "$1,234.56", 1234.56, false},
		{"round trip of formatted export", "$1,234.56", 1234.56, false},
		{"negative", "-2000", -2000, false},
		{"parenthesized negative", "(200.50)", -200.50, false},
		{"euro", "€99.00", 99, false},
		{"whitespace", "  42  ", 42, false},
		{"empty", "", 0, true},
		{"prose", "about ten", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAmountFloat(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSumAmountsIsExact(t *testing.T) {
	// 0.1 added ten times is exactly 1 through decimal accumulation.
	amounts := []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}
	assert.Equal(t, 1.0, SumAmounts(amounts))
	assert.Equal(t, 0.0, SumAmounts(nil))
}
