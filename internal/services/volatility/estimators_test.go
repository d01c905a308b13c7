package volatility

import (
	"math"
	"testing"

	"ChartPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderIVValid(t *testing.T) {
	iv := 0.32
	est, ok := ProviderIV{IV: &iv}.Estimate()
	require.True(t, ok)
	assert.Equal(t, 0.32, est.Sigma)
	assert.Equal(t, "provider", est.Source)
}

func TestProviderIVRejectsInvalid(t *testing.T) {
	_, ok := ProviderIV{IV: nil}.Estimate()
	assert.False(t, ok)

	zero := 0.0
	_, ok = ProviderIV{IV: &zero}.Estimate()
	assert.False(t, ok)

	neg := -0.1
	_, ok = ProviderIV{IV: &neg}.Estimate()
	assert.False(t, ok)

	nan := math.NaN()
	_, ok = ProviderIV{IV: &nan}.Estimate()
	assert.False(t, ok)
}

func TestHistoricalAnnualizesSampleVariance(t *testing.T) {
	closes := []float64{100, 102, 101, 103, 104, 102}
	cs := make([]models.Candle, len(closes))
	for i, c := range closes {
		cs[i] = models.Candle{Time: int64(i), Close: c}
	}

	est, ok := Historical{Candles: cs}.Estimate()
	require.True(t, ok)
	assert.Equal(t, "historical", est.Source)

	// Recompute by hand.
	rets := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		rets = append(rets, math.Log(closes[i]/closes[i-1]))
	}
	mean := 0.0
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))
	variance := 0.0
	for _, r := range rets {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(rets) - 1)
	want := math.Sqrt(variance * TradingDaysPerYear)

	assert.InDelta(t, want, est.Sigma, 1e-12)
}

func TestHistoricalNeedsTwoReturns(t *testing.T) {
	_, ok := Historical{Candles: nil}.Estimate()
	assert.False(t, ok)

	_, ok = Historical{Candles: []models.Candle{{Close: 100}, {Close: 101}}}.Estimate()
	assert.False(t, ok)
}

func TestResolveFirstSuccessWins(t *testing.T) {
	iv := 0.4
	est := Resolve(ProviderIV{IV: &iv}, Historical{}, Fixed{})
	assert.Equal(t, "provider", est.Source)

	est = Resolve(ProviderIV{}, Historical{}, Fixed{})
	assert.Equal(t, "default", est.Source)
	assert.Equal(t, DefaultSigma, est.Sigma)
}

func TestHorizonFactor(t *testing.T) {
	days, factor := HorizonFactor("1d", 0)
	assert.Equal(t, 1.0, days)
	assert.InDelta(t, 1.0/252, factor, 1e-12)

	days, factor = HorizonFactor("1w", 0)
	assert.Equal(t, 5.0, days)
	assert.InDelta(t, 5.0/252, factor, 1e-12)

	days, _ = HorizonFactor("1mo", 0)
	assert.Equal(t, 21.0, days)

	days, factor = HorizonFactor("custom", 10)
	assert.Equal(t, 10.0, days)
	assert.InDelta(t, 10.0/252, factor, 1e-12)
}
