package candles

import (
	"testing"
	"time"

	"ChartPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) int64 {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
}

func TestAggregateWeeklyOneFullWeek(t *testing.T) {
	// Mon 2024-03-04 through Fri 2024-03-08.
	opens := []float64{10, 10.5, 11.5, 9.5, 12.5}
	closes := []float64{10, 11, 9, 12, 13}
	highs := []float64{11, 12, 10, 13, 14}
	lows := []float64{9, 10, 8, 11, 12}

	daily := make([]models.Candle, 5)
	for i := range daily {
		daily[i] = models.Candle{
			Time:   day(2024, 3, 4+i),
			Open:   opens[i],
			High:   highs[i],
			Low:    lows[i],
			Close:  closes[i],
			Volume: 100,
		}
	}

	got := Aggregate(daily, PeriodWeekly)
	require.Len(t, got, 1)
	assert.Equal(t, day(2024, 3, 4), got[0].Time)
	assert.Equal(t, 10.0, got[0].Open)
	assert.Equal(t, 13.0, got[0].Close)
	assert.Equal(t, 14.0, got[0].High)
	assert.Equal(t, 8.0, got[0].Low)
	assert.Equal(t, 500.0, got[0].Volume)
}

func TestAggregateWeeklySplitsAtMonday(t *testing.T) {
	daily := []models.Candle{
		{Time: day(2024, 3, 7), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},  // Thu
		{Time: day(2024, 3, 8), Open: 1.5, High: 2.5, Low: 1, Close: 2, Volume: 10},  // Fri
		{Time: day(2024, 3, 11), Open: 2, High: 3, Low: 1.5, Close: 2.5, Volume: 10}, // Mon
	}

	got := Aggregate(daily, PeriodWeekly)
	require.Len(t, got, 2)
	assert.Equal(t, day(2024, 3, 7), got[0].Time)
	assert.Equal(t, 2.0, got[0].Close)
	assert.Equal(t, day(2024, 3, 11), got[1].Time)
	assert.Equal(t, 2.5, got[1].Close)
}

func TestAggregateMonthlyBoundaries(t *testing.T) {
	daily := []models.Candle{
		{Time: day(2024, 2, 28), Open: 5, High: 6, Low: 4, Close: 5.5, Volume: 1},
		{Time: day(2024, 2, 29), Open: 5.5, High: 7, Low: 5, Close: 6, Volume: 1},
		{Time: day(2024, 3, 1), Open: 6, High: 8, Low: 5.5, Close: 7, Volume: 1},
	}

	got := Aggregate(daily, PeriodMonthly)
	require.Len(t, got, 2)

	feb := got[0]
	assert.Equal(t, day(2024, 2, 28), feb.Time)
	assert.Equal(t, 5.0, feb.Open)
	assert.Equal(t, 6.0, feb.Close)
	assert.Equal(t, 7.0, feb.High)
	assert.Equal(t, 4.0, feb.Low)
	assert.Equal(t, 2.0, feb.Volume)

	mar := got[1]
	assert.Equal(t, day(2024, 3, 1), mar.Time)
	assert.Equal(t, 7.0, mar.Close)
}

func TestAggregateEmptyInput(t *testing.T) {
	assert.Empty(t, Aggregate(nil, PeriodWeekly))
	assert.Empty(t, Aggregate([]models.Candle{}, PeriodMonthly))
}

func TestAggregateSingleCandle(t *testing.T) {
	daily := []models.Candle{{Time: day(2024, 3, 6), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 3}}

	got := Aggregate(daily, PeriodWeekly)
	require.Len(t, got, 1)
	assert.Equal(t, daily[0], got[0])
}
