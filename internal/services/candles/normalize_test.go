package candles

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDailyRecords(t *testing.T) {
	raw := []byte(`[
		{"date":"2024-03-05","open":101,"high":103,"low":100,"close":102,"volume":500},
		{"date":"2024-03-04","open":100,"high":102,"low":99,"close":101,"volume":400}
	]`)

	got := Normalize(raw, ModeDaily)
	require.Len(t, got, 2)

	// Unsorted input is resorted ascending.
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC).Unix(), got[0].Time)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC).Unix(), got[1].Time)
	assert.Equal(t, 100.0, got[0].Open)
	assert.Equal(t, 102.0, got[1].Close)
	assert.Equal(t, 400.0, got[0].Volume)
}

func TestNormalizeShortFieldAliases(t *testing.T) {
	ts := time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC)
	raw := []byte(`[{"t":` + strconv.FormatInt(ts.UnixMilli(), 10) + `,"o":10,"h":11,"l":9,"c":10.5,"v":1000}]`)

	got := Normalize(raw, ModeIntraday)
	require.Len(t, got, 1)
	assert.Equal(t, ts.Unix(), got[0].Time)
	assert.Equal(t, 10.0, got[0].Open)
	assert.Equal(t, 11.0, got[0].High)
	assert.Equal(t, 9.0, got[0].Low)
	assert.Equal(t, 10.5, got[0].Close)
	assert.Equal(t, 1000.0, got[0].Volume)
}

func TestNormalizeDropsInvalidRecordsKeepsOrder(t *testing.T) {
	raw := []byte(`[
		{"date":"2024-03-04","open":1,"high":2,"low":0.5,"close":1.5},
		{"date":"2024-03-05","open":1,"high":1,"low":2,"close":1},
		{"date":"2024-03-06","open":2,"high":3,"low":1.5,"close":2.5},
		{"date":"2024-03-07","open":2.5,"high":3.5,"low":2,"close":3},
		{"date":"2024-03-08","open":3,"high":4,"low":2.5,"close":3.5}
	]`)

	// Record 2 violates high >= low and is dropped; the rest keep order.
	got := Normalize(raw, ModeDaily)
	require.Len(t, got, 4)
	assert.Equal(t, 1.5, got[0].Close)
	assert.Equal(t, 2.5, got[1].Close)
	assert.Equal(t, 3.0, got[2].Close)
	assert.Equal(t, 3.5, got[3].Close)
}

func TestNormalizeDropsMissingAndNonFinite(t *testing.T) {
	raw := []byte(`[
		{"date":"2024-03-04","open":1,"high":2,"close":1.5},
		{"date":"2024-03-05","open":"oops","high":2,"low":1,"close":1.5},
		{"date":"2024-03-06","open":-1,"high":2,"low":1,"close":1.5},
		{"open":1,"high":2,"low":1,"close":1.5}
	]`)

	got := Normalize(raw, ModeDaily)
	assert.Empty(t, got)
}

func TestNormalizeMissingVolumeDefaultsToZero(t *testing.T) {
	raw := []byte(`[{"date":"2024-03-04","open":1,"high":2,"low":0.5,"close":1.5}]`)

	got := Normalize(raw, ModeDaily)
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].Volume)
}

func TestNormalizeDuplicateTimestampsFirstWins(t *testing.T) {
	raw := []byte(`[
		{"date":"2024-03-04","open":1,"high":2,"low":0.5,"close":1.5},
		{"date":"2024-03-04","open":9,"high":10,"low":8,"close":9.5}
	]`)

	got := Normalize(raw, ModeDaily)
	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].Open)
}

func TestNormalizeNonArrayInput(t *testing.T) {
	assert.Empty(t, Normalize([]byte(`{"error":"rate limited"}`), ModeDaily))
	assert.Empty(t, Normalize([]byte(`[]`), ModeDaily))
	assert.Empty(t, Normalize(nil, ModeDaily))
}

