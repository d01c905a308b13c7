package candles

import (
	"time"

	"ChartPulse/internal/domain/models"
)

// Period is a calendar aggregation bucket.
type Period int

const (
	PeriodWeekly Period = iota
	PeriodMonthly
)

// Aggregate rolls daily candles into weekly or monthly bars. Weekly buckets
// start Monday 00:00 UTC, monthly buckets on the 1st of the month, both
// derived from each candle's own date. Within a bucket: open from the first
// candle, close from the last, high/low are extremes, volume is summed, and
// time is the first candle's timestamp. Single pass; a bucket is emitted
// when a later candle crosses its boundary or input ends. Empty input
// yields empty output.
func Aggregate(daily []models.Candle, period Period) []models.Candle {
	if len(daily) == 0 {
		return nil
	}

	out := make([]models.Candle, 0, len(daily)/5+1)
	var cur models.Candle
	var curBucket time.Time
	open := false

	for _, c := range daily {
		b := bucketStart(time.Unix(c.Time, 0).UTC(), period)
		if !open {
			cur = c
			curBucket = b
			open = true
			continue
		}
		if b.Equal(curBucket) {
			if c.High > cur.High {
				cur.High = c.High
			}
			if c.Low < cur.Low {
				cur.Low = c.Low
			}
			cur.Close = c.Close
			cur.Volume += c.Volume
			continue
		}
		out = append(out, cur)
		cur = c
		curBucket = b
	}
	out = append(out, cur)
	return out
}

// bucketStart returns the calendar bucket opening for t.
func bucketStart(t time.Time, period Period) time.Time {
	switch period {
	case PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		// Roll back to Monday 00:00 UTC.
		offset := (int(t.Weekday()) + 6) % 7
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return day.AddDate(0, 0, -offset)
	}
}
