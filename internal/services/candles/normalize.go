package candles

import (
	"math"
	"sort"

	"ChartPulse/internal/domain/models"
	"ChartPulse/pkg/util"

	"github.com/tidwall/gjson"
)

// Mode selects how record timestamps are interpreted.
type Mode int

const (
	// ModeIntraday expects epoch milliseconds or full datetime strings.
	ModeIntraday Mode = iota
	// ModeDaily parses date-only strings at UTC midnight.
	ModeDaily
)

// Field aliases seen across provider endpoints. Short forms come from the
// intraday feed, long forms from the end-of-day one.
var (
	timeFields   = []string{"timestamp", "t", "datetime", "date"}
	openFields   = []string{"open", "o"}
	highFields   = []string{"high", "h"}
	lowFields    = []string{"low", "l"}
	closeFields  = []string{"close", "c", "adjusted_close"}
	volumeFields = []string{"volume", "v"}
)

// Normalize converts a raw provider JSON array into validated candles.
// Malformed records are dropped, never substituted: missing required
// fields, non-finite numbers, negative prices, and high < low all disqualify
// a record. Survivors are stably sorted ascending by timestamp and
// duplicate timestamps keep the first occurrence.
func Normalize(raw []byte, mode Mode) []models.Candle {
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsArray() {
		return nil
	}

	records := parsed.Array()
	out := make([]models.Candle, 0, len(records))
	for _, rec := range records {
		c, ok := normalizeRecord(rec, mode)
		if !ok {
			continue
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })

	// Enforce strictly increasing time: first record wins on duplicates.
	deduped := out[:0]
	var prev int64 = math.MinInt64
	for _, c := range out {
		if c.Time == prev {
			continue
		}
		prev = c.Time
		deduped = append(deduped, c)
	}
	return deduped
}

func normalizeRecord(rec gjson.Result, mode Mode) (models.Candle, bool) {
	ts, ok := extractTime(rec, mode)
	if !ok {
		return models.Candle{}, false
	}

	open, ok := extractPrice(rec, openFields)
	if !ok {
		return models.Candle{}, false
	}
	high, ok := extractPrice(rec, highFields)
	if !ok {
		return models.Candle{}, false
	}
	low, ok := extractPrice(rec, lowFields)
	if !ok {
		return models.Candle{}, false
	}
	closeP, ok := extractPrice(rec, closeFields)
	if !ok {
		return models.Candle{}, false
	}
	if high < low {
		return models.Candle{}, false
	}

	volume := 0.0
	if v, ok := extractNumber(rec, volumeFields); ok && v >= 0 {
		volume = v
	}

	return models.Candle{
		Time:   ts,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closeP,
		Volume: volume,
	}, true
}

func extractTime(rec gjson.Result, mode Mode) (int64, bool) {
	for _, f := range timeFields {
		v := rec.Get(f)
		if !v.Exists() {
			continue
		}
		switch v.Type {
		case gjson.Number:
			n := v.Int()
			if n <= 0 {
				return 0, false
			}
			// Epoch milliseconds when the magnitude says so.
			if n > 1e12 {
				return util.EpochMillisToTime(n).Unix(), true
			}
			return n, true
		case gjson.String:
			s := v.String()
			if mode == ModeDaily {
				if t, ok := util.ParseDate(s); ok {
					return t.Unix(), true
				}
			}
			if t, ok := util.ParseTime(s); ok {
				return t.Unix(), true
			}
			return 0, false
		default:
			return 0, false
		}
	}
	return 0, false
}

func extractPrice(rec gjson.Result, fields []string) (float64, bool) {
	v, ok := extractNumber(rec, fields)
	if !ok || v < 0 {
		return 0, false
	}
	return v, true
}

func extractNumber(rec gjson.Result, fields []string) (float64, bool) {
	for _, f := range fields {
		v := rec.Get(f)
		if !v.Exists() {
			continue
		}
		if v.Type != gjson.Number {
			return 0, false
		}
		n := v.Float()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
