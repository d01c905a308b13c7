package models

// Candle represents one OHLCV bar. Time is unix seconds (UTC bucket start).
type Candle struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// CandleSeries is a time-ascending series of candles for one symbol/timeframe pair.
type CandleSeries struct {
	Symbol     string   `json:"symbol"`
	Timeframe  string   `json:"timeframe"`
	Candles    []Candle `json:"candles"`
	LastPrice  float64  `json:"lastPrice"`
	AssetClass string   `json:"assetClass,omitempty"`
}

// Last returns the most recent candle, or false when the series is empty.
func (s *CandleSeries) Last() (Candle, bool) {
	if len(s.Candles) == 0 {
		return Candle{}, false
	}
	return s.Candles[len(s.Candles)-1], true
}

// Quote is the latest traded price for a provider symbol.
type Quote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change,omitempty"`
	ChangePct float64 `json:"changePct,omitempty"`
	Timestamp int64   `json:"timestamp"`
}
