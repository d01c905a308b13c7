package models

// ExpectedMoveResult is a volatility-scaled price band around the last close.
// TooSmall is set instead of near-zero bands when the move falls under the
// display noise floor; callers must not render band edges in that case.
type ExpectedMoveResult struct {
	Symbol      string  `json:"symbol"`
	Close       float64 `json:"close"`
	IV          float64 `json:"iv"`
	IVSource    string  `json:"ivSource"`
	EM          float64 `json:"em"`
	UpperEM     float64 `json:"upperEM"`
	LowerEM     float64 `json:"lowerEM"`
	Upper2Sigma float64 `json:"upper2Sigma"`
	Lower2Sigma float64 `json:"lower2Sigma"`
	Timeframe   string  `json:"timeframe"`
	TradingDays float64 `json:"tradingDays"`
	TooSmall    bool    `json:"tooSmall"`
}

// ExpectedMoveBatchItem carries one symbol's result or its error inside a
// batch response. Failures stay per-symbol; the batch itself never fails.
type ExpectedMoveBatchItem struct {
	Symbol string              `json:"symbol"`
	Result *ExpectedMoveResult `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
}
